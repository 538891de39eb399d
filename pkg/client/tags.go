package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// Tag is a named label that documents can be grouped under.
type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (c *Client) tagPath(ctx context.Context, parts ...string) (string, error) {
	companyID, err := c.CompanyID(ctx)
	if err != nil {
		return "", err
	}
	path := "app/company/" + url.PathEscape(companyID)
	for _, part := range parts {
		path += "/" + part
	}
	return path, nil
}

// GetTag returns a tag by name.
func (c *Client) GetTag(ctx context.Context, tag string) (json.RawMessage, error) {
	path, err := c.tagPath(ctx, "tags", url.PathEscape(tag))
	if err != nil {
		return nil, err
	}
	var result json.RawMessage
	if err := c.get(ctx, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateTag creates a tag.
func (c *Client) CreateTag(ctx context.Context, tag, description string) (json.RawMessage, error) {
	path, err := c.tagPath(ctx, "tags")
	if err != nil {
		return nil, err
	}
	var result json.RawMessage
	if err := c.sendJSON(ctx, http.MethodPost, path, Tag{Name: tag, Description: description}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteTag removes a tag.
func (c *Client) DeleteTag(ctx context.Context, tag string) error {
	path, err := c.tagPath(ctx, "tags", url.PathEscape(tag))
	if err != nil {
		return err
	}
	return c.sendJSON(ctx, http.MethodDelete, path, nil, nil)
}

// GetFilesForTag lists the documents carrying a tag.
func (c *Client) GetFilesForTag(ctx context.Context, tag string) (json.RawMessage, error) {
	path, err := c.tagPath(ctx, "tags", url.PathEscape(tag), "documents")
	if err != nil {
		return nil, err
	}
	var result json.RawMessage
	if err := c.get(ctx, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// SetFilesForTag replaces the set of documents carrying a tag.
func (c *Client) SetFilesForTag(ctx context.Context, tag string, fileIDs []string) (json.RawMessage, error) {
	path, err := c.tagPath(ctx, "tags", url.PathEscape(tag), "documents")
	if err != nil {
		return nil, err
	}
	var result json.RawMessage
	if err := c.sendJSON(ctx, http.MethodPut, path, map[string]any{"docs": fileIDs}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// AddFilesToTag adds documents to a tag without touching the rest.
func (c *Client) AddFilesToTag(ctx context.Context, tag string, fileIDs []string) (json.RawMessage, error) {
	path, err := c.tagPath(ctx, "tags", url.PathEscape(tag), "documents")
	if err != nil {
		return nil, err
	}
	var result json.RawMessage
	if err := c.sendJSON(ctx, http.MethodPatch, path, map[string]any{"docs": fileIDs}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveFileFromTag detaches one document from a tag.
func (c *Client) RemoveFileFromTag(ctx context.Context, tag, fileID string) error {
	path, err := c.tagPath(ctx, "tags", url.PathEscape(tag), "documents", url.PathEscape(fileID))
	if err != nil {
		return err
	}
	return c.sendJSON(ctx, http.MethodDelete, path, nil, nil)
}

// GetTagsForFile lists the tags attached to a document.
func (c *Client) GetTagsForFile(ctx context.Context, fileID string) (json.RawMessage, error) {
	path, err := c.tagPath(ctx, "documents", url.PathEscape(fileID), "tags")
	if err != nil {
		return nil, err
	}
	var result json.RawMessage
	if err := c.get(ctx, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// SetTagsForFile replaces the tags attached to a document.
func (c *Client) SetTagsForFile(ctx context.Context, fileID string, tags []string) (json.RawMessage, error) {
	path, err := c.tagPath(ctx, "documents", url.PathEscape(fileID), "tags")
	if err != nil {
		return nil, err
	}
	var result json.RawMessage
	if err := c.sendJSON(ctx, http.MethodPut, path, map[string]any{"tags": tags}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// AddTagsToFile attaches tags to a document without touching the rest.
func (c *Client) AddTagsToFile(ctx context.Context, fileID string, tags []string) (json.RawMessage, error) {
	path, err := c.tagPath(ctx, "documents", url.PathEscape(fileID), "tags")
	if err != nil {
		return nil, err
	}
	var result json.RawMessage
	if err := c.sendJSON(ctx, http.MethodPatch, path, map[string]any{"tags": tags}, &result); err != nil {
		return nil, err
	}
	return result, nil
}
