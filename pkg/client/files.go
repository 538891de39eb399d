package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"
)

// UploadOptions carries the optional parameters for Upload.
type UploadOptions struct {
	Tags            []string
	WorkflowID      string
	WorkflowOptions map[string]any
	ParentDocID     string
}

// Upload submits a document for extraction with the given products and
// returns the new file ID.
func (c *Client) Upload(ctx context.Context, file io.Reader, products []string, opts *UploadOptions) (string, error) {
	productsJSON, err := json.Marshal(products)
	if err != nil {
		return "", fmt.Errorf("encode products: %w", err)
	}

	fields := map[string]string{
		"products": string(productsJSON),
	}
	if opts != nil {
		if len(opts.Tags) > 0 {
			tagsJSON, err := json.Marshal(opts.Tags)
			if err != nil {
				return "", fmt.Errorf("encode tags: %w", err)
			}
			fields["tags"] = string(tagsJSON)
		}
		if opts.WorkflowID != "" {
			fields["workflowId"] = opts.WorkflowID
		}
		if opts.WorkflowOptions != nil {
			optionsJSON, err := json.Marshal(opts.WorkflowOptions)
			if err != nil {
				return "", fmt.Errorf("encode workflow options: %w", err)
			}
			fields["workflowOptions"] = string(optionsJSON)
		}
		if opts.ParentDocID != "" {
			fields["parentDocId"] = opts.ParentDocID
		}
	}

	var result struct {
		FileID string `json:"fileId"`
	}
	raw := json.RawMessage{}
	if err := c.postMultipart(ctx, "fileupload", "fileToUpload", "upload", file, fields, &raw); err != nil {
		return "", err
	}
	if err := json.Unmarshal(raw, &result); err != nil || result.FileID == "" {
		return "", fmt.Errorf("upload failed with response: %s", string(raw))
	}

	return result.FileID, nil
}

// CreateFile uploads a file via the v2 multipart endpoint and returns the
// raw response.
func (c *Client) CreateFile(ctx context.Context, file io.Reader, filename string, fields map[string]string) (json.RawMessage, error) {
	if filename == "" {
		filename = "file"
	}
	var result json.RawMessage
	if err := c.postMultipart(ctx, "fileupload/v2/multipart", "file", filename, file, fields, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetFile returns the document metadata for a file ID.
func (c *Client) GetFile(ctx context.Context, fileID string) (json.RawMessage, error) {
	var result json.RawMessage
	if err := c.get(ctx, "app/docs/"+url.PathEscape(fileID), nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetFileData downloads the original document bytes.
func (c *Client) GetFileData(ctx context.Context, fileID string) ([]byte, error) {
	return c.getRaw(ctx, "app/docs/"+url.PathEscape(fileID)+"/download", nil)
}

// ResultsOptions carries the optional parameters for the results endpoints.
type ResultsOptions struct {
	// Timeout asks the service to hold the request until results are ready
	// or the duration elapses. This is a remote-side hint, not a local
	// cancellation mechanism; use the context for local deadlines.
	Timeout time.Duration
}

// FetchResults returns the extracted field values for a processed document
// as a name-to-value map. done is false while extraction has not finalised
// yet; polling callers should retry later.
func (c *Client) FetchResults(ctx context.Context, fileID string, opts *ResultsOptions) (map[string]any, bool, error) {
	var envelope struct {
		Status  string `json:"status"`
		Results struct {
			Fields []struct {
				Name  string `json:"name"`
				Value any    `json:"value"`
			} `json:"fields"`
		} `json:"results"`
	}

	if err := c.getFresh(ctx, "result/final/"+url.PathEscape(fileID), resultsQuery(opts, false), &envelope); err != nil {
		return nil, false, err
	}

	if envelope.Status != "FINALISED" {
		return nil, false, nil
	}

	fields := make(map[string]any, len(envelope.Results.Fields))
	for _, field := range envelope.Results.Fields {
		fields[field.Name] = field.Value
	}
	return fields, true, nil
}

// FetchRawResults returns the full verbose results payload for a processed
// document. done is false while extraction has not finalised yet.
func (c *Client) FetchRawResults(ctx context.Context, fileID string, opts *ResultsOptions) (json.RawMessage, bool, error) {
	var envelope struct {
		Status  string          `json:"status"`
		Results json.RawMessage `json:"results"`
	}

	if err := c.getFresh(ctx, "result/final/"+url.PathEscape(fileID), resultsQuery(opts, true), &envelope); err != nil {
		return nil, false, err
	}

	if envelope.Status != "FINALISED" {
		return nil, false, nil
	}
	return envelope.Results, true, nil
}

func resultsQuery(opts *ResultsOptions, verbose bool) url.Values {
	query := url.Values{}
	if verbose {
		query.Set("verbose", "true")
	}
	if opts != nil && opts.Timeout > 0 {
		query.Set("timeout", strconv.FormatInt(opts.Timeout.Milliseconds(), 10))
	}
	if len(query) == 0 {
		return nil
	}
	return query
}
