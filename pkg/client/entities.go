package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// Entity is one record in the entity storage layer.
type Entity struct {
	EntityID string         `json:"entity_id"`
	Data     map[string]any `json:"data,omitempty"`
}

// EntityList is one page of an entity listing. NextPage is the cursor for
// the following page, empty on the last one.
type EntityList struct {
	Entities []string `json:"entities"`
	NextPage string   `json:"next_page"`
}

// defaultEntityBatchSize bounds how many entities one bulk update request
// carries.
const defaultEntityBatchSize = 1000

func (c *Client) storagePath(ctx context.Context, parts ...string) (string, error) {
	companyID, err := c.CompanyID(ctx)
	if err != nil {
		return "", err
	}
	path := "storage/" + url.PathEscape(companyID)
	for _, part := range parts {
		path += "/" + part
	}
	return path, nil
}

// GetEntity returns one entity by type and id.
func (c *Client) GetEntity(ctx context.Context, entityType, entityID string) (json.RawMessage, error) {
	path, err := c.storagePath(ctx, "entity", url.PathEscape(entityType), url.PathEscape(entityID))
	if err != nil {
		return nil, err
	}
	var result json.RawMessage
	if err := c.get(ctx, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// SetEntity stores one entity's data.
func (c *Client) SetEntity(ctx context.Context, entityType, entityID string, data map[string]any) (json.RawMessage, error) {
	path, err := c.storagePath(ctx, "entity", url.PathEscape(entityType), url.PathEscape(entityID))
	if err != nil {
		return nil, err
	}
	var result json.RawMessage
	if err := c.sendJSON(ctx, http.MethodPut, path, data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteEntity removes one entity.
func (c *Client) DeleteEntity(ctx context.Context, entityType, entityID string) error {
	path, err := c.storagePath(ctx, "entity", url.PathEscape(entityType), url.PathEscape(entityID))
	if err != nil {
		return err
	}
	return c.sendJSON(ctx, http.MethodDelete, path, nil, nil)
}

// GetManyEntities fetches entities in bulk by id.
func (c *Client) GetManyEntities(ctx context.Context, entityType string, entityIDs []string) (json.RawMessage, error) {
	path, err := c.storagePath(ctx, "entitysearch", url.PathEscape(entityType), "by_id")
	if err != nil {
		return nil, err
	}

	body := make([]Entity, len(entityIDs))
	for i, id := range entityIDs {
		body[i] = Entity{EntityID: id}
	}

	var result json.RawMessage
	if err := c.sendJSON(ctx, http.MethodPost, path, body, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ListEntities returns one page of entity ids. page is the cursor from a
// previous call, empty for the first page; limit caps the page size when
// positive.
func (c *Client) ListEntities(ctx context.Context, entityType, page string, limit int) (*EntityList, error) {
	path, err := c.storagePath(ctx, "entitysearch", url.PathEscape(entityType))
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	if page != "" {
		query.Set("page", page)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if len(query) == 0 {
		query = nil
	}

	var list EntityList
	if err := c.get(ctx, path, query, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetAllEntityIDs walks the entity listing's cursor until exhaustion and
// returns every entity id of the given type.
func (c *Client) GetAllEntityIDs(ctx context.Context, entityType string) ([]string, error) {
	entityIDs := []string{}
	page := ""
	for {
		list, err := c.ListEntities(ctx, entityType, page, 0)
		if err != nil {
			return nil, err
		}
		entityIDs = append(entityIDs, list.Entities...)
		if list.NextPage == "" {
			return entityIDs, nil
		}
		page = list.NextPage
	}
}

// SetManyEntities updates entities in bulk, chunked into batches so one
// request never carries more than batchSize records. batchSize <= 0 uses
// the default of 1000. Returns one response per batch.
func (c *Client) SetManyEntities(ctx context.Context, entityType string, entities []Entity, batchSize int) ([]json.RawMessage, error) {
	if batchSize <= 0 {
		batchSize = defaultEntityBatchSize
	}

	path, err := c.storagePath(ctx, "bulkentity", url.PathEscape(entityType))
	if err != nil {
		return nil, err
	}

	var responses []json.RawMessage
	for start := 0; start < len(entities); start += batchSize {
		end := start + batchSize
		if end > len(entities) {
			end = len(entities)
		}

		var result json.RawMessage
		if err := c.sendJSON(ctx, http.MethodPost, path+"/", entities[start:end], &result); err != nil {
			return responses, err
		}
		responses = append(responses, result)
	}
	return responses, nil
}

// SearchEntities queries the entity store with exact and fuzzy field
// matches.
func (c *Client) SearchEntities(ctx context.Context, entityType string, exact, fuzzy map[string]any) (json.RawMessage, error) {
	path, err := c.storagePath(ctx, "entitysearch", url.PathEscape(entityType))
	if err != nil {
		return nil, err
	}
	if exact == nil {
		exact = map[string]any{}
	}
	if fuzzy == nil {
		fuzzy = map[string]any{}
	}

	var result json.RawMessage
	body := map[string]any{"exact": exact, "fuzzy": fuzzy}
	if err := c.sendJSON(ctx, http.MethodPost, path+"/", body, &result); err != nil {
		return nil, err
	}
	return result, nil
}
