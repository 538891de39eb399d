package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// workflowInvocation is the request body shared by the synchronous and
// asynchronous invocation endpoints.
type workflowInvocation struct {
	StepID string `json:"step_id,omitempty"`
	Inputs any    `json:"inputs"`
}

// RunWorkflow invokes a workflow synchronously and returns its output.
func (c *Client) RunWorkflow(ctx context.Context, workflowID, stepID string, inputs any) (json.RawMessage, error) {
	path := "workflows/" + url.PathEscape(workflowID) + "/invoke"
	var result json.RawMessage
	if err := c.sendJSON(ctx, http.MethodPost, path, workflowInvocation{StepID: stepID, Inputs: inputs}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// RunWorkflowAsync submits a workflow job and returns immediately.
func (c *Client) RunWorkflowAsync(ctx context.Context, workflowID, stepID string, inputs any) (json.RawMessage, error) {
	path := "workflows/" + url.PathEscape(workflowID) + "/jobs"
	var result json.RawMessage
	if err := c.sendJSON(ctx, http.MethodPost, path, workflowInvocation{StepID: stepID, Inputs: inputs}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) workflowPath(ctx context.Context, parts ...string) (string, error) {
	companyID, err := c.CompanyID(ctx)
	if err != nil {
		return "", err
	}
	path := "workflows/" + url.PathEscape(companyID)
	for _, part := range parts {
		path += "/" + part
	}
	return path, nil
}

// GetValidationRules returns a validation rule set.
func (c *Client) GetValidationRules(ctx context.Context, rulesID string) (json.RawMessage, error) {
	path, err := c.workflowPath(ctx, "rules", url.PathEscape(rulesID))
	if err != nil {
		return nil, err
	}
	var result json.RawMessage
	if err := c.get(ctx, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// SetValidationRules replaces a validation rule set. schema controls
// whether the rules are validated against the rule schema server-side.
func (c *Client) SetValidationRules(ctx context.Context, rulesID string, rules any, schema bool) (json.RawMessage, error) {
	path, err := c.workflowPath(ctx, "rules", url.PathEscape(rulesID))
	if err != nil {
		return nil, err
	}
	var result json.RawMessage
	body := map[string]any{"data": rules, "schema": schema}
	if err := c.sendJSON(ctx, http.MethodPut, path, body, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteValidationRules removes a validation rule set.
func (c *Client) DeleteValidationRules(ctx context.Context, rulesID string) error {
	path, err := c.workflowPath(ctx, "rules", url.PathEscape(rulesID))
	if err != nil {
		return err
	}
	return c.sendJSON(ctx, http.MethodDelete, path, nil, nil)
}

// GetWorkflowData returns a workflow data blob by key.
func (c *Client) GetWorkflowData(ctx context.Context, dataKey string) (json.RawMessage, error) {
	path, err := c.workflowPath(ctx, "data", url.PathEscape(dataKey))
	if err != nil {
		return nil, err
	}
	var result json.RawMessage
	if err := c.get(ctx, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// PutWorkflowData stores a workflow data blob under a key.
func (c *Client) PutWorkflowData(ctx context.Context, dataKey string, data any) (json.RawMessage, error) {
	path, err := c.workflowPath(ctx, "data", url.PathEscape(dataKey))
	if err != nil {
		return nil, err
	}
	var result json.RawMessage
	if err := c.sendJSON(ctx, http.MethodPut, path, map[string]any{"data": data}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteWorkflowData removes a workflow data blob.
func (c *Client) DeleteWorkflowData(ctx context.Context, dataKey string) error {
	path, err := c.workflowPath(ctx, "data", url.PathEscape(dataKey))
	if err != nil {
		return err
	}
	return c.sendJSON(ctx, http.MethodDelete, path, nil, nil)
}
