package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// TaskOptions carries the optional parameters for SubmitTask.
type TaskOptions struct {
	// Replication is how many workers should perform the task. Defaults to 1.
	Replication int

	// Priority orders the task in the queue when set.
	Priority string
}

// SubmitTask queues an annotation task for a document against a
// specification.
func (c *Client) SubmitTask(ctx context.Context, docID, specification string, opts *TaskOptions) (json.RawMessage, error) {
	companyID, err := c.CompanyID(ctx)
	if err != nil {
		return nil, err
	}

	replication := 1
	priority := ""
	if opts != nil {
		if opts.Replication > 0 {
			replication = opts.Replication
		}
		priority = opts.Priority
	}

	task := map[string]any{
		"docId":         docID,
		"companyId":     companyID,
		"specification": specification,
		"replication":   replication,
	}
	if priority != "" {
		task["priority"] = priority
	}

	var result json.RawMessage
	if err := c.sendJSON(ctx, http.MethodPost, "app/tasks", task, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// AddTagsToTasks attaches tags to a batch of tasks.
func (c *Client) AddTagsToTasks(ctx context.Context, taskIDs, tags []string) (json.RawMessage, error) {
	companyID, err := c.CompanyID(ctx)
	if err != nil {
		return nil, err
	}

	path := "app/company/" + url.PathEscape(companyID) + "/tasks/tags/batch"
	body := map[string]any{"taskIds": taskIDs, "add": tags, "remove": []string{}}

	var result json.RawMessage
	if err := c.sendJSON(ctx, http.MethodPost, path, body, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetTagsForTask lists the tags attached to a task.
func (c *Client) GetTagsForTask(ctx context.Context, taskID string) (json.RawMessage, error) {
	companyID, err := c.CompanyID(ctx)
	if err != nil {
		return nil, err
	}

	path := "app/company/" + url.PathEscape(companyID) + "/tasks/" + url.PathEscape(taskID) + "/tags"
	var result json.RawMessage
	if err := c.get(ctx, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateSpecification creates or updates a field extraction specification.
func (c *Client) UpdateSpecification(ctx context.Context, specification any) (json.RawMessage, error) {
	var result json.RawMessage
	if err := c.sendJSON(ctx, http.MethodPost, "app/specifications", specification, &result); err != nil {
		return nil, err
	}
	return result, nil
}
