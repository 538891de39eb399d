package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sypht-team/sypht-go-client/pkg/pagination"
)

// AnnotationFilter narrows an annotation listing. Zero fields are omitted.
type AnnotationFilter struct {
	DocID         string
	TaskID        string
	UserID        string
	Specification string
	FromDate      string
	ToDate        string
	CompanyID     string
}

func (f AnnotationFilter) query(offset int) url.Values {
	query := url.Values{}
	query.Set("offset", strconv.Itoa(offset))
	if f.DocID != "" {
		query.Set("docId", f.DocID)
	}
	if f.TaskID != "" {
		query.Set("taskId", f.TaskID)
	}
	if f.UserID != "" {
		query.Set("userId", f.UserID)
	}
	if f.Specification != "" {
		query.Set("specification", f.Specification)
	}
	if f.FromDate != "" {
		query.Set("fromDate", f.FromDate)
	}
	if f.ToDate != "" {
		query.Set("toDate", f.ToDate)
	}
	if f.CompanyID != "" {
		query.Set("companyId", f.CompanyID)
	}
	return query
}

// annotationsPage is the wire shape of one page of annotations.
type annotationsPage struct {
	Annotations []json.RawMessage `json:"annotations"`
}

func annotationRecords(page annotationsPage) ([]json.RawMessage, error) {
	return page.Annotations, nil
}

// GetAnnotations fetches every annotation matching the filter, paging until
// the service returns an empty page or the record limit trips.
func (c *Client) GetAnnotations(ctx context.Context, filter AnnotationFilter, opts ...pagination.Option) ([]json.RawMessage, error) {
	pager := pagination.New("get_annotations",
		func(ctx context.Context, offset int) (annotationsPage, error) {
			return c.getAnnotationsPage(ctx, filter, offset)
		},
		annotationRecords,
		opts...,
	)
	return collectAnnotations(ctx, pager)
}

// getAnnotationsPage fetches a single page of annotations at the given
// page offset. Use GetAnnotations to fetch all pages.
func (c *Client) getAnnotationsPage(ctx context.Context, filter AnnotationFilter, offset int) (annotationsPage, error) {
	var page annotationsPage
	if err := c.getFresh(ctx, "app/annotations", filter.query(offset), &page); err != nil {
		return annotationsPage{}, err
	}
	return page, nil
}

// GetAnnotationsForDocs fetches every annotation attached to the given
// documents via the annotation search endpoint, paging like GetAnnotations.
// The page fetch is a POST and is therefore never auto-retried by the
// transport.
func (c *Client) GetAnnotationsForDocs(ctx context.Context, docIDs []string, opts ...pagination.Option) ([]json.RawMessage, error) {
	pager := pagination.New("get_annotations_for_docs",
		func(ctx context.Context, offset int) (annotationsPage, error) {
			var page annotationsPage
			body := map[string]any{"docIds": docIDs, "offset": offset}
			if err := c.sendJSON(ctx, http.MethodPost, "app/annotations/search", body, &page); err != nil {
				return annotationsPage{}, err
			}
			return page, nil
		},
		annotationRecords,
		opts...,
	)
	return collectAnnotations(ctx, pager)
}

func collectAnnotations(ctx context.Context, pager *pagination.Pager[annotationsPage, json.RawMessage]) ([]json.RawMessage, error) {
	annotations := []json.RawMessage{}
	for {
		page, ok, err := pager.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return annotations, nil
		}
		annotations = append(annotations, page.Annotations...)
	}
}

// SetCompanyAnnotations stores external field annotations against a
// document on behalf of the company.
func (c *Client) SetCompanyAnnotations(ctx context.Context, docID string, annotations map[string]any) (json.RawMessage, error) {
	companyID, err := c.CompanyID(ctx)
	if err != nil {
		return nil, err
	}

	fields := make([]map[string]any, 0, len(annotations))
	for field, value := range annotations {
		fields = append(fields, map[string]any{
			"id":   field,
			"type": "simple",
			"data": map[string]any{"value": value},
		})
	}
	body := map[string]any{
		"origin": "external",
		"fields": fields,
	}

	path := "app/docs/" + url.PathEscape(docID) + "/companyannotation/" + url.PathEscape(companyID) + "/data"
	var result json.RawMessage
	if err := c.sendJSON(ctx, http.MethodPut, path, body, &result); err != nil {
		return nil, err
	}
	return result, nil
}
