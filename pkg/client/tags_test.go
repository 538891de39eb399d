package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/sypht-team/sypht-go-client/internal/testutil"
)

func TestCreateTag(t *testing.T) {
	mock := testutil.NewMockSypht()
	defer mock.Close()
	setCompanyHandler(mock)

	var gotMethod, gotBody string
	mock.SetHandler("/app/company/company-9/tags", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotMethod = r.Method
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name": "invoices-au"}`))
	})

	client := newTestClient(t, mock)

	if _, err := client.CreateTag(context.Background(), "invoices-au", "AU invoices"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}

	var tag Tag
	if err := json.Unmarshal([]byte(gotBody), &tag); err != nil {
		t.Fatalf("failed to decode body %q: %v", gotBody, err)
	}
	if tag.Name != "invoices-au" || tag.Description != "AU invoices" {
		t.Errorf("tag = %+v", tag)
	}
}

func TestTagMembershipMethods(t *testing.T) {
	tests := []struct {
		name       string
		call       func(c *Client) error
		path       string
		wantMethod string
		wantKey    string
	}{
		{
			name: "replace documents on tag",
			call: func(c *Client) error {
				_, err := c.SetFilesForTag(context.Background(), "batch-7", []string{"doc-1"})
				return err
			},
			path:       "/app/company/company-9/tags/batch-7/documents",
			wantMethod: http.MethodPut,
			wantKey:    "docs",
		},
		{
			name: "add documents to tag",
			call: func(c *Client) error {
				_, err := c.AddFilesToTag(context.Background(), "batch-7", []string{"doc-1"})
				return err
			},
			path:       "/app/company/company-9/tags/batch-7/documents",
			wantMethod: http.MethodPatch,
			wantKey:    "docs",
		},
		{
			name: "replace tags on document",
			call: func(c *Client) error {
				_, err := c.SetTagsForFile(context.Background(), "doc-1", []string{"batch-7"})
				return err
			},
			path:       "/app/company/company-9/documents/doc-1/tags",
			wantMethod: http.MethodPut,
			wantKey:    "tags",
		},
		{
			name: "add tags to document",
			call: func(c *Client) error {
				_, err := c.AddTagsToFile(context.Background(), "doc-1", []string{"batch-7"})
				return err
			},
			path:       "/app/company/company-9/documents/doc-1/tags",
			wantMethod: http.MethodPatch,
			wantKey:    "tags",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockSypht()
			defer mock.Close()
			setCompanyHandler(mock)

			var gotMethod, gotBody string
			mock.SetHandler(tt.path, func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				gotMethod = r.Method
				gotBody = string(body)
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{}`))
			})

			client := newTestClient(t, mock)

			if err := tt.call(client); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotMethod != tt.wantMethod {
				t.Errorf("method = %q, want %q", gotMethod, tt.wantMethod)
			}

			var decoded map[string][]string
			if err := json.Unmarshal([]byte(gotBody), &decoded); err != nil {
				t.Fatalf("failed to decode body %q: %v", gotBody, err)
			}
			if _, ok := decoded[tt.wantKey]; !ok {
				t.Errorf("body %q missing key %q", gotBody, tt.wantKey)
			}
		})
	}
}

func TestDeleteTag(t *testing.T) {
	mock := testutil.NewMockSypht()
	defer mock.Close()
	setCompanyHandler(mock)

	var gotMethod string
	mock.SetHandler("/app/company/company-9/tags/stale", func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	})

	client := newTestClient(t, mock)

	if err := client.DeleteTag(context.Background(), "stale"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("method = %q, want DELETE", gotMethod)
	}
}
