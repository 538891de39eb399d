package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/sypht-team/sypht-go-client/internal/testutil"
)

// setCompanyHandler serves the company lookup so company-scoped endpoints
// resolve against a fixed id.
func setCompanyHandler(mock *testutil.MockSypht) {
	mock.SetResponse("/app/company/byclientid/test-client",
		testutil.NewJSONResponse(`{"id": "company-9", "name": "Acme"}`))
}

func TestSetManyEntitiesChunks(t *testing.T) {
	mock := testutil.NewMockSypht()
	defer mock.Close()
	setCompanyHandler(mock)

	var mu sync.Mutex
	var batchSizes []int
	mock.SetHandler("/storage/company-9/bulkentity/supplier/", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var batch []Entity
		if err := json.Unmarshal(body, &batch); err != nil {
			t.Errorf("failed to decode batch: %v", err)
		}
		mu.Lock()
		batchSizes = append(batchSizes, len(batch))
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"updated": true}`))
	})

	client := newTestClient(t, mock)

	entities := make([]Entity, 5)
	for i := range entities {
		entities[i] = Entity{EntityID: "e", Data: map[string]any{"n": i}}
	}

	responses, err := client.SetManyEntities(context.Background(), "supplier", entities, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(responses) != 3 {
		t.Errorf("len(responses) = %d, want 3", len(responses))
	}
	if len(batchSizes) != 3 || batchSizes[0] != 2 || batchSizes[1] != 2 || batchSizes[2] != 1 {
		t.Errorf("batch sizes = %v, want [2 2 1]", batchSizes)
	}
}

func TestGetAllEntityIDsFollowsCursor(t *testing.T) {
	mock := testutil.NewMockSypht()
	defer mock.Close()
	setCompanyHandler(mock)

	mock.SetHandler("/storage/company-9/entitysearch/supplier", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "":
			w.Write([]byte(`{"entities": ["e1", "e2"], "next_page": "cursor-2"}`))
		case "cursor-2":
			w.Write([]byte(`{"entities": ["e3"], "next_page": ""}`))
		default:
			w.Write([]byte(`{"entities": [], "next_page": ""}`))
		}
	})

	client := newTestClient(t, mock)

	ids, err := client.GetAllEntityIDs(context.Background(), "supplier")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"e1", "e2", "e3"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestSearchEntitiesDefaultsEmptyCriteria(t *testing.T) {
	mock := testutil.NewMockSypht()
	defer mock.Close()
	setCompanyHandler(mock)

	var gotBody string
	mock.SetHandler("/storage/company-9/entitysearch/supplier/", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"matches": []}`))
	})

	client := newTestClient(t, mock)

	if _, err := client.SearchEntities(context.Background(), "supplier", nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded struct {
		Exact map[string]any `json:"exact"`
		Fuzzy map[string]any `json:"fuzzy"`
	}
	if err := json.Unmarshal([]byte(gotBody), &decoded); err != nil {
		t.Fatalf("failed to decode search body %q: %v", gotBody, err)
	}
	if decoded.Exact == nil || decoded.Fuzzy == nil {
		t.Errorf("nil criteria must be sent as empty objects, got %s", gotBody)
	}
}

func TestGetEntityPath(t *testing.T) {
	mock := testutil.NewMockSypht()
	defer mock.Close()
	setCompanyHandler(mock)

	var gotPath string
	mock.SetHandler("/storage/company-9/entity/supplier/acme-ltd", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"entity_id": "acme-ltd"}`))
	})

	client := newTestClient(t, mock)

	if _, err := client.GetEntity(context.Background(), "supplier", "acme-ltd"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/storage/company-9/entity/supplier/acme-ltd" {
		t.Errorf("path = %q", gotPath)
	}
}
