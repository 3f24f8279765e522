package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
)

type seen struct {
	Method string
	Path   string
	Body   map[string]any
}

// fakeES answers the few endpoints the index uses.
type fakeES struct {
	mu       sync.Mutex
	requests []seen
	hits     []string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)
	f.mu.Lock()
	f.requests = append(f.requests, seen{Method: r.Method, Path: r.URL.Path, Body: body})
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/":
		_, _ = io.WriteString(w, `{"name":"fake","cluster_name":"test","version":{"number":"9.0.0"},"tagline":"You Know, for Search"}`)
	case strings.HasSuffix(r.URL.Path, "/_search"):
		hits := make([]map[string]any, 0, len(f.hits))
		for _, id := range f.hits {
			hits = append(hits, map[string]any{"_id": id})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hits": map[string]any{"total": map[string]any{"value": 7}, "hits": hits},
		})
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"result":"not_found"}`)
	default:
		_, _ = io.WriteString(w, `{"result":"created"}`)
	}
}

func newIndex(t *testing.T, f *fakeES) *ProductIndex {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	es, err := NewClient(context.Background(), srv.URL, "", "")
	require.NoError(t, err)
	return NewProductIndex(es, "products")
}

func TestIndexProduct(t *testing.T) {
	f := &fakeES{}
	idx := newIndex(t, f)

	p := &models.Product{Title: "Desk Lamp", Slug: "desk-lamp", Description: "warm light", Price: decimal.RequireFromString("19.50")}
	p.ID = uuid.New()
	require.NoError(t, idx.IndexProduct(context.Background(), p))

	last := f.requests[len(f.requests)-1]
	assert.Equal(t, "/products/_doc/"+p.ID.String(), last.Path)
	assert.Equal(t, "Desk Lamp", last.Body["title"])
	assert.InDelta(t, 19.5, last.Body["price"], 1e-9)
}

func TestSearch(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	f := &fakeES{hits: []string{a.String(), "not-a-uuid", b.String()}}
	idx := newIndex(t, f)

	total, ids, err := idx.Search(context.Background(), "lamp", 20, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 7, total)
	assert.Equal(t, []uuid.UUID{a, b}, ids)

	last := f.requests[len(f.requests)-1]
	assert.Equal(t, "/products/_search", last.Path)
	assert.EqualValues(t, 20, last.Body["from"])
	assert.EqualValues(t, 10, last.Body["size"])
}

func TestDeleteProduct_MissingIsFine(t *testing.T) {
	idx := newIndex(t, &fakeES{})
	assert.NoError(t, idx.DeleteProduct(context.Background(), uuid.New()))
}
