package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog_admin/internal/models"
	"catalog_admin/internal/productform"
)

func textFile(name, body string) productform.FileInput {
	return productform.FileInput{
		Name:        name,
		Size:        int64(len(body)),
		ContentType: "image/png",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func TestMemoryStagingLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStaging()

	url, err := s.Stage(ctx, "drafts/d1/a.png", textFile("a.png", "png"))
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,cG5n", url)
	assert.Equal(t, 1, s.Len())

	rc, err := s.Open(ctx, "drafts/d1/a.png")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	require.NoError(t, s.Release(ctx, "drafts/d1/a.png"))
	assert.Zero(t, s.Len())
	_, err = s.Open(ctx, "drafts/d1/a.png")
	assert.Error(t, err)
}

func TestMemoryBusDeliversPerDraft(t *testing.T) {
	ctx := context.Background()
	bus := NewMemoryBus()

	events, cancel, err := bus.Subscribe(ctx, "d1")
	require.NoError(t, err)
	other, cancelOther, err := bus.Subscribe(ctx, "d2")
	require.NoError(t, err)
	defer cancelOther()

	require.NoError(t, bus.Publish(ctx, models.DraftEvent{Type: models.EventDraftSubmitted, DraftID: "d1", ProductID: "p1"}))

	select {
	case ev := <-events:
		assert.Equal(t, models.EventDraftSubmitted, ev.Type)
		assert.Equal(t, "p1", ev.ProductID)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
	select {
	case ev := <-other:
		t.Fatalf("unexpected event %v", ev)
	default:
	}

	cancel()
	cancel()
	_, open := <-events
	assert.False(t, open)
	assert.NoError(t, bus.Publish(ctx, models.DraftEvent{Type: models.EventDraftExpired, DraftID: "d1"}))
}

func newSuggester(t *testing.T, h http.HandlerFunc) *TagSuggester {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewTagSuggester(es, "products", zerolog.Nop())
}

func TestSuggestTagsFiltersBuckets(t *testing.T) {
	var query map[string]any
	s := newSuggester(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/_search", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&query)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"aggregations":{"tags":{"buckets":[
			{"key":"Summer","doc_count":9},{"key":"sale","doc_count":7},
			{"key":"summer-sale","doc_count":3},{"key":"midsummer","doc_count":1}]}}}`)
	})

	tags, err := s.SuggestTags(context.Background(), " SUM ", 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"Summer", "summer-sale"}, tags)
	wildcard := query["query"].(map[string]any)["wildcard"].(map[string]any)["tags.keyword"].(map[string]any)
	assert.Equal(t, "*sum*", wildcard["value"])
	assert.Equal(t, true, wildcard["case_insensitive"])
}

func TestSuggestTagsEmptyInputMatchesAll(t *testing.T) {
	var query map[string]any
	s := newSuggester(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&query)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		_, _ = io.WriteString(w, `{"aggregations":{"tags":{"buckets":[{"key":"a"},{"key":"b"}]}}}`)
	})

	tags, err := s.SuggestTags(context.Background(), "", 0)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tags)
	assert.Contains(t, query["query"], "match_all")
}

func TestSuggestTagsServerError(t *testing.T) {
	s := newSuggester(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"boom"}`)
	})

	_, err := s.SuggestTags(context.Background(), "x", 5)

	assert.Error(t, err)
}

func TestEscapeWildcard(t *testing.T) {
	assert.Equal(t, `a\*b\?c\\`, escapeWildcard(`a*b?c\`))
}
