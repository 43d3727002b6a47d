package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/rs/zerolog"
)

// TagSuggester propose les tags déjà utilisés par les produits indexés.
type TagSuggester struct {
	client *elasticsearch.Client
	index  string
	log    zerolog.Logger
}

func NewTagSuggester(client *elasticsearch.Client, index string, log zerolog.Logger) *TagSuggester {
	return &TagSuggester{client: client, index: index, log: log}
}

// SuggestTags renvoie jusqu'à limit tags contenant input, les plus utilisés d'abord.
func (s *TagSuggester) SuggestTags(ctx context.Context, input string, limit int) ([]string, error) {
	q := strings.ToLower(strings.TrimSpace(input))

	query := map[string]any{"match_all": map[string]any{}}
	if q != "" {
		query = map[string]any{
			"wildcard": map[string]any{
				"tags.keyword": map[string]any{
					"value":            "*" + escapeWildcard(q) + "*",
					"case_insensitive": true,
				},
			},
		}
	}
	body := map[string]any{
		"size":  0,
		"query": query,
		"aggs": map[string]any{
			"tags": map[string]any{
				"terms": map[string]any{"field": "tags.keyword", "size": 100},
			},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode tag query: %w", err)
	}
	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  &buf,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("tag search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		s.log.Warn().Str("status", res.Status()).Msg("⚠️ Recherche de tags refusée")
		return nil, fmt.Errorf("tag search: %s", res.Status())
	}

	var out struct {
		Aggregations struct {
			Tags struct {
				Buckets []struct {
					Key string `json:"key"`
				} `json:"buckets"`
			} `json:"tags"`
		} `json:"aggregations"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode tag search: %w", err)
	}

	tags := []string{}
	for _, b := range out.Aggregations.Tags.Buckets {
		// l'agrégation compte aussi les autres tags des produits trouvés
		if q != "" && !strings.Contains(strings.ToLower(b.Key), q) {
			continue
		}
		tags = append(tags, b.Key)
		if limit > 0 && len(tags) == limit {
			break
		}
	}
	return tags, nil
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(s string) string { return wildcardEscaper.Replace(s) }
