// internal/classify/retrieval/elastic.go
package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"menu-classifier/internal/models"
)

// ElasticSearcher queries a labeled dish index in Elasticsearch. Each
// document carries name, description and is_vegetarian fields.
type ElasticSearcher struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticSearcher(client *elasticsearch.Client, index string) *ElasticSearcher {
	return &ElasticSearcher{client: client, index: index}
}

// Query runs a multi_match search and maps hits to neighbors.
// Elasticsearch relevance scores are unbounded, so they are squashed
// into [0,1) with score/(1+score).
func (s *ElasticSearcher) Query(ctx context.Context, text string, k int) ([]Neighbor, error) {
	if k <= 0 {
		return nil, nil
	}

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  text,
				"fields": []string{"name^3", "description"},
				"type":   "best_fields",
			},
		},
	}
	body, _ := json.Marshal(queryBody)

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
		Size:  &k,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("retrieval search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("retrieval search error: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Score  float64 `json:"_score"`
				Source struct {
					Name         string `json:"name"`
					IsVegetarian bool   `json:"is_vegetarian"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	neighbors := make([]Neighbor, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		label := models.LeanNonVegetarian
		if h.Source.IsVegetarian {
			label = models.LeanVegetarian
		}
		neighbors = append(neighbors, Neighbor{
			Name:       h.Source.Name,
			Label:      label,
			Similarity: h.Score / (1 + h.Score),
		})
	}
	return neighbors, nil
}
