// internal/classify/oracle/client.go
// Package oracle wraps the external free-text judgment capability. It
// is the only component in the core that crosses a network boundary,
// and it degrades instead of failing: a timeout or error yields an
// explicit unavailable outcome.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"menu-classifier/internal/common/httpclient"
	"menu-classifier/internal/common/logger"
	"menu-classifier/internal/common/metrics"
	"menu-classifier/internal/classify/retrieval"
	"menu-classifier/internal/models"
)

// Judge is the capability the aggregator depends on. Implementations
// never fail the caller: an unusable outcome is reported as Evidence
// with leaning none.
type Judge interface {
	Classify(ctx context.Context, item models.MenuItem, grounding []retrieval.Neighbor) models.Evidence
}

// maxGroundingNeighbors caps the retrieval context forwarded to the
// judgment service.
const maxGroundingNeighbors = 3

type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

// Client calls the judgment service over HTTP with a bounded timeout
// and a bounded number of retries with exponential backoff.
type Client struct {
	config Config
	client *httpclient.Client
	logger logger.Logger
}

func NewClient(cfg Config, log logger.Logger) *Client {
	return &Client{
		config: cfg,
		client: httpclient.NewClient(0), // per-call deadline comes from context
		logger: log.WithFields(map[string]interface{}{"component": "judgment-oracle"}),
	}
}

type judgmentRequest struct {
	DishName    string              `json:"dish_name"`
	Description string              `json:"description,omitempty"`
	Category    string              `json:"category,omitempty"`
	Context     []judgmentGrounding `json:"context,omitempty"`
}

type judgmentGrounding struct {
	Name       string  `json:"name"`
	Label      string  `json:"label"`
	Similarity float64 `json:"similarity"`
}

type judgmentResponse struct {
	IsVegetarian bool    `json:"is_vegetarian"`
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning"`
}

// Classify asks the judgment service for a verdict on one item. The
// top retrieval neighbors are forwarded as grounding context.
func (c *Client) Classify(ctx context.Context, item models.MenuItem, grounding []retrieval.Neighbor) models.Evidence {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if len(grounding) > maxGroundingNeighbors {
		grounding = grounding[:maxGroundingNeighbors]
	}
	reqBody := judgmentRequest{
		DishName:    item.Name,
		Description: item.Description,
		Category:    item.Category,
	}
	for _, n := range grounding {
		reqBody.Context = append(reqBody.Context, judgmentGrounding(n))
	}
	body, _ := json.Marshal(reqBody)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return c.unavailable(item, ctx.Err())
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.config.BaseURL+"/v1/judgments", bytes.NewReader(body))
		if err != nil {
			lastErr = err
			break
		}
		req.Header.Set("Content-Type", "application/json")
		if c.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		}

		resp, lastErr = c.client.Do(req)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			return c.unavailable(item, ctx.Err())
		}
	}

	if lastErr != nil || resp == nil {
		return c.unavailable(item, lastErr)
	}
	defer resp.Body.Close()

	var parsed judgmentResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return c.unavailable(item, fmt.Errorf("decode response: %w", err))
	}

	if parsed.Confidence < 0 || parsed.Confidence > 1 {
		parsed.Confidence = 0.5
	}
	if strings.TrimSpace(parsed.Reasoning) == "" {
		parsed.Reasoning = "no reasoning provided"
	}

	leaning := models.LeanNonVegetarian
	if parsed.IsVegetarian {
		leaning = models.LeanVegetarian
	}

	metrics.OracleCalls.WithLabelValues("ok").Inc()
	return models.Evidence{
		Source:    models.SourceJudgment,
		Leaning:   leaning,
		Strength:  parsed.Confidence,
		Rationale: parsed.Reasoning,
	}
}

// unavailable is the degraded outcome: leaning none, strength 0. The
// aggregator falls back to lower-tier signals.
func (c *Client) unavailable(item models.MenuItem, err error) models.Evidence {
	metrics.OracleCalls.WithLabelValues("unavailable").Inc()
	c.logger.Warn("judgment oracle unavailable", map[string]interface{}{
		"dishName": item.Name,
		"error":    fmt.Sprint(err),
	})
	return models.Evidence{
		Source:    models.SourceJudgment,
		Leaning:   models.LeanNone,
		Strength:  0,
		Rationale: "unavailable",
	}
}
