// internal/server/handlers_test.go
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-classifier/internal/classify/aggregate"
	"menu-classifier/internal/classify/keyword"
	"menu-classifier/internal/classify/retrieval"
	"menu-classifier/internal/common/config"
	"menu-classifier/internal/common/logger"
	"menu-classifier/internal/models"
	"menu-classifier/internal/review"
	"menu-classifier/internal/service"
)

// scriptedJudge answers for known dishes and stays silent otherwise,
// so unknown dishes fall through to the review path.
type scriptedJudge map[string]models.Evidence

func (j scriptedJudge) Classify(_ context.Context, item models.MenuItem, _ []retrieval.Neighbor) models.Evidence {
	if ev, ok := j[item.Name]; ok {
		return ev
	}
	return models.Evidence{Source: models.SourceJudgment, Leaning: models.LeanNone}
}

func newTestServer(t *testing.T) *Server {
	idx := retrieval.NewIndex()
	retrieval.SeedBuiltins(idx)

	judge := scriptedJudge{
		"Margherita Pizza": {Source: models.SourceJudgment, Leaning: models.LeanVegetarian, Strength: 0.9, Rationale: "cheese and tomato"},
		"Grilled Chicken":  {Source: models.SourceJudgment, Leaning: models.LeanNonVegetarian, Strength: 0.95, Rationale: "poultry"},
	}

	agg := aggregate.New(aggregate.Config{Workers: 2, TopK: 3},
		keyword.NewMatcher(), idx, judge,
		aggregate.NewDefaultStrategy(), logger.NewTestLogger(t))

	store := review.NewMemoryStore()
	t.Cleanup(store.Stop)

	svc := service.New(service.Config{ConfidenceThreshold: 0.7, SessionTTL: time.Minute},
		agg, store, nil, nil, logger.NewTestLogger(t))

	return New(config.ServerConfig{Host: "127.0.0.1", Port: 0}, svc, logger.NewTestLogger(t))
}

func doJSON(t *testing.T, srv *Server, path string, payload string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleClassify_Resolved(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, "/api/v1/menu/classify", `{
		"request_id": "req-1",
		"menu_items": [
			{"name": "Margherita Pizza", "price": 13.5},
			{"name": "Grilled Chicken", "price": 15.0}
		]
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.ClassifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "req-1", resp.RequestID)
	require.Len(t, resp.VegetarianItems, 1)
	assert.Equal(t, "Margherita Pizza", resp.VegetarianItems[0].Name)
	assert.Equal(t, 13.5, resp.TotalSum)
}

func TestHandleClassify_NeedsReview(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, "/api/v1/menu/classify", `{
		"request_id": "req-1",
		"menu_items": [
			{"name": "Margherita Pizza", "price": 13.5},
			{"name": "Chef Xyzzy Plate", "price": 22.0}
		]
	}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var resp models.NeedsReviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusNeedsReview, resp.Status)
	require.Len(t, resp.UncertainItems, 1)
	assert.Equal(t, "Chef Xyzzy Plate", resp.UncertainItems[0].Name)
	assert.Equal(t, 13.5, resp.PartialSum)
}

func TestHandleClassify_InvalidPayload(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name    string
		payload string
	}{
		{"missing menu_items", `{"request_id": "req-1"}`},
		{"negative price", `{"menu_items": [{"name": "Soup", "price": -1}]}`},
		{"empty name", `{"menu_items": [{"name": "", "price": 5}]}`},
		{"price missing", `{"menu_items": [{"name": "Soup"}]}`},
		{"not json", `{{{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, "/api/v1/menu/classify", tt.payload)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestHandleReview_Flow(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, "/api/v1/menu/classify", `{
		"request_id": "req-1",
		"menu_items": [{"name": "Chef Xyzzy Plate", "price": 22.0}]
	}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = doJSON(t, srv, "/api/v1/review", `{
		"request_id": "req-1",
		"corrections": [{"name": "Chef Xyzzy Plate", "is_vegetarian": true}]
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.ClassifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 22.0, resp.TotalSum)

	// The session is consumed; a replay is a 404.
	rec = doJSON(t, srv, "/api/v1/review", `{
		"request_id": "req-1",
		"corrections": [{"name": "Chef Xyzzy Plate", "is_vegetarian": true}]
	}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleReview_ErrorStatuses(t *testing.T) {
	srv := newTestServer(t)

	// Unknown session.
	rec := doJSON(t, srv, "/api/v1/review", `{
		"request_id": "ghost",
		"corrections": [{"name": "Anything", "is_vegetarian": true}]
	}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"]["code"])

	// Unknown item inside an open session.
	rec = doJSON(t, srv, "/api/v1/menu/classify", `{
		"request_id": "req-1",
		"menu_items": [{"name": "Chef Xyzzy Plate", "price": 22.0}]
	}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = doJSON(t, srv, "/api/v1/review", `{
		"request_id": "req-1",
		"corrections": [{"name": "Not On Menu", "is_vegetarian": true}]
	}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Empty corrections are rejected by schema validation.
	rec = doJSON(t, srv, "/api/v1/review", `{"request_id": "req-1", "corrections": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
