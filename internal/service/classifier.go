// internal/service/classifier.go
// Package service orchestrates the classification pipeline: evidence
// gathering, the confidence gate, review session lifecycle, and the
// vegetarian total.
package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"menu-classifier/internal/classify/aggregate"
	"menu-classifier/internal/classify/calculator"
	"menu-classifier/internal/classify/policy"
	"menu-classifier/internal/common/errors"
	"menu-classifier/internal/common/logger"
	"menu-classifier/internal/common/metrics"
	"menu-classifier/internal/common/observability"
	"menu-classifier/internal/models"
	"menu-classifier/internal/review"
)

// Outcome is the result of a classification request. Exactly one field
// is set: Resolved when every verdict cleared the threshold, NeedsReview
// when human input is required.
type Outcome struct {
	Resolved    *models.ClassifyResponse
	NeedsReview *models.NeedsReviewResponse
}

// Config carries the policy knobs the service applies on top of the
// evidence pipeline.
type Config struct {
	ConfidenceThreshold float64
	SessionTTL          time.Duration
}

type Service struct {
	config     Config
	aggregator *aggregate.Aggregator
	store      review.Store
	notifier   review.Notifier
	obs        *observability.Observability
	logger     logger.Logger
}

func New(cfg Config, agg *aggregate.Aggregator, store review.Store, notifier review.Notifier, obs *observability.Observability, log logger.Logger) *Service {
	if notifier == nil {
		notifier = review.NopNotifier{}
	}
	return &Service{
		config:     cfg,
		aggregator: agg,
		store:      store,
		notifier:   notifier,
		obs:        obs,
		logger:     log,
	}
}

// Classify runs the evidence pipeline over the menu and either returns
// the resolved vegetarian total or opens a review session for the items
// that fell below the confidence threshold.
func (s *Service) Classify(ctx context.Context, req models.ClassifyRequest) (*Outcome, error) {
	start := time.Now()
	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	verdicts, err := s.aggregator.ClassifyItems(ctx, req.MenuItems, requestID)
	if err != nil {
		s.record(ctx, start, "error")
		return nil, err
	}

	confident, uncertain := policy.Partition(verdicts, s.config.ConfidenceThreshold)

	if len(uncertain) == 0 {
		s.record(ctx, start, "resolved")
		return &Outcome{Resolved: s.buildResolved(requestID, confident)}, nil
	}

	now := time.Now()
	session := &models.ReviewSession{
		RequestID: requestID,
		Confident: confident,
		Uncertain: uncertain,
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.SessionTTL),
	}
	if err := s.store.Open(ctx, session); err != nil {
		s.record(ctx, start, "error")
		return nil, err
	}
	s.notifier.SessionOpened(ctx, session)

	s.logger.Info("Opened review session", map[string]interface{}{
		"request_id":      requestID,
		"uncertain_items": len(uncertain),
		"expires_at":      session.ExpiresAt,
	})
	s.record(ctx, start, "needs_review")
	return &Outcome{NeedsReview: s.buildNeedsReview(session)}, nil
}

// Correct applies reviewer corrections to an open session and finishes
// the classification. The session is validated first so an unknown item
// name rejects the request without consuming the session; only a fully
// valid correction set claims it.
func (s *Service) Correct(ctx context.Context, req models.ReviewRequest) (*models.ClassifyResponse, error) {
	session, err := s.store.Get(ctx, req.RequestID)
	if err != nil {
		metrics.Corrections.WithLabelValues("rejected").Inc()
		return nil, err
	}

	byKey := session.UncertainByKey()
	for _, c := range req.Corrections {
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if len(byKey[key]) == 0 {
			metrics.Corrections.WithLabelValues("rejected").Inc()
			return nil, errors.NewUnknownItemError(req.RequestID, c.Name)
		}
	}

	// Validation passed; take exclusive ownership. A concurrent caller
	// that loses this race observes UnknownSessionError.
	session, err = s.store.Claim(ctx, req.RequestID)
	if err != nil {
		metrics.Corrections.WithLabelValues("rejected").Inc()
		return nil, err
	}

	resolved := s.applyCorrections(session, req.Corrections)
	all := append(append([]models.Verdict{}, session.Confident...), resolved...)

	metrics.Corrections.WithLabelValues("applied").Inc()
	s.logger.Info("Applied review corrections", map[string]interface{}{
		"request_id":  req.RequestID,
		"corrections": len(req.Corrections),
	})
	return s.buildResolved(req.RequestID, all), nil
}

// applyCorrections resolves every uncertain verdict: corrected items
// become confidence-1.0 manual verdicts, uncorrected ones stay out of
// the vegetarian total.
func (s *Service) applyCorrections(session *models.ReviewSession, corrections []models.Correction) []models.Verdict {
	byKey := session.UncertainByKey()
	resolved := make([]models.Verdict, len(session.Uncertain))
	copy(resolved, session.Uncertain)

	corrected := make([]bool, len(resolved))
	for _, c := range corrections {
		key := strings.ToLower(strings.TrimSpace(c.Name))
		for _, i := range byKey[key] {
			v := resolved[i]
			v.IsVegetarian = c.IsVegetarian
			v.Confidence = 1.0
			v.Method = models.SourceManual
			v.Rationale = "human-reviewed"
			v.Evidence = append(v.Evidence, models.Evidence{
				Source:    models.SourceManual,
				Leaning:   leaningFor(c.IsVegetarian),
				Strength:  1.0,
				Rationale: "reviewer correction",
			})
			resolved[i] = v
			corrected[i] = true
		}
	}

	for i := range resolved {
		if !corrected[i] {
			resolved[i].IsVegetarian = false
		}
	}
	return resolved
}

func (s *Service) buildResolved(requestID string, verdicts []models.Verdict) *models.ClassifyResponse {
	resp := &models.ClassifyResponse{
		VegetarianItems:      make([]models.ClassifiedItem, 0, len(verdicts)),
		ClassificationMethod: methodUnion(verdicts),
		RequestID:            requestID,
	}
	for _, v := range verdicts {
		if v.IsVegetarian {
			resp.VegetarianItems = append(resp.VegetarianItems, classifiedItem(v))
		}
	}
	resp.TotalSum = calculator.Round2(calculator.Sum(verdicts))
	return resp
}

func (s *Service) buildNeedsReview(session *models.ReviewSession) *models.NeedsReviewResponse {
	resp := &models.NeedsReviewResponse{
		Status:         models.StatusNeedsReview,
		RequestID:      session.RequestID,
		ConfidentItems: make([]models.ClassifiedItem, 0, len(session.Confident)),
		UncertainItems: make([]models.UncertainItem, 0, len(session.Uncertain)),
	}
	for _, v := range session.Confident {
		if v.IsVegetarian {
			resp.ConfidentItems = append(resp.ConfidentItems, classifiedItem(v))
		}
	}
	for _, v := range session.Uncertain {
		resp.UncertainItems = append(resp.UncertainItems, models.UncertainItem{
			Name:       v.Item.Name,
			Price:      v.Item.Price,
			Confidence: v.Confidence,
			Evidence:   v.Evidence,
		})
	}
	resp.PartialSum = calculator.Round2(calculator.Sum(session.Confident))
	return resp
}

func classifiedItem(v models.Verdict) models.ClassifiedItem {
	return models.ClassifiedItem{
		Name:       v.Item.Name,
		Price:      v.Item.Price,
		Confidence: v.Confidence,
		Reasoning:  v.Rationale,
	}
}

func leaningFor(isVegetarian bool) string {
	if isVegetarian {
		return models.LeanVegetarian
	}
	return models.LeanNonVegetarian
}

// methodUnion folds per-verdict method tags into one request-level tag,
// with sources in a stable order.
func methodUnion(verdicts []models.Verdict) string {
	rank := map[string]int{
		models.SourceKeyword:   0,
		models.SourceRetrieval: 1,
		models.SourceJudgment:  2,
		models.SourceManual:    3,
	}
	seen := make(map[string]bool)
	for _, v := range verdicts {
		for _, part := range strings.Split(v.Method, "+") {
			if _, ok := rank[part]; ok {
				seen[part] = true
			}
		}
	}
	if len(seen) == 0 {
		return "default"
	}
	parts := make([]string, 0, len(seen))
	for p := range seen {
		parts = append(parts, p)
	}
	sort.Slice(parts, func(i, j int) bool { return rank[parts[i]] < rank[parts[j]] })
	return strings.Join(parts, "+")
}

func (s *Service) record(ctx context.Context, start time.Time, status string) {
	metrics.ClassificationRequests.WithLabelValues(status).Inc()
	metrics.ClassificationDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	if s.obs != nil {
		s.obs.RecordRequest(ctx, status)
		s.obs.RecordDuration(ctx, time.Since(start), status)
	}
}
