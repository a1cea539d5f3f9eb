// internal/classify/aggregate/aggregator.go
// Package aggregate runs the three evidence sources per menu item under
// a bounded concurrency budget and fuses them into one Verdict each.
package aggregate

import (
	"context"
	"strings"
	"sync"

	"menu-classifier/internal/classify/keyword"
	"menu-classifier/internal/classify/oracle"
	"menu-classifier/internal/classify/retrieval"
	"menu-classifier/internal/common/errors"
	"menu-classifier/internal/common/logger"
	"menu-classifier/internal/common/metrics"
	"menu-classifier/internal/models"
)

type Config struct {
	Workers int
	TopK    int
}

// Aggregator fans classification work out over a fixed worker budget.
// The judgment oracle is the latency-dominant step, so the pool caps
// outbound call volume per request; the keyword matcher and retrieval
// index run inline within each worker.
type Aggregator struct {
	config   Config
	matcher  *keyword.Matcher
	searcher retrieval.Searcher
	judge    oracle.Judge
	strategy Strategy
	logger   logger.Logger
}

func New(cfg Config, matcher *keyword.Matcher, searcher retrieval.Searcher, judge oracle.Judge, strategy Strategy, log logger.Logger) *Aggregator {
	if cfg.Workers < 1 {
		cfg.Workers = 4
	}
	if cfg.TopK == 0 {
		cfg.TopK = 5
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Aggregator{
		config:   cfg,
		matcher:  matcher,
		searcher: searcher,
		judge:    judge,
		strategy: strategy,
		logger:   log.WithFields(map[string]interface{}{"component": "aggregator"}),
	}
}

// ClassifyItems produces one Verdict per input item, in input order.
// Results are written into an index-addressed slice so completion order
// of concurrent oracle calls never reorders the output. The only error
// is caller cancellation; per-item fusion never fails.
func (a *Aggregator) ClassifyItems(ctx context.Context, items []models.MenuItem, requestID string) ([]models.Verdict, error) {
	verdicts := make([]models.Verdict, len(items))

	sem := make(chan struct{}, a.config.Workers)
	var wg sync.WaitGroup

	for i, item := range items {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, item models.MenuItem) {
			defer wg.Done()
			defer func() { <-sem }()
			verdicts[i] = a.classifyOne(ctx, item, requestID)
		}(i, item)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		// Abandoned request: the caller must not act on partial output.
		return nil, err
	}

	for _, v := range verdicts {
		metrics.ItemsClassified.WithLabelValues(v.Method).Inc()
	}
	return verdicts, nil
}

func (a *Aggregator) classifyOne(ctx context.Context, item models.MenuItem, requestID string) models.Verdict {
	text := item.SearchText()

	kw := a.matcher.Evaluate(text)

	ret := models.Evidence{Source: models.SourceRetrieval, Leaning: models.LeanNone}
	neighbors, err := a.searcher.Query(ctx, text, a.config.TopK)
	if err != nil {
		// A failed evidence source degrades to no evidence; it never
		// aborts the item's classification.
		evErr := errors.NewEvidenceUnavailableError(models.SourceRetrieval, err)
		a.logger.WithError(evErr).Warn("retrieval evidence unavailable", map[string]interface{}{
			"requestId": requestID,
			"dishName":  item.Name,
		})
		neighbors = nil
	} else {
		ret = retrieval.ToEvidence(neighbors)
	}

	jud := a.judge.Classify(ctx, item, neighbors)

	leaning, confidence, rationale := a.strategy.Fuse(kw, ret, jud)

	contributing := make([]models.Evidence, 0, 3)
	for _, e := range []models.Evidence{kw, ret, jud} {
		if e.Usable() {
			contributing = append(contributing, e)
		}
	}

	return models.Verdict{
		Item:         item,
		IsVegetarian: leaning == models.LeanVegetarian,
		Confidence:   confidence,
		Evidence:     contributing,
		Method:       methodTag(contributing),
		Rationale:    rationale,
	}
}

// methodTag names every source that actually produced evidence, in a
// fixed order so the tag is deterministic.
func methodTag(contributing []models.Evidence) string {
	if len(contributing) == 0 {
		return "default"
	}
	sources := make([]string, 0, len(contributing))
	for _, src := range []string{models.SourceKeyword, models.SourceRetrieval, models.SourceJudgment} {
		for _, e := range contributing {
			if e.Source == src {
				sources = append(sources, src)
				break
			}
		}
	}
	return strings.Join(sources, "+")
}
