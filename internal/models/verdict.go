// internal/models/verdict.go
package models

import "time"

// Evidence source tags.
const (
	SourceKeyword   = "keyword"
	SourceRetrieval = "retrieval"
	SourceJudgment  = "judgment"
	SourceManual    = "manual"
)

// Leaning values an evidence source can report.
const (
	LeanVegetarian    = "vegetarian"
	LeanNonVegetarian = "non_vegetarian"
	LeanNone          = "none"
)

// Evidence is one classification signal from one source.
type Evidence struct {
	Source    string  `json:"source"`
	Leaning   string  `json:"leaning"`
	Strength  float64 `json:"strength"`
	Rationale string  `json:"rationale"`
}

// Usable reports whether the source produced an actual signal.
func (e Evidence) Usable() bool {
	return e.Leaning != LeanNone && e.Strength > 0
}

// Verdict is the fused, final per-item classification. Confidence is
// always in [0,1]; Method names every source that contributed evidence,
// sources that errored or timed out are excluded.
type Verdict struct {
	Item         MenuItem   `json:"item"`
	IsVegetarian bool       `json:"is_vegetarian"`
	Confidence   float64    `json:"confidence"`
	Evidence     []Evidence `json:"evidence"`
	Method       string     `json:"method"`
	Rationale    string     `json:"rationale"`
}

// ClassificationResult is the ordered outcome for one request. Verdict
// order matches input item order.
type ClassificationResult struct {
	RequestID string    `json:"request_id"`
	Verdicts  []Verdict `json:"verdicts"`
	Subtotal  float64   `json:"subtotal"`
	Total     float64   `json:"total"`
}

// ReviewSession is the per-request holding area for uncertain verdicts
// awaiting human correction. It is immutable once opened; the only
// transition is a terminal close (correction applied) or expiry.
type ReviewSession struct {
	RequestID string    `json:"request_id"`
	Confident []Verdict `json:"confident"`
	Uncertain []Verdict `json:"uncertain"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its TTL at the given time.
func (s *ReviewSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// UncertainByKey indexes the uncertain verdicts by case-normalized name.
// Duplicate names map to every matching position.
func (s *ReviewSession) UncertainByKey() map[string][]int {
	idx := make(map[string][]int, len(s.Uncertain))
	for i, v := range s.Uncertain {
		k := v.Item.Key()
		idx[k] = append(idx[k], i)
	}
	return idx
}
