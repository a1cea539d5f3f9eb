// internal/classify/aggregate/fusion.go
package aggregate

import (
	"fmt"
	"strings"

	"menu-classifier/internal/models"
)

// Strategy fuses the three per-item evidence signals into a leaning and
// confidence. It is an interface so the weighting heuristic can be
// swapped without touching aggregation control flow.
type Strategy interface {
	Fuse(kw, ret, jud models.Evidence) (leaning string, confidence float64, rationale string)
}

// DefaultStrategy is the production fusion rule. The oracle leads when
// it produced a usable outcome; retrieval agreement earns a bounded
// bonus, keyword disagreement a matching penalty. Without the oracle,
// retrieval is trusted above the corpus-confidence floor, then keyword.
// Fallback confidence is capped so a fallback verdict is never mistaken
// for an oracle-confirmed one.
type DefaultStrategy struct {
	AgreementBonus        float64
	DisagreementPenalty   float64
	RetrievalFloor        float64
	MaxFallbackConfidence float64
}

// NewDefaultStrategy returns the strategy with the default magnitudes.
func NewDefaultStrategy() *DefaultStrategy {
	return &DefaultStrategy{
		AgreementBonus:        0.1,
		DisagreementPenalty:   0.1,
		RetrievalFloor:        0.5,
		MaxFallbackConfidence: 0.85,
	}
}

func (s *DefaultStrategy) Fuse(kw, ret, jud models.Evidence) (string, float64, string) {
	if jud.Usable() {
		confidence := jud.Strength
		if ret.Usable() && ret.Leaning == jud.Leaning {
			confidence = clamp(confidence + s.AgreementBonus)
		}
		if kw.Usable() && kw.Leaning != jud.Leaning {
			confidence = clamp(confidence - s.DisagreementPenalty)
		}
		return jud.Leaning, confidence, joinRationales(kw, ret, jud)
	}

	if ret.Usable() && ret.Strength >= s.RetrievalFloor {
		confidence := ret.Strength
		if confidence > s.MaxFallbackConfidence {
			confidence = s.MaxFallbackConfidence
		}
		return ret.Leaning, confidence, joinRationales(kw, ret)
	}

	if kw.Usable() {
		confidence := kw.Strength
		if confidence > s.MaxFallbackConfidence {
			confidence = s.MaxFallbackConfidence
		}
		return kw.Leaning, confidence, joinRationales(kw)
	}

	// Conservative default: without any usable signal, overclaiming
	// vegetarian status is the worse error.
	return models.LeanNonVegetarian, 0, "no positive evidence"
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// joinRationales concatenates the usable sources' rationale strings,
// tagged by source.
func joinRationales(evidence ...models.Evidence) string {
	parts := make([]string, 0, len(evidence))
	for _, e := range evidence {
		if e.Usable() {
			parts = append(parts, fmt.Sprintf("%s: %s", e.Source, e.Rationale))
		}
	}
	if len(parts) == 0 {
		return "no positive evidence"
	}
	return strings.Join(parts, "; ")
}
