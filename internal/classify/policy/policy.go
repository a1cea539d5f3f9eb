// internal/classify/policy/policy.go
// Package policy partitions fused verdicts into confident and uncertain
// sets against the configured confidence threshold.
package policy

import "menu-classifier/internal/models"

// Partition splits verdicts by confidence. An item is confident when
// its confidence clears the threshold regardless of leaning: a
// confidently non-vegetarian item is simply excluded from the
// vegetarian set, not flagged for review. Input order is preserved in
// both halves.
func Partition(verdicts []models.Verdict, threshold float64) (confident, uncertain []models.Verdict) {
	for _, v := range verdicts {
		if v.Confidence >= threshold {
			confident = append(confident, v)
		} else {
			uncertain = append(uncertain, v)
		}
	}
	return confident, uncertain
}
