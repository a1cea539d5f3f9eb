// internal/classify/calculator/calculator.go
// Package calculator sums menu prices over the vegetarian verdict set.
package calculator

import (
	"math"

	"menu-classifier/internal/models"
)

// Sum totals the price of every verdict marked vegetarian, rounded to
// 2 decimal places. Rounding is round-half-to-even (banker's rounding):
// Sum of a single 0.125 item yields 0.12, not 0.13. Pure function, no
// failure modes short of float64 overflow.
func Sum(verdicts []models.Verdict) float64 {
	var total float64
	for _, v := range verdicts {
		if v.IsVegetarian {
			total += v.Item.Price
		}
	}
	return Round2(total)
}

// Round2 rounds to 2 decimal places, half to even.
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
