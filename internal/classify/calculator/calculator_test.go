// internal/classify/calculator/calculator_test.go
package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"menu-classifier/internal/models"
)

func priced(price float64, vegetarian bool) models.Verdict {
	return models.Verdict{
		Item:         models.MenuItem{Name: "item", Price: price},
		IsVegetarian: vegetarian,
	}
}

func TestSum(t *testing.T) {
	tests := []struct {
		name     string
		verdicts []models.Verdict
		want     float64
	}{
		{
			name: "vegetarian items only",
			verdicts: []models.Verdict{
				priced(12.99, true),
				priced(18.50, false),
				priced(4.25, true),
			},
			want: 17.24,
		},
		{
			name:     "no verdicts",
			verdicts: nil,
			want:     0,
		},
		{
			name: "no vegetarian items",
			verdicts: []models.Verdict{
				priced(18.50, false),
			},
			want: 0,
		},
		{
			name: "float artifacts rounded away",
			verdicts: []models.Verdict{
				priced(0.1, true),
				priced(0.2, true),
			},
			want: 0.3,
		},
		{
			name: "half rounds to even",
			verdicts: []models.Verdict{
				priced(0.125, true),
			},
			want: 0.12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sum(tt.verdicts))
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.12, Round2(0.125))
	assert.Equal(t, 0.14, Round2(0.135))
	assert.Equal(t, 2.68, Round2(2.675000001))
	assert.Equal(t, -0.12, Round2(-0.125))
}
