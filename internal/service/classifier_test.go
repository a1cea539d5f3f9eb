// internal/service/classifier_test.go
package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-classifier/internal/classify/aggregate"
	"menu-classifier/internal/classify/keyword"
	"menu-classifier/internal/classify/retrieval"
	"menu-classifier/internal/common/errors"
	"menu-classifier/internal/common/logger"
	"menu-classifier/internal/models"
	"menu-classifier/internal/review"
)

// scriptedJudge returns a fixed verdict per dish name; unknown dishes
// get no usable evidence.
type scriptedJudge map[string]models.Evidence

func (j scriptedJudge) Classify(_ context.Context, item models.MenuItem, _ []retrieval.Neighbor) models.Evidence {
	if ev, ok := j[item.Name]; ok {
		return ev
	}
	return models.Evidence{Source: models.SourceJudgment, Leaning: models.LeanNone}
}

func judgment(leaning string, strength float64) models.Evidence {
	return models.Evidence{
		Source:    models.SourceJudgment,
		Leaning:   leaning,
		Strength:  strength,
		Rationale: "scripted",
	}
}

func newTestService(t *testing.T, judge scriptedJudge) *Service {
	agg := aggregate.New(aggregate.Config{Workers: 2, TopK: 3},
		keyword.NewMatcher(), retrieval.NewIndex(), judge,
		aggregate.NewDefaultStrategy(), logger.NewTestLogger(t))

	store := review.NewMemoryStore()
	t.Cleanup(store.Stop)

	return New(Config{ConfidenceThreshold: 0.7, SessionTTL: time.Minute},
		agg, store, nil, nil, logger.NewTestLogger(t))
}

func menu() []models.MenuItem {
	return []models.MenuItem{
		{Name: "Garden Salad", Price: 8.00},
		{Name: "Grilled Chicken", Price: 15.00},
		{Name: "Mystery Curry", Price: 12.00},
	}
}

func TestService_Classify_AllConfident(t *testing.T) {
	svc := newTestService(t, scriptedJudge{
		"Garden Salad":    judgment(models.LeanVegetarian, 0.9),
		"Grilled Chicken": judgment(models.LeanNonVegetarian, 0.95),
		"Mystery Curry":   judgment(models.LeanNonVegetarian, 0.8),
	})

	outcome, err := svc.Classify(context.Background(), models.ClassifyRequest{
		MenuItems: menu(),
		RequestID: "req-1",
	})
	require.NoError(t, err)
	require.NotNil(t, outcome.Resolved)
	assert.Nil(t, outcome.NeedsReview)

	resp := outcome.Resolved
	assert.Equal(t, "req-1", resp.RequestID)
	require.Len(t, resp.VegetarianItems, 1)
	assert.Equal(t, "Garden Salad", resp.VegetarianItems[0].Name)
	assert.Equal(t, 8.00, resp.TotalSum)
	assert.Equal(t, "keyword+judgment", resp.ClassificationMethod)
}

func TestService_Classify_KeywordOnlyResolves(t *testing.T) {
	// No retrieval corpus and no oracle answers: clear keyword hits
	// alone must carry both items over the threshold.
	svc := newTestService(t, scriptedJudge{})

	outcome, err := svc.Classify(context.Background(), models.ClassifyRequest{
		MenuItems: []models.MenuItem{
			{Name: "Greek Salad", Price: 7.50},
			{Name: "Grilled Chicken", Price: 12.00},
		},
		RequestID: "req-1",
	})
	require.NoError(t, err)
	require.NotNil(t, outcome.Resolved)
	assert.Nil(t, outcome.NeedsReview)

	resp := outcome.Resolved
	require.Len(t, resp.VegetarianItems, 1)
	assert.Equal(t, "Greek Salad", resp.VegetarianItems[0].Name)
	assert.Equal(t, 7.50, resp.TotalSum)
	assert.Equal(t, models.SourceKeyword, resp.ClassificationMethod)
}

func TestService_Classify_AllNonVegetarianResolves(t *testing.T) {
	svc := newTestService(t, scriptedJudge{
		"Beef Brisket": judgment(models.LeanNonVegetarian, 0.95),
	})

	outcome, err := svc.Classify(context.Background(), models.ClassifyRequest{
		MenuItems: []models.MenuItem{
			{Name: "Beef Brisket", Price: 21.00},
			{Name: "Salmon Fillet", Price: 18.00},
		},
		RequestID: "req-1",
	})
	require.NoError(t, err)
	require.NotNil(t, outcome.Resolved)

	resp := outcome.Resolved
	assert.Empty(t, resp.VegetarianItems)
	assert.Equal(t, 0.00, resp.TotalSum)
}

func TestService_Classify_GeneratesRequestID(t *testing.T) {
	svc := newTestService(t, scriptedJudge{
		"Garden Salad": judgment(models.LeanVegetarian, 0.9),
	})

	outcome, err := svc.Classify(context.Background(), models.ClassifyRequest{
		MenuItems: []models.MenuItem{{Name: "Garden Salad", Price: 8}},
	})
	require.NoError(t, err)
	require.NotNil(t, outcome.Resolved)

	_, parseErr := uuid.Parse(outcome.Resolved.RequestID)
	assert.NoError(t, parseErr)
}

func TestService_Classify_EmptyMenu(t *testing.T) {
	svc := newTestService(t, scriptedJudge{})

	outcome, err := svc.Classify(context.Background(), models.ClassifyRequest{RequestID: "req-1"})
	require.NoError(t, err)
	require.NotNil(t, outcome.Resolved)
	assert.Empty(t, outcome.Resolved.VegetarianItems)
	assert.Zero(t, outcome.Resolved.TotalSum)
}

func TestService_Classify_NeedsReview(t *testing.T) {
	svc := newTestService(t, scriptedJudge{
		"Garden Salad":    judgment(models.LeanVegetarian, 0.9),
		"Grilled Chicken": judgment(models.LeanNonVegetarian, 0.95),
		// Mystery Curry has no usable evidence at all.
	})

	outcome, err := svc.Classify(context.Background(), models.ClassifyRequest{
		MenuItems: menu(),
		RequestID: "req-1",
	})
	require.NoError(t, err)
	require.NotNil(t, outcome.NeedsReview)
	assert.Nil(t, outcome.Resolved)

	resp := outcome.NeedsReview
	assert.Equal(t, models.StatusNeedsReview, resp.Status)
	assert.Equal(t, "req-1", resp.RequestID)
	require.Len(t, resp.UncertainItems, 1)
	assert.Equal(t, "Mystery Curry", resp.UncertainItems[0].Name)
	require.Len(t, resp.ConfidentItems, 1)
	assert.Equal(t, "Garden Salad", resp.ConfidentItems[0].Name)
	assert.Equal(t, 8.00, resp.PartialSum)
}

func TestService_Classify_DuplicateSessionRejected(t *testing.T) {
	svc := newTestService(t, scriptedJudge{})

	req := models.ClassifyRequest{
		MenuItems: []models.MenuItem{{Name: "Mystery Curry", Price: 12}},
		RequestID: "req-1",
	}
	_, err := svc.Classify(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Classify(context.Background(), req)
	assert.Equal(t, errors.ErrCodeDuplicateSession, errors.CodeOf(err))
}

func TestService_Correct_ResolvesSession(t *testing.T) {
	svc := newTestService(t, scriptedJudge{
		"Garden Salad":    judgment(models.LeanVegetarian, 0.9),
		"Grilled Chicken": judgment(models.LeanNonVegetarian, 0.95),
	})

	_, err := svc.Classify(context.Background(), models.ClassifyRequest{
		MenuItems: menu(),
		RequestID: "req-1",
	})
	require.NoError(t, err)

	resp, err := svc.Correct(context.Background(), models.ReviewRequest{
		RequestID: "req-1",
		Corrections: []models.Correction{
			{Name: "Mystery Curry", IsVegetarian: true},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 20.00, resp.TotalSum)
	require.Len(t, resp.VegetarianItems, 2)
	corrected := resp.VegetarianItems[1]
	assert.Equal(t, "Mystery Curry", corrected.Name)
	assert.Equal(t, 1.0, corrected.Confidence)
	assert.Equal(t, "human-reviewed", corrected.Reasoning)
	assert.Contains(t, resp.ClassificationMethod, models.SourceManual)
}

func TestService_Correct_CaseInsensitiveName(t *testing.T) {
	svc := newTestService(t, scriptedJudge{})

	_, err := svc.Classify(context.Background(), models.ClassifyRequest{
		MenuItems: []models.MenuItem{{Name: "Mystery Curry", Price: 12}},
		RequestID: "req-1",
	})
	require.NoError(t, err)

	resp, err := svc.Correct(context.Background(), models.ReviewRequest{
		RequestID: "req-1",
		Corrections: []models.Correction{
			{Name: "  mystery curry ", IsVegetarian: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 12.00, resp.TotalSum)
}

func TestService_Correct_UncorrectedItemsExcluded(t *testing.T) {
	svc := newTestService(t, scriptedJudge{})

	_, err := svc.Classify(context.Background(), models.ClassifyRequest{
		MenuItems: []models.MenuItem{
			{Name: "Mystery Curry", Price: 12},
			{Name: "Chef Special", Price: 20},
		},
		RequestID: "req-1",
	})
	require.NoError(t, err)

	// Only one of the two uncertain items is corrected; the other must
	// not count toward the vegetarian total.
	resp, err := svc.Correct(context.Background(), models.ReviewRequest{
		RequestID: "req-1",
		Corrections: []models.Correction{
			{Name: "Mystery Curry", IsVegetarian: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 12.00, resp.TotalSum)
	require.Len(t, resp.VegetarianItems, 1)
}

func TestService_Correct_UnknownItemLeavesSessionOpen(t *testing.T) {
	svc := newTestService(t, scriptedJudge{})

	_, err := svc.Classify(context.Background(), models.ClassifyRequest{
		MenuItems: []models.MenuItem{{Name: "Mystery Curry", Price: 12}},
		RequestID: "req-1",
	})
	require.NoError(t, err)

	_, err = svc.Correct(context.Background(), models.ReviewRequest{
		RequestID: "req-1",
		Corrections: []models.Correction{
			{Name: "Nonexistent Dish", IsVegetarian: true},
		},
	})
	assert.Equal(t, errors.ErrCodeUnknownItem, errors.CodeOf(err))

	// The rejected correction consumed nothing; a valid one still works.
	resp, err := svc.Correct(context.Background(), models.ReviewRequest{
		RequestID: "req-1",
		Corrections: []models.Correction{
			{Name: "Mystery Curry", IsVegetarian: false},
		},
	})
	require.NoError(t, err)
	assert.Zero(t, resp.TotalSum)
}

func TestService_Correct_SecondCorrectionRejected(t *testing.T) {
	svc := newTestService(t, scriptedJudge{})

	_, err := svc.Classify(context.Background(), models.ClassifyRequest{
		MenuItems: []models.MenuItem{{Name: "Mystery Curry", Price: 12}},
		RequestID: "req-1",
	})
	require.NoError(t, err)

	correction := models.ReviewRequest{
		RequestID: "req-1",
		Corrections: []models.Correction{
			{Name: "Mystery Curry", IsVegetarian: true},
		},
	}
	_, err = svc.Correct(context.Background(), correction)
	require.NoError(t, err)

	_, err = svc.Correct(context.Background(), correction)
	assert.Equal(t, errors.ErrCodeUnknownSession, errors.CodeOf(err))
}

func TestService_Correct_UnknownSession(t *testing.T) {
	svc := newTestService(t, scriptedJudge{})

	_, err := svc.Correct(context.Background(), models.ReviewRequest{
		RequestID: "never-opened",
		Corrections: []models.Correction{
			{Name: "Anything", IsVegetarian: true},
		},
	})
	assert.Equal(t, errors.ErrCodeUnknownSession, errors.CodeOf(err))
}

func TestService_Correct_DuplicateNamesAllCorrected(t *testing.T) {
	svc := newTestService(t, scriptedJudge{})

	_, err := svc.Classify(context.Background(), models.ClassifyRequest{
		MenuItems: []models.MenuItem{
			{Name: "Mystery Curry", Price: 12},
			{Name: "Mystery Curry", Price: 14},
		},
		RequestID: "req-1",
	})
	require.NoError(t, err)

	resp, err := svc.Correct(context.Background(), models.ReviewRequest{
		RequestID: "req-1",
		Corrections: []models.Correction{
			{Name: "Mystery Curry", IsVegetarian: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 26.00, resp.TotalSum)
	assert.Len(t, resp.VegetarianItems, 2)
}
