// internal/models/api.go
package models

// Wire types for the tool-call and correction endpoints.

type ClassifyRequest struct {
	MenuItems []MenuItem `json:"menu_items"`
	RequestID string     `json:"request_id,omitempty"`
}

type ClassifiedItem struct {
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// ClassifyResponse is the resolved-case tool output.
type ClassifyResponse struct {
	VegetarianItems      []ClassifiedItem `json:"vegetarian_items"`
	TotalSum             float64          `json:"total_sum"`
	ClassificationMethod string           `json:"classification_method"`
	RequestID            string           `json:"request_id"`
}

type UncertainItem struct {
	Name       string     `json:"name"`
	Price      float64    `json:"price"`
	Confidence float64    `json:"confidence"`
	Evidence   []Evidence `json:"evidence"`
}

// NeedsReviewResponse is returned when at least one verdict fell below
// the confidence threshold.
type NeedsReviewResponse struct {
	Status         string           `json:"status"`
	RequestID      string           `json:"request_id"`
	ConfidentItems []ClassifiedItem `json:"confident_items"`
	UncertainItems []UncertainItem  `json:"uncertain_items"`
	PartialSum     float64          `json:"partial_sum"`
}

// StatusNeedsReview is the status value of NeedsReviewResponse.
const StatusNeedsReview = "needs_review"

type ReviewRequest struct {
	RequestID   string       `json:"request_id"`
	Corrections []Correction `json:"corrections"`
}
