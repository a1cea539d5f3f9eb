// internal/models/menu.go
package models

import "strings"

// MenuItem is one structured menu entry handed to the core by the
// ingestion front end. Identity within a request is the case-normalized
// name; duplicate names are the caller's concern.
type MenuItem struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
}

// Key returns the case-normalized identity of the item within a request.
func (m MenuItem) Key() string {
	return strings.ToLower(strings.TrimSpace(m.Name))
}

// SearchText concatenates the fields the evidence sources classify on.
func (m MenuItem) SearchText() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{m.Name, m.Description, m.Category} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Correction is a human override for one uncertain item.
type Correction struct {
	Name         string `json:"name"`
	IsVegetarian bool   `json:"is_vegetarian"`
}
