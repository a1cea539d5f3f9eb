// internal/server/schemas.go
package server

// Request payload schemas. Prices must be non-negative and every item
// needs a non-empty name; everything else is optional.

const classifySchema = `{
	"type": "object",
	"required": ["menu_items"],
	"properties": {
		"request_id": {"type": "string"},
		"menu_items": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name", "price"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"price": {"type": "number", "minimum": 0},
					"description": {"type": "string"},
					"category": {"type": "string"}
				}
			}
		}
	}
}`

const reviewSchema = `{
	"type": "object",
	"required": ["request_id", "corrections"],
	"properties": {
		"request_id": {"type": "string", "minLength": 1},
		"corrections": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["name", "is_vegetarian"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"is_vegetarian": {"type": "boolean"}
				}
			}
		}
	}
}`
