// internal/classify/retrieval/corpus.go
package retrieval

import (
	"context"
	"database/sql"
	"fmt"

	"menu-classifier/internal/common/logger"
	"menu-classifier/internal/models"
)

const corpusQuery = `
	SELECT name, COALESCE(description, ''), is_vegetarian
	FROM labeled_dishes
	ORDER BY id`

// SeedFromPostgres extends an upsertable index with labeled dishes from
// the labeled_dishes table. Rows are loaded in id order so the in-memory
// index's insertion-order tie-break stays stable across restarts.
func SeedFromPostgres(ctx context.Context, db *sql.DB, idx Upserter, log logger.Logger) (int, error) {
	rows, err := db.QueryContext(ctx, corpusQuery)
	if err != nil {
		return 0, fmt.Errorf("query labeled_dishes: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var name, description string
		var vegetarian bool
		if err := rows.Scan(&name, &description, &vegetarian); err != nil {
			return count, fmt.Errorf("scan labeled_dishes row: %w", err)
		}

		text := name
		if description != "" {
			text = name + " " + description
		}
		label := models.LeanNonVegetarian
		if vegetarian {
			label = models.LeanVegetarian
		}
		idx.Upsert(text, label)
		count++
	}
	if err := rows.Err(); err != nil {
		return count, fmt.Errorf("iterate labeled_dishes: %w", err)
	}

	log.Info("retrieval corpus seeded from postgres", map[string]interface{}{
		"rows": count,
	})
	return count, nil
}
