package db

import (
	"context"
	"fmt"

	"github.com/jonathan/applicant-tracker/internal/types"
)

// ListSkills returns the reference skill catalog used for category tagging.
func (db *DB) ListSkills(ctx context.Context) ([]types.CatalogSkill, error) {
	rows, err := db.pool.Query(ctx, `SELECT name, category FROM skill_catalog ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog skills: %w", err)
	}
	defer rows.Close()

	var skills []types.CatalogSkill
	for rows.Next() {
		var s types.CatalogSkill
		if err := rows.Scan(&s.Name, &s.Category); err != nil {
			return nil, fmt.Errorf("failed to scan catalog skill: %w", err)
		}
		skills = append(skills, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate catalog skills: %w", err)
	}

	return skills, nil
}
