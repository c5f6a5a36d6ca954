package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/applicant-tracker/internal/types"
)

// FindResumeByID retrieves a parsed resume for screening. Returns nil without
// error when the resume does not exist.
func (db *DB) FindResumeByID(ctx context.Context, id uuid.UUID) (*types.Resume, error) {
	var resume types.Resume
	var skillsJSON, experienceJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, skills, experience, estimated_ats_score
		 FROM resumes WHERE id = $1`, id,
	).Scan(&resume.ID, &skillsJSON, &experienceJSON, &resume.EstimatedATSScore)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}

	if err := unmarshalField(skillsJSON, &resume.Skills); err != nil {
		return nil, err
	}
	if err := unmarshalField(experienceJSON, &resume.Experience); err != nil {
		return nil, err
	}

	return &resume, nil
}
