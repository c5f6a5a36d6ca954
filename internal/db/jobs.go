package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/applicant-tracker/internal/types"
)

// FindJobByID retrieves the tracking engine's view of a job. Returns nil
// without error when the job does not exist.
func (db *DB) FindJobByID(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	var job types.Job
	var skillsJSON []byte
	var experienceLevel *string

	err := db.pool.QueryRow(ctx,
		`SELECT id, title, status, skills_required, experience_level, created_at
		 FROM jobs WHERE id = $1`, id,
	).Scan(&job.ID, &job.Title, &job.Status, &skillsJSON, &experienceLevel, &job.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	if err := unmarshalField(skillsJSON, &job.SkillsRequired); err != nil {
		return nil, err
	}
	if experienceLevel != nil {
		job.ExperienceLevel = *experienceLevel
	}

	return &job, nil
}
