// Package db provides PostgreSQL persistence for application tracking records.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// schema is the DDL for the tracking engine's tables. Nested documents
// (timeline, communications, screening/interview/rejection data) live in
// JSONB so they round-trip with full fidelity.
const schema = `
CREATE TABLE IF NOT EXISTS applications (
	id                     UUID PRIMARY KEY,
	job_id                 UUID NOT NULL,
	status                 TEXT NOT NULL,
	stage                  TEXT NOT NULL,
	candidate_id           UUID,
	external_email         TEXT,
	external_name          TEXT,
	resume_id              UUID,
	cover_letter           TEXT,
	rating                 INT,
	assigned_to            UUID,
	questionnaire_answered BOOLEAN NOT NULL DEFAULT FALSE,
	attachments            JSONB,
	timeline               JSONB NOT NULL DEFAULT '[]',
	communications         JSONB,
	screening_data         JSONB,
	interview_data         JSONB,
	rejection_data         JSONB,
	applied_at             TIMESTAMPTZ NOT NULL,
	last_activity_at       TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_applications_job_candidate
	ON applications (job_id, candidate_id) WHERE candidate_id IS NOT NULL;
CREATE UNIQUE INDEX IF NOT EXISTS idx_applications_job_email
	ON applications (job_id, LOWER(external_email))
	WHERE external_email IS NOT NULL AND external_email <> '';
CREATE INDEX IF NOT EXISTS idx_applications_status ON applications (status);
CREATE INDEX IF NOT EXISTS idx_applications_assigned_to ON applications (assigned_to);

CREATE TABLE IF NOT EXISTS jobs (
	id               UUID PRIMARY KEY,
	title            TEXT NOT NULL,
	status           TEXT NOT NULL DEFAULT 'open',
	skills_required  JSONB,
	experience_level TEXT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS resumes (
	id                  UUID PRIMARY KEY,
	skills              JSONB,
	experience          JSONB,
	estimated_ats_score INT,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS skill_catalog (
	name     TEXT PRIMARY KEY,
	category TEXT NOT NULL
);
`

// Migrate creates the schema if it does not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
