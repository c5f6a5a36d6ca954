package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/applicant-tracker/internal/types"
)

const applicationColumns = `id, job_id, status, stage, candidate_id, external_email,
	external_name, resume_id, cover_letter, rating, assigned_to,
	questionnaire_answered, attachments, timeline, communications,
	screening_data, interview_data, rejection_data, applied_at, last_activity_at`

// FindByID retrieves an application by ID. Returns nil without error when the
// record does not exist.
func (db *DB) FindByID(ctx context.Context, id uuid.UUID) (*types.Application, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	return scanApplication(row)
}

// FindByJobAndCandidate retrieves the application a registered candidate filed
// for a job, if any.
func (db *DB) FindByJobAndCandidate(ctx context.Context, jobID, candidateID uuid.UUID) (*types.Application, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications
		 WHERE job_id = $1 AND candidate_id = $2`, jobID, candidateID)
	return scanApplication(row)
}

// FindByJobAndEmail retrieves the application an external candidate filed for
// a job, if any.
func (db *DB) FindByJobAndEmail(ctx context.Context, jobID uuid.UUID, email string) (*types.Application, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications
		 WHERE job_id = $1 AND LOWER(external_email) = LOWER($2)`, jobID, email)
	return scanApplication(row)
}

// Save upserts the whole record including its nested documents. Last write
// wins: there is no version check, concurrent writers race on the full row.
func (db *DB) Save(ctx context.Context, app types.Application) (*types.Application, error) {
	attachments, err := marshalField(app.Attachments)
	if err != nil {
		return nil, err
	}
	timeline, err := marshalField(app.Timeline)
	if err != nil {
		return nil, err
	}
	communications, err := marshalField(app.Communications)
	if err != nil {
		return nil, err
	}
	screeningData, err := marshalField(app.Screening)
	if err != nil {
		return nil, err
	}
	interviewData, err := marshalField(app.Interviews)
	if err != nil {
		return nil, err
	}
	var rejectionData []byte
	if app.Rejection != nil {
		rejectionData, err = marshalField(app.Rejection)
		if err != nil {
			return nil, err
		}
	}

	var rating *int
	if app.Rating != 0 {
		rating = &app.Rating
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO applications (`+applicationColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		 ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			stage = EXCLUDED.stage,
			resume_id = EXCLUDED.resume_id,
			cover_letter = EXCLUDED.cover_letter,
			rating = EXCLUDED.rating,
			assigned_to = EXCLUDED.assigned_to,
			questionnaire_answered = EXCLUDED.questionnaire_answered,
			attachments = EXCLUDED.attachments,
			timeline = EXCLUDED.timeline,
			communications = EXCLUDED.communications,
			screening_data = EXCLUDED.screening_data,
			interview_data = EXCLUDED.interview_data,
			rejection_data = EXCLUDED.rejection_data,
			last_activity_at = EXCLUDED.last_activity_at`,
		app.ID, app.JobID, app.Status, app.Stage, app.CandidateID,
		nullableString(app.ExternalEmail), nullableString(app.ExternalName),
		app.ResumeID, nullableString(app.CoverLetter), rating, app.AssignedTo,
		app.QuestionnaireAnswered, attachments, timeline, communications,
		screeningData, interviewData, rejectionData,
		app.AppliedAt, app.LastActivityAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save application: %w", err)
	}

	return &app, nil
}

// FindMany retrieves a filtered page of applications plus the total match
// count, newest activity first.
func (db *DB) FindMany(ctx context.Context, filter types.ApplicationFilter, page, limit int) ([]types.Application, int, error) {
	where, args := buildFilter(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM applications` + where
	if err := db.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	offset := (page - 1) * limit
	query := `SELECT ` + applicationColumns + ` FROM applications` + where +
		fmt.Sprintf(` ORDER BY last_activity_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := db.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := make([]types.Application, 0, limit)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate applications: %w", err)
	}

	return apps, total, nil
}

// buildFilter turns an ApplicationFilter into a WHERE clause and args.
func buildFilter(filter types.ApplicationFilter) (string, []any) {
	var conditions []string
	var args []any

	add := func(condition string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if filter.JobID != nil {
		add("job_id = $%d", *filter.JobID)
	}
	if filter.CandidateID != nil {
		add("candidate_id = $%d", *filter.CandidateID)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.Stage != "" {
		add("stage = $%d", filter.Stage)
	}
	if filter.AssignedTo != nil {
		add("assigned_to = $%d", *filter.AssignedTo)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// rowScanner covers both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanApplication reads one application row, unmarshaling the JSONB documents.
func scanApplication(row rowScanner) (*types.Application, error) {
	var app types.Application
	var externalEmail, externalName, coverLetter *string
	var rating *int
	var attachmentsJSON, timelineJSON, communicationsJSON []byte
	var screeningJSON, interviewJSON, rejectionJSON []byte

	err := row.Scan(&app.ID, &app.JobID, &app.Status, &app.Stage,
		&app.CandidateID, &externalEmail, &externalName, &app.ResumeID,
		&coverLetter, &rating, &app.AssignedTo, &app.QuestionnaireAnswered,
		&attachmentsJSON, &timelineJSON, &communicationsJSON,
		&screeningJSON, &interviewJSON, &rejectionJSON,
		&app.AppliedAt, &app.LastActivityAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}

	if externalEmail != nil {
		app.ExternalEmail = *externalEmail
	}
	if externalName != nil {
		app.ExternalName = *externalName
	}
	if coverLetter != nil {
		app.CoverLetter = *coverLetter
	}
	if rating != nil {
		app.Rating = *rating
	}

	if err := unmarshalField(attachmentsJSON, &app.Attachments); err != nil {
		return nil, err
	}
	if err := unmarshalField(timelineJSON, &app.Timeline); err != nil {
		return nil, err
	}
	if err := unmarshalField(communicationsJSON, &app.Communications); err != nil {
		return nil, err
	}
	if err := unmarshalField(screeningJSON, &app.Screening); err != nil {
		return nil, err
	}
	if err := unmarshalField(interviewJSON, &app.Interviews); err != nil {
		return nil, err
	}
	if rejectionJSON != nil {
		if err := unmarshalField(rejectionJSON, &app.Rejection); err != nil {
			return nil, err
		}
	}

	return &app, nil
}

func marshalField(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal field: %w", err)
	}
	return data, nil
}

func unmarshalField(data []byte, v any) error {
	if data == nil {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal field: %w", err)
	}
	return nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
