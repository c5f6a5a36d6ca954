// Package tracking implements the application lifecycle state machine and the
// orchestration service around it.
package tracking

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/applicant-tracker/internal/types"
)

// ErrNotFound indicates a referenced application, job or resume does not exist.
type ErrNotFound struct {
	Kind string // "application", "job", "resume"
	ID   uuid.UUID
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ErrInvalidTransition indicates a status or stage change outside the allowed
// transition tables. The record is left unchanged.
type ErrInvalidTransition struct {
	Field string // "status" or "stage"
	From  string
	To    string
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid %s transition from %q to %q", e.Field, e.From, e.To)
}

// ErrInvalidRating indicates a rating outside [1,5].
type ErrInvalidRating struct {
	Rating int
}

func (e *ErrInvalidRating) Error() string {
	return fmt.Sprintf("invalid rating %d: must be between 1 and 5", e.Rating)
}

// ErrDuplicateApplication indicates the candidate (or external email) already
// applied to the job.
type ErrDuplicateApplication struct {
	JobID uuid.UUID
}

func (e *ErrDuplicateApplication) Error() string {
	return fmt.Sprintf("an application for job %s already exists for this candidate", e.JobID)
}

// ErrJobNotAcceptingApplications indicates the target job is not open.
type ErrJobNotAcceptingApplications struct {
	JobID  uuid.UUID
	Status string
}

func (e *ErrJobNotAcceptingApplications) Error() string {
	return fmt.Sprintf("job %s is not accepting applications (status %q)", e.JobID, e.Status)
}

// ErrForbidden indicates an ownership mismatch, e.g. a withdraw attempted by
// someone other than the owning candidate.
type ErrForbidden struct {
	Reason string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Reason)
}

// ErrInvalidApplication indicates a create request that violates the record
// invariants (e.g. neither or both of candidate ID and external email set).
type ErrInvalidApplication struct {
	Reason string
}

func (e *ErrInvalidApplication) Error() string {
	return fmt.Sprintf("invalid application: %s", e.Reason)
}

// invalidStatus is a shorthand constructor used by the reducers.
func invalidStatus(from, to types.Status) error {
	return &ErrInvalidTransition{Field: "status", From: string(from), To: string(to)}
}

func invalidStage(from, to types.Stage) error {
	return &ErrInvalidTransition{Field: "stage", From: string(from), To: string(to)}
}
