package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CreateApplicationRequest represents a new application submission. Exactly
// one of CandidateID or ExternalEmail must be provided.
type CreateApplicationRequest struct {
	JobID         uuid.UUID  `json:"job_id" validate:"required"`
	CandidateID   *uuid.UUID `json:"candidate_id,omitempty"`
	ExternalEmail string     `json:"external_email,omitempty" validate:"omitempty,email"`
	ExternalName  string     `json:"external_name,omitempty"`

	ResumeID              *uuid.UUID `json:"resume_id,omitempty"`
	CoverLetter           string     `json:"cover_letter,omitempty"`
	QuestionnaireAnswered bool       `json:"questionnaire_answered,omitempty"`
	Attachments           []string   `json:"attachments,omitempty"`

	SalaryExpectation *SalaryExpectation `json:"salary_expectation,omitempty"`
	Availability      *Availability      `json:"availability,omitempty"`
}

// UpdateApplicationRequest is a partial update. Fields are applied in a fixed
// order: status, stage, rating, assignment, notes, screening data. An explicit
// stage wins over a stage derived from a status change in the same request.
type UpdateApplicationRequest struct {
	Status     *Status    `json:"status,omitempty"`
	Stage      *Stage     `json:"stage,omitempty"`
	Rating     *int       `json:"rating,omitempty"`
	AssignedTo *uuid.UUID `json:"assigned_to,omitempty"`
	Unassign   bool       `json:"unassign,omitempty"`
	Notes      string     `json:"notes,omitempty"`

	Screening *ScreeningData `json:"screening_data,omitempty"`
}

// IsEmpty reports whether the request carries no changes at all.
func (r *UpdateApplicationRequest) IsEmpty() bool {
	return r.Status == nil && r.Stage == nil && r.Rating == nil &&
		r.AssignedTo == nil && !r.Unassign && r.Notes == "" && r.Screening == nil
}

// BulkUpdateRequest applies one patch to many applications.
type BulkUpdateRequest struct {
	IDs    []uuid.UUID              `json:"ids" validate:"required,min=1"`
	Update UpdateApplicationRequest `json:"update"`
}

// BulkUpdateResult reports the outcome of a bulk update. Per-record failures
// are collected, never fatal for the batch.
type BulkUpdateResult struct {
	UpdatedCount int      `json:"updated_count"`
	Errors       []string `json:"errors,omitempty"`
}

// RejectRequest rejects an application with a reason.
type RejectRequest struct {
	Reason       string `json:"reason" validate:"required,min=1"`
	Feedback     string `json:"feedback,omitempty"`
	SendFeedback bool   `json:"send_feedback,omitempty"`
}

// WithdrawRequest withdraws an application on behalf of the candidate.
type WithdrawRequest struct {
	Reason string `json:"reason,omitempty"`
}

// RateRequest sets the recruiter rating on an application.
type RateRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Notes  string `json:"notes,omitempty"`
}

// AssignRequest assigns the application to a reviewer.
type AssignRequest struct {
	AssignedTo uuid.UUID `json:"assigned_to" validate:"required"`
}

// ScheduleInterviewRequest schedules an interview round. Scheduling also moves
// the application into interviewing status.
type ScheduleInterviewRequest struct {
	Type         string    `json:"type" validate:"required,oneof=phone technical onsite final"`
	ScheduledAt  time.Time `json:"scheduled_at" validate:"required"`
	DurationMins int       `json:"duration_mins,omitempty" validate:"omitempty,min=0"`
	Interviewers []string  `json:"interviewers,omitempty"`
	Location     string    `json:"location,omitempty"`
	Notes        string    `json:"notes,omitempty"`
}

// InterviewFeedbackRequest records one interviewer's verdict.
type InterviewFeedbackRequest struct {
	InterviewID    uuid.UUID `json:"interview_id,omitempty"`
	Rating         int       `json:"rating" validate:"required,min=1,max=5"`
	Recommendation string    `json:"recommendation" validate:"required,oneof=hire no-hire maybe"`
	Comments       string    `json:"comments,omitempty"`
}

// CommunicationRequest logs a contact with the candidate.
type CommunicationRequest struct {
	Type      string `json:"type" validate:"required,oneof=email phone message meeting"`
	Direction string `json:"direction" validate:"required,oneof=inbound outbound"`
	Subject   string `json:"subject,omitempty"`
	Body      string `json:"body,omitempty"`
}

// ApplicationFilter narrows FindMany queries. Zero values mean "no filter".
type ApplicationFilter struct {
	JobID       *uuid.UUID `json:"job_id,omitempty"`
	CandidateID *uuid.UUID `json:"candidate_id,omitempty"`
	Status      Status     `json:"status,omitempty"`
	Stage       Stage      `json:"stage,omitempty"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty"`
}

// Validate validates the CreateApplicationRequest using the validator.
func (r *CreateApplicationRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the BulkUpdateRequest using the validator.
func (r *BulkUpdateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the RejectRequest using the validator.
func (r *RejectRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the RateRequest using the validator.
func (r *RateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the AssignRequest using the validator.
func (r *AssignRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the ScheduleInterviewRequest using the validator.
func (r *ScheduleInterviewRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the InterviewFeedbackRequest using the validator.
func (r *InterviewFeedbackRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the CommunicationRequest using the validator.
func (r *CommunicationRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
