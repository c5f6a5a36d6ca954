// Package types provides type definitions for structured data used throughout the applicant-tracker system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// Status is the coarse lifecycle position of an application.
type Status string

// Application status values. Hired, Rejected and Withdrawn are terminal.
const (
	StatusApplied      Status = "applied"
	StatusScreening    Status = "screening"
	StatusInterviewing Status = "interviewing"
	StatusOffered      Status = "offered"
	StatusHired        Status = "hired"
	StatusRejected     Status = "rejected"
	StatusWithdrawn    Status = "withdrawn"
)

// IsTerminal reports whether the status has no outgoing transitions.
func (s Status) IsTerminal() bool {
	return s == StatusHired || s == StatusRejected || s == StatusWithdrawn
}

// Stage is the finer-grained pipeline position within the interview process.
type Stage string

// Pipeline stages, in order. Hired is terminal.
const (
	StageScreening   Stage = "screening"
	StagePhoneScreen Stage = "phone_screen"
	StageTechnical   Stage = "technical"
	StageOnsite      Stage = "onsite"
	StageFinal       Stage = "final"
	StageOffer       Stage = "offer"
	StageHired       Stage = "hired"
)

// Timeline action constants
const (
	ActionCreated            = "created"
	ActionStatusChanged      = "status_changed"
	ActionStageChanged       = "stage_changed"
	ActionRated              = "rated"
	ActionAssigned           = "assigned"
	ActionUnassigned         = "unassigned"
	ActionRejected           = "rejected"
	ActionWithdrawn          = "withdrawn"
	ActionInterviewScheduled = "interview_scheduled"
	ActionInterviewFeedback  = "interview_feedback"
	ActionNoteAdded          = "note_added"
	ActionCommunicationSent  = "communication_logged"
	ActionScreeningUpdated   = "screening_updated"
)

// StaleAfter is how long an application may sit without activity before it is
// flagged as stale.
const StaleAfter = 14 * 24 * time.Hour

// TimelineEntry is a single record in the append-only audit trail.
// Entries are only ever appended, never edited or removed.
type TimelineEntry struct {
	ID              uuid.UUID         `json:"id"`
	Action          string            `json:"action"`
	Description     string            `json:"description"`
	PerformedBy     uuid.UUID         `json:"performed_by,omitempty"`
	PerformedByName string            `json:"performed_by_name,omitempty"`
	Timestamp       time.Time         `json:"timestamp"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// Communication is an inbound or outbound contact record with the candidate.
type Communication struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"` // email, phone, message, meeting
	Direction string    `json:"direction"`
	Subject   string    `json:"subject,omitempty"`
	Body      string    `json:"body,omitempty"`
	SentBy    uuid.UUID `json:"sent_by,omitempty"`
	SentAt    time.Time `json:"sent_at"`
}

// SkillsMatch summarizes how a candidate's skills line up against a job's
// required skills.
type SkillsMatch struct {
	Required []string `json:"required"`
	Matched  []string `json:"matched"`
	Missing  []string `json:"missing"`
	Score    float64  `json:"score"`
}

// ExperienceMatch compares candidate experience against the job requirement.
type ExperienceMatch struct {
	Required  string  `json:"required,omitempty"` // experience level, e.g. "senior"
	Candidate float64 `json:"candidate"`          // total years
	Score     float64 `json:"score"`
}

// SalaryExpectation captures the candidate's declared salary range.
type SalaryExpectation struct {
	Min      int    `json:"min,omitempty"`
	Max      int    `json:"max,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// Availability captures when the candidate can start.
type Availability struct {
	StartDate   *time.Time `json:"start_date,omitempty"`
	NoticeDays  int        `json:"notice_days,omitempty"`
	IsImmediate bool       `json:"is_immediate,omitempty"`
}

// ScreeningData holds the results of automated screening. AutoScreeningScore
// stays nil until a resume has been screened.
type ScreeningData struct {
	AutoScreeningScore *int               `json:"auto_screening_score,omitempty"`
	SkillsMatch        *SkillsMatch       `json:"skills_match,omitempty"`
	ExperienceMatch    *ExperienceMatch   `json:"experience_match,omitempty"`
	SalaryExpectation  *SalaryExpectation `json:"salary_expectation,omitempty"`
	Availability       *Availability      `json:"availability,omitempty"`
}

// ScheduledInterview is a single planned interview round.
type ScheduledInterview struct {
	ID           uuid.UUID `json:"id"`
	Type         string    `json:"type"` // phone, technical, onsite, final
	ScheduledAt  time.Time `json:"scheduled_at"`
	DurationMins int       `json:"duration_mins,omitempty"`
	Interviewers []string  `json:"interviewers,omitempty"`
	Location     string    `json:"location,omitempty"`
	Notes        string    `json:"notes,omitempty"`
}

// InterviewFeedback is one interviewer's verdict on a completed interview.
type InterviewFeedback struct {
	ID             uuid.UUID `json:"id"`
	InterviewID    uuid.UUID `json:"interview_id,omitempty"`
	Interviewer    uuid.UUID `json:"interviewer"`
	Rating         int       `json:"rating"`         // 1-5
	Recommendation string    `json:"recommendation"` // hire, no-hire, maybe
	Comments       string    `json:"comments,omitempty"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// InterviewData groups scheduled interviews and collected feedback.
type InterviewData struct {
	ScheduledInterviews []ScheduledInterview `json:"scheduled_interviews,omitempty"`
	Feedback            []InterviewFeedback  `json:"feedback,omitempty"`
}

// RejectionData is present only when the application status is rejected.
type RejectionData struct {
	Reason       string    `json:"reason"`
	Feedback     string    `json:"feedback,omitempty"`
	RejectedBy   uuid.UUID `json:"rejected_by,omitempty"`
	RejectedAt   time.Time `json:"rejected_at"`
	FeedbackSent bool      `json:"feedback_sent"`
}

// Application is the central tracking record for one candidate/job pair.
// Exactly one of CandidateID or ExternalEmail is set: an application comes
// either from a registered platform user or from an external candidate.
type Application struct {
	ID     uuid.UUID `json:"id"`
	JobID  uuid.UUID `json:"job_id"`
	Status Status    `json:"status"`
	Stage  Stage     `json:"stage"`

	CandidateID   *uuid.UUID `json:"candidate_id,omitempty"`
	ExternalEmail string     `json:"external_email,omitempty"`
	ExternalName  string     `json:"external_name,omitempty"`

	ResumeID    *uuid.UUID `json:"resume_id,omitempty"`
	CoverLetter string     `json:"cover_letter,omitempty"`

	Rating     int        `json:"rating,omitempty"` // 1-5, zero means unrated
	AssignedTo *uuid.UUID `json:"assigned_to,omitempty"`

	Timeline       []TimelineEntry `json:"timeline"`
	Communications []Communication `json:"communications,omitempty"`
	Screening      ScreeningData   `json:"screening_data"`
	Interviews     InterviewData   `json:"interview_data"`
	Rejection      *RejectionData  `json:"rejection_data,omitempty"`

	QuestionnaireAnswered bool     `json:"questionnaire_answered,omitempty"`
	Attachments           []string `json:"attachments,omitempty"`

	AppliedAt      time.Time `json:"applied_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// IsExternal reports whether the application came from an unregistered
// candidate (identified by email rather than a platform user ID).
func (a *Application) IsExternal() bool {
	return a.CandidateID == nil && a.ExternalEmail != ""
}

// IsStale reports whether a non-terminal application has seen no activity
// for the staleness window.
func (a *Application) IsStale(now time.Time) bool {
	if a.Status.IsTerminal() {
		return false
	}
	return now.Sub(a.LastActivityAt) > StaleAfter
}
