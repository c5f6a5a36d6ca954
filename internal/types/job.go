package types

import (
	"time"

	"github.com/google/uuid"
)

// Job status constants
const (
	JobStatusOpen   = "open"
	JobStatusPaused = "paused"
	JobStatusClosed = "closed"
)

// Experience level constants, mapped to required years by the screening scorer.
const (
	LevelEntry     = "entry"
	LevelJunior    = "junior"
	LevelMid       = "mid"
	LevelSenior    = "senior"
	LevelLead      = "lead"
	LevelExecutive = "executive"
)

// Job is the posting an application targets. Only the fields the tracking
// engine needs are modeled here; the full posting lives with the jobs service.
type Job struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Status          string    `json:"status"`
	SkillsRequired  []string  `json:"skills_required"`
	ExperienceLevel string    `json:"experience_level,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// IsAcceptingApplications reports whether new applications may target the job.
func (j *Job) IsAcceptingApplications() bool {
	return j.Status == JobStatusOpen
}

// ResumeSkill is a single declared skill on a resume.
type ResumeSkill struct {
	Name string `json:"name"`
}

// WorkExperience is one past or current role on a resume.
type WorkExperience struct {
	Company   string     `json:"company,omitempty"`
	Title     string     `json:"title,omitempty"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Current   bool       `json:"current"`
}

// Resume is the parsed resume view the screening engine consumes. Parsing
// itself is done upstream.
type Resume struct {
	ID                uuid.UUID        `json:"id"`
	Skills            []ResumeSkill    `json:"skills"`
	Experience        []WorkExperience `json:"experience"`
	EstimatedATSScore *int             `json:"estimated_ats_score,omitempty"`
}

// CatalogSkill is a reference-catalog entry used for category tagging in
// match results.
type CatalogSkill struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}
