// Package screening computes the composite auto-screening score used to
// triage applications before human review.
package screening

import (
	"math"
	"time"

	"github.com/jonathan/applicant-tracker/internal/types"
)

// Component weights. They sum to 100 when every component is present; when a
// component is unavailable the composite is renormalized over the rest.
const (
	weightSkills       = 40.0
	weightExperience   = 30.0
	weightResume       = 20.0
	weightCompleteness = 10.0
)

// Completeness point values, capped at the completeness weight.
const (
	pointsCoverLetter   = 5.0
	pointsQuestionnaire = 3.0
	pointsAttachments   = 2.0
)

// minCurrentRoleYears is the minimum experience credit for a current role.
// A just-started current role still counts as one year.
const minCurrentRoleYears = 1.0

const hoursPerYear = 24 * 365.25

// requiredYearsForLevel maps a job's experience level to required years.
var requiredYearsForLevel = map[string]float64{
	types.LevelEntry:     0,
	types.LevelJunior:    1,
	types.LevelMid:       3,
	types.LevelSenior:    5,
	types.LevelLead:      7,
	types.LevelExecutive: 10,
}

// Input carries the signals available for one application. Nil pointers mean
// the component is unavailable and is excluded from the composite entirely
// rather than zero-filled.
type Input struct {
	// SkillsScore is the skill matcher's aggregate score (0-100).
	SkillsScore *float64
	// CandidateYears is the candidate's total years of experience.
	CandidateYears *float64
	// RequiredLevel is the job's experience level ("mid", "senior", ...).
	// Empty means no requirement and scores 100 when CandidateYears is set.
	RequiredLevel string
	// ResumeQuality is an externally computed resume/ATS estimate (0-100).
	ResumeQuality *float64

	HasCoverLetter        bool
	QuestionnaireAnswered bool
	HasAttachments        bool
}

// TotalExperienceYears sums years across roles, counting ongoing roles up to
// now and crediting current roles with at least one year each.
func TotalExperienceYears(experience []types.WorkExperience, now time.Time) float64 {
	var total float64
	for _, role := range experience {
		end := now
		if role.EndDate != nil && !role.Current {
			end = *role.EndDate
		}
		years := end.Sub(role.StartDate).Hours() / hoursPerYear
		if years < 0 {
			years = 0
		}
		if role.Current && years < minCurrentRoleYears {
			years = minCurrentRoleYears
		}
		total += years
	}
	return total
}

// ExperienceScore maps candidate years against the required level onto the
// 100/80/60/40/20 ladder. An unknown or empty level means no requirement.
func ExperienceScore(candidateYears float64, requiredLevel string) float64 {
	required, ok := requiredYearsForLevel[requiredLevel]
	if !ok || required == 0 {
		return 100
	}

	ratio := candidateYears / required
	switch {
	case ratio >= 1.0:
		return 100
	case ratio >= 0.8:
		return 80
	case ratio >= 0.6:
		return 60
	case ratio >= 0.4:
		return 40
	default:
		return 20
	}
}

// CompletenessScore is additive over optional application material, capped at
// the completeness weight and rescaled to 0-100 for composition.
func CompletenessScore(hasCoverLetter, questionnaireAnswered, hasAttachments bool) float64 {
	var points float64
	if hasCoverLetter {
		points += pointsCoverLetter
	}
	if questionnaireAnswered {
		points += pointsQuestionnaire
	}
	if hasAttachments {
		points += pointsAttachments
	}
	if points > weightCompleteness {
		points = weightCompleteness
	}
	return points / weightCompleteness * 100
}

// Composite combines the available sub-scores into a single 0-100 integer.
// Missing components are excluded from both numerator and weight denominator
// so applications lacking optional data are not penalized.
func Composite(in Input) int {
	var weighted, totalWeight float64

	if in.SkillsScore != nil {
		weighted += clampScore(*in.SkillsScore) * weightSkills
		totalWeight += weightSkills
	}
	if in.CandidateYears != nil {
		weighted += ExperienceScore(*in.CandidateYears, in.RequiredLevel) * weightExperience
		totalWeight += weightExperience
	}
	if in.ResumeQuality != nil {
		weighted += clampScore(*in.ResumeQuality) * weightResume
		totalWeight += weightResume
	}

	// Completeness is always observable.
	weighted += CompletenessScore(in.HasCoverLetter, in.QuestionnaireAnswered, in.HasAttachments) * weightCompleteness
	totalWeight += weightCompleteness

	score := int(math.Round(weighted / totalWeight))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
