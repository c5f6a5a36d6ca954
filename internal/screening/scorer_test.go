package screening

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/applicant-tracker/internal/types"
)

func years(n float64) time.Duration {
	return time.Duration(n * 365.25 * 24 * float64(time.Hour))
}

func TestTotalExperienceYears_SumsRoles(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	endFirst := now.Add(-years(2))

	experience := []types.WorkExperience{
		{StartDate: now.Add(-years(5)), EndDate: &endFirst},          // 3 years
		{StartDate: now.Add(-years(2)), Current: true},               // 2 years, ongoing
	}

	total := TotalExperienceYears(experience, now)
	assert.InDelta(t, 5.0, total, 0.05)
}

func TestTotalExperienceYears_CurrentRoleCountsAtLeastOneYear(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	experience := []types.WorkExperience{
		{StartDate: now.Add(-30 * 24 * time.Hour), Current: true},
	}

	// A just-started current role still credits one full year.
	assert.Equal(t, 1.0, TotalExperienceYears(experience, now))
}

func TestTotalExperienceYears_Empty(t *testing.T) {
	assert.Equal(t, 0.0, TotalExperienceYears(nil, time.Now()))
}

func TestExperienceScore_Ladder(t *testing.T) {
	tests := []struct {
		name           string
		candidateYears float64
		requiredLevel  string
		want           float64
	}{
		{"meets mid", 5, types.LevelMid, 100},
		{"meets senior exactly", 5, types.LevelSenior, 100},
		{"lead at 5 of 7 years", 5, types.LevelLead, 60}, // 5/7 ≈ 71%
		{"executive at 8 of 10", 8, types.LevelExecutive, 80},
		{"junior severely short", 0.3, types.LevelJunior, 20},
		{"mid at 40 percent", 1.2, types.LevelMid, 40},
		{"no requirement", 0, "", 100},
		{"entry level", 0, types.LevelEntry, 100},
		{"unknown level", 1, "wizard", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExperienceScore(tt.candidateYears, tt.requiredLevel))
		})
	}
}

func TestCompletenessScore(t *testing.T) {
	assert.Equal(t, 0.0, CompletenessScore(false, false, false))
	assert.Equal(t, 50.0, CompletenessScore(true, false, false))   // 5/10
	assert.Equal(t, 80.0, CompletenessScore(true, true, false))    // 8/10
	assert.Equal(t, 100.0, CompletenessScore(true, true, true))    // capped at 10
	assert.Equal(t, 20.0, CompletenessScore(false, false, true))   // 2/10
}

func TestComposite_AllComponents(t *testing.T) {
	skills := 100.0
	candidateYears := 10.0
	quality := 100.0

	score := Composite(Input{
		SkillsScore:           &skills,
		CandidateYears:        &candidateYears,
		RequiredLevel:         types.LevelMid,
		ResumeQuality:         &quality,
		HasCoverLetter:        true,
		QuestionnaireAnswered: true,
		HasAttachments:        true,
	})

	assert.Equal(t, 100, score)
}

func TestComposite_RenormalizesOverAvailableComponents(t *testing.T) {
	skills := 80.0
	candidateYears := 10.0

	// No resume-quality signal: its 20-point weight is excluded from the
	// denominator, not zero-filled.
	score := Composite(Input{
		SkillsScore:    &skills,
		CandidateYears: &candidateYears,
		RequiredLevel:  types.LevelMid,
	})

	// (80*40 + 100*30 + 0*10) / 80 = 77.5 -> 78
	assert.Equal(t, 78, score)
}

func TestComposite_CompletenessOnly(t *testing.T) {
	score := Composite(Input{HasCoverLetter: true})
	// Only the completeness component is available: 50/100 of weight 10.
	assert.Equal(t, 50, score)
}

func TestComposite_BoundsClamped(t *testing.T) {
	skills := 250.0 // out-of-range input is clamped before weighting
	score := Composite(Input{SkillsScore: &skills, HasCoverLetter: true, QuestionnaireAnswered: true, HasAttachments: true})
	assert.LessOrEqual(t, score, 100)
	assert.GreaterOrEqual(t, score, 0)
}
