package types

// MatchedSkill is one required skill that a candidate skill satisfied.
type MatchedSkill struct {
	Name       string  `json:"name"`         // the required skill (normalized)
	MatchedTo  string  `json:"matched_to"`   // the candidate skill it matched
	Confidence float64 `json:"confidence"`   // similarity, 0-1
	Category   string  `json:"category,omitempty"`
}

// SkillMatchResult is the full output of matching a candidate skill list
// against a job's required skills.
type SkillMatchResult struct {
	Matched         []MatchedSkill `json:"matched"`
	Missing         []string       `json:"missing"`
	Additional      []string       `json:"additional"`
	Score           float64        `json:"score"` // 0-100
	Recommendations []string       `json:"recommendations,omitempty"`
}

// MatchedNames returns just the required-skill names that matched.
func (r *SkillMatchResult) MatchedNames() []string {
	names := make([]string, len(r.Matched))
	for i, m := range r.Matched {
		names[i] = m.Name
	}
	return names
}
