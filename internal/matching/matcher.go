package matching

import (
	"fmt"
	"strings"

	"github.com/jonathan/applicant-tracker/internal/types"
)

// DefaultThreshold is the minimum similarity for a required skill to count
// as matched. Configurable via WithThreshold, but the default is fixed.
const DefaultThreshold = 0.70

// maxCalloutSkills caps how many missing/additional skills are named in
// recommendation strings.
const maxCalloutSkills = 3

// Matcher matches candidate skill lists against required skill lists.
type Matcher struct {
	threshold float64
	// categories maps normalized skill name -> category, from the optional
	// reference catalog. Empty when no catalog is available.
	categories map[string]string
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithThreshold overrides the match confidence threshold.
func WithThreshold(threshold float64) Option {
	return func(m *Matcher) {
		if threshold > 0 && threshold <= 1 {
			m.threshold = threshold
		}
	}
}

// WithCatalog supplies a reference skill catalog used to tag matches with a
// category. Absence degrades gracefully: matches simply carry no category.
func WithCatalog(skills []types.CatalogSkill) Option {
	return func(m *Matcher) {
		for _, s := range skills {
			name := Normalize(s.Name)
			if name == "" {
				continue
			}
			m.categories[name] = s.Category
		}
	}
}

// NewMatcher creates a Matcher with the given options.
func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{
		threshold:  DefaultThreshold,
		categories: make(map[string]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match classifies candidate skills against required skills. Both lists are
// normalized and deduplicated first so duplicates never double-count. An
// empty required list scores 100: absence of requirements is a full match.
func (m *Matcher) Match(candidateSkills, requiredSkills []string) *types.SkillMatchResult {
	candidates := dedupe(candidateSkills)
	required := dedupe(requiredSkills)

	result := &types.SkillMatchResult{
		Matched:    []types.MatchedSkill{},
		Missing:    []string{},
		Additional: []string{},
	}

	consumed := make(map[string]bool, len(candidates))

	for _, req := range required {
		bestSkill, bestScore := "", 0.0
		for _, cand := range candidates {
			if score := Similarity(req, cand); score > bestScore {
				bestSkill, bestScore = cand, score
			}
		}

		if bestScore >= m.threshold {
			consumed[bestSkill] = true
			result.Matched = append(result.Matched, types.MatchedSkill{
				Name:       req,
				MatchedTo:  bestSkill,
				Confidence: bestScore,
				Category:   m.categories[req],
			})
		} else {
			result.Missing = append(result.Missing, req)
		}
	}

	// Candidate skills not consumed by any required match are additional.
	for _, cand := range candidates {
		if !consumed[cand] {
			result.Additional = append(result.Additional, cand)
		}
	}

	if len(required) == 0 {
		result.Score = 100
	} else {
		result.Score = float64(len(result.Matched)) / float64(len(required)) * 100
	}

	result.Recommendations = buildRecommendations(result)
	return result
}

// dedupe normalizes skill names and removes duplicates, preserving first-seen
// order.
func dedupe(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		name := Normalize(s)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// buildRecommendations produces 1-3 free-text recommendation strings from the
// aggregate score plus call-outs of the top missing and additional skills.
func buildRecommendations(result *types.SkillMatchResult) []string {
	recs := make([]string, 0, 3)

	switch {
	case result.Score >= 80:
		recs = append(recs, "Excellent skill match for this position")
	case result.Score >= 60:
		recs = append(recs, "Good skill match with some gaps")
	case result.Score >= 40:
		recs = append(recs, "Moderate skill match, review carefully")
	default:
		recs = append(recs, "Low skill match for this position")
	}

	if len(result.Missing) > 0 {
		recs = append(recs, fmt.Sprintf("Missing key skills: %s", joinTop(result.Missing, maxCalloutSkills)))
	}
	if len(result.Additional) > 0 {
		recs = append(recs, fmt.Sprintf("Additional skills offered: %s", joinTop(result.Additional, maxCalloutSkills)))
	}

	return recs
}

// joinTop joins up to n items with commas.
func joinTop(items []string, n int) string {
	if len(items) > n {
		items = items[:n]
	}
	return strings.Join(items, ", ")
}
