package ai

import (
	"strings"
)

// Recommendation is the action suggested for a scored job.
type Recommendation string

const (
	MustApply  Recommendation = "must_apply"
	GoodIfTime Recommendation = "good_if_time"
	Stretch    Recommendation = "stretch"
	Skip       Recommendation = "skip"
)

// ParseRecommendation maps free text onto the known values. Anything
// unrecognized becomes Skip.
func ParseRecommendation(s string) Recommendation {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)

	switch Recommendation(normalized) {
	case MustApply, GoodIfTime, Stretch, Skip:
		return Recommendation(normalized)
	default:
		return Skip
	}
}

// Verdict is the scoring result for one job. Scores are within 0..100.
type Verdict struct {
	MatchScore      int
	SkillMatch      int
	SeniorityMatch  int
	DomainMatch     int
	PreferenceMatch int
	MatchPoints     []string
	Gaps            []string
	Recommendation  Recommendation
	ReasonShort     string
}

// FallbackReason is the reason attached to verdicts produced on failure.
const FallbackReason = "Failed to score"

// Fallback returns the verdict used whenever scoring fails.
func Fallback() *Verdict {
	return &Verdict{
		MatchPoints:    []string{},
		Gaps:           []string{},
		Recommendation: Skip,
		ReasonShort:    FallbackReason,
	}
}
