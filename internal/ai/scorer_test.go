package ai

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/web3-jobs/internal/jobs"
)

type stubGenerator struct {
	response   string
	err        error
	lastSystem string
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, system, prompt string) (string, error) {
	s.lastSystem = system
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string {
	return "stub-model"
}

func TestScorerScore(t *testing.T) {
	stub := &stubGenerator{response: "```json\n" + `{
		"match_score": 82, "skill_match": "75", "seniority_match": 140, "domain_match": -3, "preference_match": 66.6,
		"match_points": ["SQL", "Dune dashboards"], "gaps": "No Rust | Junior",
		"recommendation": "Must Apply", "reason_short": "Strong analytics overlap."
	}` + "\n```"}

	scorer := NewScorer(stub, zap.NewNop(), 0)

	job := jobs.Job{
		Source:      "remoteok",
		ExternalID:  "1",
		Title:       "Onchain Data Analyst",
		Company:     "Nansen",
		Location:    "Remote",
		Remote:      true,
		Tags:        []string{"web3", "sql"},
		Description: "Build dashboards",
	}

	verdict, err := scorer.Score(context.Background(), "name: Alex\nskills: [SQL]", job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &Verdict{
		MatchScore:      82,
		SkillMatch:      75,
		SeniorityMatch:  100,
		DomainMatch:     0,
		PreferenceMatch: 67,
		MatchPoints:     []string{"SQL", "Dune dashboards"},
		Gaps:            []string{"No Rust", "Junior"},
		Recommendation:  MustApply,
		ReasonShort:     "Strong analytics overlap.",
	}
	if !reflect.DeepEqual(verdict, want) {
		t.Fatalf("unexpected verdict:\n got %+v\nwant %+v", verdict, want)
	}

	if stub.lastSystem != SystemInstruction {
		t.Fatalf("unexpected system instruction: %q", stub.lastSystem)
	}

	for _, fragment := range []string{
		"<candidate_profile>\nname: Alex\nskills: [SQL]\n</candidate_profile>",
		"Title: Onchain Data Analyst",
		"Remote: Yes",
		"Tags: web3, sql",
		"</job_description>",
	} {
		if !strings.Contains(stub.lastPrompt, fragment) {
			t.Fatalf("prompt does not contain %q:\n%s", fragment, stub.lastPrompt)
		}
	}
}

func TestScorerPropagatesErrors(t *testing.T) {
	scorer := NewScorer(&stubGenerator{err: errors.New("quota")}, nil, 0)
	if _, err := scorer.Score(context.Background(), "", jobs.Job{}); err == nil {
		t.Fatalf("expected generator error")
	}

	scorer = NewScorer(&stubGenerator{response: "I think it is a good fit"}, nil, 0)
	if _, err := scorer.Score(context.Background(), "", jobs.Job{}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestParseRecommendation(t *testing.T) {
	cases := map[string]Recommendation{
		"must_apply":    MustApply,
		"GOOD_IF_TIME":  GoodIfTime,
		" good-if-time": GoodIfTime,
		"stretch":       Stretch,
		"skip":          Skip,
		"apply now!":    Skip,
		"":              Skip,
	}

	for in, want := range cases {
		if got := ParseRecommendation(in); got != want {
			t.Fatalf("ParseRecommendation(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFallback(t *testing.T) {
	v := Fallback()
	if v.MatchScore != 0 || v.SkillMatch != 0 || v.SeniorityMatch != 0 || v.DomainMatch != 0 || v.PreferenceMatch != 0 {
		t.Fatalf("expected zero scores, got %+v", v)
	}
	if v.Recommendation != Skip || v.ReasonShort != FallbackReason {
		t.Fatalf("unexpected fallback: %+v", v)
	}
	if len(v.MatchPoints) != 0 || len(v.Gaps) != 0 {
		t.Fatalf("expected empty lists, got %+v", v)
	}
}
