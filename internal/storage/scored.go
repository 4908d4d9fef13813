package storage

import (
	"strconv"
	"strings"

	"github.com/spigell/web3-jobs/internal/ai"
	"github.com/spigell/web3-jobs/internal/jobs"
)

// ScoreColumns follow JobColumns in the scored file.
var ScoreColumns = []string{
	"match_score",
	"skill_match",
	"seniority_match",
	"domain_match",
	"preference_match",
	"match_points",
	"gaps",
	"recommendation",
	"reason_short",
}

const listSep = " | "

// ScoredRow is a persisted job with its verdict. Verdict is nil for rows that
// were never scored.
type ScoredRow struct {
	Job     jobs.Job
	Verdict *ai.Verdict
}

// ScoreKey identifies a row across scoring runs: source, external id (or the
// URL when the id is empty) and title.
func ScoreKey(job jobs.Job) string {
	id := strings.TrimSpace(job.ExternalID)
	if id == "" {
		id = strings.TrimSpace(job.URL)
	}
	return strings.Join([]string{strings.TrimSpace(job.Source), id, strings.TrimSpace(job.Title)}, "|")
}

func scoreRecord(v *ai.Verdict) []string {
	if v == nil {
		return make([]string, len(ScoreColumns))
	}
	return []string{
		strconv.Itoa(v.MatchScore),
		strconv.Itoa(v.SkillMatch),
		strconv.Itoa(v.SeniorityMatch),
		strconv.Itoa(v.DomainMatch),
		strconv.Itoa(v.PreferenceMatch),
		strings.Join(v.MatchPoints, listSep),
		strings.Join(v.Gaps, listSep),
		string(v.Recommendation),
		v.ReasonShort,
	}
}

func (r row) verdict() *ai.Verdict {
	empty := true
	for _, col := range ScoreColumns {
		if strings.TrimSpace(r.get(col)) != "" {
			empty = false
			break
		}
	}
	if empty {
		return nil
	}

	return &ai.Verdict{
		MatchScore:      atoi(r.get("match_score")),
		SkillMatch:      atoi(r.get("skill_match")),
		SeniorityMatch:  atoi(r.get("seniority_match")),
		DomainMatch:     atoi(r.get("domain_match")),
		PreferenceMatch: atoi(r.get("preference_match")),
		MatchPoints:     splitList(r.get("match_points")),
		Gaps:            splitList(r.get("gaps")),
		Recommendation:  ai.ParseRecommendation(r.get("recommendation")),
		ReasonShort:     r.get("reason_short"),
	}
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, "|") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// WriteScored replaces the scored file with rows, in order.
func WriteScored(path string, rows []ScoredRow) error {
	header := append(append([]string{}, JobColumns...), ScoreColumns...)

	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, append(jobRecord(r.Job), scoreRecord(r.Verdict)...))
	}

	return writeFile(path, header, records)
}

// ReadScored loads a scored file.
func ReadScored(path string) ([]ScoredRow, error) {
	rows, err := readFile(path)
	if err != nil {
		return nil, err
	}

	out := make([]ScoredRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, ScoredRow{Job: r.job(), Verdict: r.verdict()})
	}
	return out, nil
}
