package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Job is a single normalized posting. Adapters build it once; nothing
// downstream modifies it.
type Job struct {
	Source      string     `json:"source"`
	ExternalID  string     `json:"external_id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location"`
	Remote      bool       `json:"remote"`
	URL         string     `json:"url"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
	Description string     `json:"description"`
	Tags        []string   `json:"tags"`
}

// Key identifies a job within one collection run.
type Key struct {
	Source     string
	ExternalID string
}

func (k Key) String() string {
	return k.Source + "|" + k.ExternalID
}

// Key returns the identity of the job.
func (j Job) Key() Key {
	return Key{Source: j.Source, ExternalID: j.ExternalID}
}

// SearchText is the lowercase text keyword filters look at.
func (j Job) SearchText() string {
	return strings.ToLower(strings.Join([]string{
		j.Title,
		j.Description,
		j.Location,
		strings.Join(j.Tags, " "),
	}, " "))
}

type Jobs struct {
	Items []Job
}

// SourceCount is the number of jobs attributed to a source.
type SourceCount struct {
	Source string
	Count  int
}

func (j *Jobs) Len() int {
	return len(j.Items)
}

// CountBySource returns per-source counts ordered by first appearance.
func (j *Jobs) CountBySource() []SourceCount {
	index := make(map[string]int)
	var counts []SourceCount
	for _, job := range j.Items {
		i, ok := index[job.Source]
		if !ok {
			i = len(counts)
			index[job.Source] = i
			counts = append(counts, SourceCount{Source: job.Source})
		}
		counts[i].Count++
	}
	return counts
}

// FormatCounts renders counts as "a=1 b=2".
func FormatCounts(counts []SourceCount) string {
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s=%d", c.Source, c.Count))
	}
	return strings.Join(parts, " ")
}

// Filter returns a new collection with the jobs keep accepts, preserving order.
func (j *Jobs) Filter(keep func(Job) bool) *Jobs {
	out := &Jobs{Items: make([]Job, 0, len(j.Items))}
	for _, job := range j.Items {
		if keep(job) {
			out.Items = append(out.Items, job)
		}
	}
	return out
}

// DumpToTmpFile writes the collection as JSON into a temporary file and returns its name.
func (j *Jobs) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "jobs_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(j.Items); err != nil {
		return "", err
	}
	return file.Name(), nil
}
