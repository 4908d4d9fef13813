package jobs

import (
	"encoding/json"
	"os"
	"strings"
	"time"
)

// ExcludedJob is an entry of an exclude file. A job is excluded when its
// identity or its URL matches.
type ExcludedJob struct {
	Source     string    `json:"source"`
	ExternalID string    `json:"external_id"`
	URL        string    `json:"url,omitempty"`
	Company    string    `json:"company,omitempty"`
	ExcludedAt time.Time `json:"excluded_at,omitempty"`
}

type Excluded struct {
	Items []*ExcludedJob `json:"items"`

	keys map[Key]bool
	urls map[string]bool
}

// LoadExcluded reads an exclude file. An empty file excludes nothing.
func LoadExcluded(path string) (*Excluded, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &Excluded{}, nil
	}

	var excluded Excluded
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

// Contains reports whether the job is listed.
func (e *Excluded) Contains(job Job) bool {
	if e.keys == nil {
		e.index()
	}
	if e.keys[job.Key()] {
		return true
	}
	url := strings.TrimSpace(job.URL)
	return url != "" && e.urls[url]
}

func (e *Excluded) index() {
	e.keys = make(map[Key]bool, len(e.Items))
	e.urls = make(map[string]bool, len(e.Items))
	for _, item := range e.Items {
		if item == nil {
			continue
		}
		if item.Source != "" && item.ExternalID != "" {
			e.keys[Key{Source: item.Source, ExternalID: item.ExternalID}] = true
		}
		if url := strings.TrimSpace(item.URL); url != "" {
			e.urls[url] = true
		}
	}
}
