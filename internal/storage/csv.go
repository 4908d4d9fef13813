// Package storage persists collected and scored jobs as CSV files.
package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/spigell/web3-jobs/internal/jobs"
	"github.com/spigell/web3-jobs/internal/utils"
)

// JobColumns is the header of the jobs file. The scored file starts with the
// same columns.
var JobColumns = []string{
	"source",
	"external_id",
	"title",
	"company",
	"location",
	"remote",
	"url",
	"posted_at",
	"description",
	"tags",
}

const (
	remoteYes = "Yes"
	remoteNo  = "No"
	tagsSep   = ", "
)

var postedAtLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"}

func jobRecord(job jobs.Job) []string {
	remote := remoteNo
	if job.Remote {
		remote = remoteYes
	}

	var postedAt string
	if job.PostedAt != nil {
		postedAt = job.PostedAt.Format(time.RFC3339)
	}

	return []string{
		job.Source,
		job.ExternalID,
		job.Title,
		job.Company,
		job.Location,
		remote,
		job.URL,
		postedAt,
		job.Description,
		strings.Join(job.Tags, tagsSep),
	}
}

// row gives named access to a CSV record. Missing columns read as "".
type row struct {
	index  map[string]int
	record []string
}

func (r row) get(name string) string {
	i, ok := r.index[name]
	if !ok || i >= len(r.record) {
		return ""
	}
	return r.record[i]
}

func (r row) job() jobs.Job {
	job := jobs.Job{
		Source:      r.get("source"),
		ExternalID:  r.get("external_id"),
		Title:       r.get("title"),
		Company:     r.get("company"),
		Location:    r.get("location"),
		Remote:      strings.EqualFold(strings.TrimSpace(r.get("remote")), remoteYes),
		URL:         r.get("url"),
		Description: r.get("description"),
		Tags:        utils.SplitList(r.get("tags")),
	}

	if raw := strings.TrimSpace(r.get("posted_at")); raw != "" {
		for _, layout := range postedAtLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				job.PostedAt = &t
				break
			}
		}
	}

	return job
}

// WriteJobs replaces the file at path with the given jobs.
func WriteJobs(path string, items []jobs.Job) error {
	records := make([][]string, 0, len(items))
	for _, job := range items {
		records = append(records, jobRecord(job))
	}
	return writeFile(path, JobColumns, records)
}

// ReadJobs loads a jobs file written by WriteJobs.
func ReadJobs(path string) ([]jobs.Job, error) {
	rows, err := readFile(path)
	if err != nil {
		return nil, err
	}

	out := make([]jobs.Job, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.job())
	}
	return out, nil
}

// writeFile writes header and records to a temporary file next to path and
// renames it into place while holding a lock on path.
func writeFile(path string, header []string, records [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory %q: %w", dir, err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock %q: %w", path, err)
	}
	defer lock.Unlock()

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		return fmt.Errorf("write records: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temporary file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %q: %w", path, err)
	}

	return nil
}

func readFile(path string) ([]row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %q: %w", path, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}

	var rows []row
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", path, err)
		}
		rows = append(rows, row{index: index, record: record})
	}

	return rows, nil
}
