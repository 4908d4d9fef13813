package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/web3-jobs/internal/jobs"
)

type excludeFileFilter struct {
	path     string
	disabled bool
	reason   string
}

// NewExcludeFile creates a filter that removes jobs listed in an exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *excludeFileFilter) IsEnabled() bool { return !f.disabled }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, j *jobs.Jobs) (*jobs.Jobs, Step, error) {
	if f.path == "" {
		return j, stepFor(j, j), nil
	}

	excluded, err := jobs.LoadExcluded(f.path)
	if err != nil {
		return j, Step{}, fmt.Errorf("getting excluded jobs from file: %w", err)
	}

	var removed []string
	next := j.Filter(func(job jobs.Job) bool {
		if excluded.Contains(job) {
			removed = append(removed, job.Key().String())
			return false
		}
		return true
	})

	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding jobs based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_jobs", removed),
			zap.Int("jobs_left", next.Len()),
		)
	}

	return next, stepFor(j, next), nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
