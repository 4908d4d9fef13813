package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/web3-jobs/internal/jobs"
)

type companiesFilter struct {
	companies map[string]bool
	names     []string
	disabled  bool
	reason    string
}

// NewCompanies creates a filter that removes jobs posted by configured companies.
// Company names are compared case-insensitively.
func NewCompanies() Filter {
	return &companiesFilter{}
}

func (f *companiesFilter) Name() string { return "companies" }

func (f *companiesFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *companiesFilter) IsEnabled() bool { return !f.disabled }

func (f *companiesFilter) Validate(cfg *Config) error {
	f.companies = make(map[string]bool)
	f.names = nil
	if cfg == nil {
		return nil
	}
	for _, c := range cfg.ExcludeCompanies {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		f.companies[strings.ToLower(c)] = true
		f.names = append(f.names, c)
	}
	return nil
}

func (f *companiesFilter) Apply(_ context.Context, deps Deps, j *jobs.Jobs) (*jobs.Jobs, Step, error) {
	if len(f.companies) == 0 {
		return j, stepFor(j, j), nil
	}

	var excluded []string
	next := j.Filter(func(job jobs.Job) bool {
		if f.companies[strings.ToLower(strings.TrimSpace(job.Company))] {
			excluded = append(excluded, job.Key().String())
			return false
		}
		return true
	})

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding jobs by company",
			zap.Strings("excluded_companies", f.names),
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", next.Len()),
		)
	}

	return next, stepFor(j, next), nil
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.names) > 0 {
		details["companies"] = strings.Join(f.names, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
