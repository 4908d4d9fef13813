// Package collector runs job source adapters and merges their output into a
// single deduplicated collection.
package collector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/web3-jobs/internal/jobs"
	"github.com/spigell/web3-jobs/internal/sources"
)

const (
	DefaultBudget        = 200
	DefaultConcurrency   = 4
	DefaultSourceTimeout = 5 * time.Minute
)

// Options tune a collection run.
type Options struct {
	// Concurrency bounds how many adapters fetch at once. 1 runs them sequentially.
	Concurrency   int
	SourceTimeout time.Duration
	Logger        *zap.Logger
}

// SourceReport summarizes one adapter in a run.
type SourceReport struct {
	Name string
	// Fetched is what the adapter returned, Added what survived dedup.
	Fetched int
	Added   int
	Err     error
}

// Report is the outcome of a run.
type Report struct {
	Jobs    *jobs.Jobs
	Sources []SourceReport
}

// Failed returns the sources that ended with an error.
func (r Report) Failed() []SourceReport {
	var out []SourceReport
	for _, s := range r.Sources {
		if s.Err != nil {
			out = append(out, s)
		}
	}
	return out
}

type Collector struct {
	adapters []sources.Adapter
	opts     Options
	logger   *zap.Logger
}

func New(adapters []sources.Adapter, opts Options) *Collector {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = DefaultSourceTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Collector{adapters: adapters, opts: opts, logger: logger}
}

// Run fetches every source with the given per-source budget. A failing source
// never aborts the run; its error is kept in the report. Results are merged in
// the order the adapters were declared, whatever order they finished in.
func (c *Collector) Run(ctx context.Context, budget int) Report {
	if budget <= 0 {
		budget = DefaultBudget
	}

	results := make([]sources.Result, len(c.adapters))

	var g errgroup.Group
	g.SetLimit(c.opts.Concurrency)

	for i, adapter := range c.adapters {
		g.Go(func() error {
			results[i] = c.fetch(ctx, adapter, budget)
			return nil
		})
	}

	_ = g.Wait()

	return c.merge(results)
}

func (c *Collector) fetch(ctx context.Context, adapter sources.Adapter, budget int) (res sources.Result) {
	name := adapter.Name()

	defer func() {
		if r := recover(); r != nil {
			res = sources.Result{Source: name, Err: fmt.Errorf("adapter panicked: %v", r)}
		}
	}()

	fctx, cancel := context.WithTimeout(ctx, c.opts.SourceTimeout)
	defer cancel()

	c.logger.Debug("fetching source", zap.String("source", name), zap.Int("budget", budget))

	res = adapter.Fetch(fctx, budget)
	if res.Source == "" {
		res.Source = name
	}

	return res
}

// identity scopes a job key by the adapter that produced it, so a record that
// carries another source's name never shadows that source's own records.
type identity struct {
	adapter string
	key     jobs.Key
}

func (c *Collector) merge(results []sources.Result) Report {
	seen := make(map[identity]struct{})
	merged := &jobs.Jobs{}
	reports := make([]SourceReport, 0, len(results))

	for _, res := range results {
		report := SourceReport{Name: res.Source, Fetched: len(res.Jobs), Err: res.Err}

		for _, job := range res.Jobs {
			if job.Source == "" {
				c.logger.Debug("dropping job without source", zap.String("adapter", res.Source))
				continue
			}

			id := identity{adapter: res.Source, key: job.Key()}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}

			merged.Items = append(merged.Items, job)
			report.Added++
		}

		if res.Failed() {
			c.logger.Warn("source failed",
				zap.String("source", res.Source),
				zap.Int("fetched", report.Fetched),
				zap.Error(res.Err),
			)
		}

		c.logger.Info("source collected",
			zap.String("source", res.Source),
			zap.Int("fetched", report.Fetched),
			zap.Int("added", report.Added),
		)

		reports = append(reports, report)
	}

	c.logger.Info("collection finished",
		zap.Int("total", merged.Len()),
		zap.Int("failed_sources", countFailed(reports)),
		zap.String("by_source", jobs.FormatCounts(merged.CountBySource())),
	)

	return Report{Jobs: merged, Sources: reports}
}

func countFailed(reports []SourceReport) int {
	n := 0
	for _, r := range reports {
		if r.Err != nil {
			n++
		}
	}
	return n
}
