package collector

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/web3-jobs/internal/jobs"
	"github.com/spigell/web3-jobs/internal/sources"
)

type stubAdapter struct {
	name  string
	jobs  []jobs.Job
	err   error
	panic bool
	delay time.Duration

	calls atomic.Int32
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Fetch(ctx context.Context, _ int) sources.Result {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return sources.Result{Source: s.name, Err: ctx.Err()}
		}
	}
	if s.panic {
		panic("boom")
	}
	return sources.Result{Source: s.name, Jobs: s.jobs, Err: s.err}
}

func job(source, id string) jobs.Job {
	return jobs.Job{Source: source, ExternalID: id, Title: source + "-" + id}
}

func keys(items []jobs.Job) []jobs.Key {
	out := make([]jobs.Key, 0, len(items))
	for _, j := range items {
		out = append(out, j.Key())
	}
	return out
}

func TestRunMergesInDeclaredOrderAndIsolatesFailures(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	// A finishes last so completion order differs from declaration order.
	a := &stubAdapter{name: "A", jobs: []jobs.Job{job("A", "1"), job("A", "2")}, delay: 30 * time.Millisecond}
	b := &stubAdapter{name: "B", err: errors.New("connection reset")}
	c := &stubAdapter{name: "C", jobs: []jobs.Job{job("C", "1"), job("A", "1")}}

	report := New([]sources.Adapter{a, b, c}, Options{Concurrency: 3, Logger: zap.New(core)}).
		Run(context.Background(), 10)

	require.Equal(t, 4, report.Jobs.Len())
	assert.Equal(t, []jobs.Key{
		{Source: "A", ExternalID: "1"},
		{Source: "A", ExternalID: "2"},
		{Source: "C", ExternalID: "1"},
		{Source: "A", ExternalID: "1"},
	}, keys(report.Jobs.Items))

	assert.Equal(t, "C-1", report.Jobs.Items[2].Title)

	require.Len(t, report.Sources, 3)
	assert.Equal(t, SourceReport{Name: "A", Fetched: 2, Added: 2}, report.Sources[0])
	assert.Equal(t, SourceReport{Name: "C", Fetched: 2, Added: 2}, report.Sources[2])
	assert.Equal(t, "B", report.Sources[1].Name)
	assert.Zero(t, report.Sources[1].Added)
	assert.Error(t, report.Sources[1].Err)

	warnings := observed.FilterMessage("source failed").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "B", warnings[0].ContextMap()["source"])
	assert.Len(t, report.Failed(), 1)
}

func TestRunFirstSeenWins(t *testing.T) {
	first := job("A", "1")
	first.Description = "first"
	dup := job("A", "1")
	dup.Description = "second"

	a := &stubAdapter{name: "A", jobs: []jobs.Job{first, job("A", "2"), dup}}

	report := New([]sources.Adapter{a}, Options{}).Run(context.Background(), 10)

	require.Equal(t, 2, report.Jobs.Len())
	assert.Equal(t, "first", report.Jobs.Items[0].Description)
	assert.Equal(t, SourceReport{Name: "A", Fetched: 3, Added: 2}, report.Sources[0])
}

func TestRunRecoversPanics(t *testing.T) {
	bad := &stubAdapter{name: "bad", panic: true}
	good := &stubAdapter{name: "good", jobs: []jobs.Job{job("good", "1")}}

	report := New([]sources.Adapter{bad, good}, Options{Concurrency: 1}).Run(context.Background(), 5)

	require.Equal(t, 1, report.Jobs.Len())
	require.Error(t, report.Sources[0].Err)
	assert.Contains(t, report.Sources[0].Err.Error(), "panicked")
}

func TestRunAppliesSourceTimeout(t *testing.T) {
	slow := &stubAdapter{name: "slow", delay: time.Second}
	fast := &stubAdapter{name: "fast", jobs: []jobs.Job{job("fast", "1")}}

	start := time.Now()
	report := New([]sources.Adapter{slow, fast}, Options{SourceTimeout: 20 * time.Millisecond}).
		Run(context.Background(), 5)

	assert.Less(t, time.Since(start), time.Second)
	assert.ErrorIs(t, report.Sources[0].Err, context.DeadlineExceeded)
	assert.Equal(t, 1, report.Jobs.Len())
}

func TestRunCallsEveryAdapterOnce(t *testing.T) {
	adapters := make([]sources.Adapter, 0, 6)
	stubs := make([]*stubAdapter, 0, 6)
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		s := &stubAdapter{name: name, jobs: []jobs.Job{job(name, "1")}}
		stubs = append(stubs, s)
		adapters = append(adapters, s)
	}

	report := New(adapters, Options{Concurrency: 2}).Run(context.Background(), 0)

	assert.Equal(t, 6, report.Jobs.Len())
	for _, s := range stubs {
		assert.Equal(t, int32(1), s.calls.Load(), s.name)
	}
}
