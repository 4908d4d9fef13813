// Package sources defines the contract every job board adapter implements and
// the extraction helpers adapters share.
package sources

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/web3-jobs/internal/jobs"
)

// Adapter turns one external job board into normalized job records.
type Adapter interface {
	Name() string
	// Fetch collects up to roughly budget records. It never panics on remote
	// failures: whatever was collected is returned together with the error.
	Fetch(ctx context.Context, budget int) Result
}

// Result is the outcome of a single adapter invocation. A non-nil Err marks the
// source as degraded; Jobs still holds every record gathered before it.
type Result struct {
	Source string
	Jobs   []jobs.Job
	Err    error
}

// Failed reports whether the source ended with an error.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Finish trims the collected records to budget, logs the fetched count and
// builds the Result.
func Finish(logger *zap.Logger, source string, collected []jobs.Job, budget int, err error) Result {
	if budget > 0 && len(collected) > budget {
		collected = collected[:budget]
	}

	if logger != nil {
		logger.Info("source fetched", zap.String("source", source), zap.Int("fetched", len(collected)))
	}

	return Result{Source: source, Jobs: collected, Err: err}
}
