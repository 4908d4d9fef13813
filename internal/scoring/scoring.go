// Package scoring runs the incremental scoring pass over a collected jobs file.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spigell/web3-jobs/internal/ai"
	"github.com/spigell/web3-jobs/internal/jobs"
	"github.com/spigell/web3-jobs/internal/storage"
)

type Options struct {
	Scorer      ai.Scorer
	ProfilePath string
	InputPath   string
	OutputPath  string
	// Offset and Limit select the window of input rows to score. Limit 0 means
	// every row after Offset.
	Offset int
	Limit  int
	// RequestsPerMinute throttles scorer calls. Zero disables throttling.
	RequestsPerMinute float64
	Logger            *zap.Logger
}

type Summary struct {
	Total    int
	Scored   int
	Failed   int
	Existing int
}

// Run scores a window of the input file and merges the verdicts into the
// output file. Verdicts already present for rows outside the window are kept.
func Run(ctx context.Context, opts Options) (Summary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if opts.Scorer == nil {
		return Summary{}, errors.New("scorer is required")
	}

	input, err := storage.ReadJobs(opts.InputPath)
	if err != nil {
		return Summary{}, fmt.Errorf("reading jobs: %w", err)
	}

	existing, err := loadExisting(opts.OutputPath)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Total: len(input), Existing: len(existing)}

	window := selectWindow(input, opts.Offset, opts.Limit)
	if len(window) == 0 {
		logger.Info("nothing to score", zap.Int("total", len(input)), zap.Int("offset", opts.Offset))
		return summary, nil
	}

	profile, err := LoadProfile(opts.ProfilePath)
	if err != nil {
		return summary, err
	}

	var limiter *rate.Limiter
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerMinute/60), 1)
	}

	logger.Info("scoring jobs",
		zap.Int("total", len(input)),
		zap.Int("offset", opts.Offset),
		zap.Int("window", len(window)),
	)

	for i, job := range window {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return summary, err
			}
		}

		verdict, err := opts.Scorer.Score(ctx, profile, job)
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			logger.Warn("scoring failed",
				zap.String("job", storage.ScoreKey(job)),
				zap.Error(err),
			)
			verdict = ai.Fallback()
			summary.Failed++
		}

		existing[storage.ScoreKey(job)] = verdict
		summary.Scored++

		logger.Debug("job scored",
			zap.Int("n", i+1),
			zap.String("title", job.Title),
			zap.Int("match_score", verdict.MatchScore),
			zap.String("recommendation", string(verdict.Recommendation)),
		)
	}

	rows := make([]storage.ScoredRow, 0, len(input))
	for _, job := range input {
		rows = append(rows, storage.ScoredRow{Job: job, Verdict: existing[storage.ScoreKey(job)]})
	}

	if err := storage.WriteScored(opts.OutputPath, rows); err != nil {
		return summary, fmt.Errorf("writing scored jobs: %w", err)
	}

	logger.Info("scoring finished",
		zap.Int("scored", summary.Scored),
		zap.Int("failed", summary.Failed),
		zap.String("output", opts.OutputPath),
	)

	return summary, nil
}

func loadExisting(path string) (map[string]*ai.Verdict, error) {
	rows, err := storage.ReadScored(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]*ai.Verdict{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading scored jobs: %w", err)
	}

	out := make(map[string]*ai.Verdict, len(rows))
	for _, r := range rows {
		if r.Verdict != nil {
			out[storage.ScoreKey(r.Job)] = r.Verdict
		}
	}
	return out, nil
}

func selectWindow(items []jobs.Job, offset, limit int) []jobs.Job {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}

	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
