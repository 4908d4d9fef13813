package ai

import (
	"context"
	"errors"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/web3-jobs/internal/jobs"
	"github.com/spigell/web3-jobs/internal/utils"
)

// Scorer rates a job against a candidate profile.
type Scorer interface {
	Score(ctx context.Context, profile string, job jobs.Job) (*Verdict, error)
}

// Generator is a completion backend that answers with a JSON object.
type Generator interface {
	GenerateContent(ctx context.Context, system, prompt string) (string, error)
	Model() string
}

// SystemInstruction is sent as the system message with every prompt.
const SystemInstruction = "You are a careful JSON-only scoring engine for job matching."

const defaultMaxLogLength = 200

// LLMScorer builds the scoring prompt, calls a Generator and parses its answer.
type LLMScorer struct {
	generator Generator
	logger    *zap.Logger
	maxLogLen int
}

func NewScorer(generator Generator, logger *zap.Logger, maxLogLength int) *LLMScorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &LLMScorer{generator: generator, logger: logger, maxLogLen: maxLogLength}
}

func (s *LLMScorer) Score(ctx context.Context, profile string, job jobs.Job) (*Verdict, error) {
	if s.generator == nil {
		return nil, errors.New("generator is not configured")
	}

	prompt := BuildPrompt(profile, job)

	s.logger.Debug("scoring request",
		zap.String("job", job.Key().String()),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, SystemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("scoring response",
		zap.String("job", job.Key().String()),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	return ParseVerdict(raw)
}
