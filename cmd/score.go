package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/web3-jobs/internal/ai"
	"github.com/spigell/web3-jobs/internal/ai/gemini"
	"github.com/spigell/web3-jobs/internal/ai/openai"
	applog "github.com/spigell/web3-jobs/internal/logger"
	"github.com/spigell/web3-jobs/internal/scoring"
	"github.com/spigell/web3-jobs/internal/secrets"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score collected jobs against a candidate profile with a language model",
	Run: func(cmd *cobra.Command, _ []string) {
		score(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("input", "i", "", "jobs CSV produced by collect")
	scoreCmd.Flags().StringP("output", "o", "", "scored CSV, updated in place")
	scoreCmd.Flags().StringP("profile", "p", "", "candidate profile in YAML")
	scoreCmd.Flags().String("provider", "", "ai provider: openai or gemini")
	scoreCmd.Flags().Int("offset", 0, "index of the first job to score")
	scoreCmd.Flags().Int("limit", 0, "number of jobs to score, 0 scores the rest")
	scoreCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before calling the model")

	viper.BindPFlag("ai.input", scoreCmd.Flags().Lookup("input"))
	viper.BindPFlag("ai.output", scoreCmd.Flags().Lookup("output"))
	viper.BindPFlag("ai.profile", scoreCmd.Flags().Lookup("profile"))
	viper.BindPFlag("ai.provider", scoreCmd.Flags().Lookup("provider"))
	viper.BindPFlag("ai.offset", scoreCmd.Flags().Lookup("offset"))
	viper.BindPFlag("ai.limit", scoreCmd.Flags().Lookup("limit"))
}

func score(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	generator, err := newGenerator(ctx, &config.AI, logger)
	if err != nil {
		logger.Fatal("creating ai client", zap.Error(err), zap.String("provider", config.AI.Provider))
	}

	logger = applog.WithCommonFields(logger, config.AI.Provider, generator.Model())

	if cmd.Flag("auto-approve").Value.String() == "false" {
		confirm := promptui.Select{
			Label: fmt.Sprintf("Score %s (offset %d, limit %d) with %s?",
				config.AI.Input, config.AI.Offset, config.AI.Limit, generator.Model()),
			Items: []string{PromptYes, PromptNo},
		}

		_, answer, err := confirm.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if answer != PromptYes {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	summary, err := scoring.Run(ctx, scoring.Options{
		Scorer:            ai.NewScorer(generator, logger, config.AI.MaxLogLength),
		ProfilePath:       config.AI.Profile,
		InputPath:         config.AI.Input,
		OutputPath:        config.AI.Output,
		Offset:            config.AI.Offset,
		Limit:             config.AI.Limit,
		RequestsPerMinute: config.AI.RequestsPerMinute,
		Logger:            logger,
	})
	if err != nil {
		logger.Fatal("scoring failed", zap.Error(err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Scored %d of %d jobs (%d failed), saved to %s\n",
		summary.Scored, summary.Total, summary.Failed, config.AI.Output)
}

func newGenerator(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Generator, error) {
	switch cfg.Provider {
	case ProviderGemini:
		gc := cfg.Gemini
		if gc == nil {
			gc = &GeminiConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:        "gemini api key",
			Value:       gc.APIKey,
			File:        gc.APIKeyFile,
			Env:         "GEMINI_API_KEY",
			KeyringUser: ProviderGemini,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY or run '%s key set gemini')", err, app)
		}

		return gemini.NewGenerator(ctx, gemini.Config{
			APIKey:          apiKey,
			Model:           gc.Model,
			MaxRetries:      gc.MaxRetries,
			Temperature:     gc.Temperature,
			MaxOutputTokens: gc.MaxOutputTokens,
		}, logger.With(zap.Int("ai_retry_attempts", gc.MaxRetries)))

	case ProviderOpenAI:
		oc := cfg.OpenAI
		if oc == nil {
			oc = &OpenAIConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:        "openai api key",
			Value:       oc.APIKey,
			File:        oc.APIKeyFile,
			Env:         "OPENAI_API_KEY",
			KeyringUser: ProviderOpenAI,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.openai.api-key-file, OPENAI_API_KEY or run '%s key set openai')", err, app)
		}

		return openai.New(openai.Config{
			APIKey:      apiKey,
			BaseURL:     oc.BaseURL,
			Model:       oc.Model,
			Temperature: oc.Temperature,
			MaxTokens:   oc.MaxTokens,
			Timeout:     oc.Timeout,
		}, logger)

	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}
