package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/web3-jobs/internal/collector"
	"github.com/spigell/web3-jobs/internal/filtering"
	"github.com/spigell/web3-jobs/internal/history"
	"github.com/spigell/web3-jobs/internal/jobs"
	"github.com/spigell/web3-jobs/internal/sources"
	"github.com/spigell/web3-jobs/internal/sources/cake"
	"github.com/spigell/web3-jobs/internal/sources/cryptocurrencyjobs"
	"github.com/spigell/web3-jobs/internal/sources/cryptojobs"
	"github.com/spigell/web3-jobs/internal/sources/cryptojobscom"
	"github.com/spigell/web3-jobs/internal/sources/cryptojobslist"
	"github.com/spigell/web3-jobs/internal/sources/feed"
	"github.com/spigell/web3-jobs/internal/sources/jobsdb"
	"github.com/spigell/web3-jobs/internal/sources/remote3"
	"github.com/spigell/web3-jobs/internal/sources/remoteok"
	"github.com/spigell/web3-jobs/internal/sources/web3career"
	"github.com/spigell/web3-jobs/internal/storage"
	"github.com/spigell/web3-jobs/internal/transport"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Fetch jobs from every enabled source, filter them and write a CSV",
	Run: func(cmd *cobra.Command, _ []string) {
		collect(cmd)
	},
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().String("region", RegionGlobal, "source set to fetch: global, cn or all")
	collectCmd.Flags().StringP("output", "o", "", "path of the jobs CSV")
	collectCmd.Flags().IntP("max-jobs", "m", 0, "maximum jobs per source")
	collectCmd.Flags().String("history", "", "sqlite file recording per-source run stats. Default is unset.")
	collectCmd.Flags().StringSlice("skip-filter", nil, "filter steps to disable: keywords, companies, exclude_file")
	collectCmd.Flags().Bool("dump-json", false, "also dump the filtered jobs as JSON into a temporary file")

	viper.BindPFlag("region", collectCmd.Flags().Lookup("region"))
	viper.BindPFlag("output", collectCmd.Flags().Lookup("output"))
	viper.BindPFlag("max-jobs", collectCmd.Flags().Lookup("max-jobs"))
	viper.BindPFlag("history", collectCmd.Flags().Lookup("history"))
}

func collect(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the collection",
		zap.String("version", version),
		zap.String("region", config.Region),
		zap.Int("max_jobs", config.MaxJobs),
	)

	factory, err := transport.NewFactory(config.HTTP, logger)
	if err != nil {
		logger.Fatal("creating http sessions", zap.Error(err))
	}

	httpCfg := factory.Config()
	logger.Debug("http sessions",
		zap.Duration("timeout", httpCfg.Timeout),
		zap.Int("max_retries", httpCfg.MaxRetries),
		zap.Bool("verify_ssl", httpCfg.VerifySSL),
		zap.Bool("proxy", httpCfg.Proxy != ""),
		zap.Float64("requests_per_second", httpCfg.RequestsPerSecond),
	)

	adapters := buildAdapters(config, factory, logger)
	if len(adapters) == 0 {
		logger.Fatal("no sources enabled", zap.String("region", config.Region))
	}

	runAt := time.Now()
	report := collector.New(adapters, collector.Options{
		Concurrency:   config.Concurrency,
		SourceTimeout: config.SourceTimeout,
		Logger:        logger,
	}).Run(ctx, config.MaxJobs)

	out := cmd.OutOrStdout()
	printCounts(out, "Raw jobs total (before keyword filtering)", report.Jobs)

	if failed := report.Failed(); len(failed) > 0 {
		names := make([]string, 0, len(failed))
		for _, f := range failed {
			names = append(names, f.Name)
		}
		fmt.Fprintf(out, "Failed sources: %s\n", strings.Join(names, ", "))
	}

	filterCfg := &filtering.Config{
		DomainKeywords:   config.Filter.DomainKeywords,
		RoleKeywords:     config.Filter.RoleKeywords,
		ExcludeCompanies: config.Filter.ExcludeCompanies,
		ExcludeFile:      config.Filter.ExcludeFile,
	}

	steps := []filtering.Filter{
		filtering.NewKeywords(),
		filtering.NewCompanies(),
		filtering.NewExcludeFile(),
	}

	skip, _ := cmd.Flags().GetStringSlice("skip-filter")
	for _, name := range skip {
		filtering.DisableByName(steps, name, "disabled by --skip-filter")
	}

	filtered, err := filtering.Run(ctx, filterCfg, filtering.Deps{Logger: logger}, steps, report.Jobs)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	// Keyword sets are only populated once Run has validated the steps.
	for _, status := range filtering.Describe(steps) {
		logger.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	printCounts(out, "After keyword filtering", filtered)

	if err := storage.WriteJobs(config.Output, filtered.Items); err != nil {
		logger.Fatal("saving jobs", zap.Error(err), zap.String("output", config.Output))
	}

	logger.Info("saved jobs", zap.String("output", config.Output), zap.Int("count", filtered.Len()))

	if dump, _ := cmd.Flags().GetBool("dump-json"); dump {
		filename, err := filtered.DumpToTmpFile()
		if err != nil {
			logger.Warn("dump results to file", zap.Error(err))
		} else {
			logger.Info("dumping result to file", zap.String("filename", filename))
		}
	}

	if config.History != "" {
		if err := recordHistory(ctx, config.History, history.Entries(runAt, report, filtered.CountBySource())); err != nil {
			logger.Warn("recording run history", zap.Error(err), zap.String("history", config.History))
		}
	}
}

// buildAdapters returns the adapters of the configured region in their
// declaration order. Sources that historically serve broken certificate
// chains get a session without TLS verification.
func buildAdapters(config *Config, factory *transport.Factory, logger *zap.Logger) []sources.Adapter {
	var adapters []sources.Adapter

	add := func(name string, build func() sources.Adapter) {
		if !config.sourceEnabled(name) {
			logger.Info("source disabled", zap.String("source", name))
			return
		}
		adapters = append(adapters, build())
	}

	global := config.Region == RegionGlobal || config.Region == RegionAll
	cn := config.Region == RegionCN || config.Region == RegionAll

	if global {
		add(web3career.Name, func() sources.Adapter {
			return web3career.New(factory.Session(web3career.Name), logger)
		})
		add(cryptojobs.Name, func() sources.Adapter {
			return cryptojobs.New(factory.Session(cryptojobs.Name, transport.Insecure()), logger)
		})
		add(cryptocurrencyjobs.Name, func() sources.Adapter {
			return cryptocurrencyjobs.New(factory.Session(cryptocurrencyjobs.Name, transport.Insecure()), logger)
		})
		add(cryptojobscom.Name, func() sources.Adapter {
			return cryptojobscom.New(factory.Session(cryptojobscom.Name, transport.Insecure()), logger)
		})
		add(remote3.Name, func() sources.Adapter {
			return remote3.New(factory.Session(remote3.Name, transport.Insecure()), logger)
		})
		add(remoteok.Name, func() sources.Adapter {
			return remoteok.New(factory.Session(remoteok.Name), logger, config.Sources.RemoteOKTags)
		})
		if config.Sources.CryptoJobsList {
			add(cryptojobslist.Name, func() sources.Adapter {
				return cryptojobslist.New(factory.Session(cryptojobslist.Name), logger)
			})
		}
		for _, f := range config.Sources.Feeds {
			add(f.Name, func() sources.Adapter {
				return feed.New(factory.Session(f.Name), logger, f)
			})
		}
	}

	if cn {
		add(jobsdb.Name, func() sources.Adapter {
			return jobsdb.New(factory.Session(jobsdb.Name), logger)
		})
		add(cake.Name, func() sources.Adapter {
			return cake.New(factory.Session(cake.Name), logger, config.Sources.CakeLocations)
		})
	}

	return adapters
}

func printCounts(w io.Writer, label string, j *jobs.Jobs) {
	fmt.Fprintf(w, "%s: %d\n", label, j.Len())
	fmt.Fprintf(w, "By source: %s\n", jobs.FormatCounts(j.CountBySource()))
}

func recordHistory(ctx context.Context, path string, entries []history.Entry) error {
	store, err := history.Open(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Record(ctx, entries)
}
