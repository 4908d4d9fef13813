package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/web3-jobs/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print per-source stats of recent collection runs",
	Run: func(cmd *cobra.Command, _ []string) {
		showHistory(cmd)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().String("history", "", "sqlite file written by collect --history")
	historyCmd.Flags().IntP("runs", "n", 5, "number of recent runs to print")
}

func showHistory(cmd *cobra.Command) {
	ctx := context.Background()
	logger := newLogger()

	path, _ := cmd.Flags().GetString("history")
	if path == "" {
		path = viper.GetString("history")
	}
	if path == "" {
		logger.Fatal("history file is not configured", zap.String("hint", "pass --history or set the 'history' key"))
	}

	runs, _ := cmd.Flags().GetInt("runs")

	store, err := history.Open(ctx, path)
	if err != nil {
		logger.Fatal("opening history", zap.Error(err))
	}
	defer store.Close()

	entries, err := store.Recent(ctx, runs)
	if err != nil {
		logger.Fatal("reading history", zap.Error(err))
	}

	printHistory(cmd.OutOrStdout(), entries)
}

func printHistory(w io.Writer, entries []history.Entry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSOURCE\tFETCHED\tADDED\tKEPT\tERROR")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
			e.RunAt.Local().Format(time.DateTime), e.Source, e.Fetched, e.Added, e.Kept, e.Error)
	}
	tw.Flush()
}
