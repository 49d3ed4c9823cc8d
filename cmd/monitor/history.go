package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/logger"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/testrun"
)

func newHistoryCmd() *cobra.Command {
	var limit, offset int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded monitor runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, closeDB, err := openHistory(cfg.History)
			if err != nil {
				return err
			}
			defer closeDB()
			if db == nil {
				return fmt.Errorf("run history is disabled; set history.driver")
			}

			log := logger.NewLogrusLogger(cfg.Log.Level, cfg.Log.Format)
			runs, err := testrun.NewMySQLStore(db, log).ListRecent(cmd.Context(), limit, offset)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), runs)
			}

			runIDs := make([]string, len(runs))
			for i, r := range runs {
				runIDs[i] = r.RunID
			}
			reports, err := testrun.NewMySQLAssetStore(db, log).ReportURLs(cmd.Context(), runIDs)
			if err != nil {
				return fmt.Errorf("failed to look up reports: %w", err)
			}

			printTable(cmd.OutOrStdout(), historyHeaders, historyRows(runs, reports))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset for pagination")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

var historyHeaders = []string{"RUN ID", "KIND", "STATUS", "STARTED", "ELAPSED", "VERSION", "FAILED STEP", "REPORT"}

func historyRows(runs []*testrun.TestRun, reports map[string]string) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		started := "-"
		if r.StartedAt != nil {
			started = r.StartedAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []string{
			r.RunID,
			r.Kind,
			string(r.Status),
			started,
			strconv.FormatFloat(r.Elapsed().Seconds(), 'f', 1, 64) + "s",
			dash(r.Version),
			dash(r.FailedStep),
			dash(reports[r.RunID]),
		})
	}
	return rows
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	rootCmd.AddCommand(newHistoryCmd())
}
