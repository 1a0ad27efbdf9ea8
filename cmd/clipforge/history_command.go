package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"clipforge/internal/history"
)

func newHistoryCommand(cctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent batch runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
				return nil
			}

			headers := []string{"ID", "Mode", "Started", "Total", "Done", "Failed", "Elapsed"}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, formatRunRows(runs), 4, 5, 6, 7))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	cmd.AddCommand(newHistoryShowCommand(cctx))

	return cmd
}

func newHistoryShowCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the per-job outcomes of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			jobs, err := store.RunJobs(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				return fmt.Errorf("no jobs recorded for run %s", args[0])
			}

			headers := []string{"Job", "Status", "Output", "Error"}
			rows := make([][]string, 0, len(jobs))
			for _, job := range jobs {
				rows = append(rows, []string{
					fmt.Sprintf("%d", job.Index),
					string(job.Status),
					job.OutputPath,
					job.Error,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, 1))
			return nil
		},
	}
}

func formatRunRows(runs []history.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		elapsed := "-"
		if run.Finished() {
			elapsed = fmt.Sprintf("%.1fs", run.ElapsedSeconds)
		}
		rows = append(rows, []string{
			shortID(run.ID),
			run.Mode,
			run.StartedAt.Local().Format(time.DateTime),
			fmt.Sprintf("%d", run.Total),
			fmt.Sprintf("%d", run.Done),
			fmt.Sprintf("%d", run.Failed),
			elapsed,
		})
	}
	return rows
}

func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled || strings.TrimSpace(cfg.History.Path) == "" {
		return nil, fmt.Errorf("run history is disabled; enable it under [history] in the config")
	}
	return history.Open(cfg.History.Path)
}
