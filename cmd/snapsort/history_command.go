package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"snapsort/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show past runs and the file operations they journaled",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			jnl, err := journal.Open(cfg)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer jnl.Close()

			if len(args) == 1 {
				return showRunDetail(cmd, jnl, args[0])
			}
			return listRuns(cmd, jnl, limitFlag)
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", 20, "Maximum number of runs to list")
	return cmd
}

func listRuns(cmd *cobra.Command, jnl *journal.Journal, limit int) error {
	runs, err := jnl.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		status := "running"
		if run.Finished() {
			status = run.FinishedAt.Sub(run.StartedAt).Round(timePrecision).String()
		}
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			run.Mode,
			run.Policy,
			strconv.Itoa(run.Counters.Scanned),
			strconv.Itoa(run.Counters.Organized),
			strconv.Itoa(run.Counters.Deleted + run.Counters.Quarantined),
			status,
		})
	}

	fmt.Fprintln(out, renderTable([]column{
		{header: "Run"},
		{header: "Started"},
		{header: "Mode"},
		{header: "Policy"},
		{header: "Scanned", alignRight: true},
		{header: "Organized", alignRight: true},
		{header: "Removed", alignRight: true},
		{header: "Duration", alignRight: true},
	}, rows))
	return nil
}

func showRunDetail(cmd *cobra.Command, jnl *journal.Journal, runID string) error {
	run, err := jnl.GetRun(cmd.Context(), runID)
	if err != nil {
		return fmt.Errorf("load run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("run %s not found", runID)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (%s, %s)\n", run.ID, run.Mode, run.Policy)
	fmt.Fprintf(out, "  source: %s\n", run.SourceDir)
	fmt.Fprintf(out, "  output: %s\n", run.OutputDir)
	fmt.Fprintf(out, "  started: %s\n", run.StartedAt.Local().Format(time.DateTime))
	if run.Finished() {
		fmt.Fprintf(out, "  finished: %s\n", run.FinishedAt.Local().Format(time.DateTime))
		c := run.Counters
		fmt.Fprintf(out, "  scanned %d, organized %d, skipped %d, deleted %d, quarantined %d, warnings %d\n",
			c.Scanned, c.Organized, c.Skipped, c.Deleted, c.Quarantined, c.Warnings)
	}

	actions, err := jnl.RunActions(cmd.Context(), run.ID)
	if err != nil {
		return fmt.Errorf("load actions: %w", err)
	}
	if len(actions) == 0 {
		fmt.Fprintln(out, "  no file operations journaled")
		return nil
	}

	rows := make([][]string, 0, len(actions))
	for _, action := range actions {
		rows = append(rows, []string{action.Verb, action.SourcePath, action.DestPath})
	}
	fmt.Fprintln(out, renderTable([]column{
		{header: "Op"},
		{header: "Source"},
		{header: "Destination"},
	}, rows))
	return nil
}
