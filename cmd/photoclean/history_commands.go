package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"photoclean/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded scan runs",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))

	return historyCmd
}

func (c *commandContext) withHistory(fn func(*history.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded scans, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, runs)
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No scans recorded")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderRunsTable(runs))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id|latest>",
		Short: "Show one recorded scan and its per-file results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				run, results, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					if errors.Is(err, history.ErrRunNotFound) {
						return fmt.Errorf("no recorded scan matches %q", args[0])
					}
					return err
				}
				if asJSON {
					return writeJSON(cmd, map[string]any{"run": run, "results": results})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Scan %s\n", run.ID)
				fmt.Fprintf(out, "Started:   %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
				fmt.Fprintf(out, "Duration:  %s\n", run.Duration().Round(time.Millisecond))
				fmt.Fprintf(out, "Input:     %s\n", run.InputDir)
				fmt.Fprintf(out, "Output:    %s\n", run.OutputDir)
				fmt.Fprintf(out, "Threshold: %g\n", run.Threshold)
				fmt.Fprintf(out, "Dry run:   %s\n", yesNo(run.DryRun))
				if run.Interrupted {
					fmt.Fprintln(out, "Interrupted: yes")
				}
				fmt.Fprintf(out, "Totals:    %d scanned, %d clean, %d sensitive, %d errors, %d skipped\n",
					run.Stats.Total, run.Stats.Clean, run.Stats.Sensitive, run.Stats.Errors, run.Stats.Skipped)

				if len(results) == 0 {
					return nil
				}
				fmt.Fprintln(out, renderResultsTable(results))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded scans",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				if err := store.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Scan history cleared")
				return nil
			})
		},
	}
}
