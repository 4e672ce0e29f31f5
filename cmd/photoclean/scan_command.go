package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"photoclean/internal/history"
	"photoclean/internal/report"
	"photoclean/internal/scanner"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var (
		inputDir  string
		outputDir string
		threshold float64
		dryRun    bool
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a directory and sort photos by sensitivity score",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = cfg.Scan.Threshold
			}

			logger, err := ctx.buildLogger(verbose)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			opts := []scanner.Option{}
			var store *history.Store
			if cfg.History.Enabled {
				store, err = history.Open(cfg)
				if err != nil {
					return fmt.Errorf("open history store: %w", err)
				}
				defer store.Close()
				opts = append(opts, scanner.WithHistory(store))
			}

			var bar *progressbar.ProgressBar
			if isatty.IsTerminal(os.Stderr.Fd()) && !verbose {
				opts = append(opts, scanner.WithProgress(func(p scanner.Progress) {
					if bar == nil {
						bar = newScanBar(p.Total)
					}
					_ = bar.Set(p.Processed)
				}))
			}

			sc := scanner.New(cfg, logger, opts...)
			summary, err := sc.Run(signalCtx, scanner.Request{
				InputDir:  inputDir,
				OutputDir: outputDir,
				Threshold: threshold,
				DryRun:    dryRun,
				Verbose:   verbose,
			})
			if bar != nil {
				_ = bar.Finish()
			}
			if err != nil {
				return err
			}

			printSummary(cmd, summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputDir, "input", "i", "", "Directory to scan")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output root for sorted folders (defaults to the input directory)")
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", 0, "Sensitivity threshold between 0.0 and 1.0")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Score and report without moving any files")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every file, including clean ones")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func newScanBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("scanning"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func printSummary(cmd *cobra.Command, summary *report.Summary) {
	out := cmd.OutOrStdout()
	if summary.DryRun {
		fmt.Fprintln(out, "Dry run: no files were moved")
	}
	if summary.Interrupted {
		fmt.Fprintln(out, "Scan interrupted; results cover the files processed so far")
	}
	fmt.Fprintln(out, report.RenderTable(summary))
}
