package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"photoclean/internal/config"
	"photoclean/internal/history"
	"photoclean/internal/scanner"
	"photoclean/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var (
		inputDir  string
		outputDir string
		threshold float64
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a directory and rescan when its contents change",
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
			sc := scanner.New(cfg, logger, opts...)

			input, err := config.ExpandPath(inputDir)
			if err != nil {
				return fmt.Errorf("resolve input directory: %w", err)
			}

			req := scanner.Request{
				InputDir:  input,
				OutputDir: outputDir,
				Threshold: threshold,
				Verbose:   verbose,
			}
			scanFn := func(scanCtx context.Context) error {
				_, err := sc.Run(scanCtx, req)
				return err
			}

			settle := time.Duration(cfg.Watch.SettleSeconds) * time.Second
			svc := watch.New(req.InputDir, settle, scanFn, logger)
			return svc.Run(signalCtx)
		},
	}

	cmd.Flags().StringVarP(&inputDir, "input", "i", "", "Directory to watch")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output root for sorted folders (defaults to the input directory)")
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", 0, "Sensitivity threshold between 0.0 and 1.0")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every file, including clean ones")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
