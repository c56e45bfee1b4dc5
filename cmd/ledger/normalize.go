package main

import (
	"context"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/fleet-ledger/internal/cli"
	"github.com/Veraticus/fleet-ledger/internal/engine"
	"github.com/Veraticus/fleet-ledger/internal/model"
)

func normalizeCmd() *cobra.Command {
	var (
		batchSize int
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Apply the active rules to every stored record",
		Long: `Recompute the category of every stored record from the active rules and
store the ones that changed. Records pinned with 'ledger records categorize'
keep their manual category. Running it twice in a row changes nothing the
second time.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Normalization",
				"Batches already written are kept. Run 'ledger normalize' again to finish.")
			ctx, stop := handler.HandleInterrupts(cmd.Context())
			defer stop()

			store, err := initStorage(ctx, settings)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cache := engine.NewSnapshotCache(func(ctx context.Context) ([]model.NormalizationRule, error) {
				return store.ListRules(ctx, true)
			})

			var bar *progressbar.ProgressBar
			progress := func(done, total int) {
				if quiet {
					return
				}
				if bar == nil {
					bar = newProgressBar(cmd, total)
				}
				_ = bar.Set(done)
			}

			stats, err := engine.NormalizeStored(ctx, store, cache, batchSize, progress)
			if bar != nil {
				_ = bar.Finish()
				fmt.Fprintln(cmd.ErrOrStderr())
			}
			if err != nil {
				if handler.WasInterrupted() {
					return nil
				}
				return err
			}

			summary := fmt.Sprintf("Records:      %d\nReassigned:   %d\nManual:       %d\nActive rules: %d\nDuration:     %s",
				stats.TotalRecords, stats.Reassigned, stats.Manual, stats.ActiveRules, stats.Duration.Round(time.Millisecond))
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox("Normalization complete", summary))
			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", engine.DefaultBatchSize, "records written per transaction")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")

	return cmd
}

func newProgressBar(cmd *cobra.Command, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Writing categories...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
