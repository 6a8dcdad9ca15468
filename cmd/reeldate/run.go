package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heimdex/reeldate/internal/catalog"
	"github.com/heimdex/reeldate/internal/config"
	"github.com/heimdex/reeldate/internal/discrepancy"
	"github.com/heimdex/reeldate/internal/pipeline"
)

var stampCmd = &cobra.Command{
	Use:   "stamp",
	Short: "Write Start TC and Scene from each clip's resolved capture date",
	Args:  cobra.NoArgs,
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Copy the Slate TC backup back into Start TC",
	Args:  cobra.NoArgs,
}

var organizeCmd = &cobra.Command{
	Use:   "organize",
	Short: "File videos into day bins and stills and audio into their own bins",
	Args:  cobra.NoArgs,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Report clock skew between filename, creation and modification dates",
	Long: `Groups clips by filename prefix and, for each group, compares the date
encoded in the filename with the file's creation and modification times.
Nothing is written to the catalog.`,
	Args: cobra.NoArgs,
}

var prefixesCmd = &cobra.Command{
	Use:   "prefixes",
	Short: "List the filename prefixes present in the catalog",
	Args:  cobra.NoArgs,
	RunE:  runPrefixes,
}

func init() {
	stampOpts := join(sourceFlags(stampCmd), selectionFlags(stampCmd), timelineFlag(stampCmd),
		stampFlags(stampCmd), dryRunFlag(stampCmd))
	stampCmd.RunE = operationRunE(catalog.RunOpStamp, stampOpts,
		func(ctx context.Context, r *pipeline.Runner) (any, string, error) {
			stats, err := r.Stamp(ctx)
			if stats == nil {
				return nil, "", err
			}
			return stats, stats.StampSummary(), err
		})

	restoreOpts := join(selectionFlags(restoreCmd), timelineFlag(restoreCmd),
		restoreFlags(restoreCmd), dryRunFlag(restoreCmd))
	restoreCmd.RunE = operationRunE(catalog.RunOpRestore, restoreOpts,
		func(ctx context.Context, r *pipeline.Runner) (any, string, error) {
			stats, err := r.Restore(ctx)
			if stats == nil {
				return nil, "", err
			}
			return stats, stats.RestoreSummary(), err
		})

	organizeOpts := join(sourceFlags(organizeCmd), selectionFlags(organizeCmd),
		organizeFlags(organizeCmd), dryRunFlag(organizeCmd))
	organizeCmd.RunE = operationRunE(catalog.RunOpOrganize, organizeOpts,
		func(ctx context.Context, r *pipeline.Runner) (any, string, error) {
			stats, err := r.Organize(ctx)
			if stats == nil {
				return nil, "", err
			}
			return stats, stats.Summary(), err
		})

	analyzeOpts := join(sourceFlags(analyzeCmd), selectionFlags(analyzeCmd))
	analyzeCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return withRunner(cmd, analyzeOpts, func(a *app, runner *pipeline.Runner) error {
			var reports []discrepancy.Report
			_, err := a.service.Track(cmd.Context(), catalog.RunOpAnalyze, true, func(ctx context.Context) (any, error) {
				var err error
				reports, err = runner.Analyze(ctx)
				return reports, err
			})
			if err != nil {
				return fmt.Errorf("analyze failed: %w", err)
			}
			if len(reports) == 0 {
				cmd.Println("No clips to analyze.")
				return nil
			}
			return discrepancy.Render(cmd.OutOrStdout(), reports)
		})
	}

	rootCmd.AddCommand(stampCmd, restoreCmd, organizeCmd, analyzeCmd, prefixesCmd)
}

// operation runs one pipeline pass and returns its stats and summary text.
type operation func(ctx context.Context, r *pipeline.Runner) (any, string, error)

// operationRunE runs exec as a tracked run and prints its summary. A summary
// is printed even when the run stopped early.
func operationRunE(op string, ov overrides, exec operation) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		return withRunner(cmd, ov, func(a *app, runner *pipeline.Runner) error {
			var summary string
			run, err := a.service.Track(cmd.Context(), op, runner.Options().DryRun, func(ctx context.Context) (any, error) {
				var (
					stats any
					err   error
				)
				stats, summary, err = exec(ctx, runner)
				return stats, err
			})
			if summary != "" {
				cmd.Println(summary)
			}
			if err != nil {
				return fmt.Errorf("%s failed: %w", op, err)
			}
			cmd.Printf("Run %s recorded.\n", run.ID)
			return nil
		})
	}
}

// withRunner opens the catalog, resolves options from file and flags, and
// hands fn a runner over the catalog.
func withRunner(cmd *cobra.Command, ov overrides, fn func(a *app, runner *pipeline.Runner) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	opts, err := a.loadOptions()
	if err != nil {
		return err
	}
	ov.apply(cmd, &opts)

	runner, err := pipeline.NewRunner(a.service.Host(), a.stater, opts, a.logger)
	if err != nil {
		return err
	}
	return fn(a, runner)
}

func runPrefixes(cmd *cobra.Command, _ []string) error {
	return withRunner(cmd, nil, func(_ *app, runner *pipeline.Runner) error {
		prefixes, err := runner.Prefixes(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list prefixes: %w", err)
		}
		cmd.Println(config.AllPrefixes)
		for _, p := range prefixes {
			cmd.Println(p)
		}
		return nil
	})
}
