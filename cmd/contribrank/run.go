package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alimgiray/contribrank/internal/models"
	"github.com/alimgiray/contribrank/internal/services"
	"github.com/alimgiray/contribrank/pkg/database"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline for a period",
	Long: `Run the pipeline stages in order: fetch, merge, score, summarize, snapshot, build.

The fetch stage only verifies that prs.json and issues.json exist; fetching
itself happens outside contribrank (see "contribrank import").

Examples:
  # Full daily run
  contribrank run --period daily

  # Resume after a crash, starting from the last committed artifact
  contribrank run --period daily --from score`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().String("period", string(models.PeriodDaily), "daily, weekly or monthly")
	runCmd.Flags().String("from", "", "first stage to run")
	runCmd.Flags().String("to", "", "last stage to run")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	period, err := periodFlag(cmd)
	if err != nil {
		return err
	}

	opts := services.RunOptions{Period: period}
	if from, _ := cmd.Flags().GetString("from"); from != "" {
		if opts.From, err = models.ParseStage(from); err != nil {
			return err
		}
	}
	if to, _ := cmd.Flags().GetString("to"); to != "" {
		if opts.To, err = models.ParseStage(to); err != nil {
			return err
		}
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run, results, err := a.pipeline().Run(ctx, opts)
	for _, r := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-10s %8d  %s\n", r.Stage, r.Status, r.Bytes, r.Artifact)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "run %s %s\n", run.ID, run.Status)
	return nil
}

// newStageCmd builds a command running a single stage
func newStageCmd(stage models.Stage) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(stage),
		Short: fmt.Sprintf("Run only the %s stage", stage),
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := periodFlag(cmd)
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer database.Close()

			result, err := a.pipeline().RunStage(cmd.Context(), period, stage)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %d bytes %s\n", result.Stage, result.Status, result.Bytes, result.Artifact)
			return nil
		},
	}
	cmd.Flags().String("period", string(models.PeriodDaily), "daily, weekly or monthly")
	return cmd
}
