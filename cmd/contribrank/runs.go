package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/alimgiray/contribrank/internal/models"
	"github.com/alimgiray/contribrank/pkg/database"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent pipeline runs",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().String("period", string(models.PeriodDaily), "daily, weekly or monthly")
	runsCmd.Flags().Int("limit", 10, "number of runs to show")
}

func runRuns(cmd *cobra.Command, args []string) error {
	period, err := periodFlag(cmd)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := a.reports().Runs(period, limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tDATE\tSTATUS\tSTAGES\tDURATION\tERROR")
	for _, r := range runs {
		duration := "-"
		if r.StartedAt != nil && r.CompletedAt != nil {
			duration = r.CompletedAt.Sub(*r.StartedAt).Round(time.Millisecond).String()
		}
		errMsg := ""
		if r.ErrorMessage != nil {
			errMsg = *r.ErrorMessage
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n", r.ID, r.RunDate, r.Status, len(r.Stages), duration, errMsg)
	}
	return w.Flush()
}
