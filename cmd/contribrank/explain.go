package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/alimgiray/contribrank/internal/models"
	"github.com/alimgiray/contribrank/pkg/database"
	"github.com/spf13/cobra"
)

var explainCmd = &cobra.Command{
	Use:   "explain <login>",
	Short: "Show how a contributor's score is made up",
	Args:  cobra.ExactArgs(1),
	RunE:  runExplain,
}

func init() {
	explainCmd.Flags().String("period", string(models.PeriodDaily), "daily, weekly or monthly")
	explainCmd.Flags().Bool("json", false, "print JSON")
}

func runExplain(cmd *cobra.Command, args []string) error {
	period, err := periodFlag(cmd)
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer database.Close()

	explanation, err := a.reports().Explain(period, args[0])
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(explanation)
	}

	b := explanation.Breakdown
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%s\trank %d\tscore %d\n", explanation.Contributor, explanation.Rank, explanation.Score)
	fmt.Fprintf(w, "pull requests\t%.2f\n", b.PullRequests)
	fmt.Fprintf(w, "issues\t%.2f\n", b.Issues)
	fmt.Fprintf(w, "commits\t%.2f\n", b.Commits)
	fmt.Fprintf(w, "collaboration\t%.2f\n", b.Collaboration)
	fmt.Fprintf(w, "reviewer\t%.2f\n", b.Reviewer)
	fmt.Fprintf(w, "volume\t%.2f\n", b.Volume)
	fmt.Fprintf(w, "total\t%.2f\n", b.Total)
	return w.Flush()
}
