package main

import (
	"fmt"
	"time"

	"github.com/alimgiray/contribrank/internal/models"
	"github.com/alimgiray/contribrank/internal/repositories"
	"github.com/alimgiray/contribrank/internal/services"
	"github.com/alimgiray/contribrank/pkg/config"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <dump-dir>",
	Short: "Convert a GitHub REST API dump into pipeline inputs",
	Long: `Convert a directory of GitHub REST API responses into prs.json, issues.json
and commits.json for a period.

The directory holds the concatenated list responses: pulls.json and
issues.json (required), pull_files.json keyed by PR number, reviews.json,
issue_comments.json and commits.json.

Examples:
  contribrank import ./dump --period weekly
  contribrank import ./dump --period daily --window`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().String("period", string(models.PeriodDaily), "daily, weekly or monthly")
	importCmd.Flags().Bool("window", false, "drop records last updated before the period window")
}

func runImport(cmd *cobra.Command, args []string) error {
	period, err := periodFlag(cmd)
	if err != nil {
		return err
	}

	service := services.NewRESTImportService(repositories.NewArtifactRepository(config.AppConfig.Storage.DataDir))

	dump, err := service.LoadDump(args[0])
	if err != nil {
		return err
	}

	var since time.Time
	if window, _ := cmd.Flags().GetBool("window"); window {
		since = period.WindowStart(time.Now())
	}

	result, err := service.Import(period, dump, since)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d pull requests, %d issues, %d commits into %s\n",
		result.PullRequests, result.Issues, result.Commits, period)
	return nil
}
