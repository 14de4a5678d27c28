package main

import (
	"fmt"
	"os"

	"github.com/alimgiray/contribrank/internal/models"
	"github.com/alimgiray/contribrank/internal/repositories"
	"github.com/alimgiray/contribrank/internal/services"
	"github.com/alimgiray/contribrank/pkg/config"
	"github.com/alimgiray/contribrank/pkg/database"
	"github.com/alimgiray/contribrank/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	Version = "dev"

	dataDir     string
	dbPath      string
	scoringFile string
	verbose     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "contribrank",
	Short: "Rank repository contributors from their GitHub activity",
	Long: `contribrank merges pull requests, issues and commits fetched from GitHub
into per-contributor activity, scores and ranks contributors, and keeps
dated snapshots of every daily run.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}

		if cmd.Flags().Changed("data-dir") {
			config.AppConfig.Storage.DataDir = dataDir
		}
		if cmd.Flags().Changed("db") {
			config.AppConfig.Storage.DBPath = dbPath
		}
		if cmd.Flags().Changed("scoring") {
			config.AppConfig.Pipeline.ScoringFile = scoringFile
		}

		level := config.AppConfig.LogLevel
		if verbose {
			level = "debug"
		}
		logger.Init(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "artifact root directory (default $DATA_DIR or ./data)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default $DB_PATH or ./contribrank.db)")
	rootCmd.PersistentFlags().StringVar(&scoringFile, "scoring", "", "YAML file overriding scoring weights (default $SCORING_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(runCmd)
	for _, stage := range models.Stages {
		if stage == models.StageFetch {
			continue
		}
		rootCmd.AddCommand(newStageCmd(stage))
	}
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(serveCmd)
}

// app bundles the services a command needs
type app struct {
	artifacts *repositories.ArtifactRepository
	runs      *repositories.RunRepository
	history   *repositories.ScoreHistoryRepository
	scorer    *services.Scorer
}

// openApp opens the database and builds the shared services. The caller
// closes the database with database.Close.
func openApp() (*app, error) {
	cfg := config.AppConfig

	weights, err := config.LoadScoring(cfg.Pipeline.ScoringFile)
	if err != nil {
		return nil, err
	}
	scorer, err := services.NewScorer(weights)
	if err != nil {
		return nil, err
	}

	if err := database.Init(cfg.Storage.DBPath); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return &app{
		artifacts: repositories.NewArtifactRepository(cfg.Storage.DataDir),
		runs:      repositories.NewRunRepository(database.DB),
		history:   repositories.NewScoreHistoryRepository(database.DB),
		scorer:    scorer,
	}, nil
}

func (a *app) pipeline() *services.PipelineService {
	summaries := services.NewSummaryService(services.NewActivitySummarizer(), config.AppConfig.Pipeline.SummaryConcurrency)
	return services.NewPipelineService(a.artifacts, a.runs, a.history, a.scorer, summaries, services.NewWorkbookBuilder())
}

func (a *app) reports() *services.ReportService {
	return services.NewReportService(a.artifacts, a.runs, a.history, a.scorer)
}

func periodFlag(cmd *cobra.Command) (models.Period, error) {
	value, _ := cmd.Flags().GetString("period")
	return models.ParsePeriod(value)
}
