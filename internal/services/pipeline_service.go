package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alimgiray/contribrank/internal/models"
	"github.com/alimgiray/contribrank/internal/repositories"
	"github.com/alimgiray/contribrank/pkg/logger"
	"github.com/sirupsen/logrus"
)

// RunStore records pipeline runs and their stages
type RunStore interface {
	CreateRun(run *models.Run) error
	UpdateRun(run *models.Run) error
	CreateStageRun(stage *models.StageRun) error
	UpdateStageRun(stage *models.StageRun) error
}

// ScoreHistory records the ranked scores of a run
type ScoreHistory interface {
	InsertBatch(scores []*models.ContributorScore) error
}

// RunOptions selects the period and the stage range of a pipeline run.
// Empty From and To mean the first and the last stage.
type RunOptions struct {
	Period models.Period
	From   models.Stage
	To     models.Stage
}

// StageResult describes the artifact a stage committed
type StageResult struct {
	Stage    models.Stage     `json:"stage"`
	Status   models.RunStatus `json:"status"`
	Artifact string           `json:"artifact,omitempty"`
	Bytes    int64            `json:"bytes"`
}

// PipelineService drives the fetch, merge, score, summarize, snapshot and
// build stages. Stages only exchange data through artifacts on disk, so any
// stage can be resumed from the previous stage's output.
type PipelineService struct {
	artifacts *repositories.ArtifactRepository
	runs      RunStore
	history   ScoreHistory
	merger    *MergeService
	ranking   *RankingService
	summaries *SummaryService
	builder   Builder
	log       *logrus.Entry
	now       func() time.Time
}

// NewPipelineService creates a pipeline. runs and history may be nil, in
// which case nothing is recorded in the database.
func NewPipelineService(
	artifacts *repositories.ArtifactRepository,
	runs RunStore,
	history ScoreHistory,
	scorer *Scorer,
	summaries *SummaryService,
	builder Builder,
) *PipelineService {
	return &PipelineService{
		artifacts: artifacts,
		runs:      runs,
		history:   history,
		merger:    NewMergeService(),
		ranking:   NewRankingService(scorer),
		summaries: summaries,
		builder:   builder,
		log:       logger.Component("pipeline"),
		now:       time.Now,
	}
}

// SetClock replaces the clock used for run dates and snapshot names
func (p *PipelineService) SetClock(now func() time.Time) {
	p.now = now
}

// Run executes the selected stages in order and stops at the first failure
func (p *PipelineService) Run(ctx context.Context, opts RunOptions) (*models.Run, []StageResult, error) {
	from, to, err := stageRange(opts)
	if err != nil {
		return nil, nil, err
	}

	run := models.NewRun(opts.Period, p.now())
	run.MarkStarted()
	if p.runs != nil {
		if err := p.runs.CreateRun(run); err != nil {
			return nil, nil, fmt.Errorf("record run: %w", err)
		}
	}

	log := p.log.WithFields(logrus.Fields{"run_id": run.ID, "period": opts.Period})
	log.WithFields(logrus.Fields{"from": models.Stages[from], "to": models.Stages[to]}).Info("Pipeline started")

	results := []StageResult{}
	for _, stage := range models.Stages[from : to+1] {
		result, err := p.runStage(ctx, run, stage)
		if err != nil {
			run.MarkFailed(err)
			p.saveRun(run)
			log.WithError(err).WithField("stage", stage).Error("Pipeline failed")
			return run, results, err
		}
		results = append(results, result)
	}

	run.MarkCompleted()
	p.saveRun(run)
	log.WithField("stages", len(results)).Info("Pipeline completed")
	return run, results, nil
}

// RunStage executes a single stage, still subject to its gate
func (p *PipelineService) RunStage(ctx context.Context, period models.Period, stage models.Stage) (*StageResult, error) {
	_, results, err := p.Run(ctx, RunOptions{Period: period, From: stage, To: stage})
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

func stageRange(opts RunOptions) (int, int, error) {
	if _, err := models.ParsePeriod(string(opts.Period)); err != nil {
		return 0, 0, err
	}

	from, to := 0, len(models.Stages)-1
	if opts.From != "" {
		if from = opts.From.Index(); from < 0 {
			return 0, 0, fmt.Errorf("%w: %q", models.ErrInvalidStage, opts.From)
		}
	}
	if opts.To != "" {
		if to = opts.To.Index(); to < 0 {
			return 0, 0, fmt.Errorf("%w: %q", models.ErrInvalidStage, opts.To)
		}
	}
	if from > to {
		return 0, 0, fmt.Errorf("%w: %s comes after %s", models.ErrInvalidStage, opts.From, opts.To)
	}
	return from, to, nil
}

func (p *PipelineService) runStage(ctx context.Context, run *models.Run, stage models.Stage) (StageResult, error) {
	record := models.NewStageRun(run.ID, stage)
	if p.runs != nil {
		if err := p.runs.CreateStageRun(record); err != nil {
			p.log.WithError(err).Warn("Failed to record stage")
		}
	}

	log := p.log.WithFields(logrus.Fields{"run_id": run.ID, "period": run.Period, "stage": stage})
	log.Info("Stage started")

	result, err := p.execute(ctx, run, stage)
	if err != nil {
		var stageErr *models.StageError
		if !errors.As(err, &stageErr) {
			err = &models.StageError{Stage: stage, Err: err}
		}
		record.Fail(err)
		p.saveStage(record)
		return result, err
	}

	record.Finish(result.Status, result.Artifact, result.Bytes)
	p.saveStage(record)
	log.WithFields(logrus.Fields{"artifact": result.Artifact, "bytes": result.Bytes, "status": result.Status}).Info("Stage finished")
	return result, nil
}

func (p *PipelineService) execute(ctx context.Context, run *models.Run, stage models.Stage) (StageResult, error) {
	if err := ctx.Err(); err != nil {
		return StageResult{Stage: stage}, err
	}

	switch stage {
	case models.StageFetch:
		return p.fetch(run.Period)
	case models.StageMerge:
		return p.merge(run.Period)
	case models.StageScore:
		return p.score(run)
	case models.StageSummarize:
		return p.summarize(ctx, run.Period)
	case models.StageSnapshot:
		return p.snapshot(run)
	case models.StageBuild:
		return p.build(ctx, run.Period)
	}
	return StageResult{Stage: stage}, fmt.Errorf("%w: %q", models.ErrInvalidStage, stage)
}

// gate fails the stage unless the artifact exists and is non-empty, and
// returns its size
func (p *PipelineService) gate(stage models.Stage, period models.Period, name string) (int64, error) {
	size, err := p.artifacts.Verify(period, name)
	if err != nil {
		return 0, &models.StageError{Stage: stage, Artifact: p.artifacts.Path(period, name), Err: err}
	}
	return size, nil
}

func (p *PipelineService) commit(stage models.Stage, period models.Period, name string, v interface{}) (StageResult, error) {
	size, err := p.artifacts.WriteJSON(period, name, v)
	if err != nil {
		return StageResult{Stage: stage}, &models.StageError{Stage: stage, Artifact: p.artifacts.Path(period, name), Err: err}
	}
	return StageResult{Stage: stage, Status: models.RunStatusCompleted, Artifact: p.artifacts.Path(period, name), Bytes: size}, nil
}

// fetch runs externally; the stage only checks that its required outputs
// are in place. commits.json is optional.
func (p *PipelineService) fetch(period models.Period) (StageResult, error) {
	total := int64(0)
	for _, name := range []string{models.ArtifactPullRequests, models.ArtifactIssues} {
		size, err := p.gate(models.StageFetch, period, name)
		if err != nil {
			return StageResult{Stage: models.StageFetch}, err
		}
		total += size
	}
	return StageResult{
		Stage:    models.StageFetch,
		Status:   models.RunStatusCompleted,
		Artifact: p.artifacts.Path(period, models.ArtifactPullRequests),
		Bytes:    total,
	}, nil
}

func (p *PipelineService) merge(period models.Period) (StageResult, error) {
	var prs []models.RawPullRequest
	var issues []models.RawIssue
	var commits []models.RawCommit

	inputs := []struct {
		name     string
		target   interface{}
		required bool
	}{
		{models.ArtifactPullRequests, &prs, true},
		{models.ArtifactIssues, &issues, true},
		{models.ArtifactCommits, &commits, false},
	}
	for _, in := range inputs {
		if !in.required && !p.artifacts.Exists(period, in.name) {
			continue
		}
		if _, err := p.gate(models.StageMerge, period, in.name); err != nil {
			return StageResult{Stage: models.StageMerge}, err
		}
		if err := p.artifacts.ReadJSON(period, in.name, in.target); err != nil {
			return StageResult{Stage: models.StageMerge}, &models.StageError{Stage: models.StageMerge, Artifact: p.artifacts.Path(period, in.name), Err: err}
		}
	}

	records, stats := p.merger.Merge(prs, issues, commits)
	p.log.WithFields(logrus.Fields{
		"period":                period,
		"contributors":          stats.Contributors,
		"pull_requests":         stats.PullRequests,
		"issues":                stats.Issues,
		"commits":               stats.Commits,
		"skipped_pull_requests": stats.SkippedPullRequests,
		"skipped_issues":        stats.SkippedIssues,
		"skipped_commits":       stats.SkippedCommits,
	}).Info("Merged activity")
	return p.commit(models.StageMerge, period, models.ArtifactCombined, records)
}

func (p *PipelineService) score(run *models.Run) (StageResult, error) {
	records, err := p.load(models.StageScore, run.Period, models.ArtifactCombined)
	if err != nil {
		return StageResult{Stage: models.StageScore}, err
	}

	ranked := p.ranking.Rank(records)
	result, err := p.commit(models.StageScore, run.Period, models.ArtifactScored, ranked)
	if err != nil {
		return result, err
	}

	if p.history != nil {
		scores := make([]*models.ContributorScore, len(ranked))
		for i := range ranked {
			scores[i] = models.NewContributorScore(run, i+1, &ranked[i])
		}
		if err := p.history.InsertBatch(scores); err != nil {
			p.log.WithError(err).WithField("run_id", run.ID).Warn("Failed to record score history")
		}
	}
	return result, nil
}

func (p *PipelineService) summarize(ctx context.Context, period models.Period) (StageResult, error) {
	records, err := p.load(models.StageSummarize, period, models.ArtifactScored)
	if err != nil {
		return StageResult{Stage: models.StageSummarize}, err
	}

	if failed := p.summaries.SummarizeAll(ctx, records); failed > 0 {
		p.log.WithFields(logrus.Fields{"period": period, "failed": failed}).Warn("Some summaries are unavailable")
	}
	return p.commit(models.StageSummarize, period, models.ArtifactContributors, records)
}

// snapshot copies the current artifacts into the history partition, named
// after the run's date. Only daily runs keep history; other periods skip
// the stage.
func (p *PipelineService) snapshot(run *models.Run) (StageResult, error) {
	period := run.Period
	if !period.KeepsHistory() {
		return StageResult{Stage: models.StageSnapshot, Status: models.RunStatusSkipped}, nil
	}
	if _, err := p.gate(models.StageSnapshot, period, models.ArtifactContributors); err != nil {
		return StageResult{Stage: models.StageSnapshot}, err
	}

	date, err := run.Day()
	if err != nil {
		return StageResult{Stage: models.StageSnapshot}, &models.StageError{Stage: models.StageSnapshot, Err: fmt.Errorf("run date: %w", err)}
	}
	names := []string{
		models.ArtifactPullRequests,
		models.ArtifactIssues,
		models.ArtifactCommits,
		models.ArtifactCombined,
		models.ArtifactScored,
		models.ArtifactContributors,
	}

	total := int64(0)
	for _, name := range names {
		if !p.artifacts.Exists(period, name) {
			continue
		}
		path, size, err := p.artifacts.Snapshot(period, name, date)
		if err != nil {
			return StageResult{Stage: models.StageSnapshot}, &models.StageError{Stage: models.StageSnapshot, Artifact: p.artifacts.Path(period, name), Err: err}
		}
		total += size
		p.log.WithField("path", path).Debug("Snapshot written")
	}

	return StageResult{
		Stage:    models.StageSnapshot,
		Status:   models.RunStatusCompleted,
		Artifact: p.artifacts.HistoryPath(period),
		Bytes:    total,
	}, nil
}

func (p *PipelineService) build(ctx context.Context, period models.Period) (StageResult, error) {
	records, err := p.load(models.StageBuild, period, models.ArtifactContributors)
	if err != nil {
		return StageResult{Stage: models.StageBuild}, err
	}

	data, err := p.builder.Build(ctx, records)
	if err != nil {
		return StageResult{Stage: models.StageBuild}, &models.StageError{Stage: models.StageBuild, Err: err}
	}

	name := p.builder.Artifact()
	size, err := p.artifacts.WriteFile(period, name, data)
	if err != nil {
		return StageResult{Stage: models.StageBuild}, &models.StageError{Stage: models.StageBuild, Artifact: p.artifacts.Path(period, name), Err: err}
	}
	return StageResult{Stage: models.StageBuild, Status: models.RunStatusCompleted, Artifact: p.artifacts.Path(period, name), Bytes: size}, nil
}

// load gates and decodes a contributor artifact
func (p *PipelineService) load(stage models.Stage, period models.Period, name string) ([]models.ContributorRecord, error) {
	if _, err := p.gate(stage, period, name); err != nil {
		return nil, err
	}
	var records []models.ContributorRecord
	if err := p.artifacts.ReadJSON(period, name, &records); err != nil {
		return nil, &models.StageError{Stage: stage, Artifact: p.artifacts.Path(period, name), Err: err}
	}
	return records, nil
}

func (p *PipelineService) saveRun(run *models.Run) {
	if p.runs == nil {
		return
	}
	if err := p.runs.UpdateRun(run); err != nil {
		p.log.WithError(err).WithField("run_id", run.ID).Warn("Failed to update run")
	}
}

func (p *PipelineService) saveStage(stage *models.StageRun) {
	if p.runs == nil {
		return
	}
	if err := p.runs.UpdateStageRun(stage); err != nil {
		p.log.WithError(err).WithField("stage", stage.Stage).Warn("Failed to update stage")
	}
}
