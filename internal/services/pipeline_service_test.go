package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alimgiray/contribrank/internal/models"
	"github.com/alimgiray/contribrank/internal/repositories"
	"github.com/alimgiray/contribrank/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipelineFixture struct {
	pipeline  *PipelineService
	artifacts *repositories.ArtifactRepository
	runs      *repositories.RunRepository
	history   *repositories.ScoreHistoryRepository
}

func newPipelineFixture(t *testing.T, summarizer Summarizer) *pipelineFixture {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "pipeline.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	if summarizer == nil {
		summarizer = NewActivitySummarizer()
	}

	f := &pipelineFixture{
		artifacts: repositories.NewArtifactRepository(t.TempDir()),
		runs:      repositories.NewRunRepository(db),
		history:   repositories.NewScoreHistoryRepository(db),
	}
	f.pipeline = NewPipelineService(f.artifacts, f.runs, f.history, newTestScorer(t), NewSummaryService(summarizer, 2), NewWorkbookBuilder())
	f.pipeline.SetClock(func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) })
	return f
}

func (f *pipelineFixture) seed(t *testing.T, period models.Period) {
	t.Helper()

	prs := []models.RawPullRequest{rawPR(1, "alice"), rawPR(2, "alice")}
	prs[0].Body = body(120)
	prs[1].Body = body(120)
	issues := []models.RawIssue{rawIssue(3, "carol", 3)}
	issues[0].Labels = models.List[models.RawLabel]{{Name: "bug"}}
	commits := []models.RawCommit{}
	for i := 0; i < 5; i++ {
		commits = append(commits, rawCommit("sha", "bob"))
	}

	_, err := f.artifacts.WriteJSON(period, models.ArtifactPullRequests, prs)
	require.NoError(t, err)
	_, err = f.artifacts.WriteJSON(period, models.ArtifactIssues, issues)
	require.NoError(t, err)
	_, err = f.artifacts.WriteJSON(period, models.ArtifactCommits, commits)
	require.NoError(t, err)
}

func TestPipelineFullRun(t *testing.T) {
	f := newPipelineFixture(t, nil)
	f.seed(t, models.PeriodDaily)

	run, results, err := f.pipeline.Run(context.Background(), RunOptions{Period: models.PeriodDaily})
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.Equal(t, "2024-06-01", run.RunDate)
	require.Len(t, results, len(models.Stages))
	for _, r := range results {
		assert.Equal(t, models.RunStatusCompleted, r.Status, r.Stage)
		assert.Greater(t, r.Bytes, int64(0), r.Stage)
	}

	var scored []models.ContributorRecord
	require.NoError(t, f.artifacts.ReadJSON(models.PeriodDaily, models.ArtifactScored, &scored))
	assert.Equal(t, []string{"alice", "carol", "bob"}, logins(scored))
	assert.Equal(t, []int{15, 11, 10}, []int{scored[0].Score, scored[1].Score, scored[2].Score})

	var final []models.ContributorRecord
	require.NoError(t, f.artifacts.ReadJSON(models.PeriodDaily, models.ArtifactContributors, &final))
	for _, r := range final {
		assert.NotEmpty(t, r.Summary)
	}
	assert.True(t, f.artifacts.Exists(models.PeriodDaily, models.ArtifactWorkbook))

	history, err := f.artifacts.ListHistory(models.PeriodDaily)
	require.NoError(t, err)
	assert.Contains(t, history, "contributors_2024_06_01.json")
	assert.Contains(t, history, "prs_2024_06_01.json")
	assert.Len(t, history, 6)

	stages, err := f.runs.GetStageRuns(run.ID)
	require.NoError(t, err)
	assert.Len(t, stages, len(models.Stages))

	scores, err := f.history.GetByRun(run.ID)
	require.NoError(t, err)
	require.Len(t, scores, 3)
	assert.Equal(t, "alice", scores[0].Contributor)
	assert.Equal(t, 1, scores[0].Rank)
}

func TestPipelineDailyHistoryAppends(t *testing.T) {
	f := newPipelineFixture(t, nil)
	f.seed(t, models.PeriodDaily)

	_, _, err := f.pipeline.Run(context.Background(), RunOptions{Period: models.PeriodDaily})
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(f.artifacts.HistoryPath(models.PeriodDaily), "scored_2024_06_01.json"))
	require.NoError(t, err)

	_, err = f.artifacts.WriteJSON(models.PeriodDaily, models.ArtifactCommits, []models.RawCommit{rawCommit("x", "dave")})
	require.NoError(t, err)
	_, _, err = f.pipeline.Run(context.Background(), RunOptions{Period: models.PeriodDaily})
	require.NoError(t, err)

	history, err := f.artifacts.ListHistory(models.PeriodDaily)
	require.NoError(t, err)
	assert.Contains(t, history, "scored_2024_06_01_2.json")
	assert.Len(t, history, 12)

	again, err := os.ReadFile(filepath.Join(f.artifacts.HistoryPath(models.PeriodDaily), "scored_2024_06_01.json"))
	require.NoError(t, err)
	assert.Equal(t, first, again, "earlier snapshots are never rewritten")
}

func TestPipelineSnapshotUsesRunDate(t *testing.T) {
	f := newPipelineFixture(t, nil)
	f.seed(t, models.PeriodDaily)

	// every clock read lands an hour later, so the run starts before
	// midnight and its later stages run on the next day
	now := time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC)
	f.pipeline.SetClock(func() time.Time {
		current := now
		now = now.Add(time.Hour)
		return current
	})

	run, _, err := f.pipeline.Run(context.Background(), RunOptions{Period: models.PeriodDaily})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", run.RunDate)

	history, err := f.artifacts.ListHistory(models.PeriodDaily)
	require.NoError(t, err)
	assert.Contains(t, history, "contributors_2024_06_01.json")
	for _, name := range history {
		assert.NotContains(t, name, "2024_06_02")
	}
}

func TestPipelineStageBytes(t *testing.T) {
	f := newPipelineFixture(t, nil)
	f.seed(t, models.PeriodDaily)

	prs, err := f.artifacts.Verify(models.PeriodDaily, models.ArtifactPullRequests)
	require.NoError(t, err)
	issues, err := f.artifacts.Verify(models.PeriodDaily, models.ArtifactIssues)
	require.NoError(t, err)

	_, results, err := f.pipeline.Run(context.Background(), RunOptions{Period: models.PeriodDaily})
	require.NoError(t, err)
	require.Len(t, results, len(models.Stages))

	assert.Equal(t, models.StageFetch, results[0].Stage)
	assert.Equal(t, prs+issues, results[0].Bytes)

	snapshot := results[models.StageSnapshot.Index()]
	assert.Equal(t, models.RunStatusCompleted, snapshot.Status)
	assert.Positive(t, snapshot.Bytes)
}

func TestPipelineSkipsSnapshotForWeekly(t *testing.T) {
	f := newPipelineFixture(t, nil)
	f.seed(t, models.PeriodWeekly)

	_, results, err := f.pipeline.Run(context.Background(), RunOptions{Period: models.PeriodWeekly})
	require.NoError(t, err)

	for _, r := range results {
		if r.Stage == models.StageSnapshot {
			assert.Equal(t, models.RunStatusSkipped, r.Status)
		}
	}
	history, err := f.artifacts.ListHistory(models.PeriodWeekly)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestPipelineGateFailures(t *testing.T) {
	testCases := []struct {
		name     string
		setup    func(t *testing.T, f *pipelineFixture)
		opts     RunOptions
		stage    models.Stage
		sentinel error
	}{
		{
			name:     "fetch without inputs",
			setup:    func(t *testing.T, f *pipelineFixture) {},
			opts:     RunOptions{Period: models.PeriodDaily},
			stage:    models.StageFetch,
			sentinel: models.ErrArtifactMissing,
		},
		{
			name: "empty issues file",
			setup: func(t *testing.T, f *pipelineFixture) {
				f.seed(t, models.PeriodDaily)
				require.NoError(t, os.WriteFile(f.artifacts.Path(models.PeriodDaily, models.ArtifactIssues), nil, 0o644))
			},
			opts:     RunOptions{Period: models.PeriodDaily},
			stage:    models.StageFetch,
			sentinel: models.ErrArtifactEmpty,
		},
		{
			name:     "resume at score without combined",
			setup:    func(t *testing.T, f *pipelineFixture) { f.seed(t, models.PeriodDaily) },
			opts:     RunOptions{Period: models.PeriodDaily, From: models.StageScore},
			stage:    models.StageScore,
			sentinel: models.ErrArtifactMissing,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newPipelineFixture(t, nil)
			tc.setup(t, f)

			run, _, err := f.pipeline.Run(context.Background(), tc.opts)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.sentinel)

			var stageErr *models.StageError
			require.True(t, errors.As(err, &stageErr))
			assert.Equal(t, tc.stage, stageErr.Stage)
			assert.NotEmpty(t, stageErr.Artifact)

			require.NotNil(t, run)
			stored, err := f.runs.GetRun(run.ID)
			require.NoError(t, err)
			assert.Equal(t, models.RunStatusFailed, stored.Status)

			assert.False(t, f.artifacts.Exists(models.PeriodDaily, models.ArtifactScored))
		})
	}
}

func TestPipelineResumeFromStage(t *testing.T) {
	f := newPipelineFixture(t, nil)
	f.seed(t, models.PeriodMonthly)

	_, _, err := f.pipeline.Run(context.Background(), RunOptions{Period: models.PeriodMonthly, To: models.StageMerge})
	require.NoError(t, err)
	assert.True(t, f.artifacts.Exists(models.PeriodMonthly, models.ArtifactCombined))
	assert.False(t, f.artifacts.Exists(models.PeriodMonthly, models.ArtifactScored))

	// inputs are no longer needed once combined.json is committed
	require.NoError(t, os.Remove(f.artifacts.Path(models.PeriodMonthly, models.ArtifactPullRequests)))

	_, results, err := f.pipeline.Run(context.Background(), RunOptions{Period: models.PeriodMonthly, From: models.StageScore})
	require.NoError(t, err)
	assert.Equal(t, models.StageScore, results[0].Stage)
	assert.True(t, f.artifacts.Exists(models.PeriodMonthly, models.ArtifactWorkbook))
}

func TestPipelineSummarizerFailureDoesNotAbort(t *testing.T) {
	f := newPipelineFixture(t, SummarizerFunc(func(ctx context.Context, rec models.ContributorRecord) (string, error) {
		return "", errors.New("quota exceeded")
	}))
	f.seed(t, models.PeriodWeekly)

	_, _, err := f.pipeline.Run(context.Background(), RunOptions{Period: models.PeriodWeekly})
	require.NoError(t, err)

	var final []models.ContributorRecord
	require.NoError(t, f.artifacts.ReadJSON(models.PeriodWeekly, models.ArtifactContributors, &final))
	require.NotEmpty(t, final)
	for _, r := range final {
		assert.Equal(t, "Summary unavailable: quota exceeded", r.Summary)
		assert.Greater(t, r.Score, 0)
	}
}

func TestPipelineRunStage(t *testing.T) {
	f := newPipelineFixture(t, nil)
	f.seed(t, models.PeriodDaily)

	result, err := f.pipeline.RunStage(context.Background(), models.PeriodDaily, models.StageMerge)
	require.NoError(t, err)
	assert.Equal(t, f.artifacts.Path(models.PeriodDaily, models.ArtifactCombined), result.Artifact)

	var combined []models.ContributorRecord
	require.NoError(t, f.artifacts.ReadJSON(models.PeriodDaily, models.ArtifactCombined, &combined))
	for _, r := range combined {
		assert.Zero(t, r.Score)
		assert.Empty(t, r.Summary)
	}
}

func TestPipelineInvalidOptions(t *testing.T) {
	f := newPipelineFixture(t, nil)

	_, _, err := f.pipeline.Run(context.Background(), RunOptions{Period: "yearly"})
	assert.ErrorIs(t, err, models.ErrInvalidPeriod)

	_, _, err = f.pipeline.Run(context.Background(), RunOptions{Period: models.PeriodDaily, From: "publish"})
	assert.ErrorIs(t, err, models.ErrInvalidStage)

	_, _, err = f.pipeline.Run(context.Background(), RunOptions{Period: models.PeriodDaily, From: models.StageBuild, To: models.StageMerge})
	assert.ErrorIs(t, err, models.ErrInvalidStage)
}

func TestPipelineWithoutDatabase(t *testing.T) {
	artifacts := repositories.NewArtifactRepository(t.TempDir())
	pipeline := NewPipelineService(artifacts, nil, nil, newTestScorer(t), NewSummaryService(NewActivitySummarizer(), 1), NewWorkbookBuilder())
	f := &pipelineFixture{pipeline: pipeline, artifacts: artifacts}
	f.seed(t, models.PeriodWeekly)

	run, _, err := pipeline.Run(context.Background(), RunOptions{Period: models.PeriodWeekly})
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, run.Status)
}
