package repositories

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alimgiray/contribrank/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactVerify(t *testing.T) {
	repo := NewArtifactRepository(t.TempDir())

	_, err := repo.Verify(models.PeriodDaily, models.ArtifactCombined)
	assert.ErrorIs(t, err, models.ErrArtifactMissing)

	require.NoError(t, os.MkdirAll(filepath.Dir(repo.Path(models.PeriodDaily, models.ArtifactCombined)), 0o755))
	require.NoError(t, os.WriteFile(repo.Path(models.PeriodDaily, models.ArtifactCombined), nil, 0o644))

	_, err = repo.Verify(models.PeriodDaily, models.ArtifactCombined)
	assert.ErrorIs(t, err, models.ErrArtifactEmpty)
	assert.False(t, repo.Exists(models.PeriodDaily, models.ArtifactCombined))
}

func TestArtifactWriteAndRead(t *testing.T) {
	repo := NewArtifactRepository(t.TempDir())

	records := []*models.ContributorRecord{models.NewContributorRecord("alice")}
	size, err := repo.WriteJSON(models.PeriodWeekly, models.ArtifactCombined, records)
	require.NoError(t, err)
	assert.Greater(t, size, int64(0))
	assert.True(t, repo.Exists(models.PeriodWeekly, models.ArtifactCombined))

	var got []models.ContributorRecord
	require.NoError(t, repo.ReadJSON(models.PeriodWeekly, models.ArtifactCombined, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].Contributor)

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Join(repo.Root(), "weekly"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestArtifactWriteReplaces(t *testing.T) {
	repo := NewArtifactRepository(t.TempDir())

	_, err := repo.WriteJSON(models.PeriodDaily, models.ArtifactScored, []string{"a", "b", "c"})
	require.NoError(t, err)
	_, err = repo.WriteJSON(models.PeriodDaily, models.ArtifactScored, []string{"z"})
	require.NoError(t, err)

	var got []string
	require.NoError(t, repo.ReadJSON(models.PeriodDaily, models.ArtifactScored, &got))
	assert.Equal(t, []string{"z"}, got)
}

func TestArtifactReadInvalidJSON(t *testing.T) {
	repo := NewArtifactRepository(t.TempDir())

	_, err := repo.WriteFile(models.PeriodDaily, models.ArtifactPullRequests, []byte("{not json"))
	require.NoError(t, err)

	var got []models.RawPullRequest
	err = repo.ReadJSON(models.PeriodDaily, models.ArtifactPullRequests, &got)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrArtifactMissing)
}

func TestArtifactSnapshotNeverOverwrites(t *testing.T) {
	repo := NewArtifactRepository(t.TempDir())
	date := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

	_, err := repo.WriteJSON(models.PeriodDaily, models.ArtifactContributors, []string{"first"})
	require.NoError(t, err)
	first, size, err := repo.Snapshot(models.PeriodDaily, models.ArtifactContributors, date)
	require.NoError(t, err)
	assert.Equal(t, "contributors_2024_03_09.json", filepath.Base(first))
	current, err := repo.Verify(models.PeriodDaily, models.ArtifactContributors)
	require.NoError(t, err)
	assert.Equal(t, current, size)

	_, err = repo.WriteJSON(models.PeriodDaily, models.ArtifactContributors, []string{"second"})
	require.NoError(t, err)
	second, _, err := repo.Snapshot(models.PeriodDaily, models.ArtifactContributors, date)
	require.NoError(t, err)
	assert.Equal(t, "contributors_2024_03_09_2.json", filepath.Base(second))

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first")

	names, err := repo.ListHistory(models.PeriodDaily)
	require.NoError(t, err)
	assert.Equal(t, []string{"contributors_2024_03_09.json", "contributors_2024_03_09_2.json"}, names)
}

func TestArtifactSnapshotMissingSource(t *testing.T) {
	repo := NewArtifactRepository(t.TempDir())

	_, _, err := repo.Snapshot(models.PeriodDaily, models.ArtifactCombined, time.Now())
	assert.ErrorIs(t, err, models.ErrArtifactMissing)

	names, err := repo.ListHistory(models.PeriodDaily)
	require.NoError(t, err)
	assert.Empty(t, names)
}
