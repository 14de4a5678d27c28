package repositories

import (
	"testing"
	"time"

	"github.com/alimgiray/contribrank/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreHistory(t *testing.T) {
	db := openTestDB(t)
	runs := NewRunRepository(db)
	history := NewScoreHistoryRepository(db)

	first := models.NewRun(models.PeriodDaily, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	second := models.NewRun(models.PeriodDaily, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, runs.CreateRun(first))
	require.NoError(t, runs.CreateRun(second))

	alice := models.NewContributorRecord("alice")
	alice.Score = 15
	bob := models.NewContributorRecord("bob")
	bob.Score = 10

	require.NoError(t, history.InsertBatch([]*models.ContributorScore{
		models.NewContributorScore(first, 1, alice),
		models.NewContributorScore(first, 2, bob),
	}))

	alice.Score = 4
	later := models.NewContributorScore(second, 2, alice)
	later.CreatedAt = time.Now().Add(time.Minute)
	require.NoError(t, history.InsertBatch([]*models.ContributorScore{later}))
	assert.NotZero(t, later.ID)

	got, err := history.GetByContributor("alice", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 4, got[0].Score)
	assert.Equal(t, "2024-05-02", got[0].RunDate)
	assert.Equal(t, 15, got[1].Score)

	ranked, err := history.GetByRun(first.ID)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "alice", ranked[0].Contributor)
	assert.Equal(t, "bob", ranked[1].Contributor)
}

func TestScoreHistoryRejectsInvalidRows(t *testing.T) {
	history := NewScoreHistoryRepository(openTestDB(t))

	err := history.InsertBatch([]*models.ContributorScore{{RunID: "r", Contributor: "", Rank: 1}})
	assert.Error(t, err)

	assert.NoError(t, history.InsertBatch(nil))
}
