package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/alimgiray/contribrank/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWorkbookBuilder(t *testing.T) {
	builder := NewWorkbookBuilder()
	assert.Equal(t, models.ArtifactWorkbook, builder.Artifact())

	alice := commitsOnly("alice", 3)
	alice.Score = 6
	alice.Summary = "alice authored 3 commits."
	bob := commitsOnly("bob", 1)
	bob.Score = 2

	data, err := builder.Build(context.Background(), []models.ContributorRecord{alice, bob})
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(contributorsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, workbookHeaders, rows[0])
	assert.Equal(t, []string{"1", "alice", "6", "3", "0", "0", "0", "0", "alice authored 3 commits."}, rows[1])
	assert.Equal(t, "bob", rows[2][1])
}

func TestWorkbookBuilderHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWorkbookBuilder().Build(ctx, []models.ContributorRecord{commitsOnly("alice", 1)})
	assert.ErrorIs(t, err, context.Canceled)
}
