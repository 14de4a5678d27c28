package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alimgiray/contribrank/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATA_DIR", "/tmp/contribrank-data")
	t.Setenv("SUMMARY_CONCURRENCY", "8")
	t.Setenv("READ_TIMEOUT", "not-a-number")

	require.NoError(t, Load())

	assert.Equal(t, "/tmp/contribrank-data", AppConfig.Storage.DataDir)
	assert.Equal(t, "./contribrank.db", AppConfig.Storage.DBPath)
	assert.Equal(t, 8, AppConfig.Pipeline.SummaryConcurrency)
	assert.Equal(t, 15, AppConfig.Server.ReadTimeout, "invalid integers fall back to the default")
	assert.Equal(t, "8080", AppConfig.Server.Port)
}

func TestLoadScoringDefaults(t *testing.T) {
	cfg, err := LoadScoring("")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultScoringConfig(), cfg)
}

func TestParseScoringOverlay(t *testing.T) {
	data := []byte(`
pull_request:
  base: 10
volume:
  commit: 2
`)
	cfg, err := ParseScoring(data)
	require.NoError(t, err)

	assert.Equal(t, 10.0, cfg.PullRequest.Base)
	assert.Equal(t, 2.0, cfg.Volume.Commit)
	// untouched fields keep their defaults
	assert.Equal(t, 0.8, cfg.PullRequest.SmallMultiplier)
	assert.Equal(t, 2.0, cfg.Volume.PR)
	assert.Equal(t, 1.3, cfg.Issue.BugMultiplier)
}

func TestParseScoringRejectsNegative(t *testing.T) {
	_, err := ParseScoring([]byte("issue:\n  bug_multiplier: -1\n"))
	assert.ErrorIs(t, err, models.ErrInvalidConfig)
}

func TestParseScoringRejectsNonFinite(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"nan weight", "commit:\n  points: .nan\n"},
		{"infinite weight", "volume:\n  pr: .inf\n"},
		{"negative infinity", "issue:\n  base: -.inf\n"},
		{"infinite divisor", "pull_request:\n  body_length_divisor: .inf\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScoring([]byte(tt.yaml))
			assert.ErrorIs(t, err, models.ErrInvalidConfig)
		})
	}
}

func TestLoadScoringFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scoring.yaml")
	require.NoError(t, os.WriteFile(path, []byte("commit:\n  points: 3\n"), 0o644))

	cfg, err := LoadScoring(path)
	require.NoError(t, err)
	assert.Equal(t, 3.0, cfg.Commit.Points)

	_, err = LoadScoring(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
