package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/alimgiray/contribrank/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeDump(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{
		"pulls.json": `[{
			"number": 1, "title": "Add parser", "body": "Adds the parser", "state": "closed",
			"merged_at": "2024-05-02T10:00:00Z", "user": {"login": "alice"},
			"url": "https://api.github.com/repos/o/r/pulls/1",
			"issue_url": "https://api.github.com/repos/o/r/issues/1"
		}]`,
		"issues.json": `[{
			"number": 2, "title": "Crash on start", "state": "open", "user": {"login": "carol"},
			"url": "https://api.github.com/repos/o/r/issues/2", "labels": [{"name": "bug"}]
		}]`,
		"issue_comments.json": `[
			{"user": {"login": "bob"}, "body": "same here", "issue_url": "https://api.github.com/repos/o/r/issues/2"}
		]`,
		"commits.json": `[
			{"sha": "abc", "author": {"login": "bob"}, "commit": {"message": "fix", "author": {"name": "Bob", "date": "2024-05-01T00:00:00Z"}}}
		]`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func TestCLIEndToEnd(t *testing.T) {
	logger.Init("error")
	tmp := t.TempDir()
	dumpDir := filepath.Join(tmp, "dump")
	require.NoError(t, os.MkdirAll(dumpDir, 0o755))
	writeDump(t, dumpDir)

	common := []string{"--data-dir", filepath.Join(tmp, "data"), "--db", filepath.Join(tmp, "cr.db")}

	out, err := execute(t, append([]string{"import", dumpDir, "--period", "weekly"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 pull requests, 1 issues, 1 commits into weekly")

	out, err = execute(t, append([]string{"run", "--period", "weekly"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "completed")
	assert.FileExists(t, filepath.Join(tmp, "data", "weekly", "contributors.xlsx"))

	out, err = execute(t, append([]string{"explain", "carol", "--period", "weekly", "--json"}, common...)...)
	require.NoError(t, err)
	var explained map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &explained))
	assert.Equal(t, "carol", explained["contributor"])

	out, err = execute(t, append([]string{"runs", "--period", "weekly"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "completed")

	_, err = execute(t, append([]string{"score", "--period", "yearly"}, common...)...)
	assert.ErrorContains(t, err, "invalid period")
}
