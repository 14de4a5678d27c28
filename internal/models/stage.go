package models

import "fmt"

// Stage is one step of the pipeline
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageMerge     Stage = "merge"
	StageScore     Stage = "score"
	StageSummarize Stage = "summarize"
	StageSnapshot  Stage = "snapshot"
	StageBuild     Stage = "build"
)

// Stages lists every stage in execution order
var Stages = []Stage{StageFetch, StageMerge, StageScore, StageSummarize, StageSnapshot, StageBuild}

// Artifact names within a period directory
const (
	ArtifactPullRequests = "prs.json"
	ArtifactIssues       = "issues.json"
	ArtifactCommits      = "commits.json"
	ArtifactCombined     = "combined.json"
	ArtifactScored       = "scored.json"
	ArtifactContributors = "contributors.json"
	ArtifactWorkbook     = "contributors.xlsx"
)

// ParseStage validates a stage name
func ParseStage(s string) (Stage, error) {
	for _, st := range Stages {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStage, s)
}

// Index returns the stage position in Stages, or -1
func (s Stage) Index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}
