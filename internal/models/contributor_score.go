package models

import (
	"errors"
	"time"
)

// ContributorScore is one contributor's ranked score from a run, kept as
// score history
type ContributorScore struct {
	ID           int64     `json:"id" db:"id"`
	RunID        string    `json:"run_id" db:"run_id"`
	Period       Period    `json:"period" db:"period"`
	RunDate      string    `json:"run_date" db:"run_date"`
	Contributor  string    `json:"contributor" db:"contributor"`
	Rank         int       `json:"rank" db:"rank"`
	Score        int       `json:"score" db:"score"`
	Commits      int       `json:"commits" db:"commits"`
	PullRequests int       `json:"pull_requests" db:"pull_requests"`
	IssuesOpened int       `json:"issues_opened" db:"issues_opened"`
	Comments     int       `json:"comments" db:"comments"`
	Reviews      int       `json:"reviews" db:"reviews"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// NewContributorScore builds a history row from a ranked record
func NewContributorScore(run *Run, rank int, rec *ContributorRecord) *ContributorScore {
	return &ContributorScore{
		RunID:        run.ID,
		Period:       run.Period,
		RunDate:      run.RunDate,
		Contributor:  rec.Contributor,
		Rank:         rank,
		Score:        rec.Score,
		Commits:      rec.Activity.Code.TotalCommits,
		PullRequests: rec.Activity.Code.TotalPRs,
		IssuesOpened: rec.Activity.Issues.TotalOpened,
		Comments:     rec.Activity.Engagement.TotalComments,
		Reviews:      rec.Activity.Engagement.TotalReviews,
		CreatedAt:    time.Now(),
	}
}

// Validate validates the ContributorScore fields
func (cs *ContributorScore) Validate() error {
	if cs.RunID == "" {
		return errors.New("run ID is required")
	}
	if cs.Contributor == "" {
		return errors.New("contributor is required")
	}
	if cs.Rank < 1 {
		return errors.New("rank must be positive")
	}
	if cs.Score < 0 {
		return errors.New("score cannot be negative")
	}
	return nil
}
