package models

import (
	"errors"
	"fmt"
)

// ContributorRecord is the per-login activity graph produced by the merge
// stage and carried through scoring and summarizing.
type ContributorRecord struct {
	Contributor string   `json:"contributor"`
	AvatarURL   *string  `json:"avatar_url"`
	Score       int      `json:"score"`
	Summary     string   `json:"summary"`
	Activity    Activity `json:"activity"`
}

// Activity groups a contributor's records into code, issues and engagement
type Activity struct {
	Code       CodeActivity       `json:"code"`
	Issues     IssueActivity      `json:"issues"`
	Engagement EngagementActivity `json:"engagement"`
}

type CodeActivity struct {
	TotalCommits int                `json:"total_commits"`
	TotalPRs     int                `json:"total_prs"`
	Commits      []CommitEntry      `json:"commits"`
	PullRequests []PullRequestEntry `json:"pull_requests"`
}

type IssueActivity struct {
	TotalOpened int          `json:"total_opened"`
	Opened      []IssueEntry `json:"opened"`
}

// EngagementActivity holds counters for discussion around the contributor's
// own PRs and issues. The lists are kept for schema compatibility.
type EngagementActivity struct {
	TotalComments int            `json:"total_comments"`
	TotalReviews  int            `json:"total_reviews"`
	Comments      []CommentEntry `json:"comments"`
	Reviews       []ReviewEntry  `json:"reviews"`
}

// NewContributorRecord creates an empty record for login
func NewContributorRecord(login string) *ContributorRecord {
	return &ContributorRecord{
		Contributor: login,
		Activity: Activity{
			Code: CodeActivity{
				Commits:      []CommitEntry{},
				PullRequests: []PullRequestEntry{},
			},
			Issues: IssueActivity{
				Opened: []IssueEntry{},
			},
			Engagement: EngagementActivity{
				Comments: []CommentEntry{},
				Reviews:  []ReviewEntry{},
			},
		},
	}
}

// SetAvatar records avatarURL unless an avatar is already known
func (c *ContributorRecord) SetAvatar(avatarURL string) {
	if c.AvatarURL != nil || avatarURL == "" {
		return
	}
	c.AvatarURL = &avatarURL
}

// AddPullRequest appends a PR entry and counts its reviews
func (c *ContributorRecord) AddPullRequest(pr PullRequestEntry) {
	c.Activity.Code.PullRequests = append(c.Activity.Code.PullRequests, pr)
	c.Activity.Code.TotalPRs++
	c.Activity.Engagement.TotalReviews += len(pr.Reviews)
}

// AddIssue appends an issue entry and counts its comments
func (c *ContributorRecord) AddIssue(issue IssueEntry) {
	c.Activity.Issues.Opened = append(c.Activity.Issues.Opened, issue)
	c.Activity.Issues.TotalOpened++
	c.Activity.Engagement.TotalComments += len(issue.Comments)
}

// AddCommit appends a commit entry
func (c *ContributorRecord) AddCommit(commit CommitEntry) {
	c.Activity.Code.Commits = append(c.Activity.Code.Commits, commit)
	c.Activity.Code.TotalCommits++
}

// Volume is the coarse activity measure used to order merge output
func (c *ContributorRecord) Volume() int {
	return len(c.Activity.Code.Commits) + len(c.Activity.Code.PullRequests)
}

// Validate checks the record: a non-empty login, counters that
// match their backing lists, and non-negative numeric fields.
func (c *ContributorRecord) Validate() error {
	if c.Contributor == "" {
		return errors.New("contributor login is required")
	}
	code := c.Activity.Code
	if code.TotalCommits != len(code.Commits) {
		return fmt.Errorf("contributor %s: total_commits %d does not match %d commits", c.Contributor, code.TotalCommits, len(code.Commits))
	}
	if code.TotalPRs != len(code.PullRequests) {
		return fmt.Errorf("contributor %s: total_prs %d does not match %d pull requests", c.Contributor, code.TotalPRs, len(code.PullRequests))
	}
	if c.Activity.Issues.TotalOpened != len(c.Activity.Issues.Opened) {
		return fmt.Errorf("contributor %s: total_opened %d does not match %d issues", c.Contributor, c.Activity.Issues.TotalOpened, len(c.Activity.Issues.Opened))
	}
	if c.Score < 0 {
		return fmt.Errorf("contributor %s: score cannot be negative", c.Contributor)
	}
	if c.Activity.Engagement.TotalComments < 0 || c.Activity.Engagement.TotalReviews < 0 {
		return fmt.Errorf("contributor %s: engagement counters cannot be negative", c.Contributor)
	}
	return nil
}
