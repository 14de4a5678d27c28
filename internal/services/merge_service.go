package services

import (
	"sort"

	"github.com/alimgiray/contribrank/internal/models"
)

// MergeStats counts what the merger consumed and what it dropped
type MergeStats struct {
	PullRequests        int `json:"pull_requests"`
	Issues              int `json:"issues"`
	Commits             int `json:"commits"`
	SkippedPullRequests int `json:"skipped_pull_requests"`
	SkippedIssues       int `json:"skipped_issues"`
	SkippedCommits      int `json:"skipped_commits"`
	Contributors        int `json:"contributors"`
}

// MergeService folds raw activity streams into contributor records
type MergeService struct{}

func NewMergeService() *MergeService {
	return &MergeService{}
}

// contributorSet owns the in-progress records of a single merge call.
// Records are kept in first-seen order so the final sort has a stable base.
type contributorSet struct {
	byLogin map[string]*models.ContributorRecord
	order   []*models.ContributorRecord
}

func newContributorSet() *contributorSet {
	return &contributorSet{byLogin: make(map[string]*models.ContributorRecord)}
}

func (s *contributorSet) get(login string) *models.ContributorRecord {
	if rec, ok := s.byLogin[login]; ok {
		return rec
	}
	rec := models.NewContributorRecord(login)
	s.byLogin[login] = rec
	s.order = append(s.order, rec)
	return rec
}

// Merge groups PRs, issues and commits by author login. PRs are processed
// first, then issues, then commits; the first non-empty avatar seen wins.
// Records without an author are dropped. The result is ordered by
// commits+PRs descending, ties in first-seen order. Merge does no I/O;
// callers log the returned stats.
func (s *MergeService) Merge(prs []models.RawPullRequest, issues []models.RawIssue, commits []models.RawCommit) ([]models.ContributorRecord, MergeStats) {
	set := newContributorSet()
	stats := MergeStats{}

	for i := range prs {
		pr := &prs[i]
		login := pr.AuthorLogin()
		if login == "" {
			stats.SkippedPullRequests++
			continue
		}
		rec := set.get(login)
		rec.SetAvatar(pr.Author.AvatarURL)
		rec.AddPullRequest(pr.Entry())
		stats.PullRequests++
	}

	for i := range issues {
		issue := &issues[i]
		login := issue.AuthorLogin()
		if login == "" {
			stats.SkippedIssues++
			continue
		}
		rec := set.get(login)
		rec.SetAvatar(issue.Author.AvatarURL)
		rec.AddIssue(issue.Entry())
		stats.Issues++
	}

	for i := range commits {
		commit := &commits[i]
		login := commit.AuthorLogin()
		if login == "" {
			stats.SkippedCommits++
			continue
		}
		set.get(login).AddCommit(commit.Entry())
		stats.Commits++
	}

	sort.SliceStable(set.order, func(i, j int) bool {
		return set.order[i].Volume() > set.order[j].Volume()
	})

	out := make([]models.ContributorRecord, len(set.order))
	for i, rec := range set.order {
		out[i] = *rec
	}
	stats.Contributors = len(out)
	return out, stats
}
