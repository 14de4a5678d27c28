package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alimgiray/contribrank/internal/models"
	"github.com/alimgiray/contribrank/internal/repositories"
	"github.com/alimgiray/contribrank/pkg/logger"
	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
)

// File names of a REST API dump directory
const (
	dumpPullRequests  = "pulls.json"
	dumpPullFiles     = "pull_files.json"
	dumpReviews       = "reviews.json"
	dumpIssues        = "issues.json"
	dumpIssueComments = "issue_comments.json"
	dumpCommits       = "commits.json"
)

// RESTDump holds records as returned by the GitHub REST API list endpoints.
// Reviews are matched to pull requests by pull_request_url, comments by
// issue_url; PullFiles is keyed by pull request number.
type RESTDump struct {
	PullRequests  []*github.PullRequest
	PullFiles     map[int][]*github.CommitFile
	Reviews       []*github.PullRequestReview
	Issues        []*github.Issue
	IssueComments []*github.IssueComment
	Commits       []*github.RepositoryCommit
}

// ImportResult counts the raw records written by an import
type ImportResult struct {
	PullRequests int `json:"pull_requests"`
	Issues       int `json:"issues"`
	Commits      int `json:"commits"`
}

// RESTImportService turns GitHub REST API dumps into the raw input artifacts
// of a period
type RESTImportService struct {
	artifacts *repositories.ArtifactRepository
	log       *logrus.Entry
}

func NewRESTImportService(artifacts *repositories.ArtifactRepository) *RESTImportService {
	return &RESTImportService{
		artifacts: artifacts,
		log:       logger.Component("import"),
	}
}

// LoadDump reads a dump directory. pulls.json and issues.json are required,
// the other files are optional.
func (s *RESTImportService) LoadDump(dir string) (*RESTDump, error) {
	dump := &RESTDump{}

	files := []struct {
		name     string
		target   interface{}
		required bool
	}{
		{dumpPullRequests, &dump.PullRequests, true},
		{dumpPullFiles, &dump.PullFiles, false},
		{dumpReviews, &dump.Reviews, false},
		{dumpIssues, &dump.Issues, true},
		{dumpIssueComments, &dump.IssueComments, false},
		{dumpCommits, &dump.Commits, false},
	}

	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(dir, f.name))
		if errors.Is(err, os.ErrNotExist) && !f.required {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.name, err)
		}
		if err := json.Unmarshal(data, f.target); err != nil {
			return nil, fmt.Errorf("decode %s: %w", f.name, err)
		}
	}
	return dump, nil
}

// Import converts the dump and writes prs.json, issues.json and commits.json
// for period. Records last updated before since are dropped unless since is
// zero.
func (s *RESTImportService) Import(period models.Period, dump *RESTDump, since time.Time) (*ImportResult, error) {
	prs, issues, commits := s.Convert(dump, since)

	if _, err := s.artifacts.WriteJSON(period, models.ArtifactPullRequests, prs); err != nil {
		return nil, err
	}
	if _, err := s.artifacts.WriteJSON(period, models.ArtifactIssues, issues); err != nil {
		return nil, err
	}
	if _, err := s.artifacts.WriteJSON(period, models.ArtifactCommits, commits); err != nil {
		return nil, err
	}

	result := &ImportResult{PullRequests: len(prs), Issues: len(issues), Commits: len(commits)}
	s.log.WithFields(logrus.Fields{
		"period":        period,
		"pull_requests": result.PullRequests,
		"issues":        result.Issues,
		"commits":       result.Commits,
	}).Info("Imported REST dump")
	return result, nil
}

// Convert maps REST records onto raw records
func (s *RESTImportService) Convert(dump *RESTDump, since time.Time) ([]models.RawPullRequest, []models.RawIssue, []models.RawCommit) {
	reviewsByPR := map[string][]models.RawReview{}
	for _, r := range dump.Reviews {
		reviewsByPR[r.GetPullRequestURL()] = append(reviewsByPR[r.GetPullRequestURL()], models.RawReview{
			Author:    convertUser(r.User),
			State:     r.GetState(),
			Body:      r.GetBody(),
			CreatedAt: formatTimestamp(r.SubmittedAt),
		})
	}

	commentsByIssue := map[string][]models.RawComment{}
	for _, c := range dump.IssueComments {
		commentsByIssue[c.GetIssueURL()] = append(commentsByIssue[c.GetIssueURL()], models.RawComment{
			Author:    convertUser(c.User),
			Body:      c.GetBody(),
			Reactions: models.Count(c.GetReactions().GetTotalCount()),
			CreatedAt: formatTimestamp(c.CreatedAt),
		})
	}

	prs := make([]models.RawPullRequest, 0, len(dump.PullRequests))
	for _, pr := range dump.PullRequests {
		if !updatedSince(pr.UpdatedAt, since) {
			continue
		}

		files := make(models.List[models.RawFile], 0, len(dump.PullFiles[pr.GetNumber()]))
		for _, f := range dump.PullFiles[pr.GetNumber()] {
			files = append(files, models.RawFile{Path: f.GetFilename(), Additions: f.GetAdditions(), Deletions: f.GetDeletions()})
		}

		prs = append(prs, models.RawPullRequest{
			Number:    pr.GetNumber(),
			Title:     pr.GetTitle(),
			Body:      pr.GetBody(),
			State:     pr.GetState(),
			Merged:    pr.GetMerged() || pr.MergedAt != nil,
			Draft:     pr.GetDraft(),
			CreatedAt: formatTimestamp(pr.CreatedAt),
			UpdatedAt: formatTimestamp(pr.UpdatedAt),
			Author:    convertUser(pr.User),
			MergedBy:  convertUser(pr.MergedBy),
			Commits:   models.Count(pr.GetCommits()),
			Files:     files,
			Reviews:   reviewsByPR[pr.GetURL()],
			Comments:  commentsByIssue[pr.GetIssueURL()],
			Labels:    convertLabels(pr.Labels),
		})
	}

	issues := make([]models.RawIssue, 0, len(dump.Issues))
	for _, issue := range dump.Issues {
		// the issues endpoint also lists pull requests
		if issue.IsPullRequest() || !updatedSince(issue.UpdatedAt, since) {
			continue
		}
		issues = append(issues, models.RawIssue{
			Number:    issue.GetNumber(),
			Title:     issue.GetTitle(),
			Body:      issue.GetBody(),
			State:     issue.GetState(),
			CreatedAt: formatTimestamp(issue.CreatedAt),
			UpdatedAt: formatTimestamp(issue.UpdatedAt),
			ClosedAt:  formatTimestamp(issue.ClosedAt),
			Author:    convertUser(issue.User),
			Labels:    convertLabels(issue.Labels),
			Comments:  commentsByIssue[issue.GetURL()],
		})
	}

	commits := make([]models.RawCommit, 0, len(dump.Commits))
	for _, c := range dump.Commits {
		gitAuthor := c.GetCommit().GetAuthor()
		var date *github.Timestamp
		if gitAuthor != nil {
			date = gitAuthor.Date
		}
		if !updatedSince(date, since) {
			continue
		}

		raw := models.RawCommit{
			SHA:          c.GetSHA(),
			Message:      c.GetCommit().GetMessage(),
			CreatedAt:    formatTimestamp(date),
			Additions:    c.GetStats().GetAdditions(),
			Deletions:    c.GetStats().GetDeletions(),
			ChangedFiles: len(c.Files),
		}
		if c.Author != nil || gitAuthor != nil {
			raw.Author = &models.RawCommitAuthor{
				Login: c.GetAuthor().GetLogin(),
				Name:  gitAuthor.GetName(),
				Email: gitAuthor.GetEmail(),
			}
		}
		commits = append(commits, raw)
	}

	return prs, issues, commits
}

func convertUser(u *github.User) *models.RawUser {
	if u == nil || u.GetLogin() == "" {
		return nil
	}
	return &models.RawUser{Login: u.GetLogin(), AvatarURL: u.GetAvatarURL()}
}

func convertLabels(labels []*github.Label) models.List[models.RawLabel] {
	out := make(models.List[models.RawLabel], 0, len(labels))
	for _, l := range labels {
		out = append(out, models.RawLabel{Name: l.GetName()})
	}
	return out
}

func formatTimestamp(ts *github.Timestamp) string {
	if ts == nil || ts.Time.IsZero() {
		return ""
	}
	return ts.Time.UTC().Format(time.RFC3339)
}

func updatedSince(ts *github.Timestamp, since time.Time) bool {
	if since.IsZero() || ts == nil {
		return true
	}
	return !ts.Time.Before(since)
}
