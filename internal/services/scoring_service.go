package services

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/alimgiray/contribrank/internal/models"
)

var mentionPattern = regexp.MustCompile(`(?:^|[^A-Za-z0-9_.])@([A-Za-z0-9][A-Za-z0-9-]*)`)

var (
	highComplexityLabels = map[string]bool{"complex": true, "high-priority": true, "priority: high": true}
	lowComplexityLabels  = map[string]bool{"easy": true, "good first issue": true, "good-first-issue": true}
)

// ScoreBreakdown holds the real-valued contribution of each scoring category
type ScoreBreakdown struct {
	PullRequests  float64 `json:"pull_requests"`
	Issues        float64 `json:"issues"`
	Commits       float64 `json:"commits"`
	Collaboration float64 `json:"collaboration"`
	Reviewer      float64 `json:"reviewer"`
	Volume        float64 `json:"volume"`
	Total         float64 `json:"total"`
}

// Scorer computes contributor scores from their activity. It holds an
// immutable copy of the weights it was built with.
type Scorer struct {
	cfg models.ScoringConfig
}

// NewScorer validates cfg and returns a scorer using it
func NewScorer(cfg models.ScoringConfig) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

// Config returns the weights the scorer was built with
func (s *Scorer) Config() models.ScoringConfig {
	return s.cfg
}

// Score returns the floored total for a contributor, clamped to
// [0, math.MaxInt32]
func (s *Scorer) Score(rec *models.ContributorRecord) int {
	return clampScore(s.Breakdown(rec).Total)
}

func clampScore(total float64) int {
	switch {
	case math.IsNaN(total) || total < 0:
		return 0
	case total >= math.MaxInt32:
		return math.MaxInt32
	}
	return int(math.Floor(total))
}

// Breakdown scores every category for a contributor. Only the activity
// graph is read; the current Score and Summary are ignored.
func (s *Scorer) Breakdown(rec *models.ContributorRecord) ScoreBreakdown {
	b := ScoreBreakdown{}
	login := rec.Contributor

	for _, pr := range rec.Activity.Code.PullRequests {
		b.PullRequests += s.pullRequestPoints(pr)
		b.Collaboration += s.collaborationPoints(login, pr)
		b.Reviewer += s.reviewerPoints(login, pr)
	}

	for _, issue := range rec.Activity.Issues.Opened {
		b.Issues += s.issuePoints(issue)
	}

	b.Commits = float64(len(rec.Activity.Code.Commits)) * s.cfg.Commit.Points

	v := s.cfg.Volume
	b.Volume = float64(rec.Activity.Code.TotalCommits)*v.Commit +
		float64(rec.Activity.Code.TotalPRs)*v.PR +
		float64(rec.Activity.Issues.TotalOpened)*v.Issue +
		float64(rec.Activity.Engagement.TotalComments)*v.Comment

	b.Total = b.PullRequests + b.Issues + b.Commits + b.Collaboration + b.Reviewer + b.Volume
	return b
}

func (s *Scorer) pullRequestPoints(pr models.PullRequestEntry) float64 {
	if !pr.Merged || pr.Draft {
		return 0
	}
	w := s.cfg.PullRequest

	points := w.Base * s.sizeMultiplier(pr.ChangedLines()) * s.qualityMultiplier(pr)

	for _, r := range pr.Reviews {
		points += w.ReviewPoints
		if strings.EqualFold(r.State, "APPROVED") {
			points += w.ApprovedBonus
		}
	}

	points += math.Min(float64(pr.BodyLength())/w.BodyLengthDivisor, w.BodyBonusCap)

	for _, c := range pr.Comments {
		if utf8.RuneCountInString(c.Body) >= w.MinCommentLength {
			points += w.CommentPoints
		}
	}
	return points
}

func (s *Scorer) sizeMultiplier(lines int) float64 {
	w := s.cfg.PullRequest
	switch {
	case lines < w.SmallThreshold:
		return w.SmallMultiplier
	case lines > w.LargeThreshold:
		return w.LargeMultiplier
	default:
		return w.MediumMultiplier
	}
}

// qualityMultiplier compounds the squash, deletion and documentation bonuses
func (s *Scorer) qualityMultiplier(pr models.PullRequestEntry) float64 {
	w := s.cfg.PullRequest
	m := 1.0
	if pr.CommitCount == 1 && pr.ChangedLines() > w.SquashMinLines {
		m *= w.SquashBonus
	}
	if pr.Deletions()-pr.Additions() > w.DeletionMargin {
		m *= w.DeletionBonus
	}
	if pr.BodyLength() > w.DocumentationMinLength {
		m *= w.DocumentationBonus
	}
	return m
}

func (s *Scorer) issuePoints(issue models.IssueEntry) float64 {
	if !issue.Engaged() {
		return 0
	}
	w := s.cfg.Issue
	labels := lowerLabels(issue.Labels)

	return w.Base*s.typeMultiplier(labels)*s.complexityMultiplier(labels) +
		float64(len(issue.Comments))*w.CommentPoints
}

// typeMultiplier picks the strongest type label: bug, enhancement, feature, docs
func (s *Scorer) typeMultiplier(labels []string) float64 {
	w := s.cfg.Issue
	has := func(sub ...string) bool {
		for _, l := range labels {
			for _, want := range sub {
				if strings.Contains(l, want) {
					return true
				}
			}
		}
		return false
	}

	switch {
	case has("bug"):
		return w.BugMultiplier
	case has("enhancement"):
		return w.EnhancementMultiplier
	case has("feature"):
		return w.FeatureMultiplier
	case has("doc"):
		return w.DocsMultiplier
	default:
		return w.FeatureMultiplier
	}
}

func (s *Scorer) complexityMultiplier(labels []string) float64 {
	w := s.cfg.Issue
	for _, l := range labels {
		if highComplexityLabels[l] {
			return w.HighComplexity
		}
	}
	for _, l := range labels {
		if lowComplexityLabels[l] {
			return w.LowComplexity
		}
	}
	return w.MediumComplexity
}

// collaborationPoints scores merging others' work, substantive reviews and
// coordination comments. PRs in a contributor's list are their own, so the
// merged-others term only applies to records built with foreign PRs.
func (s *Scorer) collaborationPoints(login string, pr models.PullRequestEntry) float64 {
	w := s.cfg.Collaboration
	points := 0.0

	if pr.MergedBy == login && pr.Author != login {
		points += w.MergedOthersPoints
	}

	for _, r := range pr.Reviews {
		if r.Author == login && utf8.RuneCountInString(r.Body) >= w.MinReviewLength {
			points += w.ReviewCommentPoints
		}
	}

	for _, c := range pr.Comments {
		if len(mentionedUsers(c.Body, login)) >= w.CoordinationMentions {
			points += w.CoordinationPoints
		}
	}
	return points
}

// reviewerPoints counts reviews the contributor left on their own PRs.
// TODO: confirm with report owners whether reviews on other people's PRs
// were meant here; that needs reviews indexed by reviewer at merge time.
func (s *Scorer) reviewerPoints(login string, pr models.PullRequestEntry) float64 {
	points := 0.0
	for _, r := range pr.Reviews {
		if r.Author == login {
			points += s.cfg.Reviewer.ReviewPoints
		}
	}
	return points
}

// mentionedUsers returns the distinct users @-mentioned in body, excluding self
func mentionedUsers(body, self string) []string {
	seen := map[string]bool{}
	users := []string{}
	for _, m := range mentionPattern.FindAllStringSubmatch(body, -1) {
		name := strings.ToLower(m[1])
		if strings.EqualFold(name, self) || seen[name] {
			continue
		}
		seen[name] = true
		users = append(users, name)
	}
	return users
}

func lowerLabels(labels []string) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = strings.ToLower(strings.TrimSpace(l))
	}
	return out
}
