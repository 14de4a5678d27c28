package services

import (
	"fmt"
	"strings"

	"github.com/alimgiray/contribrank/internal/models"
	"github.com/alimgiray/contribrank/internal/repositories"
)

// RunLister reads the run ledger
type RunLister interface {
	ListByPeriod(period models.Period, limit int) ([]*models.Run, error)
	GetStageRuns(runID string) ([]*models.StageRun, error)
}

// ScoreHistoryReader reads recorded scores
type ScoreHistoryReader interface {
	GetByContributor(login string, limit int) ([]*models.ContributorScore, error)
}

// RunSummary is a run together with its stages
type RunSummary struct {
	*models.Run
	Stages []*models.StageRun `json:"stages"`
}

// ContributorExplanation is a contributor's score broken down by category
type ContributorExplanation struct {
	Contributor string         `json:"contributor"`
	Rank        int            `json:"rank"`
	Score       int            `json:"score"`
	Breakdown   ScoreBreakdown `json:"breakdown"`
}

// ReportService serves the read side: current contributor lists, score
// explanations, the run ledger and score history.
type ReportService struct {
	artifacts *repositories.ArtifactRepository
	runs      RunLister
	history   ScoreHistoryReader
	scorer    *Scorer
	matcher   *LoginMatcher
}

func NewReportService(artifacts *repositories.ArtifactRepository, runs RunLister, history ScoreHistoryReader, scorer *Scorer) *ReportService {
	return &ReportService{
		artifacts: artifacts,
		runs:      runs,
		history:   history,
		scorer:    scorer,
		matcher:   NewLoginMatcher(0.6),
	}
}

// Contributors returns the latest contributor list of a period, preferring
// the summarized output over the scored one
func (s *ReportService) Contributors(period models.Period) ([]models.ContributorRecord, string, error) {
	for _, name := range []string{models.ArtifactContributors, models.ArtifactScored} {
		if !s.artifacts.Exists(period, name) {
			continue
		}
		var records []models.ContributorRecord
		if err := s.artifacts.ReadJSON(period, name, &records); err != nil {
			return nil, "", err
		}
		return records, name, nil
	}
	return nil, "", fmt.Errorf("%w: no scored contributors for %s", models.ErrNotFound, period)
}

// Explain recomputes the breakdown of one contributor from the latest list
func (s *ReportService) Explain(period models.Period, login string) (*ContributorExplanation, error) {
	records, _, err := s.Contributors(period)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].Contributor != login {
			continue
		}
		b := s.scorer.Breakdown(&records[i])
		return &ContributorExplanation{
			Contributor: login,
			Rank:        i + 1,
			Score:       s.scorer.Score(&records[i]),
			Breakdown:   b,
		}, nil
	}

	logins := make([]string, len(records))
	for i := range records {
		logins[i] = records[i].Contributor
	}
	if matches := s.matcher.Suggest(login, logins, 3); len(matches) > 0 {
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Login
		}
		return nil, fmt.Errorf("%w: contributor %s in %s (did you mean %s?)", models.ErrNotFound, login, period, strings.Join(names, ", "))
	}
	return nil, fmt.Errorf("%w: contributor %s in %s", models.ErrNotFound, login, period)
}

// Runs returns recent runs of a period with their stages
func (s *ReportService) Runs(period models.Period, limit int) ([]RunSummary, error) {
	runs, err := s.runs.ListByPeriod(period, limit)
	if err != nil {
		return nil, err
	}

	out := make([]RunSummary, 0, len(runs))
	for _, run := range runs {
		stages, err := s.runs.GetStageRuns(run.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, RunSummary{Run: run, Stages: stages})
	}
	return out, nil
}

// History returns a contributor's recorded scores, newest first
func (s *ReportService) History(login string, limit int) ([]*models.ContributorScore, error) {
	return s.history.GetByContributor(login, limit)
}
