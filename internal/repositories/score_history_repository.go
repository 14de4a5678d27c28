package repositories

import (
	"sync"

	"github.com/alimgiray/contribrank/internal/models"
	"github.com/jmoiron/sqlx"
)

// ScoreHistoryRepository stores ranked scores per run
type ScoreHistoryRepository struct {
	db *sqlx.DB
	mu sync.RWMutex
}

// NewScoreHistoryRepository creates a new ScoreHistoryRepository
func NewScoreHistoryRepository(db *sqlx.DB) *ScoreHistoryRepository {
	return &ScoreHistoryRepository{db: db}
}

// InsertBatch stores all scores of a run in a single transaction
func (r *ScoreHistoryRepository) InsertBatch(scores []*models.ContributorScore) error {
	if len(scores) == 0 {
		return nil
	}
	for _, s := range scores {
		if err := s.Validate(); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO contributor_scores (run_id, period, run_date, contributor, rank, score, commits, pull_requests, issues_opened, comments, reviews, created_at)
		VALUES (:run_id, :period, :run_date, :contributor, :rank, :score, :commits, :pull_requests, :issues_opened, :comments, :reviews, :created_at)
	`
	stmt, err := tx.PrepareNamed(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range scores {
		res, err := stmt.Exec(s)
		if err != nil {
			return err
		}
		if id, err := res.LastInsertId(); err == nil {
			s.ID = id
		}
	}

	return tx.Commit()
}

// GetByContributor returns a contributor's score history, newest first
func (r *ScoreHistoryRepository) GetByContributor(login string, limit int) ([]*models.ContributorScore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	scores := []*models.ContributorScore{}
	err := r.db.Select(&scores, `
		SELECT * FROM contributor_scores
		WHERE contributor = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, login, limit)
	if err != nil {
		return nil, err
	}
	return scores, nil
}

// GetByRun returns the scores of one run in rank order
func (r *ScoreHistoryRepository) GetByRun(runID string) ([]*models.ContributorScore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scores := []*models.ContributorScore{}
	err := r.db.Select(&scores, `SELECT * FROM contributor_scores WHERE run_id = ? ORDER BY rank ASC`, runID)
	if err != nil {
		return nil, err
	}
	return scores, nil
}
