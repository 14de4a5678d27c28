package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/alimgiray/contribrank/internal/models"
	"github.com/jmoiron/sqlx"
)

// RunRepository handles database operations for pipeline runs and their stages
type RunRepository struct {
	db *sqlx.DB
	mu sync.RWMutex
}

// NewRunRepository creates a new RunRepository
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// CreateRun inserts a new run
func (r *RunRepository) CreateRun(run *models.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO runs (id, period, run_date, window_start, status, error_message, started_at, completed_at, created_at, updated_at)
		VALUES (:id, :period, :run_date, :window_start, :status, :error_message, :started_at, :completed_at, :created_at, :updated_at)
	`
	_, err := r.db.NamedExec(query, run)
	return err
}

// UpdateRun persists the run status and timestamps
func (r *RunRepository) UpdateRun(run *models.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		UPDATE runs
		SET status = :status, error_message = :error_message, started_at = :started_at,
		    completed_at = :completed_at, updated_at = :updated_at
		WHERE id = :id
	`
	res, err := r.db.NamedExec(query, run)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: run %s", models.ErrNotFound, run.ID)
	}
	return nil
}

// GetRun retrieves a run by ID
func (r *RunRepository) GetRun(id string) (*models.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run := &models.Run{}
	err := r.db.Get(run, `SELECT * FROM runs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListByPeriod returns the most recent runs of a period, newest first
func (r *RunRepository) ListByPeriod(period models.Period, limit int) ([]*models.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	runs := []*models.Run{}
	err := r.db.Select(&runs, `SELECT * FROM runs WHERE period = ? ORDER BY created_at DESC LIMIT ?`, period, limit)
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// CreateStageRun inserts a stage record
func (r *RunRepository) CreateStageRun(stage *models.StageRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO stage_runs (id, run_id, stage, status, artifact, bytes, error_message, started_at, completed_at)
		VALUES (:id, :run_id, :stage, :status, :artifact, :bytes, :error_message, :started_at, :completed_at)
	`
	_, err := r.db.NamedExec(query, stage)
	return err
}

// UpdateStageRun persists the outcome of a stage
func (r *RunRepository) UpdateStageRun(stage *models.StageRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		UPDATE stage_runs
		SET status = :status, artifact = :artifact, bytes = :bytes,
		    error_message = :error_message, completed_at = :completed_at
		WHERE id = :id
	`
	_, err := r.db.NamedExec(query, stage)
	return err
}

// GetStageRuns returns the stages of a run in execution order
func (r *RunRepository) GetStageRuns(runID string) ([]*models.StageRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stages := []*models.StageRun{}
	err := r.db.Select(&stages, `SELECT * FROM stage_runs WHERE run_id = ? ORDER BY started_at ASC, rowid ASC`, runID)
	if err != nil {
		return nil, err
	}
	return stages, nil
}
