package models

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus represents the status of a pipeline run or stage
type RunStatus string

const (
	RunStatusPending    RunStatus = "pending"
	RunStatusInProgress RunStatus = "in-progress"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
	RunStatusSkipped    RunStatus = "skipped"
)

// RunDateLayout is the layout of Run.RunDate
const RunDateLayout = "2006-01-02"

// Run is one pipeline invocation for a period
type Run struct {
	ID           string     `json:"id" db:"id"`
	Period       Period     `json:"period" db:"period"`
	RunDate      string     `json:"run_date" db:"run_date"`
	WindowStart  time.Time  `json:"window_start" db:"window_start"`
	Status       RunStatus  `json:"status" db:"status"`
	ErrorMessage *string    `json:"error_message" db:"error_message"`
	StartedAt    *time.Time `json:"started_at" db:"started_at"`
	CompletedAt  *time.Time `json:"completed_at" db:"completed_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// NewRun creates a pending run for period starting at now
func NewRun(period Period, now time.Time) *Run {
	return &Run{
		ID:          uuid.New().String(),
		Period:      period,
		RunDate:     now.Format(RunDateLayout),
		WindowStart: period.WindowStart(now),
		Status:      RunStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Day parses RunDate, the calendar day the run was created on
func (r *Run) Day() (time.Time, error) {
	return time.Parse(RunDateLayout, r.RunDate)
}

// MarkStarted marks the run as started
func (r *Run) MarkStarted() {
	now := time.Now()
	r.Status = RunStatusInProgress
	r.StartedAt = &now
	r.UpdatedAt = now
}

// MarkCompleted marks the run as completed
func (r *Run) MarkCompleted() {
	now := time.Now()
	r.Status = RunStatusCompleted
	r.CompletedAt = &now
	r.UpdatedAt = now
}

// MarkFailed marks the run as failed with err
func (r *Run) MarkFailed(err error) {
	now := time.Now()
	msg := err.Error()
	r.Status = RunStatusFailed
	r.ErrorMessage = &msg
	r.CompletedAt = &now
	r.UpdatedAt = now
}

// StageRun records the execution of one stage within a run
type StageRun struct {
	ID           string     `json:"id" db:"id"`
	RunID        string     `json:"run_id" db:"run_id"`
	Stage        Stage      `json:"stage" db:"stage"`
	Status       RunStatus  `json:"status" db:"status"`
	Artifact     string     `json:"artifact" db:"artifact"`
	Bytes        int64      `json:"bytes" db:"bytes"`
	ErrorMessage *string    `json:"error_message" db:"error_message"`
	StartedAt    *time.Time `json:"started_at" db:"started_at"`
	CompletedAt  *time.Time `json:"completed_at" db:"completed_at"`
}

// NewStageRun creates a stage record in progress
func NewStageRun(runID string, stage Stage) *StageRun {
	now := time.Now()
	return &StageRun{
		ID:        uuid.New().String(),
		RunID:     runID,
		Stage:     stage,
		Status:    RunStatusInProgress,
		StartedAt: &now,
	}
}

// Finish closes the stage with the committed artifact and its size
func (s *StageRun) Finish(status RunStatus, artifact string, size int64) {
	now := time.Now()
	s.Status = status
	s.Artifact = artifact
	s.Bytes = size
	s.CompletedAt = &now
}

// Fail closes the stage with err
func (s *StageRun) Fail(err error) {
	now := time.Now()
	msg := err.Error()
	s.Status = RunStatusFailed
	s.ErrorMessage = &msg
	s.CompletedAt = &now
}
