package models

import (
	"errors"
	"fmt"
)

var (
	ErrArtifactMissing = errors.New("artifact missing")
	ErrArtifactEmpty   = errors.New("artifact empty")
	ErrInvalidPeriod   = errors.New("invalid period")
	ErrInvalidStage    = errors.New("invalid stage")
	ErrInvalidConfig   = errors.New("invalid scoring config")
	ErrNotFound        = errors.New("not found")
)

// StageError is returned when a pipeline stage or its gate fails
type StageError struct {
	Stage    Stage
	Artifact string
	Err      error
}

func (e *StageError) Error() string {
	if e.Artifact != "" {
		return fmt.Sprintf("stage %s: %s: %v", e.Stage, e.Artifact, e.Err)
	}
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
