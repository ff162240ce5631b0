package internalerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrEncoderUnavailable  = errors.New("encoder unavailable")
	ErrInsufficientData    = errors.New("insufficient data")
	ErrNoMatchingDocuments = errors.New("no matching documents")
)

// StageError wraps a failure with the pipeline stage it occurred in.
// A failed stage aborts the whole run; no partial artifacts survive.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Stage wraps err with the stage name it occurred in.
// Returns nil when err is nil.
func Stage(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}
