package runner

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a stage failure
type ErrorKind string

const (
	KindCollaborator  ErrorKind = "collaborator"
	KindOutputQuality ErrorKind = "output_quality"
)

// ValidationError is returned for malformed input, before any collaborator is called
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid URL %q: %s", e.Input, e.Reason)
}

// StageError is a pipeline failure carrying the failing stage and the cause
type StageError struct {
	Stage string
	Kind  ErrorKind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage '%s' failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// ErrOutputTooShort marks collaborator output below the minimum length
var ErrOutputTooShort = errors.New("output is empty or too short")

func collaboratorError(stage string, err error) *StageError {
	return &StageError{Stage: stage, Kind: KindCollaborator, Err: err}
}

func qualityError(stage string, err error) *StageError {
	return &StageError{Stage: stage, Kind: KindOutputQuality, Err: err}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// FailedStage returns the stage name carried by err, if any
func FailedStage(err error) (string, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
