package pipeline

import "fmt"

// Kind classifies a stage failure. The kind decides whether the failure is
// fatal to the job or recovered with a degraded result.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindAsset            Kind = "asset"
	KindGeneration       Kind = "generation"
	KindSynthesis        Kind = "synthesis"
	KindPersistence      Kind = "persistence"
	KindChildPersistence Kind = "child_persistence"
)

// StageError is a classified failure from one pipeline stage.
type StageError struct {
	Kind  Kind
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Fatal reports whether this failure must fail the whole job. Only request
// validation and the primary story insert are fatal once a job has started.
func (e *StageError) Fatal() bool {
	return e.Kind == KindValidation || e.Kind == KindPersistence
}

func newStageError(kind Kind, stage string, err error) *StageError {
	return &StageError{Kind: kind, Stage: stage, Err: err}
}
