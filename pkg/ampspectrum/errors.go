package ampspectrum

import (
	"context"
	"errors"
	"fmt"

	"github.com/himanishpuri/AmpSpectrum/internal/audio"
	"github.com/himanishpuri/AmpSpectrum/internal/spectrum"
)

var (
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrAnalysisNotFound    = errors.New("analysis not found")
	ErrPersistenceDisabled = errors.New("persistence is not configured")
)

// Stage names the pipeline step a failure came from.
type Stage string

const (
	StageRead      Stage = "read"
	StageLocate    Stage = "locate"
	StageParse     Stage = "parse"
	StageExtract   Stage = "extract"
	StageNormalize Stage = "normalize"
	StageEstimate  Stage = "estimate"
	StageEmit      Stage = "emit"
	StageStore     Stage = "store"
)

// Kind classifies a failure independently of where it happened.
type Kind string

const (
	KindIO              Kind = "IoError"
	KindHeaderNotFound  Kind = "HeaderNotFound"
	KindTruncatedData   Kind = "TruncatedData"
	KindTagMismatch     Kind = "TagMismatch"
	KindDegenerateRange Kind = "DegenerateRange"
	KindInvalidConfig   Kind = "InvalidConfig"
	KindStorage         Kind = "StorageError"
	KindCancelled       Kind = "Cancelled"
)

// StageError attributes a failed run to one stage.
type StageError struct {
	Stage Stage
	Kind  Kind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed (%s): %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageError(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Kind: classify(stage, err), Err: err}
}

func classify(stage Stage, err error) Kind {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	case errors.Is(err, audio.ErrHeaderNotFound):
		return KindHeaderNotFound
	case errors.Is(err, audio.ErrTruncated):
		return KindTruncatedData
	case errors.Is(err, audio.ErrTagMismatch):
		return KindTagMismatch
	case errors.Is(err, spectrum.ErrDegenerateRange):
		return KindDegenerateRange
	case errors.Is(err, ErrInvalidConfig),
		errors.Is(err, audio.ErrInvalidFrames),
		errors.Is(err, spectrum.ErrTooManyBins),
		errors.Is(err, spectrum.ErrUnknownMethod):
		return KindInvalidConfig
	case stage == StageStore:
		return KindStorage
	default:
		return KindIO
	}
}
