package generation

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/polkiloo/youwow/internal/domain/errors"
)

var (
	ErrBackend      = errors.New("generation backend error")
	ErrNoAudio      = errors.New("backend did not return audio")
	ErrEmptyText    = errors.New("backend returned empty text")
	ErrInvalidInput = errors.New("order input is incomplete")
	ErrPanic        = errors.New("generation panicked")
)

// StageError ties a failure to the pipeline stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

// HumanMessage converts a pipeline failure into text safe to show a customer.
// Raw backend errors are never exposed.
func HumanMessage(err error) string {
	switch {
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "Generation took too long. Please contact support and we will make it right."
	case errors.Is(err, ErrNoAudio):
		return "The music service did not return a track. Please contact support."
	case errors.Is(err, ErrInvalidInput):
		return "The order form is missing required details. Please contact support."
	case errors.Is(err, domainErrors.ErrUnsupportedService):
		return "This gift is not available yet. Please contact support for a refund."
	case errors.Is(err, ErrBackend), errors.Is(err, ErrEmptyText):
		return "The generation service reported an error. Please contact support."
	default:
		return "Something went wrong while creating your gift. Please contact support."
	}
}
