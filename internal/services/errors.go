package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wwisex/internal/history"
	"wwisex/internal/procrun"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrFilesystem    = errors.New("filesystem error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of
// the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps a run error to the status recorded in history.
func FailureStatus(err error) history.Status {
	switch {
	case err == nil:
		return history.StatusSucceeded
	case errors.Is(err, context.Canceled):
		return history.StatusCancelled
	default:
		return history.StatusFailed
	}
}

// FailureHint suggests what to check after a run fails with err.
func FailureHint(err error) string {
	switch {
	case errors.Is(err, procrun.ErrToolNotFound):
		return "check the [tools] paths in the config or run 'wwisex deps'"
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrValidation):
		return "run 'wwisex config validate' and fix the reported fields"
	case errors.Is(err, ErrNotFound):
		return "check that the archives were extracted and source_audio_dir points at the WwiseAudio folder"
	case errors.Is(err, ErrFilesystem):
		return "check permissions and free space for the source and output directories"
	default:
		return "check logs for details"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
