package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"wwisex/internal/history"
	"wwisex/internal/procrun"
	"wwisex/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "transcode", "convert", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"transcode", "convert", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestFailureStatusMapping(t *testing.T) {
	if status := services.FailureStatus(nil); status != history.StatusSucceeded {
		t.Fatalf("expected succeeded for nil error, got %s", status)
	}
	cancelled := services.Wrap(services.ErrExternalTool, "extract", "banks", "", context.Canceled)
	if status := services.FailureStatus(cancelled); status != history.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", status)
	}
	failed := services.Wrap(services.ErrFilesystem, "dedup", "hash", "unreadable", errors.New("io"))
	if status := services.FailureStatus(failed); status != history.StatusFailed {
		t.Fatalf("expected failed, got %s", status)
	}
}

func TestFailureHint(t *testing.T) {
	missing := services.Wrap(services.ErrConfiguration, "extract", "archives", "", fmt.Errorf("x: %w", procrun.ErrToolNotFound))
	if hint := services.FailureHint(missing); !strings.Contains(hint, "deps") {
		t.Fatalf("expected tool hint, got %q", hint)
	}
	if hint := services.FailureHint(errors.New("other")); hint != "check logs for details" {
		t.Fatalf("unexpected default hint %q", hint)
	}
}
