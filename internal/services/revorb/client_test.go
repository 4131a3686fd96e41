package revorb_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"wwisex/internal/procrun"
	"wwisex/internal/services/revorb"
)

type stubRunner struct {
	args []string
	err  error
}

func (s *stubRunner) Run(_ context.Context, binary string, args ...string) (procrun.Result, error) {
	s.args = append([]string{binary}, args...)
	return procrun.Result{}, s.err
}

func TestRepackArgs(t *testing.T) {
	runner := &stubRunner{}
	client, err := revorb.New("revorb", revorb.WithRunner(runner))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.Repack(context.Background(), "/out/music theme.ogg"); err != nil {
		t.Fatalf("Repack returned error: %v", err)
	}
	if want := []string{"revorb", "/out/music theme.ogg"}; !reflect.DeepEqual(runner.args, want) {
		t.Fatalf("args = %#v, want %#v", runner.args, want)
	}
}

func TestRepackWrapsError(t *testing.T) {
	boom := errors.New("boom")
	client, err := revorb.New("revorb", revorb.WithRunner(&stubRunner{err: boom}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.Repack(context.Background(), "a.ogg"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
