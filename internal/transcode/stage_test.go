package transcode_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wwisex/internal/logging"
	"wwisex/internal/procrun"
	"wwisex/internal/testsupport"
	"wwisex/internal/transcode"
)

// oggWriter mimics ww2ogg by writing <name>.ogg next to the input unless the
// input name contains "bad".
func oggWriter(t *testing.T) *testsupport.FakeRunner {
	return &testsupport.FakeRunner{
		Handle: func(_ context.Context, binary string, args []string) (procrun.Result, error) {
			if binary != "ww2ogg" {
				return procrun.Result{Binary: binary}, nil
			}
			wem := args[0]
			if strings.Contains(wem, "bad") {
				return procrun.Result{Binary: binary, ExitCode: 1}, testsupport.ExitFailure(binary, 1, "unsupported codec")
			}
			ogg := strings.TrimSuffix(wem, filepath.Ext(wem)) + ".ogg"
			if err := os.WriteFile(ogg, []byte("ogg"), 0o644); err != nil {
				t.Errorf("write ogg: %v", err)
			}
			return procrun.Result{Binary: binary}, nil
		},
	}
}

func TestRunConvertsRepacksAndRemoves(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	out := cfg.Paths.OutputDir
	testsupport.WriteContent(t, filepath.Join(out, "Music", "Theme.wem"), "a")
	testsupport.WriteContent(t, filepath.Join(cfg.UnknownAudioPath(), "555.wem"), "b")
	testsupport.WriteContent(t, filepath.Join(out, "readme.txt"), "ignored")

	runner := oggWriter(t)
	stage, err := transcode.New(cfg, logging.NewNop(), transcode.WithRunner(runner))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	stats, err := stage.Run(context.Background(), out)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if stats.Files != 2 || stats.Converted != 2 || stats.Repacked != 2 || stats.Failed != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	testsupport.AssertExists(t, filepath.Join(out, "Music", "Theme.ogg"))
	testsupport.AssertMissing(t, filepath.Join(out, "Music", "Theme.wem"))
	testsupport.AssertExists(t, filepath.Join(cfg.UnknownAudioPath(), "555.ogg"))
	testsupport.AssertMissing(t, filepath.Join(cfg.UnknownAudioPath(), "555.wem"))

	convert := runner.CallsFor("ww2ogg")
	if len(convert) != 2 {
		t.Fatalf("expected 2 conversions, got %d", len(convert))
	}
	for _, c := range convert {
		if len(c.Args) != 3 || c.Args[1] != "--pcb" || c.Args[2] != cfg.Tools.Codebooks {
			t.Fatalf("unexpected ww2ogg args %v", c.Args)
		}
	}
	if n := len(runner.CallsFor("revorb")); n != 2 {
		t.Fatalf("expected 2 repacks, got %d", n)
	}
}

func TestRunFailedConversionSkipsRepackButRemovesWem(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	out := cfg.Paths.OutputDir
	testsupport.WriteContent(t, filepath.Join(out, "bad.wem"), "x")
	testsupport.WriteContent(t, filepath.Join(out, "good.wem"), "y")

	runner := oggWriter(t)
	stage, err := transcode.New(cfg, logging.NewNop(), transcode.WithRunner(runner))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	stats, err := stage.Run(context.Background(), out)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if stats.Failed != 1 || stats.Converted != 1 || stats.Repacked != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	testsupport.AssertMissing(t, filepath.Join(out, "bad.wem"))
	testsupport.AssertMissing(t, filepath.Join(out, "bad.ogg"))
	for _, c := range runner.CallsFor("revorb") {
		if strings.Contains(c.Args[0], "bad") {
			t.Fatalf("revorb should not run without an ogg: %v", c.Args)
		}
	}
}

func TestRunMissingToolKeepsMedia(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	out := cfg.Paths.OutputDir
	wem := filepath.Join(out, "a.wem")
	testsupport.WriteContent(t, wem, "x")

	runner := &testsupport.FakeRunner{
		Handle: func(context.Context, string, []string) (procrun.Result, error) {
			return procrun.Result{}, procrun.ErrToolNotFound
		},
	}
	stage, err := transcode.New(cfg, logging.NewNop(), transcode.WithRunner(runner))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := stage.Run(context.Background(), out); !errors.Is(err, procrun.ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound, got %v", err)
	}
	testsupport.AssertExists(t, wem)
}

func TestRunEmptyOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := &testsupport.FakeRunner{}
	stage, err := transcode.New(cfg, logging.NewNop(), transcode.WithRunner(runner))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	stats, err := stage.Run(context.Background(), cfg.Paths.OutputDir)
	if err != nil || stats.Files != 0 {
		t.Fatalf("expected no work, got %+v, %v", stats, err)
	}
	if len(runner.Calls()) != 0 {
		t.Fatal("expected no tool calls")
	}
}

func TestNewUsesCodebooksNextToConverter(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ww2ogg"))
	base := testsupport.BaseDir(cfg)
	sidecar := filepath.Join(base, "bin", "packed_codebooks_aoTuV_603.bin")
	testsupport.WriteFile(t, sidecar, 16)
	cfg.Tools.Codebooks = filepath.Join(base, "elsewhere", "packed_codebooks_aoTuV_603.bin")

	out := cfg.Paths.OutputDir
	testsupport.WriteContent(t, filepath.Join(out, "a.wem"), "x")

	runner := oggWriter(t)
	stage, err := transcode.New(cfg, logging.NewNop(), transcode.WithRunner(runner))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := stage.Run(context.Background(), out); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	calls := runner.CallsFor("ww2ogg")
	if len(calls) != 1 {
		t.Fatalf("expected one ww2ogg call, got %v", calls)
	}
	if got := calls[0].Args; len(got) != 3 || got[1] != "--pcb" || got[2] != sidecar {
		t.Fatalf("expected --pcb %s, got %v", sidecar, got)
	}
}
