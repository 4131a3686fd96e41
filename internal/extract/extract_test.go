package extract_test

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"wwisex/internal/extract"
	"wwisex/internal/logging"
	"wwisex/internal/manifest"
	"wwisex/internal/procrun"
	"wwisex/internal/testsupport"
)

func TestExtractArchivesRunsEveryFilter(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithArchives("a.pak", "b.pak"))
	runner := &testsupport.FakeRunner{}

	ex, err := extract.New(cfg, logging.NewNop(), extract.WithRunner(runner))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	report, err := ex.ExtractArchives(context.Background(), cfg.Paths.ArchiveInputs)
	if err != nil {
		t.Fatalf("ExtractArchives returned error: %v", err)
	}
	if report.Jobs != 6 || report.Failed != 0 {
		t.Fatalf("unexpected report %+v", report)
	}

	calls := runner.CallsFor("UnrealPak")
	if len(calls) != 6 {
		t.Fatalf("expected 6 UnrealPak calls, got %d", len(calls))
	}
	want := []string{cfg.Paths.ArchiveInputs[0], "-Filter=*.bnk", "-Extract", cfg.Paths.ExtractRoot, "-extracttomountpoint"}
	found := false
	for _, c := range calls {
		if slices.Equal(c.Args, want) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected call %v among %v", want, calls)
	}
}

func TestExtractArchivesUnfiltered(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithArchives("a.pak"), testsupport.WithFilters())
	runner := &testsupport.FakeRunner{}

	ex, err := extract.New(cfg, logging.NewNop(), extract.WithRunner(runner))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := ex.ExtractArchives(context.Background(), cfg.Paths.ArchiveInputs); err != nil {
		t.Fatalf("ExtractArchives returned error: %v", err)
	}
	calls := runner.Calls()
	want := []string{cfg.Paths.ArchiveInputs[0], "-Extract", cfg.Paths.ExtractRoot, "-extracttomountpoint"}
	if len(calls) != 1 || !slices.Equal(calls[0].Args, want) {
		t.Fatalf("unexpected calls %v", calls)
	}
}

func TestExtractBanksContinuesAfterFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	bad := filepath.Join(cfg.Paths.SourceAudioDir, "Broken.bnk")
	runner := &testsupport.FakeRunner{
		Handle: func(_ context.Context, binary string, args []string) (procrun.Result, error) {
			if args[0] == bad {
				return procrun.Result{Binary: binary, ExitCode: 2}, testsupport.ExitFailure(binary, 2, "corrupt")
			}
			return procrun.Result{Binary: binary}, nil
		},
	}

	ex, err := extract.New(cfg, logging.NewNop(), extract.WithRunner(runner))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	banks := slices.Values([]manifest.Bank{
		{ID: "1", Language: "SFX", Path: "Init.bnk"},
		{ID: "2", Language: "SFX", Path: "Broken.bnk"},
		{ID: "3", Language: "English(US)", Path: `English(US)\VO.bnk`},
	})
	report, err := ex.ExtractBanks(context.Background(), banks)
	if err != nil {
		t.Fatalf("ExtractBanks returned error: %v", err)
	}
	if report.Jobs != 3 || report.Failed != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Outcomes[1].Job.Target != bad || !report.Outcomes[1].Failed() {
		t.Fatalf("expected second outcome to be the failed bank, got %+v", report.Outcomes[1])
	}

	wantVO := filepath.Join(cfg.Paths.SourceAudioDir, "English(US)", "VO.bnk")
	calls := runner.CallsFor("bnkextr")
	if len(calls) != 3 {
		t.Fatalf("expected 3 bnkextr calls, got %d", len(calls))
	}
	found := false
	for _, c := range calls {
		if slices.Equal(c.Args, []string{wantVO, "/nodir"}) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected language bank call for %s, got %v", wantVO, calls)
	}
}

func TestExtractMissingToolAborts(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithArchives("a.pak"))
	runner := &testsupport.FakeRunner{
		Handle: func(context.Context, string, []string) (procrun.Result, error) {
			return procrun.Result{}, procrun.ErrToolNotFound
		},
	}

	ex, err := extract.New(cfg, logging.NewNop(), extract.WithRunner(runner))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	_, err = ex.ExtractArchives(context.Background(), cfg.Paths.ArchiveInputs)
	if !errors.Is(err, procrun.ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound, got %v", err)
	}
}

func TestExtractNoArchives(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := &testsupport.FakeRunner{}
	ex, err := extract.New(cfg, logging.NewNop(), extract.WithRunner(runner))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	report, err := ex.ExtractArchives(context.Background(), nil)
	if err != nil || report.Jobs != 0 {
		t.Fatalf("expected empty report, got %+v, %v", report, err)
	}
	if len(runner.Calls()) != 0 {
		t.Fatal("expected no tool calls")
	}
}
