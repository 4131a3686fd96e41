package dedup_test

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"wwisex/internal/dedup"
	"wwisex/internal/fileutil"
	"wwisex/internal/ledger"
	"wwisex/internal/logging"
	"wwisex/internal/manifest"
	"wwisex/internal/testsupport"
)

func TestDecide(t *testing.T) {
	rec := ledger.Record{FileID: "1", FilePath: "a.wem", FileHash: "aa"}
	tests := []struct {
		name      string
		known     bool
		hash      string
		oggExists bool
		wantMove  bool
	}{
		{"unknown path", false, "aa", true, true},
		{"hash changed", true, "bb", true, true},
		{"hash changed without ogg", true, "bb", false, true},
		{"same hash, ogg missing", true, "aa", false, true},
		{"same hash, ogg present", true, "aa", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dedup.Decide(rec, tt.known, tt.hash, tt.oggExists)
			if got.Move != tt.wantMove {
				t.Fatalf("Decide move = %v, want %v (%s)", got.Move, tt.wantMove, got.Reason)
			}
			if got.Reason == "" {
				t.Fatal("expected a reason")
			}
		})
	}
}

func TestProcessMovesAndRecords(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	src := cfg.Paths.SourceAudioDir
	out := cfg.Paths.OutputDir
	testsupport.WriteContent(t, filepath.Join(src, "1001.wem"), "theme")
	testsupport.WriteContent(t, filepath.Join(src, "English(US)", "1002.wem"), "hello")

	entries := []manifest.Entry{
		{ID: "1001", Language: "SFX", Path: "Music/Theme_1A2B3C.wem"},
		{ID: "1002", Language: "English(US)", Path: "VO/Hello.wem"},
	}
	engine := dedup.New(cfg, logging.NewNop())
	next, stats, err := engine.Process(context.Background(), slices.Values(entries), ledger.New())
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	if stats.Entries != 2 || stats.Moved != 2 || stats.Skipped != 0 || stats.Duplicates != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if got := testsupport.ReadContent(t, filepath.Join(out, "Music", "Theme.wem")); got != "theme" {
		t.Fatalf("unexpected moved content %q", got)
	}
	testsupport.AssertExists(t, filepath.Join(out, "VO", "Hello.wem"))
	testsupport.AssertMissing(t, filepath.Join(src, "1001.wem"))
	testsupport.AssertMissing(t, filepath.Join(src, "English(US)", "1002.wem"))

	rec, ok := next.Lookup("Music/Theme.wem")
	if !ok || rec.FileID != "1001" {
		t.Fatalf("expected ledger record for canonical path, got %#v, %v", rec, ok)
	}
	wantHash, err := fileutil.HashFile(filepath.Join(out, "Music", "Theme.wem"))
	if err != nil {
		t.Fatal(err)
	}
	if rec.FileHash != wantHash {
		t.Fatalf("ledger hash %s, want %s", rec.FileHash, wantHash)
	}
}

func TestProcessFirstEntryWinsForDuplicatePaths(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	src := cfg.Paths.SourceAudioDir
	testsupport.WriteContent(t, filepath.Join(src, "1.wem"), "first")
	testsupport.WriteContent(t, filepath.Join(src, "2.wem"), "second")

	entries := []manifest.Entry{
		{ID: "1", Language: "SFX", Path: "foo_1A2B3C.wem"},
		{ID: "2", Language: "SFX", Path: "foo_00FF00.wem"},
	}
	next, stats, err := dedup.New(cfg, logging.NewNop()).Process(context.Background(), slices.Values(entries), nil)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if stats.Moved != 1 || stats.Duplicates != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if got := testsupport.ReadContent(t, filepath.Join(cfg.Paths.OutputDir, "foo.wem")); got != "first" {
		t.Fatalf("expected first entry to win, got %q", got)
	}
	testsupport.AssertMissing(t, filepath.Join(src, "2.wem"))
	if next.Len() != 1 {
		t.Fatalf("expected a single ledger record, got %d", next.Len())
	}
	if rec, _ := next.Lookup("foo.wem"); rec.FileID != "1" {
		t.Fatalf("expected record for first id, got %#v", rec)
	}
}

func TestProcessSkipsUnchangedWhenOggPresent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	src := filepath.Join(cfg.Paths.SourceAudioDir, "7.wem")
	testsupport.WriteContent(t, src, "same")
	hash, err := fileutil.HashFile(src)
	if err != nil {
		t.Fatal(err)
	}
	ogg := filepath.Join(cfg.Paths.OutputDir, "sfx", "boom.ogg")
	testsupport.WriteContent(t, ogg, "converted")

	prior := ledger.New()
	prior.Add(ledger.Record{FileID: "7", FilePath: "sfx/boom.wem", FileHash: hash})

	entries := []manifest.Entry{{ID: "7", Language: "SFX", Path: "sfx/boom.wem"}}
	next, stats, err := dedup.New(cfg, logging.NewNop()).Process(context.Background(), slices.Values(entries), prior)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if stats.Skipped != 1 || stats.Moved != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	testsupport.AssertMissing(t, src)
	testsupport.AssertMissing(t, filepath.Join(cfg.Paths.OutputDir, "sfx", "boom.wem"))
	if got := testsupport.ReadContent(t, ogg); got != "converted" {
		t.Fatalf("existing ogg should be untouched, got %q", got)
	}
	if rec, ok := next.Lookup("sfx/boom.wem"); !ok || rec.FileHash != hash {
		t.Fatalf("skipped media must still be recorded, got %#v, %v", rec, ok)
	}
}

func TestProcessMovesWhenOggMissingOrHashChanged(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	src := cfg.Paths.SourceAudioDir
	testsupport.WriteContent(t, filepath.Join(src, "1.wem"), "unchanged")
	testsupport.WriteContent(t, filepath.Join(src, "2.wem"), "changed")
	unchangedHash, err := fileutil.HashFile(filepath.Join(src, "1.wem"))
	if err != nil {
		t.Fatal(err)
	}
	testsupport.WriteContent(t, filepath.Join(cfg.Paths.OutputDir, "b.ogg"), "old")

	prior := ledger.New()
	prior.Add(ledger.Record{FileID: "1", FilePath: "a.wem", FileHash: unchangedHash})
	prior.Add(ledger.Record{FileID: "2", FilePath: "b.wem", FileHash: "stale"})

	entries := []manifest.Entry{
		{ID: "1", Language: "SFX", Path: "a.wem"},
		{ID: "2", Language: "SFX", Path: "b.wem"},
	}
	_, stats, err := dedup.New(cfg, logging.NewNop()).Process(context.Background(), slices.Values(entries), prior)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if stats.Moved != 2 {
		t.Fatalf("expected both entries moved, got %+v", stats)
	}
	testsupport.AssertExists(t, filepath.Join(cfg.Paths.OutputDir, "a.wem"))
	testsupport.AssertExists(t, filepath.Join(cfg.Paths.OutputDir, "b.wem"))
}

func TestProcessMissingSourceIsFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	entries := []manifest.Entry{{ID: "404", Language: "SFX", Path: "gone.wem"}}

	next, _, err := dedup.New(cfg, logging.NewNop()).Process(context.Background(), slices.Values(entries), nil)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if next != nil {
		t.Fatal("expected no ledger on failure")
	}
}

func TestMoveUnknownFlattens(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	src := cfg.Paths.SourceAudioDir
	testsupport.WriteContent(t, filepath.Join(src, "555.wem"), "a")
	testsupport.WriteContent(t, filepath.Join(src, "French", "666.wem"), "b")
	testsupport.WriteContent(t, filepath.Join(src, "Init.bnk"), "bank")

	engine := dedup.New(cfg, logging.NewNop())
	moved, err := engine.MoveUnknown(context.Background())
	if err != nil {
		t.Fatalf("MoveUnknown returned error: %v", err)
	}
	if len(moved) != 2 {
		t.Fatalf("expected 2 files moved, got %v", moved)
	}
	unknown := cfg.UnknownAudioPath()
	testsupport.AssertExists(t, filepath.Join(unknown, "555.wem"))
	testsupport.AssertExists(t, filepath.Join(unknown, "666.wem"))
	testsupport.AssertMissing(t, filepath.Join(src, "French", "666.wem"))
	testsupport.AssertExists(t, filepath.Join(src, "Init.bnk"))
}

func TestMoveUnknownMissingSourceRoot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	moved, err := dedup.New(cfg, logging.NewNop()).MoveUnknown(context.Background())
	if err != nil || len(moved) != 0 {
		t.Fatalf("expected nothing moved, got %v, %v", moved, err)
	}
}

func TestMoveUnknownWarnsOnNameCollision(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	src := cfg.Paths.SourceAudioDir
	testsupport.WriteContent(t, filepath.Join(src, "123.wem"), "sfx")
	testsupport.WriteContent(t, filepath.Join(src, "English(US)", "123.wem"), "voice")

	var buf bytes.Buffer
	engine := dedup.New(cfg, slog.New(slog.NewJSONHandler(&buf, nil)))
	moved, err := engine.MoveUnknown(context.Background())
	if err != nil {
		t.Fatalf("MoveUnknown returned error: %v", err)
	}
	if len(moved) != 1 {
		t.Fatalf("expected one file left in the unknown folder, got %v", moved)
	}
	if got := testsupport.ReadContent(t, filepath.Join(cfg.UnknownAudioPath(), "123.wem")); got != "voice" {
		t.Fatalf("expected the later file to win, got %q", got)
	}
	logged := buf.String()
	if !strings.Contains(logged, "unknown_media_collision") || !strings.Contains(logged, filepath.Join(src, "123.wem")) {
		t.Fatalf("expected a collision warning naming the replaced file, got %q", logged)
	}
}
