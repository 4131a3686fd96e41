package ledger_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wwisex/internal/ledger"
)

func TestLoadMissingAndEmpty(t *testing.T) {
	dir := t.TempDir()
	if l := ledger.Load(filepath.Join(dir, "missing.json")); l.Len() != 0 {
		t.Fatalf("expected empty ledger for missing file, got %d", l.Len())
	}

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	l, err := ledger.LoadWithError(empty)
	if err != nil || l.Len() != 0 {
		t.Fatalf("expected empty ledger without error, got %d, %v", l.Len(), err)
	}
}

func TestLoadCorruptIsNonFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ExtractedAudio.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	l, err := ledger.LoadWithError(path)
	if err == nil {
		t.Fatal("expected parse error to be reported")
	}
	if l == nil || l.Len() != 0 {
		t.Fatal("expected usable empty ledger")
	}
	if ledger.Load(path).Len() != 0 {
		t.Fatal("Load should ignore parse errors")
	}
}

func TestAddReplacesSamePath(t *testing.T) {
	l := ledger.New()
	l.Add(ledger.Record{FileID: "1", FilePath: "a.wem", FileHash: "aa"})
	l.Add(ledger.Record{FileID: "2", FilePath: "b.wem", FileHash: "bb"})
	l.Add(ledger.Record{FileID: "3", FilePath: "a.wem", FileHash: "cc"})

	if l.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", l.Len())
	}
	records := l.Records()
	if records[0].FileID != "3" || records[0].FileHash != "cc" {
		t.Fatalf("expected replacement in place, got %#v", records[0])
	}
	if rec, ok := l.Lookup("b.wem"); !ok || rec.FileHash != "bb" {
		t.Fatalf("lookup b.wem = %#v, %v", rec, ok)
	}
	if _, ok := l.Lookup("c.wem"); ok {
		t.Fatal("unexpected record for c.wem")
	}
}

func TestSaveRoundTripsFieldNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "ExtractedAudio.json")
	l := ledger.New()
	l.Add(ledger.Record{FileID: "1001", FilePath: `Music\Theme.wem`, FileHash: "deadbeef"})

	if err := ledger.Save(path, l); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw []map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("decode saved ledger: %v", err)
	}
	if len(raw) != 1 || raw[0]["FileId"] != "1001" || raw[0]["FilePath"] != `Music\Theme.wem` || raw[0]["FileHash"] != "deadbeef" {
		t.Fatalf("unexpected saved ledger %s", data)
	}

	reloaded, err := ledger.LoadWithError(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if rec, ok := reloaded.Lookup(`Music\Theme.wem`); !ok || rec.FileID != "1001" {
		t.Fatalf("reloaded record = %#v, %v", rec, ok)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestSaveEmptyWritesArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ExtractedAudio.json")
	if err := ledger.Save(path, ledger.New()); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Fatalf("expected empty array, got %q", data)
	}
}

func TestSaveFailureKeepsPreviousLedger(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ExtractedAudio.json")
	if err := os.WriteFile(path, []byte(`[{"FileId":"1","FilePath":"a.wem","FileHash":"aa"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	// Using the ledger file as a parent directory makes the save fail.
	bad := filepath.Join(path, "nested.json")
	if err := ledger.Save(bad, ledger.New()); err == nil {
		t.Fatal("expected save into a file-as-directory to fail")
	}
	if l := ledger.Load(path); l.Len() != 1 {
		t.Fatalf("previous ledger should be intact, got %d records", l.Len())
	}
}
