package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Record maps one output path to the media id and content hash that produced it.
type Record struct {
	FileID   string `json:"FileId"`
	FilePath string `json:"FilePath"`
	FileHash string `json:"FileHash"`
}

// Ledger is an ordered set of records, unique by FilePath.
type Ledger struct {
	records []Record
	index   map[string]int
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{index: make(map[string]int)}
}

// Load reads the ledger at path. Missing, empty and unparsable files all
// yield an empty ledger.
func Load(path string) *Ledger {
	l, _ := LoadWithError(path)
	return l
}

// LoadWithError behaves like Load but also reports why the file could not be
// used. The returned ledger is never nil. A missing or empty file is not an
// error.
func LoadWithError(path string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(), nil
		}
		return New(), fmt.Errorf("read ledger: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return New(), nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return New(), fmt.Errorf("parse ledger: %w", err)
	}

	l := New()
	for _, r := range records {
		l.Add(r)
	}
	return l, nil
}

// Lookup returns the record for path.
func (l *Ledger) Lookup(path string) (Record, bool) {
	if l == nil {
		return Record{}, false
	}
	idx, ok := l.index[path]
	if !ok {
		return Record{}, false
	}
	return l.records[idx], true
}

// Add appends r, or replaces the existing record with the same FilePath in place.
func (l *Ledger) Add(r Record) {
	if idx, ok := l.index[r.FilePath]; ok {
		l.records[idx] = r
		return
	}
	l.index[r.FilePath] = len(l.records)
	l.records = append(l.records, r)
}

// Records returns a copy of the records in insertion order.
func (l *Ledger) Records() []Record {
	if l == nil {
		return nil
	}
	return slices.Clone(l.records)
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.records)
}

// Save writes l to path atomically: the JSON is written and synced to a
// temporary file in the same directory, which is then renamed over path.
func Save(path string, l *Ledger) error {
	records := l.Records()
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
