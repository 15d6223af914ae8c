// Package history keeps a small JSON log of finished generation runs in the
// workspace metadata directory.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Entry records one generation run.
type Entry struct {
	ID         string    `json:"id"`
	Mode       string    `json:"mode"`
	Opposite   bool      `json:"opposite"`
	Seed       int64     `json:"seed"`
	Frames     int       `json:"frames"`
	Output     string    `json:"output,omitempty"`
	URL        string    `json:"url,omitempty"`
	Bucket     string    `json:"bucket,omitempty"`
	Key        string    `json:"key,omitempty"`
	Track      string    `json:"audio_track,omitempty"`
	ConfigHash string    `json:"config_hash"`
	CreatedAt  time.Time `json:"created_at"`
	DurationS  float64   `json:"duration_s"`
}

// Log is the on-disk run history, oldest first.
type Log struct {
	Runs []Entry `json:"runs"`

	// corrupt is set when the file on disk could not be parsed; Save moves
	// it aside instead of overwriting it.
	corrupt bool
}

// MaxEntries caps how many runs are kept.
const MaxEntries = 200

// NewID returns a fresh run identifier.
func NewID() string {
	return uuid.NewString()
}

// Load reads the history from path. A missing file is an empty log. A
// file that does not parse is also returned as an empty log, marked so that
// the next Save keeps the unreadable copy. Other read errors are returned.
func Load(path string) (*Log, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Log{}, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}

	var l Log
	if err := json.Unmarshal(data, &l); err != nil {
		return &Log{corrupt: true}, nil
	}
	return &l, nil
}

// Corrupt reports whether the loaded file could not be parsed.
func (l *Log) Corrupt() bool { return l.corrupt }

// FindKey returns the most recent run that uploaded to bucket/key.
func (l *Log) FindKey(bucket, key string) (Entry, bool) {
	if bucket == "" || key == "" {
		return Entry{}, false
	}
	for i := len(l.Runs) - 1; i >= 0; i-- {
		if r := l.Runs[i]; r.URL != "" && r.Bucket == bucket && r.Key == key {
			return r, true
		}
	}
	return Entry{}, false
}

// Append adds e, trimming the oldest runs beyond MaxEntries.
func (l *Log) Append(e Entry) {
	if e.ID == "" {
		e.ID = NewID()
	}
	l.Runs = append(l.Runs, e)
	if extra := len(l.Runs) - MaxEntries; extra > 0 {
		l.Runs = append([]Entry(nil), l.Runs[extra:]...)
	}
}

// Latest returns up to n runs, newest first.
func (l *Log) Latest(n int) []Entry {
	if n <= 0 || n > len(l.Runs) {
		n = len(l.Runs)
	}
	out := make([]Entry, 0, n)
	for i := len(l.Runs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, l.Runs[i])
	}
	return out
}

// Save writes the history atomically to path.
func (l *Log) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	if l.corrupt {
		aside := path + ".corrupt-" + time.Now().UTC().Format("20060102T150405")
		if err := os.Rename(path, aside); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("move corrupt history aside: %w", err)
		}
		l.corrupt = false
	}

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// Record loads the history at path, appends e and saves it.
func Record(path string, e Entry) error {
	l, err := Load(path)
	if err != nil {
		return err
	}
	l.Append(e)
	return l.Save(path)
}
