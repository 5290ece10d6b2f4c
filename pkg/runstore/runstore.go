// Package runstore keeps a book of completed maze runs so an optimized
// path can be replayed later without exploring again.
package runstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/teslashibe/go-mazerunner/pkg/decision"
	"github.com/teslashibe/go-mazerunner/pkg/maze"
	"github.com/teslashibe/go-mazerunner/pkg/pathmem"
	"github.com/teslashibe/go-mazerunner/pkg/sensor"
)

// ErrNotFound is returned when no usable run is stored for a maze.
var ErrNotFound = errors.New("runstore: no run found")

// DefaultLimit is how many records a book keeps.
const DefaultLimit = 200

// Record is one completed or failed session.
type Record struct {
	RunID    string          `json:"run_id"`
	Maze     string          `json:"maze"` // label chosen by the operator
	Rule     decision.Rule   `json:"rule"`
	Line     sensor.Polarity `json:"line"`
	History  string          `json:"history"`
	Path     pathmem.Path    `json:"path"`
	Goal     bool            `json:"goal"` // replay reached the goal
	Error    string          `json:"error,omitempty"`
	Finished time.Time       `json:"finished"`
}

// Usable reports whether the record holds a path that can be replayed.
func (r Record) Usable() bool {
	if r.Error != "" || len(r.Path) == 0 {
		return false
	}
	for _, m := range r.Path {
		if m == decision.UTurn {
			return false
		}
	}
	return true
}

// FromResult builds a record from a session outcome.
func FromResult(label string, cfg maze.Config, res maze.Result, runErr error) Record {
	rec := Record{
		RunID:    res.RunID,
		Maze:     label,
		Rule:     cfg.Rule,
		Line:     cfg.Polarity,
		History:  pathmem.Path(res.History).String(),
		Path:     res.Path,
		Finished: time.Now().UTC(),
	}
	if res.Replay != nil {
		rec.Goal = res.Replay.Goal
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	return rec
}

// Book is the set of stored runs, oldest first.
type Book struct {
	Runs []Record `json:"runs"`

	store Store
	limit int
	mu    sync.RWMutex
}

// New creates a book with no persistence.
func New() *Book {
	return &Book{limit: DefaultLimit}
}

// Open creates a book backed by store and loads what it holds.
func Open(store Store) (*Book, error) {
	b := New()
	b.store = store
	if err := b.load(); err != nil {
		return nil, err
	}
	return b, nil
}

// OpenFile opens a book persisted to a JSON file.
func OpenFile(path string) (*Book, error) {
	return Open(NewJSONStore(path))
}

func (b *Book) load() error {
	data, err := b.store.Load()
	if err != nil || data == nil {
		return err
	}
	var loaded Book
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("runstore: decode: %w", err)
	}
	b.mu.Lock()
	b.Runs = loaded.Runs
	b.mu.Unlock()
	return nil
}

// Add appends a record, dropping the oldest past the limit, and saves.
func (b *Book) Add(rec Record) error {
	b.mu.Lock()
	b.Runs = append(b.Runs, rec)
	if over := len(b.Runs) - b.limit; over > 0 {
		b.Runs = append([]Record(nil), b.Runs[over:]...)
	}
	b.mu.Unlock()
	return b.Save()
}

// Save persists the book. Books without a store are not persisted.
func (b *Book) Save() error {
	if b.store == nil {
		return nil
	}
	b.mu.RLock()
	data, err := json.MarshalIndent(b, "", "  ")
	b.mu.RUnlock()
	if err != nil {
		return err
	}
	return b.store.Save(data)
}

// Close releases the store.
func (b *Book) Close() error {
	if b.store == nil {
		return nil
	}
	return b.store.Close()
}

// List returns a copy of the runs for label, newest first. An empty label
// matches every maze.
func (b *Book) List(label string) []Record {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Record
	for i := len(b.Runs) - 1; i >= 0; i-- {
		if label == "" || b.Runs[i].Maze == label {
			out = append(out, b.Runs[i])
		}
	}
	return out
}

// Best returns the usable run for label with the shortest path, preferring
// runs whose replay reached the goal and then the most recent.
func (b *Book) Best(label string) (Record, error) {
	var best Record
	found := false
	for _, r := range b.List(label) {
		if !r.Usable() {
			continue
		}
		if !found || better(r, best) {
			best, found = r, true
		}
	}
	if !found {
		return Record{}, fmt.Errorf("%w for maze %q", ErrNotFound, label)
	}
	return best, nil
}

// better assumes candidates arrive newest first, so ties keep the newer.
func better(r, than Record) bool {
	if r.Goal != than.Goal {
		return r.Goal
	}
	return len(r.Path) < len(than.Path)
}
