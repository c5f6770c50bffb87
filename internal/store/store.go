// Package store provides the file backed record store used by every inventory kind.
package store

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	perrors "github.com/abgdnv/inventory/internal/errors"
	"github.com/abgdnv/inventory/internal/record"
	"github.com/google/renameio/v2"
)

const (
	filePerm = 0o644
	// maxLineBytes bounds a single record line. Longer lines are skipped.
	maxLineBytes = 64 << 10
)

// Store is an ordered collection of records persisted as a text file,
// one record per line. The whole file is rewritten after every mutation.
type Store struct {
	mu      sync.RWMutex
	path    string
	records []record.Record // insertion order
	nextID  int
	skipped int
	// dirty is set while the file lags behind records.
	dirty  bool
	logger *slog.Logger
}

// Changes describes an edit. Zero values keep the current field.
type Changes struct {
	Name     string
	Quantity int
	Price    float64
}

// IsZero reports whether c changes nothing.
func (c Changes) IsZero() bool {
	return c.Name == "" && c.Quantity == 0 && c.Price == 0
}

// New creates an empty store persisting to path.
func New(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		nextID: 1,
		logger: logger.With("component", "store", "path", path),
	}
}

// Load reads the store from path. It never fails: a missing or unreadable
// file gives an empty store, and malformed or duplicate lines are skipped.
func Load(path string, logger *slog.Logger) *Store {
	s := New(path, logger)

	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("Can't open inventory file, starting with an empty store", "error", err)
		}
		return s
	}
	defer f.Close()

	s.read(f)
	s.logger.Debug("Inventory loaded", "records", len(s.records), "skipped", s.skipped, "next_id", s.nextID)
	return s
}

func (s *Store) read(r io.Reader) {
	seen := make(map[int]struct{})
	br := bufio.NewReader(r)
	lineNo := 0
	for {
		line, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			s.logger.Warn("Stopped reading inventory file early", "line", lineNo+1, "error", readErr)
			return
		}
		if line == "" && readErr != nil {
			return
		}
		lineNo++
		s.readLine(line, lineNo, seen)
		if readErr != nil {
			return
		}
	}
}

func (s *Store) readLine(line string, lineNo int, seen map[int]struct{}) {
	line = strings.TrimSuffix(line, "\n")
	if strings.TrimSpace(line) == "" {
		return
	}
	if len(line) > maxLineBytes {
		s.skipped++
		s.logger.Warn("Skipping oversized inventory line", "line", lineNo, "bytes", len(line))
		return
	}
	rec, err := record.Parse(line)
	if err != nil {
		s.skipped++
		s.logger.Warn("Skipping malformed inventory line", "line", lineNo, "error", err)
		return
	}
	if _, dup := seen[rec.ID]; dup {
		s.skipped++
		s.logger.Warn("Skipping inventory line with duplicate id", "line", lineNo, "ID", rec.ID)
		return
	}
	seen[rec.ID] = struct{}{}
	s.records = append(s.records, rec)
	if rec.ID >= s.nextID {
		s.nextID = rec.ID + 1
	}
}

// Add appends a new record with the next free id and saves the store.
// The record stays in memory even if saving fails.
func (s *Store) Add(name string, quantity int, price float64) (record.Record, error) {
	if !record.ValidName(name) {
		return record.Record{}, invalidName(name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := record.Record{
		ID:       s.nextID,
		Name:     name,
		Quantity: quantity,
		Price:    price,
	}
	s.nextID++
	s.records = append(s.records, rec)

	return rec, s.save()
}

// Edit applies the non-zero fields of c to the record with the given id.
// Returns ErrRecordNotFound if no record has the id.
func (s *Store) Edit(id int, c Changes) (record.Record, error) {
	if c.Name != "" && !record.ValidName(c.Name) {
		return record.Record{}, invalidName(c.Name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return record.Record{}, perrors.ErrRecordNotFound
	}
	if c.IsZero() {
		return s.records[i], nil
	}

	rec := &s.records[i]
	if c.Name != "" {
		rec.Name = c.Name
	}
	if c.Quantity != 0 {
		rec.Quantity = c.Quantity
	}
	if c.Price != 0 {
		rec.Price = c.Price
	}

	return *rec, s.save()
}

// Delete removes the record with the given id and saves the store.
// Returns ErrRecordNotFound if no record has the id.
func (s *Store) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return perrors.ErrRecordNotFound
	}
	s.records = slices.Delete(s.records, i, i+1)

	return s.save()
}

// FindByID returns the record with the given id.
func (s *Store) FindByID(id int) (record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return record.Record{}, perrors.ErrRecordNotFound
	}
	return s.records[i], nil
}

// All returns a copy of the records in insertion order.
func (s *Store) All() []record.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.records)
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// NextID returns the id the next Add will assign.
func (s *Store) NextID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID
}

// Skipped returns the number of lines ignored by Load.
func (s *Store) Skipped() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.skipped
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Save rewrites the backing file with the current records.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// Flush saves only when a previous save failed, so an untouched file,
// including lines Load skipped, is left as it is.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	return s.save()
}

// save must be called with mu held.
func (s *Store) save() error {
	s.dirty = true
	if err := writeRecords(s.path, s.records); err != nil {
		s.logger.Error("Error saving inventory file", "error", err)
		return err
	}
	s.dirty = false
	return nil
}

func invalidName(name string) error {
	return fmt.Errorf("%w: invalid record name %q", perrors.ErrValidation, name)
}

func (s *Store) indexOf(id int) int {
	return slices.IndexFunc(s.records, func(r record.Record) bool {
		return r.ID == id
	})
}

// Seed writes records to path when the file is missing or empty.
// It reports whether the file was written.
func Seed(path string, records []record.Record) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.Size() > 0:
		return false, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("failed to check inventory file: %w", err)
	}
	if err := writeRecords(path, records); err != nil {
		return false, err
	}
	return true, nil
}

// writeRecords replaces path atomically so a crash never leaves a truncated file.
func writeRecords(path string, records []record.Record) error {
	var buf bytes.Buffer
	for _, r := range records {
		buf.WriteString(record.Format(r))
		buf.WriteByte('\n')
	}
	if err := renameio.WriteFile(path, buf.Bytes(), filePerm); err != nil {
		return fmt.Errorf("%w: %s: %w", perrors.ErrPersist, path, err)
	}
	return nil
}
