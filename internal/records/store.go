// Package records holds the editable route list for a working session.
package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Veraticus/climbr/internal/grade"
	"github.com/Veraticus/climbr/internal/model"
)

var (
	// ErrIndexOutOfRange is returned when a patch targets a missing record.
	ErrIndexOutOfRange = errors.New("route index out of range")
	// ErrInvalidGrade is returned when a patch names a grade outside its scale.
	ErrInvalidGrade = errors.New("invalid grade")
)

// Store is an ordered list of route records. It is safe for concurrent use.
type Store struct {
	now     func() time.Time
	records []model.RouteRecord
	mu      sync.RWMutex
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used to stamp export documents.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReplaceAll discards every record and loads one fresh record per detection,
// in order, with empty grades and notes.
func (s *Store) ReplaceAll(detections []model.RouteDetection) {
	next := make([]model.RouteRecord, len(detections))
	for i, d := range detections {
		next[i] = model.NewRouteRecord(d)
	}

	s.mu.Lock()
	s.records = next
	s.mu.Unlock()
}

// Clear removes every record.
func (s *Store) Clear() {
	s.mu.Lock()
	s.records = nil
	s.mu.Unlock()
}

// Patch merges p into the record at index and returns the updated record.
//
// Setting a non-empty V grade without an explicit Font grade also sets the
// Font grade to its conversion. An explicit Font grade always wins, and an
// empty V grade leaves the Font grade alone.
func (s *Store) Patch(index int, p model.Patch) (model.RouteRecord, error) {
	if err := validatePatch(p); err != nil {
		return model.RouteRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.records) {
		return model.RouteRecord{}, fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(s.records))
	}

	rec := s.records[index]
	if p.GradeV != nil {
		rec.GradeV = *p.GradeV
		if *p.GradeV != "" && p.GradeFont == nil {
			rec.GradeFont = grade.VToFont(*p.GradeV)
		}
	}
	if p.GradeFont != nil {
		rec.GradeFont = *p.GradeFont
	}
	if p.SetterNotes != nil {
		rec.SetterNotes = *p.SetterNotes
	}
	s.records[index] = rec

	return rec, nil
}

func validatePatch(p model.Patch) error {
	if p.GradeV != nil && *p.GradeV != "" && !grade.IsV(*p.GradeV) {
		return fmt.Errorf("%w: %q is not a V grade", ErrInvalidGrade, *p.GradeV)
	}
	if p.GradeFont != nil && *p.GradeFont != "" && !grade.IsFont(*p.GradeFont) {
		return fmt.Errorf("%w: %q is not a Font grade", ErrInvalidGrade, *p.GradeFont)
	}
	return nil
}

// Records returns a copy of every record in order.
func (s *Store) Records() []model.RouteRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.RouteRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Record returns the record at index.
func (s *Store) Record(index int) (model.RouteRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.records) {
		return model.RouteRecord{}, false
	}
	return s.records[index], true
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// ExportDocument snapshots the records, stamped with the current time.
func (s *Store) ExportDocument() model.ExportDocument {
	return model.ExportDocument{
		WallSet: s.Records(),
		Created: s.now().UTC(),
	}
}

// MarshalExport renders the export document as indented JSON.
func (s *Store) MarshalExport() ([]byte, error) {
	data, err := json.MarshalIndent(s.ExportDocument(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal wall set: %w", err)
	}
	return data, nil
}

// ClipboardText renders the bare record array as indented JSON, without the
// export envelope or timestamp.
func (s *Store) ClipboardText() (string, error) {
	data, err := json.MarshalIndent(s.Records(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal routes: %w", err)
	}
	return string(data), nil
}
