package filter

import (
	"context"
	"errors"
	"fmt"
)

// Set mutation errors.
var (
	// ErrConfirmationRequired indicates Clear was called on a set large
	// enough to require explicit user confirmation.
	ErrConfirmationRequired = errors.New("clearing this many filters requires confirmation")

	// ErrIndexOutOfRange indicates RemoveAt with an invalid index.
	ErrIndexOutOfRange = errors.New("filter index out of range")
)

// clearConfirmThreshold is the set size above which Clear demands
// explicit confirmation.
const clearConfirmThreshold = 3

// ChangeFunc is invoked after every Set mutation with the full current
// predicate list, in application order. The usual implementation issues
// a re-query against the data source. If it returns an error the
// mutation is rolled back, so the caller can retry without losing the
// previous filter state.
type ChangeFunc func(ctx context.Context, predicates []Predicate) error

// Set is the ordered collection of applied filter predicates.
//
// Insertion order is display order. Predicates on the same column are
// legal and are not merged; the query backend combines all predicates
// conjunctively. Owned by a single session goroutine.
type Set struct {
	predicates []Predicate
	onChange   ChangeFunc
}

// NewSet creates an empty filter set. onChange may be nil.
func NewSet(onChange ChangeFunc) *Set {
	return &Set{onChange: onChange}
}

// Len returns the number of active predicates.
func (s *Set) Len() int { return len(s.predicates) }

// Predicates returns a copy of the active predicates in application order.
func (s *Set) Predicates() []Predicate {
	out := make([]Predicate, len(s.predicates))
	copy(out, s.predicates)
	return out
}

// Add appends a predicate and triggers the change callback. On callback
// failure the predicate is not retained.
func (s *Set) Add(ctx context.Context, p Predicate) error {
	s.predicates = append(s.predicates, p)
	if err := s.notify(ctx); err != nil {
		s.predicates = s.predicates[:len(s.predicates)-1]
		return err
	}
	return nil
}

// RemoveAt removes the predicate at the given index and triggers the
// change callback. On callback failure the predicate is restored.
func (s *Set) RemoveAt(ctx context.Context, index int) error {
	if index < 0 || index >= len(s.predicates) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	removed := s.predicates[index]
	s.predicates = append(s.predicates[:index], s.predicates[index+1:]...)
	if err := s.notify(ctx); err != nil {
		s.predicates = append(s.predicates, Predicate{})
		copy(s.predicates[index+1:], s.predicates[index:])
		s.predicates[index] = removed
		return err
	}
	return nil
}

// Clear removes all predicates and triggers the change callback.
// Clearing more than three predicates at once is considered high
// friction and returns ErrConfirmationRequired; use ClearConfirmed
// after the user confirmed. On callback failure the set is restored.
func (s *Set) Clear(ctx context.Context) error {
	if len(s.predicates) > clearConfirmThreshold {
		return ErrConfirmationRequired
	}
	return s.ClearConfirmed(ctx)
}

// ClearConfirmed removes all predicates without the confirmation check.
func (s *Set) ClearConfirmed(ctx context.Context) error {
	if len(s.predicates) == 0 {
		return nil
	}
	prev := s.predicates
	s.predicates = nil
	if err := s.notify(ctx); err != nil {
		s.predicates = prev
		return err
	}
	return nil
}

func (s *Set) notify(ctx context.Context) error {
	if s.onChange == nil {
		return nil
	}
	return s.onChange(ctx, s.Predicates())
}
