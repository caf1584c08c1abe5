package annotation

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrInvalidShape is returned when an annotation lacks a click point or
	// has an unknown kind.
	ErrInvalidShape = errors.New("annotation: invalid shape")

	// ErrNotFound is returned when no annotation has the requested id.
	ErrNotFound = errors.New("annotation: not found")

	// ErrDuplicateID is returned when an id is already in use.
	ErrDuplicateID = errors.New("annotation: duplicate id")
)

// Store holds annotations in insertion order, which is also the z-order used
// for drawing. The zero value is not usable; call NewStore.
//
// Store is not safe for concurrent use. All mutations happen on the event
// thread that owns it.
type Store struct {
	items  []Annotation
	index  map[string]int
	nextID func() string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithIDFunc replaces the id generator. The function must never return an id
// that was returned before.
func WithIDFunc(f func() string) StoreOption {
	return func(s *Store) { s.nextID = f }
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		index:  make(map[string]int),
		nextID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add appends an annotation and returns its id. An id is generated when the
// annotation has none.
func (s *Store) Add(a Annotation) (string, error) {
	if err := validate(a); err != nil {
		return "", err
	}
	a = a.Clone()
	if a.ID == "" {
		a.ID = s.newID(nil)
	} else if _, exists := s.index[a.ID]; exists {
		return "", fmt.Errorf("%w: %s", ErrDuplicateID, a.ID)
	}
	s.index[a.ID] = len(s.items)
	s.items = append(s.items, a)
	return a.ID, nil
}

// SetLabel replaces the label of the annotation with the given id.
func (s *Store) SetLabel(id, label string) error {
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.items[i].Label = label
	return nil
}

// RemoveLast pops the most recently appended annotation. It returns false if
// the store was empty.
func (s *Store) RemoveLast() (Annotation, bool) {
	if len(s.items) == 0 {
		return Annotation{}, false
	}
	last := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	delete(s.index, last.ID)
	return last, true
}

// Remove deletes the annotation with the given id, keeping the order of the
// remaining ones.
func (s *Store) Remove(id string) error {
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.reindex()
	return nil
}

// ReplaceAll swaps the whole collection. The list is validated first; on
// error the store is left unchanged. Entries without an id get a fresh one.
func (s *Store) ReplaceAll(list []Annotation) error {
	taken := make(map[string]bool, len(list))
	for i, a := range list {
		if err := validate(a); err != nil {
			return fmt.Errorf("annotation %d: %w", i, err)
		}
		if a.ID == "" {
			continue
		}
		if taken[a.ID] {
			return fmt.Errorf("annotation %d: %w: %s", i, ErrDuplicateID, a.ID)
		}
		taken[a.ID] = true
	}

	items := make([]Annotation, len(list))
	for i, a := range list {
		items[i] = a.Clone()
		if items[i].ID == "" {
			items[i].ID = s.newID(taken)
			taken[items[i].ID] = true
		}
	}
	s.items = items
	s.reindex()
	return nil
}

// Get returns a copy of the annotation with the given id.
func (s *Store) Get(id string) (Annotation, bool) {
	i, ok := s.index[id]
	if !ok {
		return Annotation{}, false
	}
	return s.items[i].Clone(), true
}

// List returns a copy of all annotations in insertion order.
func (s *Store) List() []Annotation {
	out := make([]Annotation, len(s.items))
	for i, a := range s.items {
		out[i] = a.Clone()
	}
	return out
}

// Len returns the number of annotations.
func (s *Store) Len() int {
	return len(s.items)
}

func validate(a Annotation) error {
	if !a.Complete() {
		return fmt.Errorf("%w: anchor and extent are required", ErrInvalidShape)
	}
	if !a.Kind.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidShape, a.Kind)
	}
	return nil
}

func (s *Store) newID(taken map[string]bool) string {
	for {
		id := s.nextID()
		if _, exists := s.index[id]; !exists && !taken[id] {
			return id
		}
	}
}

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.items))
	for i, a := range s.items {
		s.index[a.ID] = i
	}
}
