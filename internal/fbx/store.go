package fbx

import (
	"errors"
	"fmt"
)

// ErrRangeOutOfBounds is returned when a store query falls outside the
// populated attributes.
var ErrRangeOutOfBounds = errors.New("fbx: attribute range out of bounds")

// Store is the flat, append-only attribute arena of one document. An
// attribute's index is its encounter order across the whole stream; nodes
// address their attributes as [start, start+count).
type Store struct {
	attrs []Attribute
}

// Row is the display form of one attribute within a node.
type Row struct {
	// Index is the position within the node's attribute list.
	Index int
	Type  string
	Value string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Append adds attrs in order and returns the index of the first one.
func (s *Store) Append(attrs ...Attribute) int {
	start := len(s.attrs)
	s.attrs = append(s.attrs, attrs...)
	return start
}

// Len reports the number of stored attributes.
func (s *Store) Len() int {
	return len(s.attrs)
}

// At returns the attribute at index i.
func (s *Store) At(i int) (Attribute, error) {
	if i < 0 || i >= len(s.attrs) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrRangeOutOfBounds, i, len(s.attrs))
	}
	return s.attrs[i], nil
}

// Range returns the attributes in [start, start+count). The returned slice
// must not be modified.
func (s *Store) Range(start, count int) ([]Attribute, error) {
	if start < 0 || count < 0 || start > len(s.attrs) || count > len(s.attrs)-start {
		return nil, fmt.Errorf("%w: [%d, %d+%d) of %d", ErrRangeOutOfBounds, start, start, count, len(s.attrs))
	}
	return s.attrs[start : start+count : start+count], nil
}

// Rows renders the attributes in [start, start+count).
func (s *Store) Rows(start, count int) ([]Row, error) {
	attrs, err := s.Range(start, count)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, len(attrs))
	for i, a := range attrs {
		rows[i] = Row{Index: i, Type: a.TypeString(), Value: a.ValueString()}
	}
	return rows, nil
}

// NodeRows renders the attributes owned by n.
func (s *Store) NodeRows(n Node) ([]Row, error) {
	return s.Rows(n.AttrStart, n.AttrCount)
}
