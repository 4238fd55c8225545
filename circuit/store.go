//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"github.com/markkurossi/halfgates/ot"
)

// Store holds one label for each circuit wire. The store is sized
// when it is created and it is never resized.
type Store struct {
	labels []ot.Label
}

// NewStore creates a new store for n wires.
func NewStore(n int) *Store {
	return &Store{
		labels: make([]ot.Label, n),
	}
}

// Len returns the number of wires in the store.
func (s *Store) Len() int {
	return len(s.labels)
}

// Get returns the label of the wire w.
func (s *Store) Get(w Wire) (ot.Label, error) {
	if int(w) >= len(s.labels) {
		return ot.Label{}, indexErrorf("wire %d out of range [0...%d)",
			w, len(s.labels))
	}
	return s.labels[w], nil
}

// Set sets the label of the wire w.
func (s *Store) Set(w Wire, l ot.Label) error {
	if int(w) >= len(s.labels) {
		return indexErrorf("wire %d out of range [0...%d)", w, len(s.labels))
	}
	s.labels[w] = l
	return nil
}

// Clear zeroes all labels.
func (s *Store) Clear() {
	clear(s.labels)
}
