// Package search locates the first book whose id, author id or publisher id
// equals a value. All strategies agree: the match with the lowest storage
// index wins.
package search

import (
	"fmt"

	"bookworm/pkg/graph"
)

// Kind selects which id field of a book a lookup compares.
type Kind uint8

const (
	BookID Kind = iota
	AuthorID
	PublisherID

	numKinds
)

func (k Kind) String() string {
	switch k {
	case BookID:
		return "book"
	case AuthorID:
		return "author"
	case PublisherID:
		return "publisher"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Searcher finds the first book, in storage order, whose field of the given
// kind equals value.
type Searcher interface {
	Find(kind Kind, value uint64) (graph.NodeIndex, bool)
}

// field returns the id of b selected by kind.
func field(b *graph.Book, kind Kind) uint64 {
	switch kind {
	case BookID:
		return b.ID
	case AuthorID:
		return b.AuthorID
	case PublisherID:
		return b.PublisherID
	}
	panic(fmt.Sprintf("search: unknown kind %d", kind))
}

// scan checks [lo, hi) in order and returns the first match.
func scan(s *graph.Store, kind Kind, value uint64, lo, hi int) (graph.NodeIndex, bool) {
	for i := lo; i < hi; i++ {
		idx := graph.NodeIndex(i)
		if field(s.Book(idx), kind) == value {
			return idx, true
		}
	}
	return graph.NoNode, false
}

// Linear scans the whole store on the calling goroutine.
type Linear struct {
	store *graph.Store
}

// NewLinear returns a linear searcher over s.
func NewLinear(s *graph.Store) *Linear {
	return &Linear{store: s}
}

// Find implements Searcher.
func (l *Linear) Find(kind Kind, value uint64) (graph.NodeIndex, bool) {
	return scan(l.store, kind, value, 0, l.store.Len())
}
