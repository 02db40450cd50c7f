package graph

import (
	"fmt"
	"iter"
)

// NodeIndex is a storage position in a Store. Every NodeIndex held by a
// Store has been checked against its node count when the Store was built.
type NodeIndex uint32

// NoNode marks an absent predecessor or an unset slot.
const NoNode = ^NodeIndex(0)

// Relation selects one or more of the three edge lists of a book.
type Relation uint8

const (
	RelAuthor Relation = 1 << iota
	RelCitation
	RelPublisher

	RelAll = RelAuthor | RelCitation | RelPublisher
)

// relationOrder is the order in which traversals expand edge lists.
var relationOrder = [...]Relation{RelAuthor, RelCitation, RelPublisher}

// Relations returns the single-relation flags set in r, in traversal order.
func (r Relation) Relations() []Relation {
	out := make([]Relation, 0, len(relationOrder))
	for _, rel := range relationOrder {
		if r&rel != 0 {
			out = append(out, rel)
		}
	}
	return out
}

func (r Relation) String() string {
	switch r {
	case RelAuthor:
		return "author"
	case RelCitation:
		return "citation"
	case RelPublisher:
		return "publisher"
	case RelAll:
		return "all"
	}
	return fmt.Sprintf("relation(%d)", uint8(r))
}

// ParseRelation maps a relation name ("author", "citation", "publisher" or
// "all") to its flag.
func ParseRelation(s string) (Relation, error) {
	switch s {
	case "author":
		return RelAuthor, nil
	case "citation":
		return RelCitation, nil
	case "publisher":
		return RelPublisher, nil
	case "all":
		return RelAll, nil
	}
	return 0, fmt.Errorf("unknown relation %q", s)
}

// Book is a node of the book graph. Edge lists hold storage indices into the
// owning Store, not book ids.
type Book struct {
	ID          uint64
	AuthorID    uint64
	PublisherID uint64
	Index       NodeIndex

	AuthorEdges    []NodeIndex
	CitationEdges  []NodeIndex
	PublisherEdges []NodeIndex
}

// Edges returns the edge list for a single relation.
func (b *Book) Edges(rel Relation) []NodeIndex {
	switch rel {
	case RelAuthor:
		return b.AuthorEdges
	case RelCitation:
		return b.CitationEdges
	case RelPublisher:
		return b.PublisherEdges
	}
	panic(fmt.Sprintf("graph: Edges called with composite relation %s", rel))
}

// Store is the immutable node table. It is safe for concurrent readers.
type Store struct {
	books []Book
	stats BuildStats
}

// BuildStats summarizes a Store at build time.
type BuildStats struct {
	NumBooks       int
	AuthorEdges    int
	CitationEdges  int
	PublisherEdges int
	DuplicateIDs   int
}

// Len returns the number of books.
func (s *Store) Len() int { return len(s.books) }

// Book returns the book at idx. It panics if idx is out of range.
func (s *Store) Book(idx NodeIndex) *Book {
	if int(idx) >= len(s.books) {
		panic(fmt.Sprintf("graph: node index %d out of range [0, %d)", idx, len(s.books)))
	}
	return &s.books[idx]
}

// Books iterates the books in storage order.
func (s *Store) Books() iter.Seq[*Book] {
	return func(yield func(*Book) bool) {
		for i := range s.books {
			if !yield(&s.books[i]) {
				return
			}
		}
	}
}

// Stats returns the counts computed when the Store was built.
func (s *Store) Stats() BuildStats { return s.stats }

// EdgeCount returns the total number of edges across the selected relations.
func (s *Store) EdgeCount(rel Relation) int {
	n := 0
	if rel&RelAuthor != 0 {
		n += s.stats.AuthorEdges
	}
	if rel&RelCitation != 0 {
		n += s.stats.CitationEdges
	}
	if rel&RelPublisher != 0 {
		n += s.stats.PublisherEdges
	}
	return n
}

// Connected reports whether v appears in u's edge list for any relation in rel.
func (s *Store) Connected(u, v NodeIndex, rel Relation) bool {
	b := s.Book(u)
	for _, r := range rel.Relations() {
		for _, w := range b.Edges(r) {
			if w == v {
				return true
			}
		}
	}
	return false
}
