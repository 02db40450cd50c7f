package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEdge is returned when an edge references a node outside the store.
	ErrInvalidEdge = errors.New("graph: edge index out of range")
	// ErrCountMismatch is returned when the declared and actual book counts differ.
	ErrCountMismatch = errors.New("graph: book count mismatch")
)

// BookRecord is one book as supplied by a loader, in storage order.
type BookRecord struct {
	ID             uint64
	AuthorID       uint64
	PublisherID    uint64
	AuthorEdges    []uint32
	CitationEdges  []uint32
	PublisherEdges []uint32
}

// Builder accumulates book records and produces a validated Store.
type Builder struct {
	declared int
	records  []BookRecord
}

// NewBuilder creates a Builder for a graph declared to hold n books.
func NewBuilder(n int) *Builder {
	return &Builder{
		declared: n,
		records:  make([]BookRecord, 0, n),
	}
}

// Add appends the next record. Records are stored in the order they are added.
func (b *Builder) Add(rec BookRecord) {
	b.records = append(b.records, rec)
}

// Build validates every edge index and returns the immutable Store.
func (b *Builder) Build() (*Store, error) {
	if len(b.records) != b.declared {
		return nil, fmt.Errorf("%w: declared %d, got %d", ErrCountMismatch, b.declared, len(b.records))
	}
	n := uint32(len(b.records))

	books := make([]Book, n)
	stats := BuildStats{NumBooks: int(n)}
	seen := make(map[uint64]struct{}, n)

	for i := range b.records {
		rec := &b.records[i]
		var err error
		book := &books[i]
		book.ID = rec.ID
		book.AuthorID = rec.AuthorID
		book.PublisherID = rec.PublisherID
		book.Index = NodeIndex(i)

		if book.AuthorEdges, err = toIndices(rec.AuthorEdges, n); err != nil {
			return nil, fmt.Errorf("book %d (id %d) author edges: %w", i, rec.ID, err)
		}
		if book.CitationEdges, err = toIndices(rec.CitationEdges, n); err != nil {
			return nil, fmt.Errorf("book %d (id %d) citation edges: %w", i, rec.ID, err)
		}
		if book.PublisherEdges, err = toIndices(rec.PublisherEdges, n); err != nil {
			return nil, fmt.Errorf("book %d (id %d) publisher edges: %w", i, rec.ID, err)
		}

		stats.AuthorEdges += len(book.AuthorEdges)
		stats.CitationEdges += len(book.CitationEdges)
		stats.PublisherEdges += len(book.PublisherEdges)
		if _, dup := seen[rec.ID]; dup {
			stats.DuplicateIDs++
		} else {
			seen[rec.ID] = struct{}{}
		}
	}

	return &Store{books: books, stats: stats}, nil
}

// toIndices converts raw edge values into checked node indices.
func toIndices(raw []uint32, n uint32) ([]NodeIndex, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]NodeIndex, len(raw))
	for i, v := range raw {
		if v >= n {
			return nil, fmt.Errorf("%w: %d >= %d", ErrInvalidEdge, v, n)
		}
		out[i] = NodeIndex(v)
	}
	return out, nil
}

// FromRecords builds a Store from records already in storage order.
func FromRecords(recs []BookRecord) (*Store, error) {
	b := NewBuilder(len(recs))
	for _, r := range recs {
		b.Add(r)
	}
	return b.Build()
}
