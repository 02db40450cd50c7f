package graph

import (
	"errors"
	"testing"
)

func TestBuildSimpleGraph(t *testing.T) {
	// Citation chain 0 -> 1 -> 2, authors 0 <-> 1, one publisher for all.
	s, err := FromRecords([]BookRecord{
		{ID: 100, AuthorID: 7, PublisherID: 9, AuthorEdges: []uint32{1}, CitationEdges: []uint32{1}, PublisherEdges: []uint32{1, 2}},
		{ID: 200, AuthorID: 7, PublisherID: 9, AuthorEdges: []uint32{0}, CitationEdges: []uint32{2}, PublisherEdges: []uint32{0, 2}},
		{ID: 300, AuthorID: 8, PublisherID: 9, PublisherEdges: []uint32{0, 1}},
	})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}

	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
	for i := 0; i < s.Len(); i++ {
		if got := s.Book(NodeIndex(i)).Index; got != NodeIndex(i) {
			t.Errorf("Book(%d).Index = %d", i, got)
		}
	}

	stats := s.Stats()
	if stats.AuthorEdges != 2 || stats.CitationEdges != 2 || stats.PublisherEdges != 6 {
		t.Errorf("stats = %+v, want 2/2/6 edges", stats)
	}
	if got := s.EdgeCount(RelAll); got != 10 {
		t.Errorf("EdgeCount(all) = %d, want 10", got)
	}
	if got := s.EdgeCount(RelAuthor | RelCitation); got != 4 {
		t.Errorf("EdgeCount(author|citation) = %d, want 4", got)
	}

	if !s.Connected(0, 1, RelCitation) {
		t.Error("0 -> 1 should be a citation edge")
	}
	if s.Connected(1, 0, RelCitation) {
		t.Error("1 -> 0 should not be a citation edge")
	}
	if !s.Connected(1, 0, RelAll) {
		t.Error("1 -> 0 should be connected through author edges")
	}
}

func TestBuildEmptyGraph(t *testing.T) {
	s, err := FromRecords(nil)
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestBuildRejectsDanglingEdge(t *testing.T) {
	_, err := FromRecords([]BookRecord{
		{ID: 1, CitationEdges: []uint32{0, 5}},
	})
	if !errors.Is(err, ErrInvalidEdge) {
		t.Fatalf("err = %v, want ErrInvalidEdge", err)
	}
}

func TestBuildCountMismatch(t *testing.T) {
	b := NewBuilder(2)
	b.Add(BookRecord{ID: 1})
	if _, err := b.Build(); !errors.Is(err, ErrCountMismatch) {
		t.Fatalf("err = %v, want ErrCountMismatch", err)
	}
}

func TestBuildCountsDuplicateIDs(t *testing.T) {
	s, err := FromRecords([]BookRecord{{ID: 5}, {ID: 5}, {ID: 6}, {ID: 5}})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	if got := s.Stats().DuplicateIDs; got != 2 {
		t.Errorf("DuplicateIDs = %d, want 2", got)
	}
}

func TestStoreBookOutOfRangePanics(t *testing.T) {
	s, _ := FromRecords([]BookRecord{{ID: 1}})
	defer func() {
		if recover() == nil {
			t.Error("Book(1) on a one-book store should panic")
		}
	}()
	s.Book(1)
}

func TestRelationHelpers(t *testing.T) {
	if got := RelAll.Relations(); len(got) != 3 || got[0] != RelAuthor || got[2] != RelPublisher {
		t.Errorf("RelAll.Relations() = %v", got)
	}
	for _, name := range []string{"author", "citation", "publisher", "all"} {
		rel, err := ParseRelation(name)
		if err != nil {
			t.Fatalf("ParseRelation(%q): %v", name, err)
		}
		if rel.String() != name {
			t.Errorf("ParseRelation(%q).String() = %q", name, rel.String())
		}
	}
	if _, err := ParseRelation("sequel"); err == nil {
		t.Error("ParseRelation(sequel) should fail")
	}
}
