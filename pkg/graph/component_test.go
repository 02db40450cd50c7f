package graph

import "testing"

func TestUnionFind(t *testing.T) {
	uf := NewUnionFind(5)

	// Initially all separate.
	for i := range uint32(5) {
		if uf.Find(i) != i {
			t.Errorf("Find(%d) = %d, want %d", i, uf.Find(i), i)
		}
	}

	// Union 0 and 1.
	uf.Union(0, 1)
	if uf.Find(0) != uf.Find(1) {
		t.Error("0 and 1 should be in same set")
	}

	// Union 2 and 3.
	uf.Union(2, 3)
	if uf.Find(2) != uf.Find(3) {
		t.Error("2 and 3 should be in same set")
	}

	// 0 and 2 should be different.
	if uf.Find(0) == uf.Find(2) {
		t.Error("0 and 2 should be in different sets")
	}

	// Union the two groups.
	if !uf.Union(1, 3) {
		t.Error("Union(1, 3) should merge two sets")
	}
	if uf.Find(0) != uf.Find(3) {
		t.Error("0 and 3 should now be in same set")
	}
	if uf.Union(0, 2) {
		t.Error("Union(0, 2) should report already merged")
	}
	if got := uf.SetSize(2); got != 4 {
		t.Errorf("SetSize(2) = %d, want 4", got)
	}
	if got := uf.SetSize(4); got != 1 {
		t.Errorf("SetSize(4) = %d, want 1", got)
	}
}

func TestComponents(t *testing.T) {
	// Component A: 0 -cites-> 1, 1 -author-> 2 (3 nodes)
	// Component B: 3 -publisher-> 4 (2 nodes)
	// Component C: 5 alone
	s, err := FromRecords([]BookRecord{
		{ID: 0, CitationEdges: []uint32{1}},
		{ID: 1, AuthorEdges: []uint32{2}},
		{ID: 2},
		{ID: 3, PublisherEdges: []uint32{4}},
		{ID: 4},
		{ID: 5},
	})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}

	c := NewComponents(s, RelAll)
	if c.Count() != 3 {
		t.Fatalf("Count = %d, want 3", c.Count())
	}
	if !c.Same(0, 2) {
		t.Error("0 and 2 should share a component")
	}
	if c.Same(2, 3) {
		t.Error("2 and 3 should be in different components")
	}
	id, size := c.Largest()
	if size != 3 || id != c.ComponentOf(0) {
		t.Errorf("Largest = (%d, %d), want (%d, 3)", id, size, c.ComponentOf(0))
	}
	members := c.Members(c.ComponentOf(3))
	if len(members) != 2 || members[0] != 3 || members[1] != 4 {
		t.Errorf("Members = %v, want [3 4]", members)
	}

	// Citation edges alone split the author-linked node 2 off.
	cc := NewComponents(s, RelCitation)
	if cc.Count() != 5 {
		t.Errorf("citation Count = %d, want 5", cc.Count())
	}
	if cc.Same(1, 2) {
		t.Error("1 and 2 are only author-linked")
	}
	if cc.Relation() != RelCitation {
		t.Errorf("Relation = %s", cc.Relation())
	}
}

func TestComponentsEmptyGraph(t *testing.T) {
	s, _ := FromRecords(nil)
	c := NewComponents(s, RelAll)
	if c.Count() != 0 {
		t.Errorf("Count = %d, want 0", c.Count())
	}
	if _, size := c.Largest(); size != 0 {
		t.Errorf("Largest size = %d, want 0", size)
	}
}

func TestFilterToComponent(t *testing.T) {
	// 0 -cites-> 2, 2 -author-> 4, 1 -publisher-> 3; 4 also cites 1.
	s, err := FromRecords([]BookRecord{
		{ID: 100, CitationEdges: []uint32{2}},
		{ID: 101, PublisherEdges: []uint32{3}},
		{ID: 102, AuthorEdges: []uint32{4}},
		{ID: 103},
		{ID: 104, CitationEdges: []uint32{1}},
	})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}

	// Author+citation components: {0, 2, 4, 1} and {3}.
	c := NewComponents(s, RelAuthor|RelCitation)
	id, size := c.Largest()
	if size != 4 {
		t.Fatalf("largest size = %d, want 4", size)
	}

	filtered, err := FilterToComponent(s, c.Members(id))
	if err != nil {
		t.Fatalf("FilterToComponent: %v", err)
	}
	if filtered.Len() != 4 {
		t.Fatalf("Len = %d, want 4", filtered.Len())
	}

	wantIDs := []uint64{100, 101, 102, 104}
	for i, want := range wantIDs {
		if got := filtered.Book(NodeIndex(i)).ID; got != want {
			t.Errorf("book %d ID = %d, want %d", i, got, want)
		}
	}
	// 102's author edge to 104 becomes 2 -> 3.
	if e := filtered.Book(2).AuthorEdges; len(e) != 1 || e[0] != 3 {
		t.Errorf("AuthorEdges = %v, want [3]", e)
	}
	// 101's publisher edge pointed outside and is dropped.
	if e := filtered.Book(1).PublisherEdges; len(e) != 0 {
		t.Errorf("PublisherEdges = %v, want []", e)
	}
	if filtered.Stats().PublisherEdges != 0 {
		t.Errorf("PublisherEdges stat = %d, want 0", filtered.Stats().PublisherEdges)
	}
}
