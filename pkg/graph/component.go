package graph

import "math"

// UnionFind is a disjoint-set forest over book indices with path halving
// and union by size.
type UnionFind struct {
	parent []uint32
	size   []uint32
}

// NewUnionFind creates n singleton sets.
func NewUnionFind(n uint32) *UnionFind {
	uf := &UnionFind{
		parent: make([]uint32, n),
		size:   make([]uint32, n),
	}
	for i := range n {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

// Find returns the root of the set holding x.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets holding x and y and reports whether they were
// distinct. The smaller set hangs under the larger one.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx, ry := uf.Find(x), uf.Find(y)
	if rx == ry {
		return false
	}
	if uf.size[rx] < uf.size[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	return true
}

// SetSize returns the number of elements in the set holding x.
func (uf *UnionFind) SetSize(x uint32) uint32 { return uf.size[uf.Find(x)] }

// Components labels every book with its weakly connected component over a
// set of relations (edges treated as undirected).
type Components struct {
	rel     Relation
	label   []uint32 // dense component id per node
	sizes   []uint32 // sizes[label] = number of nodes
	largest uint32
}

// NewComponents computes the weak components of s over rel.
func NewComponents(s *Store, rel Relation) *Components {
	n := uint32(s.Len())
	c := &Components{rel: rel}
	if n == 0 {
		return c
	}

	uf := NewUnionFind(n)
	rels := rel.Relations()
	for u := range s.books {
		b := &s.books[u]
		for _, r := range rels {
			for _, v := range b.Edges(r) {
				uf.Union(uint32(u), uint32(v))
			}
		}
	}

	// Relabel roots densely in first-seen order so labels are stable.
	dense := make([]uint32, n)
	for i := range dense {
		dense[i] = math.MaxUint32
	}
	c.label = make([]uint32, n)
	for i := range n {
		root := uf.Find(i)
		if dense[root] == math.MaxUint32 {
			dense[root] = uint32(len(c.sizes))
			c.sizes = append(c.sizes, uf.SetSize(root))
		}
		c.label[i] = dense[root]
	}

	for id, sz := range c.sizes {
		if sz > c.sizes[c.largest] {
			c.largest = uint32(id)
		}
	}
	return c
}

// Relation returns the relations the components were computed over.
func (c *Components) Relation() Relation { return c.rel }

// Count returns the number of components.
func (c *Components) Count() int { return len(c.sizes) }

// ComponentOf returns the component id of idx.
func (c *Components) ComponentOf(idx NodeIndex) uint32 { return c.label[idx] }

// Same reports whether a and b lie in the same component.
func (c *Components) Same(a, b NodeIndex) bool { return c.label[a] == c.label[b] }

// Size returns the number of nodes in component id.
func (c *Components) Size(id uint32) int { return int(c.sizes[id]) }

// Largest returns the id and size of the biggest component. Ties go to the
// component containing the lowest node index.
func (c *Components) Largest() (id uint32, size int) {
	if len(c.sizes) == 0 {
		return 0, 0
	}
	return c.largest, int(c.sizes[c.largest])
}

// Members returns the node indices in component id, in storage order.
func (c *Components) Members(id uint32) []NodeIndex {
	out := make([]NodeIndex, 0, c.sizes[id])
	for i, l := range c.label {
		if l == id {
			out = append(out, NodeIndex(i))
		}
	}
	return out
}

// FilterToComponent builds a new Store holding only the given nodes, in the
// given order. Edges are remapped to the new indices; edges leaving the
// node set are dropped.
func FilterToComponent(s *Store, nodes []NodeIndex) (*Store, error) {
	oldToNew := make([]NodeIndex, s.Len())
	for i := range oldToNew {
		oldToNew[i] = NoNode
	}
	for newIdx, old := range nodes {
		oldToNew[old] = NodeIndex(newIdx)
	}

	remap := func(edges []NodeIndex) []uint32 {
		out := make([]uint32, 0, len(edges))
		for _, v := range edges {
			if nv := oldToNew[v]; nv != NoNode {
				out = append(out, uint32(nv))
			}
		}
		return out
	}

	b := NewBuilder(len(nodes))
	for _, old := range nodes {
		book := s.Book(old)
		b.Add(BookRecord{
			ID:             book.ID,
			AuthorID:       book.AuthorID,
			PublisherID:    book.PublisherID,
			AuthorEdges:    remap(book.AuthorEdges),
			CitationEdges:  remap(book.CitationEdges),
			PublisherEdges: remap(book.PublisherEdges),
		})
	}
	return b.Build()
}
