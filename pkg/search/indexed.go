package search

import (
	"github.com/tidwall/rtree"

	"bookworm/pkg/graph"
)

// Indexed answers lookups from one R-tree per kind. Each book is a point
// (value, index); a lookup searches the segment x = value, 0 <= y <= n and
// keeps the smallest y. Coordinates are uint64 so every id is exact.
type Indexed struct {
	n     uint64
	trees [numKinds]rtree.RTreeGN[uint64, graph.NodeIndex]
}

// NewIndexed builds the per-kind trees over s. Cost is O(n log n) once.
func NewIndexed(s *graph.Store) *Indexed {
	ix := &Indexed{n: uint64(s.Len())}
	for b := range s.Books() {
		for k := range numKinds {
			pt := [2]uint64{field(b, k), uint64(b.Index)}
			ix.trees[k].Insert(pt, pt, b.Index)
		}
	}
	return ix
}

// Find implements Searcher.
func (ix *Indexed) Find(kind Kind, value uint64) (graph.NodeIndex, bool) {
	if kind >= numKinds {
		panic("search: unknown kind " + kind.String())
	}
	best := graph.NoNode
	ix.trees[kind].Search(
		[2]uint64{value, 0},
		[2]uint64{value, ix.n},
		func(_, _ [2]uint64, idx graph.NodeIndex) bool {
			if idx < best {
				best = idx
			}
			return true
		},
	)
	return best, best != graph.NoNode
}

// Len returns the number of indexed books.
func (ix *Indexed) Len() int { return ix.trees[BookID].Len() }
