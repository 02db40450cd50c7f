package search

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"bookworm/pkg/graph"
)

// Parallel splits the store into one contiguous range per worker and scans
// the ranges concurrently. Each worker reports into its own slot, and the
// merge keeps the lowest index, so the answer equals Linear's.
type Parallel struct {
	store   *graph.Store
	workers int
}

// NewParallel returns a fork-join searcher over s. workers <= 0 uses
// GOMAXPROCS.
func NewParallel(s *graph.Store, workers int) *Parallel {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Parallel{store: s, workers: workers}
}

// Workers returns the configured worker count.
func (p *Parallel) Workers() int { return p.workers }

// Find implements Searcher.
func (p *Parallel) Find(kind Kind, value uint64) (graph.NodeIndex, bool) {
	n := p.store.Len()
	w := min(p.workers, n)
	if w <= 1 {
		return scan(p.store, kind, value, 0, n)
	}

	hits := make([]graph.NodeIndex, w)
	var g errgroup.Group
	for i := range w {
		lo, hi := i*n/w, (i+1)*n/w
		g.Go(func() error {
			idx, _ := scan(p.store, kind, value, lo, hi)
			hits[i] = idx
			return nil
		})
	}
	_ = g.Wait()

	// Ranges are ascending, so the first hit is the lowest index.
	for _, idx := range hits {
		if idx != graph.NoNode {
			return idx, true
		}
	}
	return graph.NoNode, false
}
