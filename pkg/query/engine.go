// Package query answers lookups, neighborhood, bounded-distance and
// shortest-path questions over an immutable book graph.
package query

import (
	"context"
	"errors"
	"math"
	"slices"

	"go.opentelemetry.io/otel/attribute"

	"bookworm/pkg/graph"
	"bookworm/pkg/search"
)

// ErrNotLoaded is the panic value of a query issued to an engine with no
// graph. It is a programming error, not a runtime condition.
var ErrNotLoaded = errors.New("query: engine has no graph loaded")

// Result is an ordered list of books. Entries point into the Store.
type Result struct {
	Books []*graph.Book
}

// Len returns the number of books.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Books)
}

// IDs returns the book ids in result order.
func (r *Result) IDs() []uint64 {
	if r == nil {
		return nil
	}
	ids := make([]uint64, len(r.Books))
	for i, b := range r.Books {
		ids[i] = b.ID
	}
	return ids
}

// Indices returns the storage indices in result order.
func (r *Result) Indices() []graph.NodeIndex {
	if r == nil {
		return nil
	}
	out := make([]graph.NodeIndex, len(r.Books))
	for i, b := range r.Books {
		out[i] = b.Index
	}
	return out
}

// Engine runs queries against one Store. The zero value is unloaded.
// A loaded Engine is safe for concurrent use: all scratch state is
// allocated per query.
type Engine struct {
	store      *graph.Store
	searcher   search.Searcher
	components *graph.Components
}

// Option configures an Engine.
type Option func(*Engine)

// WithComponents lets path queries return early when the endpoints lie in
// different weak components. c must be computed over s.
func WithComponents(c *graph.Components) Option {
	return func(e *Engine) { e.components = c }
}

// NewEngine returns a loaded engine. A nil searcher scans linearly.
func NewEngine(s *graph.Store, searcher search.Searcher, opts ...Option) *Engine {
	if s == nil {
		panic("query: NewEngine with nil store")
	}
	if searcher == nil {
		searcher = search.NewLinear(s)
	}
	e := &Engine{store: s, searcher: searcher}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Loaded reports whether the engine holds a graph.
func (e *Engine) Loaded() bool { return e != nil && e.store != nil }

// Store returns the underlying store.
func (e *Engine) Store() *graph.Store {
	e.mustBeLoaded()
	return e.store
}

func (e *Engine) mustBeLoaded() {
	if !e.Loaded() {
		panic(ErrNotLoaded)
	}
}

func (e *Engine) find(kind search.Kind, value uint64) (*graph.Book, bool) {
	idx, ok := e.searcher.Find(kind, value)
	if !ok {
		return nil, false
	}
	return e.store.Book(idx), true
}

// FindBook returns the first book with the given id, or an empty result.
func (e *Engine) FindBook(ctx context.Context, id uint64) *Result {
	e.mustBeLoaded()
	sp := begin(ctx, OpFindBook, idAttr("book_id", id))

	r := &Result{}
	if b, ok := e.find(search.BookID, id); ok {
		r.Books = []*graph.Book{b}
	}
	return sp.end(r)
}

// FindBooksByAuthor returns the first book by authorID followed by that
// book's author edges in edge order.
func (e *Engine) FindBooksByAuthor(ctx context.Context, authorID uint64) *Result {
	e.mustBeLoaded()
	sp := begin(ctx, OpBooksByAuthor, idAttr("author_id", authorID))

	r := &Result{}
	src, ok := e.find(search.AuthorID, authorID)
	if !ok {
		return sp.end(r)
	}
	r.Books = make([]*graph.Book, 0, 1+len(src.AuthorEdges))
	r.Books = append(r.Books, src)
	for _, idx := range src.AuthorEdges {
		r.Books = append(r.Books, e.store.Book(idx))
	}
	return sp.end(r)
}

// FindBooksReprinted walks the publisher closure of the first book with
// publisherID. For every book in the closure it reports each author-edge
// neighbor that carries the same book id, i.e. the same title released
// again. Each book appears once, in discovery order.
func (e *Engine) FindBooksReprinted(ctx context.Context, publisherID uint64) *Result {
	e.mustBeLoaded()
	sp := begin(ctx, OpBooksReprinted, idAttr("publisher_id", publisherID))

	r := &Result{}
	src, ok := e.find(search.PublisherID, publisherID)
	if !ok {
		return sp.end(r)
	}

	n := e.store.Len()
	seen := make([]bool, n)
	added := make([]bool, n)
	q := NewFIFO(n)

	seen[src.Index] = true
	q.Enqueue(src.Index)
	for !q.IsEmpty() {
		b := e.store.Book(q.Dequeue())
		for _, idx := range b.AuthorEdges {
			if added[idx] {
				continue
			}
			if nb := e.store.Book(idx); nb.ID == b.ID {
				added[idx] = true
				r.Books = append(r.Books, nb)
			}
		}
		for _, idx := range b.PublisherEdges {
			if !seen[idx] {
				seen[idx] = true
				q.Enqueue(idx)
			}
		}
	}
	return sp.end(r)
}

// FindBooksKDistance returns every book reachable from id over at most k
// citation edges, in storage order. k == 0 yields the book itself.
func (e *Engine) FindBooksKDistance(ctx context.Context, id uint64, k uint16) *Result {
	e.mustBeLoaded()
	sp := begin(ctx, OpBooksKDistance, idAttr("book_id", id), attribute.Int("k", int(k)))

	r := &Result{}
	src, ok := e.find(search.BookID, id)
	if !ok {
		return sp.end(r)
	}

	dist := kDistances(e.store, src.Index, uint32(k))
	for i, d := range dist {
		if d <= uint32(k) {
			r.Books = append(r.Books, e.store.Book(graph.NodeIndex(i)))
		}
	}
	return sp.end(r)
}

// kDistances runs unit-weight Dijkstra over citation edges from src. Nodes
// whose best distance already reaches k are not expanded, so distances above
// k are left at MaxUint32 or at an upper bound of k+1.
func kDistances(s *graph.Store, src graph.NodeIndex, k uint32) []uint32 {
	n := s.Len()
	best := make([]uint32, n)
	for i := range best {
		best[i] = math.MaxUint32
	}
	best[src] = 0

	h := NewIndexedMinHeap(n)
	h.Insert(src, 0)
	for !h.IsEmpty() {
		u, du := h.RemoveMin()
		if du >= k {
			continue
		}
		next := du + 1
		for _, v := range s.Book(u).CitationEdges {
			if next < best[v] {
				best[v] = next
				h.DecreaseKey(v, next)
			}
		}
	}
	return best
}

// FindShortestDistance returns a shortest path from book a to book b over
// all relations.
func (e *Engine) FindShortestDistance(ctx context.Context, a, b uint64) *Result {
	return e.FindShortestPath(ctx, a, b, graph.RelAll)
}

// FindShortestPath returns a fewest-hop path a -> ... -> b using only the
// relations in rel. Neighbors are expanded author, citation, publisher.
// The result is empty when either book is missing or b is unreachable;
// a == b yields [a].
func (e *Engine) FindShortestPath(ctx context.Context, a, b uint64, rel graph.Relation) *Result {
	e.mustBeLoaded()
	sp := begin(ctx, OpShortestPath,
		idAttr("from", a), idAttr("to", b), attribute.String("relations", rel.String()))

	r := &Result{}
	from, ok := e.find(search.BookID, a)
	if !ok {
		return sp.end(r)
	}
	to, ok := e.find(search.BookID, b)
	if !ok {
		return sp.end(r)
	}
	if from.Index == to.Index {
		r.Books = []*graph.Book{from}
		return sp.end(r)
	}
	if c := e.components; c != nil && rel&^c.Relation() == 0 && !c.Same(from.Index, to.Index) {
		sp.trace.SetAttributes(attribute.Bool("component_pruned", true))
		return sp.end(r)
	}

	if path := bfsPath(e.store, from.Index, to.Index, rel); path != nil {
		r.Books = make([]*graph.Book, len(path))
		for i, idx := range path {
			r.Books[i] = e.store.Book(idx)
		}
	}
	return sp.end(r)
}

// bfsPath returns the node sequence src..dst or nil when dst is unreachable.
func bfsPath(s *graph.Store, src, dst graph.NodeIndex, rel graph.Relation) []graph.NodeIndex {
	n := s.Len()
	rels := rel.Relations()
	seen := make([]bool, n)
	prev := make([]graph.NodeIndex, n)
	for i := range prev {
		prev[i] = graph.NoNode
	}

	q := NewFIFO(n)
	seen[src] = true
	q.Enqueue(src)
	found := false
	for !q.IsEmpty() {
		u := q.Dequeue()
		if u == dst {
			found = true
			break
		}
		book := s.Book(u)
		for _, r := range rels {
			for _, v := range book.Edges(r) {
				if seen[v] {
					continue
				}
				seen[v] = true
				prev[v] = u
				q.Enqueue(v)
			}
		}
	}
	if !found {
		return nil
	}

	path := []graph.NodeIndex{dst}
	for cur := dst; cur != src; {
		cur = prev[cur]
		path = append(path, cur)
	}
	slices.Reverse(path)
	return path
}
