// Package bench exercises every query over a loaded graph, checks the
// invariants the engine guarantees and reports per-operation timings.
package bench

import (
	"context"
	"fmt"
	"time"

	"bookworm/pkg/graph"
	"bookworm/pkg/query"
)

// DefaultStride samples roughly one book in 87572 for the expensive checks.
// Cheaper checks use a fraction of it.
const DefaultStride = 87572

// DefaultMaxK bounds the k-distance sweep.
const DefaultMaxK = 100

// Options controls sampling density.
type Options struct {
	Stride int
	MaxK   uint16
}

// OpReport summarizes one operation.
type OpReport struct {
	Op       string        `json:"op"`
	Calls    int           `json:"calls"`
	Failures int           `json:"failures"`
	Duration time.Duration `json:"duration_ns"`
}

// Report is the outcome of Run.
type Report struct {
	Ops      []*OpReport `json:"ops"`
	Failures []string    `json:"failures,omitempty"`
}

// Failed reports whether any check failed.
func (r *Report) Failed() bool { return len(r.Failures) > 0 }

type runner struct {
	ctx    context.Context
	engine *query.Engine
	store  *graph.Store
	report *Report
}

func (r *runner) op(name string) *OpReport {
	op := &OpReport{Op: name}
	r.report.Ops = append(r.report.Ops, op)
	return op
}

func (r *runner) fail(op *OpReport, format string, args ...any) {
	op.Failures++
	r.report.Failures = append(r.report.Failures, op.Op+": "+fmt.Sprintf(format, args...))
}

// timed runs fn and charges its wall time and one call to op.
func timed[T any](op *OpReport, fn func() T) T {
	start := time.Now()
	v := fn()
	op.Duration += time.Since(start)
	op.Calls++
	return v
}

// Run executes the checks in order: find_book round trip, k-distance
// determinism and monotonicity, shortest path shape, author and reprint
// queries. It stops early, returning the partial report and ctx.Err(), when
// ctx is cancelled.
func Run(ctx context.Context, e *query.Engine, opts Options) (*Report, error) {
	if opts.Stride <= 0 {
		opts.Stride = DefaultStride
	}
	if opts.MaxK == 0 {
		opts.MaxK = DefaultMaxK
	}
	r := &runner{ctx: ctx, engine: e, store: e.Store(), report: &Report{}}

	steps := []func(Options) error{
		r.findBook,
		r.kDistance,
		r.shortestPath,
		r.byAuthor,
		r.reprinted,
	}
	for _, step := range steps {
		if err := step(opts); err != nil {
			return r.report, err
		}
	}
	return r.report, nil
}

func every(stride, div int) int {
	return max(stride/div, 1)
}

func (r *runner) findBook(opts Options) error {
	op := r.op(query.OpFindBook)
	n := r.store.Len()
	for i := 0; i < n; i += every(opts.Stride, 50) {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		want := r.store.Book(graph.NodeIndex(i))
		res := timed(op, func() *query.Result { return r.engine.FindBook(r.ctx, want.ID) })
		if res.Len() != 1 || res.Books[0].ID != want.ID {
			r.fail(op, "book %d: got %v", want.ID, res.IDs())
		}
	}
	return nil
}

func (r *runner) kDistance(opts Options) error {
	op := r.op(query.OpBooksKDistance)
	n := r.store.Len()
	sizes := make([]int, opts.MaxK)
	for i := 0; i < n; i += every(opts.Stride, 10) {
		id := r.store.Book(graph.NodeIndex(i)).ID
		for k := range opts.MaxK {
			if err := r.ctx.Err(); err != nil {
				return err
			}
			sizes[k] = timed(op, func() *query.Result { return r.engine.FindBooksKDistance(r.ctx, id, k) }).Len()
		}
		for k := range opts.MaxK {
			again := timed(op, func() *query.Result { return r.engine.FindBooksKDistance(r.ctx, id, k) }).Len()
			if again != sizes[k] {
				r.fail(op, "book %d k=%d: %d results, then %d", id, k, sizes[k], again)
			}
		}
		if sizes[0] != 1 {
			r.fail(op, "book %d k=0: %d results, want 1", id, sizes[0])
		}
		for k := 1; k < len(sizes); k++ {
			if sizes[k] < sizes[k-1] {
				r.fail(op, "book %d: k=%d has %d results, k=%d has %d", id, k, sizes[k], k-1, sizes[k-1])
			}
		}
	}
	return nil
}

func (r *runner) shortestPath(opts Options) error {
	op := r.op(query.OpShortestPath)
	n := r.store.Len()
	stride := opts.Stride
	for i := 0; i < n; i += stride {
		// Pairs with (i + j) % stride == 0.
		for j := (stride - i%stride) % stride; j < n; j += stride {
			if err := r.ctx.Err(); err != nil {
				return err
			}
			a, b := r.store.Book(graph.NodeIndex(i)), r.store.Book(graph.NodeIndex(j))
			res := timed(op, func() *query.Result { return r.engine.FindShortestDistance(r.ctx, a.ID, b.ID) })
			r.checkPath(op, a, b, res)
		}
	}
	return nil
}

func (r *runner) checkPath(op *OpReport, a, b *graph.Book, res *query.Result) {
	if res.Len() == 0 {
		return
	}
	path := res.Books
	if path[0].ID != a.ID || path[len(path)-1].ID != b.ID {
		r.fail(op, "%d -> %d: path %v has wrong endpoints", a.ID, b.ID, res.IDs())
		return
	}
	if a.ID == b.ID && len(path) != 1 {
		r.fail(op, "%d -> itself: %d books, want 1", a.ID, len(path))
	}
	for h := 1; h < len(path); h++ {
		if !r.store.Connected(path[h-1].Index, path[h].Index, graph.RelAll) {
			r.fail(op, "%d -> %d: hop %d -> %d is not an edge", a.ID, b.ID, path[h-1].ID, path[h].ID)
			return
		}
	}
}

func (r *runner) byAuthor(opts Options) error {
	op := r.op(query.OpBooksByAuthor)
	n := r.store.Len()
	for i := 0; i < n; i += every(opts.Stride, 50) {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		author := r.store.Book(graph.NodeIndex(i)).AuthorID
		res := timed(op, func() *query.Result { return r.engine.FindBooksByAuthor(r.ctx, author) })
		if res.Len() == 0 || res.Books[0].AuthorID != author {
			r.fail(op, "author %d: first result is not by the author", author)
		}
	}
	return nil
}

func (r *runner) reprinted(opts Options) error {
	op := r.op(query.OpBooksReprinted)
	n := r.store.Len()
	for i := 0; i < n; i += every(opts.Stride, 10) {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		publisher := r.store.Book(graph.NodeIndex(i)).PublisherID
		res := timed(op, func() *query.Result { return r.engine.FindBooksReprinted(r.ctx, publisher) })
		seen := make(map[graph.NodeIndex]bool, res.Len())
		for _, b := range res.Books {
			if seen[b.Index] {
				r.fail(op, "publisher %d: book at %d reported twice", publisher, b.Index)
			}
			seen[b.Index] = true
		}
	}
	return nil
}
