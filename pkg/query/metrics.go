package query

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("bookworm.query")

var (
	queryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookworm",
		Name:      "query_total",
		Help:      "Queries executed by operation",
	}, []string{"op"})

	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bookworm",
		Name:      "query_duration_seconds",
		Help:      "Query latency in seconds by operation",
		Buckets:   []float64{1e-6, 1e-5, 1e-4, 1e-3, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"op"})

	queryResultSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bookworm",
		Name:      "query_result_size",
		Help:      "Number of books returned by operation",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
	}, []string{"op"})
)

// Operation names, used as the op label and span name suffix.
const (
	OpFindBook       = "find_book"
	OpBooksByAuthor  = "find_books_by_author"
	OpBooksReprinted = "find_books_reprinted"
	OpBooksKDistance = "find_books_k_distance"
	OpShortestPath   = "find_shortest_path"
)

// span tracks one query from start to result.
type span struct {
	op    string
	start time.Time
	trace trace.Span
}

func begin(ctx context.Context, op string, attrs ...attribute.KeyValue) *span {
	_, s := tracer.Start(ctx, "query."+op, trace.WithAttributes(attrs...))
	return &span{op: op, start: time.Now(), trace: s}
}

// end records metrics for r and closes the span. It returns r so callers
// can write `return sp.end(r)`.
func (s *span) end(r *Result) *Result {
	n := r.Len()
	queryTotal.WithLabelValues(s.op).Inc()
	queryDuration.WithLabelValues(s.op).Observe(time.Since(s.start).Seconds())
	queryResultSize.WithLabelValues(s.op).Observe(float64(n))

	s.trace.SetAttributes(attribute.Int("result_size", n))
	s.trace.SetStatus(codes.Ok, "")
	s.trace.End()
	return r
}

func idAttr(key string, id uint64) attribute.KeyValue {
	return attribute.String(key, strconv.FormatUint(id, 10))
}
