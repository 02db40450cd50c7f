package search

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"bookworm/pkg/graph"
)

// ErrUnknownStrategy is returned for a strategy name outside the Strategy set.
var ErrUnknownStrategy = errors.New("search: unknown strategy")

// Strategy names a lookup implementation.
type Strategy string

const (
	StrategyLinear   Strategy = "linear"
	StrategyParallel Strategy = "parallel"
	StrategyIndexed  Strategy = "indexed"
	StrategyAuto     Strategy = "auto"
)

// DefaultParallelThreshold is the store size at which auto stops scanning.
const DefaultParallelThreshold = 4096

// Options configures a Dispatcher.
type Options struct {
	Strategy          Strategy
	Workers           int // parallel workers, <= 0 means GOMAXPROCS
	ParallelThreshold int // auto switches away from linear at this size
}

var lookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "bookworm",
	Subsystem: "search",
	Name:      "lookups_total",
	Help:      "Id lookups by strategy, kind and outcome",
}, []string{"strategy", "kind", "outcome"})

// Dispatcher resolves a Strategy once and forwards every lookup to it.
type Dispatcher struct {
	strategy Strategy
	impl     Searcher
}

// NewDispatcher resolves opts against s. An empty strategy means linear.
func NewDispatcher(s *graph.Store, opts Options) (*Dispatcher, error) {
	strategy := opts.Strategy
	if strategy == "" {
		strategy = StrategyLinear
	}
	if strategy == StrategyAuto {
		threshold := opts.ParallelThreshold
		if threshold <= 0 {
			threshold = DefaultParallelThreshold
		}
		if s.Len() < threshold {
			strategy = StrategyLinear
		} else {
			strategy = StrategyIndexed
		}
	}

	d := &Dispatcher{strategy: strategy}
	switch strategy {
	case StrategyLinear:
		d.impl = NewLinear(s)
	case StrategyParallel:
		d.impl = NewParallel(s, opts.Workers)
	case StrategyIndexed:
		d.impl = NewIndexed(s)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, opts.Strategy)
	}
	return d, nil
}

// Strategy returns the resolved strategy; never StrategyAuto.
func (d *Dispatcher) Strategy() Strategy { return d.strategy }

// Find implements Searcher.
func (d *Dispatcher) Find(kind Kind, value uint64) (graph.NodeIndex, bool) {
	idx, ok := d.impl.Find(kind, value)
	outcome := "miss"
	if ok {
		outcome = "hit"
	}
	lookups.WithLabelValues(string(d.strategy), kind.String(), outcome).Inc()
	return idx, ok
}

// ParseStrategy validates a strategy name.
func ParseStrategy(name string) (Strategy, error) {
	switch s := Strategy(name); s {
	case StrategyLinear, StrategyParallel, StrategyIndexed, StrategyAuto:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}
