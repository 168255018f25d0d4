// Package stats provides online statistical accumulators for scalar and
// vector sample streams.
//
// All accumulators update in O(1) time and memory per sample, so a
// multi-hour simulation can be summarized without retaining its history:
//
//   - [Statistic]: one named aggregation (MaxAbs, Variance, Mean)
//   - [SignalStats]: a bundle of Statistics over one scalar stream
//   - [VectorStats]: per-axis bundles plus a derived magnitude bundle
//
// Variance uses Welford's algorithm for numerical stability.
package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Kind identifies an online aggregation function.
type Kind string

const (
	MaxAbs   Kind = "MaxAbs"
	Variance Kind = "Variance"
	Mean     Kind = "Mean"
)

// ParseKinds parses a comma-separated list such as "MaxAbs,Variance,Mean".
func ParseKinds(s string) ([]Kind, error) {
	parts := strings.Split(s, ",")
	kinds := make([]Kind, 0, len(parts))
	for _, p := range parts {
		switch k := Kind(strings.TrimSpace(p)); k {
		case MaxAbs, Variance, Mean:
			kinds = append(kinds, k)
		default:
			return nil, fmt.Errorf("stats: unknown statistic kind %q", p)
		}
	}
	return kinds, nil
}

// DefaultKinds is the bundle schema used for conservation-error streams.
func DefaultKinds() []Kind {
	return []Kind{MaxAbs, Variance, Mean}
}

// Statistic accumulates one aggregation over a scalar stream. The zero
// value is not usable; construct with NewStatistic.
type Statistic struct {
	kind   Kind
	count  uint64
	mean   float64
	m2     float64
	maxAbs float64
}

func NewStatistic(kind Kind) *Statistic {
	return &Statistic{kind: kind}
}

func (s *Statistic) Kind() Kind    { return s.kind }
func (s *Statistic) Count() uint64 { return s.count }

// Insert folds one sample into the running state.
func (s *Statistic) Insert(v float64) {
	s.count++
	delta := v - s.mean
	s.mean += delta / float64(s.count)
	s.m2 += delta * (v - s.mean)
	if a := math.Abs(v); a > s.maxAbs {
		s.maxAbs = a
	}
}

// Compute returns the current value of the aggregation. Degenerate
// streams yield 0 rather than NaN so downstream reporting needs no
// special cases: Mean is 0 for an empty stream, Variance is 0 below two
// samples.
func (s *Statistic) Compute() float64 {
	switch s.kind {
	case MaxAbs:
		return s.maxAbs
	case Variance:
		if s.count < 2 {
			return 0
		}
		return s.m2 / float64(s.count-1)
	case Mean:
		if s.count == 0 {
			return 0
		}
		return s.mean
	}
	return 0
}

// Reset clears the accumulated state, keeping the kind.
func (s *Statistic) Reset() {
	s.count = 0
	s.mean = 0
	s.m2 = 0
	s.maxAbs = 0
}

// SignalStats evaluates a fixed set of Statistics over one scalar stream.
// Every member sees the identical stream: one InsertData call inserts the
// value into all of them.
type SignalStats struct {
	stats []*Statistic
}

// NewSignalStats builds a bundle for the given kind set. Duplicate kinds
// are rejected since the bundle schema is keyed by kind.
func NewSignalStats(kinds ...Kind) (*SignalStats, error) {
	if len(kinds) == 0 {
		return nil, fmt.Errorf("stats: signal bundle needs at least one kind")
	}
	seen := make(map[Kind]bool, len(kinds))
	stats := make([]*Statistic, 0, len(kinds))
	for _, k := range kinds {
		switch k {
		case MaxAbs, Variance, Mean:
		default:
			return nil, fmt.Errorf("stats: unknown statistic kind %q", k)
		}
		if seen[k] {
			return nil, fmt.Errorf("stats: duplicate statistic kind %q", k)
		}
		seen[k] = true
		stats = append(stats, NewStatistic(k))
	}
	return &SignalStats{stats: stats}, nil
}

// MustSignalStats is NewSignalStats that panics on a bad kind set, for
// use with compile-time-constant schemas.
func MustSignalStats(kinds ...Kind) *SignalStats {
	s, err := NewSignalStats(kinds...)
	if err != nil {
		panic(err)
	}
	return s
}

// InsertData forwards one sample to every contained Statistic.
func (s *SignalStats) InsertData(v float64) {
	for _, st := range s.stats {
		st.Insert(v)
	}
}

// Map returns the current value of every statistic, keyed by kind.
func (s *SignalStats) Map() map[Kind]float64 {
	m := make(map[Kind]float64, len(s.stats))
	for _, st := range s.stats {
		m[st.Kind()] = st.Compute()
	}
	return m
}

// Kinds returns the bundle schema in a canonical order.
func (s *SignalStats) Kinds() []Kind {
	kinds := make([]Kind, len(s.stats))
	for i, st := range s.stats {
		kinds[i] = st.Kind()
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Count reports how many samples have been inserted.
func (s *SignalStats) Count() uint64 {
	if len(s.stats) == 0 {
		return 0
	}
	return s.stats[0].Count()
}

// Reset clears all contained statistics.
func (s *SignalStats) Reset() {
	for _, st := range s.stats {
		st.Reset()
	}
}

// Compatible reports whether two bundles share the identical kind set,
// the precondition for comparing their maps.
func Compatible(a, b *SignalStats) bool {
	ka, kb := a.Kinds(), b.Kinds()
	if len(ka) != len(kb) {
		return false
	}
	for i := range ka {
		if ka[i] != kb[i] {
			return false
		}
	}
	return true
}
