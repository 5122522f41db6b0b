package agg

import (
	"math"
	"strconv"
	"strings"

	"bitbucket.org/creachadair/stringset"
)

// Stats accumulates the sufficient statistics for one aggregate function over
// one cell of a pivot table. The zero value is not ready for use; construct
// one with New.
type Stats struct {
	fn   Func
	need statSet

	n                int64 // observations folded in, independent of fn
	sum, sum2, sum3  float64
	min, max         float64
	seenMin, seenMax bool
	uniques          stringset.Set
	values           []string
}

// New constructs an empty accumulator for the given function.
func New(f Func) *Stats { return &Stats{fn: f, need: funcStats[f]} }

// Func returns the function this accumulator computes.
func (s *Stats) Func() Func { return s.fn }

// Update folds a raw value into the statistics the function depends on.
//
// Numeric statistics coerce raw through strconv.ParseFloat after trimming
// surrounding space; a value that does not parse counts as 0. The uniques and
// allvalues statistics always see the exact raw string.
func (s *Stats) Update(raw string) {
	s.n++
	if s.need&(needSum|needSumSq|needSumCube|needMin|needMax) != 0 {
		v := numval(raw)
		if s.need&needSum != 0 {
			s.sum += v
		}
		if s.need&needSumSq != 0 {
			s.sum2 += v * v
		}
		if s.need&needSumCube != 0 {
			s.sum3 += v * v * v
		}
		if s.need&needMin != 0 && (!s.seenMin || v < s.min) {
			s.min, s.seenMin = v, true
		}
		if s.need&needMax != 0 && (!s.seenMax || v > s.max) {
			s.max, s.seenMax = v, true
		}
	}
	if s.need&needUniques != 0 {
		s.uniques.Add(raw)
	}
	if s.need&needValues != 0 {
		s.values = append(s.values, raw)
	}
}

// Merge folds the statistics accumulated in o into s. Both accumulators must
// have been created for the same function. Values merged from o follow any
// already recorded in s, so merging shards in input order reproduces the
// result of a single sequential pass.
func (s *Stats) Merge(o *Stats) {
	s.n += o.n
	s.sum += o.sum
	s.sum2 += o.sum2
	s.sum3 += o.sum3
	if o.seenMin && (!s.seenMin || o.min < s.min) {
		s.min, s.seenMin = o.min, true
	}
	if o.seenMax && (!s.seenMax || o.max > s.max) {
		s.max, s.seenMax = o.max, true
	}
	if len(o.uniques) != 0 {
		s.uniques.Add(o.uniques.Elements()...)
	}
	s.values = append(s.values, o.values...)
}

// Value derives the function's final value from the accumulated statistics.
// It reports false when no value can be derived: nothing was ever observed,
// or the function is undefined for what was observed (skew of a constant).
func (s *Stats) Value() (string, bool) {
	if s.n == 0 {
		return "", false
	}
	switch s.fn {
	case Count:
		return strconv.FormatInt(s.n, 10), true
	case Min:
		if !s.seenMin {
			return "", false
		}
		return formatNum(s.min), true
	case Max:
		if !s.seenMax {
			return "", false
		}
		return formatNum(s.max), true
	case Sum:
		return formatNum(s.sum), true
	case Mean:
		return formatNum(s.mean()), true
	case Variance:
		return formatNum(s.variance()), true
	case StdDev:
		return formatNum(math.Sqrt(s.variance())), true
	case Skew:
		sd := math.Sqrt(s.variance())
		if sd == 0 {
			return "", false
		}
		n := float64(s.n)
		e1 := s.sum / n
		e2 := s.sum2 / n
		e3 := s.sum3 / n
		return formatNum((e3 - 3*e1*e2 + 2*e1*e1*e1) / (sd * sd * sd)), true
	case Uniques:
		return strings.Join(s.uniques.Elements(), ","), true
	case AllValues:
		return strings.Join(s.values, ","), true
	}
	return "", false
}

func (s *Stats) mean() float64 { return s.sum / float64(s.n) }

// variance computes the population variance from the raw moments. For a
// single observation this is exactly 0, since x·x − x·x has no rounding.
// For repeated non-integral values the difference of moments can round to a
// tiny negative, which would surface as NaN from math.Sqrt and defeat the
// stddev == 0 guard on skew; clamp it to 0.
func (s *Stats) variance() float64 {
	m := s.mean()
	v := s.sum2/float64(s.n) - m*m
	if v < 0 {
		return 0
	}
	return v
}

// numval returns the numeric value of a raw field, treating anything that
// does not parse as 0. Empty and missing fields thus contribute nothing to
// sums, matching the legacy tool.
func numval(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return v
}

func formatNum(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
