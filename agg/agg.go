// Package agg defines the aggregate functions available to a pivot table and
// the per-cell accumulators that compute them incrementally.
//
// Each function depends on a fixed set of sufficient statistics (count, sum,
// sum of squares, and so on). An accumulator resolves that set once when it is
// created and thereafter folds each observed value into only the statistics
// its function requires. The final value is derived on demand, and derivation
// reports explicitly whether a value exists, so that an empty cell is
// distinguishable from a zero.
package agg

import (
	"fmt"
	"sort"
	"strings"
)

// A Func identifies one of the supported aggregate functions.
type Func int

// The supported aggregate functions.
const (
	Count     Func = iota // number of observed values
	Min                   // numeric minimum
	Max                   // numeric maximum
	Sum                   // numeric sum
	Mean                  // arithmetic mean
	Variance              // population variance
	StdDev                // population standard deviation
	Skew                  // standardized third moment
	Uniques               // distinct raw values
	AllValues             // all raw values in input order

	numFuncs
)

var funcNames = [numFuncs]string{
	Count:     "count",
	Min:       "min",
	Max:       "max",
	Sum:       "sum",
	Mean:      "mean",
	Variance:  "variance",
	StdDev:    "stddev",
	Skew:      "skew",
	Uniques:   "uniques",
	AllValues: "allvalues",
}

// String returns the lowercase name of f, which is also the spelling accepted
// by ParseFunc.
func (f Func) String() string {
	if f < 0 || f >= numFuncs {
		return fmt.Sprintf("Func(%d)", int(f))
	}
	return funcNames[f]
}

// A statSet is a bitmask of the sufficient statistics a function depends on.
type statSet uint

const (
	needCount statSet = 1 << iota
	needSum
	needSumSq
	needSumCube
	needMin
	needMax
	needUniques
	needValues
)

var statNames = map[statSet]string{
	needCount:   "count",
	needSum:     "sum",
	needSumSq:   "sum²",
	needSumCube: "sum³",
	needMin:     "min",
	needMax:     "max",
	needUniques: "uniques",
	needValues:  "allvalues",
}

// funcStats maps each function to the statistics it depends on.
var funcStats = [numFuncs]statSet{
	Count:     needCount,
	Min:       needMin,
	Max:       needMax,
	Sum:       needSum,
	Mean:      needCount | needSum,
	Variance:  needCount | needSum | needSumSq,
	StdDev:    needCount | needSum | needSumSq,
	Skew:      needCount | needSum | needSumSq | needSumCube,
	Uniques:   needUniques,
	AllValues: needValues,
}

// ParseFunc returns the function whose name matches s without regard to case,
// or an error naming the supported functions.
func ParseFunc(s string) (Func, error) {
	name := strings.ToLower(s)
	for f, fname := range funcNames {
		if fname == name {
			return Func(f), nil
		}
	}
	return 0, fmt.Errorf("unknown aggregate function %q (supported: %s)",
		s, strings.Join(Names(), ", "))
}

// Names returns the names of the supported functions in sorted order.
func Names() []string {
	out := make([]string, numFuncs)
	copy(out, funcNames[:])
	sort.Strings(out)
	return out
}

// Stats returns the names of the sufficient statistics f depends on, in a
// fixed order.
func (f Func) Stats() []string {
	var out []string
	for bit := needCount; bit <= needValues; bit <<= 1 {
		if funcStats[f]&bit != 0 {
			out = append(out, statNames[bit])
		}
	}
	return out
}
