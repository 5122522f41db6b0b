package agg_test

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/creachadair/pivot/agg"
	"github.com/google/go-cmp/cmp"
)

func accumulate(f agg.Func, vals ...string) *agg.Stats {
	s := agg.New(f)
	for _, v := range vals {
		s.Update(v)
	}
	return s
}

func TestParseFunc(t *testing.T) {
	tests := []struct {
		input string
		want  agg.Func
		ok    bool
	}{
		{"sum", agg.Sum, true},
		{"SUM", agg.Sum, true},
		{"Mean", agg.Mean, true},
		{"stddev", agg.StdDev, true},
		{"allvalues", agg.AllValues, true},
		{"", 0, false},
		{"median", 0, false},
		{"sum ", 0, false},
	}
	for _, test := range tests {
		got, err := agg.ParseFunc(test.input)
		if test.ok {
			if err != nil {
				t.Errorf("ParseFunc %q: unexpected error: %v", test.input, err)
			} else if got != test.want {
				t.Errorf("ParseFunc %q: got %v, want %v", test.input, got, test.want)
			}
		} else if err == nil {
			t.Errorf("ParseFunc %q: got %v, want error", test.input, got)
		} else if !strings.Contains(err.Error(), "supported") {
			t.Errorf("ParseFunc %q: error %v does not name the supported functions", test.input, err)
		}
	}
}

func TestNames(t *testing.T) {
	names := agg.Names()
	if !sort.StringsAreSorted(names) {
		t.Errorf("Names are not sorted: %v", names)
	}
	for _, name := range names {
		f, err := agg.ParseFunc(name)
		if err != nil {
			t.Errorf("ParseFunc %q: unexpected error: %v", name, err)
		} else if got := f.String(); got != name {
			t.Errorf("Func %q: String is %q", name, got)
		}
		if len(f.Stats()) == 0 {
			t.Errorf("Func %q: no statistics listed", name)
		}
	}
}

func TestValues(t *testing.T) {
	tests := []struct {
		fn    agg.Func
		input []string
		want  string
		ok    bool
	}{
		{agg.Count, []string{"a", "b", "a"}, "3", true},
		{agg.Sum, []string{"123", "321"}, "444", true},
		{agg.Sum, []string{"abc", "5"}, "5", true},   // non-numeric counts as 0
		{agg.Sum, []string{"", "2"}, "2", true},      // missing counts as 0
		{agg.Min, []string{"10", "2"}, "2", true},    // numeric, not lexical
		{agg.Max, []string{"10", "2"}, "10", true},   // likewise
		{agg.Min, []string{"abc", "3"}, "0", true},   // coerced 0 participates
		{agg.Min, []string{"-1.5"}, "-1.5", true},    // first observation sets it
		{agg.Mean, []string{"1", "2", "6"}, "3", true},
		{agg.Variance, []string{"2", "4"}, "1", true},
		{agg.Variance, []string{"5"}, "0", true}, // exactly 0, not rounding noise
		{agg.StdDev, []string{"2", "4"}, "1", true},
		{agg.StdDev, []string{"7"}, "0", true},
		{agg.Skew, []string{"5", "5", "5"}, "", false}, // undefined for constants
		{agg.Skew, []string{"9"}, "", false},
		{agg.Uniques, []string{"b", "a", "b"}, "a,b", true},
		{agg.AllValues, []string{"b", "a", "b"}, "b,a,b", true},
	}
	for _, test := range tests {
		got, ok := accumulate(test.fn, test.input...).Value()
		if ok != test.ok {
			t.Errorf("%v of %q: got ok=%v, want %v", test.fn, test.input, ok, test.ok)
		} else if got != test.want {
			t.Errorf("%v of %q: got %q, want %q", test.fn, test.input, got, test.want)
		}
	}
}

func TestEmptyValue(t *testing.T) {
	for _, name := range agg.Names() {
		f, _ := agg.ParseFunc(name)
		if got, ok := agg.New(f).Value(); ok {
			t.Errorf("%v of nothing: got %q, want no value", f, got)
		}
	}
}

func TestConstantCells(t *testing.T) {
	// The raw-moment variance of a constant cell can round just below zero
	// for non-integral values, and math.Sqrt of that is NaN. Variance and
	// stddev of a constant must be exactly 0 and skew must be absent, for
	// any number of observations.
	for n := 2; n <= 50; n++ {
		vals := make([]string, n)
		for i := range vals {
			vals[i] = "0.7"
		}
		if got, ok := accumulate(agg.Variance, vals...).Value(); !ok || got != "0" {
			t.Errorf("Variance of %d×0.7: got (%q, %v), want (\"0\", true)", n, got, ok)
		}
		if got, ok := accumulate(agg.StdDev, vals...).Value(); !ok || got != "0" {
			t.Errorf("StdDev of %d×0.7: got (%q, %v), want (\"0\", true)", n, got, ok)
		}
		if got, ok := accumulate(agg.Skew, vals...).Value(); ok {
			t.Errorf("Skew of %d×0.7: got %q, want no value", n, got)
		}
	}
}

func TestSkew(t *testing.T) {
	input := []float64{1, 2, 2, 3, 7}

	var sum, sum2, sum3 float64
	for _, v := range input {
		sum += v
		sum2 += v * v
		sum3 += v * v * v
	}
	n := float64(len(input))
	e1, e2, e3 := sum/n, sum2/n, sum3/n
	sd := math.Sqrt(e2 - e1*e1)
	want := (e3 - 3*e1*e2 + 2*e1*e1*e1) / (sd * sd * sd)

	s := agg.New(agg.Skew)
	for _, v := range input {
		s.Update(strconv.FormatFloat(v, 'g', -1, 64))
	}
	text, ok := s.Value()
	if !ok {
		t.Fatalf("Skew of %v: no value", input)
	}
	got, err := strconv.ParseFloat(text, 64)
	if err != nil {
		t.Fatalf("Skew of %v: invalid number %q: %v", input, text, err)
	}
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Skew of %v: got %v, want %v", input, got, want)
	}
	if want <= 0 {
		t.Errorf("Test data are not right-skewed: computed %v", want)
	}
}

func TestOrderIndependence(t *testing.T) {
	fwd := []string{"1", "2", "4", "10", "2"}
	rev := []string{"2", "10", "4", "2", "1"}

	for _, name := range agg.Names() {
		f, _ := agg.ParseFunc(name)
		if f == agg.AllValues {
			continue // order-dependent by contract
		}
		a, aok := accumulate(f, fwd...).Value()
		b, bok := accumulate(f, rev...).Value()
		if a != b || aok != bok {
			t.Errorf("%v: forward (%q, %v) != reverse (%q, %v)", f, a, aok, b, bok)
		}
	}

	a, _ := accumulate(agg.AllValues, fwd...).Value()
	b, _ := accumulate(agg.AllValues, rev...).Value()
	if a == b {
		t.Errorf("AllValues: got %q for both orders, want order-sensitive results", a)
	}
}

func TestMerge(t *testing.T) {
	input := []string{"3", "1", "4", "1", "5", "9", "2", "6"}
	for _, name := range agg.Names() {
		f, _ := agg.ParseFunc(name)
		whole := accumulate(f, input...)

		left := accumulate(f, input[:3]...)
		right := accumulate(f, input[3:]...)
		left.Merge(right)

		wantV, wantOK := whole.Value()
		gotV, gotOK := left.Value()
		if gotOK != wantOK || gotV != wantV {
			t.Errorf("%v merged: got (%q, %v), want (%q, %v)", f, gotV, gotOK, wantV, wantOK)
		}
	}
}

func TestMergeIntoEmpty(t *testing.T) {
	full := accumulate(agg.Mean, "2", "4", "6")
	empty := agg.New(agg.Mean)
	empty.Merge(full)
	got, ok := empty.Value()
	if !ok || got != "4" {
		t.Errorf("Merge into empty: got (%q, %v), want (\"4\", true)", got, ok)
	}
}

func TestUniquesAsSet(t *testing.T) {
	s := accumulate(agg.Uniques, "z", "q", "z", "a", "q", "q")
	text, ok := s.Value()
	if !ok {
		t.Fatal("Uniques: no value")
	}
	got := strings.Split(text, ",")
	sort.Strings(got)
	want := []string{"a", "q", "z"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Uniques (-want, +got):\n%s", diff)
	}
}
