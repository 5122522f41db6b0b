// Package pivot builds pivot tables from streams of tab-delimited records.
//
// A table is configured by a Spec naming the input fields that form the row
// key, the fields that form the column key, and one or more aggregates to
// compute over data fields. Records stream once through Table.Add (or
// ReadFrom), which folds each record into per-cell accumulators and records
// the distinct values seen on each axis field. After the stream is exhausted,
// Table.Grid enumerates the full cartesian grid of observed key values and
// renders the aggregate for every cell, including combinations that were
// never observed, which render as empty.
package pivot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"bitbucket.org/creachadair/stringset"
	"github.com/creachadair/pivot/agg"
)

// An AggSpec names one aggregate to compute: a function applied to a single
// input field.
type AggSpec struct {
	Func  agg.Func
	Field int // 0-based input field index
}

// Label returns the user-facing form of the spec, "func(field)" with the
// field index 1-based.
func (a AggSpec) Label() string { return fmt.Sprintf("%s(%d)", a.Func, a.Field+1) }

// A Spec describes the shape of a pivot table. All field indices are 0-based;
// the parsing functions accept the 1-based form presented to users.
type Spec struct {
	Rows []int     // row key fields, at least one
	Cols []int     // column key fields, at least one
	Data []AggSpec // aggregates, at least one; order determines output order
}

func (s Spec) equal(o Spec) bool {
	if len(s.Rows) != len(o.Rows) || len(s.Cols) != len(o.Cols) || len(s.Data) != len(o.Data) {
		return false
	}
	for i, f := range s.Rows {
		if o.Rows[i] != f {
			return false
		}
	}
	for i, f := range s.Cols {
		if o.Cols[i] != f {
			return false
		}
	}
	for i, a := range s.Data {
		if o.Data[i] != a {
			return false
		}
	}
	return true
}

// ParseFields parses a comma-separated list of 1-based field indices, such as
// "1,3", into 0-based indices. At least one index is required.
func ParseFields(s string) ([]int, error) {
	if s == "" {
		return nil, errors.New("empty field list")
	}
	var out []int
	for _, tok := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			return nil, fmt.Errorf("invalid field index %q", tok)
		} else if n < 1 {
			return nil, fmt.Errorf("field index %d out of range (indices are 1-based)", n)
		}
		out = append(out, n-1)
	}
	return out, nil
}

var aggRE = regexp.MustCompile(`^([A-Za-z]+)\((\d+)\)$`)

// ParseAggs parses a comma-separated list of aggregate specs of the form
// "func(field)", such as "sum(4),mean(2)". Function names are matched without
// regard to case; field indices are 1-based. At least one spec is required.
func ParseAggs(s string) ([]AggSpec, error) {
	if s == "" {
		return nil, errors.New("empty aggregate list")
	}
	var out []AggSpec
	for _, tok := range strings.Split(s, ",") {
		m := aggRE.FindStringSubmatch(strings.TrimSpace(tok))
		if m == nil {
			return nil, fmt.Errorf("invalid aggregate spec %q (want \"func(field)\")", tok)
		}
		fn, err := agg.ParseFunc(m[1])
		if err != nil {
			return nil, err
		}
		n, _ := strconv.Atoi(m[2])
		if n < 1 {
			return nil, fmt.Errorf("field index %d out of range (indices are 1-based)", n)
		}
		out = append(out, AggSpec{Func: fn, Field: n - 1})
	}
	return out, nil
}

// ParseSpec parses the row, column, and data specifications into a Spec.
func ParseSpec(rows, cols, data string) (Spec, error) {
	rf, err := ParseFields(rows)
	if err != nil {
		return Spec{}, fmt.Errorf("row spec: %w", err)
	}
	cf, err := ParseFields(cols)
	if err != nil {
		return Spec{}, fmt.Errorf("column spec: %w", err)
	}
	df, err := ParseAggs(data)
	if err != nil {
		return Spec{}, fmt.Errorf("data spec: %w", err)
	}
	return Spec{Rows: rf, Cols: cf, Data: df}, nil
}

// A Table accumulates grouped aggregates from a stream of records. A Table is
// not safe for concurrent use; use ReadFromParallel for a parallel ingest that
// partitions work across private tables.
type Table struct {
	spec  Spec
	nrec  int64
	cells map[string]map[string][]*agg.Stats // row key → col key → one Stats per data slot

	// Distinct values observed per axis field, independent of grouping.
	rowVals, colVals []stringset.Set
}

// New constructs an empty Table with the given spec.
func New(spec Spec) *Table {
	return &Table{
		spec:    spec,
		cells:   make(map[string]map[string][]*agg.Stats),
		rowVals: make([]stringset.Set, len(spec.Rows)),
		colVals: make([]stringset.Set, len(spec.Cols)),
	}
}

// Spec returns the spec the table was constructed with.
func (t *Table) Spec() Spec { return t.spec }

// NumRecords returns the number of records added so far.
func (t *Table) NumRecords() int64 { return t.nrec }

// field returns field i of record, or "" if the record is too short.
// A missing field behaves as an empty value throughout.
func field(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}

func keyOf(record []string, fields []int) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = field(record, f)
	}
	return strings.Join(parts, "\t")
}

// Add folds one record, already split into fields, into the table.
func (t *Table) Add(record []string) {
	t.nrec++
	rkey := keyOf(record, t.spec.Rows)
	ckey := keyOf(record, t.spec.Cols)

	row := t.cells[rkey]
	if row == nil {
		row = make(map[string][]*agg.Stats)
		t.cells[rkey] = row
	}
	slots := row[ckey]
	if slots == nil {
		slots = make([]*agg.Stats, len(t.spec.Data))
		for i, a := range t.spec.Data {
			slots[i] = agg.New(a.Func)
		}
		row[ckey] = slots
	}
	for i, a := range t.spec.Data {
		slots[i].Update(field(record, a.Field))
	}

	for i, f := range t.spec.Rows {
		t.rowVals[i].Add(field(record, f))
	}
	for i, f := range t.spec.Cols {
		t.colVals[i].Add(field(record, f))
	}
}

// ReadFrom reads records from r, one per line with fields separated by single
// tabs, and adds each to the table. A trailing carriage return is stripped;
// no other escaping or trimming is applied, so trailing empty fields are
// significant. It returns the number of records read.
func (t *Table) ReadFrom(r io.Reader) (int64, error) {
	var n int64
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, maxLineSize)
	for sc.Scan() {
		t.Add(splitRecord(sc.Text()))
		n++
	}
	return n, sc.Err()
}

// maxLineSize bounds a single input record.
const maxLineSize = 16 << 20

func splitRecord(line string) []string {
	return strings.Split(strings.TrimSuffix(line, "\r"), "\t")
}

// Merge folds the contents of o into t, leaving o unchanged and sharing no
// state with it. The tables must share the same spec. Cells merged from o
// follow any values already recorded in t, so merging tables built from
// consecutive slices of an input reproduces the result of reading the whole
// input sequentially.
func (t *Table) Merge(o *Table) error {
	if !t.spec.equal(o.spec) {
		return errors.New("cannot merge tables with different specs")
	}
	t.nrec += o.nrec
	for rkey, orow := range o.cells {
		row := t.cells[rkey]
		if row == nil {
			row = make(map[string][]*agg.Stats)
			t.cells[rkey] = row
		}
		for ckey, oslots := range orow {
			slots := row[ckey]
			if slots == nil {
				slots = make([]*agg.Stats, len(t.spec.Data))
				for i, a := range t.spec.Data {
					slots[i] = agg.New(a.Func)
				}
				row[ckey] = slots
			}
			for i, os := range oslots {
				slots[i].Merge(os)
			}
		}
	}
	for i := range t.rowVals {
		t.rowVals[i].Add(o.rowVals[i].Elements()...)
	}
	for i := range t.colVals {
		t.colVals[i].Add(o.colVals[i].Elements()...)
	}
	return nil
}
