package pivot

import (
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"bitbucket.org/creachadair/stringset"
	"github.com/creachadair/pivot/agg"
)

// A Grid is the fully-assembled pivot table: the cartesian product of the
// distinct values observed on each axis, with an aggregate value (or nothing)
// for every cell. A Grid is read-only once assembled.
type Grid struct {
	// RowKeys and ColKeys hold the key tuples for each axis in emission
	// order: ascending lexical order of the tab-joined tuple.
	RowKeys [][]string
	ColKeys [][]string

	spec  Spec
	cells map[string]map[string][]*agg.Stats
}

// Grid assembles the table's grid. The row and column axes enumerate every
// combination of the distinct values observed per axis field, so the grid may
// include combinations no record produced; such cells are empty.
func (t *Table) Grid() *Grid {
	return &Grid{
		RowKeys: product(axisValues(t.rowVals)),
		ColKeys: product(axisValues(t.colVals)),
		spec:    t.spec,
		cells:   t.cells,
	}
}

// Spec returns the spec the grid was assembled from.
func (g *Grid) Spec() Spec { return g.spec }

// axisValues materializes each field's distinct-value set in sorted order.
func axisValues(sets []stringset.Set) [][]string {
	out := make([][]string, len(sets))
	for i, s := range sets {
		out[i] = s.Elements()
	}
	return out
}

// product returns the cartesian product of the given value lists as ordered
// tuples, sorted by ascending lexical order of their tab-joined form. That is
// the emission contract; it is not always the componentwise order, since a
// field may contain bytes that compare below the tab separator.
func product(vals [][]string) [][]string {
	tuples := [][]string{{}}
	for _, list := range vals {
		next := make([][]string, 0, len(tuples)*len(list))
		for _, t := range tuples {
			for _, v := range list {
				tup := make([]string, len(t), len(t)+1)
				copy(tup, t)
				next = append(next, append(tup, v))
			}
		}
		tuples = next
	}
	if len(tuples) == 1 && len(tuples[0]) == 0 {
		return nil // some axis field saw no values at all
	}
	sort.Slice(tuples, func(i, j int) bool {
		return strings.Join(tuples[i], "\t") < strings.Join(tuples[j], "\t")
	})
	return tuples
}

// Cell returns the rendered value for the cell at row r, column c, and data
// slot i, and reports whether the cell has a value. A cell has no value if no
// record produced that key combination, or if the aggregate is undefined for
// what was observed there.
func (g *Grid) Cell(r, c, i int) (string, bool) {
	row := g.cells[strings.Join(g.RowKeys[r], "\t")]
	if row == nil {
		return "", false
	}
	slots := row[strings.Join(g.ColKeys[c], "\t")]
	if slots == nil {
		return "", false
	}
	return slots[i].Value()
}

// WriteTo emits the grid as tab-delimited text.
//
// The header block has one line per column-axis field, listing that field's
// component of every column key, preceded by enough empty columns to sit over
// the row-key columns. The body has one line per row key per aggregate; the
// row key occupies the leading columns and is left blank on the second and
// later aggregate lines for the same key. When more than one aggregate is
// requested, a label column identifying the aggregate follows the row key and
// the header gains one more leading column to cover it. Empty cells render as
// empty fields.
func (g *Grid) WriteTo(w io.Writer) (int64, error) {
	cw := countWriter{w: w}
	err := g.emit("", cw.line)
	return cw.n, err
}

// WriteAligned emits the same layout as WriteTo, padded into readable columns
// with a tab writer. Empty cells render as "-" so alignment survives them.
func (g *Grid) WriteAligned(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	err := g.emit("-", func(s string) error {
		_, err := io.WriteString(tw, s+"\n")
		return err
	})
	if err != nil {
		return err
	}
	return tw.Flush()
}

// emit renders the grid line by line, substituting empty for absent cells.
func (g *Grid) emit(empty string, line func(string) error) error {
	nlead := len(g.spec.Rows)
	if len(g.spec.Data) > 1 {
		nlead++
	}
	lead := strings.Repeat("\t", nlead)

	for fi := range g.spec.Cols {
		parts := make([]string, len(g.ColKeys))
		for ci, key := range g.ColKeys {
			parts[ci] = key[fi]
		}
		if err := line(lead + strings.Join(parts, "\t")); err != nil {
			return err
		}
	}

	blank := make([]string, len(g.spec.Rows))
	for ri, rkey := range g.RowKeys {
		for si, as := range g.spec.Data {
			head := rkey
			if si > 0 {
				head = blank
			}
			parts := append([]string(nil), head...)
			if len(g.spec.Data) > 1 {
				parts = append(parts, as.Label())
			}
			for ci := range g.ColKeys {
				v, ok := g.Cell(ri, ci, si)
				if !ok {
					v = empty
				}
				parts = append(parts, v)
			}
			if err := line(strings.Join(parts, "\t")); err != nil {
				return err
			}
		}
	}
	return nil
}

type countWriter struct {
	w io.Writer
	n int64
}

func (c *countWriter) line(s string) error {
	n, err := io.WriteString(c.w, s+"\n")
	c.n += int64(n)
	return err
}
