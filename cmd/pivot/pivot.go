// Program pivot reshapes tab-delimited records into a pivot table.
//
// Records are grouped by key fields named in --rows and --cols, and the
// aggregates named in --data are computed per group. The output is a grid
// whose rows and columns enumerate every combination of the key values
// observed on each axis; combinations that never occurred are left empty.
package main

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/creachadair/atomicfile"
	"github.com/creachadair/command"
	"github.com/creachadair/ctrl"
	"github.com/creachadair/flax"
	"github.com/creachadair/pivot"
	"github.com/creachadair/pivot/agg"
)

var flags struct {
	Rows    string `flag:"rows,Comma-separated 1-based row key fields (required)"`
	Cols    string `flag:"cols,Comma-separated 1-based column key fields (required)"`
	Data    string `flag:"data,Comma-separated aggregate specs like sum(4) (required)"`
	Spec    string `flag:"spec,Read rows/cols/data from this YAML file"`
	Output  string `flag:"output,Write output to this file instead of stdout"`
	Align   bool   `flag:"align,Pad output columns for reading"`
	Workers int    `flag:"workers,Parse input with this many concurrent workers"`
}

func main() {
	root := &command.C{
		Name:  command.ProgramName(),
		Usage: "[options] <input-file>...",
		Help: fmt.Sprintf(`Build a pivot table from tab-delimited records.

Records are read from the named input files in order, or from stdin if no
files are named; the name "-" reads stdin explicitly. Fields are separated by
single tabs and field indices are 1-based.

Each --data spec is one aggregate function applied to one field. The
supported functions are: %s.

For example, with input

	2014-11-01	eric	abc	123
	2014-11-01	tim	abc	1
	2014-11-01	eric	zyx	321

the flags --rows 1 --cols 2 --data 'sum(4)' total field 4 for each date by
each name. Multiple --rows or --cols fields form composite keys; multiple
--data specs emit one labelled line per aggregate under each row key.

The three specifications may also be read from a YAML file via --spec, with
individual flags overriding the file.`, strings.Join(agg.Names(), ", ")),

		SetFlags: command.Flags(flax.MustBind, &flags),
		Run:      command.Adapt(runPivot),

		Commands: []*command.C{
			{
				Name: "funcs",
				Help: "List the supported aggregate functions.",
				Run:  command.Adapt(runFuncs),
			},
			command.HelpCommand(nil),
			command.VersionCommand(),
		},
	}
	ctrl.Run(func() error {
		err := command.Run(root.NewEnv(nil).MergeFlags(true), os.Args[1:])
		if errors.Is(err, command.ErrRequestHelp) {
			return nil
		}
		return err
	})
}

func runPivot(env *command.Env) error {
	rows, cols, data := flags.Rows, flags.Cols, flags.Data
	if flags.Spec != "" {
		sf, err := pivot.LoadSpecFile(flags.Spec)
		if err != nil {
			return fmt.Errorf("load spec file: %w", err)
		}
		rows = cmp.Or(rows, sf.Rows)
		cols = cmp.Or(cols, sf.Cols)
		data = cmp.Or(data, sf.Data)
	}
	switch {
	case rows == "":
		return env.Usagef("you must provide a --rows specification")
	case cols == "":
		return env.Usagef("you must provide a --cols specification")
	case data == "":
		return env.Usagef("you must provide a --data specification")
	}
	spec, err := pivot.ParseSpec(rows, cols, data)
	if err != nil {
		return env.Usagef("invalid specification: %v", err)
	}

	t := pivot.New(spec)
	paths := env.Args
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	for _, path := range paths {
		if err := readInput(t, path); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if flags.Align {
		err = t.Grid().WriteAligned(&buf)
	} else {
		_, err = t.Grid().WriteTo(&buf)
	}
	if err != nil {
		return err
	}
	if flags.Output == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	return atomicfile.WriteData(flags.Output, buf.Bytes(), 0644)
}

func readInput(t *pivot.Table, path string) error {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	var err error
	if flags.Workers > 1 {
		_, err = t.ReadFromParallel(r, flags.Workers)
	} else {
		_, err = t.ReadFrom(r)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

func runFuncs(env *command.Env) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FUNCTION\tDEPENDS ON")
	for _, name := range agg.Names() {
		f, err := agg.ParseFunc(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\n", name, strings.Join(f.Stats(), ", "))
	}
	return tw.Flush()
}
