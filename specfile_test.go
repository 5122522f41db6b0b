package pivot_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/creachadair/pivot"
	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spec.yml")
	if err := os.WriteFile(path, []byte(text), 0600); err != nil {
		t.Fatalf("Write spec file: %v", err)
	}
	return path
}

func TestLoadSpecFile(t *testing.T) {
	path := writeFile(t, "rows: \"1,3\"\ncols: \"2\"\ndata: sum(4),mean(4)\n")
	sf, err := pivot.LoadSpecFile(path)
	if err != nil {
		t.Fatalf("LoadSpecFile: %v", err)
	}
	want := pivot.SpecFile{Rows: "1,3", Cols: "2", Data: "sum(4),mean(4)"}
	if diff := cmp.Diff(want, sf); diff != "" {
		t.Errorf("LoadSpecFile (-want, +got):\n%s", diff)
	}

	// The loaded strings use the same grammar as the flags.
	if _, err := pivot.ParseSpec(sf.Rows, sf.Cols, sf.Data); err != nil {
		t.Errorf("ParseSpec of loaded file: %v", err)
	}
}

func TestLoadSpecFileErrors(t *testing.T) {
	if _, err := pivot.LoadSpecFile(filepath.Join(t.TempDir(), "nonesuch.yml")); err == nil {
		t.Error("LoadSpecFile missing file: got nil, want error")
	}

	path := writeFile(t, "rows: \"1\"\nclos: \"2\"\n")
	if _, err := pivot.LoadSpecFile(path); err == nil {
		t.Error("LoadSpecFile with unknown key: got nil, want error")
	}
}
