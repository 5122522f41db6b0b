package pivot

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// A SpecFile is the on-disk form of a table specification: a YAML document
// whose fields use the same grammar as the corresponding command-line flags.
//
//	rows: "1,3"
//	cols: "2"
//	data: "sum(4),mean(4)"
type SpecFile struct {
	Rows string `yaml:"rows"`
	Cols string `yaml:"cols"`
	Data string `yaml:"data"`
}

// LoadSpecFile reads and decodes a YAML spec file. Unknown keys are an error.
// The field values are not validated here; pass them to ParseSpec.
func LoadSpecFile(path string) (SpecFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SpecFile{}, err
	}
	var sf SpecFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sf); err != nil {
		return SpecFile{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return sf, nil
}
