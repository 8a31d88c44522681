// Package gramfile loads and saves core.Grammar values to YAML, using
// github.com/jsccast/yaml the same way sheens' Spec-loading contexts
// do (cmd/mdb/mdb.go, cmd/spectool/main.go). Grammar JSON decodes fine
// through the same Unmarshal, since it's a YAML subset.
package gramfile

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/jsccast/yaml"

	"github.com/loomlang/loom/core"
)

// Load decodes a Grammar from r.
func Load(r io.Reader) (*core.Grammar, error) {
	bs, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bs) == 0 {
		return nil, fmt.Errorf("empty grammar source")
	}

	var g core.Grammar
	if err := yaml.Unmarshal(bs, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Save encodes g as YAML to w.
func Save(w io.Writer, g *core.Grammar) error {
	bs, err := yaml.Marshal(g)
	if err != nil {
		return err
	}
	_, err = w.Write(bs)
	return err
}

// LoadFile reads and decodes a Grammar from filename.
func LoadFile(filename string) (*core.Grammar, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// SaveFile encodes g as YAML and writes it to filename.
func SaveFile(filename string, g *core.Grammar) error {
	var buf bytes.Buffer
	if err := Save(&buf, g); err != nil {
		return err
	}
	return ioutil.WriteFile(filename, buf.Bytes(), 0644)
}
