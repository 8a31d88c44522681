package gramfile

import (
	"bytes"
	"testing"

	"github.com/loomlang/loom/core"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	g := &core.Grammar{
		Storage: core.Storage{
			Props: []core.Prop{{Name: "n", Typ: core.U32}},
		},
		Nodes: []core.Node{
			{Name: "start", Cases: []core.Case{
				{Pattern: core.PatLiteralOf("GET"), Action: core.ActGotoOf("done")},
			}},
			{Name: "done"},
		},
	}

	var buf bytes.Buffer
	if err := Save(&buf, g); err != nil {
		t.Fatal(err)
	}

	got, err := Load(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if len(got.Nodes) != 2 || got.Nodes[0].Name != "start" || got.Nodes[1].Name != "done" {
		t.Fatalf("Nodes = %+v", got.Nodes)
	}
	if len(got.Storage.Props) != 1 || got.Storage.Props[0].Name != "n" {
		t.Fatalf("Props = %+v", got.Storage.Props)
	}
	if got.Nodes[0].Cases[0].Pattern.Literal != "GET" {
		t.Fatalf("Literal = %q, want GET", got.Nodes[0].Cases[0].Pattern.Literal)
	}

	if _, err := Load(&bytes.Buffer{}); err == nil {
		t.Fatal("expected an error loading an empty source")
	}
}

func TestSaveFileLoadFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	filename := dir + "/grammar.yaml"

	g := &core.Grammar{
		Nodes: []core.Node{{Name: "start"}},
	}
	if err := SaveFile(filename, g); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Nodes) != 1 || got.Nodes[0].Name != "start" {
		t.Fatalf("Nodes = %+v", got.Nodes)
	}
}
