package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/loomlang/loom/backend"
	"github.com/loomlang/loom/core"
)

func testDescriptor(t *testing.T) *backend.Descriptor {
	t.Helper()
	g := &core.Grammar{
		Nodes: []core.Node{
			{Name: "start", Cases: []core.Case{
				{Pattern: core.PatLiteralOf("GET"), Action: core.ActGotoOf("done")},
			}},
			{Name: "done"},
		},
	}
	m, err := core.Translate(g)
	if err != nil {
		t.Fatal(err)
	}
	d, err := backend.NewDescriptor(m)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestRenderMachineHTMLListsNodes(t *testing.T) {
	d := testDescriptor(t)
	var buf bytes.Buffer
	if err := RenderMachineHTML("http", d, &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "start") || !strings.Contains(out, "done") {
		t.Fatalf("expected both node labels in output, got: %s", out)
	}
	if !strings.Contains(out, `is("GET")`) {
		t.Fatalf("expected a rendered is(\"GET\") consumer, got: %s", out)
	}
}

func TestRenderMachinePageIsValidShell(t *testing.T) {
	d := testDescriptor(t)
	var buf bytes.Buffer
	if err := RenderMachinePage("http", d, nil, &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "<html>") || !strings.Contains(out, "</html>") {
		t.Fatalf("expected a full HTML document, got: %s", out)
	}
}
