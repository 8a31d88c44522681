// Command gramdoc renders a compiled grammar's Machine/Descriptor as
// an HTML reference page: one row per node, its label, whether it's a
// consumer entry point, and the interned bitmaps it references.
// Grounded in sheens' tools/spec-html.go (RenderSpecHTML /
// RenderSpecPage), adapted from a core.Spec's nodes/branches/doc
// strings to a core.Machine's nodes/instructions/bitmaps -- a
// Machine has no free-text Doc field of its own (spec.md's Grammar
// carries none), so the per-node doc column is dropped in favor of a
// rendered instruction summary.
package main

import (
	"fmt"
	"io"

	md "github.com/russross/blackfriday/v2"

	"github.com/loomlang/loom/backend"
	"github.com/loomlang/loom/core"
)

// RenderMachineHTML writes a table of every node in d, in Machine
// order, with its label, entry-point flag, and a one-line rendering
// of its compiled instruction.
func RenderMachineHTML(title string, d *backend.Descriptor, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<div class="machineDoc doc">%s</div>`, md.Run([]byte("Compiled machine: **"+title+"**")))

	f(`<div class="nodes"><table>`)
	f(`<tr><th>index</th><th>label</th><th>entry</th><th>instruction</th></tr>`)
	for i, n := range d.Nodes {
		f(`<tr class="node"><td><span id="%s" class="nodeIndex">%d</span></td>`, n.Label, i)
		f(`<td><code>%s</code></td>`, n.Label)
		f(`<td>%v</td>`, n.IsCheck)
		f(`<td><code>%s</code></td></tr>`, renderInstruction(n.Body, d))
	}
	f(`</table></div>`)

	if len(d.Bitmaps) > 0 {
		f(`<div class="bitmaps"><table>`)
		f(`<tr><th>name</th><th>ranges</th></tr>`)
		for _, b := range d.Bitmaps {
			f(`<tr><td><code>%s</code></td><td>%s</td></tr>`, b.Name, renderInterval(b.Interval))
		}
		f(`</table></div>`)
	}

	return nil
}

// RenderMachinePage wraps RenderMachineHTML in a minimal standalone
// HTML document, mirroring tools/spec-html.go's RenderSpecPage.
func RenderMachinePage(title string, d *backend.Descriptor, cssFiles []string, out io.Writer) error {
	if cssFiles == nil {
		cssFiles = []string{"/static/gramdoc.css"}
	}

	fmt.Fprintf(out, "<!DOCTYPE html>\n<meta charset=\"utf-8\">\n<html>\n  <head>\n  <title>%s</title>\n", title)
	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}
	fmt.Fprintf(out, "  </head>\n  <body>\n    <h1>%s</h1>\n", title)

	if err := RenderMachineHTML(title, d, out); err != nil {
		return err
	}

	fmt.Fprintf(out, "  </body>\n</html>\n")
	return nil
}

func renderInterval(iv *core.Interval) string {
	s := ""
	for i, r := range iv.Ranges {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("[0x%02x,0x%02x]", r.Lo, r.Hi)
	}
	return s
}

func renderInstruction(inst *core.Instruction, d *backend.Descriptor) string {
	if inst == nil {
		return "&lt;nil&gt;"
	}
	switch inst.Kind {
	case core.InstConsumer:
		return renderConsumer(inst.Consumer, d)
	case core.InstSelect:
		return "select"
	case core.InstNext:
		return fmt.Sprintf("next(%d)", inst.N)
	case core.InstStore:
		return fmt.Sprintf("store(%d)", inst.Prop)
	case core.InstCapture:
		return fmt.Sprintf("capture(%d)", inst.Prop)
	case core.InstClose:
		return fmt.Sprintf("close(%d)", inst.Prop)
	case core.InstCall:
		return "call"
	case core.InstGoto:
		label, err := d.Label(inst.Target)
		if err != nil {
			return fmt.Sprintf("goto(%d)", inst.Target)
		}
		return fmt.Sprintf("goto(%s)", label)
	case core.InstError:
		return fmt.Sprintf("error(%d)", inst.ErrorCode)
	}
	return "?"
}

func renderConsumer(c *core.Consumer, d *backend.Descriptor) string {
	if c == nil {
		return "&lt;nil&gt;"
	}
	switch c.Kind {
	case core.ConIs:
		return fmt.Sprintf("is(%q)", c.Literal)
	case core.ConChar:
		return fmt.Sprintf("char(0x%02x)", c.Char)
	case core.ConRange:
		return fmt.Sprintf("range(0x%02x,0x%02x)", c.RangeVal.Lo, c.RangeVal.Hi)
	case core.ConMap:
		return fmt.Sprintf("map(bitmap%d)", d.BitmapIndex(c.Interval))
	case core.ConChars:
		return fmt.Sprintf("chars(%d arms)", len(c.CharsArms))
	case core.ConMixed:
		return fmt.Sprintf("mixed(%d arms)", len(c.MixedArms))
	case core.ConConsume:
		return fmt.Sprintf("consume(%d)", c.Prop)
	}
	return "?"
}
