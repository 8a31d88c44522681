// Package backend adapts a compiled core.Machine for consumption by a
// code emitter: resolved prop/callback descriptors, a label per node,
// and an insertion-ordered table of interned bitmaps. It performs no
// grammar validation of its own and emits no source; that is left to
// whatever target-language back-end consumes a Descriptor.
package backend

import (
	"strconv"

	"github.com/loomlang/loom/core"
)

// PropDescriptor is a resolved Storage property slot.
type PropDescriptor struct {
	Name string
	Typ  core.Typ
}

// CallbackDescriptor is a resolved Storage host callback.
type CallbackDescriptor struct {
	Name     string
	ArgProps []int
	IsSpan   bool
}

// NodeDescriptor is one entry in the emitted switch: a label (the
// node's own name, or the generated stateN of core.StateLabel for a
// node the Translator materialized) plus the compiled body an emitter
// walks to produce code for that case.
type NodeDescriptor struct {
	Label   string
	IsCheck bool
	Body    *core.Instruction
}

// BitmapDescriptor names one interned Interval for emission as a
// 256-entry table (spec.md §4.4 "Interned bitmap tables").
type BitmapDescriptor struct {
	Name     string
	Interval *core.Interval
}

// Descriptor is the back-end-ready projection of a Machine.
type Descriptor struct {
	Props     []PropDescriptor
	Callbacks []CallbackDescriptor
	Nodes     []NodeDescriptor
	Bitmaps   []BitmapDescriptor

	interner *core.Interner
}

// NewDescriptor builds a Descriptor from a translated Machine. It
// walks every node's compiled Instruction tree once to intern every
// ConMap/CheckMap Interval it finds, in the order those Intervals are
// first reached (node order, then depth-first within a node), so
// bitmap naming stays a deterministic function of the Machine
// (spec.md §5 "Ordering guarantees").
func NewDescriptor(m *core.Machine) (*Descriptor, error) {
	d := &Descriptor{interner: core.NewInterner()}

	for _, p := range m.Storage.Props {
		d.Props = append(d.Props, PropDescriptor{Name: p.Name, Typ: p.Typ})
	}
	for _, cb := range m.Storage.Callbacks {
		d.Callbacks = append(d.Callbacks, CallbackDescriptor{
			Name:     cb.Name,
			ArgProps: cb.ArgProps,
			IsSpan:   cb.IsSpan,
		})
	}

	seen := map[*core.Instruction]bool{}
	for i, n := range m.Nodes {
		d.Nodes = append(d.Nodes, NodeDescriptor{Label: m.Names[i], IsCheck: n.IsCheck, Body: n.Body})
		internBitmaps(n.Body, d.interner, seen)
	}

	for _, iv := range d.interner.Intervals() {
		d.Bitmaps = append(d.Bitmaps, BitmapDescriptor{
			Name:     bitmapName(len(d.Bitmaps)),
			Interval: iv,
		})
	}

	return d, nil
}

func bitmapName(i int) string {
	return "bitmap" + strconv.Itoa(i)
}

// Label resolves a goto/next target index to the label an emitter
// should jump to.
func (d *Descriptor) Label(target int) (string, error) {
	if target < 0 || target >= len(d.Nodes) {
		return "", &core.UnknownState{Name: "<node index out of range>"}
	}
	return d.Nodes[target].Label, nil
}

// BitmapIndex resolves a ConMap/CheckMap Interval to its interned
// bitmap index. The Interval was already seen during NewDescriptor's
// walk for any Machine it was actually called with, so this never
// grows the table; it's exposed as Intern rather than a plain lookup
// so a caller building Intervals independently (e.g. hand-written
// tests) still gets a sensible index.
func (d *Descriptor) BitmapIndex(iv *core.Interval) int {
	return d.interner.Intern(iv)
}

func internBitmaps(inst *core.Instruction, n *core.Interner, seen map[*core.Instruction]bool) {
	if inst == nil || seen[inst] {
		return
	}
	seen[inst] = true

	switch inst.Kind {
	case core.InstConsumer:
		internConsumerBitmaps(inst.Consumer, n, seen)
	case core.InstSelect:
		for _, sc := range inst.SelectArms {
			internBitmaps(sc.Inst, n, seen)
		}
		internBitmaps(inst.Otherwise, n, seen)
	case core.InstNext, core.InstStore, core.InstCapture, core.InstClose, core.InstCall:
		internBitmaps(inst.Then, n, seen)
	}
}

func internConsumerBitmaps(c *core.Consumer, n *core.Interner, seen map[*core.Instruction]bool) {
	if c == nil {
		return
	}
	switch c.Kind {
	case core.ConMap:
		n.Intern(c.Interval)
		internBitmaps(c.Ok, n, seen)
		internBitmaps(c.Err, n, seen)
	case core.ConIs, core.ConChar, core.ConRange:
		internBitmaps(c.Ok, n, seen)
		internBitmaps(c.Err, n, seen)
	case core.ConChars:
		for _, a := range c.CharsArms {
			internBitmaps(a.Inst, n, seen)
		}
		internBitmaps(c.Otherwise, n, seen)
	case core.ConMixed:
		for _, a := range c.MixedArms {
			if a.Check.Kind == core.CheckMap {
				n.Intern(a.Check.Interval)
			}
			internBitmaps(a.Inst, n, seen)
		}
		internBitmaps(c.Otherwise, n, seen)
	case core.ConConsume:
		internBitmaps(c.Ok, n, seen)
	}
}
