package sim

import (
	"context"
	"testing"

	"github.com/loomlang/loom/core"
)

type stubRuntime struct {
	arbitrary func(ix int, args []uint64) (uint64, error)
	span      func(name string, start, end int, buf []byte) (uint64, error)
}

func (s *stubRuntime) Arbitrary(ctx context.Context, ix int, args []uint64) (uint64, error) {
	return s.arbitrary(ix, args)
}

func (s *stubRuntime) Span(ctx context.Context, name string, start, end int, buf []byte) (uint64, error) {
	if s.span == nil {
		return 0, nil
	}
	return s.span(name, start, end, buf)
}

func TestInterpLiteralGoto(t *testing.T) {
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

	in, err := New(m, &stubRuntime{}, "start")
	if err != nil {
		t.Fatal(err)
	}

	if err := in.Feed(context.Background(), []byte("GE")); err != nil {
		t.Fatal(err)
	}
	if in.node != 0 {
		t.Fatalf("node = %d, want still waiting at start with a partial literal", in.node)
	}

	// "done" has no cases of its own, so reaching it immediately raises
	// the default error(0): there is no separate "accept" instruction,
	// only named states a grammar author chooses to give real cases.
	err = in.Feed(context.Background(), []byte("T"))
	if err == nil {
		t.Fatal("expected a fault on entering the case-less done state")
	}
	fault, ok := err.(*RuntimeFault)
	if !ok || fault.Code != 0 {
		t.Fatalf("err = %v, want RuntimeFault{Code: 0}", err)
	}
}

func TestInterpLiteralMismatchErrors(t *testing.T) {
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

	in, err := New(m, &stubRuntime{}, "start")
	if err != nil {
		t.Fatal(err)
	}

	err = in.Feed(context.Background(), []byte("PUT"))
	if err == nil {
		t.Fatal("expected a RuntimeFault on a literal mismatch")
	}
	if !in.Done() {
		t.Fatal("expected Done() after a fault")
	}
	if _, ok := in.Fault().(*RuntimeFault); !ok {
		t.Fatalf("Fault() = %v, want a *RuntimeFault", in.Fault())
	}
}

func TestInterpDigitAccumulator(t *testing.T) {
	g := &core.Grammar{
		Storage: core.Storage{
			Props: []core.Prop{{Name: "n", Typ: core.U32}},
		},
		Nodes: []core.Node{
			{Name: "digits", Cases: []core.Case{
				{
					Pattern: core.PatRangeOf('0', '9'),
					Action: core.ActCallOf(
						core.Call{Kind: core.CallMulAdd, Base: core.Decimal, Prop: 0},
						core.ActGotoOf("digits"),
					),
				},
				{
					Pattern: core.PatOtherwiseOf(),
					Action:  core.ActGotoOf("done"),
				},
			}},
			{Name: "done"},
		},
	}
	m, err := core.Translate(g)
	if err != nil {
		t.Fatal(err)
	}

	in, err := New(m, &stubRuntime{}, "digits")
	if err != nil {
		t.Fatal(err)
	}

	if err := in.Feed(context.Background(), []byte("12")); err != nil {
		t.Fatal(err)
	}

	n, ok := in.Prop("n")
	if !ok {
		t.Fatal("expected prop n to exist")
	}
	if n != 12 {
		t.Fatalf("n = %d, want 12", n)
	}
}

func TestInterpSpanCapture(t *testing.T) {
	g := &core.Grammar{
		Storage: core.Storage{
			Props:     []core.Prop{{Name: "word", Typ: core.Span}},
			Callbacks: []core.Callback{{Name: "word", IsSpan: true}},
		},
		Nodes: []core.Node{
			{Name: "start", Cases: []core.Case{
				{
					Pattern: core.PatRangeOf('a', 'z'),
					Action: core.ActStoreOf(core.CaptureBegin, 0,
						core.ActGotoOf("word")),
				},
			}},
			{Name: "word", Cases: []core.Case{
				{
					Pattern: core.PatRangeOf('a', 'z'),
					Action:  core.ActGotoOf("word"),
				},
				{
					Pattern: core.PatOtherwiseOf(),
					Action: core.ActStoreOf(core.CaptureClose, 0,
						core.ActGotoOf("start")),
				},
			}},
		},
	}
	m, err := core.Translate(g)
	if err != nil {
		t.Fatal(err)
	}

	var gotStart, gotEnd int
	rt := &stubRuntime{
		span: func(name string, start, end int, buf []byte) (uint64, error) {
			gotStart, gotEnd = start, end
			return 0, nil
		},
	}

	in, err := New(m, rt, "start")
	if err != nil {
		t.Fatal(err)
	}

	if err := in.Feed(context.Background(), []byte("cat ")); err != nil {
		t.Fatal(err)
	}

	if gotEnd-gotStart != 3 {
		t.Fatalf("span = [%d,%d), want a 3-byte span", gotStart, gotEnd)
	}
}

func TestInterpArbitraryCallback(t *testing.T) {
	g := &core.Grammar{
		Storage: core.Storage{
			Callbacks: []core.Callback{{Name: "onByte"}},
		},
		Nodes: []core.Node{
			{Name: "start", Cases: []core.Case{
				{
					Pattern: core.PatOtherwiseOf(),
					Action: core.ActCallOf(
						core.Call{Kind: core.CallArbitrary, Arbitrary: 0},
						core.ActGotoOf("start"),
					),
				},
			}},
		},
	}
	m, err := core.Translate(g)
	if err != nil {
		t.Fatal(err)
	}

	calls := 0
	rt := &stubRuntime{
		arbitrary: func(ix int, args []uint64) (uint64, error) {
			calls++
			return 0, nil
		},
	}

	in, err := New(m, rt, "start")
	if err != nil {
		t.Fatal(err)
	}
	if err := in.Feed(context.Background(), []byte("xyz")); err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestNewUnknownEntry(t *testing.T) {
	m, err := core.Translate(&core.Grammar{Nodes: []core.Node{{Name: "start"}}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(m, &stubRuntime{}, "nope"); err == nil {
		t.Fatal("expected an UnknownState error")
	}
}
