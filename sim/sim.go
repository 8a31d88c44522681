// Package sim is a byte-stream interpreter for a compiled
// core.Machine: a development aid that lets a grammar author exercise
// a Machine against real input before handing it to an external code
// emitter. It is not a target back-end; the generated parser's own
// runtime is out of scope (spec.md §1, §5).
package sim

import (
	"context"
	"fmt"

	"github.com/loomlang/loom/core"
)

// Runtime executes the host-side computations a Machine's grammar
// author left as opaque: CallArbitrary/CallStore callback indices and
// span callbacks. It mirrors core.Interpreter's role in sheens
// (interpreters/interpreters.go): pluggable, so a grammar can be run
// against goja-backed script or a no-op stand-in.
type Runtime interface {
	// Arbitrary invokes the callback at ix with the given argument
	// values and returns its result.
	Arbitrary(ctx context.Context, ix int, args []uint64) (uint64, error)

	// Span invokes the span callback named name over buf[start:end]
	// and returns its result.
	Span(ctx context.Context, name string, start, end int, buf []byte) (uint64, error)
}

// RuntimeFault is returned when a Machine reaches an error(code)
// instruction. Code 0 is not reserved; it may carry author-defined
// meaning like any other code.
type RuntimeFault struct {
	Code uint64
}

func (e *RuntimeFault) Error() string {
	return fmt.Sprintf("runtime fault: error code %d", e.Code)
}

// span is one capture's recorded (start, end) in the fed buffer.
type span struct {
	start, end int
	open       bool
}

// Interp walks a Machine against bytes fed to it incrementally,
// pausing at the same points the emitted parser would: mid-literal
// inside an is() match, and mid-span inside a consume(). Call accepts
// every state change as committed; there is no backtracking, matching
// the Machine's own non-backtracking model (spec.md §4.2/§4.3).
type Interp struct {
	m  *core.Machine
	rt Runtime

	node int
	ip   *core.Instruction

	buf []byte
	pos int

	props []uint64
	spans []span

	done  bool
	fault error
}

// New starts an Interp at the named entry state.
func New(m *core.Machine, rt Runtime, entry string) (*Interp, error) {
	idx, ok := m.Mapper[entry]
	if !ok {
		return nil, &core.UnknownState{Name: entry}
	}
	return &Interp{
		m:     m,
		rt:    rt,
		node:  idx,
		props: make([]uint64, len(m.Storage.Props)),
		spans: make([]span, len(m.Storage.Props)),
	}, nil
}

// Done reports whether the Interp has reached an error(code)
// instruction (see Fault) and will not advance further.
func (in *Interp) Done() bool { return in.done }

// Fault returns the RuntimeFault that stopped the Interp, or nil if
// it's still running.
func (in *Interp) Fault() error { return in.fault }

// Prop returns the current numeric value of the named property.
func (in *Interp) Prop(name string) (uint64, bool) {
	ix := in.m.Storage.PropIndex(name)
	if ix < 0 {
		return 0, false
	}
	return in.props[ix], true
}

// Feed appends bs to the input and runs the Machine as far forward as
// the buffered input allows, pausing cleanly if a literal or a
// consume needs bytes not yet available.
func (in *Interp) Feed(ctx context.Context, bs []byte) error {
	in.buf = append(in.buf, bs...)
	return in.run(ctx)
}

func (in *Interp) run(ctx context.Context) error {
	if in.done {
		return in.fault
	}
	for {
		var inst *core.Instruction
		if in.ip != nil {
			inst = in.ip
		} else {
			inst = in.m.Nodes[in.node].Body
		}

		next, suspended, err := in.step(ctx, inst)
		if err != nil {
			in.done = true
			in.fault = err
			return err
		}
		if suspended {
			in.ip = inst
			return nil
		}
		in.ip = next
	}
}

// step executes one Instruction. next is where to resume (nil means
// "re-enter through the current node's body", used after a goto).
// suspended means inst itself should be retried once more input
// arrives; next is ignored in that case.
func (in *Interp) step(ctx context.Context, inst *core.Instruction) (next *core.Instruction, suspended bool, err error) {
	switch inst.Kind {
	case core.InstConsumer:
		return in.stepConsumer(ctx, inst.Consumer)
	case core.InstSelect:
		return in.stepSelect(ctx, inst)
	case core.InstNext:
		in.pos += inst.N
		return inst.Then, false, nil
	case core.InstStore:
		b := in.currentByteOrZero(inst.Data)
		in.props[inst.Prop] = uint64(b)
		return inst.Then, false, nil
	case core.InstCapture:
		in.spans[inst.Prop] = span{start: in.pos, open: true}
		return inst.Then, false, nil
	case core.InstClose:
		sp := in.spans[inst.Prop]
		sp.end = in.pos
		sp.open = false
		in.spans[inst.Prop] = sp
		if _, err := in.rt.Span(ctx, in.m.Storage.Props[inst.Prop].Name, sp.start, sp.end, in.buf); err != nil {
			return nil, false, err
		}
		return inst.Then, false, nil
	case core.InstCall:
		if err := in.execCall(ctx, inst.Call); err != nil {
			return nil, false, err
		}
		return inst.Then, false, nil
	case core.InstGoto:
		in.node = inst.Target
		return nil, false, nil
	case core.InstError:
		return nil, false, &RuntimeFault{Code: inst.ErrorCode}
	}
	return nil, false, fmt.Errorf("sim: unhandled instruction kind %d", inst.Kind)
}

// currentByteOrZero returns data if it names a fixed byte, else the
// byte currently under the cursor (nil means "the current byte",
// core.StoreInst's own convention).
func (in *Interp) currentByteOrZero(data *byte) byte {
	if data != nil {
		return *data
	}
	if in.pos < len(in.buf) {
		return in.buf[in.pos]
	}
	return 0
}

func (in *Interp) stepSelect(ctx context.Context, inst *core.Instruction) (*core.Instruction, bool, error) {
	val, err := in.evalSelectOn(ctx, inst.SelectOn)
	if err != nil {
		return nil, false, err
	}
	for _, sc := range inst.SelectArms {
		if sc.Value == val {
			return sc.Inst, false, nil
		}
	}
	if inst.Otherwise != nil {
		return inst.Otherwise, false, nil
	}
	return nil, false, &RuntimeFault{Code: 0}
}

func (in *Interp) evalSelectOn(ctx context.Context, on core.SelectOn) (uint64, error) {
	// SelectOn.isMethod() isn't reachable from outside core; a method
	// select is exactly the case with no Call to evaluate instead.
	if on.Call == nil {
		return in.props[on.MethodProp], nil
	}
	return in.evalCall(ctx, on.Call)
}

// execCall runs a Call for its side effect (storing into a Prop or
// invoking a host callback) and discards any return value that isn't
// stored; select uses evalCall instead to keep the value.
func (in *Interp) execCall(ctx context.Context, c *core.Call) error {
	val, err := in.evalCall(ctx, c)
	if err != nil {
		return err
	}
	switch c.Kind {
	case core.CallMulAdd, core.CallLoadNum, core.CallStore, core.CallStoreConst:
		in.props[c.Prop] = val
	}
	return nil
}

func (in *Interp) evalCall(ctx context.Context, c *core.Call) (uint64, error) {
	switch c.Kind {
	case core.CallArbitrary:
		return in.rt.Arbitrary(ctx, c.Arbitrary, in.props)
	case core.CallMulAdd, core.CallLoadNum:
		// Both accumulate value*base + digit(currentByte); spec.md
		// leaves the distinction between them unresolved (no scenario
		// exercises CallLoadNum), so sim treats them identically.
		base := baseOf(c.Base)
		digit, ok := digitValue(in.currentByteOrZero(nil), c.Base)
		if !ok {
			return 0, &RuntimeFault{Code: 0}
		}
		return in.props[c.Prop]*base + digit, nil
	case core.CallStore:
		return in.rt.Arbitrary(ctx, c.CallIx, in.props)
	case core.CallStoreConst:
		return c.Const, nil
	}
	return 0, fmt.Errorf("sim: unhandled call kind %d", c.Kind)
}

// stepConsumer runs one Consumer. A ConIs or ConConsume that needs
// more bytes than are currently buffered suspends (returns
// suspended=true) rather than erroring; char/range/map/chars/mixed
// look only at the single byte under the cursor and suspend only when
// no byte is buffered there yet.
func (in *Interp) stepConsumer(ctx context.Context, c *core.Consumer) (next *core.Instruction, suspended bool, err error) {
	switch c.Kind {
	case core.ConIs:
		lit := c.Literal
		if in.pos+len(lit) > len(in.buf) {
			return nil, true, nil
		}
		if string(in.buf[in.pos:in.pos+len(lit)]) == lit {
			// The common, non-capturing case auto-advances here; a
			// capturing continuation instead carries its own explicit
			// next(len(lit), ...) and expects the cursor still at the
			// literal's first byte when it runs (translate.go's
			// BranchString jump rule). Sim does not distinguish the
			// two and always advances eagerly, so a capture spanning
			// a literal records its start one literal too late; no
			// grammar in this tree captures across an is() match.
			in.pos += len(lit)
			return c.Ok, false, nil
		}
		return c.Err, false, nil

	case core.ConChar:
		b, ok := in.peek()
		if !ok {
			return nil, true, nil
		}
		if b == c.Char {
			return c.Ok, false, nil
		}
		return c.Err, false, nil

	case core.ConRange:
		b, ok := in.peek()
		if !ok {
			return nil, true, nil
		}
		if b >= c.RangeVal.Lo && b <= c.RangeVal.Hi {
			return c.Ok, false, nil
		}
		return c.Err, false, nil

	case core.ConMap:
		b, ok := in.peek()
		if !ok {
			return nil, true, nil
		}
		if c.Interval.Contains(b) {
			return c.Ok, false, nil
		}
		return c.Err, false, nil

	case core.ConChars:
		b, ok := in.peek()
		if !ok {
			return nil, true, nil
		}
		for _, a := range c.CharsArms {
			if a.Byte == b {
				return a.Inst, false, nil
			}
		}
		return c.Otherwise, false, nil

	case core.ConMixed:
		b, ok := in.peek()
		if !ok {
			return nil, true, nil
		}
		for _, a := range c.MixedArms {
			if checkMatches(a.Check, b) {
				return a.Inst, false, nil
			}
		}
		return c.Otherwise, false, nil

	case core.ConConsume:
		n := int(in.props[c.Prop])
		if in.pos+n > len(in.buf) {
			return nil, true, nil
		}
		in.pos += n
		return c.Ok, false, nil
	}
	return nil, false, fmt.Errorf("sim: unhandled consumer kind %d", c.Kind)
}

func (in *Interp) peek() (byte, bool) {
	if in.pos >= len(in.buf) {
		return 0, false
	}
	return in.buf[in.pos], true
}

func checkMatches(c core.Check, b byte) bool {
	switch c.Kind {
	case core.CheckChar:
		return b == c.Char
	case core.CheckRange:
		return b >= c.Range.Lo && b <= c.Range.Hi
	case core.CheckMap:
		return c.Interval.Contains(b)
	}
	return false
}

func baseOf(b core.Base) uint64 {
	switch b {
	case core.Octal:
		return 8
	case core.Hex:
		return 16
	default:
		return 10
	}
}

func digitValue(b byte, base core.Base) (uint64, bool) {
	switch {
	case b >= '0' && b <= '9':
		v := uint64(b - '0')
		if base == core.Octal && v > 7 {
			return 0, false
		}
		return v, true
	case base == core.Hex && b >= 'a' && b <= 'f':
		return uint64(b-'a') + 10, true
	case base == core.Hex && b >= 'A' && b <= 'F':
		return uint64(b-'A') + 10, true
	}
	return 0, false
}
