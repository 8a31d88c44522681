package core

import (
	"strconv"
	"strings"
)

// translator holds the Machine under construction. It is created
// fresh per call to Translate and never shared across compiles
// (spec.md §9 "No global state").
type translator struct {
	m *Machine
}

// Translate lowers a Grammar into a Machine. Named states are
// reserved as nodes in source order first, so that goto(name) actions
// encountered while compiling any state resolve to a stable index
// immediately, without a second pass.
func Translate(g *Grammar) (*Machine, error) {
	t := &translator{m: &Machine{
		Storage: *g.Storage.Copy(),
		Mapper:  map[string]int{},
	}}

	for _, n := range g.Nodes {
		t.addNode(n.Name)
	}

	if err := CheckCaptures(g); err != nil {
		return nil, err
	}

	for i, n := range g.Nodes {
		tree, err := Specialize(n)
		if err != nil {
			return nil, err
		}
		inst, err := t.compileTree(tree, 0, true)
		if err != nil {
			return nil, err
		}
		t.m.Nodes[i] = Inst{IsCheck: inst.Kind == InstConsumer, Body: inst}
	}

	return t.m, nil
}

func (t *translator) addNode(name string) int {
	idx := len(t.m.Nodes)
	t.m.Nodes = append(t.m.Nodes, Inst{Body: ErrorInst(0)})
	if name == "" {
		name = StateLabel(idx)
	} else {
		t.m.Mapper[name] = idx
	}
	t.m.Names = append(t.m.Names, name)
	return idx
}

// gotoNext advances by jump bytes before running inst, eliding the
// advance entirely when jump is zero (spec.md §4.3 gotoNext).
func gotoNext(jump int, inst *Instruction) *Instruction {
	if jump > 0 {
		return NextInst(jump, inst)
	}
	return inst
}

// compileTree lowers a Tree into an Instruction. isEntry marks
// whether the result will become a node's own root: a branch compiled
// as an entry becomes the node's consumer directly, while a branch
// compiled as an interior instruction is materialized into a fresh
// node reached by goto.
func (t *translator) compileTree(tree *Tree, jump int, isEntry bool) (*Instruction, error) {
	switch tree.Kind {
	case TreeFail:
		return ErrorInst(0), nil
	case TreeDone:
		return t.compileStep(jump, *tree.Step)
	case TreeConsume:
		step, err := t.compileStep(jump, *tree.Step)
		if err != nil {
			return nil, err
		}
		idx := t.addNode("")
		t.m.Nodes[idx] = Inst{IsCheck: true, Body: ConsumerInst(Consumer{Kind: ConConsume, Prop: tree.Prop, Ok: step})}
		return GotoInst(idx), nil
	case TreeBranch:
		return t.compileBranch(tree, jump, isEntry)
	}
	return nil, &GrammarConflict{Details: "unreachable tree kind"}
}

func (t *translator) compileBranch(tree *Tree, jump int, isEntry bool) (*Instruction, error) {
	defInst, err := t.compileTree(tree.Default, 0, false)
	if err != nil {
		return nil, err
	}

	var consumer Consumer
	switch tree.Branches.Kind {
	case BranchString:
		sb := tree.Branches.String
		innerJump := 0
		if treeCaptures(sb.Next) {
			innerJump = len(sb.Subject)
		}
		nextInst, err := t.compileTree(sb.Next, innerJump, false)
		if err != nil {
			return nil, err
		}
		consumer = Consumer{Kind: ConIs, Literal: sb.Subject, Ok: nextInst, Err: defInst}
	case BranchChars:
		consumer, err = t.compileChars(tree.Branches.Chars, defInst)
		if err != nil {
			return nil, err
		}
	}

	if isEntry {
		return ConsumerInst(consumer), nil
	}

	idx := t.addNode("")
	t.m.Nodes[idx] = Inst{IsCheck: true, Body: ConsumerInst(consumer)}
	return gotoNext(jump, GotoInst(idx)), nil
}

// treeCaptures reports whether the step a sub-tree bottoms out at
// needs to see the cursor before the byte that led here, i.e. whether
// the matcher that dispatches to it must raise its jump (spec.md
// §4.3 "jump = 1 if capture"). Trees that branch again manage their
// own jump independently once compiled, starting fresh.
func treeCaptures(tr *Tree) bool {
	switch tr.Kind {
	case TreeDone, TreeConsume:
		return tr.Step.Capture
	default:
		return false
	}
}

// compileChars groups a Node's per-byte matchers by the structural
// hash of their compiled continuation, then picks char/range/map/
// chars/mixed shape per spec.md §4.2 point 4.
func (t *translator) compileChars(cs []CharBranch, defInst *Instruction) (Consumer, error) {
	type group struct {
		bytes []byte
		inst  *Instruction
	}
	order := make([]string, 0, len(cs))
	groups := make(map[string]*group, len(cs))

	for _, cb := range cs {
		// Unlike is(), a single-byte consumer never auto-advances: the
		// committed byte must always be stepped over explicitly, capture
		// or not (spec.md §4.3 compile_step's "raised to at least 1"
		// already holds at the floor for these matchers).
		inst, err := t.compileTree(cb.Next, 1, false)
		if err != nil {
			return Consumer{}, err
		}
		key := instKey(inst)
		g, have := groups[key]
		if !have {
			g = &group{inst: inst}
			groups[key] = g
			order = append(order, key)
		}
		g.bytes = append(g.bytes, cb.Byte)
	}

	if len(order) == 1 {
		g := groups[order[0]]
		return byteConsumer(g.bytes, g.inst, defInst), nil
	}

	allSingle := true
	for _, k := range order {
		if len(groups[k].bytes) > 1 {
			allSingle = false
			break
		}
	}

	if allSingle {
		arms := make([]CharsArm, 0, len(order))
		for _, k := range order {
			g := groups[k]
			arms = append(arms, CharsArm{Byte: g.bytes[0], Inst: g.inst})
		}
		return Consumer{Kind: ConChars, CharsArms: arms, Otherwise: defInst}, nil
	}

	arms := make([]MixedArm, 0, len(order))
	for _, k := range order {
		g := groups[k]
		arms = append(arms, MixedArm{Check: checkFor(g.bytes), Inst: g.inst})
	}
	return Consumer{Kind: ConMixed, MixedArms: arms, Otherwise: defInst}, nil
}

func byteConsumer(bytes []byte, inst, defInst *Instruction) Consumer {
	iv := NewInterval(bytes)
	if len(iv.Ranges) == 1 {
		r := iv.Ranges[0]
		if r.Lo == r.Hi {
			return Consumer{Kind: ConChar, Char: r.Lo, Ok: inst, Err: defInst}
		}
		return Consumer{Kind: ConRange, RangeVal: r, Ok: inst, Err: defInst}
	}
	return Consumer{Kind: ConMap, Interval: iv, Ok: inst, Err: defInst}
}

func checkFor(bytes []byte) Check {
	iv := NewInterval(bytes)
	if len(iv.Ranges) == 1 {
		r := iv.Ranges[0]
		if r.Lo == r.Hi {
			return Check{Kind: CheckChar, Char: r.Lo}
		}
		return Check{Kind: CheckRange, Range: r}
	}
	return Check{Kind: CheckMap, Interval: iv}
}

// compileStep lowers a Step into an Instruction, raising jump to at
// least 1 when the step captures (spec.md §4.3 compile_step).
func (t *translator) compileStep(jump int, step Step) (*Instruction, error) {
	if step.Capture && jump < 1 {
		jump = 1
	}
	return t.compileNext(jump, step.Data, step.Next)
}

func (t *translator) compileNext(jump int, data *byte, a Action) (*Instruction, error) {
	if a.Kind == ActSelect {
		return t.compileSelect(jump, data, a)
	}
	return t.compileAction(jump, data, a)
}

func (t *translator) compileSelect(jump int, data *byte, a Action) (*Instruction, error) {
	arms := make([]SelectCase, 0, len(a.SelectArms))
	for _, sa := range a.SelectArms {
		inst, err := t.compileNext(jump, data, sa.Action)
		if err != nil {
			return nil, err
		}
		arms = append(arms, SelectCase{Value: sa.Value, Inst: inst})
	}
	var otherwise *Instruction
	if a.SelectOtherwise != nil {
		inst, err := t.compileNext(jump, data, *a.SelectOtherwise)
		if err != nil {
			return nil, err
		}
		otherwise = inst
	}
	return SelectInst(a.SelectOn, arms, otherwise), nil
}

// compileAction lowers a single non-select Action. store(Capture.*,
// …) and call(…) place their advance after the store/call so the
// stored or called-over byte is the one under the cursor; goto and
// error place it before, since they have no continuation of their own
// to run first (spec.md §4.3).
func (t *translator) compileAction(jump int, data *byte, a Action) (*Instruction, error) {
	switch a.Kind {
	case ActStore:
		rest, err := t.compileRest(a.Next)
		if err != nil {
			return nil, err
		}
		then := gotoNext(jump, rest)
		switch a.Capture {
		case CaptureBegin:
			return CaptureInst(a.Prop, then), nil
		case CaptureClose:
			return CloseInst(a.Prop, then), nil
		default:
			return StoreInst(a.Prop, data, then), nil
		}
	case ActCall:
		rest, err := t.compileRest(a.Next)
		if err != nil {
			return nil, err
		}
		return CallInst(*a.Call, gotoNext(jump, rest)), nil
	case ActGoto:
		idx, ok := t.m.Mapper[a.GotoState]
		if !ok {
			return nil, &UnknownState{Name: a.GotoState}
		}
		return gotoNext(jump, GotoInst(idx)), nil
	case ActError:
		return gotoNext(jump, ErrorInst(a.ErrorCode)), nil
	}
	return nil, &GrammarConflict{Details: "unsupported action kind"}
}

func (t *translator) compileRest(next *Action) (*Instruction, error) {
	if next == nil {
		return nil, nil
	}
	return t.compileNext(0, nil, *next)
}

// instKey is a structural, collision-resistant (for our purposes)
// string key over a compiled Instruction, used to group CharBranch
// arms whose continuations are identical (spec.md §4.2 "grouping is
// keyed by the hash of the translated target instruction").
func instKey(inst *Instruction) string {
	var b strings.Builder
	writeInstKey(&b, inst)
	return b.String()
}

func writeInstKey(b *strings.Builder, inst *Instruction) {
	if inst == nil {
		b.WriteString("_")
		return
	}
	b.WriteByte('K')
	b.WriteString(strconv.Itoa(int(inst.Kind)))
	switch inst.Kind {
	case InstConsumer:
		writeConsumerKey(b, inst.Consumer)
	case InstSelect:
		writeSelectOnKey(b, inst.SelectOn)
		b.WriteByte('[')
		for _, sc := range inst.SelectArms {
			b.WriteString(strconv.FormatUint(sc.Value, 10))
			b.WriteByte(':')
			writeInstKey(b, sc.Inst)
			b.WriteByte(',')
		}
		b.WriteByte(']')
		writeInstKey(b, inst.Otherwise)
	case InstNext:
		b.WriteString(strconv.Itoa(inst.N))
		writeInstKey(b, inst.Then)
	case InstStore:
		b.WriteString(strconv.Itoa(inst.Prop))
		b.WriteByte(':')
		if inst.Data == nil {
			b.WriteString("cur")
		} else {
			b.WriteString(strconv.Itoa(int(*inst.Data)))
		}
		writeInstKey(b, inst.Then)
	case InstCapture, InstClose:
		b.WriteString(strconv.Itoa(inst.Prop))
		writeInstKey(b, inst.Then)
	case InstCall:
		writeCallKey(b, inst.Call)
		writeInstKey(b, inst.Then)
	case InstGoto:
		b.WriteString(strconv.Itoa(inst.Target))
	case InstError:
		b.WriteString(strconv.FormatUint(inst.ErrorCode, 10))
	}
}

func writeConsumerKey(b *strings.Builder, c *Consumer) {
	if c == nil {
		b.WriteString("_")
		return
	}
	b.WriteString(strconv.Itoa(int(c.Kind)))
	switch c.Kind {
	case ConIs:
		b.WriteString(c.Literal)
		writeInstKey(b, c.Ok)
		writeInstKey(b, c.Err)
	case ConChar:
		b.WriteByte(c.Char)
		writeInstKey(b, c.Ok)
		writeInstKey(b, c.Err)
	case ConRange:
		b.WriteByte(c.RangeVal.Lo)
		b.WriteByte(c.RangeVal.Hi)
		writeInstKey(b, c.Ok)
		writeInstKey(b, c.Err)
	case ConMap:
		if c.Interval != nil {
			b.WriteString(c.Interval.hashKey())
		}
		writeInstKey(b, c.Ok)
		writeInstKey(b, c.Err)
	case ConChars:
		for _, a := range c.CharsArms {
			b.WriteByte(a.Byte)
			writeInstKey(b, a.Inst)
		}
		writeInstKey(b, c.Otherwise)
	case ConMixed:
		for _, a := range c.MixedArms {
			writeCheckKey(b, a.Check)
			writeInstKey(b, a.Inst)
		}
		writeInstKey(b, c.Otherwise)
	case ConConsume:
		b.WriteString(strconv.Itoa(c.Prop))
		writeInstKey(b, c.Ok)
	}
}

func writeCheckKey(b *strings.Builder, c Check) {
	b.WriteString(strconv.Itoa(int(c.Kind)))
	switch c.Kind {
	case CheckChar:
		b.WriteByte(c.Char)
	case CheckRange:
		b.WriteByte(c.Range.Lo)
		b.WriteByte(c.Range.Hi)
	case CheckMap:
		if c.Interval != nil {
			b.WriteString(c.Interval.hashKey())
		}
	}
}

func writeCallKey(b *strings.Builder, c *Call) {
	if c == nil {
		b.WriteString("_")
		return
	}
	b.WriteString(strconv.Itoa(int(c.Kind)))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(c.Arbitrary))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(int(c.Base)))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(c.Prop))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(c.CallIx))
	b.WriteByte(':')
	b.WriteString(strconv.FormatUint(c.Const, 10))
}

func writeSelectOnKey(b *strings.Builder, s SelectOn) {
	if s.isMethod() {
		b.WriteString("m")
		b.WriteString(strconv.Itoa(s.MethodProp))
		return
	}
	b.WriteString("c")
	writeCallKey(b, s.Call)
}
