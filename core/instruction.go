package core

// ConsumerKind discriminates the Consumer sum type. A Consumer is the
// only Instruction that may inspect (and conditionally advance past)
// the next input byte.
type ConsumerKind int

const (
	ConIs ConsumerKind = iota
	ConChar
	ConRange
	ConMap
	ConChars
	ConMixed
	ConConsume
)

// CheckKind discriminates the per-arm test in a ConMixed Consumer.
type CheckKind int

const (
	CheckChar CheckKind = iota
	CheckRange
	CheckMap
)

// Check is one heterogeneous test in a ConMixed Consumer's arm list.
type Check struct {
	Kind     CheckKind
	Char     byte
	Range    Range
	Interval *Interval
}

// CharsArm is one arm of a dense ConChars switch: a single byte and
// the instruction to run if it matches.
type CharsArm struct {
	Byte byte
	Inst *Instruction
}

// MixedArm is one arm of a ConMixed chained if-else.
type MixedArm struct {
	Check Check
	Inst  *Instruction
}

// Consumer is an Instruction variant that reads the current input
// byte (or, for ConIs/ConConsume, a run of bytes) and branches on it.
type Consumer struct {
	Kind ConsumerKind

	// ConIs.
	Literal string

	// ConChar.
	Char byte

	// ConRange.
	RangeVal Range

	// ConMap.
	Interval *Interval

	// ConIs / ConChar / ConRange / ConMap: Ok is the instruction to
	// run on a match, Err on a mismatch. ConConsume also uses Ok, for
	// the instruction to run once the span is consumed; it has no Err,
	// since a consume never rejects on content, only pauses at a
	// buffer boundary (a runtime concern, not a static one).
	Ok  *Instruction
	Err *Instruction

	// ConChars / ConMixed.
	CharsArms []CharsArm
	MixedArms []MixedArm
	Otherwise *Instruction

	// ConConsume.
	Prop int
}

// InstructionKind discriminates the full Instruction sum type: one
// Consumer variant, or one of the "tail" variants that flow or jump
// without themselves gating on a fresh byte of input.
type InstructionKind int

const (
	InstConsumer InstructionKind = iota
	InstSelect
	InstNext
	InstStore
	InstCapture
	InstClose
	InstCall
	InstGoto
	InstError
)

// SelectCase is one (value, Instruction) arm of an InstSelect.
type SelectCase struct {
	Value uint64
	Inst  *Instruction
}

// Instruction is the bytecode unit emitted by the Translator. Exactly
// one of the fields relevant to Kind is populated.
type Instruction struct {
	Kind InstructionKind

	// InstConsumer.
	Consumer *Consumer

	// InstSelect.
	SelectOn   SelectOn
	SelectArms []SelectCase
	Otherwise  *Instruction

	// InstNext.
	N int

	// InstStore.
	Prop int
	Data *byte // nil means "the current byte"

	// InstStore / InstCapture / InstClose / InstCall / InstNext:
	// the instruction to run next.
	Then *Instruction

	// InstCall.
	Call *Call

	// InstGoto.
	Target int

	// InstError.
	ErrorCode uint64
}

func ConsumerInst(c Consumer) *Instruction {
	return &Instruction{Kind: InstConsumer, Consumer: &c}
}

func SelectInst(on SelectOn, arms []SelectCase, otherwise *Instruction) *Instruction {
	return &Instruction{Kind: InstSelect, SelectOn: on, SelectArms: arms, Otherwise: otherwise}
}

func NextInst(n int, then *Instruction) *Instruction {
	return &Instruction{Kind: InstNext, N: n, Then: then}
}

func StoreInst(prop int, data *byte, then *Instruction) *Instruction {
	return &Instruction{Kind: InstStore, Prop: prop, Data: data, Then: then}
}

func CaptureInst(prop int, then *Instruction) *Instruction {
	return &Instruction{Kind: InstCapture, Prop: prop, Then: then}
}

func CloseInst(prop int, then *Instruction) *Instruction {
	return &Instruction{Kind: InstClose, Prop: prop, Then: then}
}

func CallInst(call Call, then *Instruction) *Instruction {
	return &Instruction{Kind: InstCall, Call: &call, Then: then}
}

func GotoInst(target int) *Instruction {
	return &Instruction{Kind: InstGoto, Target: target}
}

func ErrorInst(code uint64) *Instruction {
	return &Instruction{Kind: InstError, ErrorCode: code}
}

// Inst is one node of a Machine: its Instruction body, and whether
// that body is itself a Consumer. A node whose state has no byte test
// (no cases, a sole consume case, or only an otherwise case) has a
// non-Consumer body and IsCheck false.
type Inst struct {
	IsCheck bool
	Body    *Instruction
}

// Machine is the Translator's output: a flat, indexed array of nodes
// plus the Storage descriptor the Grammar declared and a name-to-index
// lookup for named states.
type Machine struct {
	Storage Storage
	Names   []string
	Nodes   []Inst
	Mapper  map[string]int
}
