package core

// TreeKind discriminates the specialized-tree sum type produced by
// the Specializer (spec.md §3 "Specialized tree").
type TreeKind int

const (
	TreeFail TreeKind = iota
	TreeDone
	TreeConsume
	TreeBranch
)

// Tree is the Specializer's output for a single Node: a decision tree
// that resolves an input prefix to exactly one Action.
type Tree struct {
	Kind TreeKind

	// TreeDone.
	Step *Step

	// TreeConsume: consume Storage.Props[Prop] bytes, then Step.
	Prop int

	// TreeBranch.
	Branches BranchSet
	Default  *Tree
}

func FailTree() *Tree { return &Tree{Kind: TreeFail} }

func DoneTree(step Step) *Tree { return &Tree{Kind: TreeDone, Step: &step} }

func ConsumeTree(prop int, step Step) *Tree {
	return &Tree{Kind: TreeConsume, Prop: prop, Step: &step}
}

func BranchTree(b BranchSet, def *Tree) *Tree {
	return &Tree{Kind: TreeBranch, Branches: b, Default: def}
}

// BranchKind discriminates whether a branch point specializes on a
// literal-string prefix or on a set of single-byte alternatives.
type BranchKind int

const (
	BranchString BranchKind = iota
	BranchChars
)

// CharBranch is one single-byte alternative under a BranchChars
// branch point. Next is a sub-tree, not a flat Step: a group of
// literal cases that share this leading byte factors into a nested
// branch over their residuals (spec.md §4.2 point 3).
type CharBranch struct {
	Byte byte
	Next *Tree
}

// StringBranch is a literal-prefix specialization: if the subject
// bytes are seen next, proceed with Next; Subject is non-empty.
type StringBranch struct {
	Subject string
	Next    *Tree
}

// BranchSet is the payload of a TreeBranch node: either a single
// literal-prefix specialization or a list of single-byte alternatives.
type BranchSet struct {
	Kind   BranchKind
	String *StringBranch
	Chars  []CharBranch
}

func StringBranchOf(subject string, next *Tree) BranchSet {
	return BranchSet{Kind: BranchString, String: &StringBranch{Subject: subject, Next: next}}
}

func CharsBranchOf(cs []CharBranch) BranchSet {
	return BranchSet{Kind: BranchChars, Chars: cs}
}

// Step carries the per-arm bookkeeping the Translator needs to emit
// the right sequence of capture/store/advance instructions.
//
// Capture is true when Next is, at its head, a store of Capture.data
// or Capture.begin: such a store needs to see the cursor positioned
// before the byte it is capturing, which is why the Translator raises
// jump to at least 1 for these arms (spec.md §4.3 compile_step).
//
// Data is the single byte value this arm is known, statically, to
// match — set for every CharBranch arm (each byte of a PatByte,
// PatRange or PatSet case, or the last byte of a factored literal),
// nil for a solitary literal's is() arm, the otherwise default, and a
// consume (the Translator then has the emitted store instruction read
// the current byte instead).
//
// Next is the Action to run, structurally unchanged from the
// Grammar's Action (spec.md §4.2 point 5, "Action lowering ...
// preserves store/call/goto/error/select").
type Step struct {
	Capture bool
	Data    *byte
	Next    Action
}
