package core

import "testing"

func TestSpecializeByteClassConflict(t *testing.T) {
	node := Node{
		Name: "start",
		Cases: []Case{
			{Pattern: PatByteOf('A'), Action: ActGotoOf("x")},
			{Pattern: PatByteOf('A'), Action: ActGotoOf("y")},
		},
	}

	_, err := Specialize(node)
	if err == nil {
		t.Fatal("expected a conflict, got nil")
	}
	if _, ok := err.(*GrammarConflict); !ok {
		t.Fatalf("expected *GrammarConflict, got %T", err)
	}
}

func TestSpecializeLiteralPrefixConflict(t *testing.T) {
	node := Node{
		Name: "start",
		Cases: []Case{
			{Pattern: PatLiteralOf("SET"), Action: ActGotoOf("x")},
			{Pattern: PatLiteralOf("SE"), Action: ActGotoOf("y")},
		},
	}

	_, err := Specialize(node)
	if _, ok := err.(*GrammarConflict); !ok {
		t.Fatalf("expected *GrammarConflict, got %v", err)
	}
}

func TestSpecializeEmptyLiteral(t *testing.T) {
	node := Node{
		Name:  "start",
		Cases: []Case{{Pattern: PatLiteralOf(""), Action: ActGotoOf("x")}},
	}

	_, err := Specialize(node)
	if _, ok := err.(*EmptyPattern); !ok {
		t.Fatalf("expected *EmptyPattern, got %v", err)
	}
}

func TestSpecializeConsumeMustBeSoleCase(t *testing.T) {
	node := Node{
		Name: "start",
		Cases: []Case{
			{Pattern: PatConsumeOf(0), Action: ActGotoOf("x")},
			{Pattern: PatByteOf('A'), Action: ActGotoOf("y")},
		},
	}

	_, err := Specialize(node)
	if _, ok := err.(*GrammarConflict); !ok {
		t.Fatalf("expected *GrammarConflict, got %v", err)
	}
}

func TestSpecializeConsumeAlone(t *testing.T) {
	node := Node{
		Name:  "start",
		Cases: []Case{{Pattern: PatConsumeOf(3), Action: ActGotoOf("x")}},
	}

	tree, err := Specialize(node)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Kind != TreeConsume {
		t.Fatalf("Kind = %v, want TreeConsume", tree.Kind)
	}
	if tree.Prop != 3 {
		t.Fatalf("Prop = %d, want 3", tree.Prop)
	}
}

func TestSpecializeSingleLiteral(t *testing.T) {
	node := Node{
		Name:  "start",
		Cases: []Case{{Pattern: PatLiteralOf("GET"), Action: ActGotoOf("done")}},
	}

	tree, err := Specialize(node)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Kind != TreeBranch {
		t.Fatalf("Kind = %v, want TreeBranch", tree.Kind)
	}
	if tree.Branches.Kind != BranchString {
		t.Fatalf("Branches.Kind = %v, want BranchString", tree.Branches.Kind)
	}
	if tree.Branches.String.Subject != "GET" {
		t.Fatalf("Subject = %q, want GET", tree.Branches.String.Subject)
	}
	if tree.Default.Kind != TreeFail {
		t.Fatalf("Default.Kind = %v, want TreeFail (no otherwise case)", tree.Default.Kind)
	}
}

func TestSpecializeSharedLiteralPrefixFactors(t *testing.T) {
	node := Node{
		Name: "start",
		Cases: []Case{
			{Pattern: PatLiteralOf("SET"), Action: ActGotoOf("set")},
			{Pattern: PatLiteralOf("SEND"), Action: ActGotoOf("send")},
		},
	}

	tree, err := Specialize(node)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Kind != TreeBranch || tree.Branches.Kind != BranchChars {
		t.Fatalf("expected a chars branch over 'S', got %+v", tree)
	}
	if len(tree.Branches.Chars) != 1 || tree.Branches.Chars[0].Byte != 'S' {
		t.Fatalf("expected a single 'S' arm, got %+v", tree.Branches.Chars)
	}

	inner := tree.Branches.Chars[0].Next
	if inner.Kind != TreeBranch || inner.Branches.Kind != BranchChars {
		t.Fatalf("expected a nested chars branch over 'E', got %+v", inner)
	}
	if len(inner.Branches.Chars) != 1 || inner.Branches.Chars[0].Byte != 'E' {
		t.Fatalf("expected a single 'E' arm, got %+v", inner.Branches.Chars)
	}

	leaf := inner.Branches.Chars[0].Next
	if leaf.Kind != TreeBranch || leaf.Branches.Kind != BranchChars {
		t.Fatalf("expected the residual 'T' vs 'ND' split, got %+v", leaf)
	}
	if len(leaf.Branches.Chars) != 2 {
		t.Fatalf("expected 2 residual arms, got %d", len(leaf.Branches.Chars))
	}
}

func TestSpecializeOtherwiseAsDefault(t *testing.T) {
	node := Node{
		Name: "start",
		Cases: []Case{
			{Pattern: PatByteOf('A'), Action: ActGotoOf("a")},
			{Pattern: PatOtherwiseOf(), Action: ActErrorOf(7)},
		},
	}

	tree, err := Specialize(node)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Default.Kind != TreeDone {
		t.Fatalf("Default.Kind = %v, want TreeDone", tree.Default.Kind)
	}
	if tree.Default.Step.Next.Kind != ActError || tree.Default.Step.Next.ErrorCode != 7 {
		t.Fatalf("Default step = %+v, want error(7)", tree.Default.Step.Next)
	}
}

func TestSpecializeRangeVsLiteralConflict(t *testing.T) {
	node := Node{
		Name: "start",
		Cases: []Case{
			{Pattern: PatRangeOf('A', 'Z'), Action: ActGotoOf("x")},
			{Pattern: PatLiteralOf("ABC"), Action: ActGotoOf("y")},
		},
	}

	_, err := Specialize(node)
	if _, ok := err.(*GrammarConflict); !ok {
		t.Fatalf("expected *GrammarConflict, got %v", err)
	}
}
