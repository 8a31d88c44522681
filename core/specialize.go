package core

// Specialize turns the ordered cases at a single Node into a Tree:
// it checks that the cases are mutually disjoint, factors shared
// literal prefixes into nested branches, and defers the
// char/range/map/mixed shape choice to the Translator, which regroups
// by continuation (spec.md §4.2, §4.3 "group by hash(inst)").
func Specialize(node Node) (*Tree, error) {
	var (
		otherwise   *Action
		consume     *Case
		nonOther    []Case
	)

	for i := range node.Cases {
		c := node.Cases[i]
		switch c.Pattern.Kind {
		case PatOtherwise:
			if otherwise != nil {
				return nil, &GrammarConflict{State: node.Name, Details: "more than one otherwise case"}
			}
			a := c.Action
			otherwise = &a
		case PatConsume:
			if consume != nil {
				return nil, &GrammarConflict{State: node.Name, Details: "more than one consume case"}
			}
			cc := c
			consume = &cc
		case PatLiteral:
			if len(c.Pattern.Literal) == 0 {
				return nil, &EmptyPattern{State: node.Name}
			}
			nonOther = append(nonOther, c)
		default:
			nonOther = append(nonOther, c)
		}
	}

	if consume != nil {
		if len(nonOther) > 0 || otherwise != nil {
			return nil, &GrammarConflict{State: node.Name, Details: "a consume case must be the only case at its state"}
		}
		return ConsumeTree(consume.Pattern.Prop, stepOf(consume.Action, nil)), nil
	}

	if err := checkDisjoint(node.Name, nonOther); err != nil {
		return nil, err
	}

	def := FailTree()
	if otherwise != nil {
		def = DoneTree(stepOf(*otherwise, nil))
	}

	entries := make([]entry, 0, len(nonOther))
	for _, c := range nonOther {
		entries = append(entries, expand(c)...)
	}

	return buildBranch(entries, def)
}

// entry is one (leading byte, continuation) pair produced by expanding
// a Case (or a literal's residual) one byte at a time.
type entry struct {
	byte byte
	arm  arm
}

// arm is either fully resolved at this byte (terminal) or has a
// literal residual still to match.
type arm struct {
	terminal bool
	action   Action
	residual string // meaningful only when !terminal
}

func expand(c Case) []entry {
	p := c.Pattern
	switch p.Kind {
	case PatByte:
		return []entry{{p.Byte, arm{terminal: true, action: c.Action}}}
	case PatRange, PatSet:
		iv := p.interval()
		out := make([]entry, 0, 8)
		for _, r := range iv.Ranges {
			for b := int(r.Lo); b <= int(r.Hi); b++ {
				out = append(out, entry{byte(b), arm{terminal: true, action: c.Action}})
			}
		}
		return out
	case PatLiteral:
		lit := p.Literal
		if len(lit) == 1 {
			return []entry{{lit[0], arm{terminal: true, action: c.Action}}}
		}
		return []entry{{lit[0], arm{residual: lit[1:], action: c.Action}}}
	}
	return nil
}

// buildBranch groups entries by leading byte and recurses on groups
// that still have literal residuals to factor.
func buildBranch(entries []entry, def *Tree) (*Tree, error) {
	if len(entries) == 0 {
		return def, nil
	}

	// A solitary literal case with no competing leading byte is better
	// expressed as one multi-byte `is` check than as a chain of
	// one-byte CharBranch levels: it lets the emitted consumer pause
	// mid-literal across buffer boundaries (spec.md Consumer.is).
	if len(entries) == 1 && !entries[0].arm.terminal {
		lit := string(entries[0].byte) + entries[0].arm.residual
		return BranchTree(StringBranchOf(lit, DoneTree(stepOf(entries[0].arm.action, nil))), def), nil
	}

	order := make([]byte, 0, len(entries))
	groups := make(map[byte][]arm)
	for _, e := range entries {
		if _, have := groups[e.byte]; !have {
			order = append(order, e.byte)
		}
		groups[e.byte] = append(groups[e.byte], e.arm)
	}

	chars := make([]CharBranch, 0, len(order))
	for _, b := range order {
		arms := groups[b]
		if len(arms) == 1 && (arms[0].terminal) {
			bb := b
			chars = append(chars, CharBranch{Byte: b, Next: DoneTree(stepOf(arms[0].action, &bb))})
			continue
		}

		// Every arm remaining in a multi-arm group is a literal
		// residual: the earlier global prefix/disjointness check
		// rules out a terminal arm sharing a byte with anything
		// else (core's checkDisjoint).
		subEntries := make([]entry, 0, len(arms))
		for _, a := range arms {
			if len(a.residual) == 0 {
				subEntries = append(subEntries, entry{0, arm{terminal: true, action: a.action}})
				continue
			}
			subEntries = append(subEntries, entry{a.residual[0], arm{
				residual: a.residual[1:],
				action:   a.action,
			}})
			if len(a.residual) == 1 {
				subEntries[len(subEntries)-1].arm.terminal = true
				subEntries[len(subEntries)-1].arm.residual = ""
			}
		}

		sub, err := buildBranch(subEntries, def)
		if err != nil {
			return nil, err
		}
		chars = append(chars, CharBranch{Byte: b, Next: sub})
	}

	return BranchTree(CharsBranchOf(chars), def), nil
}

func stepOf(a Action, data *byte) Step {
	capture := a.Kind == ActStore && (a.Capture == CaptureData || a.Capture == CaptureBegin)
	return Step{Capture: capture, Data: data, Next: a}
}

// checkDisjoint implements spec.md §4.2 point 2: character-class
// patterns must not intersect; literal patterns must not be a prefix
// of one another (including being equal); a class pattern's interval
// must not contain a literal's leading byte.
func checkDisjoint(state string, cases []Case) error {
	var (
		classes  []Pattern
		literals []string
	)
	for _, c := range cases {
		switch c.Pattern.Kind {
		case PatByte, PatRange, PatSet:
			classes = append(classes, c.Pattern)
		case PatLiteral:
			literals = append(literals, c.Pattern.Literal)
		}
	}

	for i := 0; i < len(classes); i++ {
		ivi := classes[i].interval()
		for j := i + 1; j < len(classes); j++ {
			ivj := classes[j].interval()
			if ivi.Intersects(ivj) {
				return &GrammarConflict{State: state, Details: "overlapping byte classes"}
			}
		}
	}

	for i := 0; i < len(literals); i++ {
		for j := i + 1; j < len(literals); j++ {
			a, b := literals[i], literals[j]
			if isPrefixOrEqual(a, b) || isPrefixOrEqual(b, a) {
				return &GrammarConflict{State: state, Details: "literal \"" + a + "\" conflicts with \"" + b + "\""}
			}
		}
	}

	for _, cl := range classes {
		iv := cl.interval()
		for _, lit := range literals {
			if iv.Contains(lit[0]) {
				return &GrammarConflict{State: state, Details: "byte class overlaps leading byte of literal \"" + lit + "\""}
			}
		}
	}

	return nil
}

func isPrefixOrEqual(a, b string) bool {
	if len(a) > len(b) {
		return false
	}
	return a == b[:len(a)]
}
