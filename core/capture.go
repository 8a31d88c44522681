package core

// CheckCaptures verifies that every close(prop) Action in g is reached
// only after a begin(prop) on every path leading to it (spec.md §7 "a
// static, advisory check"). Begins and closes may straddle a goto
// between Nodes, so the check is a "must" dataflow analysis over the
// whole grammar's goto graph rather than a per-Node scan: the set of
// props known open on entry to a Node is the intersection of every
// predecessor edge's outgoing set, computed to a fixpoint, with a Node
// no case ever goto's to starting from the empty set.
func CheckCaptures(g *Grammar) error {
	index := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		index[n.Name] = i
	}

	hasIncoming := make([]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		for _, c := range n.Cases {
			walkGotoTargets(c.Action, func(target string) {
				if j, ok := index[target]; ok {
					hasIncoming[j] = true
				}
			})
		}
	}

	universe := make(map[int]bool, len(g.Storage.Props))
	for i := range g.Storage.Props {
		universe[i] = true
	}

	entry := make([]map[int]bool, len(g.Nodes))
	for i := range g.Nodes {
		if hasIncoming[i] {
			entry[i] = copyPropSet(universe)
		} else {
			entry[i] = map[int]bool{}
		}
	}

	for changed := true; changed; {
		changed = false
		for i, n := range g.Nodes {
			for _, c := range n.Cases {
				for _, e := range captureEdges(c.Action, entry[i]) {
					j, ok := index[e.target]
					if !ok {
						continue
					}
					if intersectPropSet(entry[j], e.open) {
						changed = true
					}
				}
			}
		}
	}

	for i, n := range g.Nodes {
		for _, c := range n.Cases {
			if err := walkCaptureActions(n.Name, c.Action, copyPropSet(entry[i]), g.Storage); err != nil {
				return err
			}
		}
	}

	return nil
}

// captureEdge is one outgoing goto edge discovered while walking an
// Action chain, together with the set of props open at that point.
type captureEdge struct {
	target string
	open   map[int]bool
}

// captureEdges walks a's chain from the given open set, following
// select arms, and returns one edge per goto it can reach.
func captureEdges(a Action, open map[int]bool) []captureEdge {
	switch a.Kind {
	case ActStore:
		next := copyPropSet(open)
		switch a.Capture {
		case CaptureBegin:
			next[a.Prop] = true
		case CaptureClose:
			delete(next, a.Prop)
		}
		if a.Next == nil {
			return nil
		}
		return captureEdges(*a.Next, next)
	case ActCall:
		if a.Next == nil {
			return nil
		}
		return captureEdges(*a.Next, open)
	case ActGoto:
		return []captureEdge{{target: a.GotoState, open: open}}
	case ActError:
		return nil
	case ActSelect:
		var edges []captureEdge
		for _, arm := range a.SelectArms {
			edges = append(edges, captureEdges(arm.Action, open)...)
		}
		if a.SelectOtherwise != nil {
			edges = append(edges, captureEdges(*a.SelectOtherwise, open)...)
		}
		return edges
	}
	return nil
}

// walkCaptureActions re-walks a's chain from a converged entry set,
// flagging the first close(prop) it finds with prop not open.
func walkCaptureActions(state string, a Action, open map[int]bool, storage Storage) error {
	switch a.Kind {
	case ActStore:
		switch a.Capture {
		case CaptureBegin:
			open[a.Prop] = true
		case CaptureClose:
			if !open[a.Prop] {
				return &BadCapture{State: state, Prop: propName(storage, a.Prop)}
			}
			delete(open, a.Prop)
		}
		if a.Next == nil {
			return nil
		}
		return walkCaptureActions(state, *a.Next, open, storage)
	case ActCall:
		if a.Next == nil {
			return nil
		}
		return walkCaptureActions(state, *a.Next, open, storage)
	case ActSelect:
		for _, arm := range a.SelectArms {
			if err := walkCaptureActions(state, arm.Action, copyPropSet(open), storage); err != nil {
				return err
			}
		}
		if a.SelectOtherwise != nil {
			return walkCaptureActions(state, *a.SelectOtherwise, copyPropSet(open), storage)
		}
	}
	return nil
}

// walkGotoTargets calls f with every state name a's chain can goto.
func walkGotoTargets(a Action, f func(string)) {
	switch a.Kind {
	case ActStore, ActCall:
		if a.Next != nil {
			walkGotoTargets(*a.Next, f)
		}
	case ActGoto:
		f(a.GotoState)
	case ActSelect:
		for _, arm := range a.SelectArms {
			walkGotoTargets(arm.Action, f)
		}
		if a.SelectOtherwise != nil {
			walkGotoTargets(*a.SelectOtherwise, f)
		}
	}
}

func copyPropSet(s map[int]bool) map[int]bool {
	out := make(map[int]bool, len(s))
	for k, v := range s {
		if v {
			out[k] = true
		}
	}
	return out
}

// intersectPropSet narrows dst to dst ∩ src in place, reporting
// whether anything was removed.
func intersectPropSet(dst, src map[int]bool) bool {
	changed := false
	for k := range dst {
		if !src[k] {
			delete(dst, k)
			changed = true
		}
	}
	return changed
}

func propName(storage Storage, prop int) string {
	if prop >= 0 && prop < len(storage.Props) {
		return storage.Props[prop].Name
	}
	return StateLabel(prop)
}
