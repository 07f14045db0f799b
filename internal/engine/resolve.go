package engine

// subtractFixed returns req minus the fixed production, with zeroed kinds
// removed.
func subtractFixed(req Requirement, fixed map[Resource]int) Requirement {
	out := req.Clone()
	for r, n := range fixed {
		out.Take(r, n)
	}
	return out
}

// resolveForced commits every group that has exactly one still-required
// member, repeating until a pass commits nothing. It works on copies and
// returns the reduced requirement, the committed members and the groups left
// undecided.
func resolveForced(req Requirement, groups []Group) (Requirement, []Resource, []Group) {
	req = req.Clone()
	groups = append([]Group(nil), groups...)
	var used []Resource

	for changed := true; changed; {
		changed = false
		kept := groups[:0]
		for _, g := range groups {
			var only Resource
			n := 0
			for _, r := range g {
				if req.Needs(r) {
					only = r
					n++
				}
			}
			if n == 1 {
				req.Take(only, 1)
				used = append(used, only)
				changed = true
				continue
			}
			kept = append(kept, g)
		}
		groups = kept
	}
	return req, used, groups
}

// usable keeps the groups that can still contribute to req.
func usable(req Requirement, groups []Group) []Group {
	var out []Group
	for _, g := range groups {
		if req.intersects(g) {
			out = append(out, g)
		}
	}
	return out
}
