package engine

import (
	"fmt"
	"strings"
)

// Resource is one of the seven tradeable resource kinds.
type Resource int

const (
	Clay Resource = iota
	Stone
	Ore
	Wood
	Loom
	Glass
	Papyrus

	numResources = int(Papyrus) + 1
)

var resourceNames = map[Resource]string{
	Clay:    "Clay",
	Stone:   "Stone",
	Ore:     "Ore",
	Wood:    "Wood",
	Loom:    "Loom",
	Glass:   "Glass",
	Papyrus: "Papyrus",
}

var resourceLetters = map[rune]Resource{
	'C': Clay,
	'S': Stone,
	'O': Ore,
	'W': Wood,
	'L': Loom,
	'G': Glass,
	'P': Papyrus,
}

func (r Resource) String() string {
	if s, ok := resourceNames[r]; ok {
		return s
	}
	return "Unknown"
}

// Valid reports whether r is one of the seven kinds.
func (r Resource) Valid() bool {
	return r >= Clay && int(r) < numResources
}

// Raw reports whether r is a raw material (Clay, Stone, Ore, Wood).
func (r Resource) Raw() bool {
	return r >= Clay && r <= Wood
}

// Letter returns the single-letter code used in cost strings.
func (r Resource) Letter() byte {
	if !r.Valid() {
		return '?'
	}
	return "CSOWLGP"[r]
}

func (r Resource) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownResource, int(r))
	}
	return []byte{r.Letter()}, nil
}

func (r *Resource) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if len(s) == 1 {
		if res, ok := ParseResource(rune(s[0])); ok {
			*r = res
			return nil
		}
	}
	for res, name := range resourceNames {
		if strings.EqualFold(name, s) {
			*r = res
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownResource, s)
}

// ParseResource maps a cost letter to its resource kind.
func ParseResource(c rune) (Resource, bool) {
	r, ok := resourceLetters[c]
	return r, ok
}

// AllResources returns the seven kinds in enumeration order.
func AllResources() []Resource {
	return []Resource{Clay, Stone, Ore, Wood, Loom, Glass, Papyrus}
}

// Group is an either-of-N slot: one unit of any member.
type Group []Resource

func (g Group) Contains(r Resource) bool {
	for _, m := range g {
		if m == r {
			return true
		}
	}
	return false
}

func (g Group) String() string {
	parts := make([]string, len(g))
	for i, r := range g {
		parts[i] = string(r.Letter())
	}
	return strings.Join(parts, "/")
}

// Requirement is the outstanding demand per resource kind. Entries are
// always positive; zeroed kinds are removed.
type Requirement map[Resource]int

func (q Requirement) Clone() Requirement {
	out := make(Requirement, len(q))
	for r, n := range q {
		out[r] = n
	}
	return out
}

// Add increases the demand for r by n.
func (q Requirement) Add(r Resource, n int) {
	if n <= 0 {
		return
	}
	q[r] += n
}

// Take lowers the demand for r by n and drops the entry once it reaches zero.
func (q Requirement) Take(r Resource, n int) {
	if _, ok := q[r]; !ok {
		return
	}
	q[r] -= n
	if q[r] <= 0 {
		delete(q, r)
	}
}

// Needs reports whether at least one unit of r is still required.
func (q Requirement) Needs(r Resource) bool {
	return q[r] > 0
}

func (q Requirement) Empty() bool {
	return len(q) == 0
}

// Kinds returns the required kinds in enumeration order.
func (q Requirement) Kinds() []Resource {
	var out []Resource
	for _, r := range AllResources() {
		if q[r] > 0 {
			out = append(out, r)
		}
	}
	return out
}

// Total is the number of units still required.
func (q Requirement) Total() int {
	n := 0
	for _, c := range q {
		n += c
	}
	return n
}

func (q Requirement) String() string {
	var b strings.Builder
	for _, r := range q.Kinds() {
		for i := 0; i < q[r]; i++ {
			b.WriteByte(r.Letter())
		}
	}
	return b.String()
}

// intersects reports whether any member of g is still required.
func (q Requirement) intersects(g Group) bool {
	for _, r := range g {
		if q.Needs(r) {
			return true
		}
	}
	return false
}
