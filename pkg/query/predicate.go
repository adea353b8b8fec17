package query

// Op is the kind of a predicate node.
type Op int

const (
	OpAll         Op = iota // every child matches; no children matches everything
	OpAny                   // at least one child matches
	OpEq                    // field equals Value
	OpRange                 // Min <= field <= Max on the bounds that are set
	OpContains              // field contains Value, case-insensitively
	OpContainsAll           // field (a set) holds every entry of Values
)

// Predicate is a query-language independent description of which property
// records match. Build produces it; BSON and Match consume it.
type Predicate struct {
	Op       Op
	Field    string
	Value    any
	Min      *float64
	Max      *float64
	Values   []string
	Children []Predicate
}

func All(children ...Predicate) Predicate { return Predicate{Op: OpAll, Children: children} }

func Any(children ...Predicate) Predicate { return Predicate{Op: OpAny, Children: children} }

func Eq(field string, value any) Predicate { return Predicate{Op: OpEq, Field: field, Value: value} }

func Range(field string, min, max *float64) Predicate {
	return Predicate{Op: OpRange, Field: field, Min: min, Max: max}
}

func Contains(field, term string) Predicate {
	return Predicate{Op: OpContains, Field: field, Value: term}
}

func ContainsAll(field string, values []string) Predicate {
	return Predicate{Op: OpContainsAll, Field: field, Values: values}
}

// And returns p with extra constraints appended. A top-level All is extended in
// place rather than nested.
func (p Predicate) And(extra ...Predicate) Predicate {
	if p.Op == OpAll {
		children := make([]Predicate, 0, len(p.Children)+len(extra))
		children = append(children, p.Children...)
		children = append(children, extra...)
		return All(children...)
	}
	return All(append([]Predicate{p}, extra...)...)
}

// IsEmpty reports whether p places no constraint at all.
func (p Predicate) IsEmpty() bool {
	return p.Op == OpAll && len(p.Children) == 0
}
