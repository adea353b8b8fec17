package query

import (
	"strings"
	"unicode/utf8"
)

// Document exposes record fields by dotted path, e.g. "features.bedrooms".
type Document interface {
	Field(path string) (any, bool)
}

// Fields is a flat Document keyed by dotted path.
type Fields map[string]any

func (f Fields) Field(path string) (any, bool) {
	v, ok := f[path]
	return v, ok
}

// Match evaluates the predicate against doc in memory. It mirrors the MongoDB
// semantics of BSON: missing fields never satisfy a constraint.
func (p Predicate) Match(doc Document) bool {
	switch p.Op {
	case OpAll:
		for _, c := range p.Children {
			if !c.Match(doc) {
				return false
			}
		}
		return true
	case OpAny:
		for _, c := range p.Children {
			if c.Match(doc) {
				return true
			}
		}
		return false
	}

	v, ok := doc.Field(p.Field)
	if !ok {
		return false
	}

	switch p.Op {
	case OpEq:
		if a, isNum := toFloat(v); isNum {
			b, bothNum := toFloat(p.Value)
			return bothNum && a == b
		}
		s, isStr := v.(string)
		want, wantStr := p.Value.(string)
		return isStr && wantStr && s == want
	case OpRange:
		n, isNum := toFloat(v)
		if !isNum {
			return false
		}
		if p.Min != nil && n < *p.Min {
			return false
		}
		if p.Max != nil && n > *p.Max {
			return false
		}
		return true
	case OpContains:
		s, isStr := v.(string)
		term, _ := p.Value.(string)
		return isStr && containsFold(s, term)
	case OpContainsAll:
		have, isSet := v.([]string)
		if !isSet {
			return false
		}
		set := make(map[string]struct{}, len(have))
		for _, h := range have {
			set[h] = struct{}{}
		}
		for _, want := range p.Values {
			if _, found := set[want]; !found {
				return false
			}
		}
		return true
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// containsFold reports whether substr occurs in s under Unicode simple case
// folding, as the $regex "i" option does. "İ" and "ı" only match themselves.
func containsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	n := utf8.RuneCountInString(substr)
	runes := []rune(s)
	for i := 0; i+n <= len(runes); i++ {
		if strings.EqualFold(string(runes[i:i+n]), substr) {
			return true
		}
	}
	return false
}
