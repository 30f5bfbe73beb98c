package keywords

import (
	"sort"
	"strings"
)

// Set is a deduplicated collection of normalized terms.
type Set map[string]struct{}

// NewSet returns a set holding the given items as-is.
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	s.Add(items...)
	return s
}

// Normalize lowercases and trims every item, dropping empties.
func Normalize(items []string) Set {
	s := make(Set, len(items))
	for _, item := range items {
		if item = normalize(item); item != "" {
			s[item] = struct{}{}
		}
	}
	return s
}

func (s Set) Add(items ...string) {
	for _, item := range items {
		s[item] = struct{}{}
	}
}

func (s Set) Has(item string) bool {
	_, ok := s[item]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

// Union adds every element of other to s.
func (s Set) Union(other Set) {
	for item := range other {
		s[item] = struct{}{}
	}
}

// Intersect returns the elements present in both sets.
func (s Set) Intersect(other Set) Set {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}

	out := make(Set)
	for item := range small {
		if large.Has(item) {
			out[item] = struct{}{}
		}
	}
	return out
}

// Difference returns the elements of s missing from other.
func (s Set) Difference(other Set) Set {
	out := make(Set)
	for item := range s {
		if !other.Has(item) {
			out[item] = struct{}{}
		}
	}
	return out
}

func (s Set) Clone() Set {
	out := make(Set, len(s))
	for item := range s {
		out[item] = struct{}{}
	}
	return out
}

// Sorted returns the elements in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for item := range s {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
