// Package taxonomy holds the static technology taxonomy used to expand skills
// and to tag hackathon texts with technology categories.
package taxonomy

import (
	"strings"
)

// Category is a named cluster of synonymous technology terms.
type Category struct {
	Name  string
	Terms []string
}

// Match is a single category hit found in a text.
type Match struct {
	Category string
	Term     string
}

// Taxonomy is an ordered, read-only list of categories. It is safe for
// concurrent use because nothing mutates it after New returns.
type Taxonomy struct {
	categories []Category
	byName     map[string]int
}

// New normalizes the provided categories (lowercase, trimmed, empty terms
// dropped) and returns a taxonomy preserving their order.
func New(categories []Category) *Taxonomy {
	t := &Taxonomy{
		categories: make([]Category, 0, len(categories)),
		byName:     make(map[string]int, len(categories)),
	}

	for _, c := range categories {
		name := normalize(c.Name)
		if name == "" {
			continue
		}
		if _, dup := t.byName[name]; dup {
			continue
		}

		terms := make([]string, 0, len(c.Terms))
		for _, term := range c.Terms {
			if term = normalize(term); term != "" {
				terms = append(terms, term)
			}
		}

		t.byName[name] = len(t.categories)
		t.categories = append(t.categories, Category{Name: name, Terms: terms})
	}

	return t
}

// Default returns the built-in technology taxonomy.
func Default() *Taxonomy {
	return New(defaultCategories)
}

// Categories returns a copy of the categories in declaration order.
func (t *Taxonomy) Categories() []Category {
	out := make([]Category, len(t.categories))
	for i, c := range t.categories {
		out[i] = Category{Name: c.Name, Terms: append([]string(nil), c.Terms...)}
	}
	return out
}

// Terms returns the terms of the named category, or nil when it is unknown.
func (t *Taxonomy) Terms(name string) []string {
	idx, ok := t.byName[normalize(name)]
	if !ok {
		return nil
	}
	return append([]string(nil), t.categories[idx].Terms...)
}

// Len returns the number of categories.
func (t *Taxonomy) Len() int {
	return len(t.categories)
}

// Related returns every category a skill belongs to. See belongs for the
// membership rule.
func (t *Taxonomy) Related(skill string) []Category {
	skill = normalize(skill)
	if skill == "" {
		return nil
	}

	var related []Category
	for _, c := range t.categories {
		if belongs(skill, c) {
			related = append(related, c)
		}
	}
	return related
}

// MatchText reports, for each category, the first term (in declaration order)
// that occurs as a substring of the lowercased text.
func (t *Taxonomy) MatchText(text string) []Match {
	text = strings.ToLower(text)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var matches []Match
	for _, c := range t.categories {
		for _, term := range c.Terms {
			if strings.Contains(text, term) {
				matches = append(matches, Match{Category: c.Name, Term: term})
				break
			}
		}
	}
	return matches
}

// belongs decides whether a normalized skill is a member of a category.
//
// A skill belongs when it equals the category name, equals one of its terms,
// or when any term occurs as a substring of the skill. The substring fallback
// is deliberately loose: "html" lands in the ai category through "ml" and
// "machine learning" lands in ar/vr through "ar". Ranking results depend on
// this, so any tightening has to happen here and nowhere else.
func belongs(skill string, c Category) bool {
	if skill == c.Name {
		return true
	}
	for _, term := range c.Terms {
		if skill == term || strings.Contains(skill, term) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
