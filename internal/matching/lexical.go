// Package matching scores hackathon keyword sets against user skills.
package matching

import (
	"math"
	"strings"

	"github.com/spigell/hackmatch/internal/keywords"
	"github.com/spigell/hackmatch/internal/taxonomy"
)

// Bonus tiers. A matched term takes the bonus of the first tier it hits.
var bonusTiers = []struct {
	markers []string
	bonus   float64
}{
	{markers: []string{"ai", "machine learning", "cloud", "blockchain", "security"}, bonus: 0.1},
	{markers: []string{"web", "mobile", "fullstack", "frontend", "backend"}, bonus: 0.05},
}

// Result is the breakdown of a single lexical match.
type Result struct {
	Score    float64
	Base     float64
	Bonus    float64
	Matches  []string
	Expanded keywords.Set
}

// Lexical expands skills through the taxonomy and scores keyword overlap.
type Lexical struct {
	taxonomy *taxonomy.Taxonomy
}

func NewLexical(tax *taxonomy.Taxonomy) *Lexical {
	if tax == nil {
		tax = taxonomy.Default()
	}
	return &Lexical{taxonomy: tax}
}

// Expand returns the skills together with all terms of every category they
// belong to.
func (l *Lexical) Expand(skills []string) keywords.Set {
	expanded := keywords.Normalize(skills)
	for skill := range keywords.Normalize(skills) {
		for _, c := range l.taxonomy.Related(skill) {
			expanded.Add(c.Terms...)
		}
	}
	return expanded
}

// Match scores a hackathon keyword set against the skills. Keywords are
// normalized first; the score is 0 when no keyword is left.
func (l *Lexical) Match(hackathonKeywords keywords.Set, skills []string) Result {
	kw := keywords.Normalize(hackathonKeywords.Sorted())
	expanded := l.Expand(skills)

	res := Result{Expanded: expanded}
	if kw.Len() == 0 {
		return res
	}

	res.Matches = kw.Intersect(expanded).Sorted()
	res.Base = float64(len(res.Matches)) / float64(kw.Len())
	for _, term := range res.Matches {
		res.Bonus += bonusFor(term)
	}
	res.Score = math.Min(1, res.Base+res.Bonus)

	return res
}

// Score is Match without the breakdown.
func (l *Lexical) Score(hackathonKeywords keywords.Set, skills []string) float64 {
	return l.Match(hackathonKeywords, skills).Score
}

// SkillMatches maps every skill to the hackathon keywords it reaches through
// its own expansion. Skills that reach nothing are omitted.
func (l *Lexical) SkillMatches(hackathonKeywords keywords.Set, skills []string) map[string][]string {
	kw := keywords.Normalize(hackathonKeywords.Sorted())

	out := make(map[string][]string)
	for _, skill := range keywords.Normalize(skills).Sorted() {
		hits := kw.Intersect(l.Expand([]string{skill}))
		if hits.Len() > 0 {
			out[skill] = hits.Sorted()
		}
	}
	return out
}

func bonusFor(term string) float64 {
	for _, tier := range bonusTiers {
		for _, marker := range tier.markers {
			if strings.Contains(term, marker) {
				return tier.bonus
			}
		}
	}
	return 0
}
