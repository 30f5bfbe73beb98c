package recommend

import (
	"github.com/spigell/hackmatch/internal/ai"
	"github.com/spigell/hackmatch/internal/evaluation"
	"github.com/spigell/hackmatch/internal/hackathon"
	"github.com/spigell/hackmatch/internal/utils"
)

type Mode string

const (
	ModeLexical  Mode = "lexical"
	ModeCombined Mode = "combined"
)

// MatchResult is the score of one hackathon for one user.
type MatchResult struct {
	Hackathon          *hackathon.Hackathon `json:"hackathon"`
	Keywords           []string             `json:"keywords"`
	Score              float64              `json:"match_score"`
	LexicalScore       float64              `json:"lexical_score"`
	SemanticSimilarity *float64             `json:"semantic_similarity,omitempty"`
	Metrics            evaluation.Metrics   `json:"evaluation_metrics"`
	SkillMatches       map[string][]string  `json:"skill_matches,omitempty"`
	Review             *ai.FitAssessment    `json:"review,omitempty"`
}

func (m *MatchResult) Title() string {
	if m.Hackathon == nil {
		return ""
	}
	return m.Hackathon.Title
}

// BatchMetrics is the half-split self-consistency report of a combined run.
// It says how similarities are ordered within the batch and nothing about
// real relevance.
type BatchMetrics struct {
	evaluation.Classification
	Threshold float64 `json:"threshold"`
}

// Recommendations is the outcome of one run. Items is sorted by descending
// score and never longer than the configured limit; it may be empty.
type Recommendations struct {
	RunID        string         `json:"run_id"`
	Mode         Mode           `json:"mode"`
	Degraded     bool           `json:"degraded,omitempty"`
	Items        []*MatchResult `json:"items"`
	Skipped      []*ItemError   `json:"-"`
	BatchMetrics *BatchMetrics  `json:"batch_metrics,omitempty"`
}

func (r *Recommendations) Len() int {
	return len(r.Items)
}

// Hackathons returns the recommended hackathons in rank order.
func (r *Recommendations) Hackathons() *hackathon.Hackathons {
	out := &hackathon.Hackathons{}
	for _, item := range r.Items {
		out.Items = append(out.Items, item.Hackathon)
	}
	return out
}

// DumpToTmpFile writes the full run, scores and metrics included, to a temp
// JSON file.
func (r *Recommendations) DumpToTmpFile() (string, error) {
	return utils.DumpToTmpFile("recommendations_*.json", r)
}
