// Package hackathon holds hackathon records and the sources they come from.
package hackathon

import (
	"fmt"
	"strings"

	"github.com/spigell/hackmatch/internal/taxonomy"
	"github.com/spigell/hackmatch/internal/utils"
)

const (
	DefaultPrize    = "Not specified"
	DefaultDeadline = "No deadline specified"
)

type Hackathons struct {
	Items []*Hackathon
}

// Hackathon is a single listing. It is not modified while being scored.
type Hackathon struct {
	Title        string   `json:"title" mapstructure:"title"`
	Description  string   `json:"description" mapstructure:"description"`
	Requirements []string `json:"requirements" mapstructure:"requirements"`
	Prize        string   `json:"prize" mapstructure:"prize"`
	Criteria     string   `json:"criteria" mapstructure:"criteria"`
	Deadline     string   `json:"deadline" mapstructure:"deadline"`
	Keywords     []string `json:"keywords" mapstructure:"keywords"`
	URL          string   `json:"url,omitempty" mapstructure:"url"`
}

// FullText joins the description, requirements and keywords into the text
// keywords are extracted from.
func (h *Hackathon) FullText() string {
	return fmt.Sprintf("%s\nRequirements: %s\nKeywords: %s",
		h.Description,
		strings.Join(h.Requirements, ", "),
		strings.Join(h.Keywords, ", "),
	)
}

func (h *Hackathons) Len() int {
	return len(h.Items)
}

func (h *Hackathons) Titles() []string {
	titles := make([]string, 0, len(h.Items))
	for _, item := range h.Items {
		titles = append(titles, item.Title)
	}
	return titles
}

func (h *Hackathons) DumpToTmpFile() (string, error) {
	return utils.DumpToTmpFile("hackathons_*.json", h)
}

// ReportByCategory groups hackathon titles by the taxonomy categories found
// in their text. Hackathons matching no category are listed under "other".
func (h *Hackathons) ReportByCategory(tax *taxonomy.Taxonomy) map[string][]string {
	report := make(map[string][]string)
	for _, item := range h.Items {
		matches := tax.MatchText(item.Title + "\n" + item.FullText())
		if len(matches) == 0 {
			report["other"] = append(report["other"], item.Title)
			continue
		}
		for _, m := range matches {
			report[m.Category] = append(report[m.Category], item.Title)
		}
	}
	return report
}

func titleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
