package hackathon

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/goccy/go-json"
)

type ExcludedHackathons struct {
	Items []*ExcludedHackathon
}

type ExcludedHackathon struct {
	Title      string
	URL        string
	ExcludedAt time.Time
}

func (h *Hackathons) ToExcluded() *ExcludedHackathons {
	excluded := &ExcludedHackathons{}
	now := time.Now().UTC()
	for _, item := range h.Items {
		excluded.Items = append(excluded.Items, &ExcludedHackathon{
			Title:      item.Title,
			URL:        item.URL,
			ExcludedAt: now,
		})
	}
	return excluded
}

// GetExcludedFromFile reads an exclude file. A missing or empty file is an
// empty list.
func GetExcludedFromFile(path string) (*ExcludedHackathons, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &ExcludedHackathons{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedHackathons{}, nil
	}

	var excluded ExcludedHackathons
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

// Append adds entries whose titles are not present yet.
func (e *ExcludedHackathons) Append(other *ExcludedHackathons) {
	seen := make(map[string]struct{}, len(e.Items))
	for _, item := range e.Items {
		seen[titleKey(item.Title)] = struct{}{}
	}
	for _, item := range other.Items {
		if _, ok := seen[titleKey(item.Title)]; ok {
			continue
		}
		seen[titleKey(item.Title)] = struct{}{}
		e.Items = append(e.Items, item)
	}
}

func (e *ExcludedHackathons) Titles() []string {
	titles := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		titles = append(titles, item.Title)
	}
	return titles
}

func (e *ExcludedHackathons) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
