package filtering

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/hackmatch/internal/hackathon"
)

// toggle carries the enabled state shared by all steps.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

type matchedFilter struct {
	toggle
}

// NewMatched creates a filter that removes candidates without any match.
func NewMatched() Filter {
	return &matchedFilter{}
}

func (f *matchedFilter) Name() string { return "matched" }

func (f *matchedFilter) Validate() error { return nil }

func (f *matchedFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	dropped := c.retain(func(item *Candidate) bool { return item.Score > 0 })
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Debug("excluding hackathons without any match",
			zap.Strings("excluded_hackathons", dropped),
			zap.Int("hackathons_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

func (f *matchedFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

type minScoreFilter struct {
	toggle
	minimum float64
}

// NewMinScore creates a filter that removes candidates scoring below minimum.
// A non-positive minimum keeps everything.
func NewMinScore(minimum float64) Filter {
	return &minScoreFilter{minimum: minimum}
}

func (f *minScoreFilter) Name() string { return "min_score" }

func (f *minScoreFilter) Validate() error {
	if f.minimum > 1 {
		return fmt.Errorf("minimum score %.2f is above 1", f.minimum)
	}
	return nil
}

func (f *minScoreFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	if f.minimum <= 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	dropped := c.retain(func(item *Candidate) bool { return item.Score >= f.minimum })
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Debug("excluding hackathons below minimum score",
			zap.Float64("min_score", f.minimum),
			zap.Strings("excluded_hackathons", dropped),
			zap.Int("hackathons_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

func (f *minScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"min_score": strconv.FormatFloat(f.minimum, 'f', -1, 64)},
	}
}

type excludeFileFilter struct {
	toggle
	path string
}

// NewExcludeFile creates a filter that removes hackathons listed in the exclude file.
func NewExcludeFile(path string) Filter {
	return &excludeFileFilter{path: strings.TrimSpace(path)}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Validate() error { return nil }

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	if f.path == "" {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	excluded, err := hackathon.GetExcludedFromFile(f.path)
	if err != nil {
		return c, Step{}, fmt.Errorf("getting excluded hackathons from file: %w", err)
	}

	titles := make(map[string]struct{}, len(excluded.Items))
	for _, title := range excluded.Titles() {
		titles[strings.ToLower(strings.TrimSpace(title))] = struct{}{}
	}

	dropped := c.retain(func(item *Candidate) bool {
		_, listed := titles[strings.ToLower(strings.TrimSpace(item.Title))]
		return !listed
	})
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding hackathons based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_hackathons", dropped),
			zap.Int("hackathons_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
