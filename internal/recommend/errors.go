package recommend

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks batch-level input problems. It is never returned
	// for a batch that merely produced no recommendations.
	ErrInvalidInput = errors.New("invalid input")
	ErrNoHackathons = fmt.Errorf("%w: no hackathons supplied", ErrInvalidInput)
	ErrNoSkills     = fmt.Errorf("%w: no skills supplied", ErrInvalidInput)

	// ErrResourceUnavailable is returned when no hackathon could be scored.
	ErrResourceUnavailable = errors.New("resource unavailable")
)

// ItemError records why a single hackathon was skipped.
type ItemError struct {
	Index int
	Title string
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("hackathon %d (%q): %v", e.Index, e.Title, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
