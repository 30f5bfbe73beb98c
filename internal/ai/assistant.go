// Package ai declares the contracts of the model-backed collaborators.
package ai

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by providers that cannot serve requests at the
// moment, for example while their circuit breaker is open.
var ErrUnavailable = errors.New("ai provider unavailable")

// Embedder turns text into a fixed-length vector. Identical input yields an
// identical vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Subject is what a Reviewer looks at: one hackathon and the skills of the
// user asking for recommendations.
type Subject struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
	Skills       []string `json:"skills,omitempty"`
}

type FitAssessment struct {
	Fit            bool     `json:"fit"`
	Score          float64  `json:"score"`
	RequiredSkills []string `json:"required_skills,omitempty"`
	Reason         string   `json:"reason,omitempty"`
	Error          string   `json:"error,omitempty"`
	Raw            string   `json:"-"`
}

// Reviewer asks a language model whether a hackathon fits the user.
type Reviewer interface {
	Review(ctx context.Context, subject *Subject) (*FitAssessment, error)
}
