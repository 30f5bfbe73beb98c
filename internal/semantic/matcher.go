package semantic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/hackmatch/internal/ai"
)

const defaultTimeout = 10 * time.Second

// Matcher embeds texts through an ai.Embedder and compares them. Every
// provider call is bounded by the configured timeout.
type Matcher struct {
	embedder ai.Embedder
	timeout  time.Duration
	logger   *zap.Logger
}

type MatcherOption func(*Matcher)

func WithTimeout(d time.Duration) MatcherOption {
	return func(m *Matcher) {
		if d > 0 {
			m.timeout = d
		}
	}
}

func WithLogger(logger *zap.Logger) MatcherOption {
	return func(m *Matcher) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func NewMatcher(embedder ai.Embedder, opts ...MatcherOption) (*Matcher, error) {
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}

	m := &Matcher{
		embedder: embedder,
		timeout:  defaultTimeout,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Embed returns the embedding of text. Blank text is not sent to the
// provider and yields a nil vector, which is similar to nothing.
func (m *Matcher) Embed(ctx context.Context, text string) ([]float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	vec, err := m.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}
	return vec, nil
}

// Similarity embeds text and returns its clamped cosine similarity to query.
func (m *Matcher) Similarity(ctx context.Context, query []float64, text string) (float64, error) {
	vec, err := m.Embed(ctx, text)
	if err != nil {
		return 0, err
	}
	return Clamp01(Cosine(query, vec)), nil
}

// Pooling is a per-sentence breakdown of how a text relates to a query.
type Pooling struct {
	Sentences []string  `json:"sentences"`
	Weights   []float64 `json:"weights"`
	Mean      float64   `json:"mean_similarity"`
	Attention float64   `json:"attention_similarity"`
}

// Explain splits text into sentences, embeds each of them and compares both
// the mean-pooled and the attention-pooled vector with the query text.
func (m *Matcher) Explain(ctx context.Context, query, text string) (*Pooling, error) {
	queryVec, err := m.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	sentences, err := SplitSentences(text)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float64, 0, len(sentences))
	kept := make([]string, 0, len(sentences))
	for _, sentence := range sentences {
		vec, err := m.Embed(ctx, sentence)
		if err != nil {
			return nil, fmt.Errorf("sentence %q: %w", sentence, err)
		}
		if len(vec) == 0 {
			continue
		}
		vectors = append(vectors, vec)
		kept = append(kept, sentence)
	}

	attention, weights := AttentionPool(queryVec, vectors)

	m.logger.Debug("pooled sentence embeddings",
		zap.Int("sentences", len(kept)),
	)

	return &Pooling{
		Sentences: kept,
		Weights:   weights,
		Mean:      Clamp01(Cosine(queryVec, MeanPool(vectors))),
		Attention: Clamp01(Cosine(queryVec, attention)),
	}, nil
}
