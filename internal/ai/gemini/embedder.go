package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/spigell/hackmatch/internal/ai"
)

const (
	defaultRequestsPerSecond = 5
	defaultBreakerFailures   = 5
	defaultBreakerCooldown   = 30 * time.Second
	taskSemanticSimilarity   = "SEMANTIC_SIMILARITY"
)

type EmbedderConfig struct {
	Model             string
	RequestsPerSecond float64
	MaxRetries        int
	BreakerFailures   uint32
	BreakerCooldown   time.Duration
}

// Embedder produces text embeddings with a Gemini embedding model. Requests
// are paced by a token bucket, temporary API errors are retried and repeated
// failures open a circuit breaker, after which Embed fails fast with
// ai.ErrUnavailable until the cooldown passes.
type Embedder struct {
	api        embedAPI
	model      string
	maxRetries int
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]float64]
	logger     *zap.Logger
}

func NewEmbedder(api embedAPI, cfg EmbedderConfig, logger *zap.Logger) *Embedder {
	if logger == nil {
		logger = zap.NewNop()
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultEmbeddingModel
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = defaultBreakerFailures
	}
	cooldown := cfg.BreakerCooldown
	if cooldown <= 0 {
		cooldown = defaultBreakerCooldown
	}

	e := &Embedder{
		api:        api,
		model:      model,
		maxRetries: retries,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}

	e.breaker = gobreaker.NewCircuitBreaker[[]float64](gobreaker.Settings{
		Name:        "gemini-embeddings",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			e.logger.Warn("embedding circuit breaker changed state",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// A caller giving up is not a provider failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return e
}

// Embed returns the embedding of text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text must not be empty")
	}

	vec, err := e.breaker.Execute(func() ([]float64, error) {
		return withRetry(ctx, e.maxRetries, func() ([]float64, error) {
			return e.embed(ctx, text)
		})
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ai.ErrUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	return vec, nil
}

func (e *Embedder) Model() string {
	return e.model
}

func (e *Embedder) embed(ctx context.Context, text string) ([]float64, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := e.api.EmbedContent(ctx, e.model, genai.Text(text), &genai.EmbedContentConfig{
		TaskType: taskSemanticSimilarity,
	})
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.New("gemini api returned no embedding")
	}

	values := resp.Embeddings[0].Values
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out, nil
}
