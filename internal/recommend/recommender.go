// Package recommend ranks hackathons for a user by combining keyword overlap
// with optional semantic similarity.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/hackmatch/internal/ai"
	"github.com/spigell/hackmatch/internal/evaluation"
	"github.com/spigell/hackmatch/internal/filtering"
	"github.com/spigell/hackmatch/internal/hackathon"
	"github.com/spigell/hackmatch/internal/keywords"
	"github.com/spigell/hackmatch/internal/logger"
	"github.com/spigell/hackmatch/internal/matching"
	"github.com/spigell/hackmatch/internal/semantic"
)

const DefaultLimit = 5

const matchedStep = "matched"

// Recommender scores a batch of hackathons sequentially. Its collaborators
// are fixed at construction and only read afterwards.
type Recommender struct {
	extractor     *keywords.Extractor
	lexical       *matching.Lexical
	semantic      *semantic.Matcher
	reviewer      ai.Reviewer
	filters       []filtering.Filter
	dropUnmatched *bool
	limit         int
	requested     Mode
	logger        *zap.Logger
	newRunID      func() string
}

type Option func(*Recommender)

// WithSemantic enables combined scoring.
func WithSemantic(m *semantic.Matcher) Option {
	return func(r *Recommender) {
		r.semantic = m
	}
}

// WithReviewer attaches a fit review to every recommended hackathon.
func WithReviewer(reviewer ai.Reviewer) Option {
	return func(r *Recommender) {
		r.reviewer = reviewer
	}
}

// WithFilters adds steps that run after the matched step.
func WithFilters(steps ...filtering.Filter) Option {
	return func(r *Recommender) {
		r.filters = append(r.filters, steps...)
	}
}

// WithDropUnmatched forces the matched step on or off. Without it the step
// runs in lexical mode only.
func WithDropUnmatched(drop bool) Option {
	return func(r *Recommender) {
		r.dropUnmatched = &drop
	}
}

// WithRequestedMode records the mode the caller asked for. A combined request
// without a semantic matcher is reported as degraded.
func WithRequestedMode(mode Mode) Option {
	return func(r *Recommender) {
		r.requested = mode
	}
}

// WithLimit caps the number of recommendations. Non-positive values keep DefaultLimit.
func WithLimit(limit int) Option {
	return func(r *Recommender) {
		if limit > 0 {
			r.limit = limit
		}
	}
}

// WithLogger sets the logger every run derives its fields from.
func WithLogger(l *zap.Logger) Option {
	return func(r *Recommender) {
		if l != nil {
			r.logger = l
		}
	}
}

func New(extractor *keywords.Extractor, lexical *matching.Lexical, opts ...Option) (*Recommender, error) {
	if extractor == nil {
		return nil, errors.New("keyword extractor is required")
	}
	if lexical == nil {
		return nil, errors.New("lexical matcher is required")
	}

	r := &Recommender{
		extractor: extractor,
		lexical:   lexical,
		limit:     DefaultLimit,
		logger:    zap.NewNop(),
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Mode reports the configured scoring mode.
func (r *Recommender) Mode() Mode {
	if r.semantic != nil {
		return ModeCombined
	}
	return ModeLexical
}

// Recommend scores every hackathon against skills and returns the best ones.
// A hackathon that fails to score is skipped and reported in Skipped. A
// semantic provider failure degrades the whole run to lexical scoring.
func (r *Recommender) Recommend(ctx context.Context, hackathons []*hackathon.Hackathon, skills []string) (*Recommendations, error) {
	if len(hackathons) == 0 {
		return nil, ErrNoHackathons
	}
	skills = keywords.Normalize(skills).Sorted()
	if len(skills) == 0 {
		return nil, ErrNoSkills
	}

	out := &Recommendations{RunID: r.newRunID(), Mode: r.Mode()}
	log := logger.WithFields(r.logger, logger.RunFields(out.RunID, string(out.Mode))...)

	if r.requested == ModeCombined && out.Mode != ModeCombined {
		log.Warn("combined mode requested without a semantic matcher, scoring lexically")
		out.Degraded = true
	}

	log.Info("scoring hackathons", zap.Int("count", len(hackathons)), zap.Strings("skills", skills))

	var query []float64
	if out.Mode == ModeCombined {
		var err error
		query, err = r.semantic.Embed(ctx, strings.Join(skills, ", "))
		if err != nil {
			log.Warn("embedding skills failed, falling back to lexical scoring", zap.Error(err))
			out.Mode, out.Degraded = ModeLexical, true
		}
	}

	results, skipped, err := r.scoreAll(ctx, log, hackathons, skills, out.Mode, query)
	if errors.Is(err, ai.ErrUnavailable) {
		log.Warn("semantic provider became unavailable, rescoring lexically", zap.Error(err))
		out.Mode, out.Degraded = ModeLexical, true
		results, skipped, err = r.scoreAll(ctx, log, hackathons, skills, out.Mode, nil)
	}
	if err != nil {
		return nil, err
	}
	out.Skipped = skipped

	if len(results) == 0 {
		return nil, fmt.Errorf("%w: none of %d hackathons could be scored: %w",
			ErrResourceUnavailable, len(hackathons), skipped[0])
	}

	if out.Mode == ModeCombined {
		out.BatchMetrics = batchMetrics(log, results)
	}

	results, err = r.filter(ctx, log, out.Mode, results)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > r.limit {
		results = results[:r.limit]
	}
	out.Items = results

	r.review(ctx, log, out.Items, skills)

	log.Info("recommendations ready",
		zap.Int("scored", len(hackathons)-len(skipped)),
		zap.Int("skipped", len(skipped)),
		zap.Int("recommended", out.Len()),
		zap.Bool("degraded", out.Degraded),
	)

	return out, nil
}

// scoreAll scores hackathons in input order. It stops early only when the
// semantic provider reports ai.ErrUnavailable.
func (r *Recommender) scoreAll(ctx context.Context, log *zap.Logger, hackathons []*hackathon.Hackathon, skills []string, mode Mode, query []float64) ([]*MatchResult, []*ItemError, error) {
	results := make([]*MatchResult, 0, len(hackathons))
	var skipped []*ItemError

	for i, h := range hackathons {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		res, err := r.scoreOne(ctx, h, skills, mode, query)
		if errors.Is(err, ai.ErrUnavailable) {
			return nil, nil, err
		}
		if err != nil {
			itemErr := &ItemError{Index: i, Err: err}
			if h != nil {
				itemErr.Title = h.Title
			}
			log.Warn("skipping hackathon", append(logger.HackathonFields(itemErr.Title, i), zap.Error(err))...)
			skipped = append(skipped, itemErr)
			continue
		}

		log.Debug("scored hackathon", append(logger.HackathonFields(h.Title, i),
			zap.Float64("score", res.Score),
			zap.Float64("lexical_score", res.LexicalScore),
		)...)
		results = append(results, res)
	}

	return results, skipped, nil
}

func (r *Recommender) scoreOne(ctx context.Context, h *hackathon.Hackathon, skills []string, mode Mode, query []float64) (res *MatchResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			res, err = nil, fmt.Errorf("panic while scoring: %v", p)
		}
	}()

	if h == nil {
		return nil, errors.New("hackathon is nil")
	}

	kw := r.keywordSet(h)
	match := r.lexical.Match(kw, skills)

	res = &MatchResult{
		Hackathon:    h,
		Keywords:     kw.Sorted(),
		Score:        match.Score,
		LexicalScore: match.Score,
		Metrics:      evaluation.Evaluate(kw, match.Expanded),
		SkillMatches: r.lexical.SkillMatches(kw, skills),
	}

	if mode == ModeCombined {
		text := h.Description
		if strings.TrimSpace(text) == "" {
			text = h.FullText()
		}
		sim, err := r.semantic.Similarity(ctx, query, text)
		if err != nil {
			return nil, err
		}
		res.SemanticSimilarity = &sim
		res.Score = (match.Score + sim) / 2
	}

	return res, nil
}

// keywordSet is the union of predefined keywords and keywords extracted from
// the full text and from every requirement.
func (r *Recommender) keywordSet(h *hackathon.Hackathon) keywords.Set {
	kw := keywords.Normalize(h.Keywords)
	kw.Union(r.extractor.Extract(h.FullText()))
	for _, req := range h.Requirements {
		kw.Union(r.extractor.Extract(req))
	}
	return kw
}

func (r *Recommender) filter(ctx context.Context, log *zap.Logger, mode Mode, results []*MatchResult) ([]*MatchResult, error) {
	steps := append([]filtering.Filter{filtering.NewMatched()}, r.filters...)
	switch {
	case r.dropUnmatched != nil && !*r.dropUnmatched:
		filtering.DisableByName(steps, matchedStep, "disabled by configuration")
	case r.dropUnmatched == nil && mode == ModeCombined:
		filtering.DisableByName(steps, matchedStep, "combined mode keeps unmatched hackathons")
	}

	candidates := &filtering.Candidates{}
	for i, res := range results {
		candidates.Items = append(candidates.Items, &filtering.Candidate{Index: i, Title: res.Title(), Score: res.Score})
	}

	pipeline := filtering.New(steps, log)
	log.Debug("filters", zap.Any("steps", filtering.Describe(pipeline.Steps())))

	left, err := pipeline.Run(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("filtering: %w", err)
	}

	kept := make([]*MatchResult, 0, left.Len())
	for _, idx := range left.Indexes() {
		kept = append(kept, results[idx])
	}
	return kept, nil
}

func (r *Recommender) review(ctx context.Context, log *zap.Logger, items []*MatchResult, skills []string) {
	if r.reviewer == nil {
		return
	}

	for i, item := range items {
		h := item.Hackathon
		assessment, err := r.reviewer.Review(ctx, &ai.Subject{
			Title:        h.Title,
			Description:  h.Description,
			Requirements: h.Requirements,
			Keywords:     h.Keywords,
			Skills:       skills,
		})
		if err != nil {
			log.Warn("fit review failed", append(logger.HackathonFields(h.Title, i), zap.Error(err))...)
			item.Review = &ai.FitAssessment{Error: err.Error()}
			continue
		}
		item.Review = assessment
	}
}

func batchMetrics(log *zap.Logger, results []*MatchResult) *BatchMetrics {
	sims := make([]float64, 0, len(results))
	for _, res := range results {
		if res.SemanticSimilarity != nil {
			sims = append(sims, *res.SemanticSimilarity)
		}
	}

	classification, threshold, err := evaluation.BatchSelfConsistency(sims)
	if err != nil {
		log.Debug("no batch metrics", zap.Error(err))
		return nil
	}

	log.Info("batch self-consistency (synthetic labels, not a quality signal)",
		zap.Float64("threshold", threshold),
		zap.Float64("accuracy", classification.Accuracy),
		zap.Float64("precision", classification.Precision),
		zap.Float64("recall", classification.Recall),
		zap.Float64("f1_score", classification.F1),
	)

	return &BatchMetrics{Classification: classification, Threshold: threshold}
}
