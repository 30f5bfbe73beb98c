// Package keywords turns free text into normalized keyword sets.
package keywords

import (
	"fmt"
	"strings"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/spigell/hackmatch/internal/taxonomy"
)

const (
	defaultCacheSize = 1024
	minKeywordRunes  = 3
)

// Extractor combines noun-phrase chunking with taxonomy matching. Results are
// memoized by exact input text in a bounded LRU cache, so an Extractor is
// bound to one taxonomy and one tagger for its whole lifetime.
type Extractor struct {
	taxonomy  *taxonomy.Taxonomy
	tagger    Tagger
	cacheSize int
	cache     *lru.Cache[string, Set]
	logger    *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTagger replaces the part-of-speech tagger. A nil tagger restricts
// extraction to taxonomy matches.
func WithTagger(tagger Tagger) Option {
	return func(e *Extractor) {
		e.tagger = tagger
	}
}

// WithCacheSize bounds the memoization cache. Non-positive values keep the default.
func WithCacheSize(size int) Option {
	return func(e *Extractor) {
		if size > 0 {
			e.cacheSize = size
		}
	}
}

// WithLogger sets the logger used to report tagging failures.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExtractor builds an extractor over the given taxonomy. By default it
// tags text with ProseTagger.
func NewExtractor(tax *taxonomy.Taxonomy, opts ...Option) (*Extractor, error) {
	if tax == nil {
		return nil, fmt.Errorf("taxonomy is required")
	}

	e := &Extractor{
		taxonomy:  tax,
		tagger:    NewProseTagger(),
		cacheSize: defaultCacheSize,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	cache, err := lru.New[string, Set](e.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create keyword cache: %w", err)
	}
	e.cache = cache

	return e, nil
}

// Extract returns the keywords of text. It never fails: empty text yields an
// empty set and a tagging failure degrades to taxonomy matches only. The
// returned set belongs to the caller.
func (e *Extractor) Extract(text string) Set {
	if cached, ok := e.cache.Get(text); ok {
		return cached.Clone()
	}

	out := e.extract(text)
	e.cache.Add(text, out)

	return out.Clone()
}

// Cached reports how many texts are currently memoized.
func (e *Extractor) Cached() int {
	return e.cache.Len()
}

func (e *Extractor) extract(text string) Set {
	out := make(Set)

	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return out
	}

	if e.tagger != nil {
		tokens, err := e.tagger.Tag(lower)
		if err != nil {
			e.logger.Warn("tagging failed, using taxonomy matches only", zap.Error(err))
		} else {
			phrases, nouns := nounPhrases(tokens)
			addLong(out, phrases...)
			addLong(out, nouns...)
		}
	}

	for _, m := range e.taxonomy.MatchText(lower) {
		addLong(out, m.Category, m.Term)
	}

	return out
}

func addLong(s Set, items ...string) {
	for _, item := range items {
		item = strings.TrimSpace(item)
		if utf8.RuneCountInString(item) >= minKeywordRunes {
			s[item] = struct{}{}
		}
	}
}
