package keywords

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/hackmatch/internal/taxonomy"
)

// stubTagger tags words from a fixed dictionary and counts invocations.
type stubTagger struct {
	tags  map[string]string
	err   error
	calls int
}

func (s *stubTagger) Tag(text string) ([]Token, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}

	var tokens []Token
	for _, word := range strings.Fields(text) {
		tag, ok := s.tags[word]
		if !ok {
			tag = "VB"
		}
		tokens = append(tokens, Token{Text: word, Tag: tag})
	}
	return tokens, nil
}

func newStub() *stubTagger {
	return &stubTagger{tags: map[string]string{
		"the":        "DT",
		"a":          "DT",
		"new":        "JJ",
		"mobile":     "JJ",
		"platform":   "NN",
		"apps":       "NNS",
		"machine":    "NN",
		"learning":   "VBG",
		"healthcare": "NN",
		"is":         "VBZ",
		"for":        "IN",
		"students":   "NNS",
		"building":   "VBG",
		"farmers":    "NNS",
		"using":      "VBG",
		"ai":         "NN",
		".":          ".",
	}}
}

func newTestExtractor(t *testing.T, opts ...Option) *Extractor {
	t.Helper()
	e, err := NewExtractor(taxonomy.Default(), opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return e
}

func TestExtractEmpty(t *testing.T) {
	e := newTestExtractor(t, WithTagger(newStub()))

	for _, text := range []string{"", "   ", "\n\t"} {
		if got := e.Extract(text); got.Len() != 0 {
			t.Fatalf("expected empty set for %q, got %v", text, got.Sorted())
		}
	}
}

func TestExtractCombinesPhrasesNounsAndTaxonomy(t *testing.T) {
	e := newTestExtractor(t, WithTagger(newStub()))

	got := e.Extract("A new healthcare platform for Machine Learning . mobile apps")

	// "ar/vr" comes from "ar" inside "learning".
	want := []string{
		"apps",
		"ar/vr",
		"healthcare",
		"machine",
		"machine learning",
		"mobile",
		"mobile apps",
		"new healthcare platform",
		"platform",
	}
	if !reflect.DeepEqual(got.Sorted(), want) {
		t.Fatalf("expected %v, got %v", want, got.Sorted())
	}
}

func TestExtractDropsShortTokens(t *testing.T) {
	e := newTestExtractor(t, WithTagger(newStub()))

	got := e.Extract("ai")
	if got.Len() != 0 {
		t.Fatalf("expected short tokens to be dropped, got %v", got.Sorted())
	}
}

func TestExtractDegradesOnTaggerFailure(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	stub := &stubTagger{err: errors.New("model missing")}
	e := newTestExtractor(t, WithTagger(stub), WithLogger(zap.New(core)))

	got := e.Extract("Build on AWS with Docker")

	want := []string{"aws", "cloud", "devops", "docker"}
	if !reflect.DeepEqual(got.Sorted(), want) {
		t.Fatalf("expected %v, got %v", want, got.Sorted())
	}

	if observed.Len() != 1 {
		t.Fatalf("expected a warning about the tagger, got %d entries", observed.Len())
	}
}

func TestExtractWithoutTagger(t *testing.T) {
	e := newTestExtractor(t, WithTagger(nil))

	got := e.Extract("A blockchain hackathon")
	want := []string{"blockchain"}
	if !reflect.DeepEqual(got.Sorted(), want) {
		t.Fatalf("expected %v, got %v", want, got.Sorted())
	}
}

func TestExtractIsMemoized(t *testing.T) {
	stub := newStub()
	e := newTestExtractor(t, WithTagger(stub))

	first := e.Extract("mobile apps")
	second := e.Extract("mobile apps")

	if !reflect.DeepEqual(first.Sorted(), second.Sorted()) {
		t.Fatalf("extraction is not idempotent: %v vs %v", first.Sorted(), second.Sorted())
	}
	if stub.calls != 1 {
		t.Fatalf("expected a single tagger call, got %d", stub.calls)
	}

	first.Add("mutated")
	if e.Extract("mobile apps").Has("mutated") {
		t.Fatalf("caller mutation leaked into the cache")
	}
}

func TestExtractCacheIsBounded(t *testing.T) {
	stub := newStub()
	e := newTestExtractor(t, WithTagger(stub), WithCacheSize(1))

	e.Extract("platform")
	e.Extract("healthcare")
	e.Extract("platform")

	if stub.calls != 3 {
		t.Fatalf("expected eviction to force a re-tag, got %d calls", stub.calls)
	}
	if e.Cached() != 1 {
		t.Fatalf("expected 1 cached entry, got %d", e.Cached())
	}
}

func TestNewExtractorRequiresTaxonomy(t *testing.T) {
	if _, err := NewExtractor(nil); err == nil {
		t.Fatal("expected an error without taxonomy")
	}
}

func TestNounPhrases(t *testing.T) {
	stub := newStub()

	tests := []struct {
		text    string
		phrases []string
		nouns   []string
	}{
		{
			text:    "students building mobile apps for farmers",
			phrases: []string{"students", "mobile apps", "farmers"},
			nouns:   []string{"students", "apps", "farmers"},
		},
		{
			text:    "a healthcare platform using machine learning",
			phrases: []string{"healthcare platform", "machine learning"},
			nouns:   []string{"healthcare", "platform", "machine"},
		},
		{
			text:    "machine learning . the new platform",
			phrases: []string{"machine learning", "new platform"},
			nouns:   []string{"machine", "platform"},
		},
		{
			text:    "building new apps",
			phrases: []string{"new apps"},
			nouns:   []string{"apps"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			tokens, _ := stub.Tag(tt.text)
			phrases, nouns := nounPhrases(tokens)
			if !reflect.DeepEqual(phrases, tt.phrases) {
				t.Fatalf("expected phrases %v, got %v", tt.phrases, phrases)
			}
			if !reflect.DeepEqual(nouns, tt.nouns) {
				t.Fatalf("expected nouns %v, got %v", tt.nouns, nouns)
			}
		})
	}
}

func TestExtractWithProseKeepsPhrasesInsideClauses(t *testing.T) {
	e := newTestExtractor(t)

	got := e.Extract("Students building mobile apps for farmers")
	if !got.Has("mobile apps") {
		t.Fatalf("expected the noun phrase %q, got %v", "mobile apps", got.Sorted())
	}
	for _, kw := range got.Sorted() {
		if strings.Contains(kw, "building") {
			t.Fatalf("phrase %q spans a verb, got %v", kw, got.Sorted())
		}
	}
}

func TestProseTaggerTagsText(t *testing.T) {
	tokens, err := NewProseTagger().Tag("build a web application")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != 4 {
		t.Fatalf("expected 4 tokens, got %d: %+v", len(tokens), tokens)
	}
	for _, tok := range tokens {
		if tok.Tag == "" {
			t.Fatalf("expected every token to be tagged: %+v", tokens)
		}
	}
}
