package keywords

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
)

// Token is a single tagged word. Tag uses the Penn Treebank tag set.
type Token struct {
	Text string
	Tag  string
}

// Tagger assigns part-of-speech tags to the tokens of a text.
type Tagger interface {
	Tag(text string) ([]Token, error)
}

// ProseTagger tags text with the averaged perceptron model shipped with prose.
type ProseTagger struct{}

// NewProseTagger returns a tagger backed by github.com/jdkato/prose.
func NewProseTagger() *ProseTagger {
	return &ProseTagger{}
}

func (p *ProseTagger) Tag(text string) (tokens []Token, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("prose tagger panicked: %v", r)
		}
	}()

	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("tag document: %w", err)
	}

	for _, tok := range doc.Tokens() {
		tokens = append(tokens, Token{Text: tok.Text, Tag: tok.Tag})
	}
	return tokens, nil
}

// nounPhrases chunks tagged tokens into noun phrases and collects single
// nouns. A phrase is a maximal run of adjectives and nouns that ends with a
// noun; leading determiners and trailing adjectives are not part of it. A
// gerund right after a noun closes the phrase as its head ("machine
// learning") only when the run ends there. A gerund followed by more
// adjectives or nouns starts a clause and is dropped.
func nounPhrases(tokens []Token) (phrases []string, nouns []string) {
	var (
		run    []Token
		gerund *Token
	)

	flush := func() {
		end := len(run)
		for end > 0 && !isHead(run, end-1) {
			end--
		}
		if end > 0 {
			words := make([]string, 0, end)
			for _, tok := range run[:end] {
				words = append(words, tok.Text)
			}
			phrases = append(phrases, strings.Join(words, " "))
		}
		run = run[:0]
	}

	for _, tok := range tokens {
		word := hasWordRune(tok.Text)

		if gerund != nil {
			if !word || !continuesPhrase(tok.Tag) {
				run = append(run, *gerund)
			}
			gerund = nil
			flush()
		}

		if !word {
			flush()
			continue
		}

		if isNoun(tok.Tag) {
			nouns = append(nouns, tok.Text)
		}

		switch {
		case isNoun(tok.Tag) || isAdjective(tok.Tag):
			run = append(run, tok)
			continue
		case tok.Tag == "VBG" && len(run) > 0 && isNoun(run[len(run)-1].Tag):
			g := tok
			gerund = &g
			continue
		}
		flush()
	}

	if gerund != nil {
		run = append(run, *gerund)
	}
	flush()

	return phrases, nouns
}

func continuesPhrase(tag string) bool {
	return isNoun(tag) || isAdjective(tag) || tag == "VBG"
}

// isHead reports whether run[i] may end a phrase: a noun, or a gerund right
// after a noun as in "machine learning".
func isHead(run []Token, i int) bool {
	if isNoun(run[i].Tag) {
		return true
	}
	return run[i].Tag == "VBG" && i > 0 && isNoun(run[i-1].Tag)
}

func isNoun(tag string) bool {
	switch tag {
	case "NN", "NNS", "NNP", "NNPS":
		return true
	}
	return false
}

func isAdjective(tag string) bool {
	switch tag {
	case "JJ", "JJR", "JJS":
		return true
	}
	return false
}

func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
