package semantic

import (
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"
)

// SplitSentences segments text into trimmed, non-empty sentences.
func SplitSentences(text string) (sentences []string, err error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sentence segmentation panicked: %v", r)
		}
	}()

	doc, err := prose.NewDocument(text,
		prose.WithTokenization(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("segment text: %w", err)
	}

	for _, s := range doc.Sentences() {
		if trimmed := strings.TrimSpace(s.Text); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences, nil
}
