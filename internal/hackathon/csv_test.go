package hackathon

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestReadCSV(t *testing.T) {
	input := strings.Join([]string{
		` Name ,DESC,Requirements,Prize,Keywords,Deadline,Criteria,Extra`,
		`AI Sprint,Build an assistant,"Python, ,PyTorch",$500,"ai, nlp",2026-01-01,Innovation,x`,
		`AI Sprint,Build an assistant,Go,$1,,,,`,
		`,No title here,,,,,,`,
		`Web Jam,Ship a site,,,,,,`,
	}, "\n")

	hackathons, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if hackathons.Len() != 2 {
		t.Fatalf("expected 2 hackathons, got %d: %v", hackathons.Len(), hackathons.Titles())
	}

	first := hackathons.Items[0]
	want := &Hackathon{
		Title:        "AI Sprint",
		Description:  "Build an assistant",
		Requirements: []string{"Python", "PyTorch"},
		Prize:        "$500",
		Criteria:     "Innovation",
		Deadline:     "2026-01-01",
		Keywords:     []string{"ai", "nlp"},
	}
	if !reflect.DeepEqual(first, want) {
		t.Fatalf("expected %+v, got %+v", want, first)
	}

	second := hackathons.Items[1]
	if second.Prize != DefaultPrize || second.Deadline != DefaultDeadline {
		t.Fatalf("expected defaults, got prize=%q deadline=%q", second.Prize, second.Deadline)
	}
	if second.Requirements == nil || len(second.Requirements) != 0 || second.Criteria != "" {
		t.Fatalf("expected empty requirements and criteria, got %+v", second)
	}
}

func TestReadCSVPrefersCanonicalColumns(t *testing.T) {
	input := "title,name,description,desc\nReal,Alias,Real description,Alias description\n"

	hackathons, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := hackathons.Items[0]; got.Title != "Real" || got.Description != "Real description" {
		t.Fatalf("expected canonical columns to win, got %+v", got)
	}
}

func TestReadCSVMissingColumns(t *testing.T) {
	for _, input := range []string{"", "title,prize\nA,1\n", "description\nA\n"} {
		if _, err := ReadCSV(strings.NewReader(input)); !errors.Is(err, ErrMissingColumns) {
			t.Fatalf("expected ErrMissingColumns for %q, got %v", input, err)
		}
	}
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hackathons.csv")
	if err := os.WriteFile(path, []byte("title,description\nA,B\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	hackathons, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hackathons.Len() != 1 {
		t.Fatalf("expected 1 hackathon, got %d", hackathons.Len())
	}

	if _, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestFullText(t *testing.T) {
	h := &Hackathon{
		Description:  "Build things",
		Requirements: []string{"Go", "Docker"},
		Keywords:     []string{"cloud"},
	}

	want := "Build things\nRequirements: Go, Docker\nKeywords: cloud"
	if got := h.FullText(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
