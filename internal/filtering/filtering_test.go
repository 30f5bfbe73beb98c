package filtering

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func candidates() *Candidates {
	return &Candidates{Items: []*Candidate{
		{Index: 0, Title: "Green AI", Score: 0.8},
		{Index: 1, Title: "Bake Off", Score: 0},
		{Index: 2, Title: "Web Jam", Score: 0.3},
		{Index: 3, Title: "Ledger Cup", Score: 0.5},
	}}
}

func TestRunAppliesStepsInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")
	if err := os.WriteFile(path, []byte(`{"Items":[{"Title":"ledger cup"}]}`), 0o644); err != nil {
		t.Fatalf("write exclude file: %v", err)
	}

	core, observed := observer.New(zapcore.InfoLevel)
	f := New([]Filter{NewMatched(), NewMinScore(0.4), NewExcludeFile(path)}, zap.New(core))

	got, err := f.Run(context.Background(), candidates())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(got.Indexes(), []int{0}) {
		t.Fatalf("expected only Green AI to remain, got %v", got.Indexes())
	}

	steps := observed.FilterMessage("filter step").All()
	if len(steps) != 3 {
		t.Fatalf("expected 3 step logs, got %d", len(steps))
	}
	wantDropped := []int64{1, 1, 1}
	for i, entry := range steps {
		if entry.ContextMap()["dropped"] != wantDropped[i] {
			t.Fatalf("step %d: unexpected fields %v", i, entry.ContextMap())
		}
	}
}

func TestDisabledStepsAreSkipped(t *testing.T) {
	steps := []Filter{NewMatched(), NewMinScore(0.9)}
	DisableByName(steps, "matched", "combined mode")

	got, err := New(steps, nil).Run(context.Background(), candidates())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Len() != 0 {
		t.Fatalf("expected min_score to drop everything, got %v", got.Indexes())
	}

	statuses := Describe(steps)
	if statuses[0].Enabled || statuses[0].Reason != "combined mode" {
		t.Fatalf("unexpected status: %+v", statuses[0])
	}
	if !statuses[1].Enabled || statuses[1].Details["min_score"] != "0.9" {
		t.Fatalf("unexpected status: %+v", statuses[1])
	}
}

func TestMinScoreValidation(t *testing.T) {
	_, err := New([]Filter{NewMinScore(1.5)}, nil).Run(context.Background(), candidates())
	if err == nil {
		t.Fatal("expected validation error")
	}

	got, err := New([]Filter{NewMinScore(0)}, nil).Run(context.Background(), candidates())
	if err != nil || got.Len() != 4 {
		t.Fatalf("zero minimum must keep everything, got %v (%v)", got, err)
	}
}

func TestExcludeFileMissingAndBroken(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.json")
	got, err := New([]Filter{NewExcludeFile(missing)}, nil).Run(context.Background(), candidates())
	if err != nil || got.Len() != 4 {
		t.Fatalf("missing exclude file must keep everything, got %v (%v)", got, err)
	}

	broken := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(broken, []byte("{"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	_, err = New([]Filter{NewExcludeFile(broken)}, nil).Run(context.Background(), candidates())
	if err == nil {
		t.Fatal("expected error for a broken exclude file")
	}
}
