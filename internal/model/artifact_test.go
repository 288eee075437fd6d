package model

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestArtifactsRoundTrip(t *testing.T) {
	t.Parallel()

	scorer, err := testTrainer().TrainRich(context.Background(), seedExamples())
	if err != nil {
		t.Fatalf("TrainRich error: %v", err)
	}

	dir := t.TempDir()
	if err := SaveArtifacts(dir, scorer); err != nil {
		t.Fatalf("SaveArtifacts error: %v", err)
	}

	loaded, err := LoadArtifacts(dir)
	if err != nil {
		t.Fatalf("LoadArtifacts error: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected scorer from saved artifacts")
	}

	if loaded.Temperature.T != scorer.Temperature.T {
		t.Fatalf("temperature changed: %v vs %v", loaded.Temperature.T, scorer.Temperature.T)
	}
	if len(loaded.Features) != len(scorer.Features) {
		t.Fatalf("feature list changed: %d vs %d", len(loaded.Features), len(scorer.Features))
	}

	row := make([]float64, len(scorer.Features))
	for i := range row {
		row[i] = 0.5
	}
	before := scorer.Pipeline.Decision(row)
	after := loaded.Pipeline.Decision(row)
	if math.Abs(before-after) > 1e-9 {
		t.Fatalf("pipeline decision changed after round trip: %v vs %v", before, after)
	}
}

func TestLoadArtifactsMissingDirDisablesRichTier(t *testing.T) {
	t.Parallel()

	scorer, err := LoadArtifacts(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("missing artifacts must not error: %v", err)
	}
	if scorer != nil {
		t.Fatal("expected nil scorer for absent artifacts")
	}
}

func TestLoadArtifactsPartialSetDisablesRichTier(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, pipelineFile), []byte(`{"fill":0}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	scorer, err := LoadArtifacts(dir)
	if err != nil {
		t.Fatalf("partial artifacts must not error: %v", err)
	}
	if scorer != nil {
		t.Fatal("expected nil scorer when companion files are missing")
	}
}

func TestLoadArtifactsCorruptFileErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, pipelineFile), []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := LoadArtifacts(dir); err == nil {
		t.Fatal("expected error for corrupt pipeline file")
	}
}
