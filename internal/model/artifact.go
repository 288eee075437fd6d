package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	pipelineFile    = "pipeline.json"
	temperatureFile = "temperature.json"
	featuresFile    = "features.json"
)

// SaveArtifacts persists the rich-tier scorer as three co-located files:
// the fitted pipeline, the temperature object, and the frozen feature list.
func SaveArtifacts(dir string, scorer *NeuralScorer) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	if err := writeJSON(filepath.Join(dir, pipelineFile), scorer.Pipeline); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, temperatureFile), scorer.Temperature); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, featuresFile), scorer.Features)
}

// LoadArtifacts loads the rich-tier scorer. A missing file (or a missing
// directory) returns (nil, nil): absence silently disables the rich tier
// rather than failing startup. Corrupt files return an error for the caller
// to log and ignore.
func LoadArtifacts(dir string) (*NeuralScorer, error) {
	var pipeline NeuralPipeline
	ok, err := readJSON(filepath.Join(dir, pipelineFile), &pipeline)
	if err != nil || !ok {
		return nil, err
	}

	var temperature TemperatureScaler
	ok, err = readJSON(filepath.Join(dir, temperatureFile), &temperature)
	if err != nil || !ok {
		return nil, err
	}

	var features []string
	ok, err = readJSON(filepath.Join(dir, featuresFile), &features)
	if err != nil || !ok {
		return nil, err
	}

	return &NeuralScorer{
		Pipeline:    &pipeline,
		Temperature: temperature,
		Features:    features,
	}, nil
}

func writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) (bool, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return true, nil
}
