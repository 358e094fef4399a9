// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dataset prepares the SFT warm-start dataset for the external
// trainer.
//
// Raw samples arrive as a JSON array of instruction/input/output
// records. Processing combines instruction and input into a single
// prompt, shuffles with a fixed seed, splits into train and validation
// shards, and writes JSONL files plus a manifest describing the split.
package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RawSample is one record of the raw SFT dataset.
type RawSample struct {
	Instruction string `json:"instruction"`
	Input       string `json:"input"`
	Output      string `json:"output"`
}

// Sample is one processed SFT record.
type Sample struct {
	Prompt        string `json:"prompt"`
	Response      string `json:"response"`
	DataSource    string `json:"data_source"`
	OriginalIndex int    `json:"original_index"`
}

// Options configures dataset processing.
type Options struct {
	// InputPath is the raw JSON file.
	InputPath string

	// OutputDir receives train.jsonl, test.jsonl, and manifest.json.
	OutputDir string

	// DataSource tags every sample. Default: "rlla_sft".
	DataSource string

	// ValFraction is the validation share of the data. Default: 0.1.
	ValFraction float64

	// Seed drives the shuffle. The same seed always produces the same
	// split. Default: 42.
	Seed int64

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Manifest summarizes a processed split.
type Manifest struct {
	DataSource  string    `json:"data_source"`
	Total       int       `json:"total"`
	TrainSize   int       `json:"train_size"`
	ValSize     int       `json:"val_size"`
	ValFraction float64   `json:"val_fraction"`
	Seed        int64     `json:"seed"`
	ProcessedAt time.Time `json:"processed_at"`
}

func (o *Options) setDefaults() error {
	if o.InputPath == "" {
		return fmt.Errorf("dataset: input path required")
	}
	if o.OutputDir == "" {
		return fmt.Errorf("dataset: output dir required")
	}
	if o.DataSource == "" {
		o.DataSource = "rlla_sft"
	}
	if o.ValFraction == 0 {
		o.ValFraction = 0.1
	}
	if o.ValFraction < 0 || o.ValFraction >= 1 {
		return fmt.Errorf("dataset: val fraction %f out of [0, 1)", o.ValFraction)
	}
	if o.Seed == 0 {
		o.Seed = 42
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return nil
}

// Process reads the raw dataset, splits it, and writes the shards.
//
// Outputs:
//   - Manifest: Describes the written split.
//   - error: Non-nil if the input cannot be read or a shard cannot be
//     written. Partial output may remain on failure.
func Process(opts Options) (Manifest, error) {
	if err := opts.setDefaults(); err != nil {
		return Manifest{}, err
	}

	raw, err := readRaw(opts.InputPath)
	if err != nil {
		return Manifest{}, err
	}
	opts.Logger.Info("loaded raw SFT samples", "count", len(raw), "path", opts.InputPath)

	samples := make([]Sample, len(raw))
	for i, r := range raw {
		samples[i] = Sample{
			Prompt:        BuildPrompt(r.Instruction, r.Input),
			Response:      r.Output,
			DataSource:    opts.DataSource,
			OriginalIndex: i,
		}
	}

	train, val := split(samples, opts.ValFraction, opts.Seed)

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return Manifest{}, fmt.Errorf("dataset: create output dir: %w", err)
	}
	if err := writeJSONL(filepath.Join(opts.OutputDir, "train.jsonl"), train); err != nil {
		return Manifest{}, err
	}
	if err := writeJSONL(filepath.Join(opts.OutputDir, "test.jsonl"), val); err != nil {
		return Manifest{}, err
	}

	m := Manifest{
		DataSource:  opts.DataSource,
		Total:       len(samples),
		TrainSize:   len(train),
		ValSize:     len(val),
		ValFraction: opts.ValFraction,
		Seed:        opts.Seed,
		ProcessedAt: time.Now().UTC(),
	}
	if err := writeManifest(filepath.Join(opts.OutputDir, "manifest.json"), m); err != nil {
		return Manifest{}, err
	}

	opts.Logger.Info("wrote processed SFT shards",
		"dir", opts.OutputDir, "train", len(train), "val", len(val))
	return m, nil
}

// BuildPrompt combines an instruction and its optional input into one
// prompt, separated by a blank line when the input is non-empty.
func BuildPrompt(instruction, input string) string {
	if strings.TrimSpace(input) == "" {
		return instruction
	}
	return instruction + "\n\n" + input
}

func readRaw(path string) ([]RawSample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read input: %w", err)
	}
	var raw []RawSample
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("dataset: parse input: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("dataset: input %s holds no samples", path)
	}
	return raw, nil
}

// split shuffles deterministically and carves off the validation share
// from the front, mirroring the original preparation pipeline.
func split(samples []Sample, valFraction float64, seed int64) (train, val []Sample) {
	idx := rand.New(rand.NewSource(seed)).Perm(len(samples))
	valSize := int(valFraction * float64(len(samples)))

	val = make([]Sample, 0, valSize)
	train = make([]Sample, 0, len(samples)-valSize)
	for i, j := range idx {
		if i < valSize {
			val = append(val, samples[j])
		} else {
			train = append(train, samples[j])
		}
	}
	return train, val
}

func writeJSONL(path string, samples []Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dataset: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, s := range samples {
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("dataset: write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("dataset: flush %s: %w", path, err)
	}
	return nil
}

func writeManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("dataset: marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("dataset: write manifest: %w", err)
	}
	return nil
}
