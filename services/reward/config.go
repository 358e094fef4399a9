// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package reward computes shaped rewards for tool-use RL fine-tuning.
//
// The scorer maps a generated solution, a ground-truth reference, and
// optional step context to a scalar reward composed of additive parts:
//
//	total = format + correctness + length + beta * contribution
//
// The training loop itself (rollout scheduling, PPO/GRPO optimization,
// distributed execution) lives in the external trainer; this package is
// the reward function the trainer's Reward Manager calls once per
// generated trajectory step.
//
// Variant selection is explicit: construct a Config, validate it, and
// build a Scorer. FromEnv exists for the trainer-facing process
// configuration (CONTRIBUTION, CONTRIB_TYPE, BETA, ...), but the env
// read happens at construction, not inside the scoring path.
//
// # Thread Safety
//
// A Scorer is immutable after construction and safe for concurrent use
// from parallel rollout workers. Scoring performs no I/O.
package reward

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Variant Enums
// =============================================================================

// ScaleMode selects how the correctness reward range evolves with the
// training step. Exactly one mode is active at a time.
type ScaleMode string

const (
	// ScaleDefault uses the full correctness range [-3, +3] from step 0.
	ScaleDefault ScaleMode = "default"

	// ScaleMax1 caps correctness at [-1, +1] for the whole run.
	ScaleMax1 ScaleMode = "max1"

	// ScaleTwoStage caps correctness at [-1, +1] until TwoStageStep,
	// then switches to [-3, +3]. Structure first, correctness later.
	ScaleTwoStage ScaleMode = "two_stage"

	// ScaleScheduled interpolates the cap smoothly from 1 to 3 over
	// ScheduleWindow steps instead of switching at a boundary.
	ScaleScheduled ScaleMode = "scheduled"
)

// Granularity selects how finely tool-call correctness is graded.
type Granularity string

const (
	// GranularityFine grades tool names, parameter keys, and parameter
	// values as separate thirds of the correctness signal.
	GranularityFine Granularity = "fine"

	// GranularityIntermediate grades tool names and exact parameter
	// equality as halves.
	GranularityIntermediate Granularity = "intermediate"

	// GranularityCoarse is all-or-nothing: full credit only when every
	// call matches the reference exactly.
	GranularityCoarse Granularity = "coarse"
)

// ContribType selects the auxiliary contribution signal.
type ContribType string

const (
	// ContribC0 is the binary blackboard-change signal.
	ContribC0 ContribType = "C0"

	// ContribC1 is the clamped critic value-delta signal.
	ContribC1 ContribType = "C1"
)

// =============================================================================
// Config
// =============================================================================

// Config enumerates every recognized reward variant explicitly.
//
// Description:
//
//	The original pipeline selected variants through process environment
//	variables read deep inside the scoring call. Here the variants are
//	an explicit structure passed to NewScorer, so selection is testable
//	in isolation and there is no hidden global state. FromEnv maps the
//	recognized environment variables onto this structure for trainer
//	compatibility.
//
// Invariants:
//   - Exactly one ScaleMode and one Granularity are active.
//   - Beta is non-negative.
//   - The zero-flag configuration (DefaultConfig) reproduces the paper
//     default reward: full-range correctness, fine granularity, no
//     length shaping, no contribution.
//
// Thread Safety: Safe to read concurrently. Not safe to modify after
// the Scorer is constructed.
type Config struct {
	// WithLength enables the length reward component.
	WithLength bool `json:"with_length" yaml:"with_length"`

	// ScheduleLength makes the length target a function of the
	// training step instead of a fixed value. Implies WithLength.
	ScheduleLength bool `json:"schedule_length" yaml:"schedule_length"`

	// TargetLength is the target response length in runes for the
	// length reward. Default: 256.
	TargetLength int `json:"target_length" yaml:"target_length"`

	// LengthWeight is the maximum value of the length component.
	// Default: 1.0.
	LengthWeight float64 `json:"length_weight" yaml:"length_weight"`

	// ScaleMode selects the correctness scaling variant.
	ScaleMode ScaleMode `json:"scale_mode" yaml:"scale_mode"`

	// Granularity selects the correctness grading variant.
	Granularity Granularity `json:"granularity" yaml:"granularity"`

	// TwoStageStep is the boundary step for ScaleTwoStage. Default: 30.
	TwoStageStep int `json:"two_stage_step" yaml:"two_stage_step"`

	// ScheduleWindow is the step horizon for ScaleScheduled and for
	// scheduled length targets. Default: 100.
	ScheduleWindow int `json:"schedule_window" yaml:"schedule_window"`

	// Contribution enables the auxiliary contribution signal.
	Contribution bool `json:"contribution" yaml:"contribution"`

	// ContribType selects C0 (blackboard change) or C1 (value delta).
	// Only consulted when Contribution is true. Default: C0.
	ContribType ContribType `json:"contrib_type" yaml:"contrib_type"`

	// Beta is the non-negative weight applied to the contribution
	// component. Default when contribution is enabled: 0.05.
	Beta float64 `json:"beta" yaml:"beta"`

	// Experiment names the run for logging and metrics labels.
	Experiment string `json:"experiment" yaml:"experiment"`
}

// DefaultConfig returns the paper-default reward configuration.
//
// Outputs:
//   - Config: full-range correctness from step 0, fine granularity,
//     no length reward, no contribution.
func DefaultConfig() Config {
	return Config{
		WithLength:     false,
		ScheduleLength: false,
		TargetLength:   256,
		LengthWeight:   1.0,
		ScaleMode:      ScaleDefault,
		Granularity:    GranularityFine,
		TwoStageStep:   30,
		ScheduleWindow: 100,
		Contribution:   false,
		ContribType:    ContribC0,
		Beta:           0,
	}
}

// Validate checks the variant invariants.
//
// Outputs:
//   - error: Non-nil if a mode enum is unrecognized, Beta is negative,
//     or a schedule parameter is non-positive.
func (c Config) Validate() error {
	switch c.ScaleMode {
	case ScaleDefault, ScaleMax1, ScaleTwoStage, ScaleScheduled:
	default:
		return fmt.Errorf("unknown scale mode %q", c.ScaleMode)
	}
	switch c.Granularity {
	case GranularityFine, GranularityIntermediate, GranularityCoarse:
	default:
		return fmt.Errorf("unknown granularity %q", c.Granularity)
	}
	if c.Contribution {
		switch c.ContribType {
		case ContribC0, ContribC1:
		default:
			return fmt.Errorf("unknown contribution type %q", c.ContribType)
		}
	}
	if c.Beta < 0 {
		return fmt.Errorf("beta must be non-negative, got %f", c.Beta)
	}
	if c.TargetLength <= 0 {
		return fmt.Errorf("target length must be positive, got %d", c.TargetLength)
	}
	if c.TwoStageStep <= 0 {
		return fmt.Errorf("two-stage step must be positive, got %d", c.TwoStageStep)
	}
	if c.ScheduleWindow <= 0 {
		return fmt.Errorf("schedule window must be positive, got %d", c.ScheduleWindow)
	}
	return nil
}

// LoadConfig loads configuration with priority: env > file > defaults.
//
// Inputs:
//   - configPath: Path to a YAML/JSON config file (optional, can be empty).
//
// Outputs:
//   - Config: Merged configuration.
//   - error: Non-nil if the file exists but is invalid, or the merged
//     result violates an invariant.
func LoadConfig(configPath string) (Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return err
	}

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}
