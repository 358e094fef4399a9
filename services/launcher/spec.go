// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package launcher starts external training jobs from a declarative
// YAML specification.
//
// The original pipeline used a directory of shell scripts, one per
// experiment, each exporting reward variant flags before invoking the
// trainer CLI. Here one LaunchSpec file declares the resources,
// hyperparameters, and reward variant; the launcher validates it,
// checks preconditions, renders the same environment variables the
// reward scorer reads, and executes the trainer.
package launcher

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianRL/pkg/validation"
	"github.com/AleutianAI/AleutianRL/services/reward"
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// specValidate is the validator instance for launch specs.
var specValidate = validator.New()

// Resources declares the cluster resources for a job.
type Resources struct {
	// Nodes is the number of machines.
	Nodes int `yaml:"nodes" validate:"min=1"`

	// GPUsPerNode is the accelerator count per machine.
	GPUsPerNode int `yaml:"gpus_per_node" validate:"min=0"`
}

// Hyperparameters are forwarded to the trainer CLI verbatim as
// key=value arguments, so new trainer options need no launcher change.
type Hyperparameters map[string]string

// LaunchSpec declares one training job.
type LaunchSpec struct {
	// Name labels the run; the run ID is Name plus a unique suffix.
	Name string `yaml:"name" validate:"required"`

	// Trainer is the external trainer executable.
	Trainer string `yaml:"trainer" validate:"required"`

	// Entrypoint is the trainer subcommand or script argument list
	// placed before the hyperparameters.
	Entrypoint []string `yaml:"entrypoint"`

	// CheckpointDir must exist before launch; the trainer writes
	// checkpoints there and fails late and expensively without it.
	CheckpointDir string `yaml:"checkpoint_dir" validate:"required"`

	// DataDir holds the processed dataset shards.
	DataDir string `yaml:"data_dir"`

	// Resources declares the cluster request.
	Resources Resources `yaml:"resources"`

	// Hyperparameters are trainer CLI key=value pairs.
	Hyperparameters Hyperparameters `yaml:"hyperparameters"`

	// Reward selects the reward variant for the run. Rendered into
	// the environment variables the scorer recognizes.
	Reward reward.Config `yaml:"reward"`

	// ExtraEnv is appended to the rendered environment last, so it can
	// override anything.
	ExtraEnv map[string]string `yaml:"extra_env"`
}

// LoadSpec reads and validates a LaunchSpec from a YAML file.
func LoadSpec(path string) (LaunchSpec, error) {
	// Absent reward keys mean the paper default, not the zero value.
	spec := LaunchSpec{Reward: reward.DefaultConfig()}
	data, err := os.ReadFile(path)
	if err != nil {
		return spec, fmt.Errorf("launcher: read spec: %w", err)
	}
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return spec, fmt.Errorf("launcher: parse spec: %w", err)
	}
	if spec.Resources.Nodes == 0 {
		spec.Resources.Nodes = 1
	}
	if err := spec.Validate(); err != nil {
		return spec, err
	}
	return spec, nil
}

// Validate checks the spec's structural and reward invariants.
func (s LaunchSpec) Validate() error {
	if err := specValidate.Struct(s); err != nil {
		return fmt.Errorf("launcher: invalid spec: %w", err)
	}
	// The name is embedded in the run ID, which reaches the trainer
	// environment and checkpoint paths.
	if err := validation.ValidateRunName(s.Name); err != nil {
		return fmt.Errorf("launcher: invalid spec: %w", err)
	}
	if err := s.Reward.Validate(); err != nil {
		return fmt.Errorf("launcher: invalid reward config: %w", err)
	}
	return nil
}

// RenderEnv maps the spec's reward variant onto the environment
// variables the reward scorer's FromEnv recognizes, plus ExtraEnv.
//
// Outputs:
//   - []string: KEY=VALUE entries, reward flags first, ExtraEnv last.
func (s LaunchSpec) RenderEnv(runID string) []string {
	var env []string
	add := func(key, value string) {
		env = append(env, key+"="+value)
	}

	add(reward.EnvExperimentName, runID)

	if s.Reward.WithLength {
		add(reward.EnvWithLength, "1")
	}
	if s.Reward.ScheduleLength {
		add(reward.EnvScheduleLength, "1")
	}

	switch s.Reward.ScaleMode {
	case reward.ScaleMax1:
		add(reward.EnvCorrectMax1, "1")
	case reward.ScaleTwoStage:
		add(reward.EnvMax1Step30Max3, "1")
	case reward.ScaleScheduled:
		add(reward.EnvScheduleReward, "1")
	}

	switch s.Reward.Granularity {
	case reward.GranularityIntermediate:
		add(reward.EnvIntermediateReward, "1")
	case reward.GranularityCoarse:
		add(reward.EnvCoarseReward, "1")
	}

	if s.Reward.Contribution {
		add(reward.EnvContribution, "1")
		add(reward.EnvContribType, string(s.Reward.ContribType))
		add(reward.EnvBeta, strconv.FormatFloat(s.Reward.Beta, 'g', -1, 64))
	}

	for key, value := range s.ExtraEnv {
		add(key, value)
	}
	return env
}

// RenderArgs builds the trainer's argument list: entrypoint, resource
// and path options, then the hyperparameters in sorted order so the
// rendered command line is stable.
func (s LaunchSpec) RenderArgs() []string {
	args := append([]string{}, s.Entrypoint...)

	args = append(args,
		"trainer.nodes="+strconv.Itoa(s.Resources.Nodes),
		"trainer.gpus_per_node="+strconv.Itoa(s.Resources.GPUsPerNode),
		"trainer.checkpoint_dir="+s.CheckpointDir,
	)
	if s.DataDir != "" {
		args = append(args, "trainer.data_dir="+s.DataDir)
	}

	for _, key := range sortedKeys(s.Hyperparameters) {
		args = append(args, key+"="+s.Hyperparameters[key])
	}
	return args
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
