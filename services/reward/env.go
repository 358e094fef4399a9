// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package reward

import (
	"os"
	"strconv"
	"strings"
)

// Environment variables recognized by FromEnv. These are the knobs the
// training launch scripts export before starting the trainer, so their
// names follow the trainer-side convention rather than this module's.
const (
	EnvContribution       = "CONTRIBUTION"
	EnvContribType        = "CONTRIB_TYPE"
	EnvBeta               = "BETA"
	EnvWithLength         = "WITHLENGTH"
	EnvScheduleLength     = "SCHEDULELENGTH"
	EnvCorrectMax1        = "CORRECTMAX1"
	EnvMax1Step30Max3     = "MAX1STEP30MAX3"
	EnvScheduleReward     = "SCHEDULEREWARD"
	EnvRefinedReward      = "REFINEDREWARD"
	EnvIntermediateReward = "INTERMEDIATEREWARD"
	EnvCoarseReward       = "COARSEREWARD"
	EnvExperimentName     = "EXPERIMENT_NAME"
)

// FromEnv builds a Config from the recognized process environment
// variables.
//
// Description:
//
//	Maps the trainer-facing environment configuration onto the explicit
//	Config structure. Unset or unparseable variables fall back to the
//	paper default: this function never fails, matching the original
//	pipeline where a bare environment meant the default reward.
//
//	When several mutually exclusive flags are set, the most specific
//	schedule wins: scheduled > two-stage > max1 for correctness
//	scaling, and coarse > intermediate > fine for granularity. Exactly
//	one mode of each kind is active in the result.
//
// Outputs:
//   - Config: Validated-by-construction configuration.
func FromEnv() Config {
	cfg := DefaultConfig()
	applyEnv(&cfg)
	return cfg
}

func applyEnv(cfg *Config) {
	if envBool(EnvWithLength) {
		cfg.WithLength = true
	}
	if envBool(EnvScheduleLength) {
		// A scheduled length target only makes sense with the length
		// component on.
		cfg.WithLength = true
		cfg.ScheduleLength = true
	}

	switch {
	case envBool(EnvScheduleReward):
		cfg.ScaleMode = ScaleScheduled
	case envBool(EnvMax1Step30Max3):
		cfg.ScaleMode = ScaleTwoStage
	case envBool(EnvCorrectMax1):
		cfg.ScaleMode = ScaleMax1
	}

	switch {
	case envBool(EnvCoarseReward):
		cfg.Granularity = GranularityCoarse
	case envBool(EnvIntermediateReward):
		cfg.Granularity = GranularityIntermediate
	case envBool(EnvRefinedReward):
		cfg.Granularity = GranularityFine
	}

	if envBool(EnvContribution) {
		cfg.Contribution = true
		cfg.Beta = 0.05
		switch strings.ToUpper(strings.TrimSpace(os.Getenv(EnvContribType))) {
		case "C1":
			cfg.ContribType = ContribC1
		case "C0", "":
			cfg.ContribType = ContribC0
		}
		if v := os.Getenv(EnvBeta); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
				cfg.Beta = f
			}
		}
	}

	if v := os.Getenv(EnvExperimentName); v != "" {
		cfg.Experiment = v
	}
}

// envBool reports whether the variable is set to a truthy value.
// Recognized: "1", "true", "yes", "on" (case-insensitive).
func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
