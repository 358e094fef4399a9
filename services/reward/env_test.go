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

import "testing"

func clearRewardEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvContribution, EnvContribType, EnvBeta, EnvWithLength,
		EnvScheduleLength, EnvCorrectMax1, EnvMax1Step30Max3,
		EnvScheduleReward, EnvRefinedReward, EnvIntermediateReward,
		EnvCoarseReward, EnvExperimentName,
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearRewardEnv(t)

	cfg := FromEnv()
	if cfg != DefaultConfig() {
		t.Errorf("FromEnv with bare environment = %+v, want DefaultConfig", cfg)
	}
}

func TestFromEnv_Length(t *testing.T) {
	clearRewardEnv(t)
	t.Setenv(EnvWithLength, "1")

	cfg := FromEnv()
	if !cfg.WithLength {
		t.Error("WITHLENGTH=1 should enable the length component")
	}
	if cfg.ScheduleLength {
		t.Error("ScheduleLength should stay off without SCHEDULELENGTH")
	}
}

func TestFromEnv_ScheduleLengthImpliesLength(t *testing.T) {
	clearRewardEnv(t)
	t.Setenv(EnvScheduleLength, "true")

	cfg := FromEnv()
	if !cfg.WithLength || !cfg.ScheduleLength {
		t.Errorf("SCHEDULELENGTH should imply WithLength, got %+v", cfg)
	}
}

func TestFromEnv_ScalePrecedence(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]string
		want ScaleMode
	}{
		{
			name: "correctmax1",
			set:  map[string]string{EnvCorrectMax1: "1"},
			want: ScaleMax1,
		},
		{
			name: "two stage",
			set:  map[string]string{EnvMax1Step30Max3: "1"},
			want: ScaleTwoStage,
		},
		{
			name: "scheduled",
			set:  map[string]string{EnvScheduleReward: "1"},
			want: ScaleScheduled,
		},
		{
			name: "scheduled wins over two stage and max1",
			set: map[string]string{
				EnvScheduleReward: "1",
				EnvMax1Step30Max3: "1",
				EnvCorrectMax1:    "1",
			},
			want: ScaleScheduled,
		},
		{
			name: "two stage wins over max1",
			set: map[string]string{
				EnvMax1Step30Max3: "1",
				EnvCorrectMax1:    "1",
			},
			want: ScaleTwoStage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearRewardEnv(t)
			for k, v := range tt.set {
				t.Setenv(k, v)
			}
			if cfg := FromEnv(); cfg.ScaleMode != tt.want {
				t.Errorf("ScaleMode = %q, want %q", cfg.ScaleMode, tt.want)
			}
		})
	}
}

func TestFromEnv_GranularityPrecedence(t *testing.T) {
	clearRewardEnv(t)
	t.Setenv(EnvCoarseReward, "1")
	t.Setenv(EnvIntermediateReward, "1")
	t.Setenv(EnvRefinedReward, "1")

	if cfg := FromEnv(); cfg.Granularity != GranularityCoarse {
		t.Errorf("Granularity = %q, want coarse to win", cfg.Granularity)
	}

	clearRewardEnv(t)
	t.Setenv(EnvIntermediateReward, "1")
	if cfg := FromEnv(); cfg.Granularity != GranularityIntermediate {
		t.Errorf("Granularity = %q, want intermediate", cfg.Granularity)
	}
}

func TestFromEnv_Contribution(t *testing.T) {
	clearRewardEnv(t)
	t.Setenv(EnvContribution, "1")

	cfg := FromEnv()
	if !cfg.Contribution {
		t.Fatal("CONTRIBUTION=1 should enable the contribution component")
	}
	if cfg.ContribType != ContribC0 {
		t.Errorf("ContribType = %q, want C0 default", cfg.ContribType)
	}
	if cfg.Beta != 0.05 {
		t.Errorf("Beta = %v, want 0.05 default", cfg.Beta)
	}
}

func TestFromEnv_ContributionC1WithBeta(t *testing.T) {
	clearRewardEnv(t)
	t.Setenv(EnvContribution, "1")
	t.Setenv(EnvContribType, "c1") // case-insensitive
	t.Setenv(EnvBeta, "0.2")

	cfg := FromEnv()
	if cfg.ContribType != ContribC1 {
		t.Errorf("ContribType = %q, want C1", cfg.ContribType)
	}
	if cfg.Beta != 0.2 {
		t.Errorf("Beta = %v, want 0.2", cfg.Beta)
	}
}

func TestFromEnv_NegativeBetaIgnored(t *testing.T) {
	clearRewardEnv(t)
	t.Setenv(EnvContribution, "1")
	t.Setenv(EnvBeta, "-3")

	if cfg := FromEnv(); cfg.Beta != 0.05 {
		t.Errorf("Beta = %v, want 0.05 (negative override ignored)", cfg.Beta)
	}
}

func TestFromEnv_BetaWithoutContribution(t *testing.T) {
	clearRewardEnv(t)
	t.Setenv(EnvBeta, "0.9")

	// BETA alone does nothing; the contribution component stays off.
	cfg := FromEnv()
	if cfg.Contribution || cfg.Beta != 0 {
		t.Errorf("BETA without CONTRIBUTION should be inert, got %+v", cfg)
	}
}

func TestFromEnv_ExperimentName(t *testing.T) {
	clearRewardEnv(t)
	t.Setenv(EnvExperimentName, "grpo-c1-beta005")

	if cfg := FromEnv(); cfg.Experiment != "grpo-c1-beta005" {
		t.Errorf("Experiment = %q", cfg.Experiment)
	}
}

func TestEnvBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"on", true},
		{" 1 ", true},
		{"0", false},
		{"false", false},
		{"", false},
		{"banana", false},
	}

	for _, tt := range tests {
		t.Run("value="+tt.value, func(t *testing.T) {
			t.Setenv(EnvWithLength, tt.value)
			if got := envBool(EnvWithLength); got != tt.want {
				t.Errorf("envBool(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
