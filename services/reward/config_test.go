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
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.WithLength || cfg.ScheduleLength {
		t.Error("length shaping should be off by default")
	}
	if cfg.Contribution {
		t.Error("contribution should be off by default")
	}
	if cfg.ScaleMode != ScaleDefault {
		t.Errorf("ScaleMode = %q, want %q", cfg.ScaleMode, ScaleDefault)
	}
	if cfg.Granularity != GranularityFine {
		t.Errorf("Granularity = %q, want %q", cfg.Granularity, GranularityFine)
	}
	if cfg.TargetLength != 256 {
		t.Errorf("TargetLength = %d, want 256", cfg.TargetLength)
	}
	if cfg.TwoStageStep != 30 {
		t.Errorf("TwoStageStep = %d, want 30", cfg.TwoStageStep)
	}
	if cfg.ScheduleWindow != 100 {
		t.Errorf("ScheduleWindow = %d, want 100", cfg.ScheduleWindow)
	}
	if cfg.Beta != 0 {
		t.Errorf("Beta = %v, want 0", cfg.Beta)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantError bool
	}{
		{
			name:      "valid default",
			modify:    func(_ *Config) {},
			wantError: false,
		},
		{
			name: "unknown scale mode",
			modify: func(c *Config) {
				c.ScaleMode = "sideways"
			},
			wantError: true,
		},
		{
			name: "unknown granularity",
			modify: func(c *Config) {
				c.Granularity = "fuzzy"
			},
			wantError: true,
		},
		{
			name: "unknown contrib type when enabled",
			modify: func(c *Config) {
				c.Contribution = true
				c.ContribType = "C9"
			},
			wantError: true,
		},
		{
			name: "unknown contrib type ignored when disabled",
			modify: func(c *Config) {
				c.ContribType = "C9"
			},
			wantError: false,
		},
		{
			name: "negative beta",
			modify: func(c *Config) {
				c.Beta = -0.05
			},
			wantError: true,
		},
		{
			name: "zero target length",
			modify: func(c *Config) {
				c.TargetLength = 0
			},
			wantError: true,
		},
		{
			name: "zero two stage step",
			modify: func(c *Config) {
				c.TwoStageStep = 0
			},
			wantError: true,
		},
		{
			name: "zero schedule window",
			modify: func(c *Config) {
				c.ScheduleWindow = 0
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError = %v", err, tt.wantError)
			}
		})
	}
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	clearRewardEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "reward.yaml")
	content := `
with_length: true
target_length: 512
contribution: true
contrib_type: C1
beta: 0.1
experiment: yaml-run
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.WithLength || cfg.TargetLength != 512 {
		t.Errorf("length settings not loaded: %+v", cfg)
	}
	if !cfg.Contribution || cfg.ContribType != ContribC1 || cfg.Beta != 0.1 {
		t.Errorf("contribution settings not loaded: %+v", cfg)
	}
	if cfg.Experiment != "yaml-run" {
		t.Errorf("Experiment = %q, want yaml-run", cfg.Experiment)
	}
}

func TestLoadConfig_JSONFile(t *testing.T) {
	clearRewardEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "reward.json")
	content := `{"scale_mode": "max1", "granularity": "coarse"}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ScaleMode != ScaleMax1 || cfg.Granularity != GranularityCoarse {
		t.Errorf("JSON settings not loaded: %+v", cfg)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	clearRewardEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "reward.yaml")
	if err := os.WriteFile(path, []byte("experiment: from-file\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(EnvExperimentName, "from-env")
	t.Setenv(EnvWithLength, "1")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Experiment != "from-env" {
		t.Errorf("Experiment = %q, env should win over file", cfg.Experiment)
	}
	if !cfg.WithLength {
		t.Error("WITHLENGTH=1 should apply on top of the file")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	clearRewardEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig should tolerate a missing file: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("missing file should yield defaults, got %+v", cfg)
	}
}

func TestLoadConfig_InvalidMergedConfig(t *testing.T) {
	clearRewardEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "reward.yaml")
	if err := os.WriteFile(path, []byte("beta: -2\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig should reject a negative beta from the file")
	}
}
