// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package validation

import (
	"strings"
	"testing"
)

func TestValidateRolloutID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		// Valid identifiers
		{"simple", "rollout-1", false},
		{"single char", "r", false},
		{"uuid style", "3f2a9c1e-77d4-4b2a-9b1f-2d6f0c8e1a2b", false},
		{"with dots", "run.2026.08", false},
		{"with underscores", "grpo_c0_beta", false},
		{"max length", strings.Repeat("a", 64), false},

		// Invalid identifiers - injection attempts
		{"empty", "", true},
		{"key prefix collision", "r1/0", true},
		{"path traversal", "../etc/passwd", true},
		{"command injection", "r1; rm -rf /", true},
		{"newline injection", "r1\ndrop", true},
		{"too long", strings.Repeat("a", 65), true},
		{"spaces", "r 1", true},
		{"starts with dot", ".r1", true},
		{"starts with hyphen", "-r1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRolloutID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRolloutID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRunName(t *testing.T) {
	tests := []struct {
		name    string
		runName string
		wantErr bool
	}{
		{"simple", "grpo-test", false},
		{"with version", "qwen2.5-7b_c1", false},
		{"empty", "", true},
		{"shell metachars", "run$(id)", true},
		{"spaces", "my run", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRunName(tt.runName)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRunName(%q) error = %v, wantErr %v", tt.runName, err, tt.wantErr)
			}
		})
	}
}
