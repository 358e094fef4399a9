// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"testing"
)

func TestSetPersonalityLevel(t *testing.T) {
	prev := GetPersonality().Level
	defer SetPersonalityLevel(prev)

	SetPersonalityLevel(PersonalityMinimal)
	if got := GetPersonality().Level; got != PersonalityMinimal {
		t.Errorf("Level = %v, want minimal", got)
	}
}

func TestParsePersonalityLevel(t *testing.T) {
	tests := []struct {
		in   string
		want PersonalityLevel
	}{
		{"full", PersonalityFull},
		{"f", PersonalityFull},
		{"FULL", PersonalityFull},
		{"standard", PersonalityStandard},
		{"std", PersonalityStandard},
		{"minimal", PersonalityMinimal},
		{"min", PersonalityMinimal},
		{"machine", PersonalityMachine},
		{"quiet", PersonalityMachine},
		{"q", PersonalityMachine},
		{"nonsense", PersonalityStandard},
		{"", PersonalityStandard},
	}
	for _, tt := range tests {
		if got := ParsePersonalityLevel(tt.in); got != tt.want {
			t.Errorf("ParsePersonalityLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitPersonality_EnvWins(t *testing.T) {
	prev := GetPersonality().Level
	defer SetPersonalityLevel(prev)

	t.Setenv("ALEUTIANRL_PERSONALITY", "machine")
	InitPersonality()
	if got := GetPersonality().Level; got != PersonalityMachine {
		t.Errorf("Level = %v, want machine from env", got)
	}
}

func TestInitPersonality_NonTTYFallsBackToMachine(t *testing.T) {
	prev := GetPersonality().Level
	defer SetPersonalityLevel(prev)

	t.Setenv("ALEUTIANRL_PERSONALITY", "")
	// Under go test, stdout is a pipe.
	if isTerminal() {
		t.Skip("stdout is a terminal")
	}
	InitPersonality()
	if got := GetPersonality().Level; got != PersonalityMachine {
		t.Errorf("Level = %v, want machine without a TTY", got)
	}
}
