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

func TestContribBinary(t *testing.T) {
	tests := []struct {
		name string
		prev string
		cur  string
		want float64
	}{
		{name: "identical hashes", prev: "{}", cur: "{}", want: 0},
		{name: "changed blackboard", prev: "{\"a\": 1}", cur: "{}", want: 1},
		{name: "both empty", prev: "", cur: "", want: 0},
		{name: "empty to populated", prev: "", cur: "d41d8cd9", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContribBinary(tt.prev, tt.cur); got != tt.want {
				t.Errorf("ContribBinary(%q, %q) = %v, want %v", tt.prev, tt.cur, got, tt.want)
			}
		})
	}
}

func TestContribBinary_Idempotent(t *testing.T) {
	a := ContribBinary("h1", "h2")
	b := ContribBinary("h1", "h2")
	if a != b {
		t.Errorf("ContribBinary not idempotent: %v vs %v", a, b)
	}
}

func TestContribValueDelta(t *testing.T) {
	tests := []struct {
		name string
		prev float64
		cur  float64
		want float64
	}{
		{name: "improvement", prev: 0.2, cur: 0.5, want: 0.3},
		{name: "regression clamps to zero", prev: 0.5, cur: 0.2, want: 0},
		{name: "no change", prev: 0.4, cur: 0.4, want: 0},
		{name: "both zero", prev: 0, cur: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContribValueDelta(tt.prev, tt.cur); !almostEqual(got, tt.want) {
				t.Errorf("ContribValueDelta(%v, %v) = %v, want %v", tt.prev, tt.cur, got, tt.want)
			}
		})
	}
}

func TestContribValueDeltaShaped(t *testing.T) {
	tests := []struct {
		name string
		prev float64
		cur  float64
		step int
		opts ValueDeltaOptions
		want float64
	}{
		{
			name: "defaults equal plain delta",
			prev: 0.2, cur: 0.5, step: 50,
			opts: ValueDeltaOptions{},
			want: 0.3,
		},
		{
			name: "complexity normalization",
			prev: 0.0, cur: 0.4, step: 0,
			opts: ValueDeltaOptions{TaskComplexity: 0.8},
			want: 0.5,
		},
		{
			name: "complexity floored at 0.1",
			prev: 0.0, cur: 0.05, step: 0,
			opts: ValueDeltaOptions{TaskComplexity: 0.01},
			want: 0.5,
		},
		{
			name: "step decay at midpoint",
			prev: 0.0, cur: 0.4, step: 50,
			opts: ValueDeltaOptions{StepDecay: true},
			want: 0.2,
		},
		{
			name: "step decay floored at 10 percent",
			prev: 0.0, cur: 0.4, step: 500,
			opts: ValueDeltaOptions{StepDecay: true},
			want: 0.04,
		},
		{
			name: "clip caps at one",
			prev: 0.0, cur: 0.9, step: 0,
			opts: ValueDeltaOptions{TaskComplexity: 0.1, Clip: true},
			want: 1,
		},
		{
			name: "regression still zero",
			prev: 0.9, cur: 0.1, step: 0,
			opts: ValueDeltaOptions{TaskComplexity: 0.5, StepDecay: true, Clip: true},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContribValueDeltaShaped(tt.prev, tt.cur, tt.step, tt.opts)
			if !almostEqual(got, tt.want) {
				t.Errorf("ContribValueDeltaShaped = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContributionReward_Dispatch(t *testing.T) {
	c0 := DefaultConfig()
	c0.Contribution = true
	c0.ContribType = ContribC0

	c1 := DefaultConfig()
	c1.Contribution = true
	c1.ContribType = ContribC1

	prev := &StepContext{BlackboardHash: "h1", ValueEstimate: 0.2}
	cur := &StepContext{BlackboardHash: "h2", ValueEstimate: 0.5}

	s0 := &Scorer{cfg: c0}
	if got := s0.contributionReward(prev, cur); got != 1 {
		t.Errorf("C0 contributionReward = %v, want 1", got)
	}

	s1 := &Scorer{cfg: c1}
	if got := s1.contributionReward(prev, cur); !almostEqual(got, 0.3) {
		t.Errorf("C1 contributionReward = %v, want 0.3", got)
	}
}

func TestContributionReward_MissingContext(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Contribution = true
	s := &Scorer{cfg: cfg}

	// Absent contexts degrade to the neutral defaults, so no change is
	// observed and the signal is 0.
	if got := s.contributionReward(nil, nil); got != 0 {
		t.Errorf("contributionReward(nil, nil) = %v, want 0", got)
	}
	if got := s.contributionReward(nil, &StepContext{BlackboardHash: "h"}); got != 1 {
		t.Errorf("contributionReward(nil, changed) = %v, want 1", got)
	}
}

func TestContributionReward_Disabled(t *testing.T) {
	s := &Scorer{cfg: DefaultConfig()}
	prev := &StepContext{BlackboardHash: "h1"}
	cur := &StepContext{BlackboardHash: "h2"}
	if got := s.contributionReward(prev, cur); got != 0 {
		t.Errorf("disabled contributionReward = %v, want 0", got)
	}
}
