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

const (
	wellFormedSolution = "<think>search for it</think>" +
		"<tool_call>{\"name\": \"search\", \"parameters\": {\"q\": \"go\", \"limit\": 7}}</tool_call>"
	partialGroundTruth = "<tool_call>{\"name\": \"search\", \"parameters\": {\"q\": \"go\", \"limit\": 5}}</tool_call>"
)

func TestNewScorer_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Beta = -1
	if _, err := NewScorer(cfg); err == nil {
		t.Error("NewScorer should reject a negative beta")
	}

	cfg = DefaultConfig()
	cfg.ScaleMode = "bogus"
	if _, err := NewScorer(cfg); err == nil {
		t.Error("NewScorer should reject an unknown scale mode")
	}
}

func TestScore_Composition(t *testing.T) {
	// Format 1, correctness 2 (one of two parameter values matches on
	// the default range), length disabled, contribution 1 with beta
	// 0.5, so total = 1 + 2 + 0 + 0.5*1 = 3.5.
	cfg := DefaultConfig()
	cfg.Contribution = true
	cfg.ContribType = ContribC0
	cfg.Beta = 0.5

	s, err := NewScorer(cfg)
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}

	prev := &StepContext{BlackboardHash: "h1"}
	cur := &StepContext{BlackboardHash: "h2"}
	r := s.Score(wellFormedSolution, partialGroundTruth, 0, prev, cur)

	if r.Format != 1 {
		t.Errorf("Format = %v, want 1", r.Format)
	}
	if !almostEqual(r.Correctness, 2) {
		t.Errorf("Correctness = %v, want 2", r.Correctness)
	}
	if r.Length != 0 {
		t.Errorf("Length = %v, want 0", r.Length)
	}
	if r.Contribution != 1 {
		t.Errorf("Contribution = %v, want 1", r.Contribution)
	}
	if r.Beta != 0.5 {
		t.Errorf("Beta = %v, want 0.5", r.Beta)
	}
	if !almostEqual(r.Total, 3.5) {
		t.Errorf("Total = %v, want 3.5", r.Total)
	}
}

func TestScore_ContributionDisabledIgnoresContext(t *testing.T) {
	s, err := NewScorer(DefaultConfig())
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}

	without := s.Score(wellFormedSolution, partialGroundTruth, 0, nil, nil)
	with := s.Score(wellFormedSolution, partialGroundTruth, 0,
		&StepContext{BlackboardHash: "h1", ValueEstimate: 0.1},
		&StepContext{BlackboardHash: "h2", ValueEstimate: 0.9})

	if without != with {
		t.Errorf("score depends on step context with contribution disabled:\n  without = %+v\n  with    = %+v", without, with)
	}
	if with.Contribution != 0 {
		t.Errorf("Contribution = %v, want 0 when disabled", with.Contribution)
	}
}

func TestScore_Deterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Contribution = true
	cfg.ContribType = ContribC1
	cfg.Beta = 0.05

	s, err := NewScorer(cfg)
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}

	prev := &StepContext{ValueEstimate: 0.2}
	cur := &StepContext{ValueEstimate: 0.5}

	a := s.Score(wellFormedSolution, partialGroundTruth, 10, prev, cur)
	b := s.Score(wellFormedSolution, partialGroundTruth, 10, prev, cur)
	if a != b {
		t.Errorf("Score not deterministic:\n  first  = %+v\n  second = %+v", a, b)
	}
}

func TestScore_TotalIsComponentSum(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WithLength = true
	cfg.TargetLength = 64
	cfg.Contribution = true
	cfg.ContribType = ContribC1
	cfg.Beta = 0.05

	s, err := NewScorer(cfg)
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}

	r := s.Score(wellFormedSolution, partialGroundTruth, 5,
		&StepContext{ValueEstimate: 0.1},
		&StepContext{ValueEstimate: 0.7})

	sum := r.Format + r.Correctness + r.Length + r.Beta*r.Contribution
	if !almostEqual(r.Total, sum) {
		t.Errorf("Total = %v, component sum = %v", r.Total, sum)
	}
}

func TestComputeScore_EnvDefaults(t *testing.T) {
	// A bare environment means the paper default reward: no length, no
	// contribution, full correctness range.
	for _, key := range []string{
		EnvContribution, EnvContribType, EnvBeta, EnvWithLength,
		EnvScheduleLength, EnvCorrectMax1, EnvMax1Step30Max3,
		EnvScheduleReward, EnvRefinedReward, EnvIntermediateReward,
		EnvCoarseReward, EnvExperimentName,
	} {
		t.Setenv(key, "")
	}

	r := ComputeScore(wellFormedSolution, partialGroundTruth, 0,
		&StepContext{BlackboardHash: "h1"},
		&StepContext{BlackboardHash: "h2"})

	if r.Contribution != 0 {
		t.Errorf("Contribution = %v, want 0 with CONTRIBUTION unset", r.Contribution)
	}
	if r.Length != 0 {
		t.Errorf("Length = %v, want 0 with WITHLENGTH unset", r.Length)
	}
	if !almostEqual(r.Total, 3) { // format 1 + correctness 2
		t.Errorf("Total = %v, want 3", r.Total)
	}
}

func TestComputeScore_EnvContribution(t *testing.T) {
	t.Setenv(EnvContribution, "1")
	t.Setenv(EnvContribType, "C1")
	t.Setenv(EnvBeta, "0.5")

	r := ComputeScore(wellFormedSolution, partialGroundTruth, 0,
		&StepContext{ValueEstimate: 0.2},
		&StepContext{ValueEstimate: 0.5})

	if !almostEqual(r.Contribution, 0.3) {
		t.Errorf("Contribution = %v, want 0.3", r.Contribution)
	}
	if r.Beta != 0.5 {
		t.Errorf("Beta = %v, want 0.5", r.Beta)
	}
	if !almostEqual(r.Total, 3+0.5*0.3) {
		t.Errorf("Total = %v, want %v", r.Total, 3+0.5*0.3)
	}
}
