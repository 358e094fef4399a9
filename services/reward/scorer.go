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

import "fmt"

// Scorer computes the shaped reward for one generated trajectory step.
//
// Description:
//
//	A Scorer is a pure function over its inputs plus an immutable
//	Config fixed at construction. It performs no I/O and mutates no
//	shared state, so a single instance can be shared by every rollout
//	worker in the process. Calls are independent and synchronous; the
//	surrounding trainer owns batching and distribution.
type Scorer struct {
	cfg Config
}

// NewScorer builds a Scorer from an explicit configuration.
//
// Inputs:
//   - cfg: Reward variant configuration. Validated before use.
//
// Outputs:
//   - *Scorer: Ready-to-use scorer.
//   - error: Non-nil if the configuration violates an invariant.
func NewScorer(cfg Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("reward config: %w", err)
	}
	return &Scorer{cfg: cfg}, nil
}

// Config returns the scorer's effective configuration.
func (s *Scorer) Config() Config {
	return s.cfg
}

// Score computes the reward breakdown for one step.
//
// Inputs:
//   - solution: The generated text, possibly chat-template wrapped.
//   - groundTruth: The reference completion for this step.
//   - step: The current training step, used by scheduled variants.
//   - prev, cur: Optional step contexts for the contribution signal;
//     nil degrades the contribution component to 0.
//
// Outputs:
//   - Result: Total plus the additive component breakdown. Calling
//     twice with identical inputs yields identical output.
func (s *Scorer) Score(solution, groundTruth string, step int, prev, cur *StepContext) Result {
	r := Result{
		Format:      formatReward(solution),
		Correctness: s.correctnessReward(solution, groundTruth, step),
		Length:      s.lengthReward(solution, step),
		Beta:        s.cfg.Beta,
	}
	if s.cfg.Contribution {
		r.Contribution = s.contributionReward(prev, cur)
	}
	r.Total = r.Format + r.Correctness + r.Length + r.Beta*r.Contribution
	return r
}

// ComputeScore is the trainer-facing entry point: it reads the variant
// selection from the process environment once and scores the step.
//
// Description:
//
//	Kept for callers that configure rewards the launch-script way
//	(CONTRIBUTION, BETA, WITHLENGTH, ...). New code should construct a
//	Scorer with an explicit Config instead; this function rebuilds the
//	configuration from the environment on every call, which is exactly
//	the hidden-global behavior the explicit API avoids.
func ComputeScore(solution, groundTruth string, step int, prev, cur *StepContext) Result {
	s := Scorer{cfg: FromEnv()}
	return s.Score(solution, groundTruth, step, prev, cur)
}
