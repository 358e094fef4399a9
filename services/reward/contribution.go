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

// =============================================================================
// Contribution Signals
// =============================================================================

// ContribBinary is the C-0 signal: did this action change the shared
// blackboard at all.
//
// Description:
//
//	Returns 1 if the two precomputed blackboard hashes differ, else 0.
//	The comparison is plain string inequality on the values the rollout
//	pipeline supplies; the scorer does not re-hash and assumes nothing
//	about the upstream hash function beyond determinism. Two empty
//	hashes (the neutral default for missing context) compare equal, so
//	absent context yields 0 rather than a spurious change.
//
// Thread Safety: Safe for concurrent use (stateless).
func ContribBinary(prevHash, curHash string) float64 {
	if prevHash != curHash {
		return 1
	}
	return 0
}

// ContribValueDelta is the C-1 signal: did this action improve the
// critic's assessment.
//
// Description:
//
//	Returns max(cur - prev, 0). Value decreases are clamped to 0; the
//	signal rewards progress and never penalizes regressions, leaving
//	that to the main reward. Missing estimates default to 0 upstream,
//	which makes the signal 0 for absent context.
//
// Thread Safety: Safe for concurrent use (stateless).
func ContribValueDelta(prev, cur float64) float64 {
	d := cur - prev
	if d < 0 {
		return 0
	}
	return d
}

// ValueDeltaOptions tunes the shaped C-1 variant.
//
// All fields default to the plain clamped delta: no normalization, no
// decay, no clipping.
type ValueDeltaOptions struct {
	// TaskComplexity normalizes the delta by the task's difficulty.
	// Values below 0.1 are floored to 0.1 to keep the division sane.
	// Zero means no normalization.
	TaskComplexity float64

	// StepDecay scales the signal down linearly over the first 100
	// steps (floored at 10%), making early progress worth more.
	StepDecay bool

	// Clip caps the shaped signal to [0, 1].
	Clip bool
}

// stepDecayHorizon is the window over which StepDecay attenuates the
// signal, matching the schedule horizon of the rest of the reward.
const stepDecayHorizon = 100.0

// ContribValueDeltaShaped is the shaped C-1 variant used by value-delta
// experiments that normalize for task difficulty and favor early
// progress.
func ContribValueDeltaShaped(prev, cur float64, step int, opts ValueDeltaOptions) float64 {
	d := ContribValueDelta(prev, cur)
	if d == 0 {
		return 0
	}

	if opts.TaskComplexity > 0 {
		c := opts.TaskComplexity
		if c < 0.1 {
			c = 0.1
		}
		d /= c
	}

	if opts.StepDecay {
		factor := 1.0 - float64(step)/stepDecayHorizon
		if factor < 0.1 {
			factor = 0.1
		}
		d *= factor
	}

	if opts.Clip {
		if d > 1 {
			d = 1
		}
	}
	return d
}

// contributionReward dispatches to the configured contribution type,
// degrading to 0 when context is missing.
func (s *Scorer) contributionReward(prev, cur *StepContext) float64 {
	if !s.cfg.Contribution {
		return 0
	}

	var p, c StepContext
	if prev != nil {
		p = *prev
	}
	if cur != nil {
		c = *cur
	}

	switch s.cfg.ContribType {
	case ContribC1:
		return ContribValueDelta(p.ValueEstimate, c.ValueEstimate)
	default: // ContribC0
		return ContribBinary(p.BlackboardHash, c.BlackboardHash)
	}
}
