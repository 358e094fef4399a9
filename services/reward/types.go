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
	"encoding/json"
	"strconv"
)

// StepContext is the optional per-step context the rollout pipeline
// forwards alongside a generated step.
//
// Description:
//
//	BlackboardHash is an opaque, precomputed hash of the shared mutable
//	blackboard state; the scorer only ever compares hashes for string
//	equality and never re-hashes, so inputs need no particular format
//	or collision guarantees. ValueEstimate is the critic's scalar value
//	estimate at this step.
//
//	Both fields default to neutral values (empty hash, zero value).
//	A missing or malformed context never fails a training step; the
//	contribution component silently becomes 0 instead.
//
// Thread Safety: StepContext is a value type; copies are independent.
type StepContext struct {
	// BlackboardHash is the precomputed hash of the blackboard state.
	BlackboardHash string `json:"bb_hash"`

	// ValueEstimate is the critic value estimate for this step.
	ValueEstimate float64 `json:"value_est"`
}

// UnmarshalJSON tolerates the loosely typed step dictionaries produced
// by the rollout pipeline: value_est may arrive as a JSON number or a
// numeric string, and unknown or malformed fields degrade to the
// neutral defaults instead of erroring.
func (s *StepContext) UnmarshalJSON(data []byte) error {
	*s = StepContext{}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// Not an object at all. Degrade to the neutral context.
		return nil
	}

	if v, ok := raw["bb_hash"]; ok {
		var h string
		if err := json.Unmarshal(v, &h); err == nil {
			s.BlackboardHash = h
		}
	}
	if v, ok := raw["value_est"]; ok {
		var f float64
		if err := json.Unmarshal(v, &f); err == nil {
			s.ValueEstimate = f
		} else {
			var str string
			if err := json.Unmarshal(v, &str); err == nil {
				if f, err := strconv.ParseFloat(str, 64); err == nil {
					s.ValueEstimate = f
				}
			}
		}
	}
	return nil
}

// Result is the score breakdown for one trajectory step.
//
// Description:
//
//	Total is the value the trainer optimizes against. The components
//	are reported for logging and analysis; Contribution is the raw
//	(unweighted) signal, so Total = Format + Correctness + Length +
//	Beta * Contribution. Results are returned to the caller and never
//	persisted by the scorer itself.
type Result struct {
	// Total is the composed scalar reward.
	Total float64 `json:"total"`

	// Format is the structural compliance component (0 or 1).
	Format float64 `json:"format"`

	// Correctness is the tool-call match component in [-scale, +scale].
	Correctness float64 `json:"correctness"`

	// Length is the length-shaping component (0 when disabled).
	Length float64 `json:"length"`

	// Contribution is the raw auxiliary signal before weighting
	// (0 when disabled or when step context is absent).
	Contribution float64 `json:"contribution"`

	// Beta is the weight that was applied to Contribution.
	Beta float64 `json:"beta"`
}
