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
	"reflect"
	"strings"
)

// maxCorrectnessScale is the full correctness range used by the paper
// default: a perfectly matched step earns +3, a fully wrong one -3.
const maxCorrectnessScale = 3.0

// toolCall is one parsed invocation from a <tool_call> block.
type toolCall struct {
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
}

// parseToolCalls extracts every tool invocation from the <tool_call>
// blocks of a response. A block body is either a single JSON object or
// one object per line; anything that does not decode to an object with
// a non-empty name is skipped, never an error.
func parseToolCalls(text string) []toolCall {
	var calls []toolCall
	for _, body := range extractSections(text, tagToolCall) {
		if tc, ok := decodeToolCall(body); ok {
			calls = append(calls, tc)
			continue
		}
		for _, line := range strings.Split(body, "\n") {
			if tc, ok := decodeToolCall(strings.TrimSpace(line)); ok {
				calls = append(calls, tc)
			}
		}
	}
	return calls
}

func decodeToolCall(s string) (toolCall, bool) {
	if !strings.HasPrefix(s, "{") {
		return toolCall{}, false
	}
	var tc toolCall
	if err := json.Unmarshal([]byte(s), &tc); err != nil || tc.Name == "" {
		return toolCall{}, false
	}
	return tc, true
}

// correctnessReward grades the solution's tool calls against the
// reference, mapped onto [-scale, +scale] where scale depends on the
// configured ScaleMode and the training step.
//
// Description:
//
//	The match ratio in [0, 1] is computed per the configured
//	granularity and then mapped linearly so that a perfect match earns
//	+scale and a total mismatch earns -scale. Wrong-but-structured
//	answers therefore pay for their wrong tool choice while format
//	compliance is still credited separately.
func (s *Scorer) correctnessReward(solution, groundTruth string, step int) float64 {
	sol := parseToolCalls(stripChatWrappers(solution))
	ref := parseToolCalls(stripChatWrappers(groundTruth))
	ratio := matchRatio(sol, ref, s.cfg.Granularity)
	return s.correctnessScale(step) * (2*ratio - 1)
}

// correctnessScale returns the correctness cap active at a step.
func (s *Scorer) correctnessScale(step int) float64 {
	switch s.cfg.ScaleMode {
	case ScaleMax1:
		return 1
	case ScaleTwoStage:
		if step < s.cfg.TwoStageStep {
			return 1
		}
		return maxCorrectnessScale
	case ScaleScheduled:
		frac := float64(step) / float64(s.cfg.ScheduleWindow)
		if frac > 1 {
			frac = 1
		}
		if frac < 0 {
			frac = 0
		}
		return 1 + (maxCorrectnessScale-1)*frac
	default:
		return maxCorrectnessScale
	}
}

// matchRatio computes the tool-call agreement in [0, 1].
func matchRatio(sol, ref []toolCall, g Granularity) float64 {
	if len(ref) == 0 && len(sol) == 0 {
		// A reference step without tool calls (pure <response> turns)
		// is matched by a solution without tool calls.
		return 1
	}
	if len(ref) == 0 || len(sol) == 0 {
		return 0
	}

	pairs, matched := pairByName(sol, ref)

	denom := float64(len(ref))
	if len(sol) > len(ref) {
		// Spurious extra calls dilute the score.
		denom = float64(len(sol))
	}
	nameScore := float64(matched) / denom

	switch g {
	case GranularityCoarse:
		if len(sol) != len(ref) || matched != len(ref) {
			return 0
		}
		for _, p := range pairs {
			if p.sol == nil || !reflect.DeepEqual(p.sol.Parameters, p.ref.Parameters) {
				return 0
			}
		}
		return 1

	case GranularityIntermediate:
		exact := 0
		for _, p := range pairs {
			if p.sol != nil && reflect.DeepEqual(p.sol.Parameters, p.ref.Parameters) {
				exact++
			}
		}
		return (nameScore + float64(exact)/denom) / 2

	default: // GranularityFine
		var keyScore, valueScore float64
		for _, p := range pairs {
			if p.sol == nil {
				continue
			}
			keyScore += keyOverlap(p.sol.Parameters, p.ref.Parameters)
			valueScore += valueAgreement(p.sol.Parameters, p.ref.Parameters)
		}
		keyScore /= denom
		valueScore /= denom
		return (nameScore + keyScore + valueScore) / 3
	}
}

type callPair struct {
	ref *toolCall
	sol *toolCall
}

// pairByName greedily pairs each reference call with the first unused
// solution call of the same name, preserving reference order.
func pairByName(sol, ref []toolCall) ([]callPair, int) {
	used := make([]bool, len(sol))
	pairs := make([]callPair, 0, len(ref))
	matched := 0
	for i := range ref {
		p := callPair{ref: &ref[i]}
		for j := range sol {
			if !used[j] && sol[j].Name == ref[i].Name {
				used[j] = true
				p.sol = &sol[j]
				matched++
				break
			}
		}
		pairs = append(pairs, p)
	}
	return pairs, matched
}

// keyOverlap is the Jaccard overlap of parameter key sets.
func keyOverlap(sol, ref map[string]any) float64 {
	if len(sol) == 0 && len(ref) == 0 {
		return 1
	}
	union := make(map[string]struct{}, len(sol)+len(ref))
	for k := range sol {
		union[k] = struct{}{}
	}
	for k := range ref {
		union[k] = struct{}{}
	}
	inter := 0
	for k := range ref {
		if _, ok := sol[k]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(union))
}

// valueAgreement is the fraction of reference parameters whose values
// the solution reproduces exactly.
func valueAgreement(sol, ref map[string]any) float64 {
	if len(ref) == 0 {
		if len(sol) == 0 {
			return 1
		}
		return 0
	}
	agree := 0
	for k, rv := range ref {
		if sv, ok := sol[k]; ok && reflect.DeepEqual(sv, rv) {
			agree++
		}
	}
	return float64(agree) / float64(len(ref))
}
