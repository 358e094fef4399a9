// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import "github.com/AleutianAI/AleutianRL/services/reward"

// ScoreRequest scores one generated trajectory step.
//
// PrevStep and CurStep carry the step dictionaries the rollout pipeline
// produces (bb_hash, value_est). When PrevStep is omitted but RolloutID
// is set and a history store is configured, the service resolves the
// previous context itself and records CurStep for the following call.
type ScoreRequest struct {
	// Solution is the generated text, possibly chat-template wrapped.
	Solution string `json:"solution" binding:"required"`

	// GroundTruth is the reference completion.
	GroundTruth string `json:"ground_truth" binding:"required"`

	// Step is the current training step.
	Step int `json:"step" binding:"min=0"`

	// RolloutID identifies the trajectory for history bookkeeping.
	RolloutID string `json:"rollout_id,omitempty"`

	// PrevStep is the previous step context, if the caller has it.
	PrevStep *reward.StepContext `json:"prev_step_dict,omitempty"`

	// CurStep is the current step context.
	CurStep *reward.StepContext `json:"cur_step_dict,omitempty"`
}

// ScoreResponse is the reward breakdown for one step.
type ScoreResponse struct {
	RolloutID string `json:"rollout_id,omitempty"`
	Step      int    `json:"step"`

	reward.Result
}

// BatchScoreRequest scores a batch of independent steps.
type BatchScoreRequest struct {
	Items []ScoreRequest `json:"items" binding:"required,min=1,dive"`
}

// BatchScoreResponse returns results in request order.
type BatchScoreResponse struct {
	Results []ScoreResponse `json:"results"`
}

// StepContextResponse returns one recorded step context.
type StepContextResponse struct {
	RolloutID string             `json:"rollout_id"`
	Step      int                `json:"step"`
	Context   reward.StepContext `json:"context"`
}

// ConfigResponse echoes the effective reward configuration.
type ConfigResponse struct {
	Version string        `json:"version"`
	Config  reward.Config `json:"config"`
}

// ErrorResponse is the error envelope for 4xx/5xx responses.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
