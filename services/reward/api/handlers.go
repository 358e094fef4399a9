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

import (
	"net/http"
	"runtime"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianRL/pkg/validation"
)

// maxBatchItems bounds a single batch request.
const maxBatchItems = 1024

// Handlers contains the HTTP handlers for the reward service.
type Handlers struct {
	svc *Service
}

// NewHandlers creates handlers for the given service.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// HandleScore handles POST /v1/reward/score.
//
// Description:
//
//	Scores one trajectory step. Missing step contexts degrade the
//	contribution component to 0; they never fail the request.
//
// Response:
//
//	200 OK: ScoreResponse
//	400 Bad Request: Validation error
func (h *Handlers) HandleScore(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := h.svc.logger.With("request_id", requestID, "handler", "HandleScore")
	start := time.Now()

	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid score request", "error", err)
		scoreLatency.WithLabelValues(h.svc.Scorer().Config().Experiment, "bad_request").
			Observe(time.Since(start).Seconds())
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), RequestID: requestID})
		return
	}

	resp := h.scoreOne(req)

	cfg := h.svc.Scorer().Config()
	scoreLatency.WithLabelValues(cfg.Experiment, "success").Observe(time.Since(start).Seconds())
	observeResult(cfg.Experiment, cfg, resp.Result)
	logger.Info("step scored",
		"rollout_id", resp.RolloutID, "step", resp.Step, "total", resp.Total)
	h.svc.hub.Publish(ScoreEvent{
		RolloutID: resp.RolloutID,
		Step:      resp.Step,
		Result:    resp.Result,
		Time:      time.Now().UTC(),
	})

	c.JSON(http.StatusOK, resp)
}

// HandleScoreBatch handles POST /v1/reward/score/batch.
//
// Description:
//
//	Scores a batch of steps. Each item is scored exactly as HandleScore
//	would; results come back in request order. Distinct rollouts are
//	scored concurrently, bounded by the CPU count, but all items of one
//	rollout run sequentially in ascending step order so each step sees
//	its predecessor's recorded context.
func (h *Handlers) HandleScoreBatch(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := h.svc.logger.With("request_id", requestID, "handler", "HandleScoreBatch")

	var req BatchScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid batch request", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), RequestID: requestID})
		return
	}
	if len(req.Items) > maxBatchItems {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     "batch too large",
			RequestID: requestID,
		})
		return
	}

	batchSizes.Observe(float64(len(req.Items)))

	results := make([]ScoreResponse, len(req.Items))
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, idxs := range groupByRollout(req.Items) {
		idxs := idxs
		g.Go(func() error {
			for _, i := range idxs {
				results[i] = h.scoreOne(req.Items[i])
			}
			return nil
		})
	}
	_ = g.Wait() // scoreOne has no failure path

	cfg := h.svc.Scorer().Config()
	for _, r := range results {
		observeResult(cfg.Experiment, cfg, r.Result)
		logger.Info("step scored",
			"rollout_id", r.RolloutID, "step", r.Step, "total", r.Total)
	}

	c.JSON(http.StatusOK, BatchScoreResponse{Results: results})
}

// groupByRollout partitions batch indices so every item of one rollout
// lands in a single group, ordered by ascending step. History reads and
// writes for a rollout then happen in step order. Items without a
// rollout ID never touch history; each gets its own group so they still
// fan out fully.
func groupByRollout(items []ScoreRequest) [][]int {
	var groups [][]int
	byRollout := make(map[string]int)
	for i, item := range items {
		if item.RolloutID == "" {
			groups = append(groups, []int{i})
			continue
		}
		gi, ok := byRollout[item.RolloutID]
		if !ok {
			gi = len(groups)
			byRollout[item.RolloutID] = gi
			groups = append(groups, nil)
		}
		groups[gi] = append(groups[gi], i)
	}
	for _, idxs := range groups {
		if len(idxs) > 1 {
			sort.SliceStable(idxs, func(a, b int) bool {
				return items[idxs[a]].Step < items[idxs[b]].Step
			})
		}
	}
	return groups
}

// scoreOne resolves step contexts and invokes the scorer.
func (h *Handlers) scoreOne(req ScoreRequest) ScoreResponse {
	prev := req.PrevStep
	cur := req.CurStep

	scorer := h.svc.Scorer()
	if scorer.Config().Contribution && h.svc.history != nil && req.RolloutID != "" {
		if err := validation.ValidateRolloutID(req.RolloutID); err != nil {
			h.svc.logger.Warn("rollout id rejected, skipping history",
				"rollout_id", req.RolloutID, "error", err)
		} else {
			if prev == nil {
				if sc, found, err := h.svc.history.Previous(req.RolloutID, req.Step); err != nil {
					h.svc.logger.Warn("history lookup failed, contribution degrades to 0",
						"rollout_id", req.RolloutID, "step", req.Step, "error", err)
				} else if found {
					prev = &sc
				}
			}
			if cur != nil {
				if err := h.svc.history.Record(req.RolloutID, req.Step, *cur); err != nil {
					h.svc.logger.Warn("history record failed",
						"rollout_id", req.RolloutID, "step", req.Step, "error", err)
				}
			}
		}
	}

	return ScoreResponse{
		RolloutID: req.RolloutID,
		Step:      req.Step,
		Result:    scorer.Score(req.Solution, req.GroundTruth, req.Step, prev, cur),
	}
}

// HandleDropRollout handles DELETE /v1/reward/rollouts/:id.
//
// Description:
//
//	Removes the history records of a finished trajectory. A no-op when
//	no history store is configured.
func (h *Handlers) HandleDropRollout(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	rolloutID := c.Param("id")

	if err := validation.ValidateRolloutID(rolloutID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), RequestID: requestID})
		return
	}
	if h.svc.history == nil {
		c.Status(http.StatusNoContent)
		return
	}
	if err := h.svc.history.DropRollout(rolloutID); err != nil {
		h.svc.logger.Error("drop rollout failed",
			"request_id", requestID, "rollout_id", rolloutID, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "drop failed", RequestID: requestID})
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleRolloutStep handles GET /v1/reward/rollouts/:id/steps/:step.
//
// Description:
//
//	Returns the recorded context for one (rollout, step) pair. Useful
//	for inspecting contribution bookkeeping while a rollout is in
//	flight.
func (h *Handlers) HandleRolloutStep(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	rolloutID := c.Param("id")

	if err := validation.ValidateRolloutID(rolloutID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), RequestID: requestID})
		return
	}
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil || step < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid step", RequestID: requestID})
		return
	}
	if h.svc.history == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "history disabled", RequestID: requestID})
		return
	}

	sc, found, err := h.svc.history.Step(rolloutID, step)
	if err != nil {
		h.svc.logger.Error("step lookup failed",
			"request_id", requestID, "rollout_id", rolloutID, "step", step, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "lookup failed", RequestID: requestID})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "step not recorded", RequestID: requestID})
		return
	}
	c.JSON(http.StatusOK, StepContextResponse{RolloutID: rolloutID, Step: step, Context: sc})
}

// HandleConfig handles GET /v1/reward/config.
func (h *Handlers) HandleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, ConfigResponse{
		Version: ServiceVersion,
		Config:  h.svc.Scorer().Config(),
	})
}

// HandleHealth handles GET /v1/reward/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": ServiceVersion,
	})
}

// HandleReady handles GET /v1/reward/ready.
func (h *Handlers) HandleReady(c *gin.Context) {
	// The scorer is pure; readiness only depends on construction
	// having succeeded, which NewService guarantees.
	c.JSON(http.StatusOK, gin.H{"ready": true})
}

func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
