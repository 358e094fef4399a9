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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/AleutianAI/AleutianRL/services/reward"
)

// =============================================================================
// Prometheus Metrics for Reward Scoring
// =============================================================================

var (
	// scoreLatency measures end-to-end latency of a score request.
	// Labels: experiment, status (success, bad_request)
	scoreLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "aleutian_rl",
		Subsystem: "reward",
		Name:      "score_latency_seconds",
		Help:      "Reward scoring request latency in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
	}, []string{"experiment", "status"})

	// scoreTotals tracks the distribution of total rewards handed back
	// to the trainer.
	// Labels: experiment
	scoreTotals = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "aleutian_rl",
		Subsystem: "reward",
		Name:      "score_total",
		Help:      "Distribution of total reward values",
		Buckets:   []float64{-4, -3, -2, -1, -0.5, 0, 0.5, 1, 2, 3, 4, 5},
	}, []string{"experiment"})

	// scoreComponents tracks each reward component separately.
	// Labels: experiment, component (format, correctness, length, contribution)
	scoreComponents = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "aleutian_rl",
		Subsystem: "reward",
		Name:      "score_component",
		Help:      "Distribution of individual reward components",
		Buckets:   []float64{-3, -2, -1, -0.5, 0, 0.25, 0.5, 0.75, 1, 2, 3},
	}, []string{"experiment", "component"})

	// contributionActivations counts steps whose contribution signal
	// was nonzero.
	// Labels: experiment, type (C0, C1)
	contributionActivations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aleutian_rl",
		Subsystem: "reward",
		Name:      "contribution_activations_total",
		Help:      "Steps with a nonzero contribution signal",
	}, []string{"experiment", "type"})

	// batchSizes tracks how many items arrive per batch request.
	batchSizes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "aleutian_rl",
		Subsystem: "reward",
		Name:      "batch_size",
		Help:      "Items per batch scoring request",
		Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1024},
	})
)

// observeResult records the component metrics for one scored step.
//
// Inputs:
//
//	experiment - The experiment label from the active configuration.
//	cfg - The active reward configuration.
//	r - The scored result.
func observeResult(experiment string, cfg reward.Config, r reward.Result) {
	scoreTotals.WithLabelValues(experiment).Observe(r.Total)
	scoreComponents.WithLabelValues(experiment, "format").Observe(r.Format)
	scoreComponents.WithLabelValues(experiment, "correctness").Observe(r.Correctness)
	if cfg.WithLength {
		scoreComponents.WithLabelValues(experiment, "length").Observe(r.Length)
	}
	if cfg.Contribution {
		scoreComponents.WithLabelValues(experiment, "contribution").Observe(r.Contribution)
		if r.Contribution > 0 {
			contributionActivations.WithLabelValues(experiment, string(cfg.ContribType)).Inc()
		}
	}
}
