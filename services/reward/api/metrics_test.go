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
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianRL/services/reward"
)

// TestObserveResult_ActivationCounted verifies a nonzero contribution
// increments the activation counter for the configured variant.
func TestObserveResult_ActivationCounted(t *testing.T) {
	cfg := reward.DefaultConfig()
	cfg.Contribution = true
	cfg.ContribType = reward.ContribC0

	counter := contributionActivations.WithLabelValues("metrics-exp-1", "C0")
	before := testutil.ToFloat64(counter)

	observeResult("metrics-exp-1", cfg, reward.Result{Total: 3, Contribution: 1})

	assert.Equal(t, before+1, testutil.ToFloat64(counter),
		"nonzero contribution should count as an activation")
}

// TestObserveResult_ZeroContributionNotCounted verifies an unchanged
// blackboard does not count as an activation.
func TestObserveResult_ZeroContributionNotCounted(t *testing.T) {
	cfg := reward.DefaultConfig()
	cfg.Contribution = true
	cfg.ContribType = reward.ContribC1

	counter := contributionActivations.WithLabelValues("metrics-exp-2", "C1")
	before := testutil.ToFloat64(counter)

	observeResult("metrics-exp-2", cfg, reward.Result{Total: 2, Contribution: 0})

	assert.Equal(t, before, testutil.ToFloat64(counter),
		"zero contribution should not count as an activation")
}

// TestObserveResult_DisabledVariantSkipsActivation verifies the counter
// stays untouched when the contribution variant is off, regardless of
// the result value.
func TestObserveResult_DisabledVariantSkipsActivation(t *testing.T) {
	cfg := reward.DefaultConfig()
	require.False(t, cfg.Contribution, "default config should not enable contribution")

	counter := contributionActivations.WithLabelValues("metrics-exp-3", "C0")
	before := testutil.ToFloat64(counter)

	observeResult("metrics-exp-3", cfg, reward.Result{Total: 3, Contribution: 1})

	assert.Equal(t, before, testutil.ToFloat64(counter))
}
