// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package api exposes the reward scorer to the external Reward Manager
// over HTTP.
//
// The scorer itself is a pure in-process function; this package is the
// serving shell around it: request binding, optional previous-context
// resolution through the history store, Prometheus metrics, websocket
// score events, and hot reload of the reward configuration file.
package api

import (
	"log/slog"
	"sync/atomic"

	"github.com/AleutianAI/AleutianRL/services/reward"
	"github.com/AleutianAI/AleutianRL/services/reward/history"
)

// ServiceVersion is the reward service version.
const ServiceVersion = "0.1.0"

// ServiceConfig configures the reward service.
type ServiceConfig struct {
	// Reward is the initial reward variant configuration.
	Reward reward.Config

	// History is the optional step-context store. When nil, callers
	// must forward previous contexts themselves.
	History *history.Store

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Service holds the swappable scorer and its collaborators.
//
// Description:
//
//	The scorer pointer is swapped atomically on hot reload so in-flight
//	requests keep the configuration they started with. Everything else
//	is immutable after construction.
type Service struct {
	scorer  atomic.Pointer[reward.Scorer]
	history *history.Store
	hub     *EventHub
	logger  *slog.Logger
}

// NewService builds the service from a validated configuration.
func NewService(cfg ServiceConfig) (*Service, error) {
	scorer, err := reward.NewScorer(cfg.Reward)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	svc := &Service{
		history: cfg.History,
		hub:     NewEventHub(logger),
		logger:  logger,
	}
	svc.scorer.Store(scorer)
	return svc, nil
}

// Scorer returns the current scorer.
func (s *Service) Scorer() *reward.Scorer {
	return s.scorer.Load()
}

// SwapConfig atomically replaces the scorer with one built from cfg.
func (s *Service) SwapConfig(cfg reward.Config) error {
	scorer, err := reward.NewScorer(cfg)
	if err != nil {
		return err
	}
	old := s.scorer.Swap(scorer)
	s.logger.Info("reward config swapped",
		"old_experiment", old.Config().Experiment,
		"new_experiment", cfg.Experiment)
	return nil
}

// Close shuts down the event hub. The history store is owned by the
// caller and closed separately.
func (s *Service) Close() {
	s.hub.Close()
}
