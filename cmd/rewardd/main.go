// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command rewardd starts the AleutianRL reward scoring server.
//
// The server scores rollout solutions against ground truth during RL
// training: format gate, correctness match, optional length shaping,
// and optional blackboard contribution signals.
//
// Usage:
//
//	go run ./cmd/rewardd
//	go run ./cmd/rewardd -port 9090 -history-dir /var/lib/aleutianrl/history
//	go run ./cmd/rewardd -config reward.yaml -watch
//	go run ./cmd/rewardd -audit-log /var/log/aleutianrl/scores.jsonl
//
// Without -config the reward variant is read from the CONTRIBUTION,
// CONTRIB_TYPE, BETA, WITHLENGTH and related environment variables,
// which keeps parity with trainer-launched runs.
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8080/v1/reward/health
//
//	# Score one step
//	curl -X POST http://localhost:8080/v1/reward/score \
//	  -H "Content-Type: application/json" \
//	  -d '{"solution": "<think>plan</think><tool_call>{\"name\": \"search\"}</tool_call>", "ground_truth": "<tool_call>{\"name\": \"search\"}</tool_call>"}'
//
//	# Running configuration
//	curl http://localhost:8080/v1/reward/config | jq
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianRL/pkg/logging"
	"github.com/AleutianAI/AleutianRL/services/reward"
	"github.com/AleutianAI/AleutianRL/services/reward/api"
	"github.com/AleutianAI/AleutianRL/services/reward/history"
)

const shutdownTimeout = 10 * time.Second

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	debug := flag.Bool("debug", false, "Enable debug mode")
	configPath := flag.String("config", "", "Reward config file (YAML or JSON); env vars still override")
	watch := flag.Bool("watch", false, "Hot-reload the config file on change (requires -config)")
	historyDir := flag.String("history-dir", "", "Directory for the persistent step-context store")
	inMemory := flag.Bool("in-memory", false, "Keep step contexts in memory only")
	logDir := flag.String("log-dir", "", "Directory for file logs (stderr only when empty)")
	auditLog := flag.String("audit-log", "", "File receiving a JSON line per scored step")
	flag.Parse()

	level := logging.LevelInfo
	if *debug {
		level = logging.LevelDebug
	}

	var exporter logging.LogExporter
	if *auditLog != "" {
		f, err := os.OpenFile(*auditLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open audit log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		exporter = logging.NewWriterExporter(f)
	}

	logger := logging.New(logging.Config{
		Level:    level,
		LogDir:   *logDir,
		Service:  "rewardd",
		JSON:     true,
		Exporter: exporter,
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	if *debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg, err := reward.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Invalid reward configuration", "error", err)
		os.Exit(1)
	}
	slog.Info("Reward configuration loaded",
		"experiment", cfg.Experiment,
		"contribution", cfg.Contribution,
		"contrib_type", cfg.ContribType,
		"beta", cfg.Beta,
		"with_length", cfg.WithLength,
		"scale_mode", cfg.ScaleMode,
		"granularity", cfg.Granularity,
	)

	store, err := openHistory(*historyDir, *inMemory)
	if err != nil {
		slog.Error("Failed to open history store", "error", err)
		os.Exit(1)
	}
	if store != nil {
		defer store.Close()
	}

	svc, err := api.NewService(api.ServiceConfig{
		Reward:  cfg,
		History: store,
		Logger:  logger.Slog(),
	})
	if err != nil {
		slog.Error("Failed to create reward service", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *watch {
		if *configPath == "" {
			slog.Error("-watch requires -config")
			os.Exit(1)
		}
		watcher, err := api.NewConfigWatcher(*configPath, svc)
		if err != nil {
			slog.Error("Failed to watch config file", "error", err)
			os.Exit(1)
		}
		watcher.Start(ctx)
		slog.Info("Config hot reload enabled", "path", *configPath)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if *debug {
		router.Use(gin.Logger())
	}
	api.SetupRoutes(router, svc)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: router,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		slog.Info("Shutting down reward server")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting reward server", "address", srv.Addr, "version", api.ServiceVersion)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}

// openHistory opens the step-context store, or returns nil when no
// persistence was requested. Without a store, contribution scoring
// relies on the trainer forwarding prev_step explicitly.
func openHistory(dir string, inMemory bool) (*history.Store, error) {
	switch {
	case inMemory:
		return history.Open(history.InMemoryConfig())
	case dir != "":
		return history.Open(history.DefaultConfig(dir))
	default:
		return nil, nil
	}
}
