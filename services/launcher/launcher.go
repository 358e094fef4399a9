// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/google/uuid"
)

// ErrPrecondition marks failures detected before the trainer starts.
var ErrPrecondition = errors.New("launch precondition failed")

// Launcher validates and executes training jobs.
type Launcher struct {
	logger *slog.Logger

	// Stdout and Stderr receive the trainer's output. Default: the
	// launcher process's own streams.
	Stdout io.Writer
	Stderr io.Writer
}

// New creates a Launcher.
func New(logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		logger: logger,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run executes the job described by spec and blocks until the trainer
// exits or ctx is cancelled.
//
// Description:
//
//	Preconditions are checked before anything starts: the spec must
//	validate, the trainer binary must resolve, and the checkpoint
//	directory must already exist. A failed precondition returns an
//	error wrapping ErrPrecondition and the trainer is never invoked;
//	this is the cheap early exit the shell scripts used to provide.
//
// Outputs:
//   - string: The run ID assigned to the job.
//   - error: Non-nil on precondition failure, start failure, or a
//     non-zero trainer exit.
func (l *Launcher) Run(ctx context.Context, spec LaunchSpec) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPrecondition, err)
	}
	if err := checkPreconditions(spec); err != nil {
		return "", err
	}

	runID := spec.Name + "-" + uuid.NewString()[:8]
	logger := l.logger.With("run_id", runID, "trainer", spec.Trainer)

	cmd := exec.CommandContext(ctx, spec.Trainer, spec.RenderArgs()...)
	cmd.Env = append(os.Environ(), spec.RenderEnv(runID)...)
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr

	logger.Info("launching trainer",
		"nodes", spec.Resources.Nodes,
		"gpus_per_node", spec.Resources.GPUsPerNode,
		"checkpoint_dir", spec.CheckpointDir,
		"experiment", runID)

	if err := cmd.Start(); err != nil {
		return runID, fmt.Errorf("launcher: start trainer: %w", err)
	}
	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			logger.Warn("trainer cancelled", "error", ctx.Err())
			return runID, ctx.Err()
		}
		logger.Error("trainer exited with failure", "error", err)
		return runID, fmt.Errorf("launcher: trainer failed: %w", err)
	}

	logger.Info("trainer finished")
	return runID, nil
}

// checkPreconditions verifies everything a run needs before spending
// cluster time.
func checkPreconditions(spec LaunchSpec) error {
	info, err := os.Stat(spec.CheckpointDir)
	if err != nil {
		return fmt.Errorf("%w: checkpoint dir %s: %v", ErrPrecondition, spec.CheckpointDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: checkpoint path %s is not a directory", ErrPrecondition, spec.CheckpointDir)
	}

	if spec.DataDir != "" {
		if _, err := os.Stat(spec.DataDir); err != nil {
			return fmt.Errorf("%w: data dir %s: %v", ErrPrecondition, spec.DataDir, err)
		}
	}

	if _, err := exec.LookPath(spec.Trainer); err != nil {
		return fmt.Errorf("%w: trainer %s: %v", ErrPrecondition, spec.Trainer, err)
	}
	return nil
}
