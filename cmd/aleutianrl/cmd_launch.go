// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianRL/pkg/ux"
	"github.com/AleutianAI/AleutianRL/services/launcher"
)

// runLaunchCommand loads a launch spec and runs the trainer, streaming
// its output until it exits or the user interrupts.
func runLaunchCommand(cmd *cobra.Command, args []string) {
	if len(args) != 1 {
		ux.Error("usage: aleutianrl launch [spec.yaml]")
		os.Exit(1)
	}

	spec, err := launcher.LoadSpec(args[0])
	if err != nil {
		ux.Error(fmt.Sprintf("load spec: %v", err))
		os.Exit(1)
	}

	ux.Title(fmt.Sprintf("Launching %s", spec.Name))
	ux.Info(fmt.Sprintf("trainer:    %s", spec.Trainer))
	ux.Info(fmt.Sprintf("resources:  %d node(s), %d GPU(s) each",
		spec.Resources.Nodes, spec.Resources.GPUsPerNode))
	ux.Info(fmt.Sprintf("experiment: %s", spec.Reward.Experiment))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runID, err := launcher.New(nil).Run(ctx, spec)
	if err != nil {
		if errors.Is(err, launcher.ErrPrecondition) {
			ux.Error(fmt.Sprintf("precondition failed: %v", err))
		} else {
			ux.Error(fmt.Sprintf("training run failed: %v", err))
		}
		os.Exit(1)
	}

	ux.Success(fmt.Sprintf("run %s finished", runID))
}
