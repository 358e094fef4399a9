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
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianRL/pkg/ux"
	"github.com/AleutianAI/AleutianRL/services/reward"
)

// runScoreCommand scores a single solution against its ground truth and
// prints the reward breakdown.
func runScoreCommand(cmd *cobra.Command, args []string) {
	if solutionPath == "" || groundTruthPath == "" {
		ux.Error("both --solution and --ground-truth are required")
		os.Exit(1)
	}

	solution, err := readInput(solutionPath)
	if err != nil {
		ux.Error(fmt.Sprintf("read solution: %v", err))
		os.Exit(1)
	}
	groundTruth, err := readInput(groundTruthPath)
	if err != nil {
		ux.Error(fmt.Sprintf("read ground truth: %v", err))
		os.Exit(1)
	}

	cfg, err := reward.LoadConfig(rewardConfigPath)
	if err != nil {
		ux.Error(fmt.Sprintf("reward config: %v", err))
		os.Exit(1)
	}
	scorer, err := reward.NewScorer(cfg)
	if err != nil {
		ux.Error(fmt.Sprintf("reward config: %v", err))
		os.Exit(1)
	}

	prev, err := parseStepContext(prevContextJSON)
	if err != nil {
		ux.Error(fmt.Sprintf("parse --prev: %v", err))
		os.Exit(1)
	}
	cur, err := parseStepContext(curContextJSON)
	if err != nil {
		ux.Error(fmt.Sprintf("parse --cur: %v", err))
		os.Exit(1)
	}

	result := scorer.Score(solution, groundTruth, scoreStep, prev, cur)

	if jsonOutput {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			ux.Error(fmt.Sprintf("encode result: %v", err))
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	ux.Title(fmt.Sprintf("Reward (%s)", cfg.Experiment))
	ux.Info(fmt.Sprintf("format:       %.4f", result.Format))
	ux.Info(fmt.Sprintf("correctness:  %.4f", result.Correctness))
	if cfg.WithLength {
		ux.Info(fmt.Sprintf("length:       %.4f", result.Length))
	}
	if cfg.Contribution {
		ux.Info(fmt.Sprintf("contribution: %.4f (beta %.4f)", result.Contribution, result.Beta))
	}
	ux.Success(fmt.Sprintf("total: %.4f", result.Total))
}

// readInput reads a file, or stdin when path is "-".
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// parseStepContext decodes an optional step-context JSON flag value.
func parseStepContext(raw string) (*reward.StepContext, error) {
	if raw == "" {
		return nil, nil
	}
	var sc reward.StepContext
	if err := json.Unmarshal([]byte(raw), &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
