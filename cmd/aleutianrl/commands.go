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
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianRL/pkg/ux"
)

// --- Global Command Variables ---
var (
	rewardConfigPath string // score: reward config file (env vars used when empty)
	solutionPath     string
	groundTruthPath  string
	scoreStep        int
	prevContextJSON  string
	curContextJSON   string
	jsonOutput       bool
	datasetInput     string
	datasetOutDir    string
	datasetValFrac   float64
	datasetSeed      int64
	personalityLevel string // UX personality level (full/standard/minimal/machine)

	rootCmd = &cobra.Command{
		Use:   "aleutianrl",
		Short: "A cli to score rollouts, launch training jobs, and prepare datasets",
		Long: `AleutianRL is tooling for reward-shaped RL training of tool-use
				agents: score solutions against ground truth, launch trainer
				jobs from a spec file, and prepare SFT datasets.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize UX personality from flag or environment
			if personalityLevel != "" {
				ux.SetPersonalityLevel(ux.ParsePersonalityLevel(personalityLevel))
			} else {
				ux.InitPersonality()
			}
		},
	}

	// --- Scoring ---
	scoreCmd = &cobra.Command{
		Use:   "score",
		Short: "Score one solution against its ground truth",
		Run:   runScoreCommand, // Defined in cmd_score.go
	}

	// --- Job Launch ---
	launchCmd = &cobra.Command{
		Use:   "launch [spec.yaml]",
		Short: "Launch a training job from a launch spec file",
		Run:   runLaunchCommand, // Defined in cmd_launch.go
	}

	// --- Dataset ---
	datasetCmd = &cobra.Command{
		Use:   "dataset",
		Short: "Prepare training datasets",
	}
	datasetProcessCmd = &cobra.Command{
		Use:   "process",
		Short: "Convert raw instruction data into train/test JSONL splits",
		Run:   runDatasetProcess, // Defined in cmd_dataset.go
	}
)

func init() {
	// Global UX personality flag
	rootCmd.PersistentFlags().StringVar(&personalityLevel, "personality", "",
		"Output style: full (default), standard, minimal, or machine (scripting)")

	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().StringVar(&rewardConfigPath, "config", "",
		"Reward config file (YAML or JSON); CONTRIBUTION/BETA/... env vars used when empty")
	scoreCmd.Flags().StringVarP(&solutionPath, "solution", "s", "",
		"File with the solution text ('-' for stdin)")
	scoreCmd.Flags().StringVarP(&groundTruthPath, "ground-truth", "g", "",
		"File with the ground truth text")
	scoreCmd.Flags().IntVar(&scoreStep, "step", 0, "Training step for reward scheduling")
	scoreCmd.Flags().StringVar(&prevContextJSON, "prev", "",
		"Previous step context as JSON (for contribution scoring)")
	scoreCmd.Flags().StringVar(&curContextJSON, "cur", "",
		"Current step context as JSON (for contribution scoring)")
	scoreCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")

	rootCmd.AddCommand(launchCmd)

	rootCmd.AddCommand(datasetCmd)
	datasetCmd.AddCommand(datasetProcessCmd)
	datasetProcessCmd.Flags().StringVarP(&datasetInput, "input", "i", "",
		"Raw instruction JSON file")
	datasetProcessCmd.Flags().StringVarP(&datasetOutDir, "out", "o", "",
		"Output directory for train.jsonl, test.jsonl, and manifest.json")
	datasetProcessCmd.Flags().Float64Var(&datasetValFrac, "val-fraction", 0.1,
		"Fraction of samples held out for validation")
	datasetProcessCmd.Flags().Int64Var(&datasetSeed, "seed", 42, "Shuffle seed for the split")
}
