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
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianRL/pkg/ux"
	"github.com/AleutianAI/AleutianRL/services/dataset"
)

// runDatasetProcess converts a raw instruction JSON file into shuffled
// train/test JSONL splits plus a manifest.
func runDatasetProcess(cmd *cobra.Command, args []string) {
	if datasetInput == "" || datasetOutDir == "" {
		ux.Error("both --input and --out are required")
		os.Exit(1)
	}

	var manifest dataset.Manifest
	err := ux.WithSpinner(fmt.Sprintf("Processing %s", datasetInput), func() error {
		var err error
		manifest, err = dataset.Process(dataset.Options{
			InputPath:   datasetInput,
			OutputDir:   datasetOutDir,
			ValFraction: datasetValFrac,
			Seed:        datasetSeed,
		})
		return err
	})
	if err != nil {
		os.Exit(1)
	}

	ux.FileStatus(filepath.Join(datasetOutDir, "train.jsonl"), ux.IconSuccess,
		fmt.Sprintf("%d samples", manifest.TrainSize))
	ux.FileStatus(filepath.Join(datasetOutDir, "test.jsonl"), ux.IconSuccess,
		fmt.Sprintf("%d samples", manifest.ValSize))
	ux.FileStatus(filepath.Join(datasetOutDir, "manifest.json"), ux.IconSuccess, "")
	ux.Summary(manifest.TrainSize, manifest.ValSize, manifest.Total)
}
