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
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianPlan/services/plan"
	"github.com/AleutianAI/AleutianPlan/services/plan/storage"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace the schedule with sample data",
	Long: "Deletes every task and link in the database and loads the sample\n" +
		"schedule. Intended for demos and local development.",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSeed(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func runSeed(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := storage.Open(storage.DefaultConfig(config.DataDir))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := plan.SeedSample(ctx, store, nil); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	fmt.Println("Sample schedule loaded.")
	return nil
}
