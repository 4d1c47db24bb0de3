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

	"github.com/AleutianAI/AleutianPlan/services/plan/schedule"
	"github.com/AleutianAI/AleutianPlan/services/plan/storage"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the schedule from a CSV file",
	Long: "Deletes every task and link in the database and loads the tasks\n" +
		"from the given CSV file. Rows that cannot be parsed are skipped and\n" +
		"reported; the replacement itself commits as one transaction.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runImport(cmd.Context(), args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func runImport(ctx context.Context, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	store, err := storage.Open(storage.DefaultConfig(config.DataDir))
	if err != nil {
		return err
	}
	defer store.Close()

	codec := schedule.NewScheduleCodec(store, nil)
	report, err := codec.Import(ctx, f)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d tasks, skipped %d rows.\n", report.ImportedCount, report.SkippedCount)
	for _, msg := range report.Errors {
		fmt.Fprintf(os.Stderr, "  %s\n", msg)
	}
	return nil
}
