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

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the task set as CSV",
	Long: "Writes the full task set as CSV to the given file, or to stdout\n" +
		"when no file is given. The output starts with a UTF-8 byte-order\n" +
		"mark for spreadsheet compatibility.",
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runExport(cmd.Context(), args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func runExport(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := storage.Open(storage.DefaultConfig(config.DataDir))
	if err != nil {
		return err
	}
	defer store.Close()

	out := os.Stdout
	if len(args) == 1 {
		f, ferr := os.Create(args[0])
		if ferr != nil {
			return fmt.Errorf("create %s: %w", args[0], ferr)
		}
		defer f.Close()
		out = f
	}

	codec := schedule.NewScheduleCodec(store, nil)
	if err := codec.Export(ctx, out); err != nil {
		return err
	}
	if len(args) == 1 {
		fmt.Fprintf(os.Stderr, "Exported to %s\n", args[0])
	}
	return nil
}
