// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command plan runs the schedule service and its maintenance commands.
//
// Usage:
//
//	plan serve                 # start the HTTP API
//	plan seed                  # load the sample schedule (destructive)
//	plan export tasks.csv      # export the task set as CSV
//	plan import tasks.csv      # destructive import-replace from CSV
//
// Configuration is read from config.yaml in the working directory when
// present (see --config); flags override file values.
package main

import (
	"log"

	"github.com/spf13/cobra"
)

var config Config

var configPath string

var rootCmd = &cobra.Command{
	Use:   "plan",
	Short: "Hierarchical project schedule service",
	Long: "plan manages a hierarchical project schedule: a tree of tasks with\n" +
		"temporal extents, sibling ordering, and typed precedence links,\n" +
		"persisted in an embedded BadgerDB store.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to config file")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cfg, err := LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Error loading %s: %v", configPath, err)
		}
		config = cfg
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
