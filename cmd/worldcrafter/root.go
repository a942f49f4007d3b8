// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the WorldCrafter CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worldcrafter",
		Short: "WorldCrafter - a worldbuilding backend for LLM clients",
		Long: `WorldCrafter manages fictional worlds, hierarchical locations,
and characters over PostgreSQL, exposed to LLM clients as MCP tools.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewStatusCmd())

	return cmd
}
