package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"reelgrab/pkg/ui"
)

// healthCmd represents the health command
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether the backend is reachable",
	Run:   runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) {
	a, err := buildApp()
	if err != nil {
		ui.PrintError("Failed to initialize", err.Error())
		os.Exit(1)
	}

	if a.client.CheckHealth(context.Background()) {
		ui.PrintSuccess("Backend is reachable at " + a.cfg.Backend.BaseURL)
		return
	}
	ui.PrintError("Backend is not reachable at " + a.cfg.Backend.BaseURL)
	os.Exit(1)
}
