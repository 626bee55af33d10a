package main

import (
	"os"

	"github.com/spf13/cobra"

	"reelgrab/pkg/ui"
	"reelgrab/pkg/ui/tui"
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the interactive terminal UI",
	Long: `Run the interactive terminal UI.

Paste a reel URL, preview its metadata, and download it without leaving
the terminal. The download history is available on tab.`,
	Run: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) {
	a, err := buildApp()
	if err != nil {
		ui.PrintError("Failed to initialize", err.Error())
		os.Exit(1)
	}

	t := tui.NewTUI(a.orch, a.history)
	if err := t.Start(); err != nil {
		ui.PrintError("TUI failed", err.Error())
		os.Exit(1)
	}
}
