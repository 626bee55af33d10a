package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reelgrab/pkg/ui"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show and manage the download history",
	Long: `Show and manage the local download history.

The history keeps the most recent downloads, newest first, capped at the
configured maximum.`,
	Run: runHistoryList,
}

// historyRmCmd represents the history rm command
var historyRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove one entry from the history",
	Args:  cobra.ExactArgs(1),
	Run:   runHistoryRm,
}

// historyClearCmd represents the history clear command
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all history entries",
	Run:   runHistoryClear,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyRmCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) {
	a, err := buildApp()
	if err != nil {
		ui.PrintError("Failed to initialize", err.Error())
		os.Exit(1)
	}

	records := a.history.Records()
	if len(records) == 0 {
		ui.PrintWarning("No downloads yet")
		return
	}

	for _, r := range records {
		label := r.Title
		if label == "" {
			label = r.URL
		}
		fmt.Printf("%s  %s  %s\n",
			ui.Dim(r.ID),
			ui.Yellow(r.DownloadedAt.Format("2006-01-02 15:04")),
			ui.Cyan(label),
		)
	}
}

func runHistoryRm(cmd *cobra.Command, args []string) {
	a, err := buildApp()
	if err != nil {
		ui.PrintError("Failed to initialize", err.Error())
		os.Exit(1)
	}

	if err := a.history.Remove(args[0]); err != nil {
		ui.PrintError("Failed to remove entry", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess("Removed")
}

func runHistoryClear(cmd *cobra.Command, args []string) {
	a, err := buildApp()
	if err != nil {
		ui.PrintError("Failed to initialize", err.Error())
		os.Exit(1)
	}

	if err := a.history.Clear(); err != nil {
		ui.PrintError("Failed to clear history", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess("History cleared")
}
