package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"reelgrab/pkg/errors"
	"reelgrab/pkg/ui"
)

var fromClipboard bool

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get [url]",
	Short: "Download a reel to the gallery",
	Long: `Download an Instagram Reel.

The reel metadata is fetched first and shown as a preview, then the video
is downloaded, preferring the CDN directly and falling back to the backend
proxy, and saved into the gallery directory.`,
	Example: `  # Download by URL
  reelgrab get https://www.instagram.com/reel/ABC123

  # Download the URL currently on the clipboard
  reelgrab get --from-clipboard`,
	Args: cobra.MaximumNArgs(1),
	Run:  runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().BoolVar(&fromClipboard, "from-clipboard", false, "read the reel URL from the clipboard")
}

func runGet(cmd *cobra.Command, args []string) {
	a, err := buildApp()
	if err != nil {
		ui.PrintError("Failed to initialize", err.Error())
		os.Exit(1)
	}

	url, err := resolveURL(args)
	if err != nil {
		ui.PrintError("No URL", err.Error())
		os.Exit(1)
	}

	ctx := context.Background()

	// Connectivity is display-only; the fetch decides for itself.
	go a.orch.CheckServer(ctx)

	a.orch.SetInput(url)
	if err := a.orch.FetchInfo(ctx); err != nil {
		reportFlowError(a, err)
		os.Exit(1)
	}

	info := a.orch.Info()
	ui.PrintInfo("Title", info.Title)
	if info.Uploader != "" {
		ui.PrintInfo("Uploader", info.Uploader)
	}
	if info.Duration > 0 {
		ui.PrintInfo("Duration", fmt.Sprintf("%.0fs", info.Duration))
	}

	ui.PrintHighlight("Downloading...")
	if err := a.orch.Download(ctx); err != nil {
		reportFlowError(a, err)
		os.Exit(1)
	}

	if rec, ok := a.orch.Record(); ok {
		if _, err := a.history.Add(rec); err != nil {
			ui.PrintWarning("Saved, but updating history failed", err.Error())
		}
	}

	ui.PrintSuccess("Saved to " + a.orch.SavedPath())
}

func resolveURL(args []string) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(args[0]), nil
	}
	if fromClipboard {
		text, err := clipboard.ReadAll()
		if err != nil {
			return "", fmt.Errorf("failed to read clipboard: %w", err)
		}
		return strings.TrimSpace(text), nil
	}
	return "", fmt.Errorf("provide a reel URL or pass --from-clipboard")
}

func reportFlowError(a *app, err error) {
	ui.PrintError("Download failed", errors.UserMessage(err))
	if errors.IsAuthError(err) && !a.sessions.IsLoggedIn() {
		ui.PrintWarning("This reel needs a logged-in session. Import cookies with `reelgrab session login`.")
	}
}
