package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"reelgrab/internal/downloader"
	"reelgrab/pkg/api"
	"reelgrab/pkg/config"
	"reelgrab/pkg/gallery"
	"reelgrab/pkg/history"
	"reelgrab/pkg/logger"
	"reelgrab/pkg/orchestrator"
	"reelgrab/pkg/session"
	"reelgrab/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	backendURL string
	galleryDir string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reelgrab",
	Short: "Download Instagram Reels to your local gallery",
	Long: `ReelGrab downloads Instagram Reels through a companion backend service.

Features:
  - Reel metadata preview before downloading
  - Direct CDN download with automatic backend proxy fallback
  - Secure session storage using the system keychain
  - Local download history
  - Interactive terminal UI

The backend service must be running and reachable (default http://127.0.0.1:8000).`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// The TUI owns the whole screen; help and version stay plain.
		switch cmd.Name() {
		case "tui", "version", "help", "completion":
			return
		}
		ui.PrintLogo()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .reelgrab.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend-url", "", "backend base URL")
	rootCmd.PersistentFlags().StringVar(&galleryDir, "gallery", "", "gallery output directory")

	rootCmd.SetVersionTemplate(`ReelGrab {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// app bundles the wired components behind the commands.
type app struct {
	cfg      *config.Config
	log      logger.Logger
	client   *api.Client
	sessions *session.Store
	history  *history.Store
	gallery  *gallery.Manager
	orch     *orchestrator.Orchestrator
}

// buildApp loads configuration and wires every component. Stores are
// loaded once here and shared by whatever the command drives.
func buildApp() (*app, error) {
	flags := make(map[string]interface{})
	if backendURL != "" {
		flags["backend-url"] = backendURL
	}
	if galleryDir != "" {
		flags["gallery"] = galleryDir
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, err
	}
	log := logger.GetLogger()

	sessions, err := session.NewStore(log)
	if err != nil {
		return nil, err
	}
	sessions.Load()

	hist, err := history.NewStore(cfg.History.File, cfg.History.MaxEntries, log)
	if err != nil {
		return nil, err
	}
	hist.Load()

	gal := gallery.NewManager(cfg.Gallery.Directory, cfg.Gallery.TempDirectory, log)
	client := api.NewClient(&cfg.Backend, log)
	fetcher := downloader.New(client, gal, cfg.Backend.DownloadTimeout, log)
	orch := orchestrator.New(client, fetcher, gal, sessions, log)

	return &app{
		cfg:      cfg,
		log:      log,
		client:   client,
		sessions: sessions,
		history:  hist,
		gallery:  gal,
		orch:     orch,
	}, nil
}
