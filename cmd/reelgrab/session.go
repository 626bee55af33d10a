package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"reelgrab/pkg/session"
	"reelgrab/pkg/ui"
)

// sessionCmd represents the session command
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the Instagram session cookies",
	Long: `Manage the stored Instagram session.

Cookies are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation

A session is required for private or rate-limited reels. Public reels
download without one.

Never share your cookies or config files!`,
}

// sessionLoginCmd represents the session login command
var sessionLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store session cookies securely",
	Long: `Store Instagram session cookies in the system keychain or an encrypted file.

To get your cookies:
1. Log into Instagram in your browser
2. Open Developer Tools (F12)
3. Go to Application/Storage > Cookies > https://www.instagram.com
4. Copy at least the sessionid value

Input is accepted as semicolon-separated pairs, for example:
  sessionid=ABC123; ds_user_id=42; csrftoken=XYZ`,
	Example: `  # Interactive login (input is hidden)
  reelgrab session login`,
	Run: runSessionLogin,
}

// sessionImportCmd represents the session import command
var sessionImportCmd = &cobra.Command{
	Use:   "import <cookie-file>",
	Short: "Import cookies from a Netscape cookie file",
	Long: `Import session cookies from a Netscape-format cookie file, as exported
by browser extensions like "Get cookies.txt". The file must contain a
sessionid cookie with a non-empty value.`,
	Example: `  reelgrab session import cookies.txt`,
	Args:    cobra.ExactArgs(1),
	Run:     runSessionImport,
}

// sessionLogoutCmd represents the session logout command
var sessionLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session",
	Run:   runSessionLogout,
}

// sessionStatusCmd represents the session status command
var sessionStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored session with masked cookie values",
	Run:   runSessionStatus,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLoginCmd)
	sessionCmd.AddCommand(sessionImportCmd)
	sessionCmd.AddCommand(sessionLogoutCmd)
	sessionCmd.AddCommand(sessionStatusCmd)
}

func runSessionLogin(cmd *cobra.Command, args []string) {
	a, err := buildApp()
	if err != nil {
		ui.PrintError("Failed to initialize", err.Error())
		os.Exit(1)
	}

	fmt.Print("Cookie pairs (hidden as you type): ")
	raw, err := readSecret()
	if err != nil {
		ui.PrintError("Failed to read cookies", err.Error())
		os.Exit(1)
	}

	saveCookies(a, raw)
}

func runSessionImport(cmd *cobra.Command, args []string) {
	a, err := buildApp()
	if err != nil {
		ui.PrintError("Failed to initialize", err.Error())
		os.Exit(1)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		ui.PrintError("Failed to read cookie file", err.Error())
		os.Exit(1)
	}

	saveCookies(a, string(data))
}

func saveCookies(a *app, raw string) {
	cookies, err := session.ParseCookies(raw)
	if err != nil {
		ui.PrintError("Invalid cookie input", err.Error())
		os.Exit(1)
	}

	if err := a.sessions.Save(cookies, ""); err != nil {
		ui.PrintError("Failed to store session", err.Error())
		os.Exit(1)
	}

	if username := a.sessions.Username(); username != "" {
		ui.PrintSuccess("Logged in as user " + username)
	} else {
		ui.PrintSuccess("Session stored")
	}
}

func runSessionLogout(cmd *cobra.Command, args []string) {
	a, err := buildApp()
	if err != nil {
		ui.PrintError("Failed to initialize", err.Error())
		os.Exit(1)
	}

	if !a.sessions.IsLoggedIn() {
		ui.PrintWarning("No session stored")
		return
	}

	if err := a.sessions.Clear(); err != nil {
		ui.PrintError("Failed to remove session", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess("Session removed")
}

func runSessionStatus(cmd *cobra.Command, args []string) {
	a, err := buildApp()
	if err != nil {
		ui.PrintError("Failed to initialize", err.Error())
		os.Exit(1)
	}

	if !a.sessions.IsLoggedIn() {
		ui.PrintWarning("Not logged in")
		return
	}

	current := a.sessions.Current()
	sanitized := current.Sanitize()
	if sanitized.Username != "" {
		ui.PrintInfo("User", sanitized.Username)
	}
	for _, c := range sanitized.Cookies {
		ui.PrintInfo(c.Name, c.Value)
	}
}

// readSecret reads a line without echoing it.
func readSecret() (string, error) {
	value, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(value)), nil
}
