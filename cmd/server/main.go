package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"techfest/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

func main() {
	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "TechFest 2025 event registration",
	Long: `server runs the TechFest 2025 registration backends.

The hosted API (serve) keeps accounts, registrations and event details in
SQLite or Firestore and can also take registrations over Telegram. The
file-backed API (fallback) serves a single JSON document for local
development, and register walks the wizard in the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		setupLogging(cfg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fallbackCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(configCmd)
}

// setupLogging installs the default slog handler: text in development,
// JSON in production.
func setupLogging(c *config.Config) {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if c.IsProduction() {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
