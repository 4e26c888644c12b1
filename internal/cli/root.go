package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/feedrank/internal/config"
	"github.com/vijay-prabhu/feedrank/internal/logging"
	"github.com/vijay-prabhu/feedrank/internal/reader"
)

var (
	// Version info set from main
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"

	// Global flags
	configPath string
	outputFmt  string
	verbose    bool
)

// SetVersionInfo sets version information from build flags
func SetVersionInfo(v, c, b string) {
	version = v
	commit = c
	buildTime = b
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "feedrank",
	Short: "A feed reader that learns what you like to read",
	Long: `feedrank fetches RSS and Atom feeds and ranks their items by how
likely you are to read them.

Every item you read teaches it what you find interesting, every item
you remove teaches it what you do not. Rankings are computed locally
from item titles; nothing leaves your machine.

It provides:
  - Feed subscriptions with short aliases
  - Ranked item listings (items --best)
  - MCP server for AI assistant integration`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default: ~/.config/feedrank/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table",
		"output format (table, json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}
		configPath = filepath.Join(home, ".config", "feedrank", "config.toml")
	}
}

// newLogger builds the process logger from config and the --verbose flag
func newLogger(cfg *config.Config) zerolog.Logger {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	return logging.New(logging.Config{Level: level, Format: cfg.Log.Format})
}

// openReader loads the configuration and opens a reader session.
// Callers must defer closeReader on the returned reader.
func openReader() (*reader.Reader, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	r, err := reader.Open(cfg, newLogger(cfg))
	if err != nil {
		return nil, nil, err
	}

	return r, cfg, nil
}

// closeReader ends the session, joining a failed corpus persist into *err
func closeReader(r *reader.Reader, err *error) {
	*err = errors.Join(*err, r.Close())
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("feedrank %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", buildTime)
	},
}
