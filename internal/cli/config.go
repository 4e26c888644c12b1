package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/feedrank/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config file already exists at %s\n", configPath)
		fmt.Println("Use 'feedrank config show' to view current configuration")
		return nil
	}

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	fmt.Printf("Created config file at %s\n", configPath)
	fmt.Printf("Data directory: %s\n", cfg.Storage.Dir)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Subscribe to a feed: feedrank feed add https://go.dev/blog/feed.atom --alias golang")
	fmt.Println("  2. Read or remove a few items: feedrank read <guid> / feedrank remove <guid>")
	fmt.Println("  3. See what it thinks you will like: feedrank items --best 10")

	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No config file found, using defaults. Run 'feedrank config init' to create one.")
			fmt.Println()
			fmt.Print(defaultConfig)
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	fmt.Printf("# Config file: %s\n\n", configPath)
	fmt.Println(string(data))
	return nil
}

const defaultConfig = `# feedrank configuration

[storage]
dir = "~/.rssreader"
database = "main.db"        # relative to dir unless absolute
corpus = "training.data"    # read/removed feedback used for ranking

[fetch]
timeout_seconds = 30
user_agent = "feedrank/0.1 (+https://github.com/vijay-prabhu/feedrank)"

[ranking]
cost = 1.0                  # SVM regularization, higher fits feedback more tightly
epsilon = 0.1               # solver stopping tolerance
max_iterations = 1000
seed = 1                    # fixed so rankings are reproducible
default_limit = 10          # items shown by 'items --best' without a value

[log]
level = "warn"              # debug, info, warn, error
format = "console"          # console or json
`
