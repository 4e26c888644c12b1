package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/feedrank/internal/output"
	"github.com/vijay-prabhu/feedrank/internal/reader"
)

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "List feed items",
	Long: `List feed items, newest first, or ranked by predicted interest.

Feeds are updated before listing unless --no-update is given. Ranking
needs at least one read or removed item to learn from.

Examples:
  feedrank items                        # All items, newest first
  feedrank items --feed golang          # Items from one feed
  feedrank items --best 10              # The 10 items you are most likely to read
  feedrank items --best -1 --since 7d   # Rank everything from the last week
  feedrank items --all -o json          # Include removed items, as JSON`,
	RunE: runItems,
}

var (
	itemsFeeds    []string
	itemsBest     int
	itemsSince    string
	itemsAll      bool
	itemsNoUpdate bool
	itemsLimit    int
)

func init() {
	rootCmd.AddCommand(itemsCmd)

	itemsCmd.Flags().StringSliceVarP(&itemsFeeds, "feed", "f", nil, "Restrict to feed alias (repeatable)")
	itemsCmd.Flags().IntVarP(&itemsBest, "best", "b", 0, "Rank items and show the top N (0 uses the configured default, -1 shows all)")
	itemsCmd.Flags().StringVar(&itemsSince, "since", "", "Only items published within (e.g., 7d, 2w, 1m)")
	itemsCmd.Flags().BoolVar(&itemsAll, "all", false, "Include removed items")
	itemsCmd.Flags().BoolVar(&itemsNoUpdate, "no-update", false, "Do not fetch feeds before listing")
	itemsCmd.Flags().IntVar(&itemsLimit, "limit", 0, "Maximum number of items when not ranking")
}

func runItems(cmd *cobra.Command, args []string) (err error) {
	r, cfg, err := openReader()
	if err != nil {
		return err
	}
	defer closeReader(r, &err)

	opts := reader.ItemsOptions{
		Aliases:        itemsFeeds,
		Update:         !itemsNoUpdate,
		IncludeDeleted: itemsAll,
	}

	if itemsSince != "" {
		since, err := parseDuration(itemsSince)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		sinceTime := time.Now().Add(-since)
		opts.Since = &sinceTime
	}

	ranking := cmd.Flags().Changed("best")
	if !ranking {
		opts.Limit = itemsLimit
	}

	items, err := r.Items(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if !ranking {
		return output.Output(outputFmt, items)
	}

	n := itemsBest
	if n == 0 {
		n = cfg.Ranking.DefaultLimit
	}

	ranked, err := r.BestN(items, n)
	if err != nil {
		return err
	}

	return output.Output(outputFmt, ranked)
}

// parseDuration parses a human-readable duration like "7d", "2w", "1m"
func parseDuration(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration format")
	}

	unit := s[len(s)-1]
	valueStr := s[:len(s)-1]

	var value int
	if _, err := fmt.Sscanf(valueStr, "%d", &value); err != nil {
		return 0, fmt.Errorf("invalid duration value")
	}
	if value < 0 {
		return 0, fmt.Errorf("duration must not be negative")
	}

	switch unit {
	case 'h':
		return time.Duration(value) * time.Hour, nil
	case 'd':
		return time.Duration(value) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(value) * 7 * 24 * time.Hour, nil
	case 'm':
		return time.Duration(value) * 30 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown duration unit: %c (use h, d, w, or m)", unit)
	}
}
