package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/feedrank/internal/output"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Manage feed subscriptions",
}

var feedAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Subscribe to a feed",
	Long: `Subscribe to an RSS or Atom feed and store its current items.

The alias defaults to the feed title and is used to refer to the feed
in other commands.

Examples:
  feedrank feed add https://go.dev/blog/feed.atom --alias golang
  feedrank feed add https://news.ycombinator.com/rss`,
	Args: cobra.ExactArgs(1),
	RunE: runFeedAdd,
}

var feedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subscribed feeds",
	RunE:  runFeedList,
}

var feedRemoveCmd = &cobra.Command{
	Use:   "remove <alias>",
	Short: "Unsubscribe from a feed and drop its items",
	Long: `Unsubscribe from a feed and drop its stored items.

Feedback already learned from the feed's items is kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runFeedRemove,
}

var feedAlias string

func init() {
	rootCmd.AddCommand(feedCmd)
	feedCmd.AddCommand(feedAddCmd)
	feedCmd.AddCommand(feedListCmd)
	feedCmd.AddCommand(feedRemoveCmd)

	feedAddCmd.Flags().StringVarP(&feedAlias, "alias", "a", "", "Short name for the feed (default: feed title)")
}

func runFeedAdd(cmd *cobra.Command, args []string) (err error) {
	r, _, err := openReader()
	if err != nil {
		return err
	}
	defer closeReader(r, &err)

	feed, added, err := r.AddFeed(cmd.Context(), args[0], feedAlias)
	if err != nil {
		return fmt.Errorf("failed to add feed: %w", err)
	}

	fmt.Printf("Added feed '%s' (%s) with %d items\n", feed.Alias, feed.Title, added)
	return nil
}

func runFeedList(cmd *cobra.Command, args []string) (err error) {
	r, _, err := openReader()
	if err != nil {
		return err
	}
	defer closeReader(r, &err)

	feeds, err := r.Feeds(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list feeds: %w", err)
	}

	return output.Output(outputFmt, feeds)
}

func runFeedRemove(cmd *cobra.Command, args []string) (err error) {
	r, _, err := openReader()
	if err != nil {
		return err
	}
	defer closeReader(r, &err)

	if err := r.RemoveFeed(cmd.Context(), args[0]); err != nil {
		return err
	}

	fmt.Printf("Removed feed '%s'\n", args[0])
	return nil
}
