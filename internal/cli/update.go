package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetch new items from all feeds",
	Long: `Update fetches every subscribed feed and stores items that are not
known yet. A feed that fails to download is reported and skipped.

Examples:
  feedrank update
  feedrank update -v     # log each feed`,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) (err error) {
	r, _, err := openReader()
	if err != nil {
		return err
	}
	defer closeReader(r, &err)

	progress := newUpdateProgress()
	fmt.Println("Updating feeds...")

	result, err := r.UpdateAll(cmd.Context(), progress.Report)
	progress.Done()

	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	fmt.Println()
	fmt.Println("Update complete:")
	fmt.Printf("  Feeds:      %d\n", result.Feeds)
	fmt.Printf("  New items:  %d\n", result.NewItems)

	if len(result.Errors) > 0 {
		fmt.Println()
		fmt.Println(progress.Warn(fmt.Sprintf("Warnings: %d", len(result.Errors))))
		for _, e := range result.Errors {
			fmt.Printf("  - %v\n", e)
		}
	}

	return nil
}
