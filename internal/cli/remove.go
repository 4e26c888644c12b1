package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <guid>...",
	Short: "Hide items and mark them as not interesting",
	Long: `Hide one or more items and record their titles as things you do
not want to read. Removed items are excluded from 'items' unless --all
is given.

Examples:
  feedrank remove celebrity-gossip-123
  feedrank remove guid-1 guid-2 guid-3`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) (err error) {
	r, _, err := openReader()
	if err != nil {
		return err
	}
	defer closeReader(r, &err)

	var errs []error
	for _, guid := range args {
		item, err := r.RemoveItem(cmd.Context(), guid)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Printf("Removed: %s\n", item.Title)
	}

	return errors.Join(errs...)
}
