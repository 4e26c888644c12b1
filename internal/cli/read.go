package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/feedrank/internal/output"
	"github.com/vijay-prabhu/feedrank/internal/reader"
)

var readCmd = &cobra.Command{
	Use:   "read <guid>",
	Short: "Show an item and mark it as interesting",
	Long: `Show an item and record its title as something you like to read.

Examples:
  feedrank read https://go.dev/blog/go1.22
  feedrank read earnings-2024 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) (err error) {
	r, _, err := openReader()
	if err != nil {
		return err
	}
	defer closeReader(r, &err)

	item, err := r.ReadItem(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("%w: %s", reader.ErrItemNotFound, args[0])
	}

	return output.Output(outputFmt, item)
}
