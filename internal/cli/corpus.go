package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/feedrank/internal/output"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Inspect the learned feedback",
}

var corpusStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show feed, item and feedback counts",
	RunE:  runCorpusStats,
}

func init() {
	rootCmd.AddCommand(corpusCmd)
	corpusCmd.AddCommand(corpusStatsCmd)
}

func runCorpusStats(cmd *cobra.Command, args []string) (err error) {
	r, _, err := openReader()
	if err != nil {
		return err
	}
	defer closeReader(r, &err)

	stats, err := r.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	return output.Output(outputFmt, stats)
}
