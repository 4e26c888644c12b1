package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/feedrank/internal/database"
	"github.com/vijay-prabhu/feedrank/internal/output"
	"github.com/vijay-prabhu/feedrank/internal/reader"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export items to CSV or JSON",
	Long: `Export stored items to stdout.

Supported formats:
  - csv: Comma-separated values (spreadsheet-compatible)
  - json: JSON array of item objects

With --ranked every row carries its predicted interest score and rank,
ordered best first.

Examples:
  feedrank export --format=csv > items.csv
  feedrank export --format=json --ranked > ranked.json
  feedrank export --feed golang --include-removed > golang.csv`,
	RunE: runExport,
}

var (
	exportFormat         string
	exportFeeds          []string
	exportIncludeRemoved bool
	exportRanked         bool
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Export format (csv, json)")
	exportCmd.Flags().StringSliceVarP(&exportFeeds, "feed", "f", nil, "Restrict to feed alias (repeatable)")
	exportCmd.Flags().BoolVar(&exportIncludeRemoved, "include-removed", false, "Include removed items")
	exportCmd.Flags().BoolVar(&exportRanked, "ranked", false, "Include scores and order by predicted interest")
}

func runExport(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()

	r, _, err := openReader()
	if err != nil {
		return err
	}
	defer closeReader(r, &err)

	feeds, err := r.Feeds(ctx)
	if err != nil {
		return fmt.Errorf("failed to list feeds: %w", err)
	}
	aliases := make(map[string]string, len(feeds))
	for _, f := range feeds {
		aliases[f.ID] = f.Alias
	}

	items, err := r.Items(ctx, reader.ItemsOptions{
		Aliases:        exportFeeds,
		IncludeDeleted: exportIncludeRemoved,
	})
	if err != nil {
		return err
	}

	rows := make([]ExportRow, 0, len(items))
	if exportRanked {
		ranked, err := r.BestN(items, -1)
		if err != nil {
			return err
		}
		for _, s := range ranked {
			row := toExportRow(s.Item, aliases)
			score, rank := s.Score, s.Rank
			row.Score, row.Rank = &score, &rank
			rows = append(rows, row)
		}
	} else {
		for _, i := range items {
			rows = append(rows, toExportRow(i, aliases))
		}
	}

	switch exportFormat {
	case "csv":
		return exportCSV(os.Stdout, rows)
	case "json":
		return output.JSONTo(os.Stdout, rows)
	default:
		return fmt.Errorf("unknown format: %s (use csv or json)", exportFormat)
	}
}

// ExportRow represents a row in the export
type ExportRow struct {
	GUID        string   `json:"guid"`
	Feed        string   `json:"feed"`
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	PublishedAt string   `json:"published_at"`
	ReadCount   int      `json:"read_count"`
	Removed     bool     `json:"removed"`
	Score       *float64 `json:"score,omitempty"`
	Rank        *int     `json:"rank,omitempty"`
}

func toExportRow(i database.Item, aliases map[string]string) ExportRow {
	row := ExportRow{
		GUID:      i.GUID,
		Feed:      aliases[i.FeedID],
		Title:     i.Title,
		ReadCount: i.ReadCount,
		Removed:   i.Deleted,
	}
	if i.Link != nil {
		row.Link = *i.Link
	}
	if i.PublishedAt != nil {
		row.PublishedAt = i.PublishedAt.Format(time.RFC3339)
	}
	return row
}

func exportCSV(out io.Writer, rows []ExportRow) error {
	w := csv.NewWriter(out)

	header := []string{"guid", "feed", "title", "link", "published_at", "read_count", "removed", "score", "rank"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		var score, rank string
		if row.Score != nil {
			score = strconv.FormatFloat(*row.Score, 'f', 6, 64)
		}
		if row.Rank != nil {
			rank = strconv.Itoa(*row.Rank)
		}

		record := []string{
			row.GUID,
			row.Feed,
			row.Title,
			row.Link,
			row.PublishedAt,
			strconv.Itoa(row.ReadCount),
			strconv.FormatBool(row.Removed),
			score,
			rank,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
