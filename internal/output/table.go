package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/vijay-prabhu/feedrank/internal/corpus"
	"github.com/vijay-prabhu/feedrank/internal/database"
	"github.com/vijay-prabhu/feedrank/internal/ranker"
	"github.com/vijay-prabhu/feedrank/internal/reader"
)

// Table writes data as a formatted table to stdout
func Table(data any) error {
	return TableTo(os.Stdout, data)
}

// TableTo writes data as a formatted table to the given writer
func TableTo(w io.Writer, data any) error {
	switch v := data.(type) {
	case []database.Feed:
		return feedsTable(w, v)
	case []database.Item:
		return itemsTable(w, v)
	case []ranker.Scored[database.Item]:
		return rankedTable(w, v)
	case *database.Item:
		return itemDetail(w, v)
	case *reader.Stats:
		return statsTable(w, v)
	case corpus.Stats:
		return corpusTable(w, v)
	default:
		return fmt.Errorf("unsupported data type for table output: %T", data)
	}
}

func feedsTable(w io.Writer, feeds []database.Feed) error {
	if len(feeds) == 0 {
		fmt.Fprintln(w, "No feeds found. Add one with 'feedrank feed add <url>'.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("ALIAS", "TITLE", "URL", "ADDED")

	for _, f := range feeds {
		if err := table.Append([]string{
			f.Alias,
			truncate(f.Title, 30),
			truncate(f.URL, 50),
			f.CreatedAt.Local().Format("Jan 02, 2006"),
		}); err != nil {
			return err
		}
	}

	return table.Render()
}

func itemsTable(w io.Writer, items []database.Item) error {
	if len(items) == 0 {
		fmt.Fprintln(w, "No items found.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("GUID", "TITLE", "PUBLISHED", "READ")

	for _, i := range items {
		if err := table.Append([]string{
			truncate(i.GUID, 40),
			truncate(i.Title, 60),
			formatPublished(i.PublishedAt),
			formatRead(i),
		}); err != nil {
			return err
		}
	}

	return table.Render()
}

func rankedTable(w io.Writer, ranked []ranker.Scored[database.Item]) error {
	if len(ranked) == 0 {
		fmt.Fprintln(w, "No items found.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("RANK", "SCORE", "GUID", "TITLE", "PUBLISHED")

	for _, s := range ranked {
		if err := table.Append([]string{
			strconv.Itoa(s.Rank),
			strconv.FormatFloat(s.Score, 'f', 3, 64),
			truncate(s.Item.GUID, 40),
			truncate(s.Item.Title, 60),
			formatPublished(s.Item.PublishedAt),
		}); err != nil {
			return err
		}
	}

	return table.Render()
}

func itemDetail(w io.Writer, i *database.Item) error {
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, i.Title)
	fmt.Fprintln(w, strings.Repeat("=", 60))

	fmt.Fprintf(w, "GUID:        %s\n", i.GUID)
	if i.Link != nil {
		fmt.Fprintf(w, "Link:        %s\n", *i.Link)
	}
	fmt.Fprintf(w, "Published:   %s\n", formatPublished(i.PublishedAt))
	fmt.Fprintf(w, "Read:        %d times\n", i.ReadCount)
	if i.Deleted {
		fmt.Fprintln(w, "Status:      removed")
	}

	if i.Description != nil && *i.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, *i.Description)
	}

	return nil
}

func statsTable(w io.Writer, s *reader.Stats) error {
	fmt.Fprintln(w, "Feed Statistics")
	fmt.Fprintln(w, strings.Repeat("-", 30))
	fmt.Fprintf(w, "Feeds:                  %d\n", s.Store.Feeds)
	fmt.Fprintf(w, "Items:                  %d\n", s.Store.Items)
	fmt.Fprintf(w, "Unread:                 %d\n", s.Store.Unread)
	fmt.Fprintf(w, "Read:                   %d\n", s.Store.Read)
	fmt.Fprintf(w, "Removed:                %d\n", s.Store.Deleted)
	fmt.Fprintln(w)
	return corpusTable(w, s.Corpus)
}

func corpusTable(w io.Writer, s corpus.Stats) error {
	fmt.Fprintln(w, "Training Corpus")
	fmt.Fprintln(w, strings.Repeat("-", 30))
	if s.Path != "" {
		fmt.Fprintf(w, "Path:                   %s\n", s.Path)
	}
	fmt.Fprintf(w, "Examples:               %d\n", s.Total)
	fmt.Fprintf(w, "Relevant (read):        %d\n", s.Positive)
	fmt.Fprintf(w, "Not relevant (removed): %d\n", s.Negative)
	return nil
}

func formatPublished(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatAge(int(time.Since(*t).Hours() / 24))
}

func formatAge(days int) string {
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return fmt.Sprintf("%d weeks ago", days/7)
	default:
		return fmt.Sprintf("%d days ago", days)
	}
}

func formatRead(i database.Item) string {
	switch {
	case i.Deleted:
		return "removed"
	case i.IsRead():
		return "yes"
	default:
		return ""
	}
}

// truncate shortens s to max runes
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
