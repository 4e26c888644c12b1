package reader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/vijay-prabhu/feedrank/internal/classifier"
	"github.com/vijay-prabhu/feedrank/internal/config"
	"github.com/vijay-prabhu/feedrank/internal/corpus"
	"github.com/vijay-prabhu/feedrank/internal/database"
	"github.com/vijay-prabhu/feedrank/internal/features"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Markets</title>
  <link>https://markets.example.com/</link>
  <item>
    <title>Quarterly Earnings Beat Estimates</title>
    <guid>earnings</guid>
    <pubDate>Tue, 02 Apr 2024 09:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Completely unrelated headline about weather</title>
    <guid>weather</guid>
    <pubDate>Mon, 01 Apr 2024 09:00:00 GMT</pubDate>
  </item>
</channel>
</rss>`

// feedServer serves testFeed until failing is set
type feedServer struct {
	*httptest.Server
	failing atomic.Bool
}

func newFeedServer(t *testing.T) *feedServer {
	t.Helper()

	fs := &feedServer{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fs.failing.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeed))
	}))
	t.Cleanup(fs.Close)
	return fs
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Storage.Dir = t.TempDir()
	return cfg
}

func openTestReader(t *testing.T, cfg *config.Config) *Reader {
	t.Helper()

	r, err := Open(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return r
}

func TestAddFeed(t *testing.T) {
	srv := newFeedServer(t)
	r := openTestReader(t, testConfig(t))
	defer r.Close()
	ctx := context.Background()

	feed, added, err := r.AddFeed(ctx, srv.URL, "")
	if err != nil {
		t.Fatalf("AddFeed failed: %v", err)
	}
	if feed.Alias != "Markets" {
		t.Errorf("expected alias to default to feed title, got %q", feed.Alias)
	}
	if added != 2 {
		t.Errorf("expected 2 items stored, got %d", added)
	}

	_, _, err = r.AddFeed(ctx, srv.URL, "again")
	if !errors.Is(err, database.ErrFeedExists) {
		t.Errorf("expected ErrFeedExists, got %v", err)
	}

	feeds, err := r.Feeds(ctx)
	if err != nil {
		t.Fatalf("Feeds failed: %v", err)
	}
	if len(feeds) != 1 {
		t.Errorf("expected 1 feed, got %d", len(feeds))
	}
}

func TestItemsUnknownAlias(t *testing.T) {
	r := openTestReader(t, testConfig(t))
	defer r.Close()

	_, err := r.Items(context.Background(), ItemsOptions{Aliases: []string{"missing"}})
	if !errors.Is(err, ErrAliasNotFound) {
		t.Errorf("expected ErrAliasNotFound, got %v", err)
	}

	if err := r.RemoveFeed(context.Background(), "missing"); !errors.Is(err, ErrAliasNotFound) {
		t.Errorf("expected ErrAliasNotFound, got %v", err)
	}
}

func TestReadAndRemoveItem(t *testing.T) {
	srv := newFeedServer(t)
	r := openTestReader(t, testConfig(t))
	defer r.Close()
	ctx := context.Background()

	if _, _, err := r.AddFeed(ctx, srv.URL, "markets"); err != nil {
		t.Fatalf("AddFeed failed: %v", err)
	}

	item, err := r.ReadItem(ctx, "unknown")
	if err != nil || item != nil {
		t.Errorf("expected nil item and nil error for unknown guid, got %v, %v", item, err)
	}

	item, err = r.ReadItem(ctx, "earnings")
	if err != nil {
		t.Fatalf("ReadItem failed: %v", err)
	}
	if item.ReadCount != 1 {
		t.Errorf("expected read count 1, got %d", item.ReadCount)
	}

	if _, err := r.RemoveItem(ctx, "unknown"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}

	if _, err := r.RemoveItem(ctx, "weather"); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}

	stats := r.CorpusStats()
	if stats.Positive != 1 || stats.Negative != 1 {
		t.Errorf("expected 1 positive and 1 negative, got %+v", stats)
	}

	items, err := r.Items(ctx, ItemsOptions{})
	if err != nil {
		t.Fatalf("Items failed: %v", err)
	}
	if len(items) != 1 || items[0].GUID != "earnings" {
		t.Errorf("expected removed item to be hidden, got %+v", items)
	}

	items, _ = r.Items(ctx, ItemsOptions{IncludeDeleted: true})
	if len(items) != 2 {
		t.Errorf("expected 2 items including deleted, got %d", len(items))
	}
}

func TestFeedbackWithoutTokensLeavesItemUnchanged(t *testing.T) {
	srv := newFeedServer(t)
	r := openTestReader(t, testConfig(t))
	defer r.Close()
	ctx := context.Background()

	feed, _, err := r.AddFeed(ctx, srv.URL, "markets")
	if err != nil {
		t.Fatalf("AddFeed failed: %v", err)
	}
	if _, err := r.db.CreateItem(ctx, &database.Item{GUID: "blank", FeedID: feed.ID, Title: " \t "}); err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}

	if _, err := r.ReadItem(ctx, "blank"); !errors.Is(err, features.ErrEmptyTitle) {
		t.Errorf("ReadItem: expected ErrEmptyTitle, got %v", err)
	}
	if _, err := r.RemoveItem(ctx, "blank"); !errors.Is(err, features.ErrEmptyTitle) {
		t.Errorf("RemoveItem: expected ErrEmptyTitle, got %v", err)
	}

	item, err := r.db.GetItem(ctx, "blank")
	if err != nil || item == nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if item.ReadCount != 0 || item.Deleted {
		t.Errorf("expected item untouched, got read count %d, deleted %v", item.ReadCount, item.Deleted)
	}
	if stats := r.CorpusStats(); stats.Positive != 0 || stats.Negative != 0 {
		t.Errorf("expected empty corpus, got %+v", stats)
	}
}

func TestFeedbackSurvivesReopen(t *testing.T) {
	srv := newFeedServer(t)
	cfg := testConfig(t)
	ctx := context.Background()

	r := openTestReader(t, cfg)
	r.AddFeed(ctx, srv.URL, "markets")
	r.ReadItem(ctx, "earnings")
	r.RemoveItem(ctx, "weather")
	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	r = openTestReader(t, cfg)
	defer r.Close()

	stats := r.CorpusStats()
	if stats.Total != 2 || stats.Positive != 1 || stats.Negative != 1 {
		t.Errorf("expected feedback to persist, got %+v", stats)
	}
}

func TestOpenLocked(t *testing.T) {
	cfg := testConfig(t)

	r := openTestReader(t, cfg)
	defer r.Close()

	_, err := Open(cfg, zerolog.Nop())
	if !errors.Is(err, corpus.ErrLocked) {
		t.Errorf("expected ErrLocked, got %v", err)
	}
}

func TestBestN(t *testing.T) {
	srv := newFeedServer(t)
	r := openTestReader(t, testConfig(t))
	defer r.Close()
	ctx := context.Background()

	r.AddFeed(ctx, srv.URL, "markets")
	items, err := r.Items(ctx, ItemsOptions{})
	if err != nil {
		t.Fatalf("Items failed: %v", err)
	}

	if _, err := r.BestN(items, -1); !errors.Is(err, classifier.ErrInsufficientTrainingData) {
		t.Fatalf("expected ErrInsufficientTrainingData, got %v", err)
	}

	if _, err := r.ReadItem(ctx, "earnings"); err != nil {
		t.Fatalf("ReadItem failed: %v", err)
	}

	// newest first puts earnings on top already, so rank the reversed list
	reversed := []database.Item{items[1], items[0]}
	ranked, err := r.BestN(reversed, -1)
	if err != nil {
		t.Fatalf("BestN failed: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked items, got %d", len(ranked))
	}
	if ranked[0].Item.GUID != "earnings" || ranked[0].Rank != 1 {
		t.Errorf("expected earnings ranked first, got %s (rank %d)", ranked[0].Item.GUID, ranked[0].Rank)
	}
	if ranked[0].Score <= ranked[1].Score {
		t.Errorf("expected read title to score higher: %v <= %v", ranked[0].Score, ranked[1].Score)
	}

	top, _ := r.BestN(reversed, 1)
	if len(top) != 1 {
		t.Errorf("expected 1 item, got %d", len(top))
	}
}

func TestUpdateAll(t *testing.T) {
	srv := newFeedServer(t)
	r := openTestReader(t, testConfig(t))
	defer r.Close()
	ctx := context.Background()

	r.AddFeed(ctx, srv.URL, "markets")

	var calls []Progress
	result, err := r.UpdateAll(ctx, func(p Progress) { calls = append(calls, p) })
	if err != nil {
		t.Fatalf("UpdateAll failed: %v", err)
	}
	if result.Feeds != 1 || result.NewItems != 0 || len(result.Errors) != 0 {
		t.Errorf("expected no new items and no errors, got %+v", result)
	}
	if len(calls) != 2 || calls[1].Percentage() != 100 {
		t.Errorf("expected fetching and storing progress, got %+v", calls)
	}

	srv.failing.Store(true)
	result, err = r.UpdateAll(ctx, nil)
	if err != nil {
		t.Fatalf("UpdateAll failed: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected per-feed error to be collected, got %v", result.Errors)
	}
}

func TestRemoveFeed(t *testing.T) {
	srv := newFeedServer(t)
	r := openTestReader(t, testConfig(t))
	defer r.Close()
	ctx := context.Background()

	r.AddFeed(ctx, srv.URL, "markets")
	r.ReadItem(ctx, "earnings")

	if err := r.RemoveFeed(ctx, "MARKETS"); err != nil {
		t.Fatalf("RemoveFeed failed: %v", err)
	}

	stats, err := r.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Store.Feeds != 0 || stats.Store.Items != 0 {
		t.Errorf("expected feed and items removed, got %+v", stats.Store)
	}
	if stats.Corpus.Positive != 1 {
		t.Errorf("expected feedback to be kept, got %+v", stats.Corpus)
	}
}
