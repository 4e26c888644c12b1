// Package reader ties the feed store, the fetcher and the feedback corpus
// together into a single session.
//
// A session owns the corpus file lock for its lifetime. Callers must defer
// Close right after a successful Open so that feedback is persisted on every
// exit path.
package reader

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/vijay-prabhu/feedrank/internal/classifier"
	"github.com/vijay-prabhu/feedrank/internal/config"
	"github.com/vijay-prabhu/feedrank/internal/corpus"
	"github.com/vijay-prabhu/feedrank/internal/database"
	"github.com/vijay-prabhu/feedrank/internal/features"
	"github.com/vijay-prabhu/feedrank/internal/fetcher"
	"github.com/vijay-prabhu/feedrank/internal/ranker"
)

var (
	// ErrAliasNotFound is returned when no feed carries the requested alias
	ErrAliasNotFound = errors.New("feed alias not found")

	// ErrItemNotFound is returned when no item carries the requested guid
	ErrItemNotFound = errors.New("item not found")
)

// Reader orchestrates feeds, items and relevance feedback
type Reader struct {
	db      *database.DB
	corpus  *corpus.Corpus
	fetcher *fetcher.Fetcher
	ranker  *ranker.Ranker
	config  *config.Config
	logger  zerolog.Logger
}

// Open opens the feed database and the training corpus described by cfg
func Open(cfg *config.Config, logger zerolog.Logger) (*Reader, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.Storage.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	c, err := corpus.Open(cfg.Storage.CorpusPath(), logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}

	return &Reader{
		db:      db,
		corpus:  c,
		fetcher: fetcher.New(cfg.Fetch.Timeout(), cfg.Fetch.UserAgent, logger),
		ranker:  ranker.New(classifier.NewTrainer(cfg.Ranking.Params(), logger), logger),
		config:  cfg,
		logger:  logger,
	}, nil
}

// Close persists the corpus, releases its lock and closes the database
func (r *Reader) Close() error {
	return errors.Join(r.corpus.Close(), r.db.Close())
}

// AddFeed fetches url, stores it under alias and stores its current items.
// An empty alias defaults to the feed title.
func (r *Reader) AddFeed(ctx context.Context, feedURL, alias string) (*database.Feed, int, error) {
	existing, err := r.db.GetFeedByURL(ctx, feedURL)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to look up feed: %w", err)
	}
	if existing != nil {
		return nil, 0, fmt.Errorf("%w: %s", database.ErrFeedExists, feedURL)
	}

	fetched, err := r.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, 0, err
	}

	if alias == "" {
		alias = defaultAlias(fetched)
	}

	feed := &database.Feed{
		URL:         feedURL,
		Alias:       alias,
		Title:       fetched.Title,
		Link:        optional(fetched.Link),
		Description: optional(fetched.Description),
	}
	if err := r.db.CreateFeed(ctx, feed); err != nil {
		return nil, 0, fmt.Errorf("failed to store feed: %w", err)
	}

	added, err := r.storeEntries(ctx, feed, fetched.Entries)
	if err != nil {
		return feed, added, err
	}

	r.logger.Info().
		Str("alias", feed.Alias).
		Str("url", feed.URL).
		Int("items", added).
		Msg("feed added")

	return feed, added, nil
}

// Feeds returns all subscribed feeds
func (r *Reader) Feeds(ctx context.Context) ([]database.Feed, error) {
	return r.db.ListFeeds(ctx)
}

// Feed returns the feed with the given alias
func (r *Reader) Feed(ctx context.Context, alias string) (*database.Feed, error) {
	feed, err := r.db.GetFeedByAlias(ctx, alias)
	if err != nil {
		return nil, fmt.Errorf("failed to look up feed: %w", err)
	}
	if feed == nil {
		return nil, fmt.Errorf("%w: %s", ErrAliasNotFound, alias)
	}
	return feed, nil
}

// RemoveFeed unsubscribes from a feed and drops its items. Feedback already
// recorded in the corpus is kept.
func (r *Reader) RemoveFeed(ctx context.Context, alias string) error {
	feed, err := r.Feed(ctx, alias)
	if err != nil {
		return err
	}

	if err := r.db.DeleteFeed(ctx, feed.ID); err != nil {
		return fmt.Errorf("failed to remove feed: %w", err)
	}

	r.logger.Info().Str("alias", feed.Alias).Msg("feed removed")
	return nil
}

// UpdateFeed fetches a feed and stores entries that are not known yet
func (r *Reader) UpdateFeed(ctx context.Context, feed *database.Feed) (int, error) {
	fetched, err := r.fetcher.Fetch(ctx, feed.URL)
	if err != nil {
		return 0, err
	}

	added, err := r.storeEntries(ctx, feed, fetched.Entries)
	if err != nil {
		return added, err
	}

	r.logger.Debug().
		Str("alias", feed.Alias).
		Int("fetched", len(fetched.Entries)).
		Int("new", added).
		Msg("feed updated")

	return added, nil
}

// UpdateResult contains the results of an update run
type UpdateResult struct {
	Feeds    int
	NewItems int
	Errors   []error
}

// UpdateAll updates every subscribed feed. A failing feed is recorded in the
// result and does not stop the run.
func (r *Reader) UpdateAll(ctx context.Context, progress ProgressCallback) (*UpdateResult, error) {
	feeds, err := r.db.ListFeeds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}

	return r.updateFeeds(ctx, feeds, progress), nil
}

func (r *Reader) updateFeeds(ctx context.Context, feeds []database.Feed, progress ProgressCallback) *UpdateResult {
	result := &UpdateResult{Feeds: len(feeds)}
	started := time.Now()

	report := func(phase ProgressPhase, current int, desc string) {
		if progress != nil {
			progress(Progress{
				Phase:       phase,
				Current:     current,
				Total:       len(feeds),
				Description: desc,
				StartedAt:   started,
			})
		}
	}

	for i := range feeds {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, ctx.Err())
			break
		}

		feed := &feeds[i]
		report(PhaseFetching, i, feed.Alias)

		added, err := r.UpdateFeed(ctx, feed)
		result.NewItems += added
		if err != nil {
			r.logger.Warn().Err(err).Str("alias", feed.Alias).Msg("feed update failed")
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", feed.Alias, err))
		}

		report(PhaseStoring, i+1, feed.Alias)
	}

	return result
}

// ItemsOptions selects which items Items returns
type ItemsOptions struct {
	Aliases        []string   // restrict to these feeds, empty means all
	Update         bool       // refresh the selected feeds first
	Since          *time.Time // only items published after this time
	IncludeDeleted bool
	Limit          int
}

// Items lists stored items, newest first
func (r *Reader) Items(ctx context.Context, opts ItemsOptions) ([]database.Item, error) {
	var feeds []database.Feed
	for _, alias := range opts.Aliases {
		feed, err := r.Feed(ctx, alias)
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, *feed)
	}

	if opts.Update {
		targets := feeds
		if len(opts.Aliases) == 0 {
			all, err := r.db.ListFeeds(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to list feeds: %w", err)
			}
			targets = all
		}
		r.updateFeeds(ctx, targets, nil)
	}

	listOpts := database.ListOptions{
		Since:          opts.Since,
		IncludeDeleted: opts.IncludeDeleted,
		Limit:          opts.Limit,
	}
	for _, f := range feeds {
		listOpts.FeedIDs = append(listOpts.FeedIDs, f.ID)
	}

	items, err := r.db.ListItems(ctx, listOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// ReadItem returns an item and records it as relevant. An unknown guid
// returns nil without error.
func (r *Reader) ReadItem(ctx context.Context, guid string) (*database.Item, error) {
	item, err := r.db.GetItem(ctx, guid)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return nil, nil
	}
	if err := checkTitle(item); err != nil {
		return nil, err
	}

	if err := r.db.IncrementReadCount(ctx, guid); err != nil {
		return nil, fmt.Errorf("failed to mark item read: %w", err)
	}
	item.ReadCount++

	if err := r.corpus.AddPositive(item.Title); err != nil {
		return nil, fmt.Errorf("failed to record feedback: %w", err)
	}

	return item, nil
}

// RemoveItem hides an item and records it as not relevant
func (r *Reader) RemoveItem(ctx context.Context, guid string) (*database.Item, error) {
	item, err := r.db.GetItem(ctx, guid)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, guid)
	}
	if err := checkTitle(item); err != nil {
		return nil, err
	}

	if err := r.db.MarkDeleted(ctx, guid); err != nil {
		return nil, fmt.Errorf("failed to remove item: %w", err)
	}
	item.Deleted = true

	if err := r.corpus.AddNegative(item.Title); err != nil {
		return nil, fmt.Errorf("failed to record feedback: %w", err)
	}

	return item, nil
}

// checkTitle rejects items whose title cannot become a training example,
// before any store update is made for them
func checkTitle(item *database.Item) error {
	if _, err := features.HashTitle(item.Title); err != nil {
		return fmt.Errorf("failed to record feedback for %s: %w", item.GUID, err)
	}
	return nil
}

// BestN ranks items by predicted relevance and returns the top n.
// A negative n returns every item in ranked order.
func (r *Reader) BestN(items []database.Item, n int) ([]ranker.Scored[database.Item], error) {
	return ranker.TopN(r.ranker, r.corpus.Snapshot(), items, n)
}

// CorpusStats returns counts of recorded feedback
func (r *Reader) CorpusStats() corpus.Stats {
	return r.corpus.Stats()
}

// Stats combines store and corpus statistics
type Stats struct {
	Store  *database.Stats `json:"store"`
	Corpus corpus.Stats    `json:"corpus"`
}

// Stats returns store and corpus statistics
func (r *Reader) Stats(ctx context.Context) (*Stats, error) {
	store, err := r.db.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return &Stats{Store: store, Corpus: r.corpus.Stats()}, nil
}

// Flush persists the corpus without ending the session
func (r *Reader) Flush() error {
	return r.corpus.Flush()
}

func (r *Reader) storeEntries(ctx context.Context, feed *database.Feed, entries []fetcher.Entry) (int, error) {
	added := 0
	for _, e := range entries {
		item := &database.Item{
			GUID:        e.GUID,
			FeedID:      feed.ID,
			Title:       e.Title,
			Link:        optional(e.Link),
			Description: optional(e.Description),
		}
		if !e.Published.IsZero() {
			published := e.Published
			item.PublishedAt = &published
		}

		created, err := r.db.CreateItem(ctx, item)
		if err != nil {
			return added, fmt.Errorf("failed to store item %s: %w", e.GUID, err)
		}
		if created {
			added++
		}
	}
	return added, nil
}

// defaultAlias picks the feed title, falling back to the host name
func defaultAlias(f *fetcher.Feed) string {
	if f.Title != "" {
		return f.Title
	}
	if u, err := url.Parse(f.URL); err == nil && u.Host != "" {
		return u.Host
	}
	return f.URL
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
