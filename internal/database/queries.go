package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const feedColumns = `id, url, alias, title, link, description, created_at`

const itemColumns = `guid, feed_id, title, link, description, published_at,
	read_count, deleted, created_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeed(row rowScanner) (*Feed, error) {
	f := &Feed{}
	var link, description sql.NullString

	if err := row.Scan(&f.ID, &f.URL, &f.Alias, &f.Title, &link, &description, &f.CreatedAt); err != nil {
		return nil, err
	}

	f.Link = StringPtr(link)
	f.Description = StringPtr(description)
	return f, nil
}

func scanItem(row rowScanner) (*Item, error) {
	i := &Item{}
	var link, description sql.NullString
	var publishedAt sql.NullTime

	if err := row.Scan(
		&i.GUID, &i.FeedID, &i.Title, &link, &description, &publishedAt,
		&i.ReadCount, &i.Deleted, &i.CreatedAt,
	); err != nil {
		return nil, err
	}

	i.Link = StringPtr(link)
	i.Description = StringPtr(description)
	i.PublishedAt = TimePtr(publishedAt)
	return i, nil
}

// CreateFeed inserts a new feed, returning ErrFeedExists on a duplicate url or alias
func (db *DB) CreateFeed(ctx context.Context, f *Feed) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	f.CreatedAt = time.Now().UTC()

	_, err := db.ExecContext(ctx, `
		INSERT INTO feeds (`+feedColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		f.ID, f.URL, f.Alias, f.Title, NullString(f.Link), NullString(f.Description), f.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrFeedExists, f.URL)
	}
	return err
}

// GetFeedByURL retrieves a feed by its url
func (db *DB) GetFeedByURL(ctx context.Context, url string) (*Feed, error) {
	f, err := scanFeed(db.QueryRowContext(ctx, `
		SELECT `+feedColumns+` FROM feeds WHERE url = ?
	`, url))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return f, err
}

// GetFeedByAlias retrieves a feed by alias (case-insensitive)
func (db *DB) GetFeedByAlias(ctx context.Context, alias string) (*Feed, error) {
	f, err := scanFeed(db.QueryRowContext(ctx, `
		SELECT `+feedColumns+` FROM feeds WHERE LOWER(alias) = LOWER(?)
	`, alias))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return f, err
}

// ListFeeds returns all feeds, newest first
func (db *DB) ListFeeds(ctx context.Context) ([]Feed, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+feedColumns+` FROM feeds ORDER BY created_at DESC, alias
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		f, err := scanFeed(rows)
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, *f)
	}

	return feeds, rows.Err()
}

// DeleteFeed removes a feed and all of its items
func (db *DB) DeleteFeed(ctx context.Context, id string) error {
	return db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE feed_id = ?`, id); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM feeds WHERE id = ?`, id)
		if err != nil {
			return err
		}

		rows, _ := result.RowsAffected()
		if rows == 0 {
			return fmt.Errorf("feed not found: %s", id)
		}
		return nil
	})
}

// CreateItem inserts an item. It returns false when the guid is already stored.
func (db *DB) CreateItem(ctx context.Context, i *Item) (bool, error) {
	i.CreatedAt = time.Now().UTC()

	result, err := db.ExecContext(ctx, `
		INSERT INTO items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(guid) DO NOTHING
	`,
		i.GUID, i.FeedID, i.Title, NullString(i.Link), NullString(i.Description),
		NullTime(i.PublishedAt), i.ReadCount, i.Deleted, i.CreatedAt,
	)
	if err != nil {
		return false, err
	}

	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// GetItem retrieves an item by guid
func (db *DB) GetItem(ctx context.Context, guid string) (*Item, error) {
	i, err := scanItem(db.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM items WHERE guid = ?
	`, guid))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return i, err
}

// ListItems retrieves items with optional filters, newest first
func (db *DB) ListItems(ctx context.Context, opts ListOptions) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`
	args := []any{}

	if len(opts.FeedIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(opts.FeedIDs)), ",")
		query += " AND feed_id IN (" + placeholders + ")"
		for _, id := range opts.FeedIDs {
			args = append(args, id)
		}
	}
	if opts.Since != nil {
		query += " AND COALESCE(published_at, created_at) >= ?"
		args = append(args, opts.Since.UTC())
	}
	if !opts.IncludeDeleted {
		query += " AND deleted = 0"
	}

	query += " ORDER BY COALESCE(published_at, created_at) DESC, created_at DESC, guid"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *i)
	}

	return items, rows.Err()
}

// IncrementReadCount bumps the read counter of an item
func (db *DB) IncrementReadCount(ctx context.Context, guid string) error {
	result, err := db.ExecContext(ctx, `
		UPDATE items SET read_count = read_count + 1 WHERE guid = ?
	`, guid)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("item not found: %s", guid)
	}
	return nil
}

// MarkDeleted hides an item from default listings
func (db *DB) MarkDeleted(ctx context.Context, guid string) error {
	result, err := db.ExecContext(ctx, `
		UPDATE items SET deleted = 1 WHERE guid = ?
	`, guid)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("item not found: %s", guid)
	}
	return nil
}

// GetStats returns aggregate counts over feeds and items
func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feeds`).Scan(&stats.Feeds); err != nil {
		return nil, err
	}

	err := db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN deleted = 0 AND read_count = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN read_count > 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN deleted = 1 THEN 1 ELSE 0 END), 0)
		FROM items
	`).Scan(&stats.Items, &stats.Unread, &stats.Read, &stats.Deleted)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
