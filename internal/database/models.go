package database

import (
	"database/sql"
	"time"
)

// Feed is a subscribed RSS or Atom feed
type Feed struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Alias       string    `json:"alias"`
	Title       string    `json:"title"`
	Link        *string   `json:"link,omitempty"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Item is a single entry fetched from a feed
type Item struct {
	GUID        string     `json:"guid"`
	FeedID      string     `json:"feed_id"`
	Title       string     `json:"title"`
	Link        *string    `json:"link,omitempty"`
	Description *string    `json:"description,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ReadCount   int        `json:"read_count"`
	Deleted     bool       `json:"deleted"`
	CreatedAt   time.Time  `json:"created_at"`
}

// RankGUID identifies the item to the ranker
func (i Item) RankGUID() string { return i.GUID }

// RankTitle is the text the ranker hashes
func (i Item) RankTitle() string { return i.Title }

// IsRead returns true if the item was opened at least once
func (i Item) IsRead() bool {
	return i.ReadCount > 0
}

// ListOptions contains options for listing items
type ListOptions struct {
	FeedIDs        []string
	Since          *time.Time
	IncludeDeleted bool
	Limit          int
}

// Stats represents aggregate statistics
type Stats struct {
	Feeds   int `json:"feeds"`
	Items   int `json:"items"`
	Unread  int `json:"unread"`
	Read    int `json:"read"`
	Deleted int `json:"deleted"`
}

// NullString is a helper to convert *string to sql.NullString
func NullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// NullTime is a helper to convert *time.Time to sql.NullTime
func NullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// StringPtr converts sql.NullString to *string
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// TimePtr converts sql.NullTime to *time.Time
func TimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	return &nt.Time
}
