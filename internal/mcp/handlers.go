package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vijay-prabhu/feedrank/internal/reader"
)

const defaultListLimit = 50

type itemsParams struct {
	Feeds          []string `json:"feeds"`
	SinceDays      int      `json:"since_days"`
	Update         bool     `json:"update"`
	IncludeDeleted bool     `json:"include_deleted"`
	Limit          *int     `json:"limit"`
}

func (p itemsParams) options() reader.ItemsOptions {
	opts := reader.ItemsOptions{
		Aliases:        p.Feeds,
		Update:         p.Update,
		IncludeDeleted: p.IncludeDeleted,
	}
	if p.SinceDays > 0 {
		since := time.Now().AddDate(0, 0, -p.SinceDays)
		opts.Since = &since
	}
	return opts
}

type guidParams struct {
	GUID string `json:"guid"`
}

func (p *guidParams) decode(args json.RawMessage) error {
	if err := decodeArgs(args, p); err != nil {
		return err
	}
	if p.GUID == "" {
		return errors.New("guid is required")
	}
	return nil
}

func (s *Server) handleListFeeds(ctx context.Context, _ json.RawMessage) (any, error) {
	return s.reader.Feeds(ctx)
}

func (s *Server) handleListItems(ctx context.Context, args json.RawMessage) (any, error) {
	var p itemsParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}

	opts := p.options()
	opts.Limit = defaultListLimit
	if p.Limit != nil && *p.Limit > 0 {
		opts.Limit = *p.Limit
	}

	return s.reader.Items(ctx, opts)
}

func (s *Server) handleBestItems(ctx context.Context, args json.RawMessage) (any, error) {
	var p itemsParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}

	n := s.config.Ranking.DefaultLimit
	if p.Limit != nil {
		n = *p.Limit
	}

	items, err := s.reader.Items(ctx, p.options())
	if err != nil {
		return nil, err
	}

	return s.reader.BestN(items, n)
}

func (s *Server) handleReadItem(ctx context.Context, args json.RawMessage) (any, error) {
	var p guidParams
	if err := p.decode(args); err != nil {
		return nil, err
	}

	item, err := s.reader.ReadItem(ctx, p.GUID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: %s", reader.ErrItemNotFound, p.GUID)
	}

	if err := s.reader.Flush(); err != nil {
		return nil, fmt.Errorf("failed to persist feedback: %w", err)
	}
	return item, nil
}

func (s *Server) handleRemoveItem(ctx context.Context, args json.RawMessage) (any, error) {
	var p guidParams
	if err := p.decode(args); err != nil {
		return nil, err
	}

	item, err := s.reader.RemoveItem(ctx, p.GUID)
	if err != nil {
		return nil, err
	}

	if err := s.reader.Flush(); err != nil {
		return nil, fmt.Errorf("failed to persist feedback: %w", err)
	}
	return item, nil
}

func (s *Server) handleCorpusStats(ctx context.Context, _ json.RawMessage) (any, error) {
	return s.reader.Stats(ctx)
}
