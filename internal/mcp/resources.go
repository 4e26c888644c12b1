package mcp

import (
	"bytes"
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vijay-prabhu/feedrank/internal/output"
	"github.com/vijay-prabhu/feedrank/internal/reader"
)

const (
	summaryURI = "feedrank://summary"
	bestURI    = "feedrank://best"
)

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         summaryURI,
		Name:        "Reader Summary",
		Description: "Feed, item and feedback counts",
		MIMEType:    "text/plain",
	}, s.readSummary)

	s.server.AddResource(&mcp.Resource{
		URI:         bestURI,
		Name:        "Best Items",
		Description: "Stored items ranked by predicted interest",
		MIMEType:    "text/plain",
	}, s.readBest)
}

func (s *Server) readSummary(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := s.reader.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return textResource(summaryURI, stats)
}

func (s *Server) readBest(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.reader.Items(ctx, reader.ItemsOptions{})
	if err != nil {
		return nil, err
	}

	ranked, err := s.reader.BestN(items, s.config.Ranking.DefaultLimit)
	if err != nil {
		return nil, err
	}
	return textResource(bestURI, ranked)
}

// textResource renders data as a plain-text table
func textResource(uri string, data any) (*mcp.ReadResourceResult, error) {
	var buf bytes.Buffer
	if err := output.TableTo(&buf, data); err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: "text/plain", Text: buf.String()}},
	}, nil
}
