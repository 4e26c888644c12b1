// Package mcp exposes the feed reader to AI assistants over the Model
// Context Protocol.
package mcp

import (
	"context"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/vijay-prabhu/feedrank/internal/config"
	"github.com/vijay-prabhu/feedrank/internal/reader"
)

// Server implements an MCP server backed by a reader session
type Server struct {
	mu     sync.Mutex // serializes access to reader
	reader *reader.Reader
	config *config.Config
	logger zerolog.Logger
	server *mcp.Server
}

// New creates a new MCP server and registers its tools and resources
func New(r *reader.Reader, cfg *config.Config, version string, logger zerolog.Logger) *Server {
	s := &Server{
		reader: r,
		config: cfg,
		logger: logger,
		server: mcp.NewServer(&mcp.Implementation{Name: "feedrank", Version: version}, nil),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// Start runs the MCP server on stdio until the client disconnects or ctx is done
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info().Msg("mcp server listening on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
