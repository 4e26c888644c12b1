package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vijay-prabhu/feedrank/internal/output"
)

// toolHandler handles decoded tool arguments and returns a JSON-encodable result
type toolHandler func(ctx context.Context, args json.RawMessage) (any, error)

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

var feedsProperty = map[string]any{
	"type":        "array",
	"items":       map[string]any{"type": "string"},
	"description": "Feed aliases to restrict to. Omit for all feeds.",
}

var sinceDaysProperty = map[string]any{
	"type":        "integer",
	"description": "Only include items published in the last N days",
}

var updateProperty = map[string]any{
	"type":        "boolean",
	"description": "Fetch the selected feeds before listing (default: false)",
}

var guidProperty = map[string]any{
	"type":        "string",
	"description": "Item guid as returned by list_items or best_items",
}

func (s *Server) registerTools() {
	s.addTool(&mcp.Tool{
		Name:        "list_feeds",
		Description: "List subscribed RSS and Atom feeds with their aliases.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}, s.handleListFeeds)

	s.addTool(&mcp.Tool{
		Name:        "list_items",
		Description: "List feed items, newest first. Removed items are hidden unless include_deleted is set.",
		InputSchema: inputSchema(map[string]any{
			"feeds":      feedsProperty,
			"since_days": sinceDaysProperty,
			"update":     updateProperty,
			"include_deleted": map[string]any{
				"type":        "boolean",
				"description": "Include items previously removed (default: false)",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Maximum number of items to return (default: 50)",
			},
		}, nil),
	}, s.handleListItems)

	s.addTool(&mcp.Tool{
		Name:        "best_items",
		Description: "Rank feed items by predicted interest, learned from items the user read or removed. Fails until at least one item has been read or removed.",
		InputSchema: inputSchema(map[string]any{
			"feeds":      feedsProperty,
			"since_days": sinceDaysProperty,
			"update":     updateProperty,
			"limit": map[string]any{
				"type":        "integer",
				"description": "Number of items to return. Negative returns all items ranked (default: configured limit)",
			},
		}, nil),
	}, s.handleBestItems)

	s.addTool(&mcp.Tool{
		Name:        "read_item",
		Description: "Open an item. Its title is recorded as something the user is interested in.",
		InputSchema: inputSchema(map[string]any{"guid": guidProperty}, []string{"guid"}),
	}, s.handleReadItem)

	s.addTool(&mcp.Tool{
		Name:        "remove_item",
		Description: "Hide an item. Its title is recorded as something the user is not interested in.",
		InputSchema: inputSchema(map[string]any{"guid": guidProperty}, []string{"guid"}),
	}, s.handleRemoveItem)

	s.addTool(&mcp.Tool{
		Name:        "corpus_stats",
		Description: "Show feed, item and feedback counts.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}, s.handleCorpusStats)
}

// addTool registers handler under tool, serializing calls and encoding results as JSON text
func (s *Server) addTool(tool *mcp.Tool, handler toolHandler) {
	s.server.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		resp, err := handler(ctx, req.Params.Arguments)
		if err != nil {
			s.logger.Debug().Err(err).Str("tool", tool.Name).Msg("tool call failed")
			var res mcp.CallToolResult
			res.SetError(errors.New(err.Error()))
			return &res, nil
		}

		text, err := output.Marshal(resp)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("marshal: %w", err))
			return &res, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, nil
	})
}

// decodeArgs unmarshals tool arguments, treating an empty payload as no arguments
func decodeArgs(args json.RawMessage, v any) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}
