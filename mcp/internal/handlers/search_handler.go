package handlers

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/priyanshu10cruzo/ai-meeting-summary/client"
)

// SearchHandler exposes the search_transcripts tool.
type SearchHandler struct {
	client *client.Client
}

func NewSearchHandler(c *client.Client) *SearchHandler {
	return &SearchHandler{client: c}
}

func (sh *SearchHandler) RegisterTools(s *server.MCPServer) error {
	searchTool := mcp.NewTool("search_transcripts",
		mcp.WithDescription("Semantic search over indexed transcript chunks. Each hit carries the chunk text, its transcript id and a similarity score."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query text")),
		mcp.WithString("transcript_id", mcp.Description("Restrict results to one transcript")),
		mcp.WithNumber("top_k", mcp.Description("Number of results to return (1-50, default 5)")),
	)
	s.AddTool(searchTool, sh.handleSearch)
	return nil
}

func (sh *SearchHandler) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	topK := optInt(req, "top_k", 5)
	if topK < 1 || topK > client.MaxTopK {
		topK = 5
	}
	hits, err := sh.client.Search(ctx, client.SearchRequest{
		Query:        query,
		TopK:         topK,
		TranscriptID: optString(req, "transcript_id"),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return jsonResult(map[string]any{"results": hits, "count": len(hits)})
}
