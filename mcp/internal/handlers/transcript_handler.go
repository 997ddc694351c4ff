package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/priyanshu10cruzo/ai-meeting-summary/client"
)

// TranscriptHandler exposes ingest_transcript, list_transcripts and delete_transcript.
type TranscriptHandler struct {
	client *client.Client
}

func NewTranscriptHandler(c *client.Client) *TranscriptHandler {
	return &TranscriptHandler{client: c}
}

func (th *TranscriptHandler) RegisterTools(s *server.MCPServer) error {
	ingest := mcp.NewTool("ingest_transcript",
		mcp.WithDescription("Store a meeting transcript and index it for retrieval. Returns the transcript id used by summarize_meeting."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Full transcript text, one speaker turn per line")),
		mcp.WithString("title", mcp.Description("Optional meeting title")),
	)
	s.AddTool(ingest, th.handleIngest)

	list := mcp.NewTool("list_transcripts",
		mcp.WithDescription("List stored transcripts, newest first"),
		mcp.WithNumber("limit", mcp.Description("Max rows (1-50), default 20")),
	)
	s.AddTool(list, th.handleList)

	del := mcp.NewTool("delete_transcript",
		mcp.WithDescription("Delete a transcript together with its indexed chunks and summaries"),
		mcp.WithString("transcript_id", mcp.Required(), mcp.Description("The transcript id")),
	)
	s.AddTool(del, th.handleDelete)
	return nil
}

func (th *TranscriptHandler) handleIngest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title := optString(req, "title")

	start := time.Now()
	tr, err := th.client.IngestTranscript(ctx, client.IngestRequest{Text: text, Title: title})
	if err != nil {
		log.Error().Err(err).Int("text_len", len(text)).Dur("elapsed", time.Since(start)).Msg("ingest_transcript failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to ingest transcript: %v", err)), nil
	}
	log.Debug().Str("transcript_id", tr.ID).Int("chunks", tr.ChunkCount).Dur("elapsed", time.Since(start)).Msg("ingest_transcript completed")
	return jsonResult(map[string]any{
		"transcriptId": tr.ID,
		"title":        tr.Title,
		"chunkCount":   tr.ChunkCount,
		"createdAt":    tr.CreatedAt,
	})
}

func (th *TranscriptHandler) handleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := optInt(req, "limit", 20)
	if limit < 1 || limit > maxToolLimit {
		limit = 20
	}
	out, err := th.client.ListTranscripts(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list transcripts: %v", err)), nil
	}
	// omit full text; callers fetch a summary or report instead
	rows := make([]map[string]any, 0, len(out))
	for _, tr := range out {
		rows = append(rows, map[string]any{
			"transcriptId": tr.ID,
			"title":        tr.Title,
			"chunkCount":   tr.ChunkCount,
			"createdAt":    tr.CreatedAt,
		})
	}
	return jsonResult(map[string]any{"transcripts": rows, "count": len(rows)})
}

func (th *TranscriptHandler) handleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("transcript_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := th.client.DeleteTranscript(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete transcript: %v", err)), nil
	}
	return mcp.NewToolResultText("deleted"), nil
}
