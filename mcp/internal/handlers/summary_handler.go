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

// SummaryHandler exposes summarize_meeting, query_history and get_meeting_report.
type SummaryHandler struct {
	client *client.Client
}

func NewSummaryHandler(c *client.Client) *SummaryHandler {
	return &SummaryHandler{client: c}
}

func (sh *SummaryHandler) RegisterTools(s *server.MCPServer) error {
	summarize := mcp.NewTool("summarize_meeting",
		mcp.WithDescription("Summarize an ingested transcript. Returns the summary, action items, decisions and key points, plus the chunk ids the summary was grounded on."),
		mcp.WithString("transcript_id", mcp.Required(), mcp.Description("The transcript id returned by ingest_transcript")),
		mcp.WithString("query", mcp.Description("Optional focus question, e.g. 'what was decided about pricing?'")),
	)
	s.AddTool(summarize, sh.handleSummarize)

	history := mcp.NewTool("query_history",
		mcp.WithDescription("List stored summaries, newest first, optionally filtered by transcript and time window"),
		mcp.WithString("transcript_id", mcp.Description("Only summaries of this transcript")),
		mcp.WithString("since", mcp.Description("Inclusive RFC3339 lower bound")),
		mcp.WithString("until", mcp.Description("Inclusive RFC3339 upper bound")),
		mcp.WithNumber("limit", mcp.Description("Max rows (1-50), default 10")),
	)
	s.AddTool(history, sh.handleHistory)

	report := mcp.NewTool("get_meeting_report",
		mcp.WithDescription("Render the plain-text report for a stored summary"),
		mcp.WithString("summary_id", mcp.Required(), mcp.Description("The summary id")),
	)
	s.AddTool(report, sh.handleReport)
	return nil
}

func (sh *SummaryHandler) handleSummarize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("transcript_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	start := time.Now()
	s, err := sh.client.Summarize(ctx, id, optString(req, "query"))
	if err != nil {
		log.Error().Err(err).Str("transcript_id", id).Dur("elapsed", time.Since(start)).Msg("summarize_meeting failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to summarize meeting: %v", err)), nil
	}
	log.Debug().Str("summary_id", s.ID).Int("attempts", s.Attempts).Dur("elapsed", time.Since(start)).Msg("summarize_meeting completed")
	return jsonResult(s)
}

func (sh *SummaryHandler) handleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := client.HistoryQuery{TranscriptID: optString(req, "transcript_id"), Limit: optInt(req, "limit", 10)}
	if q.Limit < 1 || q.Limit > maxToolLimit {
		q.Limit = 10
	}
	var err error
	if q.Since, err = optTime(req, "since"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if q.Until, err = optTime(req, "until"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := sh.client.QueryHistory(ctx, q)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to query history: %v", err)), nil
	}
	return jsonResult(map[string]any{"summaries": out, "count": len(out)})
}

func (sh *SummaryHandler) handleReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("summary_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report, err := sh.client.GetReport(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get report: %v", err)), nil
	}
	return mcp.NewToolResultText(report), nil
}
