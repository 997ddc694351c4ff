package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/priyanshu10cruzo/ai-meeting-summary/client/internal/types"
)

// Summarize runs the retrieval and generation pipeline for one transcript.
// It is never retried: each run persists a new summary.
func Summarize(ctx context.Context, t *Transport, transcriptID string, req types.SummarizeRequest) (*types.Summary, error) {
	if err := types.ValidateIDPresent(transcriptID, "transcriptId"); err != nil {
		return nil, err
	}
	resp, err := t.do(ctx, call{
		op: "summarize",
		ok: []int{http.StatusCreated},
		send: func(r *resty.Request) (*resty.Response, error) {
			return r.SetPathParam("transcriptId", transcriptID).SetBody(req).Post("/api/transcripts/{transcriptId}/summaries")
		},
	})
	if err != nil {
		return nil, err
	}
	return decode[types.Summary](resp, "summarize")
}

// ListSummaries queries summary history, newest first.
func ListSummaries(ctx context.Context, t *Transport, q types.HistoryQuery) ([]types.Summary, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	params := map[string]string{}
	if q.TranscriptID != "" {
		params["transcriptId"] = q.TranscriptID
	}
	if !q.Since.IsZero() {
		params["since"] = q.Since.UTC().Format(time.RFC3339Nano)
	}
	if !q.Until.IsZero() {
		params["until"] = q.Until.UTC().Format(time.RFC3339Nano)
	}
	if q.Limit > 0 {
		params["limit"] = strconv.Itoa(q.Limit)
	}
	resp, err := t.do(ctx, call{
		op:         "list summaries",
		idempotent: true,
		ok:         []int{http.StatusOK},
		send: func(r *resty.Request) (*resty.Response, error) {
			return r.SetQueryParams(params).Get("/api/summaries")
		},
	})
	if err != nil {
		return nil, err
	}
	out, err := decode[types.ListSummariesResponse](resp, "list summaries")
	if err != nil {
		return nil, err
	}
	return out.Summaries, nil
}

func GetSummary(ctx context.Context, t *Transport, summaryID string) (*types.Summary, error) {
	if err := types.ValidateIDPresent(summaryID, "summaryId"); err != nil {
		return nil, err
	}
	resp, err := t.do(ctx, call{
		op:         "get summary",
		idempotent: true,
		ok:         []int{http.StatusOK},
		send: func(r *resty.Request) (*resty.Response, error) {
			return r.SetPathParam("summaryId", summaryID).Get("/api/summaries/{summaryId}")
		},
	})
	if err != nil {
		return nil, err
	}
	return decode[types.Summary](resp, "get summary")
}

// GetReport fetches the plain-text report for a summary.
func GetReport(ctx context.Context, t *Transport, summaryID string) (string, error) {
	if err := types.ValidateIDPresent(summaryID, "summaryId"); err != nil {
		return "", err
	}
	resp, err := t.do(ctx, call{
		op:         "get report",
		idempotent: true,
		ok:         []int{http.StatusOK},
		send: func(r *resty.Request) (*resty.Response, error) {
			return r.SetPathParam("summaryId", summaryID).Get("/api/summaries/{summaryId}/report")
		},
	})
	if err != nil {
		return "", err
	}
	return string(resp.Body()), nil
}
