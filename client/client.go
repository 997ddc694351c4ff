// Package client is the Go SDK for the meeting summary service.
package client

import (
	"context"
	"io"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/priyanshu10cruzo/ai-meeting-summary/client/internal/api"
)

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

type Client struct {
	baseURL string
	http    *resty.Client
	t       *api.Transport
}

// New constructs a Client for the service at baseURL. It panics on an empty
// URL or when an option rejects its argument.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		panic("baseURL cannot be empty")
	}
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(2*time.Minute).
		SetHeader("Accept", "application/json")
	c := &Client{
		baseURL: baseURL,
		http:    rc,
		t: &api.Transport{
			HTTP:       rc,
			MaxRetries: 3,
			Backoff:    200 * time.Millisecond,
			OnRetry:    func(op string) { retriesTotal.WithLabelValues(op).Inc() },
		},
	}

	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			panic(err)
		}
	}
	return c
}

// BaseURL returns the service address the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// --------------------------------------------------------------------
// Transcript operations
// --------------------------------------------------------------------

// IngestTranscript chunks, embeds and stores transcript text.
func (c *Client) IngestTranscript(ctx context.Context, req IngestRequest) (*Transcript, error) {
	out, err := api.IngestTranscript(ctx, c.t, req)
	observe("ingest_transcript", err)
	return out, err
}

// UploadAudio transcribes an audio file server side and ingests the text.
func (c *Client) UploadAudio(ctx context.Context, filename string, audio io.Reader, title string) (*Transcript, error) {
	out, err := api.UploadAudio(ctx, c.t, filename, audio, title)
	observe("upload_audio", err)
	return out, err
}

func (c *Client) ListTranscripts(ctx context.Context, limit int) ([]Transcript, error) {
	out, err := api.ListTranscripts(ctx, c.t, limit)
	observe("list_transcripts", err)
	return out, err
}

func (c *Client) GetTranscript(ctx context.Context, transcriptID string) (*Transcript, error) {
	out, err := api.GetTranscript(ctx, c.t, transcriptID)
	observe("get_transcript", err)
	return out, err
}

// DeleteTranscript removes a transcript, its indexed chunks and its summaries.
func (c *Client) DeleteTranscript(ctx context.Context, transcriptID string) error {
	err := api.DeleteTranscript(ctx, c.t, transcriptID)
	observe("delete_transcript", err)
	return err
}

// --------------------------------------------------------------------
// Summary operations
// --------------------------------------------------------------------

// Summarize produces and stores a new summary of the transcript. An empty
// query uses the server's default summarization task.
func (c *Client) Summarize(ctx context.Context, transcriptID, query string) (*Summary, error) {
	out, err := api.Summarize(ctx, c.t, transcriptID, SummarizeRequest{Query: query})
	observe("summarize", err)
	return out, err
}

// QueryHistory lists stored summaries matching q, newest first.
func (c *Client) QueryHistory(ctx context.Context, q HistoryQuery) ([]Summary, error) {
	out, err := api.ListSummaries(ctx, c.t, q)
	observe("query_history", err)
	return out, err
}

func (c *Client) GetSummary(ctx context.Context, summaryID string) (*Summary, error) {
	out, err := api.GetSummary(ctx, c.t, summaryID)
	observe("get_summary", err)
	return out, err
}

// GetReport returns the printable text report for a summary.
func (c *Client) GetReport(ctx context.Context, summaryID string) (string, error) {
	out, err := api.GetReport(ctx, c.t, summaryID)
	observe("get_report", err)
	return out, err
}

// --------------------------------------------------------------------
// Search and health
// --------------------------------------------------------------------

func (c *Client) Search(ctx context.Context, req SearchRequest) ([]SearchHit, error) {
	out, err := api.Search(ctx, c.t, req)
	observe("search", err)
	return out, err
}

func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	return api.GetHealth(ctx, c.t)
}
