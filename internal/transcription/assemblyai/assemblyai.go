// Package assemblyai transcribes audio with the AssemblyAI v2 REST API:
// upload, request a transcript with speaker labels, then poll until done.
package assemblyai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
)

const DefaultBaseURL = "https://api.assemblyai.com"

// Config configures the client.
type Config struct {
	APIKey  string
	BaseURL string
	// Timeout bounds a whole transcription, upload through final poll.
	Timeout time.Duration

	PollInitial time.Duration
	PollMax     time.Duration
}

// Client implements transcription.Transcriber.
type Client struct {
	http *resty.Client
	cfg  Config
	log  zerolog.Logger
}

func New(cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("assemblyai: API key not configured")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Minute
	}
	if cfg.PollInitial <= 0 {
		cfg.PollInitial = time.Second
	}
	if cfg.PollMax <= 0 {
		cfg.PollMax = 15 * time.Second
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("authorization", cfg.APIKey)
	return &Client{http: c, cfg: cfg, log: log}, nil
}

// Utterance is one speaker turn.
type Utterance struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

type transcriptResponse struct {
	ID         string      `json:"id"`
	Status     string      `json:"status"`
	Text       string      `json:"text"`
	Error      string      `json:"error"`
	Utterances []Utterance `json:"utterances"`
}

// Transcribe uploads audio and waits for the transcript.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	uploadURL, err := c.upload(ctx, audio)
	if err != nil {
		return "", c.wrap(ctx, "upload", err)
	}
	id, err := c.create(ctx, uploadURL)
	if err != nil {
		return "", c.wrap(ctx, "create", err)
	}
	c.log.Info().Str("file", filename).Str("transcript_job", id).Msg("transcription started")

	tr, err := c.poll(ctx, id)
	if err != nil {
		return "", c.wrap(ctx, "poll", err)
	}
	text := Format(tr.Utterances, tr.Text)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: transcript %s is empty", model.ErrTranscription, id)
	}
	return text, nil
}

func (c *Client) upload(ctx context.Context, audio io.Reader) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(audio).
		Post("/v2/upload")
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != http.StatusOK {
		return "", statusError(resp)
	}
	var out struct {
		UploadURL string `json:"upload_url"`
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if out.UploadURL == "" {
		return "", fmt.Errorf("upload response missing upload_url")
	}
	return out.UploadURL, nil
}

func (c *Client) create(ctx context.Context, audioURL string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{"audio_url": audioURL, "speaker_labels": true}).
		Post("/v2/transcript")
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != http.StatusOK {
		return "", statusError(resp)
	}
	var out transcriptResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("decode transcript response: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("transcript response missing id")
	}
	return out.ID, nil
}

// poll fetches the transcript with exponential backoff until it completes,
// errors, or ctx expires.
func (c *Client) poll(ctx context.Context, id string) (*transcriptResponse, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.cfg.PollInitial
	exp.Multiplier = 1.5
	exp.MaxInterval = c.cfg.PollMax
	exp.MaxElapsedTime = 0
	exp.Reset()

	var result *transcriptResponse
	op := func() error {
		resp, err := c.http.R().SetContext(ctx).Get("/v2/transcript/" + id)
		if err != nil {
			return err
		}
		if resp.StatusCode() >= 400 && resp.StatusCode() < 500 {
			return backoff.Permanent(statusError(resp))
		}
		if resp.StatusCode() != http.StatusOK {
			return statusError(resp)
		}
		var tr transcriptResponse
		if err := json.Unmarshal(resp.Body(), &tr); err != nil {
			return backoff.Permanent(fmt.Errorf("decode transcript: %w", err))
		}
		switch tr.Status {
		case "completed":
			result = &tr
			return nil
		case "error":
			return backoff.Permanent(fmt.Errorf("transcription failed: %s", tr.Error))
		default:
			return fmt.Errorf("transcript %s is %s", id, tr.Status)
		}
	}
	notify := func(err error, wait time.Duration) {
		c.log.Debug().Str("transcript_job", id).Dur("wait", wait).Str("state", err.Error()).Msg("transcription pending")
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(exp, ctx), notify); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) wrap(ctx context.Context, step string, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w: %w: transcription %s: %v", model.ErrTranscription, model.ErrBackendTimeout, step, err)
	}
	return fmt.Errorf("%w: %s: %v", model.ErrTranscription, step, err)
}

func statusError(resp *resty.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(resp.Body(), &body) == nil && body.Error != "" {
		return fmt.Errorf("assemblyai status %d: %s", resp.StatusCode(), body.Error)
	}
	return fmt.Errorf("assemblyai status %d", resp.StatusCode())
}

// Format renders utterances as "Speaker X: text" lines separated by a blank
// line, falling back to the plain text when no speaker labels were produced.
func Format(utterances []Utterance, fallback string) string {
	if len(utterances) == 0 {
		return strings.TrimSpace(fallback)
	}
	var b strings.Builder
	for i, u := range utterances {
		if i > 0 {
			b.WriteString("\n\n")
		}
		speaker := "Speaker"
		if u.Speaker != "" {
			speaker = "Speaker " + u.Speaker
		}
		b.WriteString(speaker)
		b.WriteString(": ")
		b.WriteString(strings.TrimSpace(u.Text))
	}
	return b.String()
}
