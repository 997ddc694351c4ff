// Package openai generates text through an OpenAI-compatible
// /chat/completions endpoint (OpenAI, Groq, vLLM, LM Studio).
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/generation"
)

const systemPrompt = "You are an assistant that summarizes meeting transcripts accurately and concisely."

type Generator struct {
	client *resty.Client
	model  string
	opts   generation.Options
}

func New(baseURL, apiKey, model string, opts generation.Options, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if apiKey != "" {
		c.SetAuthToken(apiKey)
	}
	return &Generator{client: c, model: model, opts: opts}
}

func (g *Generator) Model() string { return g.model }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	TopP           float64         `json:"top_p,omitempty"`
	Stop           []string        `json:"stop,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (g *Generator) Generate(ctx context.Context, prompt string, hint generation.SchemaHint) (string, error) {
	system := systemPrompt
	req := chatRequest{
		Model:       g.model,
		Temperature: g.opts.Temperature,
		MaxTokens:   g.opts.MaxTokens,
		TopP:        g.opts.TopP,
		Stop:        g.opts.Stop,
	}
	if hint.Structured() {
		system += " " + hint.Describe()
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	req.Messages = []message{
		{Role: "system", Content: system},
		{Role: "user", Content: prompt},
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(&req).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(resp.Body(), &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("chat status %d: %s", resp.StatusCode(), apiErr.Error.Message)
		}
		return "", fmt.Errorf("chat status %d", resp.StatusCode())
	}
	var out chatResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat response carried no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// HealthPing implements health.HealthPinger via GET /models.
func (g *Generator) HealthPing(ctx context.Context) error {
	resp, err := g.client.R().SetContext(ctx).Get("/models")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("models status %d", resp.StatusCode())
	}
	return nil
}
