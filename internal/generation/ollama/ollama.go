// Package ollama generates text with a local Ollama server.
package ollama

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

// Generator calls POST /api/generate without streaming.
type Generator struct {
	client *resty.Client
	model  string
	opts   generation.Options
}

func New(baseURL, model string, opts generation.Options, timeout time.Duration) *Generator {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &Generator{client: c, model: model, opts: opts}
}

// Model returns the configured model name.
func (g *Generator) Model() string { return g.model }

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Format  string         `json:"format,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

func (g *Generator) Generate(ctx context.Context, prompt string, hint generation.SchemaHint) (string, error) {
	req := generateRequest{
		Model:  g.model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]any{
			"temperature": g.opts.Temperature,
			"num_predict": g.opts.MaxTokens,
			"top_k":       g.opts.TopK,
			"top_p":       g.opts.TopP,
		},
	}
	if len(g.opts.Stop) > 0 {
		req.Options["stop"] = g.opts.Stop
	}
	if hint.Structured() {
		req.Format = "json"
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(&req).
		Post("/api/generate")
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	var out generateResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil && resp.StatusCode() == http.StatusOK {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		if out.Error != "" {
			return "", fmt.Errorf("ollama generate status %d: %s", resp.StatusCode(), out.Error)
		}
		return "", fmt.Errorf("ollama generate status %d", resp.StatusCode())
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama generate: %s", out.Error)
	}
	return strings.TrimSpace(out.Response), nil
}

// HealthPing implements health.HealthPinger: the model must be pulled.
func (g *Generator) HealthPing(ctx context.Context) error {
	var data struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	resp, err := g.client.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("ollama status %d", resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return err
	}
	want := strings.SplitN(g.model, ":", 2)[0]
	for _, m := range data.Models {
		if strings.SplitN(m.Name, ":", 2)[0] == want {
			return nil
		}
	}
	return fmt.Errorf("model %s not found; run `ollama pull %s`", want, g.model)
}
