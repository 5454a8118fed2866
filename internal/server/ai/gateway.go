// Package ai rewrites text through an OpenAI-compatible chat completion API.
// Without an API key it returns a deterministic mock so the rest of the
// system keeps working in development.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/config"
	"github.com/dmitrijs2005/gophnotes/internal/server/metrics"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// PlaceholderAPIKey is the value shipped in sample .env files; it counts as
// "not configured".
const PlaceholderAPIKey = "your_openai_api_key_here"

const (
	temperature = 0.7
	maxTokens   = 500
)

// DefaultTimeout bounds a provider call when no positive timeout is configured.
const DefaultTimeout = 30 * time.Second

// MockOutput is the text returned for mode and text when no provider is configured.
func MockOutput(mode models.Mode, text string) string {
	return fmt.Sprintf("[MOCK AI OUTPUT for %s]: %s (This is a simulated response because the AI API key is not configured.)", mode, text)
}

type Gateway struct {
	apiKey  string
	baseURL string
	model   string
	timeout time.Duration

	client  *http.Client
	log     logging.Logger
	metrics *metrics.Metrics
}

type Option func(*Gateway)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.client = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

func NewGateway(cfg *config.Config, log logging.Logger, opts ...Option) *Gateway {
	timeout := cfg.AITimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	g := &Gateway{
		apiKey:  strings.TrimSpace(cfg.AIAPIKey),
		baseURL: strings.TrimRight(cfg.AIBaseURL, "/"),
		model:   cfg.AIModel,
		timeout: timeout,
		client:  &http.Client{},
		log:     log,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Configured reports whether a real provider will be called.
func (g *Gateway) Configured() bool {
	return g.apiKey != "" && g.apiKey != PlaceholderAPIKey
}

// Process rewrites text according to mode. Unknown modes use the default
// mode. Provider failures are logged and reported as
// common.ErrUpstreamUnavailable.
func (g *Gateway) Process(ctx context.Context, text string, mode models.Mode) (string, error) {
	mode = models.ParseMode(string(mode))

	if !g.Configured() {
		g.log.Warn(ctx, "using mock AI response, no API key configured", "mode", mode)
		g.metrics.ObserveAI(string(mode), metrics.OutcomeMock, 0)
		return MockOutput(mode, text), nil
	}

	ctx, span := tracing.StartSpan(ctx, "ai.Process", attribute.String("ai.mode", string(mode)))
	defer span.End()

	start := time.Now()
	out, err := g.complete(ctx, SystemPrompt(mode), text)
	elapsed := time.Since(start)
	if err != nil {
		g.metrics.ObserveAI(string(mode), metrics.OutcomeError, elapsed)
		g.log.Error(ctx, "AI provider call failed", "mode", mode, "error", err, "elapsed", elapsed)
		return "", tracing.RecordError(span, fmt.Errorf("%w: %v", common.ErrUpstreamUnavailable, err))
	}
	g.metrics.ObserveAI(string(mode), metrics.OutcomeOK, elapsed)
	return out, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (g *Gateway) complete(ctx context.Context, system, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	payload, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: text},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("provider returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("provider returned no choices")
	}
	return strings.TrimSpace(cr.Choices[0].Message.Content), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
