// Package ai provides the optional portfolio analysis via an
// OpenAI-compatible chat-completions API.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"cryptobot/internal/domain"
	"cryptobot/internal/report"
)

const (
	defaultAPIBase = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 30 * time.Second
)

// instruction is the fixed analysis prompt. The full normalized batch is
// attached as JSON; the model's reply is forwarded to the user verbatim.
const instruction = `You are a portfolio analyst. Below is a JSON snapshot of a
crypto portfolio: one object per position with its current profit,
capitalization, turnover, deposit share, average and current price. Fields may
hold "N/A" when the source database has no value. Write a short plain-text
analysis: overall state, the strongest and weakest positions, anything that
looks off. No markdown.`

// Summarizer sends normalized records to a chat-completions endpoint.
type Summarizer struct {
	apiKey  string
	apiBase string
	model   string
	client  *http.Client
	logger  *slog.Logger
}

type Config struct {
	APIKey  string
	APIBase string
	Model   string
	Timeout time.Duration
	Logger  *slog.Logger
}

func NewSummarizer(cfg Config) *Summarizer {
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Summarizer{
		apiKey:  cfg.APIKey,
		apiBase: cfg.APIBase,
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  cfg.Logger,
	}
}

// Enabled reports whether a key was configured. The AI report action is
// hidden from menus when it is not.
func (s *Summarizer) Enabled() bool { return s != nil && s.apiKey != "" }

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Summarize submits the batch with the fixed instruction and returns the
// model's text. One attempt, no retries; a timeout is an ordinary failure.
func (s *Summarizer) Summarize(ctx context.Context, records []report.AccountRecord) (string, error) {
	snapshot := make([]map[string]string, len(records))
	for i, r := range records {
		row := map[string]string{"name": r.Name}
		for _, f := range r.Fields() {
			row[f.Label] = f.Value.String()
		}
		snapshot[i] = row
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: instruction},
			{Role: "user", Content: string(data)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiBase+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: ai request: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read ai response: %v", domain.ErrTransport, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &domain.RemoteError{Vendor: "ai", Status: resp.StatusCode, Body: truncate(string(raw), 200)}
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return "", fmt.Errorf("%w: ai response: %v", domain.ErrMalformedPayload, err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("%w: ai response has no choices", domain.ErrMalformedPayload)
	}

	s.logger.Debug("ai summary generated", "records", len(records), "len", len(cr.Choices[0].Message.Content))
	return cr.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
