// Package viber implements the outbound half of the Viber chat API: sending
// messages (optionally with a reply keyboard) and managing the webhook
// subscription.
package viber

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
)

const (
	defaultBaseURL = "https://chatapi.viber.com"
	defaultTimeout = 10 * time.Second

	// minAPIVersion is required for keyboard support.
	minAPIVersion = 4
)

// webhookEventTypes is the full event subscription this bot handles.
var webhookEventTypes = []string{
	"delivered", "seen", "failed",
	"subscribed", "unsubscribed",
	"conversation_started", "message",
}

// Client talks to the Viber REST API. It implements domain.Sender.
type Client struct {
	token   string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

type Config struct {
	Token   string
	BaseURL string // override for tests
	Timeout time.Duration
	Logger  *slog.Logger
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		token:   cfg.Token,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  cfg.Logger,
	}
}

type sendRequest struct {
	Receiver      string    `json:"receiver"`
	Type          string    `json:"type"`
	Text          string    `json:"text"`
	MinAPIVersion int       `json:"min_api_version,omitempty"`
	Keyboard      *keyboard `json:"keyboard,omitempty"`
}

type keyboard struct {
	Type    string   `json:"Type"`
	Buttons []button `json:"Buttons"`
}

type button struct {
	Text       string `json:"Text"`
	ActionType string `json:"ActionType"`
	ActionBody string `json:"ActionBody"`
	Columns    int    `json:"Columns,omitempty"`
}

type apiResponse struct {
	Status        int    `json:"status"`
	StatusMessage string `json:"status_message"`
}

// Send delivers a plain text message.
func (c *Client) Send(ctx context.Context, receiverID, text string) error {
	return c.send(ctx, sendRequest{Receiver: receiverID, Type: "text", Text: text})
}

// SendKeyboard delivers a text message with a reply keyboard attached. The
// buttons echo their ActionBody back as message text when pressed.
func (c *Client) SendKeyboard(ctx context.Context, receiverID, text string, kb domain.Keyboard) error {
	req := sendRequest{
		Receiver:      receiverID,
		Type:          "text",
		Text:          text,
		MinAPIVersion: minAPIVersion,
		Keyboard:      encodeKeyboard(kb),
	}
	return c.send(ctx, req)
}

func encodeKeyboard(kb domain.Keyboard) *keyboard {
	out := &keyboard{Type: "keyboard"}
	for _, b := range kb.Buttons {
		out.Buttons = append(out.Buttons, button{
			Text:       b.Text,
			ActionType: "reply",
			ActionBody: b.ActionBody,
			Columns:    b.Columns,
		})
	}
	return out
}

func (c *Client) send(ctx context.Context, req sendRequest) error {
	if err := c.post(ctx, "/pa/send_message", req); err != nil {
		return fmt.Errorf("viber send to %s: %w", shortID(req.Receiver), err)
	}
	c.logger.Debug("message sent", "receiver", shortID(req.Receiver), "len", len(req.Text))
	return nil
}

type setWebhookRequest struct {
	URL        string   `json:"url"`
	EventTypes []string `json:"event_types,omitempty"`
}

// SetWebhook subscribes the given public URL to webhook deliveries.
func (c *Client) SetWebhook(ctx context.Context, url string) error {
	req := setWebhookRequest{URL: url, EventTypes: webhookEventTypes}
	if err := c.post(ctx, "/pa/set_webhook", req); err != nil {
		return fmt.Errorf("viber set_webhook: %w", err)
	}
	c.logger.Info("webhook registered", "url", url)
	return nil
}

// RemoveWebhook unsubscribes the current webhook.
func (c *Client) RemoveWebhook(ctx context.Context) error {
	if err := c.post(ctx, "/pa/set_webhook", setWebhookRequest{URL: ""}); err != nil {
		return fmt.Errorf("viber remove_webhook: %w", err)
	}
	c.logger.Info("webhook removed")
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Viber-Auth-Token", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", domain.ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		return &domain.RemoteError{Vendor: "viber", Status: resp.StatusCode, Body: string(data)}
	}

	var ar apiResponse
	if err := json.Unmarshal(data, &ar); err != nil {
		return fmt.Errorf("%w: viber response: %v", domain.ErrMalformedPayload, err)
	}
	if ar.Status != 0 {
		return fmt.Errorf("%w: viber status %d: %s", domain.ErrRemoteRejected, ar.Status, ar.StatusMessage)
	}
	return nil
}

// shortID truncates a sender ID for logs; full IDs are access credentials to
// this bot and should not land in log files.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}
