package notion

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
	defaultBaseURL = "https://api.notion.com"
	apiVersion     = "2022-06-28"

	// maxPageSize is the vendor's hard cap on results per query call.
	maxPageSize = 100

	defaultTimeout = 10 * time.Second
)

// Client queries a single Notion database.
type Client struct {
	token      string
	databaseID string
	baseURL    string
	client     *http.Client
	logger     *slog.Logger
}

type Config struct {
	Token      string
	DatabaseID string
	BaseURL    string // override for tests
	Timeout    time.Duration
	Logger     *slog.Logger
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
		token:      cfg.Token,
		databaseID: cfg.DatabaseID,
		baseURL:    cfg.BaseURL,
		client:     &http.Client{Timeout: cfg.Timeout},
		logger:     cfg.Logger,
	}
}

type queryRequest struct {
	PageSize    int             `json:"page_size"`
	StartCursor string          `json:"start_cursor,omitempty"`
	Filter      json.RawMessage `json:"filter,omitempty"`
}

type queryResponse struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// QueryAll fetches every page of the database, following the continuation
// cursor until the vendor reports no more results. Remote order is preserved.
// Any failure discards pages already fetched; there is no partial success.
func (c *Client) QueryAll(ctx context.Context, filter json.RawMessage) ([]Page, error) {
	var (
		pages  []Page
		cursor string
		calls  int
	)
	for {
		resp, err := c.query(ctx, queryRequest{
			PageSize:    maxPageSize,
			StartCursor: cursor,
			Filter:      filter,
		})
		if err != nil {
			return nil, err
		}
		calls++
		pages = append(pages, resp.Results...)
		if !resp.HasMore {
			break
		}
		if resp.NextCursor == "" {
			return nil, fmt.Errorf("%w: has_more with empty next_cursor", domain.ErrMalformedPayload)
		}
		cursor = resp.NextCursor
	}
	c.logger.Debug("notion query complete", "pages", len(pages), "calls", calls)
	return pages, nil
}

// CheckConnection probes the database with a single page_size=1 query. It is
// a reachability check, deliberately outside the QueryAll pagination contract.
func (c *Client) CheckConnection(ctx context.Context) error {
	_, err := c.query(ctx, queryRequest{PageSize: 1})
	return err
}

func (c *Client) query(ctx context.Context, q queryRequest) (*queryResponse, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	url := fmt.Sprintf("%s/v1/databases/%s/query", c.baseURL, c.databaseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: notion query: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read notion response: %v", domain.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("notion rejected query", "status", resp.StatusCode, "body", truncate(string(data), 300))
		return nil, &domain.RemoteError{Vendor: "notion", Status: resp.StatusCode, Body: truncate(string(data), 300)}
	}

	var qr queryResponse
	if err := json.Unmarshal(data, &qr); err != nil {
		return nil, fmt.Errorf("%w: notion response: %v", domain.ErrMalformedPayload, err)
	}
	return &qr, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
