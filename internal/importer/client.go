package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/freeplans/internal/ingest"
	"github.com/claude/freeplans/internal/models"
)

// Client sends documents to a FreePlans server over HTTP. It satisfies
// Ingester, so a directory can be imported into a remote server.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	attempts   int
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the FreePlans server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		attempts: 3,
		backoff:  time.Second,
	}
}

type importResponse struct {
	Result   *ingest.Result          `json:"result"`
	Template *models.WorkoutTemplate `json:"template"`
}

// IngestDocument POSTs a document to the server's import endpoint.
// Retries up to 3 times with exponential backoff on transport errors and 5xx answers.
// The user is determined by the server; userID is ignored.
func (c *Client) IngestDocument(ctx context.Context, name string, r io.Reader, _ int) (*ingest.Result, *models.WorkoutTemplate, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", name, err)
	}
	endpoint := c.serverURL + "/api/v1/programs/import?name=" + url.QueryEscape(name)

	var lastErr error
	for attempt := range c.attempts {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(c.backoff << uint(attempt-1)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
		if err != nil {
			return nil, nil, fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Content-Type", "application/octet-stream")
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
			var out importResponse
			if err := json.Unmarshal(body, &out); err != nil {
				return nil, nil, fmt.Errorf("decoding import response: %w", err)
			}
			if out.Result == nil {
				return nil, nil, fmt.Errorf("import response has no result")
			}
			return out.Result, out.Template, nil
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("import failed (status %d): %s", resp.StatusCode, body)
		default:
			return nil, nil, fmt.Errorf("import rejected (status %d): %s", resp.StatusCode, body)
		}
	}

	return nil, nil, fmt.Errorf("after %d attempts: %w", c.attempts, lastErr)
}
