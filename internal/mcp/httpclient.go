package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claude/freeplans/internal/models"
	"github.com/claude/freeplans/internal/storage"
)

// HTTPClient implements DataSource by calling the FreePlans REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("httpclient: %s: %w", path, storage.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func limitParams(limit int) url.Values {
	v := url.Values{}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	return v
}

func (c *HTTPClient) ListTemplates(ctx context.Context, _, limit int) ([]models.TemplateSummary, error) {
	body, err := c.get(ctx, "/api/v1/programs", limitParams(limit))
	if err != nil {
		return nil, err
	}

	var templates []models.TemplateSummary
	if err := json.Unmarshal(body, &templates); err != nil {
		return nil, fmt.Errorf("httpclient: decode templates: %w", err)
	}
	return templates, nil
}

func (c *HTTPClient) GetTemplate(ctx context.Context, _ int, id uuid.UUID) (*models.WorkoutTemplate, error) {
	body, err := c.get(ctx, "/api/v1/programs/"+id.String(), nil)
	if err != nil {
		return nil, err
	}

	var tpl models.WorkoutTemplate
	if err := json.Unmarshal(body, &tpl); err != nil {
		return nil, fmt.Errorf("httpclient: decode template: %w", err)
	}
	return &tpl, nil
}

func (c *HTTPClient) QueryImportLogs(ctx context.Context, _, limit int) ([]storage.ImportLog, error) {
	body, err := c.get(ctx, "/api/v1/imports", limitParams(limit))
	if err != nil {
		return nil, err
	}

	var logs []storage.ImportLog
	if err := json.Unmarshal(body, &logs); err != nil {
		return nil, fmt.Errorf("httpclient: decode import logs: %w", err)
	}
	return logs, nil
}
