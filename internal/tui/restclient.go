package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// timeout for dashboard requests
const quotaRequestTimeout = 10 * time.Second

// manages HTTP requests to the quota REST API
type QuotaClient struct {
	endpoint   string
	token      string
	httpClient *http.Client

	mu        sync.Mutex
	deviceKey string
}

// creates a new quota REST client. An unauthenticated client carries the
// device key the server mints on the first request, the same way a browser
// would, so its counters stay stable across polls.
func NewQuotaClient() *QuotaClient {
	endpoint := os.Getenv("PRINTABLEPERKS_API_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:8080"
	}

	return &QuotaClient{
		endpoint: endpoint,
		token:    os.Getenv("PRINTABLEPERKS_TOKEN"),
		httpClient: &http.Client{
			Timeout: quotaRequestTimeout,
		},
	}
}

// fetches the caller's generation stats
func (c *QuotaClient) Stats(ctx context.Context) (*StatsResponse, error) {
	var stats StatsResponse
	if err := c.get(ctx, "/api/v1/quota/stats", &stats); err != nil {
		return nil, err
	}

	return &stats, nil
}

// fetches whether the caller may generate right now
func (c *QuotaClient) Availability(ctx context.Context) (bool, error) {
	var result availabilityResponse
	if err := c.get(ctx, "/api/v1/quota/availability", &result); err != nil {
		return false, err
	}

	return result.Available, nil
}

func (c *QuotaClient) get(ctx context.Context, path string, out any) error {
	url := c.endpoint + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.mu.Lock()
	if c.deviceKey != "" {
		req.Header.Set("X-Device-Key", c.deviceKey)
	}
	c.mu.Unlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	// keep the minted device key for subsequent requests
	if key := resp.Header.Get("X-Device-Key"); key != "" {
		c.mu.Lock()
		c.deviceKey = key
		c.mu.Unlock()
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("%s: %s", errResp.Error, errResp.Message)
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

// returns a tea.Cmd that polls stats and availability together
func (c *QuotaClient) FetchCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), quotaRequestTimeout)
		defer cancel()

		stats, err := c.Stats(ctx)
		if err != nil {
			return StatsErrorMsg{err: err}
		}

		available, err := c.Availability(ctx)
		if err != nil {
			return StatsErrorMsg{err: err}
		}

		return StatsMsg{stats: stats, available: available}
	}
}
