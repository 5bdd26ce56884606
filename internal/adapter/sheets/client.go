// Package sheets fetches the published spreadsheet CSV export the service
// refreshes from.
package sheets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/crashdeck/crash-data-service/internal/adapter/csvio"
	"github.com/crashdeck/crash-data-service/internal/domain"
)

// Client fetches a crash-report table from a published sheet export URL over
// HTTP GET. The client timeout bounds every fetch; a slow or unreachable
// source fails the refresh rather than blocking the caller.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a sheet fetch client for the configured export URL.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchTable downloads and decodes the sheet export into a raw table.
func (c *Client) FetchTable(ctx context.Context) (domain.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return domain.Table{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Table{}, fmt.Errorf("fetch sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Table{}, fmt.Errorf("sheet export error: status %d: %s", resp.StatusCode, body)
	}

	table, err := csvio.Decode(resp.Body)
	if err != nil {
		return domain.Table{}, fmt.Errorf("decode sheet export: %w", err)
	}

	c.logger.Debug("sheet fetched",
		"rows", len(table.Rows),
		"columns", len(table.Columns),
		"duration", time.Since(start),
	)
	return table, nil
}
