// Package remote talks to another ironprogress instance over HTTP.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/ironprogress/internal/models"
	"github.com/claude/ironprogress/internal/transfer"
)

const exportPath = "/api/v1/export.json"

// maxExportBytes caps how much of a remote export is read.
const maxExportBytes = 64 << 20

// ErrExportTooLarge is returned when a remote export exceeds the size cap.
var ErrExportTooLarge = errors.New("remote export too large")

// Client fetches backups from a remote ironprogress server.
type Client struct {
	serverURL  string
	httpClient *http.Client
	backoff    time.Duration
	maxBytes   int64
}

// NewClient creates a client for the server at serverURL. A URL ending in
// .json is used as the export location as is.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff:  time.Second,
		maxBytes: maxExportBytes,
	}
}

func (c *Client) exportURL() string {
	if strings.HasSuffix(c.serverURL, ".json") {
		return c.serverURL
	}
	return c.serverURL + exportPath
}

// FetchExport downloads the remote structured export and validates it like
// any imported file. Transport failures and 5xx responses are retried up to
// 3 times with exponential backoff.
func (c *Client) FetchExport(ctx context.Context) ([]models.WorkoutSession, error) {
	url := c.exportURL()

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff * time.Duration(1<<uint(attempt-1))):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		data, retry, err := c.get(ctx, url)
		if err == nil {
			return transfer.ParseSessions(data)
		}
		if !retry {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}

// get returns the body of a 200 response, or an error and whether it is
// worth retrying.
func (c *Client) get(ctx context.Context, url string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("building export request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("fetching export: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, true, fmt.Errorf("reading export: %w", err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, false, fmt.Errorf("%w: more than %d bytes", ErrExportTooLarge, c.maxBytes)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode >= 500, fmt.Errorf("export request failed (status %d): %s", resp.StatusCode, truncate(body, 200))
	}
	return body, false, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
