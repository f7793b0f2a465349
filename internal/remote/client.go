package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/askwhyharsh/geohunt/internal/role"
	"github.com/askwhyharsh/geohunt/internal/store"
	apperrors "github.com/askwhyharsh/geohunt/pkg/errors"
)

// Client talks to the coordinate server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client. timeout bounds every request, including Watch's
// handshake.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Put replaces the record stored for r.
func (c *Client) Put(ctx context.Context, r role.Role, rec store.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.coordinatesURL(r), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: put %s: %v", apperrors.ErrRemoteUnavailable, r, err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: put %s returned status %d", apperrors.ErrRemoteUnavailable, r, resp.StatusCode)
	}
	return nil
}

// Get fetches the record for r. A role nobody has written yet is not an
// error: Get returns nil, nil.
func (c *Client) Get(ctx context.Context, r role.Role) (*store.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.coordinatesURL(r), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", apperrors.ErrRemoteUnavailable, r, err)
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: get %s returned status %d", apperrors.ErrRemoteUnavailable, r, resp.StatusCode)
	}

	var rec store.Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", apperrors.ErrRemoteUnavailable, r, err)
	}
	return &rec, nil
}

// Health checks if the coordinate server is reachable.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: health: %v", apperrors.ErrRemoteUnavailable, err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health returned status %d", apperrors.ErrRemoteUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *Client) coordinatesURL(r role.Role) string {
	return c.baseURL + "/coordinates/" + r.String()
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
