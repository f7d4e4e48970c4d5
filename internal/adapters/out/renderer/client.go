// Package renderer is the HTTP client of the external label renderer, which
// turns a printer description into one PDF page.
package renderer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/retry"
)

// maxPageBytes bounds a rendered page read into memory.
const maxPageBytes = 10 << 20

// Client implements ports.LabelRenderer.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a client posting to endpoint, e.g.
// http://api.labelary.com/v1/printers/8dpmm/labels/4x6/. Every call is bounded
// by timeout.
func NewClient(endpoint string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errs.NewValueIsInvalidErrorWithCause("renderer url", fmt.Errorf("%q is not absolute", endpoint))
	}
	if timeout <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("renderer timeout", timeout, "> 0", "unbounded")
	}

	return &Client{endpoint: u.String(), http: &http.Client{Timeout: timeout}}, nil
}

// Render posts the description and returns the PDF page.
//
// A 429 answer yields an error matching both ports.ErrRenderRateLimited and
// retry.ErrRateLimited; any other non-200 answer yields ports.ErrRenderFailed.
func (c *Client) Render(ctx context.Context, description string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBufferString(description))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/pdf")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %w", ports.ErrRenderRateLimited, retry.ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ports.ErrRenderFailed, resp.StatusCode)
	}

	page, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, err
	}
	if len(page) == 0 {
		return nil, fmt.Errorf("%w: empty page", ports.ErrRenderFailed)
	}
	return page, nil
}
