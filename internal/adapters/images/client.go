// internal/adapters/images/client.go
package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"appraiser_directory/internal/adapters/observability"
)

// Client checks image URLs with HEAD requests. It never retries; callers
// treat any error as a missing image.
type Client struct {
	hc *http.Client
	rl *rate.Limiter // nil means unlimited
}

// New builds a Client with a fixed per-request timeout. rps <= 0 disables
// client-side rate limiting.
func New(timeout time.Duration, rps int) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{hc: &http.Client{Timeout: timeout}}
	if rps > 0 {
		c.rl = rate.NewLimiter(rate.Limit(rps), rps)
	}
	return c
}

// Exists reports whether url answers a HEAD request with a 2xx status.
func (c *Client) Exists(ctx context.Context, url string) (bool, error) {
	if c.rl != nil {
		if err := c.rl.Wait(ctx); err != nil {
			return false, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", "appraiser-directory/1.0 (image-coverage)")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("images", "head", 0, time.Since(start))
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	observability.ObserveExternal("images", "head", resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return true, nil
	}
	return false, fmt.Errorf("bad status %d", resp.StatusCode)
}
