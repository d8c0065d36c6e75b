package telemetry

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"codeberg.org/mutker/gpufanbridge/internal/errors"
)

// Client issues single GET requests against the telemetry endpoint.
// It never retries; the next poll cycle is the retry.
type Client struct {
	url     *url.URL
	cfg     Config
	httpCli *http.Client
}

type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpCli = c
	}
}

func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	u, err := cfg.URL()
	if err != nil {
		return nil, err
	}

	c := &Client{
		url:     u,
		cfg:     cfg,
		httpCli: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Endpoint returns the full URL being polled
func (c *Client) Endpoint() string {
	return c.url.String()
}

// Fetch performs one bounded GET and returns the response body
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	errFactory := errors.New()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url.String(), http.NoBody)
	if err != nil {
		return nil, errFactory.Wrap(ErrFetchUnreachable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, errFactory.Wrap(classify(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused by the next cycle
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, errFactory.WithData(ErrFetchBadStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, errFactory.Wrap(classify(err), err)
	}
	if len(body) > maxBodySize {
		return nil, errFactory.WithData(ErrFetchTooLarge, fmt.Sprintf("more than %d bytes", maxBodySize))
	}

	return body, nil
}

func classify(err error) errors.ErrorCode {
	if errors.Is(err, context.Canceled) {
		return errors.ErrCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrFetchTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrFetchTimeout
	}

	return ErrFetchUnreachable
}
