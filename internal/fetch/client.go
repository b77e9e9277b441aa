package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const userAgent = "pagepack/1.0 (+https://github.com/pagepack)"

// Result is a classified fetch outcome. NotModified carries no body;
// validators are the raw response header values (empty when absent).
type Result struct {
	StatusCode   int
	NotModified  bool
	Body         string
	ETag         string
	LastModified string
}

// FetchError is a per-URL failure: a transport error or an HTTP status ≥ 400.
type FetchError struct {
	URL string
	Msg string
}

func (e *FetchError) Error() string {
	return e.Msg
}

// Client issues conditional GETs against origin pages.
type Client struct {
	http *http.Client
}

// NewClient creates a fetch client. Timeouts are applied per call because
// each request carries its own budget.
func NewClient() *Client {
	return &Client{http: &http.Client{}}
}

// Fetch issues a GET for url with conditional headers built from the given
// validators (empty string means absent). The outcome is classified as
// NotModified (304), a body-bearing Result (2xx), or a *FetchError
// (transport failure or status ≥ 400).
func (c *Client) Fetch(ctx context.Context, url, etag, lastModified string, timeout time.Duration) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Msg: err.Error()}
	}
	req.Header.Set("User-Agent", userAgent)
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastModified != "" {
		req.Header.Set("If-Modified-Since", lastModified)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Msg: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return &Result{StatusCode: resp.StatusCode, NotModified: true}, nil
	}
	if resp.StatusCode >= 400 {
		return nil, &FetchError{URL: url, Msg: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Msg: err.Error()}
	}

	return &Result{
		StatusCode:   resp.StatusCode,
		Body:         string(body),
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
	}, nil
}
