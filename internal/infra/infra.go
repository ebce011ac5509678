// Package infra provides the shared HTTP plumbing used by every statement
// provider.
package infra

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// DefaultTimeout bounds a single request when the caller's context has no
// deadline of its own.
const DefaultTimeout = 30 * time.Second

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// Client is the resty client shared by all providers. Tests may swap it.
var Client = newClient()

func newClient() *resty.Client {
	return resty.New().
		SetTimeout(DefaultTimeout).
		SetHeader("User-Agent", DefaultUserAgent).
		SetHeader("Accept", "application/json, text/html, */*").
		SetHeader("Accept-Language", "en-US,en;q=0.9")
}

// DoGet performs a GET request with the given URL and headers, returning the
// response body. Status codes >= 400 are returned as *ErrHTTP.
// The caller is responsible for closing the returned ReadCloser.
func DoGet(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, int, error) {
	resp, err := Client.R().
		SetContext(ctx).
		SetHeaders(headers).
		Get(url)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP GET %s: %w", url, err)
	}

	if resp.StatusCode() >= 400 {
		body := resp.Body()
		if len(body) > 1024 {
			body = body[:1024]
		}
		return nil, resp.StatusCode(), &ErrHTTP{
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       string(body),
		}
	}

	return io.NopCloser(bytes.NewReader(resp.Body())), resp.StatusCode(), nil
}
