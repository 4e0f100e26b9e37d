package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// ClientError is a transport-level failure: the request never produced a
// well-formed HTTP response. Status carries the last observed code when one
// exists (retries exhausted on 5xx).
type ClientError struct {
	Status       int
	StatusText   string
	NetworkError bool
	TimeoutError bool
	Err          error
}

func (e *ClientError) Error() string {
	switch {
	case e.TimeoutError:
		return fmt.Sprintf("http client timeout: %v", e.Err)
	case e.NetworkError:
		return fmt.Sprintf("http client network failure: %v", e.Err)
	default:
		return fmt.Sprintf("http client error (status %d %s): %v", e.Status, e.StatusText, e.Err)
	}
}

func (e *ClientError) Unwrap() error { return e.Err }

// StatusError marks a response status the caller decided to treat as a
// failure. The client itself never returns it; strategies construct it so
// the retry engine can tell 4xx from 5xx.
type StatusError struct {
	Code       int
	StatusText string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d %s", e.Code, e.StatusText)
}

// Response is the outcome of a well-formed HTTP exchange. Success reflects
// the status class only; callers inspect it rather than an error. Data is
// the JSON-decoded body when the body parses, otherwise the raw text.
type Response struct {
	Status  int
	Headers http.Header
	Data    any
	Body    []byte
	Success bool
}

// DataArray returns the body as a JSON array, either directly or under the
// first matching wrapper key.
func (r *Response) DataArray(keys ...string) ([]any, bool) {
	if arr, ok := r.Data.([]any); ok {
		return arr, true
	}
	obj, ok := r.Data.(map[string]any)
	if !ok {
		return nil, false
	}
	for _, key := range keys {
		if arr, ok := obj[key].([]any); ok {
			return arr, true
		}
	}
	return nil, false
}

// Client performs HTTP requests with header injection, per-request timeout,
// and transparent retries on transient transport faults and 5xx responses.
type Client struct {
	inner   *http.Client
	retryer *Retryer
	headers map[string]string
}

func NewClient(timeout time.Duration, retry RetryConfig, defaultHeaders map[string]string) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		inner:   &http.Client{Timeout: timeout},
		retryer: NewRetryer(retry),
		headers: defaultHeaders,
	}
}

func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodGet, rawURL, nil, headers)
}

func (c *Client) Post(ctx context.Context, rawURL string, body any, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodPost, rawURL, body, headers)
}

func (c *Client) Put(ctx context.Context, rawURL string, body any, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodPut, rawURL, body, headers)
}

func (c *Client) Delete(ctx context.Context, rawURL string, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, rawURL, nil, headers)
}

func (c *Client) do(ctx context.Context, method, rawURL string, body any, headers map[string]string) (*Response, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	var resp *Response
	err := c.retryer.Execute(ctx, func(ctx context.Context) error {
		// Only the latest attempt's response may survive; a stale 5xx from
		// an earlier attempt must not mask a final transport failure.
		resp = nil
		r, err := c.doOnce(ctx, method, rawURL, body, headers)
		if err != nil {
			return err
		}
		resp = r
		if r.Status >= 500 {
			// Surfaced as an error only inside the retry loop; the final
			// response is still handed back to the caller.
			return &StatusError{Code: r.Status, StatusText: http.StatusText(r.Status)}
		}
		return nil
	})
	if resp != nil {
		return resp, nil
	}
	return nil, err
}

func (c *Client) doOnce(ctx context.Context, method, rawURL string, body any, headers map[string]string) (*Response, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.inner.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ClientError{NetworkError: true, Err: fmt.Errorf("read body: %w", err)}
	}

	out := &Response{
		Status:  resp.StatusCode,
		Headers: resp.Header,
		Body:    raw,
		Success: resp.StatusCode >= 200 && resp.StatusCode < 300,
	}
	// A body that is not JSON is not a transport failure; keep the text.
	var decoded any
	if len(raw) > 0 && json.Unmarshal(raw, &decoded) == nil {
		out.Data = decoded
	} else {
		out.Data = string(raw)
	}
	return out, nil
}

func classifyTransport(err error) *ClientError {
	ce := &ClientError{NetworkError: true, Err: err}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		ce.TimeoutError = true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		ce.TimeoutError = true
	}
	return ce
}
