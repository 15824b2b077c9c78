package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
)

// Client talks JSON to a remote shield server.
// ⭐ SSOT: 모든 HTTP 요청은 이 클라이언트를 통해서만 수행
type Client struct {
	http    *http.Client
	baseURL string
	log     *logger.Logger
	backoff backoff
}

// backoff doubles delay after every retryable attempt, capped at max.
// retries == 0 sends each request once.
type backoff struct {
	retries int
	delay   time.Duration
	max     time.Duration
}

func (b backoff) next(d time.Duration) time.Duration {
	if d *= 2; d > b.max {
		return b.max
	}
	return d
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// New creates a client for the service at baseURL
// ⭐ SSOT: http.Client 인스턴스는 여기서만 생성
func New(baseURL string, log *logger.Logger) *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log.Component("http_client"),
		backoff: backoff{retries: 3, delay: time.Second, max: 10 * time.Second},
	}
}

func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.http.Timeout = timeout
	return c
}

// WithRetry retries 5xx and 429 up to retries times, starting at delay
func (c *Client) WithRetry(retries int, delay time.Duration) *Client {
	c.backoff.retries = retries
	c.backoff.delay = delay
	return c
}

func (c *Client) DisableRetry() *Client {
	c.backoff.retries = 0
	return c
}

// GetJSON performs a GET and decodes the JSON response into dest
func (c *Client) GetJSON(ctx context.Context, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create GET request: %w", err)
	}
	return c.roundTrip(req, dest)
}

// PostJSON sends body as JSON and decodes the JSON response into dest
func (c *Client) PostJSON(ctx context.Context, path string, body, dest interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create POST request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.roundTrip(req, dest)
}

func (c *Client) roundTrip(req *http.Request, dest interface{}) error {
	started := time.Now()
	reqLog := c.log.WithFields(map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, attempts, err := c.send(req, reqLog)
	if err != nil {
		reqLog.WithError(err).WithField("attempts", attempts).Error("HTTP request failed")
		return err
	}
	defer resp.Body.Close()

	reqLog.WithFields(map[string]interface{}{
		"status_code": resp.StatusCode,
		"attempts":    attempts,
		"duration":    time.Since(started),
	}).Debug("HTTP request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// send returns the last response once it is final or retries run out.
// Request bodies are rewound through GetBody before every resend.
func (c *Client) send(req *http.Request, reqLog *logger.Logger) (*http.Response, int, error) {
	delay := c.backoff.delay
	for attempt := 1; ; attempt++ {
		if attempt > 1 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, attempt, fmt.Errorf("failed to rewind request body: %w", err)
			}
			req.Body = body
		}

		resp, err := c.http.Do(req)
		final := attempt > c.backoff.retries
		if err == nil && (!IsRetryableError(resp.StatusCode) || final) {
			return resp, attempt, nil
		}
		if final {
			return nil, attempt, err
		}
		if resp != nil {
			resp.Body.Close()
		}

		reqLog.WithFields(map[string]interface{}{
			"attempt": attempt,
			"delay":   delay,
		}).Warn("Retrying HTTP request")

		select {
		case <-req.Context().Done():
			return nil, attempt, req.Context().Err()
		case <-time.After(delay):
		}
		delay = c.backoff.next(delay)
	}
}

// IsRetryableError reports whether a status is worth another attempt
func IsRetryableError(statusCode int) bool {
	return statusCode >= 500 || statusCode == http.StatusTooManyRequests
}
