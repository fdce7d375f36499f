// Package api is the single outbound point to the POS backend. It attaches
// the stored credential to every request, normalizes backend error payloads,
// and tears the session down on an authorization failure.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/oliversimiyu/pos-system/internal/session"
)

const maxResponseBody = 1 << 20 // 1MB

type apiResponse struct {
	status int
	body   []byte
}

// Client talks to the backend REST API.
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Store
	breaker *gobreaker.CircuitBreaker[apiResponse]
	log     *zap.Logger
}

// New builds a Client for baseURL (e.g. "http://localhost:8000/api").
// httpClient may be nil; a traced client with a sane timeout is used then.
func New(baseURL string, sess *session.Store, log *zap.Logger, httpClient *http.Client) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid backend base url %q: %w", baseURL, err)
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	breaker := gobreaker.NewCircuitBreaker[apiResponse](gobreaker.Settings{
		Name:    "pos-backend",
		Timeout: 15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// Only transport-level failures trip the breaker; HTTP error
			// statuses are handled by the caller.
			return err == nil
		},
	})

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		session: sess,
		breaker: breaker,
		log:     log,
	}, nil
}

// do performs one request. payload (if non-nil) is JSON-encoded; a 2xx body
// is decoded into out (if non-nil). Non-2xx responses come back as errors:
// 401 clears the session and returns ErrSessionExpired, 404 wraps
// ErrNotFound, everything else is a normalized *Error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	// Paths are joined textually: the base URL carries a path prefix
	// (".../api") that url.ResolveReference would drop.
	u := c.baseURL + path
	if enc := query.Encode(); enc != "" {
		u += "?" + enc
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token, errTok := c.session.Token(); errTok == nil {
		req.Header.Set("Authorization", "Token "+token)
	}

	resp, err := c.breaker.Execute(func() (apiResponse, error) {
		res, errDo := c.http.Do(req)
		if errDo != nil {
			return apiResponse{}, errDo
		}
		defer res.Body.Close()

		raw, errRead := io.ReadAll(io.LimitReader(res.Body, maxResponseBody))
		if errRead != nil {
			return apiResponse{}, errRead
		}
		return apiResponse{status: res.StatusCode, body: raw}, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &Error{StatusCode: http.StatusServiceUnavailable, Message: "Backend unavailable, please retry"}
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	switch {
	case resp.status == http.StatusUnauthorized:
		if errClear := c.session.Clear(); errClear != nil {
			c.log.Error("failed to clear session after 401", zap.Error(errClear))
		}
		return ErrSessionExpired
	case resp.status == http.StatusNotFound:
		return fmt.Errorf("%s: %w", NormalizeMessage(resp.body), ErrNotFound)
	case resp.status < 200 || resp.status > 299:
		return &Error{StatusCode: resp.status, Message: NormalizeMessage(resp.body)}
	}

	if out != nil {
		if errDec := json.Unmarshal(resp.body, out); errDec != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, errDec)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, payload, out)
}

func (c *Client) put(ctx context.Context, path string, payload, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, payload, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
