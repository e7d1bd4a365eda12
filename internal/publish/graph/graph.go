// Package graph implements the small slice of the Meta Graph API wire
// protocol shared by the Facebook and Instagram adapters: form-encoded
// POSTs, status GETs, and the common response envelope.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"

	"socialcast/pkg/clients"
)

// Result is the decoded Graph API response envelope. A provider-side
// rejection is carried in HTTPStatus and ErrMessage rather than as a Go
// error; only transport and decode failures surface as errors.
type Result struct {
	ID         string
	Status     string
	HTTPStatus int
	ErrMessage string
}

// OK reports whether the call succeeded and returned an object id.
func (r Result) OK() bool {
	return r.HTTPStatus >= 200 && r.HTTPStatus < 300 && r.ID != ""
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

type envelope struct {
	ID     string    `json:"id"`
	Status string    `json:"status_code"`
	Error  *apiError `json:"error"`
}

// Client issues Graph API calls through a shared transport and a
// failsafe executor for retry handling.
type Client struct {
	http     *http.Client
	executor failsafe.Executor[*http.Response]
}

func NewClient(httpClient *http.Client, executor failsafe.Executor[*http.Response]) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: clients.DefaultTransport(),
			Timeout:   30 * time.Second,
		}
	}
	if executor == nil {
		executor = clients.NewHTTPExecutor(clients.DefaultHTTPExecutorConfig())
	}
	return &Client{http: httpClient, executor: executor}
}

// PostForm sends a form-encoded POST to the given endpoint.
func (c *Client) PostForm(ctx context.Context, endpoint string, form url.Values) (Result, error) {
	body := form.Encode()
	resp, err := clients.ExecuteHTTP(ctx, c.executor, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return c.http.Do(req)
	})
	if err != nil {
		return Result{}, fmt.Errorf("graph request: %w", err)
	}
	return decode(resp)
}

// Get fetches the given endpoint with an optional query string.
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values) (Result, error) {
	target := endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	resp, err := clients.ExecuteHTTP(ctx, c.executor, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		return c.http.Do(req)
	})
	if err != nil {
		return Result{}, fmt.Errorf("graph request: %w", err)
	}
	return decode(resp)
}

func decode(resp *http.Response) (Result, error) {
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("read graph response: %w", err)
	}

	result := Result{HTTPStatus: resp.StatusCode}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return Result{}, fmt.Errorf("decode graph response: %w", err)
		}
		// Error bodies are sometimes not JSON; fall back to the status.
		return result, nil
	}

	result.ID = env.ID
	result.Status = env.Status
	if env.Error != nil {
		result.ErrMessage = env.Error.Message
	}
	return result, nil
}
