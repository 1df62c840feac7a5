// Package postgrest implements the record store over a PostgREST endpoint
// such as Supabase's /rest/v1 API.
package postgrest

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

	"kira/internal/domain"
)

const pgUniqueViolation = "23505"

// Options configures a Client.
type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// Client issues PostgREST requests authenticated with a service key.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("postgrest: base url is required")
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("postgrest: api key is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: base, apiKey: opts.APIKey, http: httpClient}, nil
}

// apiError is the error body PostgREST returns.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

// StatusError is a non-2xx response.
type StatusError struct {
	Status int
	Code   string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("postgrest status %d (%s): %s", e.Status, e.Code, e.Body)
	}
	return fmt.Sprintf("postgrest status %d: %s", e.Status, e.Body)
}

type request struct {
	method string
	table  string
	query  url.Values
	body   any
	prefer string
}

// do sends req and decodes a JSON array response into out when out is non-nil.
func (c *Client) do(ctx context.Context, req request, out any) error {
	endpoint := c.baseURL + "/" + req.table
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("postgrest: encode body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return fmt.Errorf("postgrest: build request: %w", err)
	}
	httpReq.Header.Set("apikey", c.apiKey)
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.prefer != "" {
		httpReq.Header.Set("Prefer", req.prefer)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: postgrest: %w", domain.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: postgrest: decode response: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	var apiErr apiError
	_ = json.Unmarshal(raw, &apiErr)
	se := &StatusError{Status: resp.StatusCode, Code: apiErr.Code, Body: strings.TrimSpace(string(raw))}
	if resp.StatusCode == http.StatusConflict || apiErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %w", domain.ErrDuplicate, se)
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, se)
}

func eq(v string) string { return "eq." + v }
