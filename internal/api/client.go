package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks JSON to the protocol server.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient returns a client for baseURL. An optional positive timeout
// replaces the 30s default.
func NewClient(baseURL, apiKey string, timeout ...time.Duration) *Client {
	d := defaultTimeout
	if len(timeout) > 0 && timeout[0] > 0 {
		d = timeout[0]
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: d},
	}
}

// BaseURL returns the server root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WithTimeout clones the client with a different HTTP timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	return NewClient(c.baseURL, c.apiKey, timeout)
}

// call sends in as the JSON body (when non-nil) and decodes the response
// into out (when non-nil). Any 4xx/5xx comes back as *StatusError.
func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &StatusError{Code: resp.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// buildQuery appends the non-empty params to path.
func buildQuery(path string, params QueryParams) string {
	q := url.Values{}
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// errorEnvelope covers the shapes the server uses for failures:
// {"error": "..."}, {"error": {"code", "message"}}, {"message": "..."}
// and {"detail": "..."}.
type errorEnvelope struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
	Detail  string          `json:"detail"`
}

type errorObject struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorMessage pulls a readable message out of an error body, falling back
// to the trimmed body text.
func errorMessage(raw []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return strings.TrimSpace(string(raw))
	}
	if len(env.Error) > 0 {
		var s string
		if json.Unmarshal(env.Error, &s) == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
		var obj errorObject
		if json.Unmarshal(env.Error, &obj) == nil {
			code, msg := strings.TrimSpace(obj.Code), strings.TrimSpace(obj.Message)
			switch {
			case code != "" && msg != "":
				return code + ": " + msg
			case code != "":
				return code
			case msg != "":
				return msg
			}
		}
	}
	for _, s := range []string{env.Message, env.Detail} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return strings.TrimSpace(string(raw))
}
