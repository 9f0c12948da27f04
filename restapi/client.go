// Package restapi is the dashboard's client for the fleet backend's REST API.
// Every call is bearer-authenticated, bounded by the client timeout, and
// classified into an *Error on failure.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultTimeout = 30 * time.Second

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the client's base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// ListOptions pages a list endpoint. Zero values are omitted.
type ListOptions struct {
	Limit  int
	Offset int
}

func (o ListOptions) query() string {
	v := url.Values{}
	if o.Limit > 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		v.Set("offset", strconv.Itoa(o.Offset))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

func (c *Client) put(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

func (c *Client) patch(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPatch, path, body, result)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api marshal: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("api %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(method, path, err)
	}
	defer resp.Body.Close()
	return c.decode(method, path, resp, result)
}

func (c *Client) decode(method, path string, resp *http.Response, result any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(method, path, resp.StatusCode, data)
	}
	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("api decode %s: %w", path, err)
		}
	}
	return nil
}

// getData fetches a single-object envelope and returns its data field.
func getData[T any](ctx context.Context, c *Client, path string) (T, error) {
	var env Response[T]
	err := c.get(ctx, path, &env)
	return env.Data, err
}

func getList[T any](ctx context.Context, c *Client, path string, opts ListOptions) (*ListResponse[T], error) {
	var env ListResponse[T]
	if err := c.get(ctx, path+opts.query(), &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func sendData[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var env Response[T]
	err := c.do(ctx, method, path, body, &env)
	return env.Data, err
}
