package client

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// HTTPClient abstracts HTTP request execution for testing and custom
// transports. The standard *http.Client satisfies this interface.
type HTTPClient interface {
	// Do sends an HTTP request and returns an HTTP response.
	Do(req *http.Request) (*http.Response, error)
}

// Client issues counter requests against a tally service. All failures
// are returned as *RequestError so callers can render the transport
// classification directly.
type Client struct {
	baseURL string
	client  HTTPClient
}

// New creates a Client for the service at baseURL. A trailing slash on
// baseURL is stripped. If httpClient is nil, http.DefaultClient is used.
func New(baseURL string, httpClient HTTPClient) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
	}
}

// Fetch reads the current counter value from the service.
func (c *Client) Fetch(ctx context.Context) (int64, error) {
	reqURL := c.baseURL + "/"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, &RequestError{Kind: KindBadURL, URL: reqURL, Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, classifyTransport(reqURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return 0, &RequestError{Kind: KindBadStatus, URL: reqURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, &RequestError{Kind: KindBadBody, URL: reqURL, Detail: err.Error(), Err: err}
	}

	v, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		return 0, &RequestError{
			Kind:   KindBadBody,
			URL:    reqURL,
			Detail: "not a counter value: " + strings.TrimSpace(string(body)),
			Err:    err,
		}
	}

	return v, nil
}

// Increment asks the service to add one to the counter.
func (c *Client) Increment(ctx context.Context) error {
	return c.post(ctx, "/increment")
}

// Decrement asks the service to subtract one from the counter.
func (c *Client) Decrement(ctx context.Context) error {
	return c.post(ctx, "/decrement")
}

func (c *Client) post(ctx context.Context, path string) error {
	reqURL := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, nil)
	if err != nil {
		return &RequestError{Kind: KindBadURL, URL: reqURL, Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return classifyTransport(reqURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return &RequestError{Kind: KindBadStatus, URL: reqURL, Status: resp.StatusCode}
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
