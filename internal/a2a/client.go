package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkravets/claimpilot/internal/util"
)

// TransportError wraps connection and timeout failures against an agent
// endpoint so callers can distinguish them from protocol-level errors.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("a2a transport %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client posts JSON-RPC envelopes to agent endpoints.
type Client struct {
	httpClient *http.Client
}

// NewClient creates an A2A client. Timeout bounds each request; proxy
// settings fall back to the environment when empty.
func NewClient(timeout time.Duration, httpProxy, httpsProxy, noProxy string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpProxy, httpsProxy, noProxy),
			},
		},
	}
}

// Send posts a message/send envelope to the agent at baseURL and returns the
// normalized reply. Transport failures return a *TransportError; malformed
// envelopes come back as StatusUnclear replies, not errors.
func (c *Client) Send(ctx context.Context, baseURL string, req Request) (Reply, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Reply{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL, bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Reply{}, &TransportError{URL: baseURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Reply{}, &TransportError{
			URL: baseURL,
			Err: fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Reply{}, &TransportError{URL: baseURL, Err: fmt.Errorf("read body: %w", err)}
	}

	var envelope Response
	if err := json.Unmarshal(data, &envelope); err != nil {
		// Not even a JSON envelope: soft-fail as unclear, keep the raw
		// bytes for manual inspection.
		return Reply{Status: StatusUnclear, Raw: data}, nil
	}

	return Normalize(&envelope), nil
}
