package checkclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cinematalkiez/blackhole/internal/gate"
)

var (
	ErrUnexpectedStatus  = errors.New("checkclient: unexpected status")
	ErrMalformedResponse = errors.New("checkclient: malformed response")
)

// Client queries a remote verification store over HTTP
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL. A timeout of 0 leaves the call
// bounded only by the request context, so a slow store keeps the gate loading.
func NewClient(baseURL string, timeout time.Duration) *Client {
	hc := &http.Client{}
	if timeout > 0 {
		hc.Timeout = timeout
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    hc,
	}
}

type checkBody struct {
	Exists        *bool `json:"exists"`
	TokenVerified *bool `json:"tokenVerified"`
}

// Check performs GET {base}/check/{id}. The id is path-escaped but otherwise
// sent as-is.
func (c *Client) Check(ctx context.Context, id string) (gate.RemoteRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/check/"+url.PathEscape(id), nil)
	if err != nil {
		return gate.RemoteRecord{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return gate.RemoteRecord{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return gate.RemoteRecord{}, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	var body checkBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return gate.RemoteRecord{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if body.Exists == nil || body.TokenVerified == nil {
		return gate.RemoteRecord{}, fmt.Errorf("%w: missing exists or tokenVerified", ErrMalformedResponse)
	}

	return gate.RemoteRecord{
		Exists:        *body.Exists,
		TokenVerified: *body.TokenVerified,
	}, nil
}
