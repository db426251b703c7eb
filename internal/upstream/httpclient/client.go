package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/preston-bernstein/city-dashboard/internal/domain"
	"github.com/preston-bernstein/city-dashboard/internal/upstream"
)

// Config controls how the client reaches the backend services.
type Config struct {
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client performs plain JSON GETs against the processing and analyzer services.
type Client struct {
	httpClient httpDoer
}

// NewClient constructs a client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{httpClient: resolveHTTPClient(cfg.HTTPClient, cfg.Timeout)}
}

// FetchStats issues GET {endpoint}/stats and decodes the body as a JSON object.
func (c *Client) FetchStats(ctx context.Context, endpoint domain.ServiceEndpoint) (domain.StatsResult, error) {
	body, err := c.get(ctx, endpoint, endpoint.URL(statsPath))
	if err != nil {
		return nil, err
	}

	var stats domain.StatsResult
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, parseFailure(endpoint, endpoint.URL(statsPath), err)
	}
	if stats == nil {
		return nil, parseFailure(endpoint, endpoint.URL(statsPath), errors.New("stats body is null"))
	}
	return stats, nil
}

// FetchEvent issues GET {endpoint}/{kind}?index={index} and returns the raw JSON payload.
func (c *Client) FetchEvent(ctx context.Context, endpoint domain.ServiceEndpoint, kind domain.EventKind, index int) (json.RawMessage, error) {
	target := endpoint.URL(url.PathEscape(string(kind))) + "?" + url.Values{"index": {strconv.Itoa(index)}}.Encode()
	body, err := c.get(ctx, endpoint, target)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, parseFailure(endpoint, target, errors.New("invalid json payload"))
	}
	return json.RawMessage(body), nil
}

func (c *Client) get(ctx context.Context, endpoint domain.ServiceEndpoint, target string) ([]byte, error) {
	if endpoint.IsZero() {
		return nil, &upstream.FetchError{
			Upstream: endpoint.Name(),
			Kind:     upstream.FailureTransport,
			Err:      domain.ErrEmptyBaseURL,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &upstream.FetchError{Upstream: endpoint.Name(), URL: target, Kind: upstream.FailureTransport, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &upstream.FetchError{Upstream: endpoint.Name(), URL: target, Kind: upstream.FailureTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, &upstream.FetchError{
			Upstream:   endpoint.Name(),
			URL:        target,
			Kind:       upstream.FailureHTTPStatus,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(excerpt))),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &upstream.FetchError{Upstream: endpoint.Name(), URL: target, Kind: upstream.FailureTransport, Err: err}
	}
	return bytes.TrimSpace(body), nil
}

func parseFailure(endpoint domain.ServiceEndpoint, target string, err error) error {
	return &upstream.FetchError{
		Upstream: endpoint.Name(),
		URL:      target,
		Kind:     upstream.FailureParse,
		Message:  "malformed response: " + err.Error(),
		Err:      err,
	}
}
