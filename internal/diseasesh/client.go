// Package diseasesh is a read-only client for the disease.sh v3 COVID-19 API.
package diseasesh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-cleanhttp"

	"github.com/seuros/covidboard/internal/stats"
)

const (
	DefaultBaseURL   = "https://disease.sh"
	DefaultUserAgent = "covidboard"

	// maxBodyBytes caps a single response; the full countries list is ~150KB.
	maxBodyBytes = 8 << 20
)

// Client fetches snapshots and history. It is safe for concurrent use.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for baseURL (DefaultBaseURL when empty). A zero
// timeout leaves request lifetime to the caller's context.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	hc := cleanhttp.DefaultPooledClient()
	hc.Timeout = timeout

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  DefaultUserAgent,
		httpClient: hc,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Global fetches the worldwide snapshot.
func (c *Client) Global(ctx context.Context) (stats.CountryRecord, error) {
	var record stats.CountryRecord
	err := c.getJSON(ctx, "/v3/covid-19/all", nil, &record)
	return record, err
}

// Countries fetches every per-country snapshot in API order.
func (c *Client) Countries(ctx context.Context) ([]stats.CountryRecord, error) {
	var records []stats.CountryRecord
	if err := c.getJSON(ctx, "/v3/covid-19/countries", nil, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []stats.CountryRecord{}
	}
	return records, nil
}

// Country fetches one country's snapshot by ISO code.
func (c *Client) Country(ctx context.Context, code string) (stats.CountryRecord, error) {
	var record stats.CountryRecord
	query := url.Values{"strict": {"true"}}
	err := c.getJSON(ctx, "/v3/covid-19/countries/"+url.PathEscape(code), query, &record)
	return record, err
}

// History fetches the worldwide cumulative timeline for the last days.
func (c *Client) History(ctx context.Context, days int) (stats.Timeline, error) {
	var timeline stats.Timeline
	query := url.Values{"lastdays": {strconv.Itoa(days)}}
	err := c.getJSON(ctx, "/v3/covid-19/historical/all", query, &timeline)
	return timeline, err
}

// Ping checks that the API answers the global endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Global(ctx)
	return err
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dst any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &FetchError{Kind: KindNetwork, URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &FetchError{Kind: KindNetwork, URL: endpoint, Err: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &FetchError{
			Kind:       KindStatus,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &FetchError{Kind: KindNetwork, URL: endpoint, Err: err}
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return &FetchError{Kind: KindMalformed, URL: endpoint, Err: errors.New("empty body")}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &FetchError{Kind: KindMalformed, URL: endpoint, Err: err}
	}
	return nil
}
