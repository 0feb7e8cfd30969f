// Package marketstack fetches end-of-day closing prices from marketstack.com.
package marketstack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/theirongolddev/firetrack/internal/model"
)

const (
	DefaultBaseURL   = "https://api.marketstack.com/v2"
	requestTimeout   = 10 * time.Second
	maxBodySize      = 1 << 20 // 1 MB
	DefaultRateLimit = 1       // requests per second
)

// ErrMissingAPIKey is returned when no access key is configured.
var ErrMissingAPIKey = errors.New("marketstack: no API key configured (set MARKETSTACK_API_KEY)")

// APIError is a non-2xx answer from marketstack.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("marketstack: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("marketstack: %s (status %d)", e.Message, e.StatusCode)
}

// HTTPStatus returns the upstream status code.
func (e *APIError) HTTPStatus() int { return e.StatusCode }

// Client fetches prices from the marketstack v2 API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	log     logrus.FieldLogger
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets the base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRateLimit caps outbound requests per second. Non-positive disables it.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a client for the given access key.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	silent := logrus.New()
	silent.SetLevel(logrus.PanicLevel)

	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  strings.TrimSpace(apiKey),
		http:    &http.Client{},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		log:     silent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPrices returns the latest close for each symbol. Symbols marketstack
// does not return map to nil. Close falls back to adj_close when missing.
func (c *Client) FetchPrices(ctx context.Context, symbols []model.Symbol) (map[model.Symbol]*float64, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	names := make([]string, len(symbols))
	for i, s := range symbols {
		names[i] = string(s)
	}

	q := url.Values{}
	q.Set("access_key", c.apiKey)
	q.Set("symbols", strings.Join(names, ","))

	body, err := c.get(ctx, "/eod/latest", q)
	if err != nil {
		return nil, err
	}

	var raw eodResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("marketstack: parsing eod: %w", err)
	}
	if raw.Error != nil {
		return nil, &APIError{StatusCode: http.StatusOK, Code: raw.Error.Code, Message: raw.Error.Message}
	}

	prices := make(map[model.Symbol]*float64, len(symbols))
	for _, s := range symbols {
		prices[s] = nil
	}
	for _, row := range raw.Data {
		sym := model.NormalizeSymbol(row.Symbol)
		if _, wanted := prices[sym]; !wanted {
			continue
		}
		p := row.Close.v
		if p == nil {
			p = row.AdjClose.v
		}
		if p != nil && (math.IsNaN(*p) || math.IsInf(*p, 0)) {
			p = nil
		}
		prices[sym] = p
	}

	c.log.WithFields(logrus.Fields{
		"requested": len(symbols),
		"rows":      len(raw.Data),
	}).Debug("marketstack eod/latest")
	return prices, nil
}

// get performs a GET request and returns the response body.
func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("marketstack: rate limiter: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("marketstack: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "github.com/theirongolddev/firetrack/1.0")

	c.log.WithField("path", path).Debug("marketstack request")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("marketstack: request failed: %w", redactKey(err, c.apiKey))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("marketstack: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var raw eodResponse
		if json.Unmarshal(body, &raw) == nil && raw.Error != nil {
			apiErr.Code = raw.Error.Code
			apiErr.Message = raw.Error.Message
		}
		return nil, apiErr
	}
	return body, nil
}

// redactKey strips the access key from transport errors, which embed the URL.
func redactKey(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), key, "REDACTED"))
}
