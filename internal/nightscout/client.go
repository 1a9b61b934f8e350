// Package nightscout provides a client for interacting with the Nightscout API
package nightscout

import (
	"context"
	"crypto/sha1" //nolint:gosec // Required for Nightscout API secret hashing (legacy API requirement)
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/ratelimit"

	"github.com/mrcode/nightscout-report/internal/models"
)

const (
	statusEndpoint     = "/api/v1/status.json"
	entriesEndpoint    = "/api/v1/entries.json"
	treatmentsEndpoint = "/api/v1/treatments.json"

	// created_at is stored as ISO 8601 text, so treatment bounds compare as strings
	createdAtLayout = "2006-01-02T15:04:05.000Z"

	defaultTimeout    = 30 * time.Second
	defaultFetchCount = 1000
)

// APIError is returned when Nightscout answers with a non-2xx status
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Body)
}

// Client handles communication with the Nightscout API
type Client struct {
	baseURL    string
	apiSecret  string
	fetchCount int
	limiter    ratelimit.Limiter
	http       *resty.Client
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithFetchCount sets the count parameter sent with range queries
func WithFetchCount(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.fetchCount = n
		}
	}
}

// WithRateLimit caps outgoing requests per second, 0 means unlimited
func WithRateLimit(perSecond int) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = ratelimit.New(perSecond)
		}
	}
}

// NewClient creates a new Nightscout client
func NewClient(baseURL, apiSecret string, opts ...Option) *Client {
	baseURL = strings.TrimRight(baseURL, "/")

	c := &Client{
		baseURL:    baseURL,
		apiSecret:  apiSecret,
		fetchCount: defaultFetchCount,
		limiter:    ratelimit.NewUnlimited(),
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(defaultTimeout),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewClientFromSettings creates a client from the application settings
func NewClientFromSettings(settings *models.Settings) *Client {
	return NewClient(settings.NightscoutURL, settings.APISecret,
		WithTimeout(settings.Timeout),
		WithFetchCount(settings.FetchCount),
		WithRateLimit(settings.RateLimit),
	)
}

// hashSecret generates SHA1 hash of the API secret
// Note: SHA1 is required for Nightscout API compatibility
func hashSecret(secret string) string {
	hasher := sha1.New() //nolint:gosec // Required for Nightscout API
	hasher.Write([]byte(secret))
	return hex.EncodeToString(hasher.Sum(nil))
}

// request creates an authenticated request, waiting for the rate limiter
func (c *Client) request(ctx context.Context) *resty.Request {
	c.limiter.Take()

	req := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json")

	if c.apiSecret != "" {
		req.SetHeader("API-SECRET", hashSecret(c.apiSecret))
	}

	return req
}

// get executes a GET request and decodes the JSON body into result
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, result any) error {
	req := c.request(ctx)
	if params != nil {
		req.SetQueryParamsFromValues(params)
	}

	resp, err := req.Get(endpoint)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if !resp.IsSuccess() {
		return &APIError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return fmt.Errorf("parsing %s: %w", endpoint, err)
	}

	return nil
}

// GetStatus retrieves the Nightscout server status
func (c *Client) GetStatus(ctx context.Context) (*models.ServerStatus, error) {
	var status models.ServerStatus
	if err := c.get(ctx, statusEndpoint, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// TestConnection tests if the connection to Nightscout works
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.GetStatus(ctx)
	return err
}

// GetEntriesBetween retrieves glucose entries in the half-open range [from, to)
func (c *Client) GetEntriesBetween(ctx context.Context, from, to time.Time) ([]models.GlucoseEntry, error) {
	params := url.Values{}
	params.Set("find[date][$gte]", strconv.FormatInt(from.UnixMilli(), 10))
	params.Set("find[date][$lt]", strconv.FormatInt(to.UnixMilli(), 10))
	params.Set("count", strconv.Itoa(c.fetchCount))

	var entries []models.GlucoseEntry
	if err := c.get(ctx, entriesEndpoint, params, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetTreatmentsBetween retrieves treatments created in the half-open range [from, to)
func (c *Client) GetTreatmentsBetween(ctx context.Context, from, to time.Time) ([]models.Treatment, error) {
	params := url.Values{}
	params.Set("find[created_at][$gte]", from.UTC().Format(createdAtLayout))
	params.Set("find[created_at][$lt]", to.UTC().Format(createdAtLayout))
	params.Set("count", strconv.Itoa(c.fetchCount))

	var treatments []models.Treatment
	if err := c.get(ctx, treatmentsEndpoint, params, &treatments); err != nil {
		return nil, err
	}
	return treatments, nil
}
