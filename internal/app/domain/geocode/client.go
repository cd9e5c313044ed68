package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/FACorreiaa/aid-map/internal/app/observability/metrics"
	"github.com/FACorreiaa/aid-map/internal/pkg/geo"
	"github.com/FACorreiaa/aid-map/pkg/logger"
)

const DefaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

var (
	ErrMissingToken = errors.New("missing MAPBOX_ACCESS_TOKEN")
	// ErrRequestFailed wraps a non-retryable Mapbox response.
	ErrRequestFailed = errors.New("geocode request failed")
)

// Coordinates of a resolved address, in degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Geocoder resolves a free-text address. A nil result with a nil error means
// the address was not found.
type Geocoder interface {
	Forward(ctx context.Context, address string) (*Coordinates, error)
}

type ClientConfig struct {
	BaseURL     string
	AccessToken string
	Country     string
	Timeout     time.Duration
	MaxAttempts int
	// InitialBackoff is the wait before the second attempt; it doubles after each retry.
	InitialBackoff time.Duration
	HTTPClient     *http.Client
}

// Client talks to the Mapbox forward geocoding API.
type Client struct {
	cfg     ClientConfig
	http    *http.Client
	logger  *zap.Logger
	results *cache.Cache
	metrics *metrics.AppMetrics
}

type mapboxResponse struct {
	Message  string `json:"message"`
	Features []struct {
		Center json.RawMessage `json:"center"`
	} `json:"features"`
}

func NewClient(cfg ClientConfig, l *zap.Logger) (*Client, error) {
	if cfg.AccessToken == "" {
		return nil, ErrMissingToken
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &Client{
		cfg:     cfg,
		http:    httpClient,
		logger:  logger.OrNop(l),
		results: cache.New(cache.NoExpiration, 0),
		metrics: metrics.Get(),
	}, nil
}

// cacheKey folds case and whitespace so trivially different spellings of one
// address share an entry. Casers are stateful, so one is built per call.
func cacheKey(address string) string {
	return cases.Fold().String(strings.Join(strings.Fields(address), " "))
}

// Forward returns the coordinates of the first Mapbox match for address.
// Results, including misses, are remembered for the lifetime of the client.
func (c *Client) Forward(ctx context.Context, address string) (*Coordinates, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, nil
	}

	key := cacheKey(address)
	if v, ok := c.results.Get(key); ok {
		return v.(*Coordinates), nil
	}

	ctx, span := otel.Tracer("geocode").Start(ctx, "Client.Forward")
	defer span.End()

	start := time.Now()
	coords, err := c.forward(ctx, address)
	outcome := "found"
	switch {
	case err != nil:
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case coords == nil:
		outcome = "not_found"
	}
	span.SetAttributes(attribute.String("geocode.outcome", outcome))
	c.metrics.GeocodeRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	c.metrics.GeocodeRequestDuration.Record(ctx, time.Since(start).Seconds())

	if err != nil {
		return nil, err
	}
	c.results.Set(key, coords, cache.NoExpiration)
	return coords, nil
}

func (c *Client) forward(ctx context.Context, address string) (*Coordinates, error) {
	reqURL := c.requestURL(address)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.InitialBackoff
	bo.Multiplier = 2
	bo.RandomizationFactor = 0

	attempt := 0
	operation := func() (*mapboxResponse, error) {
		attempt++
		resp, err := c.do(ctx, reqURL)
		if err != nil && !isPermanent(err) {
			c.logger.Debug("Geocode attempt failed, retrying",
				zap.String("address", address),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
		return resp, err
	}

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(c.cfg.MaxAttempts)),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "geocode %q after %d attempt(s)", address, attempt)
	}

	return firstCenter(body), nil
}

func (c *Client) requestURL(address string) string {
	q := url.Values{}
	q.Set("access_token", c.cfg.AccessToken)
	q.Set("limit", "1")
	q.Set("autocomplete", "false")
	if c.cfg.Country != "" {
		q.Set("country", c.cfg.Country)
	}
	return fmt.Sprintf("%s/%s.json?%s", c.cfg.BaseURL, url.PathEscape(address), q.Encode())
}

// do performs one HTTP attempt. Errors wrapped in backoff.Permanent stop the retry loop.
func (c *Client) do(ctx context.Context, reqURL string) (*mapboxResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, backoff.Permanent(errors.Wrap(err, "build request"))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(redact(err), "send request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, fmt.Errorf("mapbox returned HTTP %d", resp.StatusCode)
	}

	var body mapboxResponse
	decodeErr := json.Unmarshal(raw, &body)

	if resp.StatusCode != http.StatusOK {
		return nil, backoff.Permanent(errors.Wrapf(ErrRequestFailed, "HTTP %d: %s", resp.StatusCode, body.Message))
	}
	if decodeErr != nil {
		return nil, errors.Wrap(decodeErr, "decode response")
	}
	return &body, nil
}

func firstCenter(body *mapboxResponse) *Coordinates {
	if body == nil || len(body.Features) == 0 {
		return nil
	}
	var center []float64
	if err := json.Unmarshal(body.Features[0].Center, &center); err != nil || len(center) != 2 {
		return nil
	}
	if !geo.Valid(center[1], center[0]) {
		return nil
	}
	return &Coordinates{Lon: center[0], Lat: center[1]}
}

func isPermanent(err error) bool {
	var perm *backoff.PermanentError
	return errors.As(err, &perm)
}

// redact strips the query string (and with it the access token) from URL errors.
func redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		if u, perr := url.Parse(uerr.URL); perr == nil {
			u.RawQuery = ""
			uerr.URL = u.String()
		}
	}
	return err
}
