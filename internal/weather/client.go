package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	lru "github.com/hashicorp/golang-lru"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"

	"subsidy-lab/internal/domain"
)

// Default client settings.
const (
	DefaultBaseURL      = "https://api.weatherapi.com/v1"
	defaultTimeout      = 10 * time.Second
	defaultCacheSize    = 128
	defaultCacheTTL     = 10 * time.Minute
	defaultBreakerFails = 3
	defaultBreakerOpen  = 30 * time.Second
	errorBodyLimit      = 256
)

// ClientOptions configures a Client.
type ClientOptions struct {
	BaseURL      string
	APIKey       string
	HTTPClient   *http.Client
	Timeout      time.Duration
	CacheSize    int
	CacheTTL     time.Duration
	BreakerFails uint32
	BreakerOpen  time.Duration
	MaxRetries   uint64
	Logger       *slog.Logger
	Now          func() time.Time
}

// Client fetches current weather from WeatherAPI.com.
// Calls go through a circuit breaker; transient failures are retried with
// exponential backoff; successful readings are cached per location.
// Concurrent misses for one location share a single upstream fetch.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cacheTTL   time.Duration
	maxRetries uint64
	breaker    *gobreaker.CircuitBreaker
	cache      *lru.Cache
	logger     *slog.Logger
	now        func() time.Time
	inflight   singleflight.Group
}

type cachedReading struct {
	snapshot  domain.WeatherSnapshot
	fetchedAt time.Time
}

// NewClient creates a WeatherAPI.com client.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("weather api key is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.BreakerFails == 0 {
		opts.BreakerFails = defaultBreakerFails
	}
	if opts.BreakerOpen <= 0 {
		opts.BreakerOpen = defaultBreakerOpen
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	cache, err := lru.New(opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create weather cache: %w", err)
	}

	logger := opts.Logger.With("component", "weather")
	fails := opts.BreakerFails

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		httpClient: opts.HTTPClient,
		cacheTTL:   opts.CacheTTL,
		maxRetries: opts.MaxRetries,
		cache:      cache,
		logger:     logger,
		now:        opts.Now,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "weatherapi",
			Timeout: opts.BreakerOpen,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= fails
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			},
		}),
	}, nil
}

// Current implements Provider.
// Cache hits never wait on upstream calls. A miss joins the in-flight fetch for
// its location and returns early when ctx ends first.
func (c *Client) Current(ctx context.Context, region string) (*domain.WeatherSnapshot, error) {
	location := Location(region)

	if w, ok := c.cached(location); ok {
		return w, nil
	}

	// The shared fetch outlives any single caller; the HTTP timeout and the
	// retry budget bound it.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.inflight.DoChan(location, func() (interface{}, error) {
		res, err := c.breaker.Execute(func() (interface{}, error) {
			return c.fetchWithRetry(fetchCtx, location)
		})
		if err != nil {
			return nil, err
		}
		w := res.(*domain.WeatherSnapshot)
		c.cache.Add(location, cachedReading{snapshot: *w, fetchedAt: c.now()})
		return *w, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s: %v", ErrProviderUnavailable, location, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrProviderUnavailable, location, res.Err)
		}
		w := res.Val.(domain.WeatherSnapshot)
		return &w, nil
	}
}

// cached returns a copy of a fresh cached reading. The lru cache is goroutine-safe.
func (c *Client) cached(location string) (*domain.WeatherSnapshot, bool) {
	v, ok := c.cache.Get(location)
	if !ok {
		return nil, false
	}
	reading := v.(cachedReading)
	if c.now().Sub(reading.fetchedAt) >= c.cacheTTL {
		c.cache.Remove(location)
		return nil, false
	}
	w := reading.snapshot
	return &w, true
}

func (c *Client) fetchWithRetry(ctx context.Context, location string) (*domain.WeatherSnapshot, error) {
	var out *domain.WeatherSnapshot

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 5 * time.Second

	err := backoff.Retry(func() error {
		w, err := c.fetch(ctx, location)
		if err != nil {
			c.logger.Debug("weather fetch failed", "location", location, "error", err)
			return err
		}
		out = w
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx))

	return out, err
}

// currentResponse is the subset of the current.json payload the client reads.
type currentResponse struct {
	Location struct {
		Name   string `json:"name"`
		Region string `json:"region"`
	} `json:"location"`
	Current struct {
		TempC      float64 `json:"temp_c"`
		Humidity   float64 `json:"humidity"`
		PrecipMM   float64 `json:"precip_mm"`
		WindKPH    float64 `json:"wind_kph"`
		UV         float64 `json:"uv"`
		PressureMB float64 `json:"pressure_mb"`
		Condition  struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
}

func (c *Client) fetch(ctx context.Context, location string) (*domain.WeatherSnapshot, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("q", location)
	q.Set("aqi", "no")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/current.json?"+q.Encode(), nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		err := fmt.Errorf("weatherapi status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		// Client errors will not succeed on retry
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	var body currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode weatherapi response: %w", err))
	}

	name := body.Location.Name
	if body.Location.Region != "" {
		name += ", " + body.Location.Region
	}

	w := &domain.WeatherSnapshot{
		Location:      name,
		Temperature:   body.Current.TempC,
		Humidity:      body.Current.Humidity,
		Precipitation: body.Current.PrecipMM,
		WindSpeed:     body.Current.WindKPH,
		Condition:     body.Current.Condition.Text,
		UVIndex:       body.Current.UV,
		Pressure:      body.Current.PressureMB,
	}
	if err := w.Validate(); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: %v", ErrInvalidWeatherData, err))
	}
	return w, nil
}

var _ Provider = (*Client)(nil)
