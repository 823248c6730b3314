// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

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
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/marquee/internal/apperr"
	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

const (
	providerName = "omdb"
	breakerName  = "omdb-api"
	cacheName    = "catalog"

	pageSize = 10
	maxPage  = 100

	maxBodyBytes = 1 << 20

	opSearch = "search"
	opDetail = "detail"
)

// ErrNotConfigured is returned by NewClient when no API key is set.
var ErrNotConfigured = errors.New("catalog not configured")

// errProviderMiss marks a well-formed "Response":"False" answer. It is
// reported to callers but does not count against the circuit breaker.
var errProviderMiss = errors.New("provider returned no result")

// Client queries the upstream movie-data provider. Calls pass through a
// response cache, a rate limiter and a circuit breaker, in that order.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[interface{}]
	cache   *cache.Cache
}

// NewClient builds a client from cfg.
func NewClient(cfg *config.CatalogConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid catalog base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rps := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		rps = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		limiter: rate.NewLimiter(rps, burst),
		cb:      newBreaker(breakerName),
		cache:   cache.New(cacheName, cfg.CacheTTL, 0),
	}, nil
}

// Cache exposes the response cache so its purge loop can be supervised.
func (c *Client) Cache() *cache.Cache {
	return c.cache
}

// newBreaker opens after a 60% failure rate over at least 10 requests and
// probes again after 30 seconds.
func newBreaker(name string) *gobreaker.CircuitBreaker[interface{}] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errProviderMiss)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// castResult type-asserts a breaker result.
func castResult[T any](result interface{}, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// Search returns one page of movie titles matching query. Pages start at 1.
func (c *Client) Search(ctx context.Context, query string, page int) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.NewValidationError("", apperr.FieldError{Field: "q", Message: "q is required"})
	}
	if page == 0 {
		page = 1
	}
	if page < 1 || page > maxPage {
		return nil, apperr.NewValidationError("", apperr.FieldError{Field: "page", Message: fmt.Sprintf("page must be between 1 and %d", maxPage)})
	}

	params := url.Values{}
	params.Set("s", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("type", "movie")

	key := cache.GenerateKey(opSearch, params)
	if v, ok := c.cache.Get(key); ok {
		metrics.RecordCatalogRequest(opSearch, "cached", 0)
		return v.(*SearchResult), nil
	}

	result, err := castResult[SearchResult](c.call(ctx, opSearch, params, func(body []byte) (interface{}, error) {
		var raw omdbSearch
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, fmt.Errorf("decode search response: %w", err)
		}
		if err := envelopeErr(raw.omdbEnvelope, "No movies found"); err != nil {
			return nil, err
		}
		return raw.toResult(page), nil
	}))
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, result)
	return result, nil
}

// Detail returns the full record for titleID.
func (c *Client) Detail(ctx context.Context, titleID string) (*TitleDetail, error) {
	titleID = strings.TrimSpace(titleID)
	if titleID == "" {
		return nil, apperr.NewValidationError("", apperr.FieldError{Field: "titleId", Message: "titleId is required"})
	}

	params := url.Values{}
	params.Set("i", titleID)
	params.Set("plot", "full")

	key := cache.GenerateKey(opDetail, params)
	if v, ok := c.cache.Get(key); ok {
		metrics.RecordCatalogRequest(opDetail, "cached", 0)
		return v.(*TitleDetail), nil
	}

	detail, err := castResult[TitleDetail](c.call(ctx, opDetail, params, func(body []byte) (interface{}, error) {
		var raw omdbDetail
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, fmt.Errorf("decode detail response: %w", err)
		}
		if err := envelopeErr(raw.omdbEnvelope, "Movie not found"); err != nil {
			return nil, err
		}
		return raw.toDetail(), nil
	}))
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, detail)
	return detail, nil
}

func envelopeErr(env omdbEnvelope, fallback string) error {
	if !strings.EqualFold(env.Response, "False") {
		return nil
	}
	msg := env.Error
	if msg == "" {
		msg = fallback
	}
	return fmt.Errorf("%w: %s", errProviderMiss, msg)
}

// call rate-limits, then executes one provider request through the breaker
// and converts every failure into *apperr.UpstreamError.
func (c *Client) call(ctx context.Context, op string, params url.Values, decode func([]byte) (interface{}, error)) (interface{}, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.RecordCatalogRequest(op, "rejected", 0)
		return nil, &apperr.UpstreamError{Provider: providerName, Message: "rate limit wait aborted", Err: err}
	}

	start := time.Now()
	result, err := c.cb.Execute(func() (interface{}, error) {
		body, err := c.fetch(ctx, params)
		if err != nil {
			return nil, err
		}
		return decode(body)
	})

	switch {
	case err == nil:
		metrics.RecordCatalogRequest(op, "success", time.Since(start))
		return result, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordCatalogRequest(op, "rejected", 0)
		logging.Ctx(ctx).Warn().Err(err).Str("operation", op).Msg("[CIRCUIT BREAKER] Request rejected")
		return nil, &apperr.UpstreamError{Provider: providerName, Message: "Movie service temporarily unavailable", Err: err}
	case errors.Is(err, errProviderMiss):
		metrics.RecordCatalogRequest(op, "miss", time.Since(start))
		return nil, &apperr.UpstreamError{Provider: providerName, Message: strings.TrimPrefix(err.Error(), errProviderMiss.Error()+": ")}
	default:
		metrics.RecordCatalogRequest(op, "failure", time.Since(start))
		logging.Ctx(ctx).Error().Err(err).Str("operation", op).Msg("catalog request failed")
		return nil, &apperr.UpstreamError{Provider: providerName, Message: "Failed to fetch movies", Err: err}
	}
}

func (c *Client) fetch(ctx context.Context, params url.Values) ([]byte, error) {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query provider: %w", redactKey(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}
	return body, nil
}

// redactKey masks the apikey query parameter in the URL a transport error
// carries, so the key never reaches logs or wrapped errors.
func redactKey(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	u, perr := url.Parse(urlErr.URL)
	if perr != nil {
		urlErr.URL = "<redacted>"
		return err
	}
	q := u.Query()
	if q.Has("apikey") {
		q.Set("apikey", "REDACTED")
		u.RawQuery = q.Encode()
	}
	urlErr.URL = u.String()
	return err
}
