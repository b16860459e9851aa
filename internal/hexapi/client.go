// Package hexapi is the client of the heating-offer API: address
// autocomplete, house data prefill and the offer calculation that returns the
// products to quote.
package hexapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/osamarehman/hex-docs/internal/cache"
	"github.com/osamarehman/hex-docs/internal/metrics"
	"github.com/osamarehman/hex-docs/internal/offer"
	"github.com/osamarehman/hex-docs/pkg/constants"
	"github.com/osamarehman/hex-docs/pkg/validation"
	"go.uber.org/zap"
)

// Endpoint names, relative to the base URL.
const (
	EndpointPossibleAddress = "getPossibleAddress"
	EndpointHouseInfo       = "getHouseInfo"
	EndpointCalculation     = "getCalculation"
)

var (
	// ErrInvalidRequest is returned before any request is sent when the
	// input cannot produce a useful answer.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrDownstreamUnavailable is returned when the API fails, retries are
	// exhausted or the answer is empty.
	ErrDownstreamUnavailable = errors.New("heating-offer API unavailable")
)

// StatusError is a non-2xx response.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP error, status = %d", e.Endpoint, e.StatusCode)
}

func (e *StatusError) retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// Options configure a Client. Zero values fall back to the defaults in
// package constants, except MaxRetries where zero disables retries and a
// negative value selects the default.
type Options struct {
	BaseURL         string
	Timeout         time.Duration
	MaxRetries      int
	InitialInterval time.Duration
	CacheTTL        time.Duration
	Cache           cache.Cache
	HTTPClient      *http.Client
}

// Client talks to the heating-offer API.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	logger          *zap.Logger
	cache           cache.Cache
	cacheTTL        time.Duration
	maxRetries      uint64
	initialInterval time.Duration
}

// NewClient creates a client.
func NewClient(logger *zap.Logger, opts Options) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = constants.DefaultAPIBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = constants.DefaultAPITimeoutSeconds * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = constants.DefaultAPIMaxRetries
	}

	initial := opts.InitialInterval
	if initial <= 0 {
		initial = backoff.DefaultInitialInterval
	}

	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = constants.DefaultCacheTTLSeconds * time.Second
	}

	return &Client{
		baseURL:         baseURL,
		httpClient:      httpClient,
		logger:          logger,
		cache:           opts.Cache,
		cacheTTL:        ttl,
		maxRetries:      uint64(maxRetries),
		initialInterval: initial,
	}
}

// PossibleAddresses returns autocomplete suggestions for query.
func (c *Client) PossibleAddresses(ctx context.Context, query string) ([]Address, error) {
	trimmed := strings.TrimSpace(query)
	if !validation.ValidateAddressQuery(trimmed) {
		return nil, fmt.Errorf("%w: address query must have at least %d characters", ErrInvalidRequest, constants.MinAddressQueryLength)
	}

	var addresses []Address
	endpoint := EndpointPossibleAddress + "?address=" + url.QueryEscape(trimmed)
	// The key holds the query exactly as sent, case included.
	err := c.cachedGet(ctx, EndpointPossibleAddress, endpoint, "hexapi:address:"+trimmed, &addresses)
	if err != nil {
		return nil, err
	}
	return addresses, nil
}

// HouseInfo returns the building data of an entrance.
func (c *Client) HouseInfo(ctx context.Context, eingangID string) (*HouseInfo, error) {
	id := strings.TrimSpace(eingangID)
	if id == "" {
		return nil, fmt.Errorf("%w: eingangId is required", ErrInvalidRequest)
	}

	var info HouseInfo
	endpoint := EndpointHouseInfo + "?eingangId=" + url.QueryEscape(id)
	if err := c.cachedGet(ctx, EndpointHouseInfo, endpoint, "hexapi:house:"+id, &info); err != nil {
		return nil, err
	}
	if !info.HasCoordinates() {
		c.logger.Warn("house info without coordinates",
			zap.String("op", "hexapi.HouseInfo"),
			zap.String("eingangId", id),
		)
	}
	return &info, nil
}

// Calculation submits the offer form and returns the offered products.
func (c *Client) Calculation(ctx context.Context, req CalculationRequest) ([]offer.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, f := range req.fields() {
		if err := writer.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("failed to encode form field %s: %w", f.name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode form: %w", err)
	}
	payload := buf.Bytes()
	contentType := writer.FormDataContentType()

	c.logger.Info("sending calculation request",
		zap.String("op", "hexapi.Calculation"),
		zap.String("eingangId", req.EingangID),
		zap.String("newHeatingPlace", req.NewHeatingPlace),
	)

	body, err := c.do(ctx, EndpointCalculation, func(ctx context.Context) (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+EndpointCalculation, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		r.Header.Set("Content-Type", contentType)
		return r, nil
	})
	if err != nil {
		return nil, err
	}

	products, err := offer.DecodeProducts(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDownstreamUnavailable, EndpointCalculation, err)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("%w: %s: no calculation results available", ErrDownstreamUnavailable, EndpointCalculation)
	}

	c.logger.Info("received calculation results",
		zap.String("op", "hexapi.Calculation"),
		zap.Int("products", len(products)),
	)
	return products, nil
}

// cachedGet decodes the JSON answer of a GET into out. Only answers that
// decode are cached.
func (c *Client) cachedGet(ctx context.Context, name, endpoint, key string, out any) error {
	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, key); ok {
			if err := json.Unmarshal([]byte(cached), out); err == nil {
				c.logger.Debug("cache hit",
					zap.String("op", "hexapi.cachedGet"),
					zap.String("key", key),
				)
				return nil
			}
		}
	}

	body, err := c.do(ctx, name, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+endpoint, nil)
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: failed to decode response: %w", ErrDownstreamUnavailable, name, err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, string(body), c.cacheTTL); err != nil {
			c.logger.Warn("failed to cache response",
				zap.String("op", "hexapi.cachedGet"),
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
	return nil
}

// do sends the request built by newRequest, retrying transient failures.
func (c *Client) do(ctx context.Context, name string, newRequest func(context.Context) (*http.Request, error)) ([]byte, error) {
	start := time.Now()

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.InitialInterval = c.initialInterval
	retryPolicy.MaxInterval = 10 * c.initialInterval
	retryPolicy.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(retryPolicy, c.maxRetries), ctx)

	body, err := backoff.RetryNotifyWithData(
		func() ([]byte, error) {
			req, err := newRequest(ctx)
			if err != nil {
				return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				if ctx.Err() != nil {
					return nil, backoff.Permanent(err)
				}
				return nil, err
			}
			defer func() {
				_ = resp.Body.Close()
			}()

			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, fmt.Errorf("read response: %w", err)
			}

			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				statusErr := &StatusError{Endpoint: name, StatusCode: resp.StatusCode, Body: string(data)}
				if statusErr.retryable() {
					return nil, statusErr
				}
				return nil, backoff.Permanent(statusErr)
			}
			return data, nil
		},
		policy,
		func(err error, next time.Duration) {
			c.logger.Warn("heating-offer API request failed, retrying...",
				zap.String("op", "hexapi.do"),
				zap.String("endpoint", name),
				zap.Error(err),
				zap.Duration("next_attempt_in", next),
			)
		},
	)

	if err != nil {
		metrics.ObserveUpstream(name, metrics.ResultError, time.Since(start))
		c.logger.Error("heating-offer API request failed",
			zap.String("op", "hexapi.do"),
			zap.String("endpoint", name),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrDownstreamUnavailable, err)
	}

	metrics.ObserveUpstream(name, metrics.ResultSuccess, time.Since(start))
	return body, nil
}
