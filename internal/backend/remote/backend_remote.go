// Copyright (c) 2025 Steve Taranto staranto@gmail.com.
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

const (
	// DefaultPath is where the authorization service serves gated assets.
	DefaultPath = "/api/secure-image"

	// DefaultMaxBytes caps a single asset body. 3D models can be large.
	DefaultMaxBytes int64 = 256 << 20

	defaultRetryMax     = 2
	defaultRetryWaitMin = 250 * time.Millisecond
	defaultRetryWaitMax = 2 * time.Second
)

// Sentinel errors for construction problems.
var (
	ErrBaseURLNotSet  = errors.New("base URL is not set")
	ErrBaseURLInvalid = errors.New("base URL must be absolute http(s)")
	ErrBodyTooLarge   = errors.New("response body exceeds size limit")
)

// BackendRemote talks to the asset-authorization service over HTTP.
type BackendRemote struct {
	BaseURL   *url.URL
	Path      string
	Token     string
	UserAgent string
	MaxBytes  int64

	client  *retryablehttp.Client
	limiter *rate.Limiter
}

// Option customizes a BackendRemote.
type Option func(*BackendRemote)

// WithPath overrides DefaultPath.
func WithPath(p string) Option {
	return func(be *BackendRemote) {
		if p != "" {
			be.Path = "/" + strings.Trim(p, "/")
		}
	}
}

// WithToken sends the token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(be *BackendRemote) { be.Token = token }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(be *BackendRemote) { be.UserAgent = ua }
}

// WithMaxBytes caps the response body size. n <= 0 keeps the default.
func WithMaxBytes(n int64) Option {
	return func(be *BackendRemote) {
		if n > 0 {
			be.MaxBytes = n
		}
	}
}

// WithRetries sets how many times a transient failure is retried and the
// backoff bounds. max < 0 keeps the default.
func WithRetries(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(be *BackendRemote) {
		if maxRetries >= 0 {
			be.client.RetryMax = maxRetries
		}
		if waitMin > 0 {
			be.client.RetryWaitMin = waitMin
		}
		if waitMax > 0 {
			be.client.RetryWaitMax = waitMax
		}
	}
}

// WithRateLimit limits outbound requests to perSecond with the given burst.
// perSecond <= 0 disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(be *BackendRemote) {
		if perSecond <= 0 {
			be.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		be.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithHTTPClient replaces the pooled client used underneath the retry layer.
func WithHTTPClient(c *http.Client) Option {
	return func(be *BackendRemote) {
		if c != nil {
			be.client.HTTPClient = c
		}
	}
}

// NewBackendRemote builds a backend for the service at baseURL.
func NewBackendRemote(baseURL string, opts ...Option) (*BackendRemote, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("failed to create remote backend: %w", ErrBaseURLNotSet)
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL %q: %w", baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("failed to create remote backend from %q: %w", baseURL, ErrBaseURLInvalid)
	}

	client := retryablehttp.NewClient()
	client.HTTPClient = cleanhttp.DefaultPooledClient()
	client.RetryMax = defaultRetryMax
	client.RetryWaitMin = defaultRetryWaitMin
	client.RetryWaitMax = defaultRetryWaitMax
	client.Logger = leveledLogger{}
	// Hand the final response back so status mapping sees 5xx after retries.
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	be := &BackendRemote{
		BaseURL:  u,
		Path:     DefaultPath,
		MaxBytes: DefaultMaxBytes,
		client:   client,
	}
	for _, opt := range opts {
		opt(be)
	}

	return be, nil
}

// ResolveToken returns the bearer token with precedence ASSETCTL_TOKEN env >
// configured value.
func ResolveToken(configured string) string {
	if t := os.Getenv("ASSETCTL_TOKEN"); t != "" {
		return t
	}
	return configured
}

func (be *BackendRemote) String() string {
	token := ""
	if be.Token != "" {
		token = "********"
	}
	return fmt.Sprintf("BackendRemote: base=%s path=%s token=%s retries=%d", be.BaseURL, be.Path, token, be.client.RetryMax)
}
