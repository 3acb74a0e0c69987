// Package pokeapi talks to the public PokeAPI over HTTP and decodes its
// responses into model types. It knows nothing about caching.
package pokeapi

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

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/maxviazov/movedex/internal/model"
)

// DefaultBaseURL is the public v2 endpoint.
const DefaultBaseURL = "https://pokeapi.co/api/v2"

const (
	defaultUserAgent      = "movedex/0.1"
	defaultMaxConcurrency = 10
	maxBodyBytes          = 8 << 20
)

// Client issues GET requests against the upstream API. It is safe for
// concurrent use; at most maxConcurrency requests are in flight at once.
type Client struct {
	baseURL    string
	userAgent  string
	http       *http.Client
	customHTTP bool
	sem        *semaphore.Weighted
	maxConc    int64
	maxBody    int64
	log        zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
			cl.customHTTP = true
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			cl.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
// It has no effect on a client passed through WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 && !cl.customHTTP {
			cl.http.Timeout = d
		}
	}
}

// WithMaxBodyBytes caps the size of a response body. Larger bodies fail with
// ErrUpstream rather than being cut short. Values below 1 are ignored.
func WithMaxBodyBytes(n int64) Option {
	return func(cl *Client) {
		if n > 0 {
			cl.maxBody = n
		}
	}
}

// WithMaxConcurrency caps concurrent upstream requests. Values below 1 are ignored.
func WithMaxConcurrency(n int) Option {
	return func(cl *Client) {
		if n > 0 {
			cl.maxConc = int64(n)
		}
	}
}

func New(baseURL string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("baseURL must not be empty")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid baseURL: %w", err)
	}
	baseURL = strings.TrimRight(baseURL, "/")

	cl := &Client{
		baseURL:   baseURL,
		userAgent: defaultUserAgent,
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		maxConc: defaultMaxConcurrency,
		maxBody: maxBodyBytes,
		log:     logger.With().Str("module", "pokeapi").Logger(),
	}
	for _, o := range opts {
		o(cl)
	}
	cl.sem = semaphore.NewWeighted(cl.maxConc)
	return cl, nil
}

// BaseURL returns the normalized upstream root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Get returns the raw JSON body of {base}/{kind}/{key}/.
func (c *Client) Get(ctx context.Context, kind model.Kind, key string) ([]byte, error) {
	path := "/" + string(kind) + "/" + url.PathEscape(key) + "/"
	return c.get(ctx, path, nil)
}

// GetList returns one page of the list endpoint for kind.
func (c *Client) GetList(ctx context.Context, kind model.Kind, limit, offset int) ([]byte, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return c.get(ctx, "/"+string(kind)+"/", q)
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("upstream request")

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{Method: http.MethodGet, Path: path, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: %s: response body exceeds %d bytes", ErrUpstream, path, c.maxBody)
	}
	return body, nil
}
