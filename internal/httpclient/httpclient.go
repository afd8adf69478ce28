// Package httpclient implements the ports.HTTPClient contract on top of
// github.com/hashicorp/go-retryablehttp, which already does the
// exponential-with-jitter retry backoff §5 asks the HTTP client layer to
// own, plus a golang.org/x/time/rate per-host limiter so concurrent
// company scrapes against the same board vendor stay polite.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"jobscrapecore/internal/ports"
)

// defaultHostRate and defaultHostBurst are the per-host token bucket
// settings New() uses; NewWithRateLimit lets a caller that knows a board
// vendor's real rate limit tune both.
const (
	defaultHostRate  = 5
	defaultHostBurst = 10
)

// Client is the concrete ports.HTTPClient binding, shared (thread-safe)
// across every adapter per §5's shared-resource rules.
type Client struct {
	inner *retryablehttp.Client

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
	hostRate  rate.Limit
	hostBurst int
}

// New builds a Client with sane connection-level defaults; per-call
// timeout/retries/headers still come from ports.RequestOptions.
func New() *Client {
	return NewWithRateLimit(defaultHostRate, defaultHostBurst)
}

// NewWithRateLimit builds a Client whose per-host token bucket uses the
// given sustained rate and burst, for adapters whose board vendor
// documents a different tolerance than the default. Every outbound
// request waits on its destination host's bucket first, so a batch scrape
// across many companies on the same vendor can't hammer one host just
// because several adapters happen to run concurrently.
func NewWithRateLimit(reqPerSec float64, burst int) *Client {
	c := retryablehttp.NewClient()
	c.Logger = nil
	c.RetryWaitMin = 250 * time.Millisecond
	c.RetryWaitMax = 5 * time.Second
	c.RetryMax = 3
	return &Client{
		inner:     c,
		limiters:  make(map[string]*rate.Limiter),
		hostRate:  rate.Limit(reqPerSec),
		hostBurst: burst,
	}
}

// waitForHost blocks until the destination host's token bucket admits one
// more request, lazily creating that host's bucket on first use.
func (c *Client) waitForHost(ctx context.Context, rawURL string) error {
	host := "_"
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}

	c.limiterMu.Lock()
	lim, ok := c.limiters[host]
	if !ok {
		lim = rate.NewLimiter(c.hostRate, c.hostBurst)
		c.limiters[host] = lim
	}
	c.limiterMu.Unlock()

	return lim.Wait(ctx)
}

func (c *Client) Get(ctx context.Context, url string, opts ports.RequestOptions) (*ports.Response, error) {
	return c.do(ctx, http.MethodGet, url, nil, opts)
}

func (c *Client) Post(ctx context.Context, url string, body []byte, opts ports.RequestOptions) (*ports.Response, error) {
	return c.do(ctx, http.MethodPost, url, bytes.NewReader(body), opts)
}

func (c *Client) Fetch(ctx context.Context, url string, opts ports.RequestOptions) (*ports.Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	body := opts.Body
	return c.do(ctx, method, url, body, opts)
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader, opts ports.RequestOptions) (*ports.Response, error) {
	if err := c.waitForHost(ctx, url); err != nil {
		return nil, err
	}

	client := c.inner
	if opts.Retries > 0 {
		tuned := *c.inner
		tuned.RetryMax = opts.Retries
		if opts.BaseDelay > 0 {
			tuned.RetryWaitMin = opts.BaseDelay
		}
		client = &tuned
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	out := &ports.Response{
		OK:     resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status: resp.StatusCode,
		Text:   func() (string, error) { return string(raw), nil },
		JSON:   func(v any) error { return json.Unmarshal(raw, v) },
	}
	return out, nil
}
