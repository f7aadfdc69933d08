package network

import (
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	fhttpcookiejar "github.com/bogdanfinn/fhttp/cookiejar"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/rs/zerolog"
)

const DefaultTimeout = 10 * time.Second

var ErrRequestFailed = errors.New("request failed")

// Chrome user agents matching the Chrome_120 TLS profile.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

type ClientOptions struct {
	// Rotator is optional; without it requests go out directly.
	Rotator *Rotator
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Client sends ATS requests with a browser TLS fingerprint, a cookie jar and a rotating user
// agent. It satisfies the scraper Doer interface.
type Client struct {
	http    tls_client.HttpClient
	rotator *Rotator
	logger  zerolog.Logger
	uaIndex atomic.Uint32
}

func NewClient(opts ClientOptions) (*Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	jar, err := fhttpcookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	httpClient, err := tls_client.NewHttpClient(
		tls_client.NewNoopLogger(),
		tls_client.WithClientProfile(profiles.Chrome_120),
		tls_client.WithTimeoutSeconds(timeoutSeconds(timeout)),
		tls_client.WithCookieJar(jar),
	)
	if err != nil {
		return nil, fmt.Errorf("tls client: %w", err)
	}

	return &Client{
		http:    httpClient,
		rotator: opts.Rotator,
		logger:  opts.Logger,
	}, nil
}

func timeoutSeconds(timeout time.Duration) int {
	seconds := int(timeout.Round(time.Second) / time.Second)
	if seconds < 1 {
		return 1
	}
	return seconds
}

func (c *Client) Do(req *fhttp.Request) (*fhttp.Response, error) {
	proxy := c.useProxy()
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.nextUserAgent())
	}
	if req.Header.Get("Accept-Language") == "" {
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.rotator.ReportFailure(proxy)
		return nil, errors.Join(ErrRequestFailed, err)
	}
	if proxy != nil {
		c.rotator.Report(proxy, resp.StatusCode)
	}
	c.logger.Debug().
		Str("host", req.URL.Host).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("http request")
	return resp, nil
}

// useProxy points the underlying client at the next healthy proxy. With every proxy benched the
// request goes out directly.
func (c *Client) useProxy() *url.URL {
	if c.rotator == nil {
		return nil
	}
	proxy, err := c.rotator.Next()
	if err != nil {
		c.logger.Debug().Err(err).Msg("sending without proxy")
		return nil
	}
	if err := c.http.SetProxy(proxy.String()); err != nil {
		c.logger.Warn().Str("proxy", proxy.Redacted()).Err(err).Msg("set proxy")
		return nil
	}
	return proxy
}

func (c *Client) nextUserAgent() string {
	i := c.uaIndex.Add(1) - 1
	return userAgents[int(i)%len(userAgents)]
}
