// Package fetch performs the GET requests the translation providers and the
// dictionary need. It is deliberately small: one method, raw status and
// body back, and no interpretation of either.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout bounds one request.
const DefaultTimeout = 10 * time.Second

// Response is a completed HTTP exchange. Non-2xx statuses are not errors.
type Response struct {
	Status int
	Body   []byte
}

// OK reports whether Status is 2xx.
func (r *Response) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// Options configures a Client.
type Options struct {
	// Timeout per request. Zero uses DefaultTimeout.
	Timeout time.Duration
	// Proxy URL. Empty falls back to HTTP_PROXY/HTTPS_PROXY.
	Proxy string
	// UserAgent sent with every request.
	UserAgent string
}

func (o Options) effectiveTimeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return DefaultTimeout
}

func (o Options) effectiveUserAgent() string {
	if o.UserAgent != "" {
		return o.UserAgent
	}
	return "quicktrans"
}

// Client is a resty-backed fetcher.
type Client struct {
	http *resty.Client
}

// New builds a Client.
func New(opts Options) *Client {
	c := resty.NewWithClient(makeHTTPClient(opts.Proxy, opts.effectiveTimeout())).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", opts.effectiveUserAgent())
	return &Client{http: c}
}

// Fetch issues a GET to rawURL. Returned errors carry only the scheme and
// host of the URL: the path and query hold the text being translated.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	r, err := c.http.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", redact(rawURL), redactError(err))
	}
	return &Response{Status: r.StatusCode(), Body: r.Body()}, nil
}

func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// redact keeps scheme and host only.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "<invalid url>"
	}
	return u.Scheme + "://" + u.Host
}

// redactError replaces the *url.Error net/http reports with one whose URL
// is redacted. The cause stays reachable through errors.Is and errors.As.
func redactError(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	return &url.Error{Op: uerr.Op, URL: redact(uerr.URL), Err: uerr.Err}
}
