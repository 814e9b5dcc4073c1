package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
)

// Options tunes the resty-backed transport.
type Options struct {
	Timeout time.Duration
	// ProxyURL routes requests through an HTTP proxy; https targets are
	// tunnelled with CONNECT.
	ProxyURL      string
	ProxyUser     string
	ProxyPassword string
	// SkipTLSVerify disables certificate verification.
	SkipTLSVerify bool
	Headers       map[string]string
}

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client  *resty.Client
	headers map[string]string
}

// NewRestyClient creates a new RestyClient with the specified timeout.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(timeout)}
}

// New creates a RestyClient from opts, including proxy settings.
func New(opts Options) (*RestyClient, error) {
	c := newRestyBaseClient(opts.Timeout)

	if proxy := strings.TrimSpace(opts.ProxyURL); proxy != "" {
		proxyURL, err := proxyAddress(proxy, opts.ProxyUser, opts.ProxyPassword)
		if err != nil {
			return nil, err
		}
		c.SetProxy(proxyURL)
	}
	if opts.SkipTLSVerify {
		c.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) //nolint:gosec // opt-in
	}

	return &RestyClient{client: c, headers: opts.Headers}, nil
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return c
}

// proxyAddress builds the proxy URL, embedding credentials when both are set.
func proxyAddress(raw, user, password string) (string, error) {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse proxy url: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("proxy url %q has no host", raw)
	}
	if user != "" && password != "" {
		u.User = url.UserPassword(user, password)
	}
	return u.String(), nil
}

// Get performs an HTTP GET request with the specified context, URL, and headers.
func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := r.client.R().SetContext(ctx)
	if len(r.headers) > 0 {
		req.SetHeaders(r.headers)
	}
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// Fetch performs a GET and returns the body. Bodies of 4xx responses are
// returned as is since the API reports failures inside JSON; 5xx is an error.
func (r *RestyClient) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := r.Get(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() >= http.StatusInternalServerError {
		return nil, &StatusError{Code: resp.StatusCode(), Body: snippet(resp.Body())}
	}
	return resp.Body(), nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }

func snippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return s[:cut] + "..."
	}
	return s
}
