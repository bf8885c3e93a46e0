// Package httpclient builds the single-use HTTP clients shared by the
// scraper, checker and crawler: one GET, an optional plain HTTP forward
// proxy, and a total-request timeout.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

// DefaultUserAgent is sent when Options.UserAgent is empty
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// ErrInvalidProxy is returned when a proxy endpoint is not a host:port pair.
// It is a caller input error, never a network condition.
var ErrInvalidProxy = errors.New("invalid proxy address")

// Options describes one client. Proxy is a host:port endpoint without a
// scheme; empty means a direct connection.
type Options struct {
	Proxy     string
	Timeout   time.Duration
	UserAgent string
}

// Client issues requests with a fixed transport built from Options
type Client struct {
	http      *http.Client
	proxy     string
	userAgent string
}

// Response is a fully read and decoded response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       string
}

// Success reports whether the status is in the 2xx range
func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// New builds a client. The transport is not shared with any other client and
// does not keep connections alive.
func New(opts Options) (*Client, error) {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   opts.Timeout,
			KeepAlive: -1,
		}).DialContext,
		DisableKeepAlives:   true,
		MaxIdleConns:        0,
		TLSHandshakeTimeout: opts.Timeout,
	}

	if opts.Proxy != "" {
		proxyURL, err := ParseProxyURL(opts.Proxy)
		if err != nil {
			return nil, err
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		proxy:     opts.Proxy,
		userAgent: userAgent,
	}, nil
}

// ParseProxyURL turns a host:port endpoint into the http:// URL used for
// every request scheme.
func ParseProxyURL(proxy string) (*url.URL, error) {
	host, port, err := net.SplitHostPort(proxy)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidProxy, proxy, err)
	}
	if host == "" || strings.ContainsAny(host, "/@ ") {
		return nil, fmt.Errorf("%w %q: bad host", ErrInvalidProxy, proxy)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return nil, fmt.Errorf("%w %q: bad port", ErrInvalidProxy, proxy)
	}

	u, err := url.Parse("http://" + proxy)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidProxy, proxy, err)
	}
	return u, nil
}

// Proxy returns the configured endpoint, empty for direct clients
func (c *Client) Proxy() string {
	return c.proxy
}

// Get issues one GET and reads the whole body. Any failure to obtain or
// decode a response is a *FetchError.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{Op: "request", URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Op: "get", URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Op: "read", URL: rawURL, StatusCode: resp.StatusCode, Err: err}
	}

	body, err := decodeBody(raw, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, &FetchError{Op: "decode", URL: rawURL, StatusCode: resp.StatusCode, Err: err}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// decodeBody converts the body to text using the declared charset. UTF-8 is
// assumed when nothing is declared and must be valid.
func decodeBody(raw []byte, contentType string) (string, error) {
	label := "utf-8"
	if contentType != "" {
		if _, params, err := mime.ParseMediaType(contentType); err == nil {
			if cs := params["charset"]; cs != "" {
				label = strings.ToLower(strings.TrimSpace(cs))
			}
		}
	}

	if label == "utf-8" || label == "utf8" {
		if !utf8.Valid(raw) {
			return "", errors.New("body is not valid utf-8")
		}
		return string(raw), nil
	}

	enc, name := charset.Lookup(label)
	if enc == nil {
		return "", fmt.Errorf("unsupported charset %q", label)
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode %s body: %w", name, err)
	}
	return string(decoded), nil
}
