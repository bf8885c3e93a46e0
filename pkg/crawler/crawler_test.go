package crawler

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"proxycrawl/pkg/httpclient"

	"github.com/elazarl/goproxy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageServer(t *testing.T, code int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(code)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func fastCrawler() *Crawler {
	return NewCrawlerWithConfig(CrawlerConfig{Timeout: time.Second})
}

func TestDefaultTimeout(t *testing.T) {
	assert.Equal(t, 10*time.Second, DefaultTimeout)
	assert.Equal(t, DefaultTimeout, NewCrawler().timeout)
}

func TestCrawlDirect(t *testing.T) {
	const page = "<html><body><h1>Box Scores</h1></body></html>"
	target := pageServer(t, http.StatusOK, page)

	body, err := fastCrawler().Crawl(context.Background(), target.URL, "")
	require.NoError(t, err)
	assert.Equal(t, page, body)
}

func TestCrawlReturnsBodyForErrorStatus(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusTooManyRequests, http.StatusInternalServerError} {
		target := pageServer(t, code, "blocked")

		body, err := fastCrawler().Crawl(context.Background(), target.URL, "")
		require.NoError(t, err, "HTTP %d", code)
		assert.Equal(t, "blocked", body)
	}
}

func TestCrawlPageKeepsStatus(t *testing.T) {
	target := pageServer(t, http.StatusServiceUnavailable, "later")

	resp, err := fastCrawler().CrawlPage(context.Background(), target.URL, "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "later", resp.Body)
}

func TestCrawlThroughProxy(t *testing.T) {
	target := pageServer(t, http.StatusOK, "proxied page")

	proxied := 0
	fwd := goproxy.NewProxyHttpServer()
	fwd.OnRequest().DoFunc(func(r *http.Request, ctx *goproxy.ProxyCtx) (*http.Request, *http.Response) {
		proxied++
		return r, nil
	})
	proxy := httptest.NewServer(fwd)
	defer proxy.Close()

	body, err := fastCrawler().Crawl(context.Background(), target.URL, proxy.Listener.Addr().String())
	require.NoError(t, err)
	assert.Equal(t, "proxied page", body)
	assert.Equal(t, 1, proxied)
}

func TestCrawlConnectionFailure(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	_, err = fastCrawler().Crawl(context.Background(), "http://"+addr+"/", "")
	var fetchErr *httpclient.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.False(t, fetchErr.Timeout())

	target := pageServer(t, http.StatusOK, "unreachable")
	_, err = fastCrawler().Crawl(context.Background(), target.URL, addr)
	require.ErrorAs(t, err, &fetchErr)
}

func TestCrawlTimeout(t *testing.T) {
	release := make(chan struct{})
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer target.Close()
	defer close(release)

	c := NewCrawlerWithConfig(CrawlerConfig{Timeout: 100 * time.Millisecond})

	_, err := c.Crawl(context.Background(), target.URL, "")
	var fetchErr *httpclient.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.True(t, fetchErr.Timeout())
}

func TestCrawlContextCanceled(t *testing.T) {
	target := pageServer(t, http.StatusOK, "never read")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fastCrawler().Crawl(ctx, target.URL, "")
	var fetchErr *httpclient.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCrawlMalformedProxy(t *testing.T) {
	_, err := fastCrawler().Crawl(context.Background(), "http://example.com", "example.com")
	assert.ErrorIs(t, err, httpclient.ErrInvalidProxy)
}
