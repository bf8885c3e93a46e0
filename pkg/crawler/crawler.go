package crawler

import (
	"context"
	"time"

	"proxycrawl/internal/logger"
	"proxycrawl/internal/metrics"
	"proxycrawl/pkg/httpclient"
)

// DefaultTimeout is the total budget for one page fetch
const DefaultTimeout = 10 * time.Second

type Crawler struct {
	timeout   time.Duration
	userAgent string
	logger    *logger.Logger
}

type CrawlerConfig struct {
	Timeout   time.Duration
	UserAgent string
}

func NewCrawler() *Crawler {
	return &Crawler{
		timeout:   DefaultTimeout,
		userAgent: httpclient.DefaultUserAgent,
		logger:    logger.New("crawler"),
	}
}

func NewCrawlerWithConfig(config CrawlerConfig) *Crawler {
	c := NewCrawler()
	if config.Timeout > 0 {
		c.timeout = config.Timeout
	}
	if config.UserAgent != "" {
		c.userAgent = config.UserAgent
	}
	return c
}

// Crawl fetches url, through proxy when it is non-empty, and returns the
// body. The status code is not inspected: any response with a readable body
// is a success. Failing to get one is a *httpclient.FetchError.
func (c *Crawler) Crawl(ctx context.Context, url, proxy string) (string, error) {
	resp, err := c.CrawlPage(ctx, url, proxy)
	if err != nil {
		return "", err
	}
	return resp.Body, nil
}

// CrawlPage is Crawl with the status code and headers kept
func (c *Crawler) CrawlPage(ctx context.Context, url, proxy string) (*httpclient.Response, error) {
	id := logger.GenerateID()
	start := time.Now()

	client, err := httpclient.New(httpclient.Options{
		Proxy:     proxy,
		Timeout:   c.timeout,
		UserAgent: c.userAgent,
	})
	if err != nil {
		c.logger.Error(id, "Rejected proxy %q: %v", proxy, err)
		return nil, err
	}

	via := proxy
	if via == "" {
		via = "direct"
	}
	c.logger.Debug(id, "Crawling %s (%s)", url, via)

	resp, err := client.Get(ctx, url)
	if err != nil {
		metrics.Observe(metrics.OpCrawl, "fetch_error", time.Since(start))
		c.logger.Warn(id, "Crawl of %s failed: %v", url, err)
		return nil, err
	}

	metrics.Observe(metrics.OpCrawl, "ok", time.Since(start))
	c.logger.Info(id, "Crawled %s (%s): HTTP %d, %d bytes", url, via, resp.StatusCode, len(resp.Body))
	return resp, nil
}
