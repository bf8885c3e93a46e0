package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"proxycrawl/internal/logger"
	"proxycrawl/internal/metrics"
	"proxycrawl/pkg/httpclient"

	"github.com/PuerkitoBio/goquery"
)

const (
	FreeProxyListURL = "https://free-proxy-list.net/"

	// DefaultTimeout bounds the listing page fetch. It matches the crawler's
	// policy instead of leaving the client without a deadline.
	DefaultTimeout = 10 * time.Second

	rowSelector  = ".table-responsive tbody tr"
	cellSelector = "td"

	wantCountry = "Canada"
	wantHTTPS   = "yes"
)

var _ Scraper = (*FreeProxyListScraper)(nil)

type FreeProxyListScraper struct {
	listURL   string
	timeout   time.Duration
	userAgent string
	logger    *logger.Logger
}

func NewFreeProxyListScraper() *FreeProxyListScraper {
	return &FreeProxyListScraper{
		listURL:   FreeProxyListURL,
		timeout:   DefaultTimeout,
		userAgent: httpclient.DefaultUserAgent,
		logger:    logger.New("freeproxylist"),
	}
}

func NewFreeProxyListScraperWithConfig(config ScraperConfig) *FreeProxyListScraper {
	s := NewFreeProxyListScraper()
	if config.ListURL != "" {
		s.listURL = config.ListURL
	}
	if config.Timeout > 0 {
		s.timeout = config.Timeout
	}
	if config.UserAgent != "" {
		s.userAgent = config.UserAgent
	}
	return s
}

func (f *FreeProxyListScraper) Name() string {
	return "freeproxylist"
}

// Scrape fetches the listing page and returns the Canadian HTTPS-capable
// endpoints in page order. The status code of the listing page is not
// checked; an error page simply yields no rows.
func (f *FreeProxyListScraper) Scrape(ctx context.Context) ([]string, error) {
	id := logger.GenerateID()
	start := time.Now()

	client, err := httpclient.New(httpclient.Options{
		Timeout:   f.timeout,
		UserAgent: f.userAgent,
	})
	if err != nil {
		return nil, err
	}

	f.logger.Debug(id, "Fetching listing %s", f.listURL)
	resp, err := client.Get(ctx, f.listURL)
	if err != nil {
		metrics.Observe(metrics.OpScrape, "fetch_error", time.Since(start))
		f.logger.Warn(id, "Listing fetch failed: %v", err)
		return nil, err
	}

	proxies, err := f.ParseProxies(resp.Body)
	if err != nil {
		metrics.Observe(metrics.OpScrape, "parse_error", time.Since(start))
		return nil, err
	}

	metrics.Observe(metrics.OpScrape, "ok", time.Since(start))
	metrics.ProxiesScraped.Set(float64(len(proxies)))
	f.logger.Info(id, "Collected %d proxies from %s (HTTP %d)", len(proxies), f.listURL, resp.StatusCode)
	return proxies, nil
}

// ParseProxies applies the listing selectors and filter to an HTML body
func (f *FreeProxyListScraper) ParseProxies(body string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	rows, err := ExtractRows(doc, rowSelector, cellSelector, FreeProxyListSchema)
	if err != nil {
		return nil, err
	}

	proxies := []string{}
	for row := range rows {
		if row.Country != wantCountry || row.HTTPS != wantHTTPS {
			continue
		}
		proxies = append(proxies, fmt.Sprintf("%s:%s", strings.TrimSpace(row.IP), strings.TrimSpace(row.Port)))
	}
	return proxies, nil
}
