package scraper

import (
	"context"
	"time"
)

// Row is one listing table row, exactly as it appears in the markup
type Row struct {
	IP      string
	Port    string
	Country string
	HTTPS   string
}

// Schema maps named columns to their positions in a listing row
type Schema struct {
	IP      int
	Port    int
	Country int
	HTTPS   int
}

// FreeProxyListSchema is the column layout of free-proxy-list.net
var FreeProxyListSchema = Schema{IP: 0, Port: 1, Country: 3, HTTPS: 6}

// Width is the number of cells a row needs before every column can be read
func (s Schema) Width() int {
	return max(s.IP, s.Port, s.Country, s.HTTPS) + 1
}

// Scraper produces proxy endpoints ("host:port") from a listing source
type Scraper interface {
	Name() string
	Scrape(ctx context.Context) ([]string, error)
}

type ScraperConfig struct {
	ListURL   string
	Timeout   time.Duration
	UserAgent string
}
