package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"proxycrawl/internal/config"
	"proxycrawl/internal/logger"
	"proxycrawl/internal/metrics"
	"proxycrawl/pkg/checker"
	"proxycrawl/pkg/crawler"
	"proxycrawl/pkg/scraper"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	flag "github.com/spf13/pflag"
)

var (
	configPath = flag.StringP("config", "c", "", "Path to config file")
	genConfig  = flag.Bool("gen-config", false, "Generate default config file")
	version    = flag.BoolP("version", "v", false, "Show version")
	proxyAddr  = flag.StringP("proxy", "p", "", "Use this host:port proxy instead of scraping the listing")
	preview    = flag.Int("preview", 200, "Number of body characters to print")
)

const Version = "1.0.0"

var mainLog = logger.New("main")

func main() {
	flag.String("target", "", "Target URL to validate against and crawl (overrides checker.target_url)")
	flag.String("metrics-addr", "", "Expose Prometheus metrics on this address (overrides metrics.listen_addr)")
	flag.Parse()

	if *version {
		fmt.Printf("proxycrawl v%s\n", Version)
		return
	}

	if *genConfig {
		if err := config.SaveConfigTemplate("config.yaml"); err != nil {
			fatal("Failed to generate config: %v", err)
		}
		fmt.Println("Default config generated: config.yaml")
		return
	}

	v := config.New()
	if err := v.BindPFlag("checker.target_url", flag.Lookup("target")); err != nil {
		fatal("Failed to bind flags: %v", err)
	}
	if err := v.BindPFlag("metrics.listen_addr", flag.Lookup("metrics-addr")); err != nil {
		fatal("Failed to bind flags: %v", err)
	}

	cfg, err := config.Load(v, *configPath)
	if err != nil {
		fatal("Failed to load config: %v", err)
	}
	if err := logger.Configure(cfg.Log.Level, cfg.Log.Format); err != nil {
		fatal("Failed to configure logging: %v", err)
	}
	config.PrintConfig(cfg)

	if cfg.Metrics.ListenAddr != "" {
		mainLog.InfoBg("Serving metrics on %s/metrics", cfg.Metrics.ListenAddr)
		errc := metrics.Serve(cfg.Metrics.ListenAddr)
		go func() {
			if err := <-errc; err != nil {
				mainLog.ErrorBg("Metrics server error: %v", err)
			}
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		color.Red("Error: %v", err)
		cancel()
		os.Exit(1)
	}
}

func fatal(message string, args ...interface{}) {
	mainLog.ErrorBg(message, args...)
	os.Exit(1)
}

func run(ctx context.Context, cfg *config.Config) error {
	userAgent := cfg.HTTP.ResolveUserAgent()
	target := cfg.Checker.TargetURL

	proxy := *proxyAddr
	if proxy != "" {
		mainLog.DebugBg("Using proxy %s from --proxy, skipping the listing", proxy)
	} else {
		fmt.Println("Fetching proxies...")
		s := scraper.NewFreeProxyListScraperWithConfig(scraper.ScraperConfig{
			ListURL:   cfg.Scraper.ListURL,
			Timeout:   cfg.Scraper.Timeout,
			UserAgent: userAgent,
		})
		proxies, err := s.Scrape(ctx)
		if err != nil {
			return fmt.Errorf("fetch proxies: %w", err)
		}
		fmt.Printf("Fetched %d proxies\n", len(proxies))
		if len(proxies) == 0 {
			fmt.Println("No proxies found.")
			return nil
		}
		proxy = proxies[0]
	}

	fmt.Printf("Validating proxy %s for %s\n", proxy, target)
	chk := checker.NewCheckerWithConfig(checker.CheckerConfig{
		Timeout:   cfg.Checker.Timeout,
		UserAgent: userAgent,
	})
	ok, err := chk.Validate(ctx, proxy, target)
	if err != nil {
		return fmt.Errorf("validate proxy: %w", err)
	}
	if !ok {
		color.Yellow("Proxy valid: false")
		return nil
	}
	color.Green("Proxy valid: true")

	fmt.Printf("Crawling %s via proxy %s\n", target, proxy)
	c := crawler.NewCrawlerWithConfig(crawler.CrawlerConfig{
		Timeout:   cfg.Crawler.Timeout,
		UserAgent: userAgent,
	})
	body, err := c.Crawl(ctx, target, proxy)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return errors.New("interrupted")
		}
		return fmt.Errorf("crawl: %w", err)
	}

	fmt.Printf("Response body (%s, first %d chars):\n%s\n", humanize.Bytes(uint64(len(body))), *preview, truncate(body, *preview))
	return nil
}

func truncate(s string, n int) string {
	if n < 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
