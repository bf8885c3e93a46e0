package checker

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"time"

	"proxycrawl/internal/logger"
	"proxycrawl/internal/metrics"
	"proxycrawl/pkg/httpclient"
)

// DefaultTimeout is the total budget for one probe request
const DefaultTimeout = 5 * time.Second

type ProxyStatus int

const (
	StatusUnknown ProxyStatus = iota
	StatusHealthy
	StatusUnhealthy
	StatusTimeout
	StatusError
)

func (s ProxyStatus) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusUnhealthy:
		return "unhealthy"
	case StatusTimeout:
		return "timeout"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// CheckResult is the outcome of one probe request. Error holds the
// transport failure or bad status behind a non-healthy Status; it is
// informational and never returned to the caller as an error.
type CheckResult struct {
	Proxy        string
	Target       string
	Status       ProxyStatus
	StatusCode   int
	ResponseTime time.Duration
	Error        error
	CheckedAt    time.Time
}

type Checker struct {
	timeout   time.Duration
	userAgent string
	logger    *logger.Logger
}

type CheckerConfig struct {
	Timeout   time.Duration
	UserAgent string
}

func NewChecker() *Checker {
	return &Checker{
		timeout:   DefaultTimeout,
		userAgent: httpclient.DefaultUserAgent,
		logger:    logger.New("checker"),
	}
}

func NewCheckerWithConfig(config CheckerConfig) *Checker {
	c := NewChecker()
	if config.Timeout > 0 {
		c.timeout = config.Timeout
	}
	if config.UserAgent != "" {
		c.userAgent = config.UserAgent
	}
	return c
}

// Validate reports whether one GET to targetURL through proxy returned a 2xx
// within the timeout.
//
// Every network outcome (refused, timed out, DNS failure, non-2xx) is false
// with a nil error: an unreachable proxy is an expected result. The only
// error is httpclient.ErrInvalidProxy for an endpoint that is not host:port.
// The crawler and scraper propagate the same failures; that difference is
// intentional.
func (c *Checker) Validate(ctx context.Context, proxy, targetURL string) (bool, error) {
	result, err := c.CheckProxy(ctx, proxy, targetURL)
	if err != nil {
		return false, err
	}
	return result.Status == StatusHealthy, nil
}

// CheckProxy probes targetURL through proxy once and classifies the outcome
func (c *Checker) CheckProxy(ctx context.Context, proxy, targetURL string) (CheckResult, error) {
	id := logger.GenerateID()
	start := time.Now()
	result := CheckResult{
		Proxy:     proxy,
		Target:    targetURL,
		CheckedAt: start,
	}

	// A probe always goes through a proxy; an empty endpoint is not "direct" here.
	if _, err := httpclient.ParseProxyURL(proxy); err != nil {
		c.logger.Error(id, "Rejected proxy %q: %v", proxy, err)
		return result, err
	}

	client, err := httpclient.New(httpclient.Options{
		Proxy:     proxy,
		Timeout:   c.timeout,
		UserAgent: c.userAgent,
	})
	if err != nil {
		c.logger.Error(id, "Rejected proxy %q: %v", proxy, err)
		return result, err
	}

	c.logger.Debug(id, "Probing %s via %s", targetURL, proxy)
	result.Status, result.StatusCode, result.Error = c.probe(ctx, client, targetURL)
	result.ResponseTime = time.Since(start)

	metrics.Observe(metrics.OpValidate, result.Status.String(), result.ResponseTime)
	if result.Status == StatusHealthy {
		c.logger.Info(id, "Proxy %s healthy for %s (HTTP %d, %v)", proxy, targetURL, result.StatusCode, result.ResponseTime)
	} else {
		c.logger.Info(id, "Proxy %s %s for %s: %v", proxy, result.Status, targetURL, result.Error)
	}

	return result, nil
}

func (c *Checker) probe(ctx context.Context, client *httpclient.Client, targetURL string) (ProxyStatus, int, error) {
	resp, err := client.Get(ctx, targetURL)
	if err != nil {
		// The body is irrelevant to a probe once a status line arrived.
		var fetchErr *httpclient.FetchError
		if errors.As(err, &fetchErr) && fetchErr.StatusCode != 0 {
			return classifyStatus(fetchErr.StatusCode)
		}
		if httpclient.IsTimeout(err) {
			return StatusTimeout, 0, err
		}
		if isConnectionError(err) {
			return StatusUnhealthy, 0, err
		}
		return StatusError, 0, err
	}

	return classifyStatus(resp.StatusCode)
}

func classifyStatus(code int) (ProxyStatus, int, error) {
	if code >= 200 && code < 300 {
		return StatusHealthy, code, nil
	}
	return StatusUnhealthy, code, fmt.Errorf("HTTP %d", code)
}

func isConnectionError(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH)
}
