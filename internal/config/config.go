package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/corpix/uarand"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Scraper ScraperConfig `mapstructure:"scraper" validate:"required"`
	Checker CheckerConfig `mapstructure:"checker" validate:"required"`
	Crawler CrawlerConfig `mapstructure:"crawler" validate:"required"`
	HTTP    HTTPConfig    `mapstructure:"http" validate:"required"`
	Log     LogConfig     `mapstructure:"log" validate:"required"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type ScraperConfig struct {
	ListURL string        `mapstructure:"list_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"required,min=1s,max=2m"`
}

type CheckerConfig struct {
	TargetURL string        `mapstructure:"target_url" validate:"required,url"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"required,min=100ms,max=1m"`
}

type CrawlerConfig struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"required,min=100ms,max=2m"`
}

type HTTPConfig struct {
	UserAgent       string `mapstructure:"user_agent" validate:"omitempty,min=10"`
	RandomUserAgent bool   `mapstructure:"random_user_agent"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=trace debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

type MetricsConfig struct {
	ListenAddr string `mapstructure:"listen_addr" validate:"omitempty,hostname_port"`
}

// ResolveUserAgent returns the configured agent, or a random browser agent
// when random_user_agent is set.
func (c HTTPConfig) ResolveUserAgent() string {
	if c.RandomUserAgent {
		return uarand.GetRandom()
	}
	return c.UserAgent
}

// setDefaults configures default values for viper
func setDefaults(v *viper.Viper) {
	// Scraper defaults
	v.SetDefault("scraper.list_url", "https://free-proxy-list.net/")
	v.SetDefault("scraper.timeout", "10s")

	// Checker defaults
	v.SetDefault("checker.target_url", "https://www.basketball-reference.com/")
	v.SetDefault("checker.timeout", "5s")

	// Crawler defaults
	v.SetDefault("crawler.timeout", "10s")

	// HTTP defaults
	v.SetDefault("http.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("http.random_user_agent", false)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Metrics defaults
	v.SetDefault("metrics.listen_addr", "")
}

// New returns a viper instance with search paths, env binding and defaults
// applied. The CLI binds its flags onto it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/proxycrawl")

	// Set environment variable prefix and enable reading from env
	v.SetEnvPrefix("PROXYCRAWL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

// Load reads configuration into v and validates the result
func Load(v *viper.Viper, configPath string) (*Config, error) {
	// Load .env file if it exists; real environment variables still win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: Failed to load .env file: %v", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
		log.Println("No config file found, using defaults and environment variables")
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// SaveConfigTemplate generates a sample configuration file
func SaveConfigTemplate(path string) error {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")

	if err := v.SafeWriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config template: %w", err)
	}

	return nil
}

// PrintConfig displays the current configuration (for debugging)
func PrintConfig(config *Config) {
	log.Printf("Configuration loaded:")
	log.Printf("  Listing: %s (timeout %v)", config.Scraper.ListURL, config.Scraper.Timeout)
	log.Printf("  Checker: %s (timeout %v)", config.Checker.TargetURL, config.Checker.Timeout)
	log.Printf("  Crawler: timeout %v", config.Crawler.Timeout)
	if config.HTTP.RandomUserAgent {
		log.Printf("  User-Agent: [RANDOM]")
	} else {
		log.Printf("  User-Agent: %s", config.HTTP.UserAgent)
	}
	log.Printf("  Log: %s/%s", config.Log.Level, config.Log.Format)
	if config.Metrics.ListenAddr != "" {
		log.Printf("  Metrics: %s", config.Metrics.ListenAddr)
	} else {
		log.Printf("  Metrics: [DISABLED]")
	}
}
