package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	API      APIConfig      `yaml:"api"`
	Cache    CacheConfig    `yaml:"cache"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Telegram TelegramConfig `yaml:"telegram"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
	File   string `yaml:"file"`   // optional, appended to alongside stdout
}

type ScraperConfig struct {
	Fetcher        string                     `yaml:"fetcher"` // chrome or http
	UserAgent      string                     `yaml:"user_agent"`
	Timeout        time.Duration              `yaml:"timeout"`
	Headless       *bool                      `yaml:"headless"`
	MaxMatches     int                        `yaml:"max_matches"`
	Retries        int                        `yaml:"retries"`
	RetryBackoff   time.Duration              `yaml:"retry_backoff"`
	PacingMin      time.Duration              `yaml:"pacing_min"`
	PacingMax      time.Duration              `yaml:"pacing_max"`
	BookmakerPause time.Duration              `yaml:"bookmaker_pause"`
	Enabled        []string                   `yaml:"enabled"`
	Schedule       string                     `yaml:"schedule"` // cron spec, empty runs once
	Bookmakers     map[string]BookmakerConfig `yaml:"bookmakers"`
}

// BookmakerConfig overrides a site profile.
type BookmakerConfig struct {
	BaseURL string   `yaml:"base_url"`
	Leagues []string `yaml:"leagues"`
	MaxURLs int      `yaml:"max_urls"`
}

type APIConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	DefaultMaxMatches int           `yaml:"default_max_matches"`
	CORSOrigins       []string      `yaml:"cors_origins"`
}

type CacheConfig struct {
	Backend string        `yaml:"backend"` // memory or redis
	TTL     time.Duration `yaml:"ttl"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type TelegramConfig struct {
	BotToken         string        `yaml:"bot_token"`
	ChatID           int64         `yaml:"chat_id"`
	MinProfitPercent float64       `yaml:"min_profit_percent"`
	SendInterval     time.Duration `yaml:"send_interval"`
}

const (
	DefaultConfigPath = "configs/local.yaml"

	DefaultFetcher        = "chrome"
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultTimeout        = 30 * time.Second
	DefaultMaxMatches     = 10
	DefaultRetries        = 3
	DefaultRetryBackoff   = 5 * time.Second
	DefaultPacingMin      = 2 * time.Second
	DefaultPacingMax      = 6 * time.Second
	DefaultBookmakerPause = 10 * time.Second
	DefaultAPIAddr        = ":5000"
	DefaultAPIMaxMatches  = 5
	DefaultCacheTTL       = 300 * time.Second
	DefaultSendInterval   = 2 * time.Second
)

// Load reads the YAML file, applies environment overrides and fills defaults.
// A .env file in the working directory is loaded first when present.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	cfg.ApplyDefaults()
	return cfg, nil
}

// Parse decodes YAML without touching the environment or defaults.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &config, nil
}

// Path returns CONFIG_PATH when set, otherwise fallback.
func Path(fallback string) string {
	if p := strings.TrimSpace(os.Getenv("CONFIG_PATH")); p != "" {
		return p
	}
	return fallback
}

// ApplyEnv overrides secrets and endpoints from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Telegram.ChatID = id
		}
	}
	if v := getenv("API_ADDR"); v != "" {
		c.API.Addr = v
	}
}

// ApplyDefaults fills every zero field with its default.
func (c *Config) ApplyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	s := &c.Scraper
	if s.Fetcher == "" {
		s.Fetcher = DefaultFetcher
	}
	if s.UserAgent == "" {
		s.UserAgent = DefaultUserAgent
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	if s.Headless == nil {
		headless := true
		s.Headless = &headless
	}
	if s.MaxMatches <= 0 {
		s.MaxMatches = DefaultMaxMatches
	}
	if s.Retries <= 0 {
		s.Retries = DefaultRetries
	}
	if s.RetryBackoff <= 0 {
		s.RetryBackoff = DefaultRetryBackoff
	}
	if s.PacingMin <= 0 && s.PacingMax <= 0 {
		s.PacingMin, s.PacingMax = DefaultPacingMin, DefaultPacingMax
	}
	if s.PacingMax < s.PacingMin {
		s.PacingMax = s.PacingMin
	}
	if s.BookmakerPause <= 0 {
		s.BookmakerPause = DefaultBookmakerPause
	}

	if c.API.Addr == "" {
		c.API.Addr = DefaultAPIAddr
	}
	if c.API.ReadHeaderTimeout <= 0 {
		c.API.ReadHeaderTimeout = 10 * time.Second
	}
	if c.API.RequestTimeout <= 0 {
		c.API.RequestTimeout = 5 * time.Minute
	}
	if c.API.DefaultMaxMatches <= 0 {
		c.API.DefaultMaxMatches = DefaultAPIMaxMatches
	}
	if len(c.API.CORSOrigins) == 0 {
		c.API.CORSOrigins = []string{"*"}
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = DefaultCacheTTL
	}

	if c.Telegram.SendInterval <= 0 {
		c.Telegram.SendInterval = DefaultSendInterval
	}
}

// HeadlessEnabled reports the effective headless flag.
func (s ScraperConfig) HeadlessEnabled() bool {
	return s.Headless == nil || *s.Headless
}

// IsEnabled reports whether the bookmaker key is enabled. An empty list enables all.
func (s ScraperConfig) IsEnabled(key string) bool {
	if len(s.Enabled) == 0 {
		return true
	}
	for _, e := range s.Enabled {
		if strings.EqualFold(strings.TrimSpace(e), key) {
			return true
		}
	}
	return false
}
