package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"StockScanner/internal/collector"
	"StockScanner/internal/model"
)

// Duration accepts Go duration strings ("500ms", "1s") in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider   string   `yaml:"provider"` // yahoo or finnhub
		APIKey     string   `yaml:"api_key"`
		BaseURL    string   `yaml:"base_url"`
		BatchSize  int      `yaml:"batch_size"`
		BatchDelay Duration `yaml:"batch_delay"`
	} `yaml:"data_source"`
	Scan struct {
		Tier          string   `yaml:"tier"`
		Resolution    string   `yaml:"resolution"`
		LookbackDays  int      `yaml:"lookback_days"`
		Watchlist     []string `yaml:"watchlist"`
		WatchlistFile string   `yaml:"watchlist_file"`
	} `yaml:"scan"`
	Schedule struct {
		ScanCron string `yaml:"scan_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Discord struct {
		WebhookURL string `yaml:"webhook_url"`
	} `yaml:"discord"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Port int `yaml:"port"` // 0 disables the listener
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// overrides lists the environment variables that win over the YAML file.
type overrides struct {
	Provider      string        `envconfig:"DATA_PROVIDER"`
	APIKey        string        `envconfig:"FINNHUB_API_KEY"`
	BaseURL       string        `envconfig:"DATA_BASE_URL"`
	BatchSize     int           `envconfig:"BATCH_SIZE"`
	BatchDelay    time.Duration `envconfig:"BATCH_DELAY"`
	Tier          string        `envconfig:"SCAN_TIER"`
	Resolution    string        `envconfig:"SCAN_RESOLUTION"`
	LookbackDays  int           `envconfig:"SCAN_LOOKBACK_DAYS"`
	Watchlist     []string      `envconfig:"SCAN_WATCHLIST"`
	WatchlistFile string        `envconfig:"SCAN_WATCHLIST_FILE"`
	ScanCron      string        `envconfig:"CRON_SCAN"`
	BotToken      string        `envconfig:"TELEGRAM_BOT_TOKEN"`
	ChatID        string        `envconfig:"TELEGRAM_CHAT_ID"`
	WebhookURL    string        `envconfig:"DISCORD_WEBHOOK_URL"`
	SQLitePath    string        `envconfig:"SQLITE_PATH"`
	MetricsPort   int           `envconfig:"METRICS_PORT"`
	LogLevel      string        `envconfig:"LOG_LEVEL"`
	LogFormat     string        `envconfig:"LOG_FORMAT"`
	Proxy         string        `envconfig:"HTTPS_PROXY"`
}

// Load reads an optional .env file, then the YAML config, then applies
// environment variable overrides and defaults. Missing files are tolerated.
func Load(path, envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envPath, err)
		}
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	var env overrides
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}
	cfg.apply(env)
	cfg.setDefaults()
	return cfg, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func (c *Config) apply(env overrides) {
	setString(&c.DataSource.Provider, env.Provider)
	setString(&c.DataSource.APIKey, env.APIKey)
	setString(&c.DataSource.BaseURL, env.BaseURL)
	setInt(&c.DataSource.BatchSize, env.BatchSize)
	if env.BatchDelay != 0 {
		c.DataSource.BatchDelay = Duration(env.BatchDelay)
	}
	setString(&c.Scan.Tier, env.Tier)
	setString(&c.Scan.Resolution, env.Resolution)
	setInt(&c.Scan.LookbackDays, env.LookbackDays)
	if len(env.Watchlist) > 0 {
		c.Scan.Watchlist = env.Watchlist
	}
	setString(&c.Scan.WatchlistFile, env.WatchlistFile)
	setString(&c.Schedule.ScanCron, env.ScanCron)
	setString(&c.Telegram.BotToken, env.BotToken)
	setString(&c.Telegram.ChatID, env.ChatID)
	setString(&c.Discord.WebhookURL, env.WebhookURL)
	setString(&c.Database.SQLitePath, env.SQLitePath)
	setInt(&c.Metrics.Port, env.MetricsPort)
	setString(&c.Log.Level, env.LogLevel)
	setString(&c.Log.Format, env.LogFormat)
	setString(&c.Proxy, env.Proxy)
}

func (c *Config) setDefaults() {
	// A configured key implies Finnhub; otherwise fall back to Yahoo.
	if c.DataSource.Provider == "" {
		if c.DataSource.APIKey != "" {
			c.DataSource.Provider = "finnhub"
		} else {
			c.DataSource.Provider = "yahoo"
		}
	}
	batch := collector.DefaultBatchOptions(c.DataSource.Provider)
	if c.DataSource.BatchSize == 0 {
		c.DataSource.BatchSize = batch.Size
	}
	if c.DataSource.BatchDelay == 0 {
		c.DataSource.BatchDelay = Duration(batch.Delay)
	}
	if c.Scan.Tier == "" {
		c.Scan.Tier = string(model.TierBasic)
	}
	if c.Scan.Resolution == "" {
		c.Scan.Resolution = string(model.ResolutionDaily)
	}
	if c.Scan.LookbackDays == 0 {
		c.Scan.LookbackDays = 100
	}
	if c.Schedule.ScanCron == "" {
		c.Schedule.ScanCron = "0 30 16 * * 1-5" // after the US close, weekdays
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/scanner.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// BatchOptions returns the configured pacing for the batch fetcher.
func (c *Config) BatchOptions() collector.BatchOptions {
	return collector.BatchOptions{
		Size:  c.DataSource.BatchSize,
		Delay: time.Duration(c.DataSource.BatchDelay),
	}
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo":
	case "finnhub":
		if c.DataSource.APIKey == "" {
			return fmt.Errorf("data_source.api_key is required for finnhub: %w", collector.ErrAPIKeyMissing)
		}
	default:
		return fmt.Errorf("data_source.provider %q must be yahoo or finnhub", c.DataSource.Provider)
	}
	if c.DataSource.BatchSize <= 0 {
		return fmt.Errorf("data_source.batch_size must be positive")
	}
	if c.DataSource.BatchDelay < 0 {
		return fmt.Errorf("data_source.batch_delay must not be negative")
	}
	if _, err := model.ParseTier(c.Scan.Tier); err != nil {
		return fmt.Errorf("scan.tier: %w", err)
	}
	if _, err := model.ParseResolution(c.Scan.Resolution); err != nil {
		return fmt.Errorf("scan.resolution: %w", err)
	}
	if c.Scan.LookbackDays <= 0 {
		return fmt.Errorf("scan.lookback_days must be positive")
	}
	if c.Schedule.ScanCron == "" {
		return fmt.Errorf("schedule.scan_cron is required")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when bot_token is set")
	}
	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port %d out of range", c.Metrics.Port)
	}
	return nil
}
