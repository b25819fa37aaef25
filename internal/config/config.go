package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Gemini   GeminiConfig   `yaml:"gemini"`
	Trading  TradingConfig  `yaml:"trading"`
	Telegram TelegramConfig `yaml:"telegram"`
	Web      WebConfig      `yaml:"web"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type GeminiConfig struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type TradingConfig struct {
	ScanInterval string  `yaml:"scan_interval"`
	InitialCash  float64 `yaml:"initial_cash"`
	MinScore     int     `yaml:"min_score"`
	MinTradeUSD  float64 `yaml:"min_trade_usd"`
	ChartDir     string  `yaml:"chart_dir"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type WebConfig struct {
	Port int `yaml:"port"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case os.IsNotExist(err):
		// Config file is optional; secrets can come from the environment.
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	applyEnv(cfg)
	setDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// applyEnv fills credentials from the environment when the config file
// leaves them empty. cmd/moonshot loads .env first via godotenv.
func applyEnv(cfg *Config) {
	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Telegram.BotToken == "" {
		cfg.Telegram.BotToken = os.Getenv("TELEGRAM_TOKEN")
	}
}

func setDefaults(cfg *Config) {
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-2.5-flash-lite"
	}
	if cfg.Gemini.BaseURL == "" {
		cfg.Gemini.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	}
	if cfg.Gemini.TimeoutSeconds == 0 {
		cfg.Gemini.TimeoutSeconds = 120
	}
	if cfg.Trading.ScanInterval == "" {
		cfg.Trading.ScanInterval = "4h"
	}
	if cfg.Trading.InitialCash == 0 {
		cfg.Trading.InitialCash = 10000
	}
	if cfg.Trading.MinScore == 0 {
		cfg.Trading.MinScore = 70
	}
	if cfg.Trading.MinTradeUSD == 0 {
		cfg.Trading.MinTradeUSD = 10
	}
	if cfg.Trading.ChartDir == "" {
		cfg.Trading.ChartDir = "charts"
	}
	if cfg.Web.Port == 0 {
		cfg.Web.Port = 8080
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("gemini.api_key is required (config or GEMINI_API_KEY)")
	}
	if _, err := time.ParseDuration(c.Trading.ScanInterval); err != nil {
		return fmt.Errorf("invalid trading.scan_interval %q: %w", c.Trading.ScanInterval, err)
	}
	if c.Trading.InitialCash < 0 {
		return fmt.Errorf("trading.initial_cash must be non-negative")
	}
	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required when telegram is enabled (config or TELEGRAM_TOKEN)")
	}
	return nil
}

func (c *Config) ScanInterval() time.Duration {
	d, _ := time.ParseDuration(c.Trading.ScanInterval)
	return d
}

func (c *Config) GeminiTimeout() time.Duration {
	return time.Duration(c.Gemini.TimeoutSeconds) * time.Second
}
