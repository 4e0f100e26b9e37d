// Package config loads settings from an optional YAML file with
// environment variable overrides. A .env file is honored when present.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/jobs"
)

type Target struct {
	CompanyID       string   `yaml:"company_id"`
	CareersURL      string   `yaml:"careers_url"`
	APIBaseURL      string   `yaml:"api_base_url"`
	TimeoutMs       int      `yaml:"timeout_ms"`
	MaxRetries      int      `yaml:"max_retries"`
	Headless        *bool    `yaml:"headless"`
	UserAgent       string   `yaml:"user_agent"`
	BrowserArgs     []string `yaml:"browser_args"`
	Debug           bool     `yaml:"debug"`
	WaitForSelector string   `yaml:"wait_for_selector"`
}

type Webhook struct {
	URL    string `yaml:"url"`
	Secret string `yaml:"secret"`
}

type Config struct {
	Port        string   `yaml:"port"`
	DatabaseURL string   `yaml:"database_url"`
	RedisAddr   string   `yaml:"redis_addr"`
	UserAgent   string   `yaml:"user_agent"`
	Webhook     Webhook  `yaml:"webhook"`
	Targets     []Target `yaml:"targets"`
}

// Load reads configPath (skipped when empty or missing) and applies env
// overrides on top.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port, "8080")
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL, "")
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr, "")
	cfg.UserAgent = getEnv("USER_AGENT", cfg.UserAgent, "drivehr-sync-bot/1.0")
	cfg.Webhook.URL = getEnv("WEBHOOK_URL", cfg.Webhook.URL, "")
	cfg.Webhook.Secret = getEnv("WEBHOOK_SECRET", cfg.Webhook.Secret, "")

	// A single target can be given entirely through the environment.
	if companyID := os.Getenv("COMPANY_ID"); companyID != "" {
		cfg.Targets = append(cfg.Targets, Target{
			CompanyID:       companyID,
			CareersURL:      os.Getenv("CAREERS_URL"),
			APIBaseURL:      os.Getenv("API_BASE_URL"),
			TimeoutMs:       getEnvInt("FETCH_TIMEOUT_MS", 0),
			MaxRetries:      getEnvInt("FETCH_MAX_RETRIES", 0),
			Debug:           os.Getenv("BROWSER_DEBUG") == "true",
			WaitForSelector: os.Getenv("WAIT_FOR_SELECTOR"),
		})
	}

	if cfg.Webhook.URL != "" && cfg.Webhook.Secret == "" {
		return nil, fmt.Errorf("webhook url set but WEBHOOK_SECRET is empty")
	}

	return cfg, nil
}

// TargetConfig converts a config target into the fetcher's runtime form.
func (t Target) TargetConfig(defaultUserAgent string) jobs.TargetConfig {
	headless := true
	if t.Headless != nil {
		headless = *t.Headless
	}
	ua := t.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return jobs.TargetConfig{
		CompanyID:       t.CompanyID,
		CareersURL:      t.CareersURL,
		APIBaseURL:      t.APIBaseURL,
		TimeoutMs:       t.TimeoutMs,
		MaxRetries:      t.MaxRetries,
		Headless:        headless,
		UserAgent:       ua,
		BrowserArgs:     t.BrowserArgs,
		Debug:           t.Debug,
		WaitForSelector: t.WaitForSelector,
	}
}

func getEnv(key, fileValue, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if fileValue != "" {
		return fileValue
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
