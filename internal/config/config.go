package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"shipquote/internal/quote"
)

const (
	defaultPricingURL   = "https://ttobko8gt6.execute-api.ap-south-1.amazonaws.com/prod/estimate"
	defaultShipmentsURL = "https://nueu20t7z0.execute-api.ap-south-1.amazonaws.com/prod/shipments"
	defaultFeedbackURL  = "https://nueu20t7z0.execute-api.ap-south-1.amazonaws.com/prod/feedback"
	defaultTimeout      = 15 * time.Second
)

type Config struct {
	Port     string `yaml:"port"`
	AppEnv   string `yaml:"app_env"`
	LogLevel string `yaml:"log_level"`

	PricingURL     string        `yaml:"pricing_url"`
	PricingTimeout time.Duration `yaml:"pricing_timeout"`
	ShipmentsURL   string        `yaml:"shipments_url"`
	FeedbackURL    string        `yaml:"feedback_url"`
	IntakeTimeout  time.Duration `yaml:"intake_timeout"`

	Enums quote.Enums `yaml:"enums"`
}

// Load reads CONFIG_FILE (if set) and then applies environment overrides.
func Load() (Config, error) {
	cfg := Config{
		Port:           "8080",
		AppEnv:         "dev",
		LogLevel:       "info",
		PricingURL:     defaultPricingURL,
		PricingTimeout: defaultTimeout,
		ShipmentsURL:   defaultShipmentsURL,
		FeedbackURL:    defaultFeedbackURL,
		IntakeTimeout:  defaultTimeout,
	}
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	c.Port = getEnv("PORT", c.Port)
	c.AppEnv = getEnv("APP_ENV", c.AppEnv)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.PricingURL = getEnv("PRICING_URL", c.PricingURL)
	c.ShipmentsURL = getEnv("SHIPMENTS_URL", c.ShipmentsURL)
	c.FeedbackURL = getEnv("FEEDBACK_URL", c.FeedbackURL)

	var err error
	if c.PricingTimeout, err = getEnvDuration("PRICING_TIMEOUT", c.PricingTimeout); err != nil {
		return err
	}
	if c.IntakeTimeout, err = getEnvDuration("INTAKE_TIMEOUT", c.IntakeTimeout); err != nil {
		return err
	}
	return nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}
