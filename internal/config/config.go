// Package config loads the bot's settings from a YAML file and its secrets
// from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Bot    BotConfig    `yaml:"bot"`
}

// ServerConfig represents the HTTP server settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// BotConfig represents the reservation client settings.
type BotConfig struct {
	Headless            bool     `yaml:"headless"`
	SleepSeconds        int      `yaml:"sleep_seconds"`         // base polling interval
	PageTimeoutSeconds  int      `yaml:"page_timeout_seconds"`  // per-navigation bound
	LoginTimeoutSeconds int      `yaml:"login_timeout_seconds"` // login form wait
	Studios             []string `yaml:"studios"`               // default scrape targets
}

// PageTimeout returns the page-load bound as a duration.
func (b BotConfig) PageTimeout() time.Duration {
	return time.Duration(b.PageTimeoutSeconds) * time.Second
}

// LoginTimeout returns the login form wait as a duration.
func (b BotConfig) LoginTimeout() time.Duration {
	return time.Duration(b.LoginTimeoutSeconds) * time.Second
}

// GetConfigPath finds the configuration file path.
func GetConfigPath() string {
	// 1. configs/config.yaml next to the executable
	execPath, _ := os.Executable()
	configPath := filepath.Join(filepath.Dir(execPath), "configs", "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return configPath
	}

	// 2. configs/config.yaml in the working directory
	configPath = filepath.Join("configs", "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return configPath
	}

	// 3. ~/.feelbot/config.yaml
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".feelbot", "config.yaml")
}

// Load reads and parses the configuration file, applying defaults for
// unset fields. An empty path triggers auto-discovery.
func Load(path string) (*Config, error) {
	if path == "" {
		path = GetConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Config{Bot: BotConfig{Headless: true}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every field at its default value.
func Default() *Config {
	cfg := &Config{Bot: BotConfig{Headless: true}}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Bot.SleepSeconds <= 0 {
		c.Bot.SleepSeconds = 30
	}
	if c.Bot.PageTimeoutSeconds <= 0 {
		c.Bot.PageTimeoutSeconds = 60
	}
	if c.Bot.LoginTimeoutSeconds <= 0 {
		c.Bot.LoginTimeoutSeconds = 5
	}
}
