package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/weekdump/weekdump/internal/store/appwrite"
)

// Config is the process configuration, loaded from a yaml file with
// environment variable overrides on top.
type Config struct {
	Store struct {
		// Backend selects the document store: "appwrite" (hosted) or
		// "postgres" (self-hosted).
		Backend  string          `yaml:"backend"`
		Appwrite appwrite.Config `yaml:"appwrite"`
		Postgres struct {
			URL string `yaml:"url"`
		} `yaml:"postgres"`
	} `yaml:"store"`

	NATS struct {
		URL string `yaml:"url"`
	} `yaml:"nats"`

	Poll struct {
		IntervalSeconds int `yaml:"interval_seconds"`
	} `yaml:"poll"`

	Session struct {
		GroupID  string `yaml:"group_id"`
		UserID   string `yaml:"user_id"`
		GameType string `yaml:"game_type"`
	} `yaml:"session"`
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func loadConfig(path string) (*Config, error) {
	var config Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.Store.Backend = getEnv("WEEKDUMP_STORE_BACKEND", config.Store.Backend)
	config.Store.Appwrite.Endpoint = getEnv("WEEKDUMP_ENDPOINT", config.Store.Appwrite.Endpoint)
	config.Store.Appwrite.ProjectID = getEnv("WEEKDUMP_PROJECT_ID", config.Store.Appwrite.ProjectID)
	config.Store.Appwrite.APIKey = getEnv("WEEKDUMP_API_KEY", config.Store.Appwrite.APIKey)
	config.Store.Appwrite.DatabaseID = getEnv("WEEKDUMP_DATABASE_ID", config.Store.Appwrite.DatabaseID)
	config.Store.Postgres.URL = getEnv("WEEKDUMP_POSTGRES_URL", config.Store.Postgres.URL)
	config.NATS.URL = getEnv("NATS_URL", config.NATS.URL)
	config.Session.GroupID = getEnv("WEEKDUMP_GROUP_ID", config.Session.GroupID)
	config.Session.UserID = getEnv("WEEKDUMP_USER_ID", config.Session.UserID)
	config.Session.GameType = getEnv("WEEKDUMP_GAME_TYPE", config.Session.GameType)

	if config.Store.Backend == "" {
		config.Store.Backend = "appwrite"
	}
	if config.Session.GameType == "" {
		config.Session.GameType = "voting"
	}

	return &config, nil
}

// PollInterval returns the configured poll interval, or zero when the
// reconciler default should be used.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalSeconds) * time.Second
}
