package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables holding secrets. Credentials never live in the
// YAML file.
const (
	EnvUsername       = "FEELCYCLE_USERNAME"
	EnvPassword       = "FEELCYCLE_PASSWORD"
	EnvSigningSecret  = "SLACK_SIGNING_SECRET"
	EnvWebhookURL     = "FEELCYCLE_BOT_INCOMING_WEBHOOK"
	EnvOAuthToken     = "SLACK_OAUTH_ACCESS_TOKEN"
	EnvSlackChannelID = "SLACK_FEELBOT_CHANNEL_ID"
)

// Credentials are the secrets read from the environment.
type Credentials struct {
	Username      string
	Password      string
	SigningSecret string
	WebhookURL    string
	OAuthToken    string
	ChannelID     string
}

// LoadEnv loads a .env file when present. Missing files are fine; real
// environments set the variables directly.
func LoadEnv() {
	_ = godotenv.Load()
}

// LoadCredentials reads the secrets. Portal credentials are mandatory; the
// Slack settings are optional and simply disable the related sinks.
func LoadCredentials() (*Credentials, error) {
	creds := &Credentials{
		Username:      os.Getenv(EnvUsername),
		Password:      os.Getenv(EnvPassword),
		SigningSecret: os.Getenv(EnvSigningSecret),
		WebhookURL:    os.Getenv(EnvWebhookURL),
		OAuthToken:    os.Getenv(EnvOAuthToken),
		ChannelID:     os.Getenv(EnvSlackChannelID),
	}
	if creds.Username == "" {
		return nil, fmt.Errorf("%s is not set", EnvUsername)
	}
	if creds.Password == "" {
		return nil, fmt.Errorf("%s is not set", EnvPassword)
	}
	return creds, nil
}
