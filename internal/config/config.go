// Package config assembles runtime settings from defaults, the environment
// (optionally seeded from a .env file), an optional JSON file and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	LocalStoreFile   = "file"
	LocalStoreRedis  = "redis"
	LocalStoreMemory = "memory"
)

type Config struct {
	HTTPAddr       string
	AllowedOrigins []string
	// RateLimit is the number of public submissions allowed per client IP per minute.
	RateLimit int

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	LocalStore    string
	DataDir       string

	AdminPassword      string
	SessionTTL         time.Duration
	RemoteWriteTimeout time.Duration

	SheetsWebhookURL string
	SpreadsheetURL   string
	SheetsTimeout    time.Duration
	AMQPURL          string

	IngestURL    string
	IngestAPIKey string

	MailHost     string
	MailPort     int
	MailUser     string
	MailPassword string
	MailFrom     string
	MailTo       string

	WhatsAppToken       string
	WhatsAppPhoneID     string
	WhatsAppBaseURL     string
	SalesWhatsAppNumber string
	LeadAlertTemplate   string

	LogLevel string
	Timezone string
}

// LoadDefaults sets values suitable for local development.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.AllowedOrigins = []string{"http://localhost:5173"}
	c.RateLimit = 10
	c.LocalStore = LocalStoreFile
	c.DataDir = "./data"
	c.SessionTTL = 24 * time.Hour
	c.RemoteWriteTimeout = 3 * time.Second
	c.SheetsTimeout = 10 * time.Second
	c.MailPort = 587
	c.WhatsAppBaseURL = "https://graph.facebook.com/v18.0"
	c.LeadAlertTemplate = "new_lead_alert"
	c.LogLevel = "INFO"
	c.Timezone = "Asia/Kolkata"
}

// Load applies defaults, then the environment, then the JSON file named by -c, then flags.
// args excludes the program name.
func Load(args []string, env func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, env); err != nil {
		return nil, err
	}
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.LocalStore {
	case LocalStoreFile, LocalStoreRedis, LocalStoreMemory:
	default:
		return fmt.Errorf("invalid local store %q", c.LocalStore)
	}
	if c.LocalStore == LocalStoreRedis && c.RedisAddr == "" {
		return fmt.Errorf("local store %q requires REDIS_ADDR", c.LocalStore)
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("rate limit must be positive, got %d", c.RateLimit)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	if c.RemoteWriteTimeout <= 0 {
		return fmt.Errorf("remote write timeout must be positive, got %s", c.RemoteWriteTimeout)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location resolves Timezone. Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FromEnvironment loads .env (when present) into the process environment and then
// builds the configuration from os.Args.
func FromEnvironment() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Load(os.Args[1:], os.LookupEnv)
}
