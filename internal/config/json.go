package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"
)

// Duration accepts "3s" style strings as well as integer nanoseconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return nil
}

// fileConfig mirrors Config for JSON files. Only fields present in the file are applied.
type fileConfig struct {
	HTTPAddr           *string   `json:"http_addr"`
	AllowedOrigins     []string  `json:"allowed_origins"`
	RateLimit          *int      `json:"rate_limit_per_minute"`
	DatabaseURL        *string   `json:"database_url"`
	RedisAddr          *string   `json:"redis_addr"`
	LocalStore         *string   `json:"local_store"`
	DataDir            *string   `json:"data_dir"`
	SessionTTL         *Duration `json:"session_ttl"`
	RemoteWriteTimeout *Duration `json:"remote_write_timeout"`
	SheetsWebhookURL   *string   `json:"sheets_webhook_url"`
	SpreadsheetURL     *string   `json:"spreadsheet_url"`
	SheetsTimeout      *Duration `json:"sheets_timeout"`
	AMQPURL            *string   `json:"amqp_url"`
	IngestURL          *string   `json:"ingest_url"`
	MailHost           *string   `json:"mail_host"`
	MailPort           *int      `json:"mail_port"`
	MailFrom           *string   `json:"mail_from"`
	MailTo             *string   `json:"mail_to"`
	SalesWhatsAppNo    *string   `json:"sales_whatsapp_number"`
	LeadAlertTemplate  *string   `json:"lead_alert_template"`
	LogLevel           *string   `json:"log_level"`
	Timezone           *string   `json:"timezone"`
}

// configFile returns the value of -c or -config, if any.
func configFile(args []string) string {
	var path string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(filterArgs(args, []string{"-c", "-config", "--config"}))

	return path
}

// parseJSON overlays the JSON file named on the command line. Secrets stay out of it.
func parseJSON(c *Config, args []string) error {
	path := configFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var f fileConfig
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&c.HTTPAddr, f.HTTPAddr)
	if f.AllowedOrigins != nil {
		c.AllowedOrigins = f.AllowedOrigins
	}
	if f.RateLimit != nil {
		c.RateLimit = *f.RateLimit
	}
	setString(&c.DatabaseURL, f.DatabaseURL)
	setString(&c.RedisAddr, f.RedisAddr)
	setString(&c.LocalStore, f.LocalStore)
	setString(&c.DataDir, f.DataDir)
	setDuration(&c.SessionTTL, f.SessionTTL)
	setDuration(&c.RemoteWriteTimeout, f.RemoteWriteTimeout)
	setString(&c.SheetsWebhookURL, f.SheetsWebhookURL)
	setString(&c.SpreadsheetURL, f.SpreadsheetURL)
	setDuration(&c.SheetsTimeout, f.SheetsTimeout)
	setString(&c.AMQPURL, f.AMQPURL)
	setString(&c.IngestURL, f.IngestURL)
	setString(&c.MailHost, f.MailHost)
	if f.MailPort != nil {
		c.MailPort = *f.MailPort
	}
	setString(&c.MailFrom, f.MailFrom)
	setString(&c.MailTo, f.MailTo)
	setString(&c.SalesWhatsAppNumber, f.SalesWhatsAppNo)
	setString(&c.LeadAlertTemplate, f.LeadAlertTemplate)
	setString(&c.LogLevel, f.LogLevel)
	setString(&c.Timezone, f.Timezone)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
