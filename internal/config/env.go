package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseEnv overlays variables that are set. Empty values are ignored.
func parseEnv(c *Config, lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	str := func(key string, dst *string) {
		if v, ok := get(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := get(key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := get(key)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	if port, ok := get("PORT"); ok {
		c.HTTPAddr = ":" + port
	}
	str("HTTP_ADDR", &c.HTTPAddr)
	if v, ok := get("ALLOWED_ORIGINS"); ok {
		c.AllowedOrigins = splitList(v)
	}

	str("DATABASE_URL", &c.DatabaseURL)
	str("REDIS_ADDR", &c.RedisAddr)
	str("REDIS_PASSWORD", &c.RedisPassword)
	str("LOCAL_STORE", &c.LocalStore)
	str("DATA_DIR", &c.DataDir)

	str("ADMIN_PASSWORD", &c.AdminPassword)

	str("GOOGLE_SHEETS_WEBHOOK_URL", &c.SheetsWebhookURL)
	str("GOOGLE_SPREADSHEET_URL", &c.SpreadsheetURL)
	str("AMQP_URL", &c.AMQPURL)

	str("INGEST_URL", &c.IngestURL)
	str("INGEST_API_KEY", &c.IngestAPIKey)

	str("MAIL_HOST", &c.MailHost)
	str("MAIL_USER", &c.MailUser)
	str("MAIL_PASS", &c.MailPassword)
	str("MAIL_FROM", &c.MailFrom)
	str("MAIL_TO", &c.MailTo)

	str("WHATSAPP_TOKEN", &c.WhatsAppToken)
	str("WHATSAPP_PHONE_ID", &c.WhatsAppPhoneID)
	str("WHATSAPP_BASE_URL", &c.WhatsAppBaseURL)
	str("SALES_WHATSAPP_NUMBER", &c.SalesWhatsAppNumber)
	str("WHATSAPP_LEAD_TEMPLATE", &c.LeadAlertTemplate)

	str("LOG_LEVEL", &c.LogLevel)
	str("TIMEZONE", &c.Timezone)

	for _, err := range []error{
		num("RATE_LIMIT_PER_MINUTE", &c.RateLimit),
		num("MAIL_PORT", &c.MailPort),
		dur("SESSION_TTL", &c.SessionTTL),
		dur("REMOTE_WRITE_TIMEOUT", &c.RemoteWriteTimeout),
		dur("SHEETS_TIMEOUT", &c.SheetsTimeout),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
