package config

import (
	"os"
	"strconv"
	"strings"
)

var (
	AppVersion             = "v1.2.0"
	AppPort                = "3000"
	AppDebug               = false
	AppBasicAuthCredential []string
	AppBasePath            = ""

	PathStorages = "storages"

	DBURI           = "file:storages/reminders.db?_foreign_keys=on"
	ActivityLogPath = "storages/reminder_log.txt"

	// Live log view keeps only the most recent entries; the file grows
	// until an explicit clear.
	ActivityLogViewLimit = 100

	// Country code prepended to phone numbers entered without one.
	DefaultCountryCode = "1"

	// WhatsApp gateway (an az-wap style HTTP API owning the session).
	WhatsappGatewayURL  = ""
	WhatsappGatewayAuth = "" // user:password

	SMTPHost     = "smtp.gmail.com"
	SMTPPort     = 587
	SMTPUser     = ""
	SMTPPassword = ""
	SMTPFromName = "Modern Clinic System"
)

func init() {
	if v := strings.TrimSpace(os.Getenv("APP_PORT")); v != "" {
		AppPort = v
	}
	switch strings.ToLower(os.Getenv("APP_DEBUG")) {
	case "1", "true", "yes", "on":
		AppDebug = true
	}
	if v := os.Getenv("APP_BASIC_AUTH"); v != "" {
		AppBasicAuthCredential = strings.Split(v, ",")
	}
	if v := strings.TrimSpace(os.Getenv("APP_BASE_PATH")); v != "" {
		AppBasePath = v
	}
	if v := strings.TrimSpace(os.Getenv("PATH_STORAGES")); v != "" {
		PathStorages = v
	}
	if v := strings.TrimSpace(os.Getenv("DB_URI")); v != "" {
		DBURI = v
	}
	if v := strings.TrimSpace(os.Getenv("ACTIVITY_LOG_PATH")); v != "" {
		ActivityLogPath = v
	}
	if v := strings.TrimSpace(os.Getenv("DEFAULT_COUNTRY_CODE")); v != "" {
		DefaultCountryCode = strings.TrimPrefix(v, "+")
	}
	if v := strings.TrimSpace(os.Getenv("WHATSAPP_GATEWAY_URL")); v != "" {
		WhatsappGatewayURL = v
	}
	if v := strings.TrimSpace(os.Getenv("WHATSAPP_GATEWAY_AUTH")); v != "" {
		WhatsappGatewayAuth = v
	}
	if v := strings.TrimSpace(os.Getenv("SMTP_HOST")); v != "" {
		SMTPHost = v
	}
	if v := strings.TrimSpace(os.Getenv("SMTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			SMTPPort = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("SMTP_USER")); v != "" {
		SMTPUser = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		SMTPPassword = v
	}
	if v := strings.TrimSpace(os.Getenv("SMTP_FROM_NAME")); v != "" {
		SMTPFromName = v
	}
}
