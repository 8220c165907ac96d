package config

import (
	"os"
	"strings"
	"time"
)

// Settings holds the values the application wires explicitly at startup.
type Settings struct {
	Port             string
	Environment      string
	AllowedOrigins   []string
	DocstoreDriver   string
	RelayChannel     string
	JWTSecret        string
	TokenLifespan    time.Duration
	GCSBucket        string
	GCSPublicBaseURL string
	NotifyTopic      string
	NotifySub        string
	SMTP             SMTPSettings
	PhoneRegion      string
}

// SMTPSettings are the stored server-side mail credentials. Requests never
// carry their own.
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (s SMTPSettings) Configured() bool {
	return s.Host != "" && s.From != ""
}

func LoadSettings() Settings {
	return Settings{
		Port:             envOr("PORT", "8080"),
		Environment:      strings.ToLower(strings.TrimSpace(os.Getenv("GO_ENV"))),
		AllowedOrigins:   SplitAndTrim(os.Getenv("CORS_ALLOWED_ORIGINS")),
		DocstoreDriver:   envOr("DOCSTORE_DRIVER", "mysql"),
		RelayChannel:     envOr("DOCSTORE_RELAY_CHANNEL", "docstore:changes"),
		JWTSecret:        os.Getenv("API_SECRET"),
		TokenLifespan:    time.Duration(IntFromEnv("TOKEN_HOUR_LIFESPAN", 12)) * time.Hour,
		GCSBucket:        os.Getenv("GCS_BUCKET"),
		GCSPublicBaseURL: os.Getenv("GCS_PUBLIC_BASE_URL"),
		NotifyTopic:      envOr("NOTIFY_TOPIC", "client-notifications"),
		NotifySub:        envOr("NOTIFY_SUBSCRIPTION", "client-notifications-worker"),
		SMTP: SMTPSettings{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     IntFromEnv("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
		PhoneRegion: envOr("PHONE_REGION", "IN"),
	}
}

func (s Settings) IsProduction() bool {
	return s.Environment == "production"
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func SplitAndTrim(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
