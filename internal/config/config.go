package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr             string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	JWTSecret string
	LogLevel  string

	// ScanCron is the due-post scan cadence. It bounds the maximum
	// delay between a post's due time and its delivery.
	ScanCron string

	// PublishTimeout bounds each adapter call so a hung platform API
	// cannot stall the rest of a tick.
	PublishTimeout time.Duration

	// GraphAPIURL is the Facebook Graph API base (overridable for
	// local testing against a stub).
	GraphAPIURL string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:          mustGetenv("DATABASE_URL"),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",
		LogLevel:             getenv("LOG_LEVEL", "info"),
		ScanCron:             getenv("SCAN_CRON", "* * * * *"),
		GraphAPIURL:          getenv("FB_API_URL", ""),
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	d, err := time.ParseDuration(getenv("PUBLISH_TIMEOUT", "30s"))
	if err != nil {
		return cfg, err
	}
	cfg.PublishTimeout = d

	cfg.JWTSecret = mustGetenv("JWT_SECRET")
	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func mustGetenv(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		panic("missing env: " + key)
	}
	return v
}
