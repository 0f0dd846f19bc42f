package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LocationMode selects how the review step validates the location field.
type LocationMode string

const (
	// LocationFreeText accepts any non-empty location string.
	LocationFreeText LocationMode = "free_text"
	// LocationFixedOptions restricts location to AllowedLocations.
	LocationFixedOptions LocationMode = "fixed_options"
)

// AppConfig is the deployment-provided configuration for the portal API.
type AppConfig struct {
	Port string

	// AuthMode selects bearer-token auth ("token") or the local dev shim ("dev").
	AuthMode        string
	SessionSecret   string
	SessionTokenTTL time.Duration
	DevSubject      string

	// StorageBackend selects the session store: memory|file|postgres|redis.
	StorageBackend  string
	SessionFilePath string
	DatabaseURL     string
	RedisAddr       string
	RedisPassword   string

	// PhotoBackend selects the photo store: memory|s3.
	PhotoBackend string
	S3Bucket     string
	S3Region     string

	// MailerBackend selects invitation delivery: log|ses.
	MailerBackend     string
	InviteFromAddress string
	PortalBaseURL     string

	// Demo identity accepted at sign-in (bootstraps a fully-onboarded profile).
	DemoEmail    string
	DemoPassword string

	// Wizard tuning.
	BioCharacterLimit int
	LocationMode      LocationMode
	AllowedLocations  []string
	ImportLatency     time.Duration
}

// LoadAppConfigFromEnv reads AppConfig from the environment with local-friendly
// defaults. Only settings required by the selected backends are mandatory.
func LoadAppConfigFromEnv() (AppConfig, error) {
	cfg := AppConfig{
		Port:              getenv("PORT", "8080"),
		AuthMode:          getenv("AUTH_MODE", "token"),
		SessionSecret:     os.Getenv("SESSION_TOKEN_SECRET"),
		SessionTokenTTL:   72 * time.Hour,
		DevSubject:        getenv("DEV_SUBJECT", ""),
		StorageBackend:    getenv("STORAGE_BACKEND", "memory"),
		SessionFilePath:   getenv("SESSION_FILE_PATH", "coach-portal-session.json"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisAddr:         getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		PhotoBackend:      getenv("PHOTO_BACKEND", "memory"),
		S3Bucket:          os.Getenv("S3_BUCKET"),
		S3Region:          getenv("S3_REGION", os.Getenv("AWS_REGION")),
		MailerBackend:     getenv("MAILER_BACKEND", "log"),
		InviteFromAddress: getenv("INVITE_FROM_ADDRESS", "no-reply@coachportal.example.com"),
		PortalBaseURL:     getenv("PORTAL_BASE_URL", "http://localhost:8080"),
		DemoEmail:         getenv("DEMO_EMAIL", "coach@example.com"),
		DemoPassword:      getenv("DEMO_PASSWORD", "password"),
		BioCharacterLimit: 600,
		LocationMode:      LocationFreeText,
		ImportLatency:     1500 * time.Millisecond,
	}

	if v := os.Getenv("SESSION_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return AppConfig{}, fmt.Errorf("SESSION_TOKEN_TTL must be a duration (e.g. 72h): %w", err)
		}
		cfg.SessionTokenTTL = d
	}
	if v := os.Getenv("BIO_CHARACTER_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return AppConfig{}, fmt.Errorf("BIO_CHARACTER_LIMIT must be a positive integer")
		}
		cfg.BioCharacterLimit = n
	}
	if v := os.Getenv("LOCATION_MODE"); v != "" {
		switch LocationMode(v) {
		case LocationFreeText, LocationFixedOptions:
			cfg.LocationMode = LocationMode(v)
		default:
			return AppConfig{}, fmt.Errorf("LOCATION_MODE must be %q or %q", LocationFreeText, LocationFixedOptions)
		}
	}
	if v := os.Getenv("ALLOWED_LOCATIONS"); v != "" {
		for _, loc := range strings.Split(v, ",") {
			if loc = strings.TrimSpace(loc); loc != "" {
				cfg.AllowedLocations = append(cfg.AllowedLocations, loc)
			}
		}
	}
	if cfg.LocationMode == LocationFixedOptions && len(cfg.AllowedLocations) == 0 {
		return AppConfig{}, fmt.Errorf("LOCATION_MODE=fixed_options requires ALLOWED_LOCATIONS")
	}
	if v := os.Getenv("IMPORT_LATENCY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return AppConfig{}, fmt.Errorf("IMPORT_LATENCY must be a duration (e.g. 1500ms): %w", err)
		}
		cfg.ImportLatency = d
	}

	if cfg.AuthMode == "token" && cfg.SessionSecret == "" {
		return AppConfig{}, fmt.Errorf("missing required env var SESSION_TOKEN_SECRET (or set AUTH_MODE=dev)")
	}
	if cfg.StorageBackend == "postgres" && cfg.DatabaseURL == "" {
		return AppConfig{}, fmt.Errorf("STORAGE_BACKEND=postgres requires DATABASE_URL")
	}
	if cfg.PhotoBackend == "s3" && (cfg.S3Bucket == "" || cfg.S3Region == "") {
		return AppConfig{}, fmt.Errorf("PHOTO_BACKEND=s3 requires S3_BUCKET and S3_REGION")
	}

	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
