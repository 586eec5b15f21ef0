package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultDatabaseURL     = "fieldjobs.db"
	defaultJWTSecret       = "change-me-jwt-secret"
	defaultJWTAccessTTL    = "24h"
	defaultLogLevel        = "info"
	defaultLogFormat       = "text"
	defaultStorageProvider = "filesystem"
	defaultStorageDir      = "./uploads/evidence"
	defaultStoragePublic   = "http://localhost:8080/static/evidence"
	defaultVAPIDSubject    = "mailto:admin@example.com"
	defaultGeocoderURL     = "https://nominatim.openstreetmap.org"
	defaultGeocoderAgent   = "fieldjobs/1.0"
	defaultGeocoderTimeout = "5s"
)

type AppConfig struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string

	JWTSecret    string
	JWTAccessTTL time.Duration

	CORSAllowedOrigins []string

	LogLevel  string
	LogFormat string

	Storage StorageConfig

	// ProxyAllowedOrigin is the only URL prefix the image proxy may fetch.
	ProxyAllowedOrigin string

	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string

	GeocoderURL       string
	GeocoderUserAgent string
	GeocoderTimeout   time.Duration
}

type StorageConfig struct {
	Provider  string
	Dir       string
	PublicURL string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.CORSAllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel)))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(getEnv("LOG_FORMAT", defaultLogFormat)))

	cfg.Storage = StorageConfig{
		Provider:    strings.ToLower(strings.TrimSpace(getEnv("STORAGE_PROVIDER", defaultStorageProvider))),
		Dir:         strings.TrimSpace(getEnv("STORAGE_DIR", defaultStorageDir)),
		S3Bucket:    strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region:    strings.TrimSpace(getEnv("S3_REGION", "us-east-1")),
		S3Endpoint:  strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		S3AccessKey: strings.TrimSpace(os.Getenv("S3_ACCESS_KEY")),
		S3SecretKey: strings.TrimSpace(os.Getenv("S3_SECRET_KEY")),
	}
	cfg.Storage.PublicURL = strings.TrimRight(strings.TrimSpace(getEnv("STORAGE_PUBLIC_URL", defaultPublicURL(cfg.Storage))), "/")
	cfg.ProxyAllowedOrigin = strings.TrimSpace(getEnv("PROXY_ALLOWED_ORIGIN", cfg.Storage.PublicURL))

	cfg.VAPIDPublicKey = strings.TrimSpace(os.Getenv("VAPID_PUBLIC_KEY"))
	cfg.VAPIDPrivateKey = strings.TrimSpace(os.Getenv("VAPID_PRIVATE_KEY"))
	cfg.VAPIDSubject = strings.TrimSpace(getEnv("VAPID_SUBJECT", defaultVAPIDSubject))

	cfg.GeocoderURL = strings.TrimSpace(getEnv("GEOCODER_URL", defaultGeocoderURL))
	cfg.GeocoderUserAgent = strings.TrimSpace(getEnv("GEOCODER_USER_AGENT", defaultGeocoderAgent))

	var err error
	cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL)
	if err != nil {
		return nil, err
	}
	cfg.GeocoderTimeout, err = parseDurationEnv("GEOCODER_TIMEOUT", defaultGeocoderTimeout)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PushEnabled reports whether both VAPID keys are configured.
func (c *AppConfig) PushEnabled() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}

func (c *AppConfig) IsProdLike() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *AppConfig) error {
	if cfg.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.GeocoderTimeout <= 0 {
		return fmt.Errorf("GEOCODER_TIMEOUT must be > 0")
	}
	switch cfg.LogLevel {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a known level", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be one of: text, json")
	}

	switch cfg.Storage.Provider {
	case "filesystem":
		if cfg.Storage.Dir == "" {
			return fmt.Errorf("STORAGE_DIR must not be empty")
		}
	case "s3":
		if cfg.Storage.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET must be set when STORAGE_PROVIDER=s3")
		}
	default:
		return fmt.Errorf("STORAGE_PROVIDER must be one of: filesystem, s3")
	}
	if _, err := parseOrigin(cfg.Storage.PublicURL); err != nil {
		return fmt.Errorf("STORAGE_PUBLIC_URL: %w", err)
	}
	if _, err := parseOrigin(cfg.ProxyAllowedOrigin); err != nil {
		return fmt.Errorf("PROXY_ALLOWED_ORIGIN: %w", err)
	}
	if (cfg.VAPIDPublicKey == "") != (cfg.VAPIDPrivateKey == "") {
		return fmt.Errorf("VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY must be set together")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if !cfg.PushEnabled() {
			return fmt.Errorf("in prod/release VAPID keys must be set")
		}
	}

	return nil
}

func defaultPublicURL(s StorageConfig) string {
	if s.Provider == "s3" && s.S3Bucket != "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.S3Bucket, s.S3Region)
	}
	return defaultStoragePublic
}

func parseOrigin(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("host must not be empty")
	}
	return u, nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
