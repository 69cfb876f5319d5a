package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Line     LineConfig
	Content  ContentConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	// PublicBaseURL prefixes URIs of downloaded content. When empty the
	// base URL of the inbound webhook request is used.
	PublicBaseURL string
	// TrustedProxies limits which peers may set X-Forwarded-* headers.
	// Empty trusts every peer.
	TrustedProxies []string
}

// LineConfig holds Messaging API credentials and reply limits.
type LineConfig struct {
	ChannelSecret       string
	ChannelToken        string
	MaxMessagesPerReply   int
	RepliesPerSecond      int
	ContentTimeoutSeconds int
}

// ContentConfig controls the downloaded content area and preview generation.
type ContentConfig struct {
	DownloadDir          string
	PreviewWidth         int
	ConvertCommand       string
	TTLMinutes           int
	SweepIntervalSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr            string
	Password        string
	DB              int
	EventTTLMinutes int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines admin authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	AdminUsername         string
	AdminPasswordHash     string
	BcryptCost            int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "line-menu-bot"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			PublicBaseURL:         strings.TrimRight(os.Getenv("APP_PUBLIC_BASE_URL"), "/"),
			TrustedProxies:        getEnvAsList("APP_TRUSTED_PROXIES"),
		},
		Line: LineConfig{
			ChannelSecret:         os.Getenv("LINE_CHANNEL_SECRET"),
			ChannelToken:          os.Getenv("LINE_CHANNEL_TOKEN"),
			MaxMessagesPerReply:   getEnvAsInt("LINE_MAX_MESSAGES_PER_REPLY", 5),
			RepliesPerSecond:      getEnvAsInt("LINE_REPLIES_PER_SECOND", 100),
			ContentTimeoutSeconds: getEnvAsInt("LINE_CONTENT_TIMEOUT_SECONDS", 60),
		},
		Content: ContentConfig{
			DownloadDir:          getEnv("CONTENT_DOWNLOAD_DIR", ""),
			PreviewWidth:         getEnvAsInt("CONTENT_PREVIEW_WIDTH", 240),
			ConvertCommand:       getEnv("CONTENT_CONVERT_COMMAND", "convert"),
			TTLMinutes:           getEnvAsInt("CONTENT_TTL_MINUTES", 24*60),
			SweepIntervalSeconds: getEnvAsInt("CONTENT_SWEEP_INTERVAL_SECONDS", 600),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:            os.Getenv("REDIS_ADDR"),
			Password:        os.Getenv("REDIS_PASSWORD"),
			DB:              redisDB,
			EventTTLMinutes: getEnvAsInt("REDIS_EVENT_TTL_MINUTES", 60),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", DefaultJWTSecret),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			AdminUsername:         getEnv("AUTH_ADMIN_USERNAME", "admin"),
			AdminPasswordHash:     os.Getenv("AUTH_ADMIN_PASSWORD_HASH"),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
	}

	if cfg.Content.DownloadDir == "" {
		cfg.Content.DownloadDir = defaultDownloadDir()
	}

	return cfg, nil
}

// DefaultJWTSecret is the development fallback for AUTH_JWT_SECRET.
const DefaultJWTSecret = "dev-secret"

// IsDevelopment reports whether the app runs in the development environment.
func (a AppConfig) IsDevelopment() bool {
	return strings.EqualFold(a.Env, "development")
}

// Validate checks the values the webhook cannot run without. Outside
// development, or once an admin password is configured, the JWT secret must
// be set to a non-default value.
func (c *Config) Validate() error {
	if c.Line.ChannelSecret == "" {
		return fmt.Errorf("LINE_CHANNEL_SECRET is required")
	}
	if c.Line.ChannelToken == "" {
		return fmt.Errorf("LINE_CHANNEL_TOKEN is required")
	}
	if c.Line.MaxMessagesPerReply <= 0 {
		return fmt.Errorf("invalid LINE_MAX_MESSAGES_PER_REPLY: %d", c.Line.MaxMessagesPerReply)
	}
	if !c.App.IsDevelopment() || c.Auth.AdminPasswordHash != "" {
		if secret := strings.TrimSpace(c.Auth.JWTSecret); secret == "" || secret == DefaultJWTSecret {
			return fmt.Errorf("AUTH_JWT_SECRET must be set to a non-default value")
		}
	}
	if !c.App.IsDevelopment() && c.App.PublicBaseURL != "" && !strings.HasPrefix(c.App.PublicBaseURL, "https://") {
		return fmt.Errorf("APP_PUBLIC_BASE_URL must use https: %s", c.App.PublicBaseURL)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ContentTimeout bounds a single message content download.
func (l LineConfig) ContentTimeout() time.Duration {
	if l.ContentTimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(l.ContentTimeoutSeconds) * time.Second
}

// TTL returns how long downloaded files are kept; zero disables sweeping.
func (c ContentConfig) TTL() time.Duration {
	if c.TTLMinutes <= 0 {
		return 0
	}
	return time.Duration(c.TTLMinutes) * time.Minute
}

// SweepInterval returns the period between sweeps of the download dir.
func (c ContentConfig) SweepInterval() time.Duration {
	if c.SweepIntervalSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// EventTTL returns how long processed webhook event ids are remembered.
func (r RedisConfig) EventTTL() time.Duration {
	if r.EventTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(r.EventTTLMinutes) * time.Minute
}

func defaultDownloadDir() string {
	return filepath.Join(os.TempDir(), "line-menu-bot-downloaded")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
