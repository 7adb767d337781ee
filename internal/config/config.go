package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Storage      StorageConfig
	Geocoding    GeocodingConfig
	Jobs         JobsConfig
	Notification NotificationConfig
	Maintenance  MaintenanceConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
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
	Addr          string
	Password      string
	DB            int
	EventsChannel string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level   string
	Format  string
	Service string
}

// AuthConfig defines identity provider parameters.
type AuthConfig struct {
	JWTSecret               string
	AccessTokenTTLMinutes   int
	PasswordResetTTLMinutes int
	BcryptCost              int
	SignInPerMinute         int
	SignInBurst             int
	ResetLinkBase           string
	SuperAdminPassword      string
}

// StorageConfig points at the S3-compatible bucket holding job images.
type StorageConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	ForcePathStyle  bool
	MaxUploadBytes  int
}

// GeocodingConfig configures address resolution.
type GeocodingConfig struct {
	APIKey         string
	BaseURL        string
	TimeoutSeconds int
}

// JobsConfig holds the job form variant flags.
type JobsConfig struct {
	RequireAddress bool
}

// NotificationConfig holds the reset mail relay and the job event webhook.
type NotificationConfig struct {
	EmailFrom             string
	SMTPHost              string
	SMTPPort              string
	SMTPUser              string
	SMTPPassword          string
	SMTPTimeoutSeconds    int
	WebhookURL            string
	WebhookTimeoutSeconds int
}

// MaintenanceConfig schedules background housekeeping.
type MaintenanceConfig struct {
	ResetPurgeCron string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "lcs-admin-console"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:          getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:      os.Getenv("REDIS_PASSWORD"),
			DB:            redisDB,
			EventsChannel: getEnv("REDIS_EVENTS_CHANNEL", "lcs:jobs:changed"),
		},
		Logger: LoggerConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Format:  getEnv("LOG_FORMAT", "json"),
			Service: getEnv("APP_NAME", "lcs-admin-console"),
		},
		Auth: AuthConfig{
			JWTSecret:               getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes:   getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			PasswordResetTTLMinutes: getEnvAsInt("AUTH_PASSWORD_RESET_TTL_MINUTES", 30),
			BcryptCost:              getEnvAsInt("AUTH_BCRYPT_COST", 12),
			SignInPerMinute:         getEnvAsInt("AUTH_SIGNIN_PER_MINUTE", 5),
			SignInBurst:             getEnvAsInt("AUTH_SIGNIN_BURST", 5),
			ResetLinkBase:           getEnv("AUTH_RESET_LINK_BASE", "http://localhost:8081/reset-password"),
			SuperAdminPassword:      os.Getenv("AUTH_SUPER_ADMIN_PASSWORD"),
		},
		Storage: StorageConfig{
			Endpoint:        os.Getenv("STORAGE_ENDPOINT"),
			Region:          getEnv("STORAGE_REGION", "us-east-1"),
			Bucket:          os.Getenv("STORAGE_BUCKET"),
			AccessKeyID:     os.Getenv("STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("STORAGE_SECRET_ACCESS_KEY"),
			PublicBaseURL:   os.Getenv("STORAGE_PUBLIC_BASE_URL"),
			ForcePathStyle:  getEnvAsBool("STORAGE_FORCE_PATH_STYLE", false),
			MaxUploadBytes:  getEnvAsInt("STORAGE_MAX_UPLOAD_BYTES", 10*1024*1024),
		},
		Geocoding: GeocodingConfig{
			APIKey:         os.Getenv("GEOCODING_API_KEY"),
			BaseURL:        getEnv("GEOCODING_BASE_URL", "https://maps.googleapis.com/maps/api/geocode/json"),
			TimeoutSeconds: getEnvAsInt("GEOCODING_TIMEOUT_SECONDS", 5),
		},
		Jobs: JobsConfig{
			RequireAddress: getEnvAsBool("JOBS_REQUIRE_ADDRESS", false),
		},
		Notification: NotificationConfig{
			EmailFrom:             getEnv("NOTIFY_EMAIL_FROM", "noreply@lcsstaffing.com"),
			SMTPHost:              os.Getenv("NOTIFY_SMTP_HOST"),
			SMTPPort:              getEnv("NOTIFY_SMTP_PORT", "587"),
			SMTPUser:              os.Getenv("NOTIFY_SMTP_USER"),
			SMTPPassword:          os.Getenv("NOTIFY_SMTP_PASSWORD"),
			SMTPTimeoutSeconds:    getEnvAsInt("NOTIFY_SMTP_TIMEOUT_SECONDS", 10),
			WebhookURL:            os.Getenv("NOTIFY_WEBHOOK_URL"),
			WebhookTimeoutSeconds: getEnvAsInt("NOTIFY_WEBHOOK_TIMEOUT_SECONDS", 5),
		},
		Maintenance: MaintenanceConfig{
			ResetPurgeCron: getEnv("MAINTENANCE_RESET_PURGE_CRON", "@hourly"),
		},
	}

	return cfg, nil
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

// Enabled reports whether enough settings exist to reach a bucket.
func (s StorageConfig) Enabled() bool {
	return s.Bucket != "" && s.AccessKeyID != "" && s.SecretAccessKey != ""
}

// uncappedBodyLimit bounds request bodies when uploads have no size cap.
const uncappedBodyLimit = 100 << 20

// BodyLimit is the HTTP body limit: the upload cap plus room for the other form fields.
func (s StorageConfig) BodyLimit() int {
	if s.MaxUploadBytes <= 0 {
		return uncappedBodyLimit
	}
	return s.MaxUploadBytes + 1<<20
}

// MailEnabled reports whether a relay and sender address are configured.
func (n NotificationConfig) MailEnabled() bool {
	return n.SMTPHost != "" && n.EmailFrom != ""
}

// SMTPAddr returns host:port of the mail relay.
func (n NotificationConfig) SMTPAddr() string {
	return net.JoinHostPort(n.SMTPHost, n.SMTPPort)
}

// SMTPTimeout bounds one delivery attempt.
func (n NotificationConfig) SMTPTimeout() time.Duration {
	if n.SMTPTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(n.SMTPTimeoutSeconds) * time.Second
}

// WebhookTimeout bounds one webhook POST.
func (n NotificationConfig) WebhookTimeout() time.Duration {
	if n.WebhookTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(n.WebhookTimeoutSeconds) * time.Second
}

// Enabled reports whether an API key is configured.
func (g GeocodingConfig) Enabled() bool {
	return g.APIKey != ""
}

// Timeout returns the geocoding request timeout.
func (g GeocodingConfig) Timeout() time.Duration {
	if g.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(g.TimeoutSeconds) * time.Second
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
