package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Storage StorageConfig
	LLM     LLMConfig
	Auth    AuthConfig
	Log     LogConfig
	CORS    CORSConfig
	Pool    PoolConfig
	Lock    LockConfig
	Email   EmailConfig
	Poll    PollConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// StorageConfig holds object storage settings for uploaded documents.
type StorageConfig struct {
	Provider        string `mapstructure:"provider"`
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKey       string `mapstructure:"access_key"`
	SecretKey       string `mapstructure:"secret_key"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// Configured reports whether enough storage settings exist to download documents.
func (s *StorageConfig) Configured() bool {
	return s.Provider != "" && s.Bucket != ""
}

// LLMConfig holds settings for the extraction model provider.
type LLMConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
	MaxTokens    int    `mapstructure:"max_tokens"`

	// Optional second provider tried when the primary is rate limited.
	FallbackProvider string `mapstructure:"fallback_provider"`
	FallbackAPIKey   string `mapstructure:"fallback_api_key"`
	FallbackModel    string `mapstructure:"fallback_model"`
}

// Configured reports whether a provider and API key are set.
func (l *LLMConfig) Configured() bool {
	return l.Provider != "" && l.APIKey != ""
}

// AuthConfig holds request authentication settings. Empty SharedSecret disables
// the bearer check on the extraction endpoints.
type AuthConfig struct {
	SharedSecret      string `mapstructure:"shared_secret"`
	ReviewerJWTSecret string `mapstructure:"reviewer_jwt_secret"`
	JWTIssuer         string `mapstructure:"jwt_issuer"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// PoolConfig holds extraction worker pool settings.
type PoolConfig struct {
	Concurrency    int     `mapstructure:"concurrency"`
	QueueSize      int     `mapstructure:"queue_size"`
	RatePerSec     float64 `mapstructure:"rate_per_sec"`
	Burst          int     `mapstructure:"burst"`
	JobTimeoutSecs int     `mapstructure:"job_timeout_secs"`
}

// LockConfig selects the per-document extraction lock backend.
type LockConfig struct {
	Provider      string `mapstructure:"provider"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	TTLSecs       int    `mapstructure:"ttl_secs"`
}

// EmailConfig holds review notification delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	ReviewInbox string `mapstructure:"review_inbox"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// PollConfig holds client-side polling defaults used by coverctl.
type PollConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	IntervalMs  int    `mapstructure:"interval_ms"`
	MaxAttempts int    `mapstructure:"max_attempts"`
}

// Interval returns the polling interval as a duration.
func (p *PollConfig) Interval() time.Duration {
	return time.Duration(p.IntervalMs) * time.Millisecond
}

// Load reads configuration from environment variables with the COVERLINE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("COVERLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "coverline")
	v.SetDefault("db.password", "coverline_secret")
	v.SetDefault("db.name", "coverline_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Storage defaults
	v.SetDefault("storage.provider", "s3")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.credentials_file", "")

	// LLM defaults
	v.SetDefault("llm.provider", "claude")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.default_model", "")
	v.SetDefault("llm.timeout_secs", 120)
	v.SetDefault("llm.max_tokens", 8192)
	v.SetDefault("llm.fallback_provider", "")
	v.SetDefault("llm.fallback_api_key", "")
	v.SetDefault("llm.fallback_model", "")

	// Auth defaults
	v.SetDefault("auth.shared_secret", "")
	v.SetDefault("auth.reviewer_jwt_secret", "")
	v.SetDefault("auth.jwt_issuer", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Pool defaults
	v.SetDefault("pool.concurrency", 4)
	v.SetDefault("pool.queue_size", 64)
	v.SetDefault("pool.rate_per_sec", 0)
	v.SetDefault("pool.burst", 1)
	v.SetDefault("pool.job_timeout_secs", 300)

	// Lock defaults
	v.SetDefault("lock.provider", "memory")
	v.SetDefault("lock.redis_addr", "localhost:6379")
	v.SetDefault("lock.redis_db", 0)
	v.SetDefault("lock.ttl_secs", 600)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@coverline.local")
	v.SetDefault("email.from_name", "Coverline")
	v.SetDefault("email.review_inbox", "")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Poll defaults
	v.SetDefault("poll.base_url", "http://localhost:8080")
	v.SetDefault("poll.interval_ms", 1000)
	v.SetDefault("poll.max_attempts", 30)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "COVERLINE_SERVER_PORT",
		"server.read_timeout":      "COVERLINE_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "COVERLINE_SERVER_WRITE_TIMEOUT",
		"server.environment":       "COVERLINE_SERVER_ENVIRONMENT",
		"db.host":                  "COVERLINE_DB_HOST",
		"db.port":                  "COVERLINE_DB_PORT",
		"db.user":                  "COVERLINE_DB_USER",
		"db.password":              "COVERLINE_DB_PASSWORD",
		"db.name":                  "COVERLINE_DB_NAME",
		"db.sslmode":               "COVERLINE_DB_SSLMODE",
		"db.max_open":              "COVERLINE_DB_MAX_OPEN",
		"db.max_idle":              "COVERLINE_DB_MAX_IDLE",
		"storage.provider":         "COVERLINE_STORAGE_PROVIDER",
		"storage.bucket":           "COVERLINE_STORAGE_BUCKET",
		"storage.region":           "COVERLINE_STORAGE_REGION",
		"storage.endpoint":         "COVERLINE_STORAGE_ENDPOINT",
		"storage.access_key":       "COVERLINE_STORAGE_ACCESS_KEY",
		"storage.secret_key":       "COVERLINE_STORAGE_SECRET_KEY",
		"storage.credentials_file": "COVERLINE_STORAGE_CREDENTIALS_FILE",
		"llm.provider":             "COVERLINE_LLM_PROVIDER",
		"llm.api_key":              "COVERLINE_LLM_API_KEY",
		"llm.default_model":        "COVERLINE_LLM_DEFAULT_MODEL",
		"llm.timeout_secs":         "COVERLINE_LLM_TIMEOUT_SECS",
		"llm.max_tokens":           "COVERLINE_LLM_MAX_TOKENS",
		"llm.fallback_provider":    "COVERLINE_LLM_FALLBACK_PROVIDER",
		"llm.fallback_api_key":     "COVERLINE_LLM_FALLBACK_API_KEY",
		"llm.fallback_model":       "COVERLINE_LLM_FALLBACK_MODEL",
		"auth.shared_secret":       "COVERLINE_AUTH_SHARED_SECRET",
		"auth.reviewer_jwt_secret": "COVERLINE_AUTH_REVIEWER_JWT_SECRET",
		"auth.jwt_issuer":          "COVERLINE_AUTH_JWT_ISSUER",
		"log.level":                "COVERLINE_LOG_LEVEL",
		"log.format":               "COVERLINE_LOG_FORMAT",
		"cors.allowed_origins":     "COVERLINE_CORS_ALLOWED_ORIGINS",
		"pool.concurrency":         "COVERLINE_POOL_CONCURRENCY",
		"pool.queue_size":          "COVERLINE_POOL_QUEUE_SIZE",
		"pool.rate_per_sec":        "COVERLINE_POOL_RATE_PER_SEC",
		"pool.burst":               "COVERLINE_POOL_BURST",
		"pool.job_timeout_secs":    "COVERLINE_POOL_JOB_TIMEOUT_SECS",
		"lock.provider":            "COVERLINE_LOCK_PROVIDER",
		"lock.redis_addr":          "COVERLINE_LOCK_REDIS_ADDR",
		"lock.redis_password":      "COVERLINE_LOCK_REDIS_PASSWORD",
		"lock.redis_db":            "COVERLINE_LOCK_REDIS_DB",
		"lock.ttl_secs":            "COVERLINE_LOCK_TTL_SECS",
		"email.provider":           "COVERLINE_EMAIL_PROVIDER",
		"email.region":             "COVERLINE_EMAIL_REGION",
		"email.from_address":       "COVERLINE_EMAIL_FROM_ADDRESS",
		"email.from_name":          "COVERLINE_EMAIL_FROM_NAME",
		"email.review_inbox":       "COVERLINE_EMAIL_REVIEW_INBOX",
		"email.frontend_url":       "COVERLINE_EMAIL_FRONTEND_URL",
		"poll.base_url":            "COVERLINE_POLL_BASE_URL",
		"poll.interval_ms":         "COVERLINE_POLL_INTERVAL_MS",
		"poll.max_attempts":        "COVERLINE_POLL_MAX_ATTEMPTS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if COVERLINE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("COVERLINE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Storage = StorageConfig{
		Provider:        v.GetString("storage.provider"),
		Bucket:          v.GetString("storage.bucket"),
		Region:          v.GetString("storage.region"),
		Endpoint:        v.GetString("storage.endpoint"),
		AccessKey:       v.GetString("storage.access_key"),
		SecretKey:       v.GetString("storage.secret_key"),
		CredentialsFile: v.GetString("storage.credentials_file"),
	}
	cfg.LLM = LLMConfig{
		Provider:     v.GetString("llm.provider"),
		APIKey:       v.GetString("llm.api_key"),
		DefaultModel: v.GetString("llm.default_model"),
		TimeoutSecs:  v.GetInt("llm.timeout_secs"),
		MaxTokens:    v.GetInt("llm.max_tokens"),

		FallbackProvider: v.GetString("llm.fallback_provider"),
		FallbackAPIKey:   v.GetString("llm.fallback_api_key"),
		FallbackModel:    v.GetString("llm.fallback_model"),
	}
	cfg.Auth = AuthConfig{
		SharedSecret:      v.GetString("auth.shared_secret"),
		ReviewerJWTSecret: v.GetString("auth.reviewer_jwt_secret"),
		JWTIssuer:         v.GetString("auth.jwt_issuer"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Pool = PoolConfig{
		Concurrency:    v.GetInt("pool.concurrency"),
		QueueSize:      v.GetInt("pool.queue_size"),
		RatePerSec:     v.GetFloat64("pool.rate_per_sec"),
		Burst:          v.GetInt("pool.burst"),
		JobTimeoutSecs: v.GetInt("pool.job_timeout_secs"),
	}
	cfg.Lock = LockConfig{
		Provider:      v.GetString("lock.provider"),
		RedisAddr:     v.GetString("lock.redis_addr"),
		RedisPassword: v.GetString("lock.redis_password"),
		RedisDB:       v.GetInt("lock.redis_db"),
		TTLSecs:       v.GetInt("lock.ttl_secs"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		ReviewInbox: v.GetString("email.review_inbox"),
		FrontendURL: v.GetString("email.frontend_url"),
	}
	cfg.Poll = PollConfig{
		BaseURL:     v.GetString("poll.base_url"),
		IntervalMs:  v.GetInt("poll.interval_ms"),
		MaxAttempts: v.GetInt("poll.max_attempts"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Pool.Concurrency <= 0 {
		return fmt.Errorf("pool.concurrency must be positive, got %d", c.Pool.Concurrency)
	}
	if c.Pool.QueueSize < 0 {
		return fmt.Errorf("pool.queue_size must not be negative, got %d", c.Pool.QueueSize)
	}
	switch c.Lock.Provider {
	case "memory":
	case "redis":
		if c.Lock.TTLSecs <= 0 {
			return fmt.Errorf("lock.ttl_secs must be positive for the redis lock, got %d", c.Lock.TTLSecs)
		}
	default:
		return fmt.Errorf("unknown lock provider: %s", c.Lock.Provider)
	}
	return nil
}

// splitList parses a comma-separated string, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
