package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StoragePostgres = "postgres"
	StorageJSONFile = "jsonfile"
)

// Blob backends.
const (
	BlobS3  = "s3"
	BlobDir = "dir"
)

// Rate limiter backends.
const (
	RateLimitRedis  = "redis"
	RateLimitMemory = "memory"
)

// Config represents the application configuration structure.
// It contains settings for the environment, HTTP server, storage backends,
// third-party providers and graceful shutdown behavior.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`
	// LogLevel overrides the environment's default log level when set
	LogLevel string `env:"LOG_LEVEL" env-default:"" yaml:"logLevel"`
	// PublicURL is the site base URL used in customer-facing links
	PublicURL string `env:"PUBLIC_URL" env-default:"http://localhost:3000" yaml:"publicUrl"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"60s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
		// AllowedOrigins lists the browser origins allowed by CORS
		AllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" env-default:"http://localhost:3000" yaml:"allowedOrigins"`
		// TrustedProxies lists the reverse proxies (CIDRs or addresses) whose
		// X-Forwarded-For and X-Real-IP headers identify the client
		TrustedProxies []string `env:"HTTP_TRUSTED_PROXIES" yaml:"trustedProxies"`
		// EnablePprof mounts /debug/pprof
		EnablePprof bool `env:"HTTP_ENABLE_PPROF" env-default:"false" yaml:"enablePprof"`
	} `yaml:"http"`

	// Storage selects the persistence backend
	Storage struct {
		// Backend is either postgres or jsonfile
		Backend string `env:"STORAGE_BACKEND" env-default:"postgres" yaml:"backend"`
		// DataDir is where the jsonfile backend keeps its collections
		DataDir string `env:"STORAGE_DATA_DIR" env-default:"data" yaml:"dataDir"`
	} `yaml:"storage"`

	// Database contains all database connection related configurations
	Database struct {
		// URL is a full connection string; it takes precedence over the individual fields
		URL string `env:"DATABASE_URL" env-default:"" yaml:"url"`
		// Username for database authentication
		Username string `env:"DATABASE_USERNAME" env-default:"myuser" yaml:"username"`
		// Password for database authentication
		Password string `env:"DATABASE_PASSWORD" env-default:"mypassword" yaml:"password"`
		// Host is the database server hostname or IP address
		Host string `env:"DATABASE_HOST" env-default:"localhost" yaml:"host"`
		// Port is the database server port number
		Port int `env:"DATABASE_PORT" env-default:"5432" yaml:"port"`
		// SslMode defines the SSL mode for the database connection
		SslMode string `env:"DATABASE_SSL_MODE" env-default:"disable" yaml:"sslMode"`
		// DatabaseName is the name of the database to connect to
		DatabaseName string `env:"DATABASE_NAME" env-default:"rightfit" yaml:"name"`
		// MaxOpenConnections limits the number of open connections to the database
		MaxOpenConnections int `env:"DATABASE_MAX_OPEN_CONNECTIONS" env-default:"10" yaml:"maxOpenConnections"`
		// MaxIdleConnections limits the number of connections in the idle connection pool
		MaxIdleConnections int `env:"DATABASE_MAX_IDLE_CONNECTIONS" env-default:"8" yaml:"maxIdleConnections"`
		// ConnMaxLifetime is the maximum amount of time a connection may be reused
		ConnMaxLifetime time.Duration `env:"DATABASE_CONNECTION_MAX_LIFETIME" env-default:"3m" yaml:"connMaxLifetime"`
		// ConnMaxIdleTime is the maximum amount of time a connection may be idle
		ConnMaxIdleTime time.Duration `env:"DATABASE_CONNECTION_MAX_IDLE_TIME" env-default:"3m" yaml:"connMaxIdleTime"`
	} `yaml:"database"`

	// Blob configures CV file storage
	Blob struct {
		// Backend is either s3 or dir
		Backend string `env:"BLOB_BACKEND" env-default:"dir" yaml:"backend"`
		// Dir is the root directory of the dir backend
		Dir string `env:"BLOB_DIR" env-default:"data/files" yaml:"dir"`
		// MaxUploadBytes caps a single uploaded file
		MaxUploadBytes int64 `env:"BLOB_MAX_UPLOAD_BYTES" env-default:"10485760" yaml:"maxUploadBytes"`
		// S3 configures the s3 backend, including Supabase Storage's S3 endpoint
		S3 struct {
			Endpoint     string `env:"S3_ENDPOINT" env-default:"localhost:9000" yaml:"endpoint"`
			AccessKey    string `env:"S3_ACCESS_KEY" env-default:"" yaml:"accessKey"`
			SecretKey    string `env:"S3_SECRET_KEY" env-default:"" yaml:"secretKey"`
			Region       string `env:"S3_REGION" env-default:"" yaml:"region"`
			Bucket       string `env:"S3_BUCKET" env-default:"cv-uploads" yaml:"bucket"`
			UseSSL       bool   `env:"S3_USE_SSL" env-default:"false" yaml:"useSsl"`
			CreateBucket bool   `env:"S3_CREATE_BUCKET" env-default:"false" yaml:"createBucket"`
		} `yaml:"s3"`
	} `yaml:"blob"`

	// Stripe configures payments; an empty SecretKey disables them
	Stripe struct {
		SecretKey     string `env:"STRIPE_SECRET_KEY" env-default:"" yaml:"secretKey"`
		WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET" env-default:"" yaml:"webhookSecret"`
	} `yaml:"stripe"`

	// OpenAI configures CV grading; an empty APIKey switches to the demo grader
	OpenAI struct {
		APIKey  string `env:"OPENAI_API_KEY" env-default:"" yaml:"apiKey"`
		Model   string `env:"OPENAI_MODEL" env-default:"gpt-4o-mini" yaml:"model"`
		BaseURL string `env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1" yaml:"baseUrl"`
		// Timeout bounds a single chat completion call
		Timeout time.Duration `env:"OPENAI_TIMEOUT" env-default:"60s" yaml:"timeout"`
	} `yaml:"openai"`

	// Email configures transactional email; an empty ResendAPIKey logs messages instead
	Email struct {
		ResendAPIKey string `env:"RESEND_API_KEY" env-default:"" yaml:"resendApiKey"`
		From         string `env:"EMAIL_FROM" env-default:"RightFit CV <orders@rightfitcv.com>" yaml:"from"`
		ReplyTo      string `env:"EMAIL_REPLY_TO" env-default:"" yaml:"replyTo"`
		// AdminEmail receives new-order alerts; empty disables them
		AdminEmail string `env:"ADMIN_EMAIL" env-default:"" yaml:"adminEmail"`
	} `yaml:"email"`

	// Admin configures the back-office session
	Admin struct {
		// PasswordHash is the bcrypt hash of the admin password
		PasswordHash string `env:"ADMIN_PASSWORD_HASH" env-default:"" yaml:"passwordHash"`
		// JWTSecret signs admin session tokens
		JWTSecret string `env:"ADMIN_JWT_SECRET" env-default:"" yaml:"jwtSecret"`
		// SessionTTL is how long an admin session stays valid
		SessionTTL time.Duration `env:"ADMIN_SESSION_TTL" env-default:"24h" yaml:"sessionTtl"`
	} `yaml:"admin"`

	// OrderTokenSecret signs customer order-status links
	OrderTokenSecret string `env:"ORDER_TOKEN_SECRET" env-default:"" yaml:"orderTokenSecret"`

	// RateLimit configures per-IP limits on public endpoints
	RateLimit struct {
		// Backend is either redis or memory
		Backend       string        `env:"RATE_LIMIT_BACKEND" env-default:"memory" yaml:"backend"`
		RedisAddr     string        `env:"REDIS_ADDR" env-default:"localhost:6379" yaml:"redisAddr"`
		RedisPassword string        `env:"REDIS_PASSWORD" env-default:"" yaml:"redisPassword"`
		RedisDB       int           `env:"REDIS_DB" env-default:"0" yaml:"redisDb"`
		Window        time.Duration `env:"RATE_LIMIT_WINDOW" env-default:"1h" yaml:"window"`
		GradeCV       int           `env:"RATE_LIMIT_GRADE_CV" env-default:"5" yaml:"gradeCv"`
		Leads         int           `env:"RATE_LIMIT_LEADS" env-default:"30" yaml:"leads"`
		ResendLink    int           `env:"RATE_LIMIT_RESEND_LINK" env-default:"5" yaml:"resendLink"`
	} `yaml:"rateLimit"`

	// Worker configures background jobs
	Worker struct {
		// MaxWorkers is the River queue concurrency
		MaxWorkers int `env:"WORKER_MAX_WORKERS" env-default:"10" yaml:"maxWorkers"`
		// GradeDefaultLimit is the assumed OpenAI request budget before any response is seen
		GradeDefaultLimit int `env:"WORKER_GRADE_DEFAULT_LIMIT" env-default:"60" yaml:"gradeDefaultLimit"`
		// GradeWindow is the assumed budget window before any response is seen
		GradeWindow time.Duration `env:"WORKER_GRADE_WINDOW" env-default:"1m" yaml:"gradeWindow"`
	} `yaml:"worker"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load loads an optional .env file from the working directory, then reads the
// yaml config file at configPath with environment overrides. A missing config
// file is fine; settings then come from the environment and defaults.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not load .env: %w", err)
	}

	var cfg Config
	if _, err := os.Stat(configPath); err == nil {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("could not read config: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("could not read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks enum settings and the secrets production depends on.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StoragePostgres, StorageJSONFile:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Blob.Backend {
	case BlobS3, BlobDir:
	default:
		return fmt.Errorf("unknown blob backend %q", c.Blob.Backend)
	}
	switch c.RateLimit.Backend {
	case RateLimitRedis, RateLimitMemory:
	default:
		return fmt.Errorf("unknown rate limit backend %q", c.RateLimit.Backend)
	}
	if c.Environment == "production" {
		if c.OrderTokenSecret == "" {
			return errors.New("orderTokenSecret is required in production")
		}
		if c.Admin.JWTSecret == "" {
			return errors.New("admin.jwtSecret is required in production")
		}
	}

	return nil
}
