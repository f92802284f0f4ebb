package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		ENV string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		Driver   string
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	HTTP struct {
		Host        string
		Port        string
		CORSOrigins []string
		// RateLimit is the number of requests allowed per IP per minute. 0 disables it.
		RateLimit int
	}

	GRPC struct {
		Host string
		Port string
	}

	Auth struct {
		HS256Secret string
		JWKSURL     string
		Issuer      string
	}

	Entitlement struct {
		Secret string
		TTL    time.Duration
	}

	Swipe struct {
		DailyLimit int
	}

	S3 struct {
		Region         string
		Bucket         string
		Endpoint       string
		PublicBaseURL  string
		MaxUploadBytes int64
	}

	Scheduler struct {
		Interval          time.Duration
		ReconcileInterval time.Duration
	}
}

func New() *Config {
	// .env is optional; real environment variables always win.
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.App.ENV = getEnvDefault("APP_ENV", "development")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "glidefade")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.Driver = strings.ToLower(getEnvDefault("DB_DRIVER", "mysql"))
	cfg.DB.DSN = os.Getenv("DATABASE_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "glidefade")

		switch cfg.DB.Driver {
		case "postgres":
			cfg.DB.Port = getEnvDefault("DB_PORT", "5432")
			cfg.DB.DSN = fmt.Sprintf(
				"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
				cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name,
			)
		case "sqlite":
			cfg.DB.DSN = getEnvDefault("SQLITE_PATH", "glidefade.db")
		default:
			cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
			cfg.DB.DSN = fmt.Sprintf(
				"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
				cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
			)
		}
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	// HTTP
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", "0.0.0.0")
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", "8080")
	cfg.HTTP.CORSOrigins = splitList(getEnvDefault("CORS_ORIGINS", "*"))
	cfg.HTTP.RateLimit = getEnvInt("HTTP_RATE_LIMIT", 300)

	// gRPC
	cfg.GRPC.Host = getEnvDefault("GRPC_HOST", "127.0.0.1")
	cfg.GRPC.Port = getEnvDefault("GRPC_PORT", "50051")

	// Auth
	cfg.Auth.HS256Secret = os.Getenv("AUTH_HS256_SECRET")
	cfg.Auth.JWKSURL = os.Getenv("AUTH_JWKS_URL")
	cfg.Auth.Issuer = os.Getenv("AUTH_ISSUER")

	// Entitlements
	cfg.Entitlement.Secret = getEnvDefault("ENTITLEMENT_SECRET", "dev-entitlement-secret")
	cfg.Entitlement.TTL = getEnvDuration("ENTITLEMENT_TTL", 24*time.Hour)

	// Swipes
	cfg.Swipe.DailyLimit = getEnvInt("SWIPE_DAILY_LIMIT", 20)

	// Object storage
	cfg.S3.Region = getEnvDefault("AWS_REGION", "us-east-1")
	cfg.S3.Bucket = getEnvDefault("S3_BUCKET_NAME", "glidefade-media")
	cfg.S3.Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.S3.PublicBaseURL = os.Getenv("S3_PUBLIC_BASE_URL")
	if cfg.S3.PublicBaseURL == "" {
		cfg.S3.PublicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3.Bucket, cfg.S3.Region)
	}
	cfg.S3.MaxUploadBytes = int64(getEnvInt("UPLOAD_MAX_BYTES", 50<<20))

	// Scheduler
	cfg.Scheduler.Interval = getEnvDuration("SCHEDULER_INTERVAL", 5*time.Second)
	cfg.Scheduler.ReconcileInterval = getEnvDuration("RECONCILE_INTERVAL", 30*time.Second)

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// getEnvDuration accepts Go duration strings ("5s", "1m") and bare integers as seconds.
func getEnvDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
