package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string

	MongoURI    string
	MongoDB     string
	PostgresDSN string
	UserStore   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTPStore     string
	OTPTTL       time.Duration
	SessionTTL   time.Duration
	JWTSecret    string
	CookieSecure bool

	MinioEndpoint      string
	MinioAccessKey     string
	MinioSecretKey     string
	MinioBucket        string
	MinioUseSSL        bool
	MediaPublicBaseURL string

	SMTPHost           string
	SMTPPort           string
	SMTPUser           string
	SMTPPass           string
	SMTPFrom           string
	OTPRecipientEmail  string
	InquiryNotifyEmail string

	LoginRateLimit  int
	LoginRateWindow time.Duration
	OTPRateLimit    int
	OTPRateWindow   time.Duration

	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:           getenv("PORT", "8080"),
		Env:            getenv("APP_ENV", "production"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS", "http://localhost:3000")),

		MongoURI:    getenv("MONGO_URI", ""),
		MongoDB:     getenv("MONGO_DB", "epimech"),
		PostgresDSN: getenv("POSTGRES_DSN", ""),
		UserStore:   getenv("USER_STORE", "mongo"),

		RedisAddr:     getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),

		OTPStore:     getenv("OTP_STORE", "memory"),
		OTPTTL:       getenvDuration("OTP_TTL", 5*time.Minute),
		SessionTTL:   getenvDuration("SESSION_TTL", 24*time.Hour),
		JWTSecret:    getenv("JWT_SECRET", ""),
		CookieSecure: getenv("COOKIE_SECURE", "true") == "true",

		MinioEndpoint:      getenv("MINIO_ENDPOINT", "minio:9000"),
		MinioAccessKey:     getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:     getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:        getenv("MINIO_BUCKET", "epimech"),
		MinioUseSSL:        getenv("MINIO_USE_SSL", "false") == "true",
		MediaPublicBaseURL: strings.TrimRight(getenv("MEDIA_PUBLIC_BASE_URL", ""), "/"),

		SMTPHost:           getenv("SMTP_HOST", ""),
		SMTPPort:           getenv("SMTP_PORT", "587"),
		SMTPUser:           getenv("SMTP_USER", ""),
		SMTPPass:           getenv("SMTP_PASS", ""),
		SMTPFrom:           getenv("SMTP_FROM", ""),
		OTPRecipientEmail:  getenv("OTP_RECIPIENT_EMAIL", ""),
		InquiryNotifyEmail: getenv("INQUIRY_NOTIFY_EMAIL", ""),

		LoginRateLimit:  getenvInt("RATE_LIMIT_LOGIN", 10),
		LoginRateWindow: getenvDuration("RATE_LIMIT_LOGIN_WINDOW", 15*time.Minute),
		OTPRateLimit:    getenvInt("RATE_LIMIT_OTP", 5),
		OTPRateWindow:   getenvDuration("RATE_LIMIT_OTP_WINDOW", 10*time.Minute),

		AdminUsername: getenv("ADMIN_USERNAME", "admin"),
		AdminEmail:    getenv("ADMIN_EMAIL", ""),
		AdminPassword: getenv("ADMIN_PASSWORD", ""),
	}
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate rejects configurations the server cannot safely start with.
func (c *Config) Validate() error {
	var errs []error

	switch c.OTPStore {
	case "memory", "redis", "mongo":
	default:
		errs = append(errs, fmt.Errorf("OTP_STORE must be memory, redis or mongo, got %q", c.OTPStore))
	}
	switch c.UserStore {
	case "mongo", "postgres", "memory":
	default:
		errs = append(errs, fmt.Errorf("USER_STORE must be mongo, postgres or memory, got %q", c.UserStore))
	}
	if c.UserStore == "memory" && !c.IsDevelopment() {
		errs = append(errs, errors.New("USER_STORE=memory is only allowed in development"))
	}
	if c.UserStore == "postgres" && c.PostgresDSN == "" {
		errs = append(errs, errors.New("USER_STORE=postgres requires POSTGRES_DSN"))
	}
	if (c.OTPStore == "mongo" || c.UserStore == "mongo") && c.MongoURI == "" && !c.IsDevelopment() {
		errs = append(errs, errors.New("MONGO_URI is required"))
	}
	if len(c.JWTSecret) < 32 && !c.IsDevelopment() {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters"))
	}
	if c.OTPTTL <= 0 {
		errs = append(errs, errors.New("OTP_TTL must be positive"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}

	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
