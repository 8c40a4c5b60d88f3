package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultMaxUploadSize is the inclusive upper bound for an upload body.
const DefaultMaxUploadSize int64 = 10 * 1024 * 1024

type Config struct {
	HTTPAddr      string
	PublicBaseURL string
	JWTSecret     string
	AuthDisabled  bool
	CORSOrigins   []string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPass     string
	DBName     string
	SQLitePath string

	MaxUploadSize int64
	UploadRate    float64
	UploadBurst   int

	RedisEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	HashCacheTTL  time.Duration

	RabbitMQEnabled bool
	RabbitMQURL     string
	RabbitMQHost    string
	RabbitMQPort    string
	RabbitMQUser    string
	RabbitMQPass    string
	RabbitMQVhost   string

	RabbitMQPrefetch        int
	VerifyWorkerConcurrency int
	VerifyRate              float64
	VerifyBurst             int
	VerifyRetryMax          int
	VerifyRetryDelays       []time.Duration

	LogLevel      string
	LogFormat     string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

var AppConfig Config

// getEnv returns the environment value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if value == "" {
		return defaultValue
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvList splits a comma separated value, dropping empty items.
func getEnvList(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvDurationList(key string, defaultValue []time.Duration) []time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	parts := strings.Split(raw, ",")
	out := make([]time.Duration, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		parsed, err := time.ParseDuration(part)
		if err != nil {
			return defaultValue
		}
		out = append(out, parsed)
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// Load reads configuration from the environment into a Config value.
// A .env file in the working directory is applied first when present;
// variables already set in the process environment win.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env failed: %v", err)
	}

	rabbitHost := getEnv("RABBITMQ_HOST", "localhost")
	rabbitPort := getEnv("RABBITMQ_PORT", "5672")
	rabbitUser := getEnv("RABBITMQ_USER", "guest")
	rabbitPass := getEnv("RABBITMQ_PASSWORD", "guest")
	rabbitVhost := getEnv("RABBITMQ_VHOST", "/")
	rabbitURL := getEnv("RABBITMQ_URL", "")
	if rabbitURL == "" {
		rabbitURL = fmt.Sprintf(
			"amqp://%s:%s@%s:%s/%s",
			url.PathEscape(rabbitUser),
			url.PathEscape(rabbitPass),
			rabbitHost,
			rabbitPort,
			url.PathEscape(rabbitVhost),
		)
	}

	maxUpload := getEnvInt64("MAX_UPLOAD_SIZE", DefaultMaxUploadSize)
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadSize
	}

	return Config{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8000"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
		JWTSecret:     getEnv("JWT_SECRET", "l=ax+b"),
		AuthDisabled:  getEnvBool("AUTH_DISABLED", false),
		CORSOrigins:   getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPass:     getEnv("DB_PASS", "root"),
		DBName:     getEnv("DB_NAME", "file_vault"),
		SQLitePath: getEnv("SQLITE_PATH", "file_vault.db"),

		MaxUploadSize: maxUpload,
		UploadRate:    getEnvFloat("UPLOAD_RATE", 20),
		UploadBurst:   getEnvInt("UPLOAD_BURST", 40),

		RedisEnabled:  getEnvBool("REDIS_ENABLED", false),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		HashCacheTTL:  getEnvDuration("HASH_CACHE_TTL", 5*time.Minute),

		RabbitMQEnabled: getEnvBool("RABBITMQ_ENABLED", false),
		RabbitMQURL:     rabbitURL,
		RabbitMQHost:    rabbitHost,
		RabbitMQPort:    rabbitPort,
		RabbitMQUser:    rabbitUser,
		RabbitMQPass:    rabbitPass,
		RabbitMQVhost:   rabbitVhost,

		RabbitMQPrefetch:        getEnvInt("RABBITMQ_PREFETCH", 8),
		VerifyWorkerConcurrency: getEnvInt("VERIFY_WORKER_CONCURRENCY", 4),
		VerifyRate:              getEnvFloat("VERIFY_RATE", 10),
		VerifyBurst:             getEnvInt("VERIFY_BURST", 20),
		VerifyRetryMax:          getEnvInt("VERIFY_RETRY_MAX", 5),
		VerifyRetryDelays: getEnvDurationList(
			"VERIFY_RETRY_DELAYS",
			[]time.Duration{10 * time.Second, 30 * time.Second, 2 * time.Minute, 10 * time.Minute},
		),

		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:     strings.ToLower(getEnv("LOG_FORMAT", "json")),
		LogFile:       getEnv("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 30),
	}
}

// InitConfig loads configuration and initializes sub-configs.
func InitConfig() {
	AppConfig = Load()
	InitStorageConfig()
}
