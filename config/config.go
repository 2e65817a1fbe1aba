package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"shuttlecast/core/media"
	"shuttlecast/logger"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
type Config struct {
	Cast CastConfig
	Log  logger.Config

	// MinIO holds artwork objects served through --image-object.
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool

	// Redis caches artwork fetched from MinIO.
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	ArtworkTTL    time.Duration

	// MySQL backs the track library used by --track-id.
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
}

// CastConfig configures the loopback media server.
type CastConfig struct {
	Host              string
	Port              int
	ReadHeaderTimeout time.Duration
	MimeTypes         media.MimeTable
}

// Addr returns the host:port the cast server listens on.
func (c CastConfig) Addr() string {
	return net.JoinHostPort(strings.Trim(c.Host, "[]"), strconv.Itoa(c.Port))
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// parseMimeTypes merges a "ext=type,ext=type" list over the default table.
// Extensions are lowercased and stripped of a leading dot; malformed entries
// are skipped.
func parseMimeTypes(spec string) media.MimeTable {
	table := media.DefaultMimeTypes()
	for _, entry := range strings.Split(spec, ",") {
		ext, contentType, ok := strings.Cut(strings.TrimSpace(entry), "=")
		ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
		contentType = strings.TrimSpace(contentType)
		if !ok || ext == "" || contentType == "" {
			continue
		}
		table[ext] = contentType
	}
	return table
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}

	return &Config{
		Cast: CastConfig{
			Host:              getEnv("CAST_HOST", "127.0.0.1"),
			Port:              getEnvInt("CAST_PORT", 5000),
			ReadHeaderTimeout: getEnvDuration("CAST_READ_HEADER_TIMEOUT", 10*time.Second),
			MimeTypes:         parseMimeTypes(os.Getenv("CAST_MIME_TYPES")),
		},
		Log: logger.Config{
			Level:      logger.LogLevel(getEnv("LOG_LEVEL", "info")),
			OutputPath: os.Getenv("LOG_FILE"),
			MaxSize:    getEnvInt("LOG_MAX_SIZE", 50),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
			MaxAge:     getEnvInt("LOG_MAX_AGE", 7),
			Compress:   getEnvBool("LOG_COMPRESS", false),
		},
		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "artwork"),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),
		RedisHost:      getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:      getEnv("REDIS_PORT", "6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		ArtworkTTL:     getEnvDuration("ARTWORK_CACHE_TTL", 24*time.Hour),
		DBHost:         getEnv("DB_HOST", "127.0.0.1"),
		DBPort:         getEnv("DB_PORT", "3306"),
		DBUser:         getEnv("DB_USER", "root"),
		DBPassword:     os.Getenv("DB_PASSWORD"), // no hardcoded default for the password
		DBName:         getEnv("DB_NAME", "fm"),
	}
}

// Validate checks values that would otherwise fail late, at bind time.
func (c *Config) Validate() error {
	if c.Cast.Port < 0 || c.Cast.Port > 65535 {
		return fmt.Errorf("invalid cast port: %d", c.Cast.Port)
	}
	if c.Cast.Host == "" {
		return fmt.Errorf("cast host must not be empty")
	}
	if !isLoopback(c.Cast.Host) {
		return fmt.Errorf("cast host must be a loopback address: %s", c.Cast.Host)
	}
	return nil
}

// isLoopback accepts "localhost" and any loopback IP literal.
func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(strings.Trim(host, "[]"))
	return ip != nil && ip.IsLoopback()
}
