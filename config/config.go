package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	BaseURL           string
	Fetcher           string
	UserAgent         string
	RequestTimeoutSec int
	CloudflareBypass  bool
	ChromeBin         string

	AnchorMaxAttempts  int
	AnchorRetryDelayMs int
	AnchorMaxDelayMs   int

	CSVOutputPath string

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	LogLevel string
	LogJSON  bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		BaseURL:           getEnv("OLX_BASE_URL", "https://%s.olx.com.br/"),
		Fetcher:           strings.ToLower(getEnv("FETCHER", "http")),
		UserAgent:         getEnv("USER_AGENT", ""),
		RequestTimeoutSec: getEnvInt("REQUEST_TIMEOUT_SEC", 30),
		CloudflareBypass:  getEnvBool("CLOUDFLARE_BYPASS", false),
		ChromeBin:         getEnv("CHROME_BIN", ""),

		AnchorMaxAttempts:  getEnvInt("ANCHOR_MAX_ATTEMPTS", 10000),
		AnchorRetryDelayMs: getEnvInt("ANCHOR_RETRY_DELAY_MS", 0),
		AnchorMaxDelayMs:   getEnvInt("ANCHOR_MAX_DELAY_MS", 5000),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", ""),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "olx"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogJSON:  getEnvBool("LOG_JSON", false),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
