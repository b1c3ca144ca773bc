package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/jalai-llc/bundongsan/internal/catalog"
	"github.com/jalai-llc/bundongsan/internal/models"
)

// Config holds application configuration
type Config struct {
	Port      string
	DBConn    string
	LogLevel  string
	JWTSecret string
	TokenTTL  time.Duration

	RateFeedURL  string
	RateSchedule string

	RedisAddr string
	CacheTTL  time.Duration

	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string
	SenderEmail    string
	DigestSchedule string

	SeedCatalogPath string
	CoordinatesPath string
	AssumptionsPath string

	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string

	Assumptions models.MarketAssumptions
	Counties    catalog.CountyDefaults
}

// assumptionsFile is the layout of the optional YAML file at ASSUMPTIONS_PATH.
type assumptionsFile struct {
	Market   models.MarketAssumptions `yaml:"market"`
	Counties catalog.CountyDefaults   `yaml:"counties"`
}

// NewConfig loads configuration from a .env file, environment variables and the
// optional assumptions file
func NewConfig() (*Config, error) {
	// A missing .env file is fine; the process environment still applies.
	_ = godotenv.Load()

	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		DBConn:    getEnv("DB_CONN", "host=localhost port=5432 user=test password=test dbname=bundongsan sslmode=disable"),
		LogLevel:  getEnv("LOG_LEVEL", "INFO"),
		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getEnvAsDuration("TOKEN_TTL", 24*time.Hour),

		RateFeedURL:  getEnv("RATE_FEED_URL", ""),
		RateSchedule: getEnv("RATE_SCHEDULE", "0 6 * * *"),

		RedisAddr: getEnv("REDIS_ADDR", ""),
		CacheTTL:  getEnvAsDuration("CACHE_TTL", 10*time.Minute),

		SMTPHost:       getEnv("SMTP_HOST", ""),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SenderEmail:    getEnv("SENDER_EMAIL", "noreply@bundongsan.local"),
		DigestSchedule: getEnv("DIGEST_SCHEDULE", "0 8 * * 1"),

		SeedCatalogPath: getEnv("SEED_CATALOG_PATH", "data/seed.json"),
		CoordinatesPath: getEnv("COORDINATES_PATH", ""),
		AssumptionsPath: getEnv("ASSUMPTIONS_PATH", ""),

		RateLimitRPS:   getEnvAsFloat64("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 20),
		CORSOrigins:    getEnvAsList("CORS_ORIGINS", []string{"*"}),

		Assumptions: models.DefaultMarketAssumptions(),
		Counties:    catalog.DefaultCountyDefaults(),
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.AssumptionsPath != "" {
		if err := cfg.loadAssumptions(cfg.AssumptionsPath); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// loadAssumptions overlays the YAML file onto the defaults. Keys absent from the
// file keep their default values.
func (c *Config) loadAssumptions(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read assumptions file: %w", err)
	}
	file := assumptionsFile{Market: c.Assumptions, Counties: c.Counties}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse assumptions file: %w", err)
	}
	if file.Market.SearchIterations <= 0 {
		return fmt.Errorf("search_iterations must be positive")
	}
	c.Assumptions = file.Market
	c.Counties = file.Counties
	return nil
}

// SMTPEnabled reports whether outgoing mail is configured.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvAsFloat64(key string, fallback float64) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	val, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return fallback
	}
	return val
}

func getEnvAsInt(key string, fallback int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	val, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback
	}
	return val
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	val, err := time.ParseDuration(valueStr)
	if err != nil {
		return fallback
	}
	return val
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(valueStr) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
