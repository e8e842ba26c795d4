package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Telegram
	BotToken     string
	AdminUserIDs string

	// JWT (admin dashboard API)
	JWTSecret       string
	JWTAccessExpiry time.Duration

	// Admin bootstrap
	AdminEmails string

	// Server
	Port        string
	CORSOrigins string

	// Redis (optional; empty disables caching)
	RedisAddr string

	// Moderation
	DefaultDailyLimit int
	LogRetentionDays  int

	// Stats cache maintainer
	StatsRefreshInterval  time.Duration
	StatsRefreshThreshold int
}

func Load() *Config {
	// Best-effort .env load for local development.
	_ = godotenv.Load()

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "codm_bot"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		BotToken:     getEnv("BOT_TOKEN", ""),
		AdminUserIDs: getEnv("ADMIN_USER_IDS", ""),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTAccessExpiry: parseDuration(getEnv("JWT_ACCESS_EXPIRY", "1h")),

		AdminEmails: getEnv("ADMIN_EMAILS", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		RedisAddr: getEnv("REDIS_ADDR", ""),

		DefaultDailyLimit: parseInt(getEnv("DAILY_SUBMISSION_LIMIT", "5")),
		LogRetentionDays:  parseInt(getEnv("LOG_RETENTION_DAYS", "30")),

		StatsRefreshInterval:  parseDuration(getEnv("STATS_REFRESH_INTERVAL", "5m")),
		StatsRefreshThreshold: parseInt(getEnv("STATS_REFRESH_THRESHOLD", "25")),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Hour
	}
	return d
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
