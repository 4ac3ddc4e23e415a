package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Port    string
	BaseURL string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	// Bcrypt hash of the admin password. Empty disables the admin surface.
	AdminPasswordHash string
	JWTSecret         string
}

// SchedulerConfig carries the timing knobs of the intervention scheduler.
// All durations are wall-clock; day boundaries are computed in local time.
type SchedulerConfig struct {
	TickInterval    time.Duration
	FlushInterval   time.Duration
	BaselineMinTime time.Duration
	RetentionDays   int
	HistoryCap      int
	OutboxCap       int
	ListenerTTL     time.Duration
	TrackedSites    []string
}

type Config struct {
	Server      ServerConfig
	DB          DatabaseConfig
	Redis       RedisConfig
	Auth        AuthConfig
	Scheduler   SchedulerConfig
	StoreDriver string
	Env         string
}

func LoadConfig() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	return &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			BaseURL: getEnv("BASE_URL", "http://localhost:8080"),
		},
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "focusguard"),
			Password: getEnv("DB_PASS", "focusguard"),
			DBName:   getEnv("DB_NAME", "focus_guard"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASS", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
			JWTSecret:         getEnv("JWT_SECRET", "focus-guard-dev-secret"),
		},
		Scheduler: SchedulerConfig{
			TickInterval:    getEnvDuration("SCHEDULER_TICK_INTERVAL", 30*time.Second),
			FlushInterval:   getEnvDuration("SCHEDULER_FLUSH_INTERVAL", 60*time.Second),
			BaselineMinTime: getEnvDuration("SCHEDULER_BASELINE_MIN_TIME", 15*time.Minute),
			RetentionDays:   getEnvInt("SCHEDULER_RETENTION_DAYS", 30),
			HistoryCap:      getEnvInt("SCHEDULER_GOAL_HISTORY_CAP", 100),
			OutboxCap:       getEnvInt("SCHEDULER_OUTBOX_CAP", 200),
			ListenerTTL:     getEnvDuration("SCHEDULER_LISTENER_TTL", 90*time.Second),
			TrackedSites:    getEnvList("TRACKED_SITES", "*.youtube.com,*.reddit.com,*.twitter.com,*.x.com,*.tiktok.com,*.instagram.com"),
		},
		StoreDriver: getEnv("STORE_DRIVER", "postgres"),
		Env:         getEnv("ENV", "prod"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid integer for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid duration for %s: %q, using default %s", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}
