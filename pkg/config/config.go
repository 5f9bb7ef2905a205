package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"SecuroHub/pkg/cache"
	"SecuroHub/pkg/logger"
	"SecuroHub/pkg/util"
)

// config/config.go
type Config struct {
	Addr              string `env:"ADDR"`
	Mode              string `env:"MODE"`
	APIPrefix         string `env:"API_PREFIX"`
	AuthPrefix        string `env:"AUTH_PREFIX"`
	DBDriver          string `env:"DB_DRIVER"`
	DSN               string `env:"DSN"`
	Log               logger.LogConfig
	Cache             cache.Config
	SessionSecret     string `env:"SESSION_SECRET"`
	SessionExpireDays int    `env:"SESSION_EXPIRE_DAYS"`
	JWTSecret         string `env:"JWT_SECRET"`
	OpenAIApiKey      string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL     string `env:"OPENAI_BASE_URL"`
	OpenAIModel       string `env:"OPENAI_MODEL"`
	GeminiApiKey      string `env:"GEMINI_API_KEY"`
	GeminiBaseURL     string `env:"GEMINI_BASE_URL"`
	GeminiModel       string `env:"GEMINI_MODEL"`
	LLMTimeout        time.Duration
	ChatHistoryLimit  int    `env:"CHAT_HISTORY_LIMIT"`
	RateLimit         string `env:"RATE_LIMIT"`
	LanguageEnabled   bool   `env:"LANGUAGE_ENABLED"`
	GeoIPDBPath       string `env:"GEOIP_DB_PATH"`
	StatsTTL          time.Duration
	StatsSchedule     string `env:"STATS_REFRESH_SCHEDULE"`
	BackupSchedule    string `env:"BACKUP_SCHEDULE"`
	BackupPath        string `env:"BACKUP_PATH"`
}

var GlobalConfig *Config

func Load() error {
	// 1. load .env.<APP_ENV> and .env when present
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	if err := util.LoadEnv(env); err != nil {
		log.Printf("Failed to load .env file: %v", err)
	}

	// 2. build the global configuration
	GlobalConfig = FromEnv()
	return nil
}

// FromEnv reads the configuration from the process environment, filling
// in defaults for everything unset.
func FromEnv() *Config {
	return &Config{
		Addr:              util.GetEnvDefault("ADDR", ":8080"),
		Mode:              util.GetEnvDefault("MODE", "release"),
		APIPrefix:         util.GetEnvDefault("API_PREFIX", "/api"),
		AuthPrefix:        util.GetEnvDefault("AUTH_PREFIX", "/auth"),
		DBDriver:          util.GetEnvDefault("DB_DRIVER", "sqlite"),
		DSN:               util.GetEnv("DSN"),
		SessionSecret:     util.GetEnv("SESSION_SECRET"),
		SessionExpireDays: int(util.GetIntEnvDefault("SESSION_EXPIRE_DAYS", 1)),
		JWTSecret:         util.GetEnv("JWT_SECRET"),
		Log: logger.LogConfig{
			Level:      util.GetEnv("LOG_LEVEL"),
			Filename:   util.GetEnv("LOG_FILENAME"),
			MaxSize:    int(util.GetIntEnv("LOG_MAX_SIZE")),
			MaxAge:     int(util.GetIntEnv("LOG_MAX_AGE")),
			MaxBackups: int(util.GetIntEnv("LOG_MAX_BACKUPS")),
		},
		Cache: cache.Config{
			Type: util.GetEnvDefault("CACHE_TYPE", "gocache"),
			Redis: cache.RedisConfig{
				Addr:     util.GetEnvDefault("REDIS_ADDR", "localhost:6379"),
				Password: util.GetEnv("REDIS_PASSWORD"),
				DB:       int(util.GetIntEnv("REDIS_DB")),
				PoolSize: int(util.GetIntEnvDefault("REDIS_POOL_SIZE", 10)),
			},
			Local: cache.LocalConfig{
				DefaultExpiration: util.GetDurationEnv("LOCAL_CACHE_DEFAULT_EXPIRATION", 5*time.Minute),
				CleanupInterval:   util.GetDurationEnv("LOCAL_CACHE_CLEANUP_INTERVAL", 10*time.Minute),
			},
		},
		OpenAIApiKey:     util.GetEnv("OPENAI_API_KEY"),
		OpenAIBaseURL:    util.GetEnv("OPENAI_BASE_URL"),
		OpenAIModel:      util.GetEnvDefault("OPENAI_MODEL", "gpt-4"),
		GeminiApiKey:     util.GetEnv("GEMINI_API_KEY"),
		GeminiBaseURL:    util.GetEnv("GEMINI_BASE_URL"),
		GeminiModel:      util.GetEnvDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		LLMTimeout:       util.GetDurationEnv("LLM_TIMEOUT", 30*time.Second),
		ChatHistoryLimit: int(util.GetIntEnvDefault("CHAT_HISTORY_LIMIT", 50)),
		RateLimit:        util.GetEnvDefault("RATE_LIMIT", "120-M"),
		LanguageEnabled:  util.GetBoolEnv("LANGUAGE_ENABLED"),
		GeoIPDBPath:      util.GetEnv("GEOIP_DB_PATH"),
		StatsTTL:         util.GetDurationEnv("STATS_CACHE_TTL", 30*time.Second),
		StatsSchedule:    util.GetEnvDefault("STATS_REFRESH_SCHEDULE", "@every 1m"),
		BackupSchedule:   util.GetEnv("BACKUP_SCHEDULE"),
		BackupPath:       util.GetEnvDefault("BACKUP_PATH", "./backups"),
	}
}

// String returns a printable form of the config with secrets masked.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Addr: %s, Mode: %s, DB: %s, Cache: %s, OpenAI: %s (key %s), Gemini: %s (key %s), Session: ***, JWT: ***}",
		c.Addr, c.Mode, c.DBDriver, c.Cache.Type, c.OpenAIModel, mask(c.OpenAIApiKey), c.GeminiModel, mask(c.GeminiApiKey))
}

func mask(secret string) string {
	if secret == "" {
		return "unset"
	}
	return "set"
}
