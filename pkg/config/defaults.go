// Package config provides centralized default values for FitMatch
package config

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		if err := godotenv.Load(); err == nil {
			log.Println("Loading configuration overrides from .env file...")
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Database
	DBDriver                 string
	DBPath                   string
	DBURL                    string
	DBAuthToken              string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	SlowQueryThreshold       time.Duration

	// Auth
	JWTSecret     string
	AESKey        string
	TokenLifetime time.Duration
	AdminAPIKey   string

	// AI Generator
	GeminiAPIKey       string
	GeminiModel        string
	GeminiEndpoint     string
	GeminiTimeout      time.Duration
	GeminiTemperature  float64
	GeminiMaxOutTokens int

	// AI Response Cache
	CacheMaxAge           time.Duration
	CacheEvictInterval    time.Duration
	CacheEvictMaxAge      time.Duration
	CacheEvictUnusedOnly  bool
	CacheStrategy         string
	CacheUserPrefixLength int
	CacheWarmingEnabled   bool
	CacheWarmingTopN      int

	// Media
	MediaBasePath string

	// Email
	AnalysisEmailEnabled bool
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Database
	DBDriver = getEnvString("DB_DRIVER", "sqlite3")
	DBPath = getEnvString("DB_PATH", "fitmatch.db")
	DBURL = getEnvString("DB_URL", "")
	DBAuthToken = getEnvString("DB_AUTH_TOKEN", "")
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 100*time.Millisecond)

	// Auth
	JWTSecret = getEnvString("JWT_SECRET", "")
	AESKey = getEnvString("AES_KEY", "")
	TokenLifetime = time.Duration(getEnvInt("TOKEN_LIFETIME_HOURS", 720)) * time.Hour
	AdminAPIKey = getEnvString("ADMIN_API_KEY", "")

	// AI Generator
	GeminiAPIKey = getEnvString("GEMINI_API_KEY", "")
	GeminiModel = getEnvString("GEMINI_MODEL", "gemini-1.5-flash")
	GeminiEndpoint = getEnvString("GEMINI_ENDPOINT", "https://generativelanguage.googleapis.com/v1beta")
	GeminiTimeout = getEnvDuration("GEMINI_TIMEOUT", 30*time.Second)
	GeminiTemperature = float64(getEnvInt("GEMINI_TEMPERATURE_PCT", 70)) / 100.0
	GeminiMaxOutTokens = getEnvInt("GEMINI_MAX_OUTPUT_TOKENS", 2048)

	// AI Response Cache
	CacheMaxAge = time.Duration(getEnvInt("AI_CACHE_MAX_AGE_HOURS", 24)) * time.Hour
	CacheEvictInterval = time.Duration(getEnvInt("AI_CACHE_EVICT_INTERVAL_MINUTES", 60)) * time.Minute
	CacheEvictMaxAge = time.Duration(getEnvInt("AI_CACHE_EVICT_MAX_AGE_HOURS", 72)) * time.Hour
	CacheEvictUnusedOnly = getEnvBool("AI_CACHE_EVICT_UNUSED_ONLY", false)
	CacheStrategy = getEnvString("AI_CACHE_STRATEGY", "balanced")
	CacheUserPrefixLength = getEnvInt("AI_CACHE_USER_PREFIX_LENGTH", 8)
	CacheWarmingEnabled = getEnvBool("AI_CACHE_WARMING_ENABLED", true)
	CacheWarmingTopN = getEnvInt("AI_CACHE_WARMING_TOP_N", 5)

	// Media
	MediaBasePath = getEnvString("MEDIA_BASE_PATH", "media")

	// Email
	AnalysisEmailEnabled = getEnvBool("ANALYSIS_EMAIL_ENABLED", false)
}
