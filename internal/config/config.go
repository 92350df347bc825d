package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT
	JWTSecret     string
	JWTExpiration time.Duration

	// CORS
	CORSAllowedOrigins []string

	// Combat resolver
	MistralAPIKey   string
	MistralBaseURL  string
	ResolverTimeout time.Duration

	// Rooms
	RoomTTL           time.Duration
	RoomSweepInterval time.Duration

	// Battle
	ActionTimeLimit time.Duration
	DisconnectGrace time.Duration

	// Storage
	StoragePath string
}

func Load() (*Config, error) {
	// .env 파일 로드 (있는 경우)
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:          getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiration:      parseDuration(getEnv("JWT_EXPIRATION", "24h"), 24*time.Hour),
		MistralAPIKey:      getEnv("MISTRAL_API_KEY", ""),
		MistralBaseURL:     getEnv("MISTRAL_BASE_URL", "https://api.mistral.ai"),
		ResolverTimeout:    parseDuration(getEnv("RESOLVER_TIMEOUT", "20s"), 20*time.Second),
		RoomTTL:            parseDuration(getEnv("ROOM_TTL", "2h"), 2*time.Hour),
		RoomSweepInterval:  parseDuration(getEnv("ROOM_SWEEP_INTERVAL", "5m"), 5*time.Minute),
		ActionTimeLimit:    parseDuration(getEnv("ACTION_TIME_LIMIT", "30s"), 30*time.Second),
		DisconnectGrace:    parseDuration(getEnv("DISCONNECT_GRACE", "15s"), 15*time.Second),
		StoragePath:        getEnv("STORAGE_PATH", "./storage"),
		CORSAllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultValue
	}
	return d
}
