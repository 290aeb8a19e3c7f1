package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds server configuration loaded from environment variables.
// An empty DatabaseURL or RedisURL disables the result archive or leaderboard.
type Config struct {
	Port              string
	DatabaseURL       string
	RedisURL          string
	JWTSecret         string
	AllowedOrigins    string
	MapFile           string
	TurnTimeout       time.Duration
	InactivityTimeout time.Duration
	BattleTimeout     time.Duration
	IntentRate        float64
	IntentBurst       int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:              envOrDefault("PORT", "8009"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		JWTSecret:         envOrDefault("JWT_SECRET", "dev-secret-change-me"),
		AllowedOrigins:    envOrDefault("ALLOWED_ORIGINS", "*"),
		MapFile:           os.Getenv("MAP_FILE"),
		TurnTimeout:       durationOrDefault("TURN_TIMEOUT", 60*time.Second),
		InactivityTimeout: durationOrDefault("INACTIVITY_TIMEOUT", 5*time.Minute),
		BattleTimeout:     durationOrDefault("BATTLE_TIMEOUT", 15*time.Second),
		IntentRate:        floatOrDefault("INTENT_RATE", 10),
		IntentBurst:       intOrDefault("INTENT_BURST", 20),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Warn().Str("key", key).Str("value", v).Dur("default", fallback).Msg("Invalid duration, using default")
		return fallback
	}
	return d
}

func intOrDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warn().Str("key", key).Str("value", v).Int("default", fallback).Msg("Invalid integer, using default")
		return fallback
	}
	return n
}

func floatOrDefault(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		log.Warn().Str("key", key).Str("value", v).Float64("default", fallback).Msg("Invalid number, using default")
		return fallback
	}
	return f
}
