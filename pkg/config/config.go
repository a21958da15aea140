package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-driven settings for the analysis core.
type Config struct {
	Port string

	// Market data
	MarketBaseURL  string
	MarketTestnet  bool
	DefaultSymbols []string
	CacheTTL       time.Duration

	// Database
	DBPath string

	// Auth
	JWTSecret    string
	APIAccessKey string

	// Analysis defaults
	LearningRate   float64
	MinConfidence  float64
	InitialCapital float64

	// Indicator profiles
	ProfilePath string
}

// Load reads environment variables (optionally via .env) into Config.
func Load() (*Config, error) {
	// Ignore error so the app still starts when .env is missing.
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8080"),
		MarketBaseURL:  getEnv("MARKET_BASE_URL", ""),
		MarketTestnet:  getEnv("MARKET_TESTNET", "false") == "true",
		DefaultSymbols: splitAndTrim(getEnv("DEFAULT_SYMBOLS", "BTCUSDT,ETHUSDT")),
		CacheTTL:       time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		DBPath:         getEnv("DB_PATH", "./data/analysis.db"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret"),
		APIAccessKey:   os.Getenv("API_ACCESS_KEY"),
		LearningRate:   getEnvFloat("LEARNING_RATE", 0.1),
		MinConfidence:  getEnvFloat("MIN_CONFIDENCE", 60),
		InitialCapital: getEnvFloat("INITIAL_CAPITAL", 10000),
		ProfilePath:    getEnv("PROFILE_PATH", ""),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitAndTrim(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
