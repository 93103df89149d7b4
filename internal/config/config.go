package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	APIPort string
	DataDir string
	DBPath  string

	LLMBaseURL        string
	LLMAPIKey         string
	LLMModelName      string
	LLMExpansionModel string
	LLMTemperature    float32

	EmbeddingBaseURL   string
	EmbeddingAPIKey    string
	EmbeddingModelName string

	QdrantURL        string
	QdrantCollection string
	QdrantVectorSize int

	// Retrieval tuning.
	MatchThreshold        float32
	MatchCount            int
	ExpansionHistoryTurns int
	AnswerHistoryTurns    int
	HydrateConcurrency    int
	GenerationTimeout     time.Duration

	AIRateLimit float64
	AIRateBurst int

	ImportDir   string
	ImportWatch bool

	LogLevel  string
	LogFormat string
	LogFile   string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the numeric ones.
// If a .env file exists in the current directory or a parent, it is loaded first.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	llmBaseURL := getEnv("LLM_BASE_URL", "https://api.openai.com/v1")
	llmAPIKey := getEnv("LLM_API_KEY", "")
	llmModelName := getEnv("LLM_MODEL", "gpt-4o-mini")
	dataDir := getEnv("SHARERAPY_DATA_DIR", "./data")

	cfg := &Config{
		APIPort:            getEnv("API_PORT", "9000"),
		DataDir:            dataDir,
		DBPath:             filepath.Join(dataDir, "sharerapy.db"),
		LLMBaseURL:         llmBaseURL,
		LLMAPIKey:          llmAPIKey,
		LLMModelName:       llmModelName,
		LLMExpansionModel:  getEnv("LLM_EXPANSION_MODEL", llmModelName),
		EmbeddingBaseURL:   getEnv("EMBEDDINGS_BASE_URL", llmBaseURL),
		EmbeddingAPIKey:    getEnv("EMBEDDINGS_API_KEY", llmAPIKey),
		EmbeddingModelName: getEnv("EMBEDDINGS_MODEL", "text-embedding-3-large"),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "report_chunks"),
		ImportDir:          getEnv("IMPORT_DIR", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		LogFile:            getEnv("LOG_FILE", ""),
	}

	if cfg.LLMTemperature, err = getFloat32("LLM_TEMPERATURE", 0.2); err != nil {
		return nil, err
	}
	if cfg.QdrantVectorSize, err = getPositiveInt("QDRANT_VECTOR_SIZE", 3072); err != nil {
		return nil, err
	}
	if cfg.MatchThreshold, err = getFloat32("MATCH_THRESHOLD", 0.1); err != nil {
		return nil, err
	}
	if cfg.MatchThreshold < 0 || cfg.MatchThreshold > 1 {
		return nil, fmt.Errorf("MATCH_THRESHOLD must be between 0 and 1")
	}
	if cfg.MatchCount, err = getPositiveInt("MATCH_COUNT", 10); err != nil {
		return nil, err
	}
	if cfg.ExpansionHistoryTurns, err = getPositiveInt("EXPANSION_HISTORY_TURNS", 4); err != nil {
		return nil, err
	}
	if cfg.AnswerHistoryTurns, err = getPositiveInt("ANSWER_HISTORY_TURNS", 6); err != nil {
		return nil, err
	}
	if cfg.HydrateConcurrency, err = getPositiveInt("HYDRATE_CONCURRENCY", 8); err != nil {
		return nil, err
	}

	timeout := getEnv("GENERATION_TIMEOUT", "2m")
	cfg.GenerationTimeout, err = time.ParseDuration(timeout)
	if err != nil {
		return nil, fmt.Errorf("GENERATION_TIMEOUT must be a valid duration: %w", err)
	}

	rateLimit := getEnv("AI_RATE_LIMIT", "2")
	cfg.AIRateLimit, err = strconv.ParseFloat(rateLimit, 64)
	if err != nil || cfg.AIRateLimit < 0 {
		return nil, fmt.Errorf("AI_RATE_LIMIT must be a non-negative number")
	}
	if cfg.AIRateBurst, err = getPositiveInt("AI_RATE_BURST", 5); err != nil {
		return nil, err
	}

	watch := getEnv("IMPORT_WATCH", "false")
	cfg.ImportWatch, err = strconv.ParseBool(watch)
	if err != nil {
		return nil, fmt.Errorf("IMPORT_WATCH must be a boolean: %w", err)
	}
	if cfg.ImportWatch && cfg.ImportDir == "" {
		return nil, fmt.Errorf("IMPORT_DIR is required when IMPORT_WATCH is enabled")
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getPositiveInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return v, nil
}

func getFloat32(key string, defaultValue float32) (float32, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return float32(v), nil
}
