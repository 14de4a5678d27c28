package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/alimgiray/contribrank/internal/models"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Pipeline PipelineConfig
	LogLevel string
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

type StorageConfig struct {
	// DataDir is the root of the per-period artifact trees
	DataDir string
	// DBPath is the SQLite file holding the run ledger and score history
	DBPath string
}

type PipelineConfig struct {
	// ScoringFile is an optional YAML file overriding scoring weights
	ScoringFile        string
	SummaryConcurrency int
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 15),
		},
		Storage: StorageConfig{
			DataDir: getEnv("DATA_DIR", "./data"),
			DBPath:  getEnv("DB_PATH", "./contribrank.db"),
		},
		Pipeline: PipelineConfig{
			ScoringFile:        getEnv("SCORING_CONFIG", ""),
			SummaryConcurrency: getEnvAsInt("SUMMARY_CONCURRENCY", 4),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return nil
}

// LoadScoring returns the default scoring weights overlaid with the YAML
// file at path. An empty path yields the defaults.
func LoadScoring(path string) (models.ScoringConfig, error) {
	cfg := models.DefaultScoringConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read scoring config %s: %w", path, err)
	}
	return ParseScoring(data)
}

// ParseScoring overlays YAML data onto the default scoring weights. Fields
// absent from data keep their default values.
func ParseScoring(data []byte) (models.ScoringConfig, error) {
	cfg := models.DefaultScoringConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse scoring config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
