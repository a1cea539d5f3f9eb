// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like ORACLE_BASE_URL
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment overlay, ignored if not present.
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the working directory or any parent that
// contains one, so the binary and tests behave the same.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "menu-classifier"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8001
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 30000
	}

	if cfg.Classification.ConfidenceThreshold == 0 {
		cfg.Classification.ConfidenceThreshold = 0.7
	}
	if cfg.Classification.Workers == 0 {
		cfg.Classification.Workers = 4
	}
	if cfg.Classification.AgreementBonus == 0 {
		cfg.Classification.AgreementBonus = 0.1
	}
	if cfg.Classification.DisagreementPenalty == 0 {
		cfg.Classification.DisagreementPenalty = 0.1
	}
	if cfg.Classification.RetrievalFloor == 0 {
		cfg.Classification.RetrievalFloor = 0.5
	}
	if cfg.Classification.MaxFallbackConfidence == 0 {
		cfg.Classification.MaxFallbackConfidence = 0.85
	}

	if cfg.Oracle.Timeout == 0 {
		cfg.Oracle.Timeout = 5000
	}
	if cfg.Oracle.MaxRetries == 0 {
		cfg.Oracle.MaxRetries = 1
	}

	if cfg.Retrieval.Backend == "" {
		cfg.Retrieval.Backend = "memory"
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Retrieval.Index == "" {
		cfg.Retrieval.Index = "labeled_dishes"
	}

	if cfg.Review.Backend == "" {
		cfg.Review.Backend = "memory"
	}
	if cfg.Review.TTLMinutes == 0 {
		cfg.Review.TTLMinutes = 60
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Classification.ConfidenceThreshold < 0 || cfg.Classification.ConfidenceThreshold > 1 {
		return fmt.Errorf("classification.confidence_threshold must be in [0,1], got %f",
			cfg.Classification.ConfidenceThreshold)
	}
	if cfg.Classification.Workers < 1 {
		return fmt.Errorf("classification.workers must be >= 1, got %d", cfg.Classification.Workers)
	}
	if cfg.Retrieval.TopK < 0 {
		return fmt.Errorf("retrieval.top_k must be >= 0, got %d", cfg.Retrieval.TopK)
	}
	switch cfg.Retrieval.Backend {
	case "memory", "elasticsearch":
	default:
		return fmt.Errorf("retrieval.backend must be memory or elasticsearch, got %q", cfg.Retrieval.Backend)
	}
	switch cfg.Review.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("review.backend must be memory or redis, got %q", cfg.Review.Backend)
	}
	if cfg.Review.Backend == "redis" && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when review.backend is redis")
	}
	return nil
}
