// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App            AppConfig            `mapstructure:"app"`
	Server         ServerConfig         `mapstructure:"server"`
	Classification ClassificationConfig `mapstructure:"classification"`
	Oracle         OracleConfig         `mapstructure:"oracle"`
	Retrieval      RetrievalConfig      `mapstructure:"retrieval"`
	Review         ReviewConfig         `mapstructure:"review"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Notifications  NotificationConfig   `mapstructure:"notifications"`
	Logging        LoggingConfig        `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ClassificationConfig drives the evidence aggregator and confidence policy.
type ClassificationConfig struct {
	ConfidenceThreshold   float64 `mapstructure:"confidence_threshold"`
	Workers               int     `mapstructure:"workers"`
	AgreementBonus        float64 `mapstructure:"agreement_bonus"`
	DisagreementPenalty   float64 `mapstructure:"disagreement_penalty"`
	RetrievalFloor        float64 `mapstructure:"retrieval_floor"`
	MaxFallbackConfidence float64 `mapstructure:"max_fallback_confidence"`
}

// OracleConfig holds settings for the external judgment capability.
type OracleConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	MaxRetries int    `mapstructure:"max_retries"`
}

// RetrievalConfig holds settings for the nearest-neighbor index.
type RetrievalConfig struct {
	Backend      string `mapstructure:"backend"` // memory | elasticsearch
	TopK         int    `mapstructure:"top_k"`
	Index        string `mapstructure:"index"`         // elasticsearch index name
	SeedFromDB   bool   `mapstructure:"seed_from_db"`  // load corpus rows from postgres
	SeedBuiltins bool   `mapstructure:"seed_builtins"` // load the built-in labeled corpus
}

// ReviewConfig holds settings for the review session store.
type ReviewConfig struct {
	Backend    string `mapstructure:"backend"`     // memory | redis
	TTLMinutes int    `mapstructure:"ttl_minutes"` // session expiry
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`

	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

// NotificationConfig holds settings for reviewer notifications sent when
// a review session opens.
type NotificationConfig struct {
	Email struct {
		Enabled   bool     `mapstructure:"enabled"`
		FromEmail string   `mapstructure:"from_email"`
		Reviewers []string `mapstructure:"reviewers"`
	} `mapstructure:"email"`
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
