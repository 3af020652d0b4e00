package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataDir  string
	DataGlob string

	PostgresDSN string

	// Kafka fan-out configuration (feature-flagged).
	KafkaBrokers   []string
	KafkaSinkTopic string
	KafkaEnabled   bool

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// MaxFailureRate is the fraction of selected records allowed to fail
	// before the run aborts without writing.
	MaxFailureRate float64

	// MinQualityScore is the completeness threshold below which an anomaly
	// finding is raised.
	MinQualityScore int
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	maxFailureRate, err := parseFailureRate()
	if err != nil {
		return nil, err
	}

	minQualityScore, err := parseMinQualityScore()
	if err != nil {
		return nil, err
	}

	kafkaBrokers := parseBrokers(envOrDefault("KAFKA_BROKERS", ""))
	kafkaEnabled := len(kafkaBrokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		DataDir:         envOrDefault("DATA_DIR", "data"),
		DataGlob:        envOrDefault("DATA_GLOB", "*.csv"),
		PostgresDSN:     os.Getenv("POSTGRES_DSN"),
		KafkaBrokers:    kafkaBrokers,
		KafkaSinkTopic:  envOrDefault("KAFKA_SINK_TOPIC", "normalized-facilities"),
		KafkaEnabled:    kafkaEnabled,
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		MaxFailureRate:  maxFailureRate,
		MinQualityScore: minQualityScore,
	}

	if cfg.DataDir == "" {
		return nil, errors.New("DATA_DIR is required")
	}
	if cfg.PostgresDSN == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required when Kafka is enabled")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseFailureRate() (float64, error) {
	s := envOrDefault("MAX_FAILURE_RATE", "0.1")
	rate, err := strconv.ParseFloat(s, 64)
	if err != nil || rate < 0 || rate > 1 {
		return 0, errors.New("invalid MAX_FAILURE_RATE: must be a fraction in [0,1]")
	}
	return rate, nil
}

func parseMinQualityScore() (int, error) {
	s := envOrDefault("MIN_QUALITY_SCORE", "30")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 100 {
		return 0, errors.New("invalid MIN_QUALITY_SCORE: must be an integer in [0,100]")
	}
	return n, nil
}
