// Package config loads service settings from environment variables, plus the
// optional YAML network-vocabulary file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrInvalidShutdownTimeout = errors.New("invalid SHUTDOWN_TIMEOUT")
	ErrInvalidFetchTimeout    = errors.New("invalid FETCH_TIMEOUT")
	ErrInvalidSnapshotTTL     = errors.New("invalid SNAPSHOT_TTL")
	ErrKafkaBrokersRequired   = errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	ErrKafkaTopicRequired     = errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is empty")
	ErrEmptyVocabulary        = errors.New("vocabulary file lists no network keywords")
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Published-sheet refresh source. An empty URL runs the service in
	// upload-only mode.
	SheetURL     string
	FetchTimeout time.Duration
	SnapshotTTL  time.Duration

	// Optional YAML file extending the ad-network classification vocabulary.
	VocabularyFile string

	// Optional Kafka sink for normalized records.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s", ErrInvalidShutdownTimeout)
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "10s", ErrInvalidFetchTimeout)
	if err != nil {
		return nil, err
	}
	snapshotTTL, err := parseDuration("SNAPSHOT_TTL", "5m", ErrInvalidSnapshotTTL)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		SheetURL:     os.Getenv("SHEET_URL"),
		FetchTimeout: fetchTimeout,
		SnapshotTTL:  snapshotTTL,

		VocabularyFile: os.Getenv("VOCABULARY_FILE"),

		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:   parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "normalized-crash-reports"),
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, ErrKafkaBrokersRequired
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, ErrKafkaTopicRequired
		}
	}

	return cfg, nil
}

// vocabularyFile is the YAML shape of the network-vocabulary override.
type vocabularyFile struct {
	NetworkKeywords []string `yaml:"network_keywords"`
}

// LoadNetworkVocabulary reads the ad-network keyword list from a YAML file.
func LoadNetworkVocabulary(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary file: %w", err)
	}

	var vf vocabularyFile
	if err := yaml.Unmarshal(data, &vf); err != nil {
		return nil, fmt.Errorf("parse vocabulary file: %w", err)
	}
	if len(vf.NetworkKeywords) == 0 {
		return nil, ErrEmptyVocabulary
	}
	return vf.NetworkKeywords, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string, invalid error) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, invalid
	}
	return d, nil
}

func parseBrokers(raw string) []string {
	var brokers []string
	for b := range strings.SplitSeq(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
