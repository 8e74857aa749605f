// Package config provides configuration loading for insightd.
package config

import (
	"fmt"
	"time"

	"github.com/itaysc/foozool-ai-support-sub000/internal/logging"
	"github.com/itaysc/foozool-ai-support-sub000/internal/telemetry"
)

// Config is the full daemon configuration.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Logging     logging.Config    `koanf:"logging"`
	Telemetry   telemetry.Config  `koanf:"telemetry"`
	Mongo       MongoConfig       `koanf:"mongo"`
	Intent      IntentConfig      `koanf:"intent"`
	Embeddings  EmbeddingsConfig  `koanf:"embeddings"`
	Qdrant      QdrantConfig      `koanf:"qdrant"`
	NATS        NATSConfig        `koanf:"nats"`
	Aggregation AggregationConfig `koanf:"aggregation"`
}

// ServerConfig controls the ops HTTP listener (metrics and health).
type ServerConfig struct {
	ListenAddr      string        `koanf:"listen_addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// MongoConfig controls the MongoDB connection.
type MongoConfig struct {
	URI            string        `koanf:"uri"`
	Database       string        `koanf:"database"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// IntentConfig controls the intent classification service client.
type IntentConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// EmbeddingsConfig controls the text embedding service client.
type EmbeddingsConfig struct {
	BaseURL string        `koanf:"base_url"`
	Model   string        `koanf:"model"`
	Timeout time.Duration `koanf:"timeout"`
}

// QdrantConfig controls the vector index connection.
type QdrantConfig struct {
	Host                    string        `koanf:"host"`
	Port                    int           `koanf:"port"`
	Collection              string        `koanf:"collection"`
	VectorSize              uint64        `koanf:"vector_size"`
	UseTLS                  bool          `koanf:"use_tls"`
	MaxRetries              int           `koanf:"max_retries"`
	RetryBackoff            time.Duration `koanf:"retry_backoff"`
	CircuitBreakerThreshold int           `koanf:"circuit_breaker_threshold"`
}

// NATSConfig controls the ticket ingestion subscription.
type NATSConfig struct {
	URL     string `koanf:"url"`
	Subject string `koanf:"subject"`
	Queue   string `koanf:"queue"`
}

// AggregationConfig controls the periodic insight aggregation sweep.
type AggregationConfig struct {
	Interval  time.Duration `koanf:"interval"`
	Window    time.Duration `koanf:"window"`
	BatchSize int64         `koanf:"batch_size"`
}

func applyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":9090"
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	cfg.Logging.ApplyDefaults()
	cfg.Telemetry.ApplyDefaults()
	if cfg.Mongo.URI == "" {
		cfg.Mongo.URI = "mongodb://localhost:27017"
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "insightd"
	}
	if cfg.Mongo.ConnectTimeout <= 0 {
		cfg.Mongo.ConnectTimeout = 10 * time.Second
	}
	if cfg.Intent.Timeout <= 0 {
		cfg.Intent.Timeout = 10 * time.Second
	}
	if cfg.Embeddings.Timeout <= 0 {
		cfg.Embeddings.Timeout = 30 * time.Second
	}
	if cfg.Qdrant.Host == "" {
		cfg.Qdrant.Host = "localhost"
	}
	if cfg.Qdrant.Port == 0 {
		cfg.Qdrant.Port = 6334
	}
	if cfg.Qdrant.Collection == "" {
		cfg.Qdrant.Collection = "tickets"
	}
	if cfg.Qdrant.VectorSize == 0 {
		cfg.Qdrant.VectorSize = 384
	}
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = "nats://localhost:4222"
	}
	if cfg.NATS.Subject == "" {
		cfg.NATS.Subject = "tickets.created"
	}
	if cfg.NATS.Queue == "" {
		cfg.NATS.Queue = "insightd"
	}
	if cfg.Aggregation.Interval <= 0 {
		cfg.Aggregation.Interval = time.Hour
	}
	if cfg.Aggregation.Window <= 0 {
		cfg.Aggregation.Window = 30 * 24 * time.Hour
	}
	if cfg.Aggregation.BatchSize <= 0 {
		cfg.Aggregation.BatchSize = 1000
	}
}

// Validate checks cross-field constraints after defaults are applied.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.Intent.BaseURL == "" {
		return fmt.Errorf("intent: base_url is required")
	}
	if c.Embeddings.BaseURL == "" {
		return fmt.Errorf("embeddings: base_url is required")
	}
	if c.Qdrant.Port <= 0 || c.Qdrant.Port > 65535 {
		return fmt.Errorf("qdrant: port %d out of range", c.Qdrant.Port)
	}
	return nil
}
