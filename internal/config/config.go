package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Transport and archive driver selections.
const (
	TransportKafka = "kafka"
	TransportNATS  = "nats"

	ArchiveNone     = "none"
	ArchiveSQLite   = "sqlite"
	ArchivePostgres = "postgres"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	SourceTransport string

	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string

	NATSURL     string
	NATSSubject string
	NATSQueue   string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// PressureTopHPa is the upper cutoff of the surface mask in hPa.
	PressureTopHPa float64

	ArchiveDriver     string
	ArchiveSQLitePath string
	ArchivePostgres   string // DSN
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	flushInterval, err := parsePositiveDuration("BATCH_FLUSH_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}

	batchSize, err := parseBatchSize()
	if err != nil {
		return nil, err
	}

	pressureTop, err := parsePressureTop()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		SourceTransport: strings.ToLower(envOrDefault("SOURCE_TRANSPORT", TransportKafka)),

		KafkaBrokers:     parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic: envOrDefault("KAFKA_SOURCE_TOPIC", "raw-sounding-granules"),
		KafkaSinkTopic:   envOrDefault("KAFKA_SINK_TOPIC", "sounding-skewt-products"),
		KafkaGroupID:     envOrDefault("KAFKA_GROUP_ID", "sounding-skewt"),

		NATSURL:     envOrDefault("NATS_URL", "nats://localhost:4222"),
		NATSSubject: envOrDefault("NATS_SUBJECT", "soundings.granules"),
		NATSQueue:   os.Getenv("NATS_QUEUE"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
		PressureTopHPa:     pressureTop,

		ArchiveDriver:     strings.ToLower(envOrDefault("ARCHIVE_DRIVER", ArchiveNone)),
		ArchiveSQLitePath: envOrDefault("ARCHIVE_SQLITE_PATH", "soundings.db"),
		ArchivePostgres:   os.Getenv("ARCHIVE_POSTGRES_DSN"),
	}

	switch cfg.SourceTransport {
	case TransportKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSourceTopic == "" {
			return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
		}
	case TransportNATS:
		if cfg.NATSURL == "" {
			return nil, errors.New("NATS_URL is required")
		}
		if cfg.NATSSubject == "" {
			return nil, errors.New("NATS_SUBJECT is required")
		}
	default:
		return nil, fmt.Errorf("invalid SOURCE_TRANSPORT %q: must be kafka or nats", cfg.SourceTransport)
	}

	// The sink is always Kafka, whichever source transport is selected.
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}

	switch cfg.ArchiveDriver {
	case ArchiveNone:
	case ArchiveSQLite:
		if cfg.ArchiveSQLitePath == "" {
			return nil, errors.New("ARCHIVE_SQLITE_PATH is required when ARCHIVE_DRIVER=sqlite")
		}
	case ArchivePostgres:
		if cfg.ArchivePostgres == "" {
			return nil, errors.New("ARCHIVE_POSTGRES_DSN is required when ARCHIVE_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("invalid ARCHIVE_DRIVER %q: must be none, sqlite, or postgres", cfg.ArchiveDriver)
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
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func parsePositiveDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func parseBatchSize() (int, error) {
	s := os.Getenv("BATCH_SIZE")
	if s == "" {
		return 10, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 1000 {
		return 0, errors.New("invalid BATCH_SIZE: must be an integer in [1, 1000]")
	}
	return n, nil
}

func parsePressureTop() (float64, error) {
	s := os.Getenv("PRESSURE_TOP_HPA")
	if s == "" {
		return 100, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 || v >= 1100 {
		return 0, errors.New("invalid PRESSURE_TOP_HPA: must be in (0, 1100)")
	}
	return v, nil
}
