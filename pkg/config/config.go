// Package config loads application configuration from YAML files with
// environment-variable overrides. It provides typed structs for every
// subsystem (Store, Postgres, Redis, Kafka, Indexer, Search, Synonyms, etc.).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Redis      RedisConfig      `yaml:"redis"`
	Indexer    IndexerConfig    `yaml:"indexer"`
	Search     SearchConfig     `yaml:"search"`
	Synonyms   SynonymConfig    `yaml:"synonyms"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	// Driver is one of "postgres", "sqlite" or "memory".
	Driver     string `yaml:"driver"`
	SQLitePath string `yaml:"sqlitePath"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Enabled       bool        `yaml:"enabled"`
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	IndexComplete string `yaml:"indexComplete"`
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// IndexerConfig controls corpus location and the worker pool.
type IndexerConfig struct {
	CorpusDir     string `yaml:"corpusDir"`
	StopWordsFile string `yaml:"stopWordsFile"`
	Workers       int    `yaml:"workers"`
	LockDir       string `yaml:"lockDir"`
}

// SearchConfig controls keyword weighting, batch files and result limits.
type SearchConfig struct {
	QueryFile     string `yaml:"queryFile"`
	ResultsDir    string `yaml:"resultsDir"`
	Expand        bool   `yaml:"expand"`
	LiteralWeight int    `yaml:"literalWeight"`
	SynonymWeight int    `yaml:"synonymWeight"`
	DefaultLimit  int    `yaml:"defaultLimit"`
	MaxResults    int    `yaml:"maxResults"`
	CacheSize     int    `yaml:"cacheSize"`
}

// SynonymConfig points at the SPARQL endpoint used for query expansion.
type SynonymConfig struct {
	Endpoint         string        `yaml:"endpoint"`
	Language         string        `yaml:"language"`
	Timeout          time.Duration `yaml:"timeout"`
	MaxRetries       int           `yaml:"maxRetries"`
	FailureThreshold int           `yaml:"failureThreshold"`
	ResetTimeout     time.Duration `yaml:"resetTimeout"`
}

// EvaluationConfig locates relevance judgments and produced rankings.
type EvaluationConfig struct {
	QrelsDir   string `yaml:"qrelsDir"`
	ResultsDir string `yaml:"resultsDir"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. Missing values keep their defaults.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "postgres", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Indexer.Workers < 1 {
		return fmt.Errorf("indexer workers must be positive, got %d", c.Indexer.Workers)
	}
	if c.Search.LiteralWeight < 0 || c.Search.SynonymWeight < 0 {
		return fmt.Errorf("keyword weights must not be negative")
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RequestTimeout:  10 * time.Second,
		},
		Store: StoreConfig{
			Driver:     "sqlite",
			SQLitePath: "data/index.db",
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "corpusir",
			User:            "corpusir",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "corpusir-searcher",
			Topics: KafkaTopics{
				IndexComplete: "index.complete",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Indexer: IndexerConfig{
			CorpusDir:     "corpus",
			StopWordsFile: "stopwords.txt",
			Workers:       20,
			LockDir:       "data",
		},
		Search: SearchConfig{
			QueryFile:     "queries.txt",
			ResultsDir:    "results",
			LiteralWeight: 5,
			SynonymWeight: 1,
			DefaultLimit:  25,
			MaxResults:    1000,
			CacheSize:     1024,
		},
		Synonyms: SynonymConfig{
			Endpoint:         "http://dbpedia.org/sparql",
			Language:         "fr",
			Timeout:          5 * time.Second,
			MaxRetries:       2,
			FailureThreshold: 5,
			ResetTimeout:     30 * time.Second,
		},
		Evaluation: EvaluationConfig{
			QrelsDir:   "qrels",
			ResultsDir: "results",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads IR_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("IR_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("IR_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("IR_STORE_SQLITE_PATH"); v != "" {
		cfg.Store.SQLitePath = v
	}
	if v := os.Getenv("IR_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("IR_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("IR_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("IR_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("IR_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("IR_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("IR_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
		cfg.Kafka.Enabled = true
	}
	if v := os.Getenv("IR_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("IR_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("IR_INDEXER_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Indexer.Workers = n
		}
	}
	if v := os.Getenv("IR_SYNONYMS_ENDPOINT"); v != "" {
		cfg.Synonyms.Endpoint = v
	}
	if v := os.Getenv("IR_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("IR_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
