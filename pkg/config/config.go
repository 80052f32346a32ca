package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SourceConfig describes one external market-data endpoint.
type SourceConfig struct {
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind"` // semo or eirgrid
	URL    string `yaml:"url"`
	Report string `yaml:"report"` // SEMO dynamic report code, e.g. BM-026
	Area   string `yaml:"area"`   // EirGrid graph-data area, e.g. demandactual
	Region string `yaml:"region"`
}

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Store struct {
		Type string `yaml:"type"` // clickhouse or memory
	} `yaml:"store"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		ActualsTopic string   `yaml:"actuals_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Consumer     struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Ingest struct {
		Sources      []SourceConfig `yaml:"sources"`
		FetchTimeout time.Duration  `yaml:"fetch_timeout"` // per-endpoint request budget
		RunTimeout   time.Duration  `yaml:"run_timeout"`   // whole-run deadline, 0 = none
		Interval     time.Duration  `yaml:"interval"`      // in-process scheduler, 0 = external
	} `yaml:"ingest"`
	Forecast struct {
		ModelURL     string        `yaml:"model_url"`
		ModelName    string        `yaml:"model_name"`
		HorizonHours int           `yaml:"horizon_hours"`
		Timeout      time.Duration `yaml:"timeout"`
		Fallback     bool          `yaml:"fallback"`
	} `yaml:"forecast"`
	Training struct {
		LauncherURL  string        `yaml:"launcher_url"`
		PollInterval time.Duration `yaml:"poll_interval"`
	} `yaml:"training"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("STORE_TYPE"); v != "" {
		c.Store.Type = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("MODEL_URL"); v != "" {
		c.Forecast.ModelURL = v
	}
	if v := os.Getenv("LAUNCHER_URL"); v != "" {
		c.Training.LauncherURL = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Ingest.FetchTimeout <= 0 {
		c.Ingest.FetchTimeout = 10 * time.Second
	}
	if c.Forecast.HorizonHours <= 0 {
		c.Forecast.HorizonHours = 24
	}
	if c.Forecast.ModelName == "" {
		c.Forecast.ModelName = "demand-lstm-v1"
	}
	if c.Training.PollInterval <= 0 {
		c.Training.PollInterval = 30 * time.Second
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "bm"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Store.Type == "" {
		return fmt.Errorf("store.type is required")
	}
	if c.Store.Type != "clickhouse" && c.Store.Type != "memory" {
		return fmt.Errorf("store.type must be 'clickhouse' or 'memory', got '%s'", c.Store.Type)
	}
	if len(c.Ingest.Sources) == 0 {
		return fmt.Errorf("ingest.sources cannot be empty")
	}
	seen := make(map[string]bool, len(c.Ingest.Sources))
	for _, s := range c.Ingest.Sources {
		if s.Name == "" {
			return fmt.Errorf("ingest source name is required")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate ingest source '%s'", s.Name)
		}
		seen[s.Name] = true
		if s.Kind != "semo" && s.Kind != "eirgrid" {
			return fmt.Errorf("ingest source '%s': kind must be 'semo' or 'eirgrid', got '%s'", s.Name, s.Kind)
		}
		if s.URL == "" {
			return fmt.Errorf("ingest source '%s': url is required", s.Name)
		}
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
		}
		if c.Kafka.ActualsTopic == "" {
			return fmt.Errorf("kafka.actuals_topic is required when kafka is enabled")
		}
	}
	return nil
}
