package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete pipeline configuration.
type Config struct {
	Logging  LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Sessions []Session     `yaml:"sessions" envconfig:"-" validate:"required,dive"`
	Segments []string      `yaml:"segments" envconfig:"-" validate:"required,min=1"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/pipeline.log"`
}

// PathsConfig contains the datastore layout configuration.
type PathsConfig struct {
	DatastoreDir string `yaml:"datastore_dir" envconfig:"DATASTORE_DIR" default:"datastore" validate:"required"`
	TablesDir    string `yaml:"tables_dir" envconfig:"TABLES_DIR" default:"tables" validate:"required"`
	PlotsDir     string `yaml:"plots_dir" envconfig:"PLOTS_DIR" default:"plots" validate:"required"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// Load loads configuration from environment variables and an optional YAML
// file (MARKETRUNS_CONFIG_FILE, default config.yaml). Environment variables
// take precedence over file values.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("MARKETRUNS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := os.Getenv("MARKETRUNS_CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}
	if _, err := os.Stat(configFile); err == nil {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileCfg, cfg)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeConfigs overlays env values on top of file values. Env wins whenever
// it differs from the envconfig defaults.
func mergeConfigs(file, env Config) Config {
	merged := file
	if env.Logging.Level != "" {
		merged.Logging.Level = env.Logging.Level
	}
	if env.Logging.Output != "" {
		merged.Logging.Output = env.Logging.Output
	}
	if env.Logging.FilePath != "" {
		merged.Logging.FilePath = env.Logging.FilePath
	}
	if env.Paths.DatastoreDir != "" {
		merged.Paths.DatastoreDir = env.Paths.DatastoreDir
	}
	if env.Paths.TablesDir != "" {
		merged.Paths.TablesDir = env.Paths.TablesDir
	}
	if env.Paths.PlotsDir != "" {
		merged.Paths.PlotsDir = env.Paths.PlotsDir
	}
	if env.Paths.LogsDir != "" {
		merged.Paths.LogsDir = env.Paths.LogsDir
	}
	return merged
}

// applyDefaults fills the session registry and segment list when neither the
// environment nor the config file provided them.
func (c *Config) applyDefaults() {
	if len(c.Sessions) == 0 {
		c.Sessions = DefaultSessions
	}
	if len(c.Segments) == 0 {
		c.Segments = SegmentNames
	}
}

// Validate checks the configuration with struct-level validation rules.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Treatment returns the treatment assignment for a session ID, or an error
// when the session is not registered.
func (c *Config) Treatment(sessionID string) (string, error) {
	for _, s := range c.Sessions {
		if s.ID == sessionID {
			return s.Treatment, nil
		}
	}
	return "", fmt.Errorf("session %q not in registry", sessionID)
}
