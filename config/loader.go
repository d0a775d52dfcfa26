// Package config provides unified configuration loading for the agent
// fleet: defaults, then a YAML file, then environment variable overrides.
//
// Usage:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    WithEnvPrefix("AGENTOPS").
//	    Load()
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nareshsaladi2024/OICAgentOps/state"
)

// Config is the complete configuration for the agent fleet.
type Config struct {
	// MCP is the monitor service endpoint configuration.
	MCP MCPConfig `yaml:"mcp" env:"MCP"`

	// State selects the correlation store backend.
	State state.StoreConfig `yaml:"state" env:"STATE"`

	// History configures the stage run audit database.
	History HistoryConfig `yaml:"history" env:"HISTORY"`

	// Server holds HTTP server tuning shared by all agents.
	Server ServerConfig `yaml:"server" env:"SERVER"`

	// Agents assigns ports to the agent personas.
	Agents AgentsConfig `yaml:"agents" env:"AGENTS"`

	// Log configures logging.
	Log LogConfig `yaml:"log" env:"LOG"`
}

// MCPConfig points the fleet at one monitor service.
type MCPConfig struct {
	// BaseURL of the monitor service, without trailing slash.
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// CallTimeout bounds each tool call.
	CallTimeout time.Duration `yaml:"call_timeout" env:"CALL_TIMEOUT"`
	// HealthTimeout bounds the pre-flight health probe.
	HealthTimeout time.Duration `yaml:"health_timeout" env:"HEALTH_TIMEOUT"`
	// RateLimit caps outbound calls per second. Zero disables.
	RateLimit float64 `yaml:"rate_limit" env:"RATE_LIMIT"`
}

// HistoryConfig configures the stage run audit database.
type HistoryConfig struct {
	// Enabled toggles audit recording.
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// Path of the SQLite database file.
	Path string `yaml:"path" env:"PATH"`
}

// ServerConfig holds HTTP server tuning.
type ServerConfig struct {
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	// Host agents bind to.
	Host string `yaml:"host" env:"HOST"`
}

// AgentsConfig assigns a port per agent persona. A zero port disables the
// agent.
type AgentsConfig struct {
	CoordinatorPort    int `yaml:"coordinator_port" env:"COORDINATOR_PORT"`
	MonitorErrorsPort  int `yaml:"monitor_errors_port" env:"MONITOR_ERRORS_PORT"`
	MonitorQueuePort   int `yaml:"monitor_queue_port" env:"MONITOR_QUEUE_PORT"`
	ResubmitErrorsPort int `yaml:"resubmit_errors_port" env:"RESUBMIT_ERRORS_PORT"`
	RecoveryJobPort    int `yaml:"recovery_job_port" env:"RECOVERY_JOB_PORT"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// Format: json, console
	Format string `yaml:"format" env:"FORMAT"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	return &Config{
		MCP: MCPConfig{
			BaseURL:       "http://localhost:3000",
			CallTimeout:   60 * time.Second,
			HealthTimeout: 5 * time.Second,
		},
		State:   state.DefaultStoreConfig(),
		History: HistoryConfig{Enabled: true, Path: "oic_agent_history.db"},
		Server: ServerConfig{
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    90 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			Host:            "localhost",
		},
		Agents: AgentsConfig{
			CoordinatorPort:    10001,
			MonitorErrorsPort:  10002,
			MonitorQueuePort:   10003,
			ResubmitErrorsPort: 10004,
			RecoveryJobPort:    10005,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// Loader loads configuration with builder-style options.
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader creates a loader with the default env prefix.
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "AGENTOPS",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath sets the YAML file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix sets the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator adds a validation hook.
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load resolves the configuration.
// Precedence: defaults, then YAML file, then environment variables.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// MustLoad loads configuration or panics. Intended for main.
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Validate checks invariants that would otherwise fail at runtime.
func (c *Config) Validate() error {
	var errs []string

	if c.MCP.BaseURL == "" {
		errs = append(errs, "mcp base_url is required")
	}
	if strings.HasSuffix(c.MCP.BaseURL, "/") {
		errs = append(errs, "mcp base_url must not end with a slash")
	}
	if c.MCP.CallTimeout <= 0 {
		errs = append(errs, "mcp call_timeout must be positive")
	}
	for _, port := range []int{
		c.Agents.CoordinatorPort,
		c.Agents.MonitorErrorsPort,
		c.Agents.MonitorQueuePort,
		c.Agents.ResubmitErrorsPort,
		c.Agents.RecoveryJobPort,
	} {
		if port < 0 || port > 65535 {
			errs = append(errs, fmt.Sprintf("invalid agent port: %d", port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
