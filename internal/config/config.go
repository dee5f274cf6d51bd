package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/kp666/twitter-stream/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimeout           = 90 * time.Second
	defaultHeartbeatInterval = 30 * time.Second
	defaultSubscriberBuffer  = 256
	defaultBatchSize         = 100
)

var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::(-[^}]*))?\}`)

// Config represents the complete application configuration
type Config struct {
	Server      models.ServerConfig      `yaml:"server"`
	Credentials models.CredentialsConfig `yaml:"credentials"`
	Stream      models.StreamConfig      `yaml:"stream"`
	Relay       models.RelayConfig       `yaml:"relay"`
	Redis       *models.RedisConfig      `yaml:"redis,omitempty"`
	Database    *models.DatabaseConfig   `yaml:"database,omitempty"`
}

// LoadFromFile loads configuration from a YAML file with environment variable substitution
func LoadFromFile(configPath string) (*Config, error) {
	// Validate and clean the file path to prevent directory traversal
	cleanPath := filepath.Clean(configPath)

	if strings.Contains(cleanPath, "..") {
		return nil, fmt.Errorf("invalid config path: path traversal not allowed")
	}

	ext := filepath.Ext(cleanPath)
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("invalid config file: only .yaml and .yml files are allowed")
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 - path is validated above
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", cleanPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML after substituting environment variables and applies defaults
func Parse(data []byte) (*Config, error) {
	content := substituteEnvVars(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(content), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	config.ApplyDefaults()
	return &config, nil
}

// LoadEnvFiles loads environment variables from .env files in order of precedence
// Loads files in the order provided (first has highest priority)
func LoadEnvFiles(envFiles []string) {
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			// stdout may carry the stream itself
			if err := godotenv.Load(envFile); err == nil {
				fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", envFile)
			}
		}
	}
}

// New creates a new Config instance by loading from the specified config file path
func New(configPath string) (*Config, error) {
	return LoadFromFile(configPath)
}

// substituteEnvVars replaces ${VAR_NAME} and ${VAR_NAME:-default} patterns with environment variables
func substituteEnvVars(content string) string {
	return envPattern.ReplaceAllStringFunc(content, func(match string) string {
		submatches := envPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		defaultValue := ""

		if len(submatches) > 2 && submatches[2] != "" {
			// Remove the leading '-' from default value
			defaultValue = strings.TrimPrefix(submatches[2], "-")
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}

// ApplyDefaults fills unset optional values
func (c *Config) ApplyDefaults() {
	if c.Stream.Timeout == 0 {
		c.Stream.Timeout = defaultTimeout
	}
	if c.Stream.FilterLevel == "" {
		c.Stream.FilterLevel = models.FilterLevelNone
	}
	if c.Relay.HeartbeatInterval == 0 {
		c.Relay.HeartbeatInterval = defaultHeartbeatInterval
	}
	if c.Relay.SubscriberBuffer == 0 {
		c.Relay.SubscriberBuffer = defaultSubscriberBuffer
	}
	if c.Database != nil && c.Database.BatchSize == 0 {
		c.Database.BatchSize = defaultBatchSize
	}
}

// GetNormalizedLogLevel returns the log level in lowercase for consistent comparison
func (c *Config) GetNormalizedLogLevel() string {
	return strings.ToLower(c.Server.LogLevel)
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Target resolves the configured endpoint
func (c *Config) Target() (models.EndpointTarget, bool) {
	return c.Stream.Endpoint.Target(c.Stream.Method, c.Stream.URL)
}

// Validate checks if all required configuration values are set
func (c *Config) Validate() error {
	var missing, invalid []string

	if c.Credentials.Consumer.Key == "" {
		missing = append(missing, "credentials.consumer.key")
	}
	if c.Credentials.Consumer.Secret == "" {
		missing = append(missing, "credentials.consumer.secret")
	}
	if c.Credentials.Access.Key == "" {
		missing = append(missing, "credentials.access.key")
	}
	if c.Credentials.Access.Secret == "" {
		missing = append(missing, "credentials.access.secret")
	}

	if _, ok := c.Target(); !ok {
		if c.Stream.Endpoint == "" || c.Stream.Endpoint == models.EndpointCustom {
			missing = append(missing, "stream.url")
		} else {
			invalid = append(invalid, "stream.endpoint")
		}
	}
	if c.Stream.Timeout < 0 {
		invalid = append(invalid, "stream.timeout")
	}
	switch c.Stream.FilterLevel {
	case "", models.FilterLevelNone, models.FilterLevelLow, models.FilterLevelMedium:
	default:
		invalid = append(invalid, "stream.filter_level")
	}

	if c.Relay.Enabled && c.Server.Listen == "" {
		missing = append(missing, "server.listen")
	}
	if c.Redis != nil && c.Redis.URL == "" {
		missing = append(missing, "redis.url")
	}
	if c.Database != nil && c.Database.Type == "" {
		missing = append(missing, "database.type")
	}

	if len(missing) > 0 || len(invalid) > 0 {
		return &ValidationError{MissingFields: missing, InvalidFields: invalid}
	}

	return nil
}

// ValidationError represents configuration validation errors
type ValidationError struct {
	MissingFields []string
	InvalidFields []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.MissingFields) > 0 {
		parts = append(parts, "missing required configuration fields: "+strings.Join(e.MissingFields, ", "))
	}
	if len(e.InvalidFields) > 0 {
		parts = append(parts, "invalid configuration fields: "+strings.Join(e.InvalidFields, ", "))
	}
	return strings.Join(parts, "; ")
}
