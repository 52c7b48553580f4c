// Package config loads application configuration from the environment,
// optionally layered over a YAML file named by IDEABOARD_CONFIG.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendDynamoDB = "dynamodb"
)

// ConfigFileEnv names the environment variable holding the YAML file path
const ConfigFileEnv = "IDEABOARD_CONFIG"

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address"`
	Environment   string `yaml:"environment"`

	// Storage configuration
	StorageBackend string `yaml:"storage_backend"`
	DataDir        string `yaml:"data_dir"`
	RedisAddr      string `yaml:"redis_addr"`
	RedisPassword  string `yaml:"redis_password"`
	RedisDB        int    `yaml:"redis_db"`
	RedisPrefix    string `yaml:"redis_prefix"`
	SQLitePath     string `yaml:"sqlite_path"`

	// AWS configuration
	AWSRegion     string `yaml:"aws_region"`
	DynamoDBTable string `yaml:"dynamodb_table"`

	// Expansion service. An empty URL means this server's own endpoint.
	ExpansionURL      string        `yaml:"expansion_url"`
	ExpansionTimeout  time.Duration `yaml:"expansion_timeout"`
	ExpansionFallback bool          `yaml:"expansion_fallback"`

	// Lambda configuration
	IsLambda bool `yaml:"is_lambda"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Feature flags
	EnableMetrics bool `yaml:"enable_metrics"`
	EnableCORS    bool `yaml:"enable_cors"`

	// Path of the YAML file this config was layered over, if any
	ConfigFile string `yaml:"-"`

	overrides []func(*Config)
}

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	return &Config{
		ServerAddress:     ":8080",
		Environment:       "development",
		StorageBackend:    BackendFile,
		DataDir:           ".ideaboard",
		RedisAddr:         "localhost:6379",
		RedisPrefix:       "ideaboard:",
		SQLitePath:        "ideaboard.db",
		AWSRegion:         "us-west-2",
		DynamoDBTable:     "ideaboard",
		ExpansionURL:      "",
		ExpansionTimeout:  10 * time.Second,
		ExpansionFallback: false,
		LogLevel:          "info",
		EnableMetrics:     true,
		EnableCORS:        true,
	}
}

// LoadConfig loads configuration: defaults, then the YAML file named by
// IDEABOARD_CONFIG, then environment variables.
func LoadConfig() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
		cfg.ConfigFile = path
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Override applies fn now and again after every reload, so values set
// outside the file and environment (command-line flags) survive hot reloads.
func (c *Config) Override(fn func(*Config)) {
	fn(c)
	c.overrides = append(c.overrides, fn)
}

func (c *Config) inheritOverrides(from *Config) {
	for _, fn := range from.overrides {
		c.Override(fn)
	}
}

// EffectiveExpansionURL returns ExpansionURL, or the URL of this server's
// own endpoint derived from ServerAddress when none is set.
func (c *Config) EffectiveExpansionURL() string {
	if c.ExpansionURL != "" {
		return c.ExpansionURL
	}

	host, port, err := net.SplitHostPort(c.ServerAddress)
	if err != nil {
		return "http://" + c.ServerAddress
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)

	c.StorageBackend = strings.ToLower(getEnv("STORAGE_BACKEND", c.StorageBackend))
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)
	c.RedisPrefix = getEnv("REDIS_PREFIX", c.RedisPrefix)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.DynamoDBTable = getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", c.DynamoDBTable))

	c.ExpansionURL = getEnv("EXPANSION_URL", c.ExpansionURL)
	c.ExpansionTimeout = getEnvDuration("EXPANSION_TIMEOUT", c.ExpansionTimeout)
	c.ExpansionFallback = getEnvBool("EXPANSION_FALLBACK", c.ExpansionFallback)

	c.IsLambda = getEnvBool("IS_LAMBDA", c.IsLambda || os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "")

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendMemory, BackendFile, BackendRedis, BackendSQLite, BackendDynamoDB:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	expansionURL := c.EffectiveExpansionURL()
	u, err := url.Parse(expansionURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("EXPANSION_URL must be an absolute http(s) URL, got %q", expansionURL)
	}

	if c.ExpansionTimeout <= 0 {
		return fmt.Errorf("EXPANSION_TIMEOUT must be positive")
	}

	if c.StorageBackend == BackendDynamoDB && c.DynamoDBTable == "" {
		return fmt.Errorf("DYNAMODB_TABLE is required for the dynamodb backend")
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
