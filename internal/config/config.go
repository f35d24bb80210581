package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"salespulse/internal/analytics"
	"salespulse/internal/cache"
	"salespulse/internal/ingest"
	"salespulse/internal/sales"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig   `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Data      DataConfig       `yaml:"data" envconfig:"DATA"`
	Cache     cache.Config     `yaml:"cache" envconfig:"CACHE"`
	Analytics analytics.Config `yaml:"analytics" envconfig:"ANALYTICS"`
	Telemetry TelemetryConfig  `yaml:"telemetry" envconfig:"TELEMETRY"`
	WebSocket WebSocketConfig  `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	WebDir          string        `yaml:"web_dir" envconfig:"WEB_DIR"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// DataConfig locates and interprets the input files
type DataConfig struct {
	Dir           string `yaml:"dir" envconfig:"DIR"`
	Pattern       string `yaml:"pattern" envconfig:"PATTERN"`
	LabelPrefix   string `yaml:"label_prefix" envconfig:"LABEL_PREFIX"`
	LabelSuffix   string `yaml:"label_suffix" envconfig:"LABEL_SUFFIX"`
	CategoryOrder string `yaml:"category_order" envconfig:"CATEGORY_ORDER"`
	Concurrency   int    `yaml:"concurrency" envconfig:"CONCURRENCY"`
	// SnapshotPath, when set, receives a SQLite copy of the loaded dataset
	SnapshotPath string `yaml:"snapshot_path" envconfig:"SNAPSHOT_PATH"`
}

// TelemetryConfig controls metrics and tracing
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
	TraceStdout    bool   `yaml:"trace_stdout" envconfig:"TRACE_STDOUT"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT"`
	MaxMessageSize  int64         `yaml:"max_message_size" envconfig:"MAX_MESSAGE_SIZE"`
}

// Load builds the configuration from defaults, the YAML file at path and
// the environment. An empty path falls back to SALES_CONFIG_FILE and then
// to the usual locations; a missing file is not an error in that case.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Environment variables override file values; unset ones leave them alone
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", filePath, err)
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(ConfigFileEnv); p != "" {
		return p
	}
	for _, location := range configLocations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return "" // No config file found, use env vars only
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server request timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}
	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	c.Logging.Level = strings.ToLower(c.Logging.Level)
	switch c.Logging.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	// Logs are always JSON
	c.Logging.Format = "json"

	if c.Data.Dir == "" {
		return fmt.Errorf("data directory must be specified")
	}
	switch c.Data.CategoryOrder {
	case "", CategoryOrderTVFirst, CategoryOrderApplianceFirst:
	default:
		return fmt.Errorf("invalid category order: %q", c.Data.CategoryOrder)
	}

	switch strings.ToLower(c.Cache.Backend) {
	case "", cache.BackendNone, cache.BackendMemory:
	case cache.BackendRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("redis cache requires a redis url")
		}
	default:
		return fmt.Errorf("invalid cache backend: %q", c.Cache.Backend)
	}

	if c.WebSocket.PingPeriod >= c.WebSocket.PongWait {
		return fmt.Errorf("websocket ping period must be shorter than pong wait")
	}
	return nil
}

// CategoryRules returns the category rule set selected by CategoryOrder
func (d DataConfig) CategoryRules() sales.CategoryRules {
	if d.CategoryOrder == CategoryOrderApplianceFirst {
		return sales.ApplianceFirstCategoryRules
	}
	return sales.DefaultCategoryRules
}

// IngestOptions converts the data section into loader options.
func (d DataConfig) IngestOptions() ingest.Options {
	return ingest.Options{
		Dir:         d.Dir,
		Pattern:     d.Pattern,
		LabelPrefix: d.LabelPrefix,
		LabelSuffix: d.LabelSuffix,
		Deriver:     sales.NewDeriver(d.CategoryRules(), sales.DefaultEvents),
		Concurrency: d.Concurrency,
	}
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  DefaultHTTPTimeout,
			WebDir:          "web",
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:       LogLevelInfo,
			Format:      "json",
			Development: false,
		},
		Data: DataConfig{
			Dir:           "data",
			Pattern:       ingest.DefaultPattern,
			LabelPrefix:   ingest.DefaultLabelPrefix,
			LabelSuffix:   ingest.DefaultLabelSuffix,
			CategoryOrder: CategoryOrderTVFirst,
		},
		Cache: cache.Config{
			Backend: cache.BackendMemory,
			Size:    cache.DefaultSize,
			TTL:     cache.DefaultTTL,
			Prefix:  "salespulse",
		},
		Analytics: analytics.DefaultConfig(),
		Telemetry: TelemetryConfig{
			ServiceName:    "salespulse",
			MetricsEnabled: true,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
			MaxMessageSize:  64 * 1024,
		},
	}
}
