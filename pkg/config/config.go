package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
		// TokenTTL bounds the validity window of issued tokens and the
		// max-age of the session cookie.
		TokenTTL time.Duration `yaml:"token_ttl"`
		// Transport selects the credential carrier: "cookie" for the
		// interactive surface, "header" for the machine surface.
		Transport  string `yaml:"transport"`
		CookieName string `yaml:"cookie_name"`
	} `yaml:"auth"`

	Database struct {
		// URL enables the postgres repositories; empty falls back to
		// in-memory storage.
		URL      string `yaml:"url"`
		MaxConns int32  `yaml:"max_conns"`
	} `yaml:"database"`

	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Address  string        `yaml:"address"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		PoolSize int           `yaml:"pool_size"`
		FeedTTL  time.Duration `yaml:"feed_ttl"`
	} `yaml:"redis"`

	Moderation struct {
		URL     string        `yaml:"url"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"moderation"`

	Live struct {
		ChannelBuffer int           `yaml:"channel_buffer"`
		PingInterval  time.Duration `yaml:"ping_interval"`
		WriteTimeout  time.Duration `yaml:"write_timeout"`
	} `yaml:"live"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
	} `yaml:"monitoring"`

	Tracing struct {
		Enabled     bool    `yaml:"enabled"`
		ServiceName string  `yaml:"service_name"`
		JaegerURL   string  `yaml:"jaeger_url"`
		Environment string  `yaml:"environment"`
		SampleRate  float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	RateLimiting struct {
		Enabled           bool    `yaml:"enabled"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"rate_limiting"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	// Server
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	// zero write timeout keeps long-lived live streams open
	if c.Server.WriteTimeout < 0 {
		return fmt.Errorf("server.write_timeout must be >= 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	// Auth
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must not be empty")
	}
	if c.Auth.TokenTTL < 2*time.Hour || c.Auth.TokenTTL > 24*time.Hour {
		return fmt.Errorf("auth.token_ttl must be between 2h and 24h")
	}
	if c.Auth.Transport != "cookie" && c.Auth.Transport != "header" {
		return fmt.Errorf("auth.transport must be \"cookie\" or \"header\"")
	}
	if c.Auth.Transport == "cookie" && c.Auth.CookieName == "" {
		return fmt.Errorf("auth.cookie_name must not be empty when auth.transport=cookie")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address must not be empty when redis.enabled=true")
		}
		if c.Redis.PoolSize <= 0 {
			return fmt.Errorf("redis.pool_size must be > 0 when redis.enabled=true")
		}
		if c.Redis.FeedTTL <= 0 {
			return fmt.Errorf("redis.feed_ttl must be > 0 when redis.enabled=true")
		}
	}

	// Moderation
	if c.Moderation.APIKey != "" {
		if c.Moderation.URL == "" {
			return fmt.Errorf("moderation.url must not be empty when moderation.api_key is set")
		}
		if c.Moderation.Timeout <= 0 {
			return fmt.Errorf("moderation.timeout must be > 0 when moderation.api_key is set")
		}
	}

	// Live stream
	if c.Live.ChannelBuffer <= 0 {
		return fmt.Errorf("live.channel_buffer must be > 0")
	}
	if c.Live.PingInterval <= 0 {
		return fmt.Errorf("live.ping_interval must be > 0")
	}
	if c.Live.WriteTimeout <= 0 {
		return fmt.Errorf("live.write_timeout must be > 0")
	}

	// Logging
	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	// Rate limiting
	if c.RateLimiting.Enabled {
		if c.RateLimiting.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.Burst <= 0 {
			return fmt.Errorf("rate_limiting.burst must be > 0 when rate limiting is enabled")
		}
	}

	return nil
}

// Load reads configuration from YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	// If file does not exist, fall back to defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = ":8080"
	cfg.Server.ReadTimeout = 30 * time.Second
	// no write timeout: live streams hold the response open indefinitely
	cfg.Server.WriteTimeout = 0
	cfg.Server.ShutdownTimeout = 30 * time.Second

	cfg.Auth.JWTSecret = "change-me-in-production"
	cfg.Auth.TokenTTL = 12 * time.Hour
	cfg.Auth.Transport = "cookie"
	cfg.Auth.CookieName = "jwt"

	cfg.Database.MaxConns = 10

	cfg.Redis.Enabled = false
	cfg.Redis.Address = "localhost:6379"
	cfg.Redis.DB = 0
	cfg.Redis.PoolSize = 10
	cfg.Redis.FeedTTL = 30 * time.Second

	cfg.Moderation.URL = "https://despam.io/api/v1/moderate"
	cfg.Moderation.Timeout = 5 * time.Second

	cfg.Live.ChannelBuffer = 16
	cfg.Live.PingInterval = 30 * time.Second
	cfg.Live.WriteTimeout = 10 * time.Second

	cfg.Monitoring.PrometheusEnabled = true

	cfg.Tracing.Enabled = false
	cfg.Tracing.ServiceName = "murmurnet"
	cfg.Tracing.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Tracing.Environment = "development"
	cfg.Tracing.SampleRate = 1.0

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.RequestsPerSecond = 50
	cfg.RateLimiting.Burst = 100

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("MURMURNET_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if level := os.Getenv("MURMURNET_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if secret := os.Getenv("MURMURNET_JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if url := os.Getenv("MURMURNET_DATABASE_URL"); url != "" {
		c.Database.URL = url
	}
	if key := os.Getenv("MURMURNET_MODERATION_API_KEY"); key != "" {
		c.Moderation.APIKey = key
	}
}
