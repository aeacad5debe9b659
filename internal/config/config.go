package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strings"
	"time"

	"taskAssistant/internal/constants"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

const (
	RepositoryPostgres = "postgres"
	RepositoryInMemory = "inmemory"
)

const minSecretLength = 32

type Config struct {
	DeploymentID string                   `mapstructure:"deployment_id"`
	Server       ServerConfig             `mapstructure:"server"`
	Database     DatabaseConfig           `mapstructure:"database"`
	Logging      LoggingConfig            `mapstructure:"logging"`
	Repository   RepositoryConfig         `mapstructure:"repository"`
	Auth         AuthConfig               `mapstructure:"auth"`
	Assistant    AssistantConfig          `mapstructure:"assistant"`
	CORS         CORSConfig               `mapstructure:"cors"`
	RateLimit    map[string]RateLimitRule `mapstructure:"rate_limit"`
	Worker       WorkerConfig             `mapstructure:"worker"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	SiteURL         string        `mapstructure:"site_url"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MinConnections int           `mapstructure:"min_connections"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

type RepositoryConfig struct {
	Type string `mapstructure:"type"` // "postgres" or "inmemory"
}

type AuthConfig struct {
	Secret          string        `mapstructure:"secret"`
	Issuer          string        `mapstructure:"issuer"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

type AssistantConfig struct {
	OpenAIAPIKey    string `mapstructure:"openai_api_key"`
	AnthropicAPIKey string `mapstructure:"anthropic_api_key"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitRule struct {
	Requests int           `mapstructure:"requests"`
	Period   time.Duration `mapstructure:"period"`
	Burst    int           `mapstructure:"burst"`
}

type WorkerConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	BucketIdle time.Duration `mapstructure:"bucket_idle"`
}

var envBindings = map[string]string{
	"database.url":                "DATABASE_URL",
	"deployment_id":               "DEPLOYMENT_ID",
	"auth.secret":                 "AUTH_SECRET",
	"server.site_url":             "SITE_URL",
	"cors.allowed_origins":        "CORS_ALLOWED_ORIGINS",
	"assistant.openai_api_key":    "OPENAI_API_KEY",
	"assistant.anthropic_api_key": "ANTHROPIC_API_KEY",
	"server.port":                 "PORT",
	"repository.type":             "REPOSITORY_TYPE",
	"logging.development":         "LOG_DEVELOPMENT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment_id", "local")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.site_url", "http://localhost:8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 2)
	v.SetDefault("database.idle_timeout", 5*time.Minute)
	v.SetDefault("database.connect_timeout", 5*time.Second)

	v.SetDefault("logging.development", false)
	v.SetDefault("repository.type", RepositoryInMemory)

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.issuer", "task-assistant")
	v.SetDefault("auth.access_token_ttl", 15*time.Minute)
	v.SetDefault("auth.refresh_token_ttl", 30*24*time.Hour)

	v.SetDefault("assistant.openai_api_key", "")
	v.SetDefault("assistant.anthropic_api_key", "")

	v.SetDefault("cors.allowed_origins", []string{})

	for name, rule := range constants.RateLimitDefaults {
		v.SetDefault("rate_limit."+name+".requests", rule.Requests)
		v.SetDefault("rate_limit."+name+".period", rule.Period)
		v.SetDefault("rate_limit."+name+".burst", rule.Burst)
	}

	v.SetDefault("worker.interval", 5*time.Minute)
	v.SetDefault("worker.bucket_idle", 30*time.Minute)
}

// Load reads the file named by --config (config.yml by default), then applies
// environment overrides. A missing file is not an error.
func Load(args []string) (*Config, error) {
	flags := pflag.NewFlagSet("task-assistant", pflag.ContinueOnError)
	path := flags.String("config", "config.yml", "path to the YAML config file")
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	return LoadFile(*path)
}

func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.CORS.AllowedOrigins = splitOrigins(cfg.CORS.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// splitOrigins accepts both a YAML list and a comma separated env value.
func splitOrigins(raw []string) []string {
	var origins []string
	for _, item := range raw {
		for _, o := range strings.Split(item, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	return origins
}

func (c *Config) Validate() error {
	var err error

	if c.Server.Port == "" {
		err = multierr.Append(err, errors.New("server.port is required"))
	}

	switch c.Repository.Type {
	case RepositoryPostgres:
		if c.Database.URL == "" {
			err = multierr.Append(err, errors.New("database.url is required for the postgres repository"))
		}
		if c.Database.MinConnections > c.Database.MaxConnections {
			err = multierr.Append(err, errors.New("database.min_connections exceeds max_connections"))
		}
	case RepositoryInMemory:
	default:
		err = multierr.Append(err, fmt.Errorf("repository.type %q is not one of %s, %s", c.Repository.Type, RepositoryPostgres, RepositoryInMemory))
	}

	if len(c.Auth.Secret) < minSecretLength {
		err = multierr.Append(err, fmt.Errorf("auth.secret must be at least %d bytes", minSecretLength))
	}
	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		err = multierr.Append(err, errors.New("auth token lifetimes must be positive"))
	}

	for name := range constants.RateLimitDefaults {
		rule, ok := c.RateLimit[name]
		if !ok {
			err = multierr.Append(err, fmt.Errorf("rate_limit.%s is missing", name))
			continue
		}
		if rule.Requests <= 0 || rule.Period <= 0 || rule.Burst <= 0 {
			err = multierr.Append(err, fmt.Errorf("rate_limit.%s needs positive requests, period and burst", name))
		}
	}

	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// SecureCookies reports whether the site is served over https.
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(c.Server.SiteURL, "https://")
}
