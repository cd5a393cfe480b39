package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ErrNilConfig is returned when a nil config is passed to a function that
// requires one.
var ErrNilConfig = errors.New("nil config")

const envPrefix = "PATHWAY_"

// Environment names.
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// CORSConfig is the CORS configuration for the HTTP server.
type CORSConfig struct {
	AllowedHeaders []string `env:"ALLOWED_HEADERS" yaml:"allowed_headers"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	AllowedMethods []string `env:"ALLOWED_METHODS" yaml:"allowed_methods"`
}

// HTTPConfig is the HTTP configuration for the server.
type HTTPConfig struct {
	// ListenAddr is the address on which the HTTP server will listen.
	ListenAddr string `env:"LISTEN_ADDR" yaml:"listen_addr"`

	// PublicURL is the public URL of the application. It is always a trusted
	// origin for state-changing requests.
	PublicURL string `env:"PUBLIC_URL" yaml:"public_url"`

	// PreviewHost is the host name of a preview deployment, without scheme.
	// When set, https://<host> is trusted as well.
	PreviewHost string `env:"PREVIEW_HOST" yaml:"preview_host"`

	// AllowedOrigins are additional trusted origins. Glob patterns such as
	// "https://*.example.com" are accepted.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" yaml:"allowed_origins"`

	// StrictOrigin rejects state-changing requests without Origin and
	// Referer headers in every environment, not only in production.
	StrictOrigin bool `env:"STRICT_ORIGIN" yaml:"strict_origin"`

	// CORS is the CORS configuration.
	CORS CORSConfig `envPrefix:"CORS_" yaml:"cors"`
}

// StatsConfig is the configuration for the stats server.
type StatsConfig struct {
	// ListenAddr is the address on which the stats server will listen.
	ListenAddr string `env:"LISTEN_ADDR" yaml:"listen_addr"`
}

// LogConfig is the logger configuration.
type LogConfig struct {
	// Format is the format of the logs.
	// Valid values are "json", "logfmt", and "text".
	Format string `env:"FORMAT" yaml:"format"`

	// Time format for the log `ts` field.
	// Format must be described in Golang's time format.
	TimeFormat string `env:"TIME_FORMAT" yaml:"time_format"`

	// Path to a file to write logs to.
	// If not set, logs will be written to stderr.
	Path string `env:"PATH" yaml:"path"`
}

// DBConfig is the database connection configuration.
type DBConfig struct {
	// Driver is the driver for the database.
	Driver string `env:"DRIVER" yaml:"driver"`

	// DataSource is the database data source name.
	DataSource string `env:"DATA_SOURCE" yaml:"data_source"`
}

// AuthConfig is the session token configuration.
type AuthConfig struct {
	// Secret signs session tokens.
	Secret string `env:"SECRET" yaml:"secret"`

	// TokenExpiry is the lifetime of tokens minted by the server.
	TokenExpiry time.Duration `env:"TOKEN_EXPIRY" yaml:"token_expiry"`
}

// CronConfig guards the externally triggered cron endpoints.
type CronConfig struct {
	// Secret is compared against the bearer token of cron requests. An empty
	// secret leaves the endpoints open.
	Secret string `env:"SECRET" yaml:"secret"`
}

// JobsConfig is the configuration for in-process cron jobs.
type JobsConfig struct {
	// Popularity is the schedule of the popularity recompute. Empty disables
	// the in-process job.
	Popularity string `env:"POPULARITY" yaml:"popularity"`
}

// RateLimitConfig is the rate limiter configuration.
type RateLimitConfig struct {
	// Enabled toggles throttling altogether.
	Enabled bool `env:"ENABLED" yaml:"enabled"`

	// Store is either "memory" or "redis".
	Store string `env:"STORE" yaml:"store"`

	// RedisURL is the redis connection URL used by the redis store.
	RedisURL string `env:"REDIS_URL" yaml:"redis_url"`

	// SweepInterval is how often expired in-memory windows are purged.
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" yaml:"sweep_interval"`
}

// EmailConfig is the SMTP configuration for notifications. An empty host
// disables delivery and notifications are only logged.
type EmailConfig struct {
	Host     string `env:"HOST" yaml:"host"`
	Port     int    `env:"PORT" yaml:"port"`
	Username string `env:"USERNAME" yaml:"username"`
	Password string `env:"PASSWORD" yaml:"password"`
	From     string `env:"FROM" yaml:"from"`
}

// SearchConfig is the embedding API configuration.
type SearchConfig struct {
	// Endpoint is the embeddings endpoint URL. Empty disables indexing.
	Endpoint string `env:"ENDPOINT" yaml:"endpoint"`

	// APIKey is sent as a bearer token.
	APIKey string `env:"API_KEY" yaml:"api_key"`

	// Model is the embedding model name.
	Model string `env:"MODEL" yaml:"model"`

	// Timeout bounds every embedding request.
	Timeout time.Duration `env:"TIMEOUT" yaml:"timeout"`
}

// TaskConfig is the background task queue configuration.
type TaskConfig struct {
	// MaxRetries is the number of retries before a task is dead-lettered.
	MaxRetries int `env:"MAX_RETRIES" yaml:"max_retries"`

	// RetryInterval is the initial backoff between retries.
	RetryInterval time.Duration `env:"RETRY_INTERVAL" yaml:"retry_interval"`

	// Buffer is the size of each topic's queue.
	Buffer int `env:"BUFFER" yaml:"buffer"`
}

// Config is the configuration for Pathway.
type Config struct {
	// Name is the name of the application.
	Name string `env:"NAME" yaml:"name"`

	// Environment is one of "development", "production" or "test".
	Environment string `env:"ENVIRONMENT" yaml:"environment"`

	// HTTP is the configuration for the HTTP server.
	HTTP HTTPConfig `envPrefix:"HTTP_" yaml:"http"`

	// Stats is the configuration for the stats server.
	Stats StatsConfig `envPrefix:"STATS_" yaml:"stats"`

	// Log is the logger configuration.
	Log LogConfig `envPrefix:"LOG_" yaml:"log"`

	// DB is the database configuration.
	DB DBConfig `envPrefix:"DB_" yaml:"db"`

	// Auth is the session token configuration.
	Auth AuthConfig `envPrefix:"AUTH_" yaml:"auth"`

	// Cron guards the cron endpoints.
	Cron CronConfig `envPrefix:"CRON_" yaml:"cron"`

	// Jobs is the configuration for cron jobs.
	Jobs JobsConfig `envPrefix:"JOBS_" yaml:"jobs"`

	// RateLimit is the rate limiter configuration.
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_" yaml:"rate_limit"`

	// Email is the SMTP configuration.
	Email EmailConfig `envPrefix:"EMAIL_" yaml:"email"`

	// Search is the embedding API configuration.
	Search SearchConfig `envPrefix:"SEARCH_" yaml:"search"`

	// Task is the background queue configuration.
	Task TaskConfig `envPrefix:"TASK_" yaml:"task"`

	// DataPath is the path to the directory where Pathway will store its data.
	DataPath string `env:"DATA_PATH" yaml:"-"`
}

// platformEnv maps variables set by the hosting platform to the config
// variable they stand in for. They only apply when the config variable
// itself is unset.
var platformEnv = map[string]string{
	"NODE_ENV":            envPrefix + "ENVIRONMENT",
	"NEXT_PUBLIC_APP_URL": envPrefix + "HTTP_PUBLIC_URL",
	"VERCEL_URL":          envPrefix + "HTTP_PREVIEW_HOST",
	"CRON_SECRET":         envPrefix + "CRON_SECRET",
}

// Environ returns the config as a list of environment variables.
func (c *Config) Environ() []string {
	envs := []string{}
	if c == nil {
		return envs
	}

	// TODO: do this dynamically
	envs = append(envs, []string{
		fmt.Sprintf("PATHWAY_DATA_PATH=%s", c.DataPath),
		fmt.Sprintf("PATHWAY_NAME=%s", c.Name),
		fmt.Sprintf("PATHWAY_ENVIRONMENT=%s", c.Environment),
		fmt.Sprintf("PATHWAY_HTTP_LISTEN_ADDR=%s", c.HTTP.ListenAddr),
		fmt.Sprintf("PATHWAY_HTTP_PUBLIC_URL=%s", c.HTTP.PublicURL),
		fmt.Sprintf("PATHWAY_HTTP_PREVIEW_HOST=%s", c.HTTP.PreviewHost),
		fmt.Sprintf("PATHWAY_HTTP_ALLOWED_ORIGINS=%s", strings.Join(c.HTTP.AllowedOrigins, ",")),
		fmt.Sprintf("PATHWAY_HTTP_STRICT_ORIGIN=%t", c.HTTP.StrictOrigin),
		fmt.Sprintf("PATHWAY_HTTP_CORS_ALLOWED_HEADERS=%s", strings.Join(c.HTTP.CORS.AllowedHeaders, ",")),
		fmt.Sprintf("PATHWAY_HTTP_CORS_ALLOWED_ORIGINS=%s", strings.Join(c.HTTP.CORS.AllowedOrigins, ",")),
		fmt.Sprintf("PATHWAY_HTTP_CORS_ALLOWED_METHODS=%s", strings.Join(c.HTTP.CORS.AllowedMethods, ",")),
		fmt.Sprintf("PATHWAY_STATS_LISTEN_ADDR=%s", c.Stats.ListenAddr),
		fmt.Sprintf("PATHWAY_LOG_FORMAT=%s", c.Log.Format),
		fmt.Sprintf("PATHWAY_LOG_TIME_FORMAT=%s", c.Log.TimeFormat),
		fmt.Sprintf("PATHWAY_DB_DRIVER=%s", c.DB.Driver),
		fmt.Sprintf("PATHWAY_DB_DATA_SOURCE=%s", c.DB.DataSource),
		fmt.Sprintf("PATHWAY_AUTH_TOKEN_EXPIRY=%s", c.Auth.TokenExpiry),
		fmt.Sprintf("PATHWAY_JOBS_POPULARITY=%s", c.Jobs.Popularity),
		fmt.Sprintf("PATHWAY_RATE_LIMIT_ENABLED=%t", c.RateLimit.Enabled),
		fmt.Sprintf("PATHWAY_RATE_LIMIT_STORE=%s", c.RateLimit.Store),
		fmt.Sprintf("PATHWAY_RATE_LIMIT_SWEEP_INTERVAL=%s", c.RateLimit.SweepInterval),
		fmt.Sprintf("PATHWAY_EMAIL_HOST=%s", c.Email.Host),
		fmt.Sprintf("PATHWAY_EMAIL_PORT=%d", c.Email.Port),
		fmt.Sprintf("PATHWAY_EMAIL_FROM=%s", c.Email.From),
		fmt.Sprintf("PATHWAY_SEARCH_ENDPOINT=%s", c.Search.Endpoint),
		fmt.Sprintf("PATHWAY_SEARCH_MODEL=%s", c.Search.Model),
		fmt.Sprintf("PATHWAY_TASK_MAX_RETRIES=%d", c.Task.MaxRetries),
		fmt.Sprintf("PATHWAY_TASK_RETRY_INTERVAL=%s", c.Task.RetryInterval),
	}...)

	return envs
}

// IsDebug returns true if the server is running in debug mode.
func IsDebug() bool {
	debug, _ := strconv.ParseBool(os.Getenv("PATHWAY_DEBUG"))
	return debug
}

// IsVerbose returns true if the server is running in verbose mode.
// Verbose mode is only enabled if debug mode is enabled.
func IsVerbose() bool {
	verbose, _ := strconv.ParseBool(os.Getenv("PATHWAY_VERBOSE"))
	return IsDebug() && verbose
}

// IsProduction reports whether the configured environment is production.
func (c *Config) IsProduction() bool {
	return c != nil && strings.EqualFold(c.Environment, Production)
}

// TrustedOrigins returns the origins allowed to issue state-changing
// requests: the public URL, the preview deployment and any configured
// extras.
func (c *Config) TrustedOrigins() []string {
	origins := make([]string, 0, len(c.HTTP.AllowedOrigins)+2)
	if c.HTTP.PublicURL != "" {
		origins = append(origins, c.HTTP.PublicURL)
	}
	if c.HTTP.PreviewHost != "" {
		origins = append(origins, "https://"+c.HTTP.PreviewHost)
	}
	return append(origins, c.HTTP.AllowedOrigins...)
}

// parseFile parses the given file as a configuration file.
// The file must be in YAML format.
func parseFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}

	defer f.Close() // nolint: errcheck
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	return cfg.Validate()
}

// ParseFile parses the config from the default file path.
// This also calls Validate() on the config.
func (c *Config) ParseFile() error {
	return parseFile(c, c.ConfigPath())
}

// parseEnv parses the environment variables as a configuration file.
func parseEnv(cfg *Config) error {
	environ := env.ToMap(os.Environ())
	for platform, key := range platformEnv {
		if _, ok := environ[key]; ok {
			continue
		}
		if v := environ[platform]; v != "" {
			environ[key] = v
		}
	}

	// Override with environment variables
	if err := env.ParseWithOptions(cfg, env.Options{
		Prefix:      envPrefix,
		Environment: environ,
	}); err != nil {
		return fmt.Errorf("parse environment variables: %w", err)
	}

	return cfg.Validate()
}

// ParseEnv parses the config from the environment variables.
// This also calls Validate() on the config.
func (c *Config) ParseEnv() error {
	return parseEnv(c)
}

// Parse parses the config from the default file path and environment variables.
// This also calls Validate() on the config.
func (c *Config) Parse() error {
	if err := c.ParseFile(); err != nil {
		return err
	}

	return c.ParseEnv()
}

// writeConfig writes the configuration to the given file.
func writeConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(newConfigFile(cfg)), 0o600) // nolint: errcheck, gosec
}

// WriteConfig writes the configuration to the default file.
func (c *Config) WriteConfig() error {
	return writeConfig(c, c.ConfigPath())
}

// DefaultDataPath returns the path to the data directory.
// It uses the PATHWAY_DATA_PATH environment variable if set, otherwise it
// uses "data".
func DefaultDataPath() string {
	dp := os.Getenv("PATHWAY_DATA_PATH")
	if dp == "" {
		dp = "data"
	}

	return dp
}

// ConfigPath returns the path to the config file. PATHWAY_CONFIG_LOCATION
// takes precedence when it points to an existing file.
func (c *Config) ConfigPath() string { // nolint:revive
	if path := os.Getenv("PATHWAY_CONFIG_LOCATION"); exist(path) {
		return path
	}
	return filepath.Join(c.DataPath, "config.yaml")
}

func exist(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Exist returns true if the config file exists.
func (c *Config) Exist() bool {
	return exist(c.ConfigPath())
}

// DefaultConfig returns the default Config. All the path values are relative
// to the data directory.
// Use Validate() to validate the config and ensure absolute paths.
func DefaultConfig() *Config {
	return &Config{
		Name:        "Pathway",
		Environment: Development,
		DataPath:    DefaultDataPath(),
		HTTP: HTTPConfig{
			ListenAddr: ":8080",
			PublicURL:  "http://localhost:8080",
			CORS: CORSConfig{
				AllowedHeaders: []string{"Accept", "Accept-Language", "Authorization", "Content-Type", "Origin"},
				AllowedMethods: []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			},
		},
		Stats: StatsConfig{
			ListenAddr: "localhost:8081",
		},
		Log: LogConfig{
			Format:     "text",
			TimeFormat: time.DateTime,
		},
		DB: DBConfig{
			Driver: "sqlite",
			DataSource: "pathway.db" +
				"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
		},
		Auth: AuthConfig{
			TokenExpiry: 30 * 24 * time.Hour,
		},
		Jobs: JobsConfig{
			Popularity: "0 3 * * *",
		},
		RateLimit: RateLimitConfig{
			Enabled:       true,
			Store:         "memory",
			SweepInterval: time.Minute,
		},
		Email: EmailConfig{
			Port: 587,
			From: "Pathway <no-reply@localhost>",
		},
		Search: SearchConfig{
			Model:   "text-embedding-3-small",
			Timeout: 10 * time.Second,
		},
		Task: TaskConfig{
			MaxRetries:    3,
			RetryInterval: time.Second,
			Buffer:        128,
		},
	}
}

// Validate validates the configuration.
// It updates the configuration with absolute paths.
func (c *Config) Validate() error {
	// Use absolute paths
	if !filepath.IsAbs(c.DataPath) {
		dp, err := filepath.Abs(c.DataPath)
		if err != nil {
			return err
		}
		c.DataPath = dp
	}

	c.HTTP.PublicURL = strings.TrimSuffix(c.HTTP.PublicURL, "/")
	c.HTTP.PreviewHost = strings.TrimSuffix(c.HTTP.PreviewHost, "/")

	if c.HTTP.PublicURL != "" {
		if _, err := url.ParseRequestURI(c.HTTP.PublicURL); err != nil {
			return fmt.Errorf("invalid public url %q: %w", c.HTTP.PublicURL, err)
		}
		if !contains(c.HTTP.CORS.AllowedOrigins, c.HTTP.PublicURL) {
			c.HTTP.CORS.AllowedOrigins = append([]string{c.HTTP.PublicURL}, c.HTTP.CORS.AllowedOrigins...)
		}
	}

	switch strings.ToLower(c.Environment) {
	case "":
		c.Environment = Development
	case Development, Production, Test:
		c.Environment = strings.ToLower(c.Environment)
	default:
		return fmt.Errorf("invalid environment %q", c.Environment)
	}

	switch c.RateLimit.Store {
	case "", "memory":
		c.RateLimit.Store = "memory"
	case "redis":
		if c.RateLimit.RedisURL == "" {
			return errors.New("rate limit redis store requires a redis url")
		}
	default:
		return fmt.Errorf("invalid rate limit store %q", c.RateLimit.Store)
	}

	if strings.HasPrefix(c.DB.Driver, "sqlite") && !filepath.IsAbs(c.DB.DataSource) {
		c.DB.DataSource = filepath.Join(c.DataPath, c.DB.DataSource)
	}

	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
