package config

import (
	"bytes"
	"text/template"
)

var configFileTmpl = template.Must(template.New("config").Parse(`# Pathway configuration

# The name of the application.
name: "{{ .Name }}"

# The environment. Valid values are "development", "production" and "test".
# Production rejects state-changing requests that carry neither an Origin nor
# a Referer header.
environment: "{{ .Environment }}"

# Logging configuration.
log:
  # Log format to use. Valid values are "json", "logfmt", and "text".
  format: "{{ .Log.Format }}"
  # Time format for the log "timestamp" field.
  # Should be described in Golang's time format.
  time_format: "{{ .Log.TimeFormat }}"
  # Path to the log file. Leave empty to write to stderr.
  #path: "{{ .Log.Path }}"

# The HTTP server configuration.
http:
  # The address on which the HTTP server will listen.
  listen_addr: "{{ .HTTP.ListenAddr }}"

  # The public URL of the application. Always a trusted origin.
  public_url: "{{ .HTTP.PublicURL }}"

  # Host of a preview deployment, trusted over https.
  #preview_host: "{{ .HTTP.PreviewHost }}"

  # Additional trusted origins. Glob patterns are allowed.
  #allowed_origins:
  #  - "https://*.example.com"

  # Reject requests without Origin and Referer in every environment.
  strict_origin: {{ .HTTP.StrictOrigin }}

# The stats server configuration.
stats:
  # The address on which the stats server will listen.
  listen_addr: "{{ .Stats.ListenAddr }}"

# The database configuration.
db:
  # The database driver to use.
  # Valid values are "sqlite" and "postgres".
  driver: "{{ .DB.Driver }}"
  # The database data source name.
  # This is driver specific and can be a file path or connection string.
  data_source: "{{ .DB.DataSource }}"

# Session tokens.
auth:
  # Lifetime of the tokens minted by the server.
  token_expiry: "{{ .Auth.TokenExpiry }}"

# In-process jobs.
jobs:
  # Popularity recompute schedule. Leave empty to rely on the cron endpoint.
  popularity: "{{ .Jobs.Popularity }}"

# Request throttling.
rate_limit:
  enabled: {{ .RateLimit.Enabled }}
  # Valid values are "memory" and "redis".
  store: "{{ .RateLimit.Store }}"
  #redis_url: "redis://localhost:6379/0"
  # How often expired in-memory windows are purged.
  sweep_interval: "{{ .RateLimit.SweepInterval }}"

# Notification emails. Leave the host empty to only log them.
email:
  #host: "smtp.example.com"
  port: {{ .Email.Port }}
  from: "{{ .Email.From }}"

# Embedding search.
search:
  #endpoint: "https://api.openai.com/v1/embeddings"
  model: "{{ .Search.Model }}"
  timeout: "{{ .Search.Timeout }}"

# Background tasks.
task:
  max_retries: {{ .Task.MaxRetries }}
  retry_interval: "{{ .Task.RetryInterval }}"
  buffer: {{ .Task.Buffer }}
`))

func newConfigFile(cfg *Config) string {
	var b bytes.Buffer
	configFileTmpl.Execute(&b, cfg) // nolint: errcheck
	return b.String()
}
