// Package config holds the validated, frozen configuration for the
// bridge. Configuration is assembled once at startup from defaults,
// KDL config files, environment variables and flags (in that order of
// precedence) and is read-only afterwards.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Built-in defaults. Bind address and port match the upstream
// foreman_mcp defaults.
const (
	DefaultHost     = "127.0.0.1"
	DefaultPort     = 3000
	DefaultUsername = "admin"
	DefaultPassword = "changeme"
	DefaultTimeout  = 30 * time.Second
	DefaultLogLevel = "INFO"
)

// Environment variable names understood by ApplyEnv.
const (
	EnvForemanURL = "FOREMAN_MCP_URL"
	EnvUsername   = "FOREMAN_MCP_USERNAME"
	EnvPassword   = "FOREMAN_MCP_PASSWORD"
	EnvToken      = "FOREMAN_MCP_TOKEN"
	EnvHost       = "FOREMAN_MCP_HOST"
	EnvPort       = "FOREMAN_MCP_PORT"
	EnvLogLevel   = "FOREMAN_MCP_LOG_LEVEL"
	EnvLogFormat  = "FOREMAN_MCP_LOG_FORMAT"
)

// Config is the bridge configuration. Foreman credentials are a single
// process-wide set; the bridge does not switch credentials per request.
type Config struct {
	// Foreman connection.
	ForemanURL string
	Username   string
	Password   string
	// Token selects bearer-token authentication. When set it takes
	// precedence over basic auth.
	Token string
	// Insecure disables TLS certificate verification toward Foreman.
	Insecure bool
	// RequestTimeout bounds each outbound Foreman call.
	RequestTimeout time.Duration

	// HTTP bind address for the MCP transports.
	Host string
	Port int
	// JSONResponse makes the Streamable HTTP transport answer with
	// plain JSON bodies instead of SSE streams.
	JSONResponse bool

	LogLevel  string
	LogFormat string
}

// Default returns a Config populated with built-in defaults.
func Default() *Config {
	return &Config{
		Username:       DefaultUsername,
		Password:       DefaultPassword,
		Host:           DefaultHost,
		Port:           DefaultPort,
		RequestTimeout: DefaultTimeout,
		LogLevel:       DefaultLogLevel,
	}
}

// ApplyEnv overlays environment variables onto the config. Unset
// variables leave the current value in place.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvForemanURL); v != "" {
		c.ForemanURL = v
	}
	if v := os.Getenv(EnvUsername); v != "" {
		c.Username = v
	}
	if v := os.Getenv(EnvPassword); v != "" {
		c.Password = v
	}
	if v := os.Getenv(EnvToken); v != "" {
		c.Token = v
	}
	if v := os.Getenv(EnvHost); v != "" {
		c.Host = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.LogFormat = v
	}
}

// Validate checks the config for startup-fatal problems. It must pass
// before the server core is constructed.
func (c *Config) Validate() error {
	if c.ForemanURL == "" {
		return fmt.Errorf("foreman URL is required")
	}
	u, err := url.Parse(c.ForemanURL)
	if err != nil {
		return fmt.Errorf("invalid foreman URL %q: %w", c.ForemanURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid foreman URL %q: scheme must be http or https", c.ForemanURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid foreman URL %q: missing host", c.ForemanURL)
	}
	if c.Token == "" && (c.Username == "" || c.Password == "") {
		return fmt.Errorf("foreman credentials required: either a token or username and password")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	return nil
}

// Addr returns the host:port bind address for the HTTP listener.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
