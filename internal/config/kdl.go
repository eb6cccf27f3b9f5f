package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	kdl "github.com/sblinch/kdl-go"
)

const (
	ProjectConfigFile = "foreman-mcp.kdl"
	UserConfigDir     = "foreman-mcp"
	UserConfigFile    = "config.kdl"
)

// kdlFile is the raw KDL structure for unmarshaling.
//
// Example:
//
//	foreman {
//	    url "https://foreman.example.com"
//	    username "admin"
//	    password "changeme"
//	    insecure true
//	    timeout "30s"
//	}
//	server {
//	    host "127.0.0.1"
//	    port 3000
//	    json-response true
//	}
//	log {
//	    level "debug"
//	    format "json"
//	}
type kdlFile struct {
	Foreman kdlForeman `kdl:"foreman"`
	Server  kdlServer  `kdl:"server"`
	Log     kdlLog     `kdl:"log"`
}

type kdlForeman struct {
	URL      string `kdl:"url"`
	Username string `kdl:"username"`
	Password string `kdl:"password"`
	Token    string `kdl:"token"`
	Insecure bool   `kdl:"insecure"`
	Timeout  string `kdl:"timeout"`
}

type kdlServer struct {
	Host         string `kdl:"host"`
	Port         int    `kdl:"port"`
	JSONResponse bool   `kdl:"json-response"`
}

type kdlLog struct {
	Level  string `kdl:"level"`
	Format string `kdl:"format"`
}

// UserConfigPath returns the path to the user config file.
func UserConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, UserConfigDir, UserConfigFile)
}

// ProjectConfigPath returns the path to the project config file.
func ProjectConfigPath(dir string) string {
	return filepath.Join(dir, ProjectConfigFile)
}

// Load builds a Config from defaults, the user config file and the
// project config file in dir. Missing files are not an error. The
// environment is applied on top by the caller.
func Load(dir string) (*Config, error) {
	cfg := Default()

	if path := UserConfigPath(); path != "" {
		if err := mergeFile(cfg, path); err != nil {
			return nil, fmt.Errorf("user config %s: %w", path, err)
		}
	}
	if err := mergeFile(cfg, ProjectConfigPath(dir)); err != nil {
		return nil, fmt.Errorf("project config %s: %w", ProjectConfigPath(dir), err)
	}

	return cfg, nil
}

// LoadFile builds a Config from defaults plus a single explicit file.
// The file must exist.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := mergeKDL(cfg, data); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return mergeKDL(cfg, data)
}

// mergeKDL overlays non-empty values from a KDL document onto cfg.
func mergeKDL(cfg *Config, data []byte) error {
	var raw kdlFile
	if err := kdl.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Foreman.URL != "" {
		cfg.ForemanURL = raw.Foreman.URL
	}
	if raw.Foreman.Username != "" {
		cfg.Username = raw.Foreman.Username
	}
	if raw.Foreman.Password != "" {
		cfg.Password = raw.Foreman.Password
	}
	if raw.Foreman.Token != "" {
		cfg.Token = raw.Foreman.Token
	}
	if raw.Foreman.Insecure {
		cfg.Insecure = true
	}
	if raw.Foreman.Timeout != "" {
		d, err := time.ParseDuration(raw.Foreman.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", raw.Foreman.Timeout, err)
		}
		cfg.RequestTimeout = d
	}

	if raw.Server.Host != "" {
		cfg.Host = raw.Server.Host
	}
	if raw.Server.Port != 0 {
		cfg.Port = raw.Server.Port
	}
	if raw.Server.JSONResponse {
		cfg.JSONResponse = true
	}

	if raw.Log.Level != "" {
		cfg.LogLevel = raw.Log.Level
	}
	if raw.Log.Format != "" {
		cfg.LogFormat = raw.Log.Format
	}

	return nil
}
