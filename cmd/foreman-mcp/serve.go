package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/theforeman/foreman-mcp/internal/bridge"
	"github.com/theforeman/foreman-mcp/internal/config"
	"github.com/theforeman/foreman-mcp/internal/logging"
)

func cmdServe(args []string) {
	cfg, stdio, err := serveConfig(args)
	if err != nil {
		if err == errHelpRequested {
			printServeUsage()
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	logging.SetDefault(logger)

	srv, err := bridge.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if stdio {
		err = srv.RunStdio(ctx)
	} else {
		err = srv.RunHTTP(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

var errHelpRequested = fmt.Errorf("help requested")

// serveConfig assembles the frozen config for the serve command:
// defaults, config files, environment, then flags.
func serveConfig(args []string) (*config.Config, bool, error) {
	var (
		cfg        *config.Config
		err        error
		stdio      bool
		configPath string
	)

	// An explicit --config skips the implicit user/project files.
	for i := 0; i < len(args); i++ {
		if args[i] == "--config" && i+1 < len(args) {
			configPath = args[i+1]
		}
	}
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			return nil, false, fmt.Errorf("getting current directory: %w", cwdErr)
		}
		cfg, err = config.Load(cwd)
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading config: %w", err)
	}

	cfg.ApplyEnv()

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config":
			i++ // consumed above
		case "--foreman-url":
			if i+1 < len(args) {
				cfg.ForemanURL = args[i+1]
				i++
			}
		case "--foreman-username":
			if i+1 < len(args) {
				cfg.Username = args[i+1]
				i++
			}
		case "--foreman-password":
			if i+1 < len(args) {
				cfg.Password = args[i+1]
				i++
			}
		case "--foreman-token":
			if i+1 < len(args) {
				cfg.Token = args[i+1]
				i++
			}
		case "--insecure":
			cfg.Insecure = true
		case "--timeout":
			if i+1 < len(args) {
				d, derr := time.ParseDuration(args[i+1])
				if derr != nil {
					return nil, false, fmt.Errorf("invalid --timeout %q: %w", args[i+1], derr)
				}
				cfg.RequestTimeout = d
				i++
			}
		case "--host":
			if i+1 < len(args) {
				cfg.Host = args[i+1]
				i++
			}
		case "--port", "-p":
			if i+1 < len(args) {
				port, perr := strconv.Atoi(args[i+1])
				if perr != nil {
					return nil, false, fmt.Errorf("invalid --port %q", args[i+1])
				}
				cfg.Port = port
				i++
			}
		case "--log-level":
			if i+1 < len(args) {
				cfg.LogLevel = args[i+1]
				i++
			}
		case "--log-format":
			if i+1 < len(args) {
				cfg.LogFormat = args[i+1]
				i++
			}
		case "--json-response":
			cfg.JSONResponse = true
		case "--stdio":
			stdio = true
		case "--help", "-h":
			return nil, false, errHelpRequested
		default:
			return nil, false, fmt.Errorf("unknown flag %q", args[i])
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	return cfg, stdio, nil
}

func printServeUsage() {
	fmt.Print(`foreman-mcp serve - Start the MCP server

Usage:
  foreman-mcp serve [options]

Options:
  --foreman-url URL        Foreman base URL (FOREMAN_MCP_URL)
  --foreman-username USER  Foreman username (default: admin)
  --foreman-password PASS  Foreman password (default: changeme)
  --foreman-token TOKEN    Bearer token; overrides basic auth
  --insecure               Skip TLS verification toward Foreman
  --timeout DURATION       Per-request Foreman timeout (default: 30s)
  --host HOST              Bind host (default: 127.0.0.1)
  --port, -p PORT          Bind port (default: 3000)
  --json-response          Streamable HTTP answers with JSON bodies
  --stdio                  Serve on stdin/stdout instead of HTTP
  --log-level LEVEL        DEBUG, INFO, WARN, ERROR (default: INFO)
  --log-format FORMAT      text or json (default: text)
  --config PATH            Explicit config file (skips the defaults)
  --help, -h               Show this help

Endpoints (HTTP mode):
  /sse      SSE transport
  /mcp      Streamable HTTP transport
  /healthz  Liveness probe

Configuration files (without --config):
  1. User config: ~/.config/foreman-mcp/config.kdl
  2. Project config: ./foreman-mcp.kdl

Project config overrides user config; environment and flags override both.
`)
}
