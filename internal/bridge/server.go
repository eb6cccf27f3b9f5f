// Package bridge is the core of foreman-mcp: it exposes Foreman
// management operations as MCP tools over SSE and Streamable HTTP.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/theforeman/foreman-mcp/internal/config"
	"github.com/theforeman/foreman-mcp/internal/foreman"
	"github.com/theforeman/foreman-mcp/internal/logging"
)

const (
	serverName    = "foreman-mcp"
	serverVersion = "0.1.0"
)

// HTTP mount points for the two MCP transports.
const (
	SSEPath        = "/sse"
	StreamablePath = "/mcp"
)

const shutdownTimeout = 10 * time.Second

// Server composes the Foreman client, the tool registry and the
// dispatch engine behind an MCP server.
type Server struct {
	mcpServer  *mcp.Server
	registry   *Registry
	dispatcher *Dispatcher
	client     *foreman.Client
	cfg        *config.Config
	logger     logging.Logger
}

// New creates a Server from a validated config. Construction fails
// only on startup-fatal problems (bad Foreman URL, broken tool table);
// Foreman being unreachable is not fatal, every call reports it.
func New(cfg *config.Config, logger logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.Default()
	}

	client, err := foreman.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	registry, err := NewToolRegistry()
	if err != nil {
		return nil, fmt.Errorf("build tool registry: %w", err)
	}

	s := &Server{
		registry:   registry,
		dispatcher: NewDispatcher(registry, client, logger, cfg.RequestTimeout),
		client:     client,
		cfg:        cfg,
		logger:     logger,
	}

	s.mcpServer = mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: serverVersion,
		},
		&mcp.ServerOptions{
			Capabilities: &mcp.ServerCapabilities{
				Tools: &mcp.ToolCapabilities{},
			},
		},
	)

	s.registerTools()

	return s, nil
}

// Registry returns the static tool registry.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Dispatcher returns the dispatch engine.
func (s *Server) Dispatcher() *Dispatcher {
	return s.dispatcher
}

// Run serves MCP over the given transport until ctx is cancelled.
func (s *Server) Run(ctx context.Context, t mcp.Transport) error {
	return s.mcpServer.Run(ctx, t)
}

// RunStdio runs the server on stdin/stdout.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the HTTP handler serving both MCP transports: SSE
// at /sse (message POSTs are correlated by session id on the same
// mount) and Streamable HTTP at /mcp. Streamable sessions are
// stateless, matching the transport's single-exchange character.
func (s *Server) Handler() http.Handler {
	sseHandler := mcp.NewSSEHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)

	streamableHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, &mcp.StreamableHTTPOptions{
		Stateless:    true,
		JSONResponse: s.cfg.JSONResponse,
	})

	mux := http.NewServeMux()
	mux.Handle(SSEPath, sseHandler)
	mux.Handle(StreamablePath, streamableHandler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	return mux
}

// RunHTTP serves both HTTP transports on the configured bind address
// until ctx is cancelled, then drains with a bounded shutdown.
func (s *Server) RunHTTP(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.cfg.Addr(),
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	s.logger.Info("foreman-mcp server running",
		"addr", httpServer.Addr,
		"sse", SSEPath,
		"streamable", StreamablePath,
		"foreman", s.cfg.ForemanURL,
		"tools", s.registry.Len(),
	)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
