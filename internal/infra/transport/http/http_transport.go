package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/mkrupp/newsletterhub/internal/infra/logging"
)

// HTTPTransportConfig contains configuration parameters for HTTP servers.
type HTTPTransportConfig struct {
	// ServerAddr is the network address to listen on
	ServerAddr string `env:"SERVER_ADDR" default:":4000"`

	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" default:"5s"`
	ReadTimeout       time.Duration `env:"READ_TIMEOUT" default:"10s"`
	WriteTimeout      time.Duration `env:"WRITE_TIMEOUT" default:"10s"`
	// ShutdownTimeout bounds the graceful shutdown after the context is cancelled
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`

	// CORSAllowOrigin is sent as Access-Control-Allow-Origin on every response
	CORSAllowOrigin string `env:"CORS_ALLOW_ORIGIN" default:"*"`
	// StaticDir is served for non-API paths, empty disables it
	StaticDir string `env:"STATIC_DIR" default:"client"`
}

// HTTPTransport is implemented by services exposing routes on the shared mux.
type HTTPTransport interface {
	Mount(mux *http.ServeMux)
}

// NewServeMux mounts the given transports on a new mux. Unmatched /api/ paths
// are answered with a JSON 404, everything else falls through to the static
// client when cfg.StaticDir is set.
func NewServeMux(cfg HTTPTransportConfig, transports ...HTTPTransport) *http.ServeMux {
	mux := http.NewServeMux()

	for _, transport := range transports {
		transport.Mount(mux)
	}

	mux.HandleFunc("/api/", HandleNotFound)

	if cfg.StaticDir != "" {
		mux.Handle("/", NewStaticHandler(cfg.StaticDir))
	} else {
		mux.HandleFunc("/", HandleNotFound)
	}

	return mux
}

// HandleNotFound answers with a JSON 404.
func HandleNotFound(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusNotFound, MessageResponse{Message: "Not found"})
}

// NewHandler wraps handler with the standard middleware chain.
func NewHandler(handler http.Handler, cfg HTTPTransportConfig, log logging.Logger) http.Handler {
	handler = CORSMiddleware(handler, cfg.CORSAllowOrigin)
	handler = RescueingMiddleware(handler, log)
	handler = LoggingMiddleware(handler, log)
	handler = TracingMiddleware(handler)

	return handler
}

// ListenAndServe serves handler until ctx is cancelled, then shuts the server
// down gracefully within cfg.ShutdownTimeout.
func ListenAndServe(ctx context.Context, handler http.Handler, cfg HTTPTransportConfig) (err error) {
	log := logging.GetLogger("infra.transport.http")

	//nolint:exhaustruct
	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           NewHandler(handler, cfg, log),
		ErrorLog:          logging.GetLogLogger(log, logging.LevelError),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	sock, err := net.Listen("tcp", cfg.ServerAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	log.InfoContext(ctx, "listening", "addr", sock.Addr().String())

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- server.Serve(sock)
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}

		return nil
	case <-ctx.Done():
	}

	log.InfoContext(ctx, "shutting down", "timeout", cfg.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		_ = server.Close()

		return fmt.Errorf("shutdown: %w", err)
	}

	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	return nil
}
