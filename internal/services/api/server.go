// Package api exposes copier commands over a small JSON HTTP interface.
//
// Routes:
//
//	GET  /capabilities        lists the registered commands
//	GET  /healthz             reports liveness
//	POST /commands/{command}  runs a command with the request body as payload
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultListenAddress binds an ephemeral loopback port.
	DefaultListenAddress = "127.0.0.1:0"

	defaultShutdownTimeout = 5 * time.Second
	defaultMaxPayloadBytes = 1 << 20
	readHeaderTimeout      = 10 * time.Second

	routeCapabilities = "GET /capabilities"
	routeHealth       = "GET /healthz"
	routeCommand      = "POST /commands/{command}"
	commandPathValue  = "command"

	contentTypeHeader = "Content-Type"
	contentTypeJSON   = "application/json"
	healthStatusOK    = "ok"

	errorUnknownCommandFormat = "unknown command %q"
	logRequestHandled         = "request handled"
	logCommandRejected        = "command rejected"
)

// Capability names a command the server can run.
type Capability struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Request is what an Executor receives: the command name from the path and the raw body.
type Request struct {
	Command string
	Payload json.RawMessage
}

// Response is the JSON body of a successful command.
type Response struct {
	Output   string   `json:"output"`
	Format   string   `json:"format"`
	Warnings []string `json:"warnings,omitempty"`
}

// Executor runs one command.
type Executor interface {
	Execute(ctx context.Context, request Request) (Response, error)
}

// ExecutorFunc lets a plain function serve as an Executor.
type ExecutorFunc func(context.Context, Request) (Response, error)

// Execute calls function.
func (function ExecutorFunc) Execute(ctx context.Context, request Request) (Response, error) {
	return function(ctx, request)
}

// StatusError carries the HTTP status an executor wants reported for err.
// Errors of any other type are reported as 500.
type StatusError struct {
	Status int
	Err    error
}

func (statusError StatusError) Error() string {
	return statusError.Err.Error()
}

func (statusError StatusError) Unwrap() error {
	return statusError.Err
}

// NewStatusError returns nil when err is nil.
func NewStatusError(status int, err error) error {
	if err == nil {
		return nil
	}
	return StatusError{Status: status, Err: err}
}

// Options configure a Server. Zero values select the defaults.
type Options struct {
	Address         string
	Capabilities    []Capability
	Executors       map[string]Executor
	ShutdownTimeout time.Duration
	MaxPayloadBytes int64
	Logger          *zap.Logger
}

// Server routes HTTP requests to executors.
type Server struct {
	options Options
}

// New applies defaults to options.
func New(options Options) *Server {
	if options.Address == "" {
		options.Address = DefaultListenAddress
	}
	if options.ShutdownTimeout <= 0 {
		options.ShutdownTimeout = defaultShutdownTimeout
	}
	if options.MaxPayloadBytes <= 0 {
		options.MaxPayloadBytes = defaultMaxPayloadBytes
	}
	if options.Capabilities == nil {
		options.Capabilities = []Capability{}
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	return &Server{options: options}
}

// Handler returns the routed handler, wrapped with request logging.
func (server *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(routeCapabilities, server.serveCapabilities)
	mux.HandleFunc(routeHealth, server.serveHealth)
	mux.HandleFunc(routeCommand, server.serveCommand)
	return server.logRequests(mux)
}

// Run listens on the configured address and serves until ctx is canceled, then shuts down
// gracefully. ready, when set, receives the bound address before requests are accepted.
func (server *Server) Run(ctx context.Context, ready func(address string)) error {
	listener, err := net.Listen("tcp", server.options.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", server.options.Address, err)
	}
	if ready != nil {
		ready(listener.Addr().String())
	}

	httpServer := &http.Server{
		Handler:           server.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if serveErr := httpServer.Serve(listener); !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", serveErr)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), server.options.ShutdownTimeout)
		defer cancel()
		if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			return fmt.Errorf("shutdown: %w", shutdownErr)
		}
		return nil
	})
	return group.Wait()
}

func (server *Server) serveCapabilities(writer http.ResponseWriter, _ *http.Request) {
	writeJSON(writer, http.StatusOK, map[string][]Capability{"capabilities": server.options.Capabilities})
}

func (server *Server) serveHealth(writer http.ResponseWriter, _ *http.Request) {
	writeJSON(writer, http.StatusOK, map[string]string{"status": healthStatusOK})
}

func (server *Server) serveCommand(writer http.ResponseWriter, request *http.Request) {
	command := request.PathValue(commandPathValue)
	executor, registered := server.options.Executors[command]
	if !registered {
		writeError(writer, http.StatusNotFound, fmt.Errorf(errorUnknownCommandFormat, command))
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(writer, request.Body, server.options.MaxPayloadBytes))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(writer, status, fmt.Errorf("read payload: %w", err))
		return
	}

	response, err := executor.Execute(request.Context(), Request{Command: command, Payload: payload})
	if err != nil {
		status := http.StatusInternalServerError
		var statusError StatusError
		if errors.As(err, &statusError) {
			status = statusError.Status
		}
		server.options.Logger.Warn(logCommandRejected, zap.String("command", command), zap.Int("status", status), zap.Error(err))
		writeError(writer, status, err)
		return
	}
	writeJSON(writer, http.StatusOK, response)
}

// statusRecorder remembers the status written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(status int) {
	recorder.status = status
	recorder.ResponseWriter.WriteHeader(status)
}

func (server *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}
		next.ServeHTTP(recorder, request)
		server.options.Logger.Debug(logRequestHandled,
			zap.String("method", request.Method),
			zap.String("path", request.URL.Path),
			zap.Int("status", recorder.status),
			zap.Duration("elapsed", time.Since(started)),
		)
	})
}

func writeError(writer http.ResponseWriter, status int, err error) {
	writeJSON(writer, status, map[string]string{"error": err.Error()})
}

func writeJSON(writer http.ResponseWriter, status int, body any) {
	encoded, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		encoded = []byte(`{"error":"encode response"}`)
	}
	writer.Header().Set(contentTypeHeader, contentTypeJSON)
	writer.WriteHeader(status)
	_, _ = writer.Write(append(encoded, '\n'))
}
