package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/jrazmi/todolist/sdk/environment"
)

// WebHandler is the application's http.Handler.
type WebHandler struct {
	mux       *http.ServeMux
	log       *slog.Logger
	telemetry Telemetry

	corsOrigins    []string
	defaultHeaders map[string]string

	globalMiddleware []Middleware

	mu        sync.Mutex
	preflight map[string]bool
}

// HandlerOptions is the exportable configuration struct.
type HandlerOptions struct {
	CORSOrigins    []string `env:"CORS_ORIGINS" default:"*" separator:","`
	DefaultHeaders map[string]string
}

// HandlerOption overrides configuration at construction.
type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	log              *slog.Logger
	telemetry        Telemetry
	corsOrigins      []string
	defaultHeaders   map[string]string
	globalMiddleware []Middleware
}

// WithLogging sets the logger used for response write failures.
func WithLogging(log *slog.Logger) HandlerOption {
	return func(o *handlerOptions) {
		o.log = log
	}
}

// WithTelemetry sets the trace id provider.
func WithTelemetry(tel Telemetry) HandlerOption {
	return func(o *handlerOptions) {
		o.telemetry = tel
	}
}

// WithCORS replaces the allowed CORS origins.
func WithCORS(origins []string) HandlerOption {
	return func(o *handlerOptions) {
		o.corsOrigins = origins
	}
}

// WithDefaultHeaders adds headers set on every response.
func WithDefaultHeaders(headers map[string]string) HandlerOption {
	return func(o *handlerOptions) {
		if o.defaultHeaders == nil {
			o.defaultHeaders = make(map[string]string)
		}
		for k, v := range headers {
			o.defaultHeaders[k] = v
		}
	}
}

// WithGlobalMiddleware appends middleware applied to every route, outermost
// first.
func WithGlobalMiddleware(middleware ...Middleware) HandlerOption {
	return func(o *handlerOptions) {
		o.globalMiddleware = append(o.globalMiddleware, middleware...)
	}
}

// NewWebHandlerFromEnv builds a handler from <prefix>_CORS_ORIGINS and opts.
func NewWebHandlerFromEnv(prefix string, opts ...HandlerOption) (*WebHandler, error) {
	var options HandlerOptions
	if err := environment.ParseEnvTags(prefix, &options); err != nil {
		return nil, fmt.Errorf("parsing webhandler config: %w", err)
	}
	return NewWebHandler(options, opts...), nil
}

// NewWebHandler builds a handler from cfg and opts.
func NewWebHandler(cfg HandlerOptions, opts ...HandlerOption) *WebHandler {
	o := &handlerOptions{
		corsOrigins:    cfg.CORSOrigins,
		defaultHeaders: make(map[string]string),
	}
	for k, v := range cfg.DefaultHeaders {
		o.defaultHeaders[k] = v
	}
	for _, opt := range opts {
		opt(o)
	}

	wh := &WebHandler{
		mux:              http.NewServeMux(),
		log:              o.log,
		telemetry:        o.telemetry,
		corsOrigins:      o.corsOrigins,
		defaultHeaders:   o.defaultHeaders,
		globalMiddleware: o.globalMiddleware,
		preflight:        make(map[string]bool),
	}

	// CORS runs before everything else, including error handling.
	if len(wh.corsOrigins) > 0 {
		wh.globalMiddleware = append([]Middleware{wh.corsMiddleware()}, wh.globalMiddleware...)
	}

	return wh
}

// Handle registers handler for method and path behind the global middleware
// and any route middleware.
func (wh *WebHandler) Handle(method, path string, handler HandlerFunc, middleware ...Middleware) {
	final := wh.buildHandlerChain(handler, middleware...)
	wh.mux.HandleFunc(fmt.Sprintf("%s %s", strings.ToUpper(method), path), wh.adapt(final))

	if len(wh.corsOrigins) > 0 {
		wh.registerPreflight(path)
	}
}

// registerPreflight routes OPTIONS for path once, through the global chain
// only, so the CORS middleware can answer it.
func (wh *WebHandler) registerPreflight(path string) {
	wh.mu.Lock()
	defer wh.mu.Unlock()

	if wh.preflight[path] {
		return
	}
	wh.preflight[path] = true

	noop := func(context.Context, *http.Request) Encoder { return NewNoResponse() }
	wh.mux.HandleFunc("OPTIONS "+path, wh.adapt(wh.buildHandlerChain(noop)))
}

func (wh *WebHandler) adapt(final HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if wh.telemetry != nil {
			ctx = wh.telemetry.SetTraceID(ctx)
		}
		ctx = setWriter(ctx, w)

		for k, v := range wh.defaultHeaders {
			w.Header().Set(k, v)
		}

		resp := final(ctx, r)

		if err := Respond(ctx, w, resp); err != nil && wh.log != nil {
			wh.log.ErrorContext(ctx, "respond error", "error", err)
		}
	}
}

// HandleRaw registers a plain http.Handler. Global middleware is not applied.
func (wh *WebHandler) HandleRaw(pattern string, handler http.Handler) {
	wh.mux.Handle(pattern, handler)
}

func (wh *WebHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wh.mux.ServeHTTP(w, r)
}
