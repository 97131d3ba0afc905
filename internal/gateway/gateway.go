// ABOUTME: Gateway orchestrator that coordinates gRPC and HTTP servers
// ABOUTME: Builds the tool registry, per-agent handlers, store, and health endpoints

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"

	"github.com/2389/concierge-gateway/internal/agents"
	"github.com/2389/concierge-gateway/internal/auth"
	"github.com/2389/concierge-gateway/internal/config"
	"github.com/2389/concierge-gateway/internal/dedupe"
	"github.com/2389/concierge-gateway/internal/httpc"
	"github.com/2389/concierge-gateway/internal/restaurant"
	"github.com/2389/concierge-gateway/internal/store"
	"github.com/2389/concierge-gateway/internal/tools"
)

// ErrUnknownAgent is returned when a request names a category with no handler.
var ErrUnknownAgent = errors.New("unknown agent category")

// Gateway orchestrates the concierge-gateway server components.
type Gateway struct {
	config   *config.Config
	store    *store.SQLiteStore
	registry *tools.Registry
	handlers map[tools.AgentType]*tools.Handler
	catalog  *agents.Catalog
	logger   *slog.Logger

	// dedupe rejects tool_call_ids that were already dispatched
	dedupe *dedupe.Cache

	// limiter throttles tool-call requests per client; nil when disabled
	limiter *clientLimiter

	// verifier is nil when auth is disabled
	verifier *auth.JWTVerifier

	grpcServer *grpc.Server
	health     *health.Server
	httpServer *http.Server
}

// initStore opens the store named by config, letting CONCIERGE_DB_PATH override it.
func initStore(cfg *config.Config) (*store.SQLiteStore, error) {
	dbPath := cfg.Database.Path
	if envPath := os.Getenv("CONCIERGE_DB_PATH"); envPath != "" {
		dbPath = envPath
	}

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return s, nil
}

// newHandlers builds one tools.Handler per agent category.
func newHandlers(cfg *config.Config, registry *tools.Registry, recorder tools.Recorder, logger *slog.Logger) (map[tools.AgentType]*tools.Handler, error) {
	client := httpc.NewClient(cfg.Tools.Timeout)

	handlers := make(map[tools.AgentType]*tools.Handler, len(tools.AgentTypes))
	for _, agentType := range tools.AgentTypes {
		h, err := tools.NewHandler(tools.HandlerConfig{
			AgentType:          agentType,
			Registry:           registry,
			Client:             client,
			Logger:             logger.With("component", "tools"),
			Recorder:           recorder,
			ValidateParameters: cfg.Tools.ValidateParameters,
		})
		if err != nil {
			return nil, fmt.Errorf("creating %s handler: %w", agentType, err)
		}
		handlers[agentType] = h
	}
	return handlers, nil
}

// createGRPCServer creates a gRPC server, with the JWT interceptor when a verifier is given.
func createGRPCServer(verifier *auth.JWTVerifier, logger *slog.Logger) *grpc.Server {
	opts := []grpc.ServerOption{
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    15 * time.Second,
			Timeout: 5 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
	}
	if verifier != nil {
		opts = append(opts, grpc.ChainUnaryInterceptor(auth.UnaryInterceptor(verifier, logger)))
		logger.Info("gRPC auth interceptor enabled")
	} else {
		logger.Warn("gRPC auth disabled - no jwt_secret configured")
	}
	return grpc.NewServer(opts...)
}

// New creates a new Gateway instance with the given configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	registry, err := tools.NewRegistry(tools.DefaultDefinitions(cfg.ToolsBaseURL())...)
	if err != nil {
		return nil, fmt.Errorf("building tool registry: %w", err)
	}

	catalog, err := agents.NewCatalog(cfg.Voice.ConfigIDs)
	if err != nil {
		return nil, fmt.Errorf("building agent catalog: %w", err)
	}

	var verifier *auth.JWTVerifier
	if cfg.Auth.Enabled() {
		verifier, err = auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
		if err != nil {
			return nil, fmt.Errorf("creating JWT verifier: %w", err)
		}
	}

	s, err := initStore(cfg)
	if err != nil {
		return nil, err
	}

	if _, err := s.SeedMenu(context.Background(), restaurant.DefaultMenu()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("seeding menu: %w", err)
	}

	recorder := newStoreRecorder(s)
	handlers, err := newHandlers(cfg, registry, recorder, logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	gw := &Gateway{
		config:   cfg,
		store:    s,
		registry: registry,
		handlers: handlers,
		catalog:  catalog,
		logger:   logger.With("component", "gateway"),
		dedupe: dedupe.New(dedupe.Options{
			TTL:     cfg.Dedupe.TTL,
			MaxSize: cfg.Dedupe.MaxSize,
		}),
		limiter:  newClientLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
		verifier: verifier,
	}

	gw.grpcServer = createGRPCServer(verifier, logger.With("component", "grpc"))
	registerToolDispatchServer(gw.grpcServer, newToolDispatchServer(gw, logger.With("component", "grpc")))
	gw.health = health.NewServer()
	healthpb.RegisterHealthServer(gw.grpcServer, gw.health)

	gw.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           gw.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	gw.logger.Info("gateway initialized",
		"tools", registry.Len(),
		"tools_base_url", cfg.ToolsBaseURL(),
		"auth", cfg.Auth.Enabled(),
	)
	return gw, nil
}

// routes builds the HTTP mux: health, restaurant backend, and API.
func (g *Gateway) routes() http.Handler {
	mux := http.NewServeMux()

	// Health endpoints - no auth required
	mux.HandleFunc("GET /health", g.handleHealth)
	mux.HandleFunc("GET /health/ready", g.handleReady)

	// Restaurant backend - called by the tools themselves
	restaurant.NewHandler(g.store, g.logger).Register(mux)

	g.registerHTTPAPIRoutes(mux)
	return mux
}

// registerHTTPAPIRoutes registers API routes, behind the auth middleware when auth is enabled.
func (g *Gateway) registerHTTPAPIRoutes(mux *http.ServeMux) {
	protect := func(h http.HandlerFunc) http.Handler { return h }
	if g.verifier != nil {
		middleware := auth.HTTPMiddleware(g.verifier, g.logger)
		protect = func(h http.HandlerFunc) http.Handler { return middleware(h) }
		g.logger.Info("HTTP auth middleware enabled")
	} else {
		g.logger.Warn("HTTP auth disabled - no jwt_secret configured")
	}

	mux.HandleFunc("GET /api/agents", g.handleListAgents)
	mux.HandleFunc("GET /api/agents/{category}/tools", g.handleListTools)
	mux.Handle("POST /api/agents/{category}/tool-calls", protect(g.handleToolCall))
	mux.Handle("GET /api/tool-calls", protect(g.handleListToolCalls))
}

// ToolHandler returns the handler bound to agentType.
func (g *Gateway) ToolHandler(agentType tools.AgentType) (*tools.Handler, error) {
	h, ok := g.handlers[agentType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAgent, agentType)
	}
	return h, nil
}

// HTTPHandler returns the gateway's HTTP handler, for tests and embedding.
func (g *Gateway) HTTPHandler() http.Handler {
	return g.httpServer.Handler
}

// Registry returns the tool registry.
func (g *Gateway) Registry() *tools.Registry {
	return g.registry
}

// setupTCPListeners creates standard TCP listeners for gRPC and HTTP.
func (g *Gateway) setupTCPListeners() (grpcLn, httpLn net.Listener, err error) {
	g.logger.Info("starting gateway",
		"grpc_addr", g.config.Server.GRPCAddr,
		"http_addr", g.config.Server.HTTPAddr,
	)

	httpLn, err = net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("listening on HTTP address: %w", err)
	}

	if g.config.Server.GRPCAddr == "" {
		return nil, httpLn, nil
	}

	grpcLn, err = net.Listen("tcp", g.config.Server.GRPCAddr)
	if err != nil {
		_ = httpLn.Close()
		return nil, nil, fmt.Errorf("listening on gRPC address: %w", err)
	}
	return grpcLn, httpLn, nil
}

// startServers starts the servers in goroutines, returning their error channel.
// A nil grpcLn leaves the gRPC server unstarted.
func (g *Gateway) startServers(grpcLn, httpLn net.Listener) chan error {
	errCh := make(chan error, 2)

	if grpcLn != nil {
		go func() {
			g.logger.Info("gRPC server listening", "addr", grpcLn.Addr().String())
			if err := g.grpcServer.Serve(grpcLn); err != nil {
				errCh <- fmt.Errorf("gRPC server: %w", err)
			}
		}()
	}

	go func() {
		g.logger.Info("HTTP server listening", "addr", httpLn.Addr().String())
		if err := g.httpServer.Serve(httpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	return errCh
}

// waitForShutdownSignal waits for context cancellation or server error.
func (g *Gateway) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		g.logger.Error("server error", "error", err)
		return err
	}
}

// Run starts the gateway servers and blocks until the context is canceled.
// Returns nil on graceful shutdown (context canceled), or an error if a server fails.
func (g *Gateway) Run(ctx context.Context) error {
	grpcListener, httpListener, err := g.setupTCPListeners()
	if err != nil {
		return err
	}

	g.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	errCh := g.startServers(grpcListener, httpListener)
	serverErr := g.waitForShutdownSignal(ctx, errCh)

	shutdownErr := g.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context, since the run context is already canceled.
func (g *Gateway) gracefulShutdown() error {
	timeout := g.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return g.Shutdown(ctx)
}

// shutdownGRPCServer gracefully stops the gRPC server or force-stops on context cancel.
func (g *Gateway) shutdownGRPCServer(ctx context.Context) {
	stopped := make(chan struct{})
	go func() {
		g.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
		g.grpcServer.Stop()
	}
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown gracefully stops all gateway servers and releases resources.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")
	g.health.Shutdown()

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", g.httpServer.Shutdown(ctx))

	g.shutdownGRPCServer(ctx)

	errs = appendCloseError(errs, "store close", g.store.Close())

	return errors.Join(errs...)
}

// handleHealth returns 200 OK if the server is alive.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK once the store answers a ping.
func (g *Gateway) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := g.store.Ping(ctx); err != nil {
		g.logger.Warn("readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "ready (%d tools)", g.registry.Len())
}
