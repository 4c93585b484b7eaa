package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/aimeelabs/aimee-backend/internal/agents"
	"github.com/aimeelabs/aimee-backend/internal/classifier"
	"github.com/aimeelabs/aimee-backend/internal/config"
	"github.com/aimeelabs/aimee-backend/internal/handlers"
	"github.com/aimeelabs/aimee-backend/internal/logger"
	"github.com/aimeelabs/aimee-backend/internal/memory"
	"github.com/aimeelabs/aimee-backend/internal/middleware"
	"github.com/aimeelabs/aimee-backend/internal/prompts"
	routerpkg "github.com/aimeelabs/aimee-backend/internal/router"
	"github.com/aimeelabs/aimee-backend/internal/services/ai"
	"github.com/aimeelabs/aimee-backend/internal/telemetry"
)

const serviceName = "aimee-backend"

func main() {
	// Parse command-line flags
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging and the route debug endpoint")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override debug mode if flag is set
	debugMode := cfg.ServerDebugMode || *debugFlag

	// Initialize logger
	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := zapLogger.Sync(); syncErr != nil {
			// Ignore sync errors in production
			_ = syncErr
		}
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("memory_file", cfg.MemoryFile),
		zap.String("ai_provider", cfg.AIProvider),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// Initialize OpenTelemetry if enabled
	var tracerProvider interface{ Shutdown(context.Context) error }
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), serviceName, cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized",
					zap.String("endpoint", cfg.OTELEndpoint),
				)
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// Open the memory store
	store, err := memory.NewJSONStore(cfg.MemoryFile, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_open_memory_store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			zapLogger.Warn("failed_to_close_memory_store", zap.Error(err))
		}
	}()
	zapLogger.Info("memory_store_ready", zap.String("path", cfg.MemoryFile))

	// Load agent prompts (embedded defaults, overlaid from PROMPTS_FILE)
	promptSet := prompts.Load(cfg.PromptsFile, zapLogger)

	// Initialize AI provider; a missing key degrades to canned responses
	aiProvider, err := createAIProvider(cfg, zapLogger, debugMode)
	if err != nil {
		zapLogger.Warn("ai_provider_unavailable_using_canned_responses", zap.Error(err))
		aiProvider = nil
	}

	// Assemble the closed agent set, classifier, and router
	registry := agents.NewRegistry(
		agents.NewNavigationAgent(aiProvider, promptSet, zapLogger),
		agents.NewHistoryAgent(aiProvider, promptSet, zapLogger),
		agents.NewExperienceAgent(aiProvider, promptSet, zapLogger),
		agents.NewPersonalizationAgent(aiProvider, promptSet, store, zapLogger),
	)
	cls := classifier.New(zapLogger)
	rt := routerpkg.New(cls, registry, zapLogger)

	sessions := handlers.NewSessionTracker()
	chatHandler := handlers.NewChatHandler(rt, store, sessions, zapLogger)
	arrivalHandler := handlers.NewArrivalHandler(store, registry, zapLogger)
	healthChecker := handlers.NewHealthChecker(store)

	// Setup router
	r := mux.NewRouter()

	// Note: In gorilla/mux, middleware executes in registration order, so
	// the first registered wraps everything after it.
	if cfg.OTELEnabled && tracerProvider != nil {
		r.Use(otelmux.Middleware(serviceName))
		zapLogger.Info("otel_middleware_enabled")
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	rateLimitMW, err := middleware.RateLimit(cfg.RateLimit)
	if err != nil {
		zapLogger.Fatal("invalid_rate_limit", zap.String("rate", cfg.RateLimit), zap.Error(err))
	}

	// Public routes (no rate limiting for health checks)
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/health", healthCheck).Methods("GET") // Legacy endpoint
	r.HandleFunc("/version", versionInfo).Methods("GET")

	// Conversational routes
	apiRouter := r.PathPrefix("").Subrouter()
	apiRouter.Use(rateLimitMW)
	chatHandler.RegisterRoutes(apiRouter)
	arrivalHandler.RegisterRoutes(apiRouter)

	// Route inspection only in debug mode
	if debugMode {
		debugHandler := handlers.NewRouteDebugHandler(rt)
		debugHandler.RegisterRoutes(apiRouter)
		zapLogger.Info("route_debug_endpoint_enabled")
	}

	// Catch-all OPTIONS handler for preflight requests
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Setup server
	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("server_starting",
			zap.String("port", cfg.ServerPort),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// createAIProvider creates an AI provider based on configuration
func createAIProvider(cfg *config.Config, logger *zap.Logger, debugMode bool) (ai.CompletionProvider, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key not configured")
	}

	providerType := cfg.AIProvider
	if providerType == "" {
		providerType = "openai"
	}

	// Create provider directly with logger support
	if providerType == "openai" {
		return ai.NewOpenAIProviderWithLogger(
			cfg.OpenAIKey,
			cfg.AIBaseURL,
			cfg.AIModel,
			logger,
			debugMode,
		), nil
	}

	// Fallback to registry for other providers (without logger)
	registry := ai.NewProviderRegistry()
	ai.RegisterOpenAI(registry)

	providerConfig := map[string]string{
		"api_key":  cfg.OpenAIKey,
		"model":    cfg.AIModel,
		"base_url": cfg.AIBaseURL,
	}

	return registry.GetProvider(providerType, providerConfig)
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprintf(w, `{"status":"ok","timestamp":"%s"}`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = err
	}
}

func versionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	// Only expose minimal version info (sanitized for security)
	if _, err := fmt.Fprintf(w, `{"version":"1.0.0","timestamp":"%s"}`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = err
	}
}
