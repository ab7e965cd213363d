package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resumeforge/internal/ai"
	"resumeforge/internal/billing"
	"resumeforge/internal/config"
	"resumeforge/internal/observability"
	"resumeforge/internal/rag"
	"resumeforge/internal/render"
	"resumeforge/internal/store"
)

// Start starts the HTTP server with all configured components
func (s *Server) Start() error {
	om, err := s.initializeObservability()
	if err != nil {
		return err
	}
	defer s.shutdownObservability(om)

	if err := s.initializeStorage(om); err != nil {
		return err
	}

	s.initializeRetrieval()
	s.initializeRendering()
	s.initializeBilling()
	s.startPromptWatcher()

	httpServer, err := s.setupHTTPServer(om)
	if err != nil {
		return err
	}

	if err := s.configureTLS(httpServer); err != nil {
		return err
	}

	s.displayServerInfo()

	return s.startWithGracefulShutdown(httpServer)
}

// initializeObservability sets up observability components
func (s *Server) initializeObservability() (*observability.ObservabilityManager, error) {
	obsConfig := observability.GetObservabilityConfig(s.AppConfig, s.Version)

	om, err := observability.NewObservabilityManager(obsConfig, s.AppConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	return om, nil
}

// shutdownObservability handles observability cleanup
func (s *Server) shutdownObservability(om *observability.ObservabilityManager) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := om.Shutdown(ctx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown observability")
	}
}

// initializeStorage connects the database pool and wires the repositories.
// Skipped entirely when no DSN is configured.
func (s *Server) initializeStorage(om *observability.ObservabilityManager) error {
	if !s.AppConfig.Features.Storage {
		s.Logger.Info("Storage disabled: no database DSN configured")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.AppConfig.Database.ConnectTimeout)
	defer cancel()

	pool, err := store.NewPool(ctx, s.AppConfig.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := store.EnsureSchema(ctx, pool, s.AppConfig.Database.EmbeddingDims); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ensure database schema: %w", err)
	}

	s.pool = pool
	s.resumes = store.NewResumeRepo(pool)
	s.subscriptions = store.NewSubscriptionRepo(pool)

	if err := om.TrackDBPool(pool); err != nil {
		s.Logger.LogError(err, "Failed to register database pool metrics")
	}

	s.Logger.Info("Storage initialized",
		"max_conns", s.AppConfig.Database.MaxConns,
		"embedding_dims", s.AppConfig.Database.EmbeddingDims)
	return nil
}

// initializeRetrieval wires vector search over the reference resume corpus.
// Requires storage plus an embedding-capable AI provider; degrades to a nil
// retriever (empty retrieval context) when either is missing.
func (s *Server) initializeRetrieval() {
	if !s.AppConfig.Features.Retrieval || s.pool == nil {
		return
	}

	analyzeConfig := s.AppConfig.GetAnalyzeConfig()
	embedService, err := ai.NewService(&analyzeConfig, "analyze", s.Logger)
	if err != nil {
		s.Logger.LogError(err, "Failed to create embedding service, retrieval disabled")
		return
	}

	s.embedService = embedService
	s.retriever = rag.NewRetriever(embedService.Provider, store.NewReferenceRepo(s.pool), 0, s.Logger)
	s.Logger.Info("Retrieval initialized", "provider", analyzeConfig.Provider)
}

// initializeRendering wires the headless-Chrome PDF renderer
func (s *Server) initializeRendering() {
	if !s.AppConfig.Features.Rendering {
		return
	}

	s.renderer = render.NewRenderer(s.AppConfig.Render, s.Logger)
	s.Logger.Info("PDF rendering initialized",
		"page_format", s.AppConfig.Render.PageFormat)
}

// initializeBilling wires the webhook processor. Signature verification is
// always performed when a secret is configured; persisting subscription state
// additionally requires storage.
func (s *Server) initializeBilling() {
	if !s.AppConfig.Features.Billing {
		return
	}
	if s.subscriptions == nil {
		s.Logger.Info("Billing webhooks will be verified but not persisted: storage unavailable")
		return
	}

	s.billing = billing.NewProcessor(s.subscriptions, s.Logger)
	s.Logger.Info("Billing processor initialized")
}

// startPromptWatcher enables hot reload of AI prompt files
func (s *Server) startPromptWatcher() {
	watcher := config.NewPromptWatcher(s.AppConfig, 500*time.Millisecond, s.Logger)
	if watcher == nil {
		return
	}

	if err := watcher.Start(); err != nil {
		s.Logger.LogError(err, "Failed to start prompt watcher")
		return
	}

	s.promptWatcher = watcher
	s.Logger.Info("Prompt hot-reload enabled", "files", watcher.WatchedFiles())
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer(om *observability.ObservabilityManager) (*http.Server, error) {
	mux := s.setupRoutes(om)
	handler := om.HTTPMiddleware()(mux)
	addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}, nil
}

// startWithGracefulShutdown starts the HTTP server and handles graceful shutdown
func (s *Server) startWithGracefulShutdown(server *http.Server) error {
	// Channel to receive OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		s.Logger.Info("Starting HTTP server",
			"address", server.Addr,
			"tls_enabled", server.TLSConfig != nil)

		var err error
		if server.TLSConfig != nil {
			// When using TLS with certificate content, we need to use ListenAndServeTLS with empty strings
			// because the certificates are already loaded in the TLS config
			if s.TLSConfig.CertContent != "" || s.TLSConfig.KeyContent != "" {
				err = server.ListenAndServeTLS("", "")
			} else {
				err = server.ListenAndServeTLS(s.TLSConfig.CertFile, s.TLSConfig.KeyFile)
			}
		} else {
			err = server.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	// Wait for either a signal or server error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		s.Logger.Info("Received shutdown signal, starting graceful shutdown",
			"signal", sig.String())

		return s.performGracefulShutdown(server)
	}
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(server *http.Server) error {
	// Create a context with timeout for graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop prompt hot-reload before the config goes away
	if s.promptWatcher != nil {
		if err := s.promptWatcher.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop prompt watcher")
		}
	}

	// Clean up rate limiter if enabled
	s.cleanupRateLimiter()

	// Attempt graceful shutdown of HTTP server
	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	// Release backing resources once in-flight requests have drained
	if s.embedService != nil {
		if err := s.embedService.Provider.Close(); err != nil {
			s.Logger.LogError(err, "Failed to close embedding service")
		}
	}
	if s.pool != nil {
		s.pool.Close()
		s.Logger.Info("Database pool closed")
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}

// cleanupRateLimiter cleans up the rate limiter resources
func (s *Server) cleanupRateLimiter() {
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Info("Rate limiter cleaned up")
	}
}
