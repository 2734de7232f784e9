package main

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"

	"teamdraw/internal/config"
	"teamdraw/internal/handlers"
	"teamdraw/internal/naming/gemini"
	"teamdraw/internal/naming/openrouter"
	"teamdraw/internal/services"
)

//go:embed all:templates
var templateFS embed.FS

//go:embed all:assets
var assetsFS embed.FS

// namer is what the services need from a naming collaborator.
type namer interface {
	services.TeamNamer
	services.Announcer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// 1. Initialize logging
	var logOut io.Writer = io.Discard
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o660)
		if err != nil {
			logger.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
		logOut = f
	}
	defer logger.Init("teamdraw", cfg.Log.Verbose, false, logOut).Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Initialize the naming collaborator and the session service
	collaborator, err := newNamer(ctx, cfg.Naming)
	if err != nil {
		logger.Fatalf("Failed to initialize naming provider %q: %v", cfg.Naming.Provider, err)
	}

	rng := services.NewRandom()
	if cfg.Random.Seed != 0 {
		rng = services.NewSeededRandom(cfg.Random.Seed)
	}
	sessionService := services.NewSessionService(rng, collaborator, collaborator, cfg.Naming.Timeout, cfg.Session.TTL)

	// 3. Load HTML templates from the embedded filesystem.
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		logger.Fatalf("Failed to parse templates: %v", err)
	}

	// 4. Initialize the HTTP Handler
	httpHandler := handlers.NewHTTPHandler(sessionService, templates, cfg.Session.CookieName)

	// 5. Set up the Gin router
	gin.SetMode(cfg.Server.GinMode)
	r := gin.New()
	r.Use(gin.Recovery(), handlers.RequestLogger())

	assetsSubFS, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		logger.Fatalf("Failed to create assets sub-filesystem: %v", err)
	}
	r.StaticFS("/assets", http.FS(assetsSubFS))

	// 6. Register public routes (before middleware)
	httpHandler.RegisterPublicRoutes(r)

	// 7. Group routes that require tenant identification and apply middleware
	tenantRoutes := r.Group("/")
	tenantRoutes.Use(httpHandler.TenantMiddleware())
	httpHandler.RegisterTenantRoutes(tenantRoutes)

	// 8. Start the background janitor to clean up inactive sessions
	go runJanitor(ctx, sessionService, cfg.Session.JanitorInterval)

	// 9. Run the server
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("Server starting on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to run server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown: %v", err)
	}
	sessionService.Wait()
}

func newNamer(ctx context.Context, cfg config.NamingConfig) (namer, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case config.ProviderOpenRouter:
		httpClient := &http.Client{Timeout: cfg.Timeout}
		return openrouter.NewClient(httpClient, cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.OpenRouterModel, cfg.FallbackModels), nil
	default:
		logger.Info("Naming provider disabled, using local fallbacks")
		return services.LocalNamer{}, nil
	}
}

func runJanitor(ctx context.Context, svc *services.SessionService, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := svc.CleanUpInactiveSessions(); n > 0 {
				logger.Infof("Performed cleanup of %d inactive sessions.", n)
			}
		}
	}
}
