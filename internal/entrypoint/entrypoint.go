package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clarityhq/authgate/internal/auth"
	"github.com/clarityhq/authgate/internal/config"
	"github.com/clarityhq/authgate/internal/database"
	"github.com/clarityhq/authgate/internal/database/users"
	http_controllers "github.com/clarityhq/authgate/internal/http"
	"github.com/clarityhq/authgate/internal/identity"
	"github.com/clarityhq/authgate/internal/profiles"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down within
// the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires the configuration, stores, and clients together and serves the
// gateway. Client construction happens once here and the resulting
// dependencies are passed into the handlers; nothing is process-global.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting authgate v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Missing identity credentials are fatal at startup, never a
	// per-request error.
	creds, err := identity.LoadCredentials(cfg.Identity.CredentialsPath)
	if err != nil {
		log.Fatalf("Failed to load identity credentials: %v", err)
	}
	if cfg.Identity.Endpoint != "" {
		creds.Endpoint = cfg.Identity.Endpoint
	}
	provider := identity.NewClient(creds)
	log.Printf("Identity provider client initialized for project %s", creds.ProjectID)

	profileStore, err := profiles.NewStore(cfg.Profiles.RedisAddr, cfg.Profiles.RedisPassword, cfg.Profiles.KeyPrefix)
	if err != nil {
		log.Fatalf("Failed to connect to profile store: %v", err)
	}
	defer func() {
		if err := profileStore.Close(); err != nil {
			log.Printf("Error closing profile store: %v", err)
		}
	}()

	userRepo := users.NewRepository(db.DB)
	credentialService := auth.NewService(userRepo, cfg.Auth)

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Credentials: credentialService,
		Provider:    provider,
		Profiles:    profileStore,
		DB:          db,
		ProfilePing: profileStore,
		Version:     version,
	})

	Serve(router, cfg, nil)
}
