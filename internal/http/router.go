package http

import (
	"github.com/gin-gonic/gin"

	"github.com/clarityhq/authgate/internal/database"
)

// RouterConfig carries all router dependencies, improving testability and
// reducing parameter count.
type RouterConfig struct {
	Credentials CredentialService
	Provider    IdentityProvider
	Profiles    ProfileStore
	DB          *database.Database
	ProfilePing Pinger
	Version     string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	accountController := NewAccountController(cfg.Credentials, cfg.Provider, cfg.Profiles)
	accountController.RegisterRoutes(router)

	healthController := NewHealthController(cfg.DB, cfg.ProfilePing, cfg.Version)
	router.GET("/health", healthController.Status)

	return router
}
