package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clarityhq/authgate/internal/database"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// Pinger is anything with service connectivity worth reporting on.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	db       *database.Database
	profiles Pinger
	version  string
}

func NewHealthController(db *database.Database, profileStore Pinger, version string) *HealthController {
	return &HealthController{
		db:       db,
		profiles: profileStore,
		version:  version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.db != nil {
		sqlDB, err := h.db.DB.DB()
		if err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else if err := sqlDB.Ping(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	// The profile store is best effort elsewhere, so a failed ping is
	// reported without marking the whole service unhealthy.
	if h.profiles != nil {
		if err := h.profiles.Ping(c.Request.Context()); err != nil {
			checks["profiles"] = "error: " + err.Error()
		} else {
			checks["profiles"] = "ok"
		}
	} else {
		checks["profiles"] = "not configured"
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
