package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/knawat/mp-backend/internal/interfaces/http/dto"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping() error
}

// SystemHandler serves health and readiness probes.
type SystemHandler struct {
	BaseHandler
	db    Pinger
	redis *redis.Client
}

// NewSystemHandler creates a system handler.
func NewSystemHandler(db Pinger, redisClient *redis.Client) *SystemHandler {
	return &SystemHandler{db: db, redis: redisClient}
}

// RegisterRoutes registers the system routes.
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}

// Health reports the status of the process and its dependencies.
func (h *SystemHandler) Health(c *gin.Context) {
	checks := gin.H{"database": "ok", "redis": "ok"}
	healthy := true

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			checks["database"] = err.Error()
			healthy = false
		}
	}
	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		}
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse("UNHEALTHY", "A dependency is unavailable"))
		return
	}
	h.Success(c, checks)
}
