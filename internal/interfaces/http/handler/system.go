package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shopfront/backend/internal/interfaces/http/dto"
)

// Pinger checks connectivity to a backing store
type Pinger interface {
	Ping() error
}

// SystemHandler exposes health and readiness endpoints
type SystemHandler struct {
	BaseHandler
	db        Pinger
	appName   string
	startedAt time.Time
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(db Pinger, appName string, log *zap.Logger) *SystemHandler {
	return &SystemHandler{
		BaseHandler: NewBaseHandler(log),
		db:          db,
		appName:     appName,
		startedAt:   time.Now(),
	}
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	status := "ok"
	httpStatus := http.StatusOK

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			h.logger.Error("health check: database unreachable", zap.Error(err))
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	c.JSON(httpStatus, dto.NewSuccessResponse(gin.H{
		"status":  status,
		"service": h.appName,
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
	}))
}
