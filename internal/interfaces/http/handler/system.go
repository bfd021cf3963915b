package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ledgera/backend/internal/infrastructure/persistence"
	"github.com/ledgera/backend/internal/interfaces/http/dto"
)

// SystemHandler handles system API endpoints
type SystemHandler struct {
	BaseHandler
	db        *persistence.Database
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *persistence.Database) *SystemHandler {
	return &SystemHandler{db: db, startTime: time.Now()}
}

// Health handles GET /system/health
func (h *SystemHandler) Health(c *gin.Context) {
	status := "healthy"
	dbStatus := "up"
	code := http.StatusOK
	if err := h.db.Ping(); err != nil {
		status = "unhealthy"
		dbStatus = "down"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, dto.NewSuccessResponse(gin.H{
		"status":    status,
		"database":  dbStatus,
		"timestamp": time.Now().UTC(),
	}))
}

// Info handles GET /system/info
func (h *SystemHandler) Info(c *gin.Context) {
	h.Success(c, gin.H{
		"name":        "ledgera",
		"go_version":  runtime.Version(),
		"uptime":      time.Since(h.startTime).String(),
		"started_at":  h.startTime.UTC(),
		"goroutines":  runtime.NumGoroutine(),
	})
}

// Ping handles GET /system/ping
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, gin.H{
		"message":   "pong",
		"timestamp": time.Now().UTC(),
	})
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.GET("/health", h.Health)
		system.GET("/info", h.Info)
		system.GET("/ping", h.Ping)
	}
}
