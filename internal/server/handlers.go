// Package server exposes the engine's HTTP surface: diagnostics, scheduler
// control and the explicit test-notification action. It is a thin layer; all
// behavior lives in the components it fronts.
package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taskbell/taskbell/internal/channel"
	"github.com/taskbell/taskbell/internal/diagnostics"
	"github.com/taskbell/taskbell/internal/logger"
	"github.com/taskbell/taskbell/internal/permission"
	"github.com/taskbell/taskbell/internal/scheduler"
)

type Handler struct {
	scheduler   *scheduler.Scheduler
	diagnostics *diagnostics.Service
	gate        *permission.Gate
	client      *channel.Client // nil when push is not configured
	logger      *logger.Logger
}

func NewHandler(sched *scheduler.Scheduler, diag *diagnostics.Service, gate *permission.Gate, client *channel.Client, log *logger.Logger) *Handler {
	return &Handler{
		scheduler:   sched,
		diagnostics: diag,
		gate:        gate,
		client:      client,
		logger:      log.WithComponent("http"),
	}
}

// Router builds the gin engine with all routes registered.
func (h *Handler) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.GET("/diagnostics", h.RunDiagnostics)
		api.GET("/diagnostics/export", h.ExportErrors)
		api.GET("/diagnostics/errors", h.ListErrors)
		api.DELETE("/diagnostics/errors", h.ClearErrors)

		api.GET("/scheduler/status", h.SchedulerStatus)
		api.POST("/scheduler/start", h.StartScheduler)
		api.POST("/scheduler/stop", h.StopScheduler)

		api.POST("/notifications/test", h.TestNotification)
		api.POST("/notifications/push", h.PushNotification)
		api.POST("/permission/request", h.RequestPermission)
	}

	return router
}

// HealthCheck reports process liveness.
// GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "instance": logger.GetProcessID()})
}

// RunDiagnostics executes the full check suite.
// GET /api/v1/diagnostics.
func (h *Handler) RunDiagnostics(c *gin.Context) {
	report := h.diagnostics.Run(c.Request.Context())
	c.JSON(http.StatusOK, report)
}

// ExportErrors serves the error history as a downloadable JSON artifact.
// GET /api/v1/diagnostics/export.
func (h *Handler) ExportErrors(c *gin.Context) {
	filename, data, err := h.diagnostics.Monitor().Export()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json", data)
}

// ListErrors returns up to ?limit recent error records.
// GET /api/v1/diagnostics/errors.
func (h *Handler) ListErrors(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, gin.H{"errors": h.diagnostics.Monitor().History(limit)})
}

// ClearErrors drops the error history.
// DELETE /api/v1/diagnostics/errors.
func (h *Handler) ClearErrors(c *gin.Context) {
	h.diagnostics.Monitor().Clear()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// SchedulerStatus returns the loop snapshot.
// GET /api/v1/scheduler/status.
func (h *Handler) SchedulerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.scheduler.Status())
}

// StartScheduler (re)starts the evaluation loop.
// POST /api/v1/scheduler/start.
func (h *Handler) StartScheduler(c *gin.Context) {
	h.scheduler.Start()
	c.JSON(http.StatusOK, h.scheduler.Status())
}

// StopScheduler stops the evaluation loop.
// POST /api/v1/scheduler/stop.
func (h *Handler) StopScheduler(c *gin.Context) {
	h.scheduler.Stop()
	c.JSON(http.StatusOK, h.scheduler.Status())
}

// TestNotification renders an immediate test alert.
// POST /api/v1/notifications/test.
func (h *Handler) TestNotification(c *gin.Context) {
	if err := h.scheduler.TestNotification(c.Request.Context()); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "sentAt": time.Now()})
}

// PushNotification forwards a push payload to the background worker over the
// message channel. Used to exercise the background path end to end.
// POST /api/v1/notifications/push.
func (h *Handler) PushNotification(c *gin.Context) {
	if h.client == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "push delivery is not configured"})
		return
	}

	var payload channel.PushPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid push payload"})
		return
	}

	if err := h.client.PublishPush(c.Request.Context(), payload); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"ok": true})
}

// RequestPermission runs the permission request flow (one prompt per
// session).
// POST /api/v1/permission/request.
func (h *Handler) RequestPermission(c *gin.Context) {
	granted := h.gate.Request(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"granted": granted,
		"state":   h.gate.State(c.Request.Context()),
	})
}
