package handler

import (
	"net/http"
	"strconv"

	"gate_access/internal/domain"
	"gate_access/internal/service"

	"github.com/gin-gonic/gin"
)

type MonitorHandler struct {
	monitorService *service.MonitorService
}

func NewMonitorHandler(monitorService *service.MonitorService) *MonitorHandler {
	return &MonitorHandler{monitorService: monitorService}
}

// GET /api/v1/monitor/status
func (h *MonitorHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"pipelines": h.monitorService.PipelineStatuses()})
}

// GET /api/v1/monitor/captures?role=entry&limit=5
func (h *MonitorHandler) GetRecentCaptures(c *gin.Context) {
	role := domain.CameraRole(c.DefaultQuery("role", string(domain.RoleEntry)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	captures, err := h.monitorService.RecentCaptures(role, limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, captures)
}

// GET /api/v1/monitor/access-logs?limit=20
func (h *MonitorHandler) GetRecentAccessLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	logs, err := h.monitorService.RecentAccessLogs(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load access logs"})
		return
	}
	c.JSON(http.StatusOK, logs)
}
