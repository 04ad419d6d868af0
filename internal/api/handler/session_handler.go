package handler

import (
	"errors"
	"net/http"
	"strconv"

	"gate_access/internal/domain"
	"gate_access/internal/repository"
	"gate_access/internal/service"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	monitorService *service.MonitorService
}

func NewSessionHandler(monitorService *service.MonitorService) *SessionHandler {
	return &SessionHandler{monitorService: monitorService}
}

// GET /api/v1/sessions?status=&plate=&limit=
func (h *SessionHandler) FindSessions(c *gin.Context) {
	var filter domain.VehicleSessionFilterDTO
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter: " + err.Error()})
		return
	}

	sessions, err := h.monitorService.FindSessions(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query sessions"})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// GET /api/v1/sessions/:id
func (h *SessionHandler) GetSessionByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	session, err := h.monitorService.GetSessionByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
		return
	}
	c.JSON(http.StatusOK, session)
}
