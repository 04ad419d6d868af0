package handler

import (
	"errors"
	"net/http"

	"gate_access/internal/domain"
	"gate_access/internal/repository"
	"gate_access/internal/service"

	"gate_access/internal/anpr"

	"github.com/gin-gonic/gin"
)

type MemberHandler struct {
	memberService *service.MemberService
}

func NewMemberHandler(memberService *service.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// POST /api/v1/members
func (h *MemberHandler) CreateMember(c *gin.Context) {
	var dto domain.CreateMemberDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}
	// Plates are stored in their normalized form so registry lookups match
	// what the pipelines produce.
	dto.PlateNumber = anpr.NormalizePlate(dto.PlateNumber)

	member, err := h.memberService.AddMember(c.Request.Context(), dto)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add member"})
		return
	}
	c.JSON(http.StatusCreated, member)
}

// GET /api/v1/members
func (h *MemberHandler) GetAllMembers(c *gin.Context) {
	members, err := h.memberService.GetAllMembers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list members"})
		return
	}
	c.JSON(http.StatusOK, members)
}

// GET /api/v1/members/check/:plate
func (h *MemberHandler) CheckPlate(c *gin.Context) {
	plate := anpr.NormalizePlate(c.Param("plate"))
	if plate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "plate is required"})
		return
	}

	result, err := h.memberService.CheckPlate(c.Request.Context(), plate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check plate"})
		return
	}
	c.JSON(http.StatusOK, result)
}
