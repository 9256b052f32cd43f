package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/service"
	"ourcodingkiddos/backend/pkg/response"
)

const defaultLeaderboardSize = 10

// GamificationHandler badges and the leaderboard
type GamificationHandler struct {
	gamificationSvc service.GamificationService
}

// NewGamificationHandler creates a GamificationHandler
func NewGamificationHandler(gamificationSvc service.GamificationService) *GamificationHandler {
	return &GamificationHandler{gamificationSvc: gamificationSvc}
}

// ListBadges GET /api/badges
func (h *GamificationHandler) ListBadges(c *gin.Context) {
	badges, err := h.gamificationSvc.ListBadges(c.Request.Context(), false)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": badges})
}

// AdminListBadges GET /api/admin/badges (inactive included)
func (h *GamificationHandler) AdminListBadges(c *gin.Context) {
	badges, err := h.gamificationSvc.ListBadges(c.Request.Context(), true)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": badges})
}

// StudentBadges GET /api/students/:id/badges
func (h *GamificationHandler) StudentBadges(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	badges, err := h.gamificationSvc.StudentBadges(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		h.handleBadgeError(c, err)
		return
	}
	response.OK(c, gin.H{"list": badges})
}

// Leaderboard GET /api/leaderboard?limit=
func (h *GamificationHandler) Leaderboard(c *gin.Context) {
	var req dto.LeaderboardRequest
	if !bindQuery(c, &req) {
		return
	}
	if req.Limit == 0 {
		req.Limit = defaultLeaderboardSize
	}

	entries, err := h.gamificationSvc.Leaderboard(c.Request.Context(), req.Limit)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": entries})
}

// CreateBadge POST /api/admin/badges
func (h *GamificationHandler) CreateBadge(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CreateBadgeRequest
	if !bindJSON(c, &req) {
		return
	}

	badge, err := h.gamificationSvc.CreateBadge(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleBadgeError(c, err)
		return
	}
	response.Created(c, badge)
}

// UpdateBadge PUT /api/admin/badges/:id
func (h *GamificationHandler) UpdateBadge(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateBadgeRequest
	if !bindJSON(c, &req) {
		return
	}

	badge, err := h.gamificationSvc.UpdateBadge(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleBadgeError(c, err)
		return
	}
	response.OK(c, badge)
}

// DeleteBadge DELETE /api/admin/badges/:id
func (h *GamificationHandler) DeleteBadge(c *gin.Context) {
	if err := h.gamificationSvc.DeleteBadge(c.Request.Context(), c.Param("id")); err != nil {
		h.handleBadgeError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *GamificationHandler) handleBadgeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBadgeNotFound):
		response.NotFound(c, 24001, err.Error())
	case errors.Is(err, service.ErrInvalidCriterion):
		response.BadRequest(c, 24002, err.Error())
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
