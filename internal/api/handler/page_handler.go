package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/service"
	"ourcodingkiddos/backend/pkg/response"
)

// PageHandler static content pages
type PageHandler struct {
	pageSvc service.PageService
}

// NewPageHandler creates a PageHandler
func NewPageHandler(pageSvc service.PageService) *PageHandler {
	return &PageHandler{pageSvc: pageSvc}
}

// List GET /api/pages
func (h *PageHandler) List(c *gin.Context) {
	pages, err := h.pageSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": pages})
}

// Get GET /api/pages/:slug
func (h *PageHandler) Get(c *gin.Context) {
	page, err := h.pageSvc.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrPageNotFound) {
			response.NotFound(c, 23001, err.Error())
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, page)
}

// Upsert PUT /api/admin/pages/:slug
func (h *PageHandler) Upsert(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.UpdatePageRequest
	if !bindJSON(c, &req) {
		return
	}

	page, err := h.pageSvc.Upsert(c.Request.Context(), c.Param("slug"), &req, callerID)
	if err != nil {
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
		return
	}
	response.OK(c, page)
}
