package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/service"
	"ourcodingkiddos/backend/pkg/response"
)

// ContactHandler public contact form and the admin inbox
type ContactHandler struct {
	contactSvc service.ContactService
}

// NewContactHandler creates a ContactHandler
func NewContactHandler(contactSvc service.ContactService) *ContactHandler {
	return &ContactHandler{contactSvc: contactSvc}
}

// Submit POST /api/contact (rate limited per client IP)
func (h *ContactHandler) Submit(c *gin.Context) {
	var req dto.ContactRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.contactSvc.Submit(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.Created(c, msg)
}

// List GET /api/admin/contact
func (h *ContactHandler) List(c *gin.Context) {
	var req dto.ContactListRequest
	if !bindQuery(c, &req) {
		return
	}

	list, total, err := h.contactSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// UpdateStatus PATCH /api/admin/contact/:id
func (h *ContactHandler) UpdateStatus(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateContactStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.contactSvc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, callerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrContactNotFound):
			response.NotFound(c, 20001, err.Error())
		case errors.Is(err, service.ErrInvalidStatus):
			response.BadRequest(c, 20002, err.Error())
		default:
			if !handleCommonError(c, err) {
				response.InternalError(c)
			}
		}
		return
	}
	response.OK(c, msg)
}
