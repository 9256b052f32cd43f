package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/service"
	"ourcodingkiddos/backend/pkg/response"
)

// ReviewHandler course reviews
type ReviewHandler struct {
	reviewSvc service.ReviewService
}

// NewReviewHandler creates a ReviewHandler
func NewReviewHandler(reviewSvc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewSvc: reviewSvc}
}

// List GET /api/courses/:slug/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	var req dto.PaginationRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.reviewSvc.List(c.Request.Context(), c.Param("slug"), &req)
	if err != nil {
		h.handleReviewError(c, err)
		return
	}
	response.OK(c, result)
}

// Create POST /api/courses/:slug/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviewSvc.Create(c.Request.Context(), c.Param("slug"), &req, caller)
	if err != nil {
		h.handleReviewError(c, err)
		return
	}
	response.Created(c, review)
}

// Update PUT /api/reviews/:id
func (h *ReviewHandler) Update(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.UpdateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviewSvc.Update(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		h.handleReviewError(c, err)
		return
	}
	response.OK(c, review)
}

// Delete DELETE /api/reviews/:id
func (h *ReviewHandler) Delete(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	if err := h.reviewSvc.Delete(c.Request.Context(), c.Param("id"), caller); err != nil {
		h.handleReviewError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *ReviewHandler) handleReviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReviewNotFound):
		response.NotFound(c, 16001, err.Error())
	case errors.Is(err, service.ErrReviewExists):
		response.Conflict(c, 16002, err.Error())
	case errors.Is(err, service.ErrNotEnrolled):
		response.Forbidden(c, 16003, err.Error())
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13002, err.Error())
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
