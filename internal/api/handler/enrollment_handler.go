package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/service"
	"ourcodingkiddos/backend/pkg/response"
)

// EnrollmentHandler enrollments, lesson completion and the class calendar feed
type EnrollmentHandler struct {
	enrollmentSvc service.EnrollmentService
}

// NewEnrollmentHandler creates an EnrollmentHandler
func NewEnrollmentHandler(enrollmentSvc service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentSvc: enrollmentSvc}
}

// Enroll POST /api/enrollments
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.EnrollRequest
	if !bindJSON(c, &req) {
		return
	}

	enrollment, err := h.enrollmentSvc.Enroll(c.Request.Context(), &req, caller)
	if err != nil {
		handleEnrollmentError(c, err)
		return
	}
	response.Created(c, enrollment)
}

// ListByStudent GET /api/students/:id/enrollments
func (h *EnrollmentHandler) ListByStudent(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.enrollmentSvc.ListByStudent(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		handleEnrollmentError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// UpdateStatus PATCH /api/enrollments/:id/status
func (h *EnrollmentHandler) UpdateStatus(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.UpdateEnrollmentStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	enrollment, err := h.enrollmentSvc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, caller)
	if err != nil {
		handleEnrollmentError(c, err)
		return
	}
	response.OK(c, enrollment)
}

// CompleteLesson POST /api/lessons/:id/complete
func (h *EnrollmentHandler) CompleteLesson(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.CompleteLessonRequest
	// the body is optional for students completing their own lesson
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	result, err := h.enrollmentSvc.CompleteLesson(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		handleEnrollmentError(c, err)
		return
	}
	response.OK(c, result)
}

// Calendar GET /api/students/:id/calendar.ics
func (h *EnrollmentHandler) Calendar(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	ics, err := h.enrollmentSvc.Calendar(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		handleEnrollmentError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="classes.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}

// handleEnrollmentError shared with the bulk and payment handlers, which surface the same errors
func handleEnrollmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEnrollmentNotFound):
		response.NotFound(c, 14001, err.Error())
	case errors.Is(err, service.ErrAlreadyEnrolled):
		response.Conflict(c, 14002, err.Error())
	case errors.Is(err, service.ErrCourseNotPublished):
		response.BadRequest(c, 14003, err.Error())
	case errors.Is(err, service.ErrPaymentRequired):
		response.Error(c, http.StatusPaymentRequired, 14004, err.Error())
	case errors.Is(err, service.ErrEnrollmentNotActive):
		response.Forbidden(c, 14005, err.Error())
	case errors.Is(err, service.ErrInvalidStatus):
		response.BadRequest(c, 14006, err.Error())
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13002, err.Error())
	case errors.Is(err, service.ErrLessonNotFound):
		response.NotFound(c, 13003, err.Error())
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
