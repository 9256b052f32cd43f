package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/service"
	"ourcodingkiddos/backend/pkg/response"
)

// AssignmentHandler assignments and their submissions
type AssignmentHandler struct {
	assignmentSvc service.AssignmentService
}

// NewAssignmentHandler creates an AssignmentHandler
func NewAssignmentHandler(assignmentSvc service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentSvc: assignmentSvc}
}

// Create POST /api/manage/courses/:id/assignments
func (h *AssignmentHandler) Create(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.CreateAssignmentRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.assignmentSvc.Create(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	response.Created(c, a)
}

// ListByCourse GET /api/manage/courses/:id/assignments
func (h *AssignmentHandler) ListByCourse(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.assignmentSvc.ListByCourse(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// Update PUT /api/manage/assignments/:id
func (h *AssignmentHandler) Update(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.UpdateAssignmentRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.assignmentSvc.Update(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	response.OK(c, a)
}

// Delete DELETE /api/manage/assignments/:id
func (h *AssignmentHandler) Delete(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	if err := h.assignmentSvc.Delete(c.Request.Context(), c.Param("id"), caller); err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	response.OK(c, nil)
}

// ListForStudent GET /api/students/:id/assignments
func (h *AssignmentHandler) ListForStudent(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.assignmentSvc.ListForStudent(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// Submit POST /api/assignments/:id/submit
func (h *AssignmentHandler) Submit(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.SubmitAssignmentRequest
	if !bindJSON(c, &req) {
		return
	}

	s, err := h.assignmentSvc.Submit(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	response.OK(c, s)
}

// ListSubmissions GET /api/manage/assignments/:id/submissions
func (h *AssignmentHandler) ListSubmissions(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.SubmissionListRequest
	if !bindQuery(c, &req) {
		return
	}

	list, total, err := h.assignmentSvc.ListSubmissions(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Grade POST /api/manage/submissions/:id/grade
func (h *AssignmentHandler) Grade(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.GradeSubmissionRequest
	if !bindJSON(c, &req) {
		return
	}

	s, err := h.assignmentSvc.Grade(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	response.OK(c, s)
}

// Return POST /api/manage/submissions/:id/return
func (h *AssignmentHandler) Return(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.ReturnSubmissionRequest
	if !bindJSON(c, &req) {
		return
	}

	s, err := h.assignmentSvc.Return(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	response.OK(c, s)
}

func (h *AssignmentHandler) handleAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 15001, err.Error())
	case errors.Is(err, service.ErrSubmissionNotFound):
		response.NotFound(c, 15002, err.Error())
	case errors.Is(err, service.ErrLessonNotInCourse):
		response.BadRequest(c, 15003, err.Error())
	case errors.Is(err, service.ErrScoreTooHigh):
		response.BadRequest(c, 15004, err.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		response.Conflict(c, 15005, err.Error())
	case errors.Is(err, service.ErrSubmissionDuplicate):
		response.Conflict(c, 15006, err.Error())
	case errors.Is(err, service.ErrEnrollmentNotActive):
		response.Forbidden(c, 14005, err.Error())
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13002, err.Error())
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
