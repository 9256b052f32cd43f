package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/service"
	"ourcodingkiddos/backend/pkg/response"
)

// maxCalendarUpload .ics imports larger than this are rejected
const maxCalendarUpload = 1 << 20

// CatalogHandler programs, courses, lessons and class sessions
type CatalogHandler struct {
	catalogSvc service.CatalogService
}

// NewCatalogHandler creates a CatalogHandler
func NewCatalogHandler(catalogSvc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

// ── programs ──

// ListPrograms GET /api/programs
func (h *CatalogHandler) ListPrograms(c *gin.Context) {
	h.listPrograms(c, false)
}

// AdminListPrograms GET /api/admin/programs (drafts included)
func (h *CatalogHandler) AdminListPrograms(c *gin.Context) {
	h.listPrograms(c, true)
}

func (h *CatalogHandler) listPrograms(c *gin.Context, includeDrafts bool) {
	programs, err := h.catalogSvc.ListPrograms(c.Request.Context(), includeDrafts)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": programs})
}

// GetProgram GET /api/programs/:slug
func (h *CatalogHandler) GetProgram(c *gin.Context) {
	program, err := h.catalogSvc.GetProgram(c.Request.Context(), c.Param("slug"), false)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.OK(c, program)
}

// CreateProgram POST /api/admin/programs
func (h *CatalogHandler) CreateProgram(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CreateProgramRequest
	if !bindJSON(c, &req) {
		return
	}

	program, err := h.catalogSvc.CreateProgram(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.Created(c, program)
}

// UpdateProgram PUT /api/admin/programs/:id
func (h *CatalogHandler) UpdateProgram(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateProgramRequest
	if !bindJSON(c, &req) {
		return
	}

	program, err := h.catalogSvc.UpdateProgram(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.OK(c, program)
}

// DeleteProgram DELETE /api/admin/programs/:id
func (h *CatalogHandler) DeleteProgram(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.catalogSvc.DeleteProgram(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.OK(c, nil)
}

// ── courses ──

// ListCourses GET /api/courses
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	var req dto.CourseListRequest
	if !bindQuery(c, &req) {
		return
	}

	courses, total, err := h.catalogSvc.ListCourses(c.Request.Context(), &req, optionalCaller(c))
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, courses, total, req.GetPage(), req.GetPageSize())
}

// GetCourse GET /api/courses/:slug
func (h *CatalogHandler) GetCourse(c *gin.Context) {
	course, err := h.catalogSvc.GetCourse(c.Request.Context(), c.Param("slug"), optionalCaller(c))
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.OK(c, course)
}

// CreateCourse POST /api/manage/courses
func (h *CatalogHandler) CreateCourse(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.CreateCourseRequest
	if !bindJSON(c, &req) {
		return
	}

	course, err := h.catalogSvc.CreateCourse(c.Request.Context(), &req, caller)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.Created(c, course)
}

// UpdateCourse PUT /api/manage/courses/:id
func (h *CatalogHandler) UpdateCourse(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.UpdateCourseRequest
	if !bindJSON(c, &req) {
		return
	}

	course, err := h.catalogSvc.UpdateCourse(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.OK(c, course)
}

// PublishCourse PATCH /api/manage/courses/:id/publish
func (h *CatalogHandler) PublishCourse(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.PublishRequest
	if !bindJSON(c, &req) {
		return
	}

	course, err := h.catalogSvc.SetCoursePublished(c.Request.Context(), c.Param("id"), *req.IsPublished, caller)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.OK(c, course)
}

// DeleteCourse DELETE /api/manage/courses/:id
func (h *CatalogHandler) DeleteCourse(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	if err := h.catalogSvc.DeleteCourse(c.Request.Context(), c.Param("id"), caller); err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.OK(c, nil)
}

// ── lessons ──

// GetLesson GET /api/courses/:slug/lessons/:lessonSlug
func (h *CatalogHandler) GetLesson(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	lesson, err := h.catalogSvc.GetLesson(c.Request.Context(), c.Param("slug"), c.Param("lessonSlug"), caller)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.OK(c, lesson)
}

// CreateLesson POST /api/manage/courses/:id/lessons
func (h *CatalogHandler) CreateLesson(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.CreateLessonRequest
	if !bindJSON(c, &req) {
		return
	}

	lesson, err := h.catalogSvc.CreateLesson(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.Created(c, lesson)
}

// UpdateLesson PUT /api/manage/lessons/:id
func (h *CatalogHandler) UpdateLesson(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.UpdateLessonRequest
	if !bindJSON(c, &req) {
		return
	}

	lesson, err := h.catalogSvc.UpdateLesson(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.OK(c, lesson)
}

// DeleteLesson DELETE /api/manage/lessons/:id
func (h *CatalogHandler) DeleteLesson(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	if err := h.catalogSvc.DeleteLesson(c.Request.Context(), c.Param("id"), caller); err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.OK(c, nil)
}

// ── class sessions ──

// ListSessions GET /api/courses/:slug/sessions
func (h *CatalogHandler) ListSessions(c *gin.Context) {
	sessions, err := h.catalogSvc.ListSessions(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.OK(c, gin.H{"list": sessions})
}

// CreateSession POST /api/manage/courses/:id/sessions
func (h *CatalogHandler) CreateSession(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.CreateClassSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.catalogSvc.CreateSession(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.Created(c, session)
}

// UpdateSession PUT /api/manage/sessions/:id
func (h *CatalogHandler) UpdateSession(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.UpdateClassSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.catalogSvc.UpdateSession(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.OK(c, session)
}

// DeleteSession DELETE /api/manage/sessions/:id
func (h *CatalogHandler) DeleteSession(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	if err := h.catalogSvc.DeleteSession(c.Request.Context(), c.Param("id"), caller); err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.OK(c, nil)
}

// ImportSessions POST /api/manage/courses/:id/sessions/import (multipart "file", .ics)
func (h *CatalogHandler) ImportSessions(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxCalendarUpload+4096)
	fh, err := c.FormFile("file")
	if err != nil {
		writeBindError(c, err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, response.CodeValidation, "the uploaded file could not be read")
		return
	}
	defer f.Close()

	result, err := h.catalogSvc.ImportSessions(c.Request.Context(), c.Param("id"), f, caller)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *CatalogHandler) handleCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProgramNotFound):
		response.NotFound(c, 13001, err.Error())
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13002, err.Error())
	case errors.Is(err, service.ErrLessonNotFound):
		response.NotFound(c, 13003, err.Error())
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 13004, err.Error())
	case errors.Is(err, service.ErrInstructorNotFound):
		response.BadRequest(c, 13005, err.Error())
	case errors.Is(err, service.ErrInvalidAgeRange):
		response.BadRequest(c, 13006, err.Error())
	case errors.Is(err, service.ErrLessonLocked):
		response.Forbidden(c, 13007, err.Error())
	case errors.Is(err, service.ErrInvalidCalendar):
		response.BadRequest(c, 13008, err.Error())
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
