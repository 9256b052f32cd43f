package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/service"
	"ourcodingkiddos/backend/pkg/response"
)

// multipartOverhead headroom for form boundaries and headers around an upload
const multipartOverhead = 64 << 10

// ShowcaseHandler student project showcase and image uploads
type ShowcaseHandler struct {
	showcaseSvc   service.ShowcaseService
	maxUploadSize int64
}

// NewShowcaseHandler creates a ShowcaseHandler
func NewShowcaseHandler(showcaseSvc service.ShowcaseService, maxUploadSize int64) *ShowcaseHandler {
	return &ShowcaseHandler{showcaseSvc: showcaseSvc, maxUploadSize: maxUploadSize}
}

// List GET /api/showcase
func (h *ShowcaseHandler) List(c *gin.Context) {
	var req dto.ProjectListRequest
	if !bindQuery(c, &req) {
		return
	}

	projects, total, err := h.showcaseSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, projects, total, req.GetPage(), req.GetPageSize())
}

// Get GET /api/showcase/:slug
func (h *ShowcaseHandler) Get(c *gin.Context) {
	project, err := h.showcaseSvc.Get(c.Request.Context(), c.Param("slug"), optionalCaller(c))
	if err != nil {
		h.handleShowcaseError(c, err)
		return
	}
	response.OK(c, project)
}

// ToggleLike POST /api/showcase/:slug/like
func (h *ShowcaseHandler) ToggleLike(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.showcaseSvc.ToggleLike(c.Request.Context(), c.Param("slug"), caller)
	if err != nil {
		h.handleShowcaseError(c, err)
		return
	}
	response.OK(c, result)
}

// Submit POST /api/showcase
func (h *ShowcaseHandler) Submit(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.showcaseSvc.Submit(c.Request.Context(), &req, caller)
	if err != nil {
		h.handleShowcaseError(c, err)
		return
	}
	response.Created(c, project)
}

// Upload POST /api/showcase/upload (multipart "file")
func (h *ShowcaseHandler) Upload(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize+multipartOverhead)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, 18002, service.ErrFileTooLarge.Error())
			return
		}
		response.BadRequest(c, response.CodeValidation, "a file field is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, response.CodeValidation, "the uploaded file could not be read")
		return
	}
	defer f.Close()

	result, err := h.showcaseSvc.Upload(c.Request.Context(), f, fh.Size, caller)
	if err != nil {
		h.handleShowcaseError(c, err)
		return
	}
	response.Created(c, result)
}

// ReviewQueue GET /api/admin/showcase
func (h *ShowcaseHandler) ReviewQueue(c *gin.Context) {
	var req dto.AdminProjectListRequest
	if !bindQuery(c, &req) {
		return
	}

	projects, total, err := h.showcaseSvc.ReviewQueue(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, projects, total, req.GetPage(), req.GetPageSize())
}

// Review PATCH /api/admin/showcase/:id/review
func (h *ShowcaseHandler) Review(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.ReviewProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.showcaseSvc.Review(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		h.handleShowcaseError(c, err)
		return
	}
	response.OK(c, project)
}

func (h *ShowcaseHandler) handleShowcaseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		response.NotFound(c, 18001, err.Error())
	case errors.Is(err, service.ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, 18002, err.Error())
	case errors.Is(err, service.ErrUnsupportedImage):
		response.Error(c, http.StatusUnsupportedMediaType, 18003, err.Error())
	case errors.Is(err, service.ErrStorageDisabled):
		response.Error(c, http.StatusServiceUnavailable, 18004, err.Error())
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13002, err.Error())
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
