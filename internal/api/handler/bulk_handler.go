package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/service"
	"ourcodingkiddos/backend/pkg/response"
)

const (
	maxImportFile = 5 << 20
	xlsxMIME      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// BulkHandler admin bulk operations, exports and dashboard stats
type BulkHandler struct {
	bulkSvc service.BulkService
}

// NewBulkHandler creates a BulkHandler
func NewBulkHandler(bulkSvc service.BulkService) *BulkHandler {
	return &BulkHandler{bulkSvc: bulkSvc}
}

// ImportUsers POST /api/admin/bulk/import (multipart "file", .csv or .xlsx)
func (h *BulkHandler) ImportUsers(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportFile)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "file is too large")
			return
		}
		response.BadRequest(c, response.CodeValidation, "a file field is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 22004, service.ErrImportUnreadable.Error())
		return
	}
	defer f.Close()

	rows, err := h.bulkSvc.ParseUserFile(f, fh.Filename)
	if err != nil {
		h.handleBulkError(c, err)
		return
	}
	result, err := h.bulkSvc.ImportUsers(c.Request.Context(), rows, callerID)
	if err != nil {
		h.handleBulkError(c, err)
		return
	}
	response.OK(c, result)
}

// Enroll POST /api/admin/bulk/enroll
func (h *BulkHandler) Enroll(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.BulkEnrollRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.bulkSvc.BulkEnroll(c.Request.Context(), &req, caller)
	if err != nil {
		h.handleBulkError(c, err)
		return
	}
	response.OK(c, result)
}

// Status POST /api/admin/bulk/status
func (h *BulkHandler) Status(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.BulkStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.bulkSvc.BulkStatus(c.Request.Context(), &req, caller)
	if err != nil {
		h.handleBulkError(c, err)
		return
	}
	response.OK(c, result)
}

// ExportEnrollments GET /api/admin/export/enrollments?course_id=
func (h *BulkHandler) ExportEnrollments(c *gin.Context) {
	var req dto.ExportEnrollmentsRequest
	if !bindQuery(c, &req) {
		return
	}

	buf, filename, err := h.bulkSvc.ExportEnrollments(c.Request.Context(), req.CourseID)
	if err != nil {
		h.handleBulkError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxMIME, buf.Bytes())
}

// Stats GET /api/admin/stats
func (h *BulkHandler) Stats(c *gin.Context) {
	stats, err := h.bulkSvc.Stats(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, stats)
}

func (h *BulkHandler) handleBulkError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrImportNoData):
		response.BadRequest(c, 22001, err.Error())
	case errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 22002, err.Error())
	case errors.Is(err, service.ErrImportUnsupported):
		response.Error(c, http.StatusUnsupportedMediaType, 22003, err.Error())
	case errors.Is(err, service.ErrImportUnreadable):
		response.BadRequest(c, 22004, err.Error())
	case errors.Is(err, service.ErrImportTooManyRows):
		response.BadRequest(c, 22005, err.Error())
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13002, err.Error())
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
