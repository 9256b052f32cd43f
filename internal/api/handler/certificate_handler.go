package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/service"
	"ourcodingkiddos/backend/pkg/response"
)

// CertificateHandler certificate verification, images and manual issue
type CertificateHandler struct {
	certSvc service.CertificateService
}

// NewCertificateHandler creates a CertificateHandler
func NewCertificateHandler(certSvc service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certSvc: certSvc}
}

// Verify GET /api/certificates/verify?code= and POST /api/certificates/verify {code}.
// Unknown codes answer 200 with valid=false.
func (h *CertificateHandler) Verify(c *gin.Context) {
	var req dto.VerifyCertificateRequest
	var err error
	if c.Request.Method == http.MethodPost {
		err = c.ShouldBindJSON(&req)
	} else {
		err = c.ShouldBindQuery(&req)
	}
	if err != nil {
		writeBindError(c, err)
		return
	}

	result, err := h.certSvc.Verify(c.Request.Context(), req.Code)
	if err != nil {
		h.handleCertificateError(c, err)
		return
	}
	response.OK(c, result)
}

// Image GET /api/certificates/:code/image
func (h *CertificateHandler) Image(c *gin.Context) {
	png, err := h.certSvc.Image(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.handleCertificateError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}

// ListByStudent GET /api/students/:id/certificates
func (h *CertificateHandler) ListByStudent(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.certSvc.ListByStudent(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		h.handleCertificateError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// Issue POST /api/admin/certificates
func (h *CertificateHandler) Issue(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.IssueCertificateRequest
	if !bindJSON(c, &req) {
		return
	}

	cert, err := h.certSvc.Issue(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleCertificateError(c, err)
		return
	}
	response.Created(c, cert)
}

func (h *CertificateHandler) handleCertificateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCertificateNotFound):
		response.NotFound(c, 19001, err.Error())
	case errors.Is(err, service.ErrCertificateExists):
		response.Conflict(c, 19002, err.Error())
	case errors.Is(err, service.ErrCourseNotCompleted):
		response.BadRequest(c, 19003, err.Error())
	case errors.Is(err, service.ErrRendererUnavailable):
		response.Error(c, http.StatusServiceUnavailable, 19004, err.Error())
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13002, err.Error())
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
