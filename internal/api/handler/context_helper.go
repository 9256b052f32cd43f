package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ourcodingkiddos/backend/internal/api/middleware"
	"ourcodingkiddos/backend/internal/service"
	pkgerrors "ourcodingkiddos/backend/pkg/errors"
	"ourcodingkiddos/backend/pkg/response"
)

// MustGetCaller reads the identity SessionAuth stored on the context.
// Writes a 401 and returns false when it is missing; callers should return.
func MustGetCaller(c *gin.Context) (service.Caller, bool) {
	uid := c.GetString(middleware.CtxUserID)
	role := c.GetString(middleware.CtxRole)
	if uid == "" || role == "" {
		response.Unauthorized(c, response.CodeUnauthorized, "authentication required")
		return service.Caller{}, false
	}
	return service.Caller{UserID: uid, Role: role}, true
}

// MustGetUserID shortcut when only the id is needed
func MustGetUserID(c *gin.Context) (string, bool) {
	caller, ok := MustGetCaller(c)
	return caller.UserID, ok
}

// optionalCaller nil for anonymous requests on OptionalAuth routes
func optionalCaller(c *gin.Context) *service.Caller {
	uid := c.GetString(middleware.CtxUserID)
	if uid == "" {
		return nil
	}
	return &service.Caller{UserID: uid, Role: c.GetString(middleware.CtxRole)}
}

// bindJSON binds the body and writes 400/413 on failure
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeBindError(c, err)
		return false
	}
	return true
}

// bindQuery binds query parameters and writes 400 on failure
func bindQuery(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		writeBindError(c, err)
		return false
	}
	return true
}

func writeBindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "request body is too large")
		return
	}
	response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, "invalid request", err.Error())
}

// handleCommonError maps the errors every module can return. Reports whether it wrote a response.
func handleCommonError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, response.CodeForbidden, err.Error())
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 12004, err.Error())
	case errors.Is(err, service.ErrStudentRequired):
		response.BadRequest(c, response.CodeValidation, err.Error())
	case errors.Is(err, service.ErrSlugTaken):
		response.Conflict(c, response.CodeConflict, err.Error())
	case errors.Is(err, service.ErrNothingToDo):
		response.BadRequest(c, response.CodeValidation, err.Error())
	case errors.Is(err, service.ErrInvalidTimeRange):
		response.BadRequest(c, response.CodeValidation, err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, response.CodeConflict, "the record was changed by someone else, reload and try again")
	default:
		return false
	}
	return true
}
