package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/service"
	"ourcodingkiddos/backend/pkg/response"
)

// UserHandler admin account management and the parent dashboard
type UserHandler struct {
	userSvc    service.UserService
	studentSvc service.StudentService
}

// NewUserHandler creates a UserHandler
func NewUserHandler(userSvc service.UserService, studentSvc service.StudentService) *UserHandler {
	return &UserHandler{userSvc: userSvc, studentSvc: studentSvc}
}

// ListUsers GET /api/admin/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	var req dto.UserListRequest
	if !bindQuery(c, &req) {
		return
	}

	users, total, err := h.userSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, users, total, req.GetPage(), req.GetPageSize())
}

// CreateUser POST /api/admin/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.userSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateUser PUT /api/admin/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, user)
}

// DeleteUser DELETE /api/admin/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.userSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, nil)
}

// ResetPassword POST /api/admin/users/:id/reset-password
func (h *UserHandler) ResetPassword(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.userSvc.ResetPassword(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, result)
}

// ── parent dashboard ──

// ListChildren GET /api/parent/children
func (h *UserHandler) ListChildren(c *gin.Context) {
	parentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	children, err := h.studentSvc.ListChildren(c.Request.Context(), parentID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": children})
}

// CreateChild POST /api/parent/children
func (h *UserHandler) CreateChild(c *gin.Context) {
	parentID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CreateChildRequest
	if !bindJSON(c, &req) {
		return
	}

	child, err := h.studentSvc.CreateChild(c.Request.Context(), parentID, &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.Created(c, child)
}

// ChildProgress GET /api/parent/children/:id/progress
func (h *UserHandler) ChildProgress(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	progress, err := h.studentSvc.Progress(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, progress)
}

func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, err.Error())
	case errors.Is(err, service.ErrEmailExists):
		response.Conflict(c, 12002, err.Error())
	case errors.Is(err, service.ErrUserSelfDelete):
		response.BadRequest(c, 12003, err.Error())
	case errors.Is(err, service.ErrUserSelfRoleChange):
		response.BadRequest(c, 12005, err.Error())
	case errors.Is(err, service.ErrParentNotFound):
		response.BadRequest(c, 12006, err.Error())
	case errors.Is(err, service.ErrInvalidRole):
		response.BadRequest(c, 12007, err.Error())
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
