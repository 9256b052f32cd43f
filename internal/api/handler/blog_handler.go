package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/service"
	"ourcodingkiddos/backend/pkg/response"
)

// BlogHandler public blog and its admin side
type BlogHandler struct {
	blogSvc service.BlogService
}

// NewBlogHandler creates a BlogHandler
func NewBlogHandler(blogSvc service.BlogService) *BlogHandler {
	return &BlogHandler{blogSvc: blogSvc}
}

// List GET /api/blog
func (h *BlogHandler) List(c *gin.Context) {
	var req dto.BlogListRequest
	if !bindQuery(c, &req) {
		return
	}

	posts, total, err := h.blogSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, posts, total, req.GetPage(), req.GetPageSize())
}

// Get GET /api/blog/:slug
func (h *BlogHandler) Get(c *gin.Context) {
	post, err := h.blogSvc.Get(c.Request.Context(), c.Param("slug"), optionalCaller(c))
	if err != nil {
		h.handleBlogError(c, err)
		return
	}
	response.OK(c, post)
}

// ListComments GET /api/blog/:slug/comments
func (h *BlogHandler) ListComments(c *gin.Context) {
	var req dto.PaginationRequest
	if !bindQuery(c, &req) {
		return
	}

	comments, total, err := h.blogSvc.ListComments(c.Request.Context(), c.Param("slug"), &req)
	if err != nil {
		h.handleBlogError(c, err)
		return
	}
	response.OKPage(c, comments, total, req.GetPage(), req.GetPageSize())
}

// AddComment POST /api/blog/:slug/comments
func (h *BlogHandler) AddComment(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.blogSvc.AddComment(c.Request.Context(), c.Param("slug"), &req, caller)
	if err != nil {
		h.handleBlogError(c, err)
		return
	}
	response.Created(c, comment)
}

// ToggleLike POST /api/blog/:slug/like
func (h *BlogHandler) ToggleLike(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.blogSvc.ToggleLike(c.Request.Context(), c.Param("slug"), caller)
	if err != nil {
		h.handleBlogError(c, err)
		return
	}
	response.OK(c, result)
}

// ── admin ──

// AdminList GET /api/admin/blog
func (h *BlogHandler) AdminList(c *gin.Context) {
	var req dto.AdminBlogListRequest
	if !bindQuery(c, &req) {
		return
	}

	posts, total, err := h.blogSvc.AdminList(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, posts, total, req.GetPage(), req.GetPageSize())
}

// AdminGet GET /api/admin/blog/:id
func (h *BlogHandler) AdminGet(c *gin.Context) {
	post, err := h.blogSvc.AdminGet(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleBlogError(c, err)
		return
	}
	response.OK(c, post)
}

// Create POST /api/admin/blog
func (h *BlogHandler) Create(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.CreateBlogPostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.blogSvc.Create(c.Request.Context(), &req, caller)
	if err != nil {
		h.handleBlogError(c, err)
		return
	}
	response.Created(c, post)
}

// Update PUT /api/admin/blog/:id
func (h *BlogHandler) Update(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.UpdateBlogPostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.blogSvc.Update(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		h.handleBlogError(c, err)
		return
	}
	response.OK(c, post)
}

// Delete DELETE /api/admin/blog/:id
func (h *BlogHandler) Delete(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	if err := h.blogSvc.Delete(c.Request.Context(), c.Param("id"), caller); err != nil {
		h.handleBlogError(c, err)
		return
	}
	response.OK(c, nil)
}

// Publish PATCH /api/admin/blog/:id/publish
func (h *BlogHandler) Publish(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.PublishRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.blogSvc.SetPublished(c.Request.Context(), c.Param("id"), *req.IsPublished, caller)
	if err != nil {
		h.handleBlogError(c, err)
		return
	}
	response.OK(c, post)
}

// ModerationQueue GET /api/admin/comments
func (h *BlogHandler) ModerationQueue(c *gin.Context) {
	var req dto.CommentListRequest
	if !bindQuery(c, &req) {
		return
	}

	comments, total, err := h.blogSvc.ModerationQueue(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, comments, total, req.GetPage(), req.GetPageSize())
}

type approveCommentRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

// ApproveComment PATCH /api/admin/comments/:id
func (h *BlogHandler) ApproveComment(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req approveCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.blogSvc.ApproveComment(c.Request.Context(), c.Param("id"), *req.Approved, caller)
	if err != nil {
		h.handleBlogError(c, err)
		return
	}
	response.OK(c, comment)
}

// DeleteComment DELETE /api/admin/comments/:id
func (h *BlogHandler) DeleteComment(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	if err := h.blogSvc.DeleteComment(c.Request.Context(), c.Param("id"), caller); err != nil {
		h.handleBlogError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *BlogHandler) handleBlogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		response.NotFound(c, 17001, err.Error())
	case errors.Is(err, service.ErrCommentNotFound):
		response.NotFound(c, 17002, err.Error())
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
