package dto

import "ourcodingkiddos/backend/pkg/response"

// PaginationRequest common paging query
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage page number with default
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize page size with default
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset row offset
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// Pagination page metadata for responses that carry more than a list
type Pagination = response.Pagination

// NewPagination computes total pages
func NewPagination(total int64, page, pageSize int) Pagination {
	return response.NewPagination(total, page, pageSize)
}

// PublishRequest toggles visibility
type PublishRequest struct {
	IsPublished *bool `json:"is_published" binding:"required"`
}
