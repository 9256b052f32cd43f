package dto

// ── static pages ──

// PageSummary page index entry
type PageSummary struct {
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	UpdatedAt string `json:"updated_at"`
}

// PageResponse full page
type PageResponse struct {
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Content   string `json:"content"`
	UpdatedAt string `json:"updated_at"`
}

// UpdatePageRequest admin edit; creates the page when the slug is new
type UpdatePageRequest struct {
	Title    string `json:"title"    binding:"required,min=2,max=200"`
	Category string `json:"category" binding:"omitempty,oneof=legal info"`
	Content  string `json:"content"  binding:"required"`
}
