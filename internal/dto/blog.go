package dto

// ── blog ──

// BlogListRequest public listing
type BlogListRequest struct {
	PaginationRequest
	Tag     string `form:"tag"     binding:"omitempty,max=50"`
	Keyword string `form:"keyword" binding:"omitempty,max=100"`
}

// AdminBlogListRequest admin listing including drafts
type AdminBlogListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=published draft"`
}

// BlogPostSummary listing card
type BlogPostSummary struct {
	ID            string   `json:"id"`
	Slug          string   `json:"slug"`
	Title         string   `json:"title"`
	Excerpt       string   `json:"excerpt"`
	CoverImageURL string   `json:"cover_image_url,omitempty"`
	Tags          []string `json:"tags"`
	AuthorName    string   `json:"author_name,omitempty"`
	IsPublished   bool     `json:"is_published"`
	PublishedAt   *string  `json:"published_at,omitempty"`
	ViewCount     int      `json:"view_count"`
	LikeCount     int      `json:"like_count"`
}

// BlogPostDetail full post
type BlogPostDetail struct {
	BlogPostSummary
	Content   string `json:"content"`
	Liked     bool   `json:"liked"`
	UpdatedAt string `json:"updated_at"`
}

// CreateBlogPostRequest admin create
type CreateBlogPostRequest struct {
	Title         string   `json:"title"           binding:"required,min=2,max=200"`
	Slug          string   `json:"slug"            binding:"omitempty,slug,max=160"`
	Excerpt       string   `json:"excerpt"         binding:"omitempty,max=500"`
	Content       string   `json:"content"         binding:"required"`
	CoverImageURL string   `json:"cover_image_url" binding:"omitempty,max=500"`
	Tags          []string `json:"tags"            binding:"omitempty,max=10,dive,min=1,max=50"`
	IsPublished   bool     `json:"is_published"`
}

// UpdateBlogPostRequest partial update
type UpdateBlogPostRequest struct {
	Title         *string   `json:"title"           binding:"omitempty,min=2,max=200"`
	Slug          *string   `json:"slug"            binding:"omitempty,slug,max=160"`
	Excerpt       *string   `json:"excerpt"         binding:"omitempty,max=500"`
	Content       *string   `json:"content"`
	CoverImageURL *string   `json:"cover_image_url" binding:"omitempty,max=500"`
	Tags          *[]string `json:"tags"`
}

// CommentResponse blog comment
type CommentResponse struct {
	ID         string `json:"id"`
	PostID     string `json:"post_id"`
	UserID     string `json:"user_id"`
	AuthorName string `json:"author_name"`
	Content    string `json:"content"`
	IsApproved bool   `json:"is_approved"`
	CreatedAt  string `json:"created_at"`
}

// CreateCommentRequest new comment; held for moderation
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=2000"`
}

// CommentListRequest moderation queue
type CommentListRequest struct {
	PaginationRequest
	Approved *bool `form:"approved"`
}

// LikeResponse like toggle outcome
type LikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}
