package dto

// ── showcase ──

// ProjectListRequest public showcase filters
type ProjectListRequest struct {
	PaginationRequest
	Tag string `form:"tag" binding:"omitempty,max=50"`
}

// AdminProjectListRequest review queue
type AdminProjectListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
}

// ProjectResponse showcase project
type ProjectResponse struct {
	ID           string   `json:"id"`
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ProjectURL   string   `json:"project_url,omitempty"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
	Tags         []string `json:"tags"`
	StudentID    string   `json:"student_id"`
	StudentName  string   `json:"student_name"`
	CourseID     *string  `json:"course_id,omitempty"`
	Status       string   `json:"status"`
	IsFeatured   bool     `json:"is_featured"`
	LikeCount    int      `json:"like_count"`
	ViewCount    int      `json:"view_count"`
	ReviewNote   string   `json:"review_note,omitempty"`
	Liked        bool     `json:"liked"`
	CreatedAt    string   `json:"created_at"`
}

// CreateProjectRequest submit a project. StudentID required for parents.
type CreateProjectRequest struct {
	StudentID    string   `json:"student_id"    binding:"omitempty,uuid"`
	CourseID     *string  `json:"course_id"     binding:"omitempty,uuid"`
	Title        string   `json:"title"         binding:"required,min=2,max=200"`
	Description  string   `json:"description"   binding:"omitempty,max=5000"`
	ProjectURL   string   `json:"project_url"   binding:"omitempty,url,max=500"`
	ThumbnailURL string   `json:"thumbnail_url" binding:"omitempty,max=500"`
	Tags         []string `json:"tags"          binding:"omitempty,max=10,dive,min=1,max=50"`
}

// ReviewProjectRequest admin moderation
type ReviewProjectRequest struct {
	Status     string `json:"status"      binding:"required,oneof=pending approved rejected"`
	IsFeatured *bool  `json:"is_featured"`
	Note       string `json:"note"        binding:"omitempty,max=500"`
}

// UploadResponse stored file
type UploadResponse struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}
