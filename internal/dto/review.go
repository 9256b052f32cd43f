package dto

// ── reviews ──

// CreateReviewRequest new course review
type CreateReviewRequest struct {
	Rating  int    `json:"rating"  binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"omitempty,max=2000"`
}

// UpdateReviewRequest author edit
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"  binding:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" binding:"omitempty,max=2000"`
}

// ReviewResponse review
type ReviewResponse struct {
	ID         string `json:"id"`
	CourseID   string `json:"course_id"`
	UserID     string `json:"user_id"`
	AuthorName string `json:"author_name"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// RatingSummary average and count
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// ReviewListResponse paged reviews plus the course rating summary
type ReviewListResponse struct {
	List       []ReviewResponse `json:"list"`
	Pagination Pagination       `json:"pagination"`
	Summary    RatingSummary    `json:"summary"`
}
