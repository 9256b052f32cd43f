package dto

import "time"

// ── assignments & submissions ──

// CreateAssignmentRequest new assignment for a course
type CreateAssignmentRequest struct {
	LessonID     *string    `json:"lesson_id"    binding:"omitempty,uuid"`
	Title        string     `json:"title"        binding:"required,min=2,max=200"`
	Instructions string     `json:"instructions"`
	DueAt        *time.Time `json:"due_at"`
	MaxPoints    int        `json:"max_points"   binding:"omitempty,min=1,max=1000"`
	XPReward     *int       `json:"xp_reward"    binding:"omitempty,min=0,max=1000"`
}

// UpdateAssignmentRequest partial update
type UpdateAssignmentRequest struct {
	LessonID     *string    `json:"lesson_id"    binding:"omitempty,uuid"`
	Title        *string    `json:"title"        binding:"omitempty,min=2,max=200"`
	Instructions *string    `json:"instructions"`
	DueAt        *time.Time `json:"due_at"`
	MaxPoints    *int       `json:"max_points"   binding:"omitempty,min=1,max=1000"`
	XPReward     *int       `json:"xp_reward"    binding:"omitempty,min=0,max=1000"`
}

// AssignmentResponse assignment, with the student's own submission in student listings
type AssignmentResponse struct {
	ID           string              `json:"id"`
	CourseID     string              `json:"course_id"`
	CourseTitle  string              `json:"course_title,omitempty"`
	LessonID     *string             `json:"lesson_id,omitempty"`
	Title        string              `json:"title"`
	Instructions string              `json:"instructions"`
	DueAt        *string             `json:"due_at,omitempty"`
	MaxPoints    int                 `json:"max_points"`
	XPReward     int                 `json:"xp_reward"`
	Status       string              `json:"status,omitempty"`
	StatusLabel  string              `json:"status_label,omitempty"`
	Submission   *SubmissionResponse `json:"submission,omitempty"`
}

// SubmitAssignmentRequest StudentID is required when a parent submits for a child
type SubmitAssignmentRequest struct {
	StudentID     string `json:"student_id"     binding:"omitempty,uuid"`
	Content       string `json:"content"        binding:"required_without=AttachmentURL,max=20000"`
	AttachmentURL string `json:"attachment_url" binding:"omitempty,url,max=500"`
}

// GradeSubmissionRequest grade; score may not exceed the assignment's max points
type GradeSubmissionRequest struct {
	Score    *int   `json:"score"    binding:"required,min=0"`
	Feedback string `json:"feedback" binding:"omitempty,max=5000"`
}

// ReturnSubmissionRequest send back for revision
type ReturnSubmissionRequest struct {
	Feedback string `json:"feedback" binding:"required,max=5000"`
}

// SubmissionListRequest filters for instructors
type SubmissionListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=pending submitted graded returned"`
}

// SubmissionResponse submission with its display label
type SubmissionResponse struct {
	ID            string  `json:"id"`
	AssignmentID  string  `json:"assignment_id"`
	StudentID     string  `json:"student_id"`
	StudentName   string  `json:"student_name,omitempty"`
	Content       string  `json:"content"`
	AttachmentURL string  `json:"attachment_url,omitempty"`
	Status        string  `json:"status"`
	StatusLabel   string  `json:"status_label"`
	Score         *int    `json:"score,omitempty"`
	Feedback      string  `json:"feedback,omitempty"`
	IsLate        bool    `json:"is_late"`
	SubmittedAt   *string `json:"submitted_at,omitempty"`
	GradedAt      *string `json:"graded_at,omitempty"`
}
