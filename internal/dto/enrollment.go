package dto

// ── enrollment & progress ──

// EnrollRequest enroll a student into a course
type EnrollRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	CourseID  string `json:"course_id"  binding:"required,uuid"`
}

// EnrollmentResponse enrollment with its course card
type EnrollmentResponse struct {
	ID              string         `json:"id"`
	StudentID       string         `json:"student_id"`
	CourseID        string         `json:"course_id"`
	Course          *CourseSummary `json:"course,omitempty"`
	Status          string         `json:"status"`
	ProgressPercent int            `json:"progress_percent"`
	EnrolledAt      string         `json:"enrolled_at"`
	CompletedAt     *string        `json:"completed_at,omitempty"`
}

// UpdateEnrollmentStatusRequest status change
type UpdateEnrollmentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active paused completed cancelled"`
}

// CompleteLessonRequest StudentID is required when a parent or admin completes on a student's behalf
type CompleteLessonRequest struct {
	StudentID string `json:"student_id" binding:"omitempty,uuid"`
}

// LessonCompletionResponse outcome of completing a lesson
type LessonCompletionResponse struct {
	LessonID         string               `json:"lesson_id"`
	AlreadyCompleted bool                 `json:"already_completed"`
	XPAwarded        int                  `json:"xp_awarded"`
	TotalXP          int                  `json:"total_xp"`
	Level            int                  `json:"level"`
	StreakDays       int                  `json:"streak_days"`
	ProgressPercent  int                  `json:"progress_percent"`
	CourseCompleted  bool                 `json:"course_completed"`
	Certificate      *CertificateResponse `json:"certificate,omitempty"`
	NewBadges        []BadgeResponse      `json:"new_badges,omitempty"`
}
