package dto

// ── admin bulk operations ──

// BulkRowError one failed row; rows are 1-based (header excluded for files)
type BulkRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// BulkAccount account created by an import, with its one-time password
type BulkAccount struct {
	Row          int    `json:"row"`
	Email        string `json:"email"`
	TempPassword string `json:"temp_password"`
}

// BulkResult per-row outcome summary
type BulkResult struct {
	Total    int            `json:"total"`
	Success  int            `json:"success"`
	Failed   int            `json:"failed"`
	Errors   []BulkRowError `json:"errors"`
	Accounts []BulkAccount  `json:"accounts,omitempty"`
}

// BulkEnrollRequest enroll many students into one course
type BulkEnrollRequest struct {
	StudentIDs []string `json:"student_ids" binding:"required,min=1,max=1000"`
	CourseID   string   `json:"course_id"   binding:"required,uuid"`
}

// BulkStatusRequest set one status on many enrollments
type BulkStatusRequest struct {
	EnrollmentIDs []string `json:"enrollment_ids" binding:"required,min=1,max=1000"`
	Status        string   `json:"status"         binding:"required,oneof=active paused completed cancelled"`
}

// ExportEnrollmentsRequest export filter
type ExportEnrollmentsRequest struct {
	CourseID string `form:"course_id" binding:"omitempty,uuid"`
}

// StatsResponse admin dashboard counters
type StatsResponse struct {
	UsersByRole          map[string]int64 `json:"users_by_role"`
	Students             int64            `json:"students"`
	Courses              int64            `json:"courses"`
	PublishedCourses     int64            `json:"published_courses"`
	ActiveEnrollments    int64            `json:"active_enrollments"`
	CompletedEnrollments int64            `json:"completed_enrollments"`
	Certificates         int64            `json:"certificates"`
	PendingSubmissions   int64            `json:"pending_submissions"`
	PendingProjects      int64            `json:"pending_projects"`
	NewContactMessages   int64            `json:"new_contact_messages"`
	RevenueCents         int64            `json:"revenue_cents"`
}
