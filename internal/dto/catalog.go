package dto

import "time"

// ── programs ──

// ProgramResponse program with its published courses
type ProgramResponse struct {
	ID          string          `json:"id"`
	Slug        string          `json:"slug"`
	Title       string          `json:"title"`
	Summary     string          `json:"summary"`
	Description string          `json:"description,omitempty"`
	AgeMin      int             `json:"age_min"`
	AgeMax      int             `json:"age_max"`
	PriceCents  int64           `json:"price_cents"`
	ImageURL    string          `json:"image_url,omitempty"`
	Position    int             `json:"position"`
	IsPublished bool            `json:"is_published"`
	Courses     []CourseSummary `json:"courses,omitempty"`
}

// CreateProgramRequest admin create
type CreateProgramRequest struct {
	Title       string `json:"title"        binding:"required,min=2,max=200"`
	Slug        string `json:"slug"         binding:"omitempty,slug,max=120"`
	Summary     string `json:"summary"      binding:"omitempty,max=500"`
	Description string `json:"description"`
	AgeMin      int    `json:"age_min"      binding:"omitempty,min=3,max=18"`
	AgeMax      int    `json:"age_max"      binding:"omitempty,min=3,max=18,gtefield=AgeMin"`
	PriceCents  int64  `json:"price_cents"  binding:"omitempty,min=0"`
	ImageURL    string `json:"image_url"    binding:"omitempty,url,max=500"`
	Position    int    `json:"position"`
	IsPublished bool   `json:"is_published"`
}

// UpdateProgramRequest admin update
type UpdateProgramRequest struct {
	Title       *string `json:"title"        binding:"omitempty,min=2,max=200"`
	Slug        *string `json:"slug"         binding:"omitempty,slug,max=120"`
	Summary     *string `json:"summary"      binding:"omitempty,max=500"`
	Description *string `json:"description"`
	AgeMin      *int    `json:"age_min"      binding:"omitempty,min=3,max=18"`
	AgeMax      *int    `json:"age_max"      binding:"omitempty,min=3,max=18"`
	PriceCents  *int64  `json:"price_cents"  binding:"omitempty,min=0"`
	ImageURL    *string `json:"image_url"    binding:"omitempty,max=500"`
	Position    *int    `json:"position"`
	IsPublished *bool   `json:"is_published"`
}

// ── courses ──

// CourseListRequest public catalog filters
type CourseListRequest struct {
	PaginationRequest
	Level    string `form:"level"    binding:"omitempty,oneof=beginner intermediate advanced"`
	Language string `form:"language" binding:"omitempty,max=50"`
	Age      int    `form:"age"      binding:"omitempty,min=3,max=18"`
	Program  string `form:"program"  binding:"omitempty,max=120"`
	Keyword  string `form:"keyword"  binding:"omitempty,max=100"`
	// IncludeDrafts honoured only for instructors and admins
	IncludeDrafts bool `form:"include_drafts"`
}

// CourseSummary catalog card
type CourseSummary struct {
	ID           string  `json:"id"`
	Slug         string  `json:"slug"`
	Title        string  `json:"title"`
	Summary      string  `json:"summary"`
	Level        string  `json:"level"`
	Language     string  `json:"language"`
	AgeMin       int     `json:"age_min"`
	AgeMax       int     `json:"age_max"`
	PriceCents   int64   `json:"price_cents"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty"`
	ProgramID    *string `json:"program_id,omitempty"`
	IsPublished  bool    `json:"is_published"`
}

// InstructorInfo public instructor card
type InstructorInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// CourseDetail course page
type CourseDetail struct {
	CourseSummary
	Description      string                 `json:"description"`
	Outcomes         []string               `json:"outcomes"`
	DurationWeeks    int                    `json:"duration_weeks"`
	CompletionXP     int                    `json:"completion_xp"`
	Instructor       *InstructorInfo        `json:"instructor,omitempty"`
	Lessons          []LessonOutline        `json:"lessons"`
	Rating           RatingSummary          `json:"rating"`
	UpcomingSessions []ClassSessionResponse `json:"upcoming_sessions"`
}

// CreateCourseRequest instructor/admin create
type CreateCourseRequest struct {
	Title         string   `json:"title"          binding:"required,min=2,max=200"`
	Slug          string   `json:"slug"           binding:"omitempty,slug,max=120"`
	Summary       string   `json:"summary"        binding:"omitempty,max=500"`
	Description   string   `json:"description"`
	Level         string   `json:"level"          binding:"omitempty,oneof=beginner intermediate advanced"`
	Language      string   `json:"language"       binding:"required,max=50"`
	AgeMin        int      `json:"age_min"        binding:"omitempty,min=3,max=18"`
	AgeMax        int      `json:"age_max"        binding:"omitempty,min=3,max=18,gtefield=AgeMin"`
	PriceCents    int64    `json:"price_cents"    binding:"omitempty,min=0"`
	ThumbnailURL  string   `json:"thumbnail_url"  binding:"omitempty,max=500"`
	Outcomes      []string `json:"outcomes"       binding:"omitempty,max=20,dive,min=1,max=200"`
	DurationWeeks int      `json:"duration_weeks" binding:"omitempty,min=0,max=104"`
	CompletionXP  int      `json:"completion_xp"  binding:"omitempty,min=0,max=10000"`
	ProgramID     *string  `json:"program_id"     binding:"omitempty,uuid"`
	InstructorID  *string  `json:"instructor_id"  binding:"omitempty,uuid"`
	IsPublished   bool     `json:"is_published"`
}

// UpdateCourseRequest partial update
type UpdateCourseRequest struct {
	Title         *string   `json:"title"          binding:"omitempty,min=2,max=200"`
	Slug          *string   `json:"slug"           binding:"omitempty,slug,max=120"`
	Summary       *string   `json:"summary"        binding:"omitempty,max=500"`
	Description   *string   `json:"description"`
	Level         *string   `json:"level"          binding:"omitempty,oneof=beginner intermediate advanced"`
	Language      *string   `json:"language"       binding:"omitempty,max=50"`
	AgeMin        *int      `json:"age_min"        binding:"omitempty,min=3,max=18"`
	AgeMax        *int      `json:"age_max"        binding:"omitempty,min=3,max=18"`
	PriceCents    *int64    `json:"price_cents"    binding:"omitempty,min=0"`
	ThumbnailURL  *string   `json:"thumbnail_url"  binding:"omitempty,max=500"`
	Outcomes      *[]string `json:"outcomes"`
	DurationWeeks *int      `json:"duration_weeks" binding:"omitempty,min=0,max=104"`
	CompletionXP  *int      `json:"completion_xp"  binding:"omitempty,min=0,max=10000"`
	ProgramID     *string   `json:"program_id"     binding:"omitempty,uuid"`
	InstructorID  *string   `json:"instructor_id"  binding:"omitempty,uuid"`
}

// ── lessons ──

// LessonOutline lesson row in the course outline
type LessonOutline struct {
	ID              string `json:"id"`
	Slug            string `json:"slug"`
	Title           string `json:"title"`
	Summary         string `json:"summary"`
	Position        int    `json:"position"`
	DurationMinutes int    `json:"duration_minutes"`
	XPReward        int    `json:"xp_reward"`
	IsPreview       bool   `json:"is_preview"`
}

// LessonDetail full lesson content
type LessonDetail struct {
	LessonOutline
	CourseID   string `json:"course_id"`
	CourseSlug string `json:"course_slug"`
	Content    string `json:"content"`
	VideoURL   string `json:"video_url,omitempty"`
	Completed  bool   `json:"completed"`
}

// CreateLessonRequest new lesson
type CreateLessonRequest struct {
	Title           string `json:"title"            binding:"required,min=2,max=200"`
	Slug            string `json:"slug"             binding:"omitempty,slug,max=120"`
	Summary         string `json:"summary"          binding:"omitempty,max=500"`
	Content         string `json:"content"`
	VideoURL        string `json:"video_url"        binding:"omitempty,url,max=500"`
	Position        int    `json:"position"         binding:"omitempty,min=0"`
	DurationMinutes int    `json:"duration_minutes" binding:"omitempty,min=0,max=600"`
	XPReward        *int   `json:"xp_reward"        binding:"omitempty,min=0,max=1000"`
	IsPreview       bool   `json:"is_preview"`
}

// UpdateLessonRequest partial update
type UpdateLessonRequest struct {
	Title           *string `json:"title"            binding:"omitempty,min=2,max=200"`
	Slug            *string `json:"slug"             binding:"omitempty,slug,max=120"`
	Summary         *string `json:"summary"          binding:"omitempty,max=500"`
	Content         *string `json:"content"`
	VideoURL        *string `json:"video_url"        binding:"omitempty,max=500"`
	Position        *int    `json:"position"         binding:"omitempty,min=0"`
	DurationMinutes *int    `json:"duration_minutes" binding:"omitempty,min=0,max=600"`
	XPReward        *int    `json:"xp_reward"        binding:"omitempty,min=0,max=1000"`
	IsPreview       *bool   `json:"is_preview"`
}

// ── class sessions ──

// ClassSessionResponse scheduled live class
type ClassSessionResponse struct {
	ID          string `json:"id"`
	CourseID    string `json:"course_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	StartsAt    string `json:"starts_at"`
	EndsAt      string `json:"ends_at"`
	MeetingURL  string `json:"meeting_url,omitempty"`
}

// CreateClassSessionRequest new live class
type CreateClassSessionRequest struct {
	Title       string    `json:"title"       binding:"required,min=2,max=200"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at"   binding:"required"`
	EndsAt      time.Time `json:"ends_at"     binding:"required,gtfield=StartsAt"`
	MeetingURL  string    `json:"meeting_url" binding:"omitempty,url,max=500"`
}

// UpdateClassSessionRequest partial update
type UpdateClassSessionRequest struct {
	Title       *string    `json:"title"       binding:"omitempty,min=2,max=200"`
	Description *string    `json:"description"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	MeetingURL  *string    `json:"meeting_url" binding:"omitempty,max=500"`
}

// ImportSessionsResponse result of an .ics import
type ImportSessionsResponse struct {
	Created  int                    `json:"created"`
	Skipped  int                    `json:"skipped"`
	Sessions []ClassSessionResponse `json:"sessions"`
}
