package dto

// ── users & students ──

// UserResponse public user fields
type UserResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	AvatarURL   string  `json:"avatar_url,omitempty"`
	IsActive    bool    `json:"is_active"`
	LastLoginAt *string `json:"last_login_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// UserListRequest admin user listing
type UserListRequest struct {
	PaginationRequest
	Role    string `form:"role"    binding:"omitempty,oneof=parent student instructor admin"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// CreateUserRequest admin-created account; a temporary password is generated when none is given
type CreateUserRequest struct {
	Name        string `json:"name"         binding:"required,min=2,max=100"`
	Email       string `json:"email"        binding:"required,email,max=255"`
	Role        string `json:"role"         binding:"required,oneof=parent student instructor admin"`
	Password    string `json:"password"     binding:"omitempty,min=8,max=72"`
	ParentEmail string `json:"parent_email" binding:"omitempty,email"`
}

// CreateUserResponse created account plus the generated password
type CreateUserResponse struct {
	User         UserResponse `json:"user"`
	TempPassword string       `json:"temp_password,omitempty"`
}

// UpdateUserRequest admin update
type UpdateUserRequest struct {
	Name     *string `json:"name"      binding:"omitempty,min=2,max=100"`
	Role     *string `json:"role"      binding:"omitempty,oneof=parent student instructor admin"`
	IsActive *bool   `json:"is_active"`
}

// ResetPasswordResponse generated password
type ResetPasswordResponse struct {
	TempPassword string `json:"temp_password"`
}

// StudentResponse learner profile
type StudentResponse struct {
	ID                string  `json:"id"`
	UserID            *string `json:"user_id,omitempty"`
	ParentID          *string `json:"parent_id,omitempty"`
	DisplayName       string  `json:"display_name"`
	BirthYear         int     `json:"birth_year,omitempty"`
	GradeLevel        string  `json:"grade_level,omitempty"`
	AvatarURL         string  `json:"avatar_url,omitempty"`
	TotalXP           int     `json:"total_xp"`
	Level             int     `json:"level"`
	StreakDays        int     `json:"streak_days"`
	LongestStreak     int     `json:"longest_streak"`
	LessonsCompleted  int     `json:"lessons_completed"`
	CoursesCompleted  int     `json:"courses_completed"`
	ProjectsPublished int     `json:"projects_published"`
}

// CreateChildRequest parent adds a child. LoginEmail/LoginPassword also create a student login.
type CreateChildRequest struct {
	DisplayName   string `json:"display_name"   binding:"required,min=1,max=100"`
	BirthYear     int    `json:"birth_year"     binding:"omitempty,min=1990,max=2100"`
	GradeLevel    string `json:"grade_level"    binding:"omitempty,max=20"`
	LoginEmail    string `json:"login_email"    binding:"omitempty,email,max=255"`
	LoginPassword string `json:"login_password" binding:"required_with=LoginEmail,omitempty,min=8,max=72"`
}

// ChildProgressResponse parent dashboard for one child
type ChildProgressResponse struct {
	Student           StudentResponse         `json:"student"`
	Enrollments       []EnrollmentResponse    `json:"enrollments"`
	Badges            []StudentBadgeResponse  `json:"badges"`
	RecentXP          []XPTransactionResponse `json:"recent_xp"`
	RecentSubmissions []SubmissionResponse    `json:"recent_submissions"`
	Certificates      []CertificateResponse   `json:"certificates"`
}
