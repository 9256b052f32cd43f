package dto

// ── auth ──

// RegisterRequest self sign-up. Only parents and students may register themselves.
type RegisterRequest struct {
	Name       string `json:"name"        binding:"required,min=2,max=100"`
	Email      string `json:"email"       binding:"required,email,max=255"`
	Password   string `json:"password"    binding:"required,min=8,max=72"`
	Role       string `json:"role"        binding:"omitempty,oneof=parent student"`
	BirthYear  int    `json:"birth_year"  binding:"omitempty,min=1990,max=2100"`
	GradeLevel string `json:"grade_level" binding:"omitempty,max=20"`
}

// LoginRequest email + password
type LoginRequest struct {
	Email      string `json:"email"    binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshTokenRequest body form of the refresh token, used when cookies are unavailable
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// TokenResponse token pair
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	ExpiresIn    int          `json:"expires_in"` // seconds
	RememberMe   bool         `json:"-"`
	User         UserResponse `json:"user"`
}

// MeResponse current session profile
type MeResponse struct {
	User     UserResponse      `json:"user"`
	Student  *StudentResponse  `json:"student,omitempty"`
	Children []StudentResponse `json:"children,omitempty"`
}
