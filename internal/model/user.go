package model

import "time"

// Roles
const (
	RoleParent     = "parent"
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// ValidRole reports whether r is one of the known roles
func ValidRole(r string) bool {
	switch r {
	case RoleParent, RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// User users table. Every person who can sign in.
type User struct {
	UserID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string     `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string     `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string     `gorm:"type:varchar(20);not null;default:'parent'"     json:"role"`
	AvatarURL    string     `gorm:"type:varchar(500)"                              json:"avatar_url,omitempty"`
	IsActive     bool       `gorm:"not null;default:true"                          json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	VersionedModel
}

// TableName table name
func (User) TableName() string { return "users" }
