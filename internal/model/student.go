package model

import "time"

// Student students table. A learner profile owned by a parent; UserID is set when the
// student also has a login of their own.
type Student struct {
	StudentID         string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	UserID            *string    `gorm:"type:uuid"                                      json:"user_id,omitempty"`
	ParentID          *string    `gorm:"type:uuid"                                      json:"parent_id,omitempty"`
	DisplayName       string     `gorm:"type:varchar(100);not null"                     json:"display_name"`
	BirthYear         int        `json:"birth_year,omitempty"`
	GradeLevel        string     `gorm:"type:varchar(20)"                               json:"grade_level,omitempty"`
	AvatarURL         string     `gorm:"type:varchar(500)"                              json:"avatar_url,omitempty"`
	TotalXP           int        `gorm:"column:total_xp;not null;default:0"             json:"total_xp"`
	Level             int        `gorm:"not null;default:1"                             json:"level"`
	StreakDays        int        `gorm:"not null;default:0"                             json:"streak_days"`
	LongestStreak     int        `gorm:"not null;default:0"                             json:"longest_streak"`
	LastActivityDate  *time.Time `gorm:"type:date"                                      json:"last_activity_date,omitempty"`
	LessonsCompleted  int        `gorm:"not null;default:0"                             json:"lessons_completed"`
	CoursesCompleted  int        `gorm:"not null;default:0"                             json:"courses_completed"`
	ProjectsPublished int        `gorm:"not null;default:0"                             json:"projects_published"`
	VersionedModel

	User   *User `gorm:"foreignKey:UserID;references:UserID"   json:"user,omitempty"`
	Parent *User `gorm:"foreignKey:ParentID;references:UserID" json:"parent,omitempty"`
}

// TableName table name
func (Student) TableName() string { return "students" }
