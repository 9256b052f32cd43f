package model

import (
	"time"

	"gorm.io/datatypes"
)

// Course levels
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Program programs table. A bundle of courses marketed together (e.g. "Game Dev Track").
type Program struct {
	ProgramID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"program_id"`
	Slug        string `gorm:"type:varchar(120);not null"                     json:"slug"`
	Title       string `gorm:"type:varchar(200);not null"                     json:"title"`
	Summary     string `gorm:"type:varchar(500)"                              json:"summary"`
	Description string `gorm:"type:text"                                      json:"description"`
	AgeMin      int    `gorm:"not null;default:5"                             json:"age_min"`
	AgeMax      int    `gorm:"not null;default:18"                            json:"age_max"`
	PriceCents  int64  `gorm:"not null;default:0"                             json:"price_cents"`
	ImageURL    string `gorm:"type:varchar(500)"                              json:"image_url,omitempty"`
	Position    int    `gorm:"not null;default:0"                             json:"position"`
	IsPublished bool   `gorm:"not null;default:false"                         json:"is_published"`
	SoftDeleteModel

	Courses []Course `gorm:"foreignKey:ProgramID;references:ProgramID" json:"courses,omitempty"`
}

// TableName table name
func (Program) TableName() string { return "programs" }

// Course courses table
type Course struct {
	CourseID      string                      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	ProgramID     *string                     `gorm:"type:uuid"                                      json:"program_id,omitempty"`
	InstructorID  *string                     `gorm:"type:uuid"                                      json:"instructor_id,omitempty"`
	Slug          string                      `gorm:"type:varchar(120);not null"                     json:"slug"`
	Title         string                      `gorm:"type:varchar(200);not null"                     json:"title"`
	Summary       string                      `gorm:"type:varchar(500)"                              json:"summary"`
	Description   string                      `gorm:"type:text"                                      json:"description"`
	Level         string                      `gorm:"type:varchar(20);not null;default:'beginner'"   json:"level"`
	Language      string                      `gorm:"type:varchar(50);not null"                      json:"language"`
	AgeMin        int                         `gorm:"not null;default:5"                             json:"age_min"`
	AgeMax        int                         `gorm:"not null;default:18"                            json:"age_max"`
	PriceCents    int64                       `gorm:"not null;default:0"                             json:"price_cents"`
	ThumbnailURL  string                      `gorm:"type:varchar(500)"                              json:"thumbnail_url,omitempty"`
	Outcomes      datatypes.JSONSlice[string] `gorm:"type:jsonb"                                     json:"outcomes"`
	DurationWeeks int                         `gorm:"not null;default:0"                             json:"duration_weeks"`
	CompletionXP  int                         `gorm:"column:completion_xp;not null;default:100"      json:"completion_xp"`
	IsPublished   bool                        `gorm:"not null;default:false"                         json:"is_published"`
	VersionedModel

	Program    *Program `gorm:"foreignKey:ProgramID;references:ProgramID"  json:"program,omitempty"`
	Instructor *User    `gorm:"foreignKey:InstructorID;references:UserID"  json:"instructor,omitempty"`
	Lessons    []Lesson `gorm:"foreignKey:CourseID;references:CourseID"    json:"lessons,omitempty"`
}

// TableName table name
func (Course) TableName() string { return "courses" }

// IsFree free courses enroll without payment
func (c *Course) IsFree() bool { return c.PriceCents == 0 }

// Lesson lessons table
type Lesson struct {
	LessonID        string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"lesson_id"`
	CourseID        string `gorm:"type:uuid;not null"                             json:"course_id"`
	Slug            string `gorm:"type:varchar(120);not null"                     json:"slug"`
	Title           string `gorm:"type:varchar(200);not null"                     json:"title"`
	Summary         string `gorm:"type:varchar(500)"                              json:"summary"`
	Content         string `gorm:"type:text"                                      json:"content"`
	VideoURL        string `gorm:"type:varchar(500)"                              json:"video_url,omitempty"`
	Position        int    `gorm:"not null;default:0"                             json:"position"`
	DurationMinutes int    `gorm:"not null;default:0"                             json:"duration_minutes"`
	XPReward        int    `gorm:"column:xp_reward;not null;default:10"           json:"xp_reward"`
	IsPreview       bool   `gorm:"not null;default:false"                         json:"is_preview"`
	SoftDeleteModel
}

// TableName table name
func (Lesson) TableName() string { return "lessons" }

// ClassSession class_sessions table. A scheduled live class for a course.
type ClassSession struct {
	ClassSessionID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"class_session_id"`
	CourseID       string    `gorm:"type:uuid;not null"                             json:"course_id"`
	Title          string    `gorm:"type:varchar(200);not null"                     json:"title"`
	Description    string    `gorm:"type:text"                                      json:"description,omitempty"`
	StartsAt       time.Time `gorm:"not null"                                       json:"starts_at"`
	EndsAt         time.Time `gorm:"not null"                                       json:"ends_at"`
	MeetingURL     string    `gorm:"type:varchar(500)"                              json:"meeting_url,omitempty"`
	BaseModel

	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

// TableName table name
func (ClassSession) TableName() string { return "class_sessions" }
