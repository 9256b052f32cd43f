package model

import "time"

// Enrollment statuses
const (
	EnrollmentActive    = "active"
	EnrollmentPaused    = "paused"
	EnrollmentCompleted = "completed"
	EnrollmentCancelled = "cancelled"
)

// ValidEnrollmentStatus reports whether s is a known enrollment status
func ValidEnrollmentStatus(s string) bool {
	switch s {
	case EnrollmentActive, EnrollmentPaused, EnrollmentCompleted, EnrollmentCancelled:
		return true
	}
	return false
}

// Enrollment enrollments table. Links a student to a course.
type Enrollment struct {
	EnrollmentID    string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"enrollment_id"`
	StudentID       string     `gorm:"type:uuid;not null"                             json:"student_id"`
	CourseID        string     `gorm:"type:uuid;not null"                             json:"course_id"`
	Status          string     `gorm:"type:varchar(20);not null;default:'active'"     json:"status"`
	ProgressPercent int        `gorm:"not null;default:0"                             json:"progress_percent"`
	EnrolledAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"enrolled_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	PaymentID       *string    `gorm:"type:uuid"                                      json:"payment_id,omitempty"`
	VersionedModel

	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
	Course  *Course  `gorm:"foreignKey:CourseID;references:CourseID"   json:"course,omitempty"`
}

// TableName table name
func (Enrollment) TableName() string { return "enrollments" }

// LessonProgress lesson_progress table. One row per completed lesson per student.
type LessonProgress struct {
	LessonProgressID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"lesson_progress_id"`
	StudentID        string    `gorm:"type:uuid;not null"                             json:"student_id"`
	LessonID         string    `gorm:"type:uuid;not null"                             json:"lesson_id"`
	CourseID         string    `gorm:"type:uuid;not null"                             json:"course_id"`
	CompletedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"completed_at"`
}

// TableName table name
func (LessonProgress) TableName() string { return "lesson_progress" }
