package model

import "time"

// Certificate certificates table. Issued once per student per completed course.
type Certificate struct {
	CertificateID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"certificate_id"`
	StudentID        string    `gorm:"type:uuid;not null"                             json:"student_id"`
	CourseID         string    `gorm:"type:uuid;not null"                             json:"course_id"`
	VerificationCode string    `gorm:"type:varchar(32);not null"                      json:"verification_code"`
	StudentName      string    `gorm:"type:varchar(100);not null"                     json:"student_name"`
	CourseTitle      string    `gorm:"type:varchar(200);not null"                     json:"course_title"`
	IssuedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"issued_at"`
	BaseModel
}

// TableName table name
func (Certificate) TableName() string { return "certificates" }
