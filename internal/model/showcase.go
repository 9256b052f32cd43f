package model

import (
	"time"

	"gorm.io/datatypes"
)

// Project review statuses
const (
	ProjectPending  = "pending"
	ProjectApproved = "approved"
	ProjectRejected = "rejected"
)

// StudentProject student_projects table. A project submitted to the public showcase.
type StudentProject struct {
	ProjectID    string                      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"project_id"`
	StudentID    string                      `gorm:"type:uuid;not null"                             json:"student_id"`
	CourseID     *string                     `gorm:"type:uuid"                                      json:"course_id,omitempty"`
	Slug         string                      `gorm:"type:varchar(160);not null"                     json:"slug"`
	Title        string                      `gorm:"type:varchar(200);not null"                     json:"title"`
	Description  string                      `gorm:"type:text"                                      json:"description"`
	ProjectURL   string                      `gorm:"type:varchar(500)"                              json:"project_url,omitempty"`
	ThumbnailURL string                      `gorm:"type:varchar(500)"                              json:"thumbnail_url,omitempty"`
	Tags         datatypes.JSONSlice[string] `gorm:"type:jsonb"                                     json:"tags"`
	Status       string                      `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	IsFeatured   bool                        `gorm:"not null;default:false"                         json:"is_featured"`
	LikeCount    int                         `gorm:"not null;default:0"                             json:"like_count"`
	ViewCount    int                         `gorm:"not null;default:0"                             json:"view_count"`
	ReviewNote   string                      `gorm:"type:varchar(500)"                              json:"review_note,omitempty"`
	ReviewedBy   *string                     `gorm:"type:uuid"                                      json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time                  `json:"reviewed_at,omitempty"`
	VersionedModel

	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
	Course  *Course  `gorm:"foreignKey:CourseID;references:CourseID"   json:"course,omitempty"`
}

// TableName table name
func (StudentProject) TableName() string { return "student_projects" }
