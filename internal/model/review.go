package model

// Review reviews table. At most one review per user per course.
type Review struct {
	ReviewID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"review_id"`
	CourseID string `gorm:"type:uuid;not null"                             json:"course_id"`
	UserID   string `gorm:"type:uuid;not null"                             json:"user_id"`
	Rating   int    `gorm:"not null"                                       json:"rating"`
	Comment  string `gorm:"type:text"                                      json:"comment"`
	BaseModel

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName table name
func (Review) TableName() string { return "reviews" }
