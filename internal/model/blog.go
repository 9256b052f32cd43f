package model

import (
	"time"

	"gorm.io/datatypes"
)

// BlogPost blog_posts table
type BlogPost struct {
	PostID        string                      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"post_id"`
	AuthorID      *string                     `gorm:"type:uuid"                                      json:"author_id,omitempty"`
	Slug          string                      `gorm:"type:varchar(160);not null"                     json:"slug"`
	Title         string                      `gorm:"type:varchar(200);not null"                     json:"title"`
	Excerpt       string                      `gorm:"type:varchar(500)"                              json:"excerpt"`
	Content       string                      `gorm:"type:text"                                      json:"content"`
	CoverImageURL string                      `gorm:"type:varchar(500)"                              json:"cover_image_url,omitempty"`
	Tags          datatypes.JSONSlice[string] `gorm:"type:jsonb"                                     json:"tags"`
	IsPublished   bool                        `gorm:"not null;default:false"                         json:"is_published"`
	PublishedAt   *time.Time                  `json:"published_at,omitempty"`
	ViewCount     int                         `gorm:"not null;default:0"                             json:"view_count"`
	LikeCount     int                         `gorm:"not null;default:0"                             json:"like_count"`
	VersionedModel

	Author *User `gorm:"foreignKey:AuthorID;references:UserID" json:"author,omitempty"`
}

// TableName table name
func (BlogPost) TableName() string { return "blog_posts" }

// Comment comments table
type Comment struct {
	CommentID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"comment_id"`
	PostID     string `gorm:"type:uuid;not null"                             json:"post_id"`
	UserID     string `gorm:"type:uuid;not null"                             json:"user_id"`
	Content    string `gorm:"type:text;not null"                             json:"content"`
	IsApproved bool   `gorm:"not null;default:false"                         json:"is_approved"`
	SoftDeleteModel

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName table name
func (Comment) TableName() string { return "comments" }

// Like targets
const (
	LikeTargetPost    = "blog_post"
	LikeTargetProject = "project"
)

// Like likes table
type Like struct {
	LikeID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"like_id"`
	TargetType string    `gorm:"type:varchar(20);not null"                      json:"target_type"`
	TargetID   string    `gorm:"type:uuid;not null"                             json:"target_id"`
	UserID     string    `gorm:"type:uuid;not null"                             json:"user_id"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName table name
func (Like) TableName() string { return "likes" }
