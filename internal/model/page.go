package model

// Page categories
const (
	PageLegal = "legal"
	PageInfo  = "info"
)

// Page pages table. Static legal and informational content (privacy, COPPA, terms, ...).
type Page struct {
	PageID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"page_id"`
	Slug     string `gorm:"type:varchar(120);not null"                     json:"slug"`
	Title    string `gorm:"type:varchar(200);not null"                     json:"title"`
	Category string `gorm:"type:varchar(20);not null;default:'legal'"      json:"category"`
	Content  string `gorm:"type:text;not null"                             json:"content"`
	BaseModel
}

// TableName table name
func (Page) TableName() string { return "pages" }
