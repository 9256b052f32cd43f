package model

// Contact message statuses
const (
	ContactNew      = "new"
	ContactRead     = "read"
	ContactArchived = "archived"
)

// ContactMessage contact_messages table
type ContactMessage struct {
	ContactMessageID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"contact_message_id"`
	Name             string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email            string `gorm:"type:varchar(255);not null"                     json:"email"`
	Subject          string `gorm:"type:varchar(200)"                              json:"subject"`
	Message          string `gorm:"type:text;not null"                             json:"message"`
	Status           string `gorm:"type:varchar(20);not null;default:'new'"        json:"status"`
	IPAddress        string `gorm:"type:varchar(64)"                               json:"ip_address,omitempty"`
	BaseModel
}

// TableName table name
func (ContactMessage) TableName() string { return "contact_messages" }
