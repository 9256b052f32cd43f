package model

import "time"

// Payment statuses
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentExpired  = "expired"
	PaymentRefunded = "refunded"
)

// Payment payments table. One Stripe checkout attempt.
type Payment struct {
	PaymentID           string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"payment_id"`
	UserID              string     `gorm:"type:uuid;not null"                             json:"user_id"`
	StudentID           *string    `gorm:"type:uuid"                                      json:"student_id,omitempty"`
	CourseID            *string    `gorm:"type:uuid"                                      json:"course_id,omitempty"`
	ProgramID           *string    `gorm:"type:uuid"                                      json:"program_id,omitempty"`
	AmountCents         int64      `gorm:"not null"                                       json:"amount_cents"`
	Currency            string     `gorm:"type:varchar(10);not null;default:'usd'"        json:"currency"`
	StripeSessionID     *string    `gorm:"type:varchar(255)"                              json:"stripe_session_id,omitempty"`
	StripePaymentIntent string     `gorm:"type:varchar(255)"                              json:"-"`
	Status              string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	PaidAt              *time.Time `json:"paid_at,omitempty"`
	VersionedModel
}

// TableName table name
func (Payment) TableName() string { return "payments" }
