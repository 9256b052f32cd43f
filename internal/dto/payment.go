package dto

// ── payments ──

// CheckoutRequest start a Stripe checkout for a course or a program
type CheckoutRequest struct {
	StudentID string  `json:"student_id" binding:"required,uuid"`
	CourseID  *string `json:"course_id"  binding:"required_without=ProgramID,omitempty,uuid"`
	ProgramID *string `json:"program_id" binding:"required_without=CourseID,omitempty,uuid"`
}

// CheckoutResponse redirect target
type CheckoutResponse struct {
	PaymentID   string `json:"payment_id"`
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// PaymentResponse payment record
type PaymentResponse struct {
	ID          string  `json:"id"`
	StudentID   *string `json:"student_id,omitempty"`
	CourseID    *string `json:"course_id,omitempty"`
	ProgramID   *string `json:"program_id,omitempty"`
	AmountCents int64   `json:"amount_cents"`
	Currency    string  `json:"currency"`
	Status      string  `json:"status"`
	PaidAt      *string `json:"paid_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// WebhookAck webhook reply
type WebhookAck struct {
	Received bool   `json:"received"`
	Handled  bool   `json:"handled"`
	Type     string `json:"type"`
}
