package dto

// ── contact ──

// ContactRequest public contact form
type ContactRequest struct {
	Name    string `json:"name"    binding:"required,min=1,max=100"`
	Email   string `json:"email"   binding:"required,email,max=255"`
	Subject string `json:"subject" binding:"omitempty,max=200"`
	Message string `json:"message" binding:"required,min=10,max=5000"`
}

// ContactResponse stored message
type ContactResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// ContactListRequest admin inbox filters
type ContactListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=new read archived"`
}

// UpdateContactStatusRequest status change
type UpdateContactStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=new read archived"`
}
