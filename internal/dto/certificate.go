package dto

// ── certificates ──

// CertificateResponse issued certificate
type CertificateResponse struct {
	ID               string `json:"id"`
	StudentID        string `json:"student_id"`
	CourseID         string `json:"course_id"`
	VerificationCode string `json:"verification_code"`
	StudentName      string `json:"student_name"`
	CourseTitle      string `json:"course_title"`
	IssuedAt         string `json:"issued_at"`
	ImageURL         string `json:"image_url"`
}

// VerifyCertificateRequest code lookup (query or JSON body)
type VerifyCertificateRequest struct {
	Code string `json:"code" form:"code" binding:"required,max=64"`
}

// VerifyCertificateResponse verification outcome; Certificate is set only when valid
type VerifyCertificateResponse struct {
	Valid       bool                 `json:"valid"`
	Certificate *CertificateResponse `json:"certificate,omitempty"`
}

// IssueCertificateRequest admin manual issue
type IssueCertificateRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	CourseID  string `json:"course_id"  binding:"required,uuid"`
}
