package model

import "time"

// Submission statuses
const (
	SubmissionPending   = "pending"
	SubmissionSubmitted = "submitted"
	SubmissionGraded    = "graded"
	SubmissionReturned  = "returned"
)

// submissionStatusLabels display labels shown to parents and students
var submissionStatusLabels = map[string]string{
	SubmissionPending:   "Not started",
	SubmissionSubmitted: "Submitted",
	SubmissionGraded:    "Graded",
	SubmissionReturned:  "Needs revision",
}

// SubmissionStatusLabel maps a status to its display label; unknown statuses map to themselves
func SubmissionStatusLabel(status string) string {
	if l, ok := submissionStatusLabels[status]; ok {
		return l
	}
	return status
}

// submissionTransitions allowed status changes
var submissionTransitions = map[string][]string{
	SubmissionPending:   {SubmissionSubmitted},
	SubmissionSubmitted: {SubmissionSubmitted, SubmissionGraded, SubmissionReturned},
	SubmissionReturned:  {SubmissionSubmitted},
	SubmissionGraded:    {SubmissionReturned},
}

// CanTransitionSubmission reports whether a submission may move from one status to another
func CanTransitionSubmission(from, to string) bool {
	for _, s := range submissionTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Assignment assignments table
type Assignment struct {
	AssignmentID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	CourseID     string     `gorm:"type:uuid;not null"                             json:"course_id"`
	LessonID     *string    `gorm:"type:uuid"                                      json:"lesson_id,omitempty"`
	Title        string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Instructions string     `gorm:"type:text"                                      json:"instructions"`
	DueAt        *time.Time `json:"due_at,omitempty"`
	MaxPoints    int        `gorm:"not null;default:100"                           json:"max_points"`
	XPReward     int        `gorm:"column:xp_reward;not null;default:25"           json:"xp_reward"`
	SoftDeleteModel

	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

// TableName table name
func (Assignment) TableName() string { return "assignments" }

// Submission submissions table
type Submission struct {
	SubmissionID  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"submission_id"`
	AssignmentID  string     `gorm:"type:uuid;not null"                             json:"assignment_id"`
	StudentID     string     `gorm:"type:uuid;not null"                             json:"student_id"`
	Content       string     `gorm:"type:text"                                      json:"content"`
	AttachmentURL string     `gorm:"type:varchar(500)"                              json:"attachment_url,omitempty"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	Score         *int       `json:"score,omitempty"`
	Feedback      string     `gorm:"type:text"                                      json:"feedback,omitempty"`
	IsLate        bool       `gorm:"not null;default:false"                         json:"is_late"`
	XPAwarded     bool       `gorm:"column:xp_awarded;not null;default:false"       json:"-"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	GradedAt      *time.Time `json:"graded_at,omitempty"`
	GradedBy      *string    `gorm:"type:uuid"                                      json:"graded_by,omitempty"`
	VersionedModel

	Assignment *Assignment `gorm:"foreignKey:AssignmentID;references:AssignmentID" json:"assignment,omitempty"`
	Student    *Student    `gorm:"foreignKey:StudentID;references:StudentID"       json:"student,omitempty"`
}

// TableName table name
func (Submission) TableName() string { return "submissions" }
