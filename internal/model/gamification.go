package model

import "time"

// Badge criteria: the student counter a badge threshold is compared against
const (
	CriterionLessonsCompleted  = "lessons_completed"
	CriterionStreakDays        = "streak_days"
	CriterionCoursesCompleted  = "courses_completed"
	CriterionProjectsPublished = "projects_published"
	CriterionTotalXP           = "total_xp"
)

// ValidCriterion reports whether c is a known badge criterion
func ValidCriterion(c string) bool {
	switch c {
	case CriterionLessonsCompleted, CriterionStreakDays, CriterionCoursesCompleted,
		CriterionProjectsPublished, CriterionTotalXP:
		return true
	}
	return false
}

// Badge badges table
type Badge struct {
	BadgeID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"badge_id"`
	Slug        string `gorm:"type:varchar(120);not null"                     json:"slug"`
	Name        string `gorm:"type:varchar(100);not null"                     json:"name"`
	Description string `gorm:"type:varchar(500)"                              json:"description"`
	Icon        string `gorm:"type:varchar(100)"                              json:"icon"`
	Criterion   string `gorm:"type:varchar(40);not null"                      json:"criterion"`
	Threshold   int    `gorm:"not null"                                       json:"threshold"`
	XPReward    int    `gorm:"column:xp_reward;not null;default:0"            json:"xp_reward"`
	IsActive    bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName table name
func (Badge) TableName() string { return "badges" }

// StudentBadge student_badges table
type StudentBadge struct {
	StudentBadgeID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_badge_id"`
	StudentID      string    `gorm:"type:uuid;not null"                             json:"student_id"`
	BadgeID        string    `gorm:"type:uuid;not null"                             json:"badge_id"`
	AwardedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"awarded_at"`

	Badge *Badge `gorm:"foreignKey:BadgeID;references:BadgeID" json:"badge,omitempty"`
}

// TableName table name
func (StudentBadge) TableName() string { return "student_badges" }

// XP ledger reasons
const (
	XPReasonLesson     = "lesson_completed"
	XPReasonCourse     = "course_completed"
	XPReasonBadge      = "badge_awarded"
	XPReasonAssignment = "assignment_graded"
	XPReasonProject    = "project_published"
)

// XPTransaction xp_transactions table. Append-only XP ledger.
type XPTransaction struct {
	XPTransactionID string    `gorm:"column:xp_transaction_id;type:uuid;primaryKey;default:gen_random_uuid()" json:"xp_transaction_id"`
	StudentID       string    `gorm:"type:uuid;not null"                                                    json:"student_id"`
	Amount          int       `gorm:"not null"                                                              json:"amount"`
	Reason          string    `gorm:"type:varchar(40);not null"                                             json:"reason"`
	SourceID        *string   `gorm:"type:uuid"                                                             json:"source_id,omitempty"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                                    json:"created_at"`
}

// TableName table name
func (XPTransaction) TableName() string { return "xp_transactions" }
