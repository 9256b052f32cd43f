package repository

import (
	"context"

	"gorm.io/gorm"

	"ourcodingkiddos/backend/internal/model"
)

// SubmissionRepository submission data access
type SubmissionRepository interface {
	Create(ctx context.Context, submission *model.Submission) error
	GetByID(ctx context.Context, id string) (*model.Submission, error)
	GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (*model.Submission, error)
	ListByAssignment(ctx context.Context, assignmentID, status string, offset, limit int) ([]model.Submission, int64, error)
	ListByStudent(ctx context.Context, studentID string, limit int) ([]model.Submission, error)
	Update(ctx context.Context, submission *model.Submission) error
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type submissionRepo struct {
	db *gorm.DB
}

// NewSubmissionRepo creates a SubmissionRepository
func NewSubmissionRepo(db *gorm.DB) SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) Create(ctx context.Context, submission *model.Submission) error {
	return r.db.WithContext(ctx).Omit("Assignment", "Student").Create(submission).Error
}

func (r *submissionRepo) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	var s model.Submission
	err := r.db.WithContext(ctx).
		Preload("Assignment").
		Preload("Student").
		Where("submission_id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *submissionRepo) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (*model.Submission, error) {
	var s model.Submission
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *submissionRepo) ListByAssignment(ctx context.Context, assignmentID, status string, offset, limit int) ([]model.Submission, int64, error) {
	var list []model.Submission
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Submission{}).Where("assignment_id = ?", assignmentID)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("Student").
		Offset(offset).Limit(limit).
		Order("submitted_at ASC NULLS LAST").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *submissionRepo) ListByStudent(ctx context.Context, studentID string, limit int) ([]model.Submission, error) {
	var list []model.Submission
	q := r.db.WithContext(ctx).
		Preload("Assignment").
		Where("student_id = ?", studentID).
		Order("updated_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *submissionRepo) Update(ctx context.Context, submission *model.Submission) error {
	return updateVersioned(ctx, r.db, submission, &submission.Version)
}

func (r *submissionRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Submission{}).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}
