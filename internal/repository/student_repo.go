package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ourcodingkiddos/backend/internal/model"
)

// StudentRepository learner profile data access
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id string) (*model.Student, error)
	// GetForUpdate locks the row until the surrounding transaction ends
	GetForUpdate(ctx context.Context, id string) (*model.Student, error)
	GetByUserID(ctx context.Context, userID string) (*model.Student, error)
	ListByParent(ctx context.Context, parentID string) ([]model.Student, error)
	Update(ctx context.Context, student *model.Student) error
	Leaderboard(ctx context.Context, limit int) ([]model.Student, error)
	ResetInactiveStreaks(ctx context.Context, activeSince time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo creates a StudentRepository
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var s model.Student
	err := r.db.WithContext(ctx).
		Where("student_id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepo) GetForUpdate(ctx context.Context, id string) (*model.Student, error) {
	var s model.Student
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("student_id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepo) GetByUserID(ctx context.Context, userID string) (*model.Student, error) {
	var s model.Student
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepo) ListByParent(ctx context.Context, parentID string) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("created_at ASC").
		Find(&students).Error
	return students, err
}

func (r *studentRepo) Update(ctx context.Context, student *model.Student) error {
	return updateVersioned(ctx, r.db, student, &student.Version)
}

func (r *studentRepo) Leaderboard(ctx context.Context, limit int) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Select("student_id", "display_name", "total_xp", "level").
		Order("total_xp DESC, created_at ASC").
		Limit(limit).
		Find(&students).Error
	return students, err
}

// ResetInactiveStreaks zeroes the streak of every student whose last activity is before activeSince
func (r *studentRepo) ResetInactiveStreaks(ctx context.Context, activeSince time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("streak_days > 0 AND (last_activity_date IS NULL OR last_activity_date < ?)", activeSince).
		UpdateColumns(map[string]interface{}{
			"streak_days": 0,
			"version":     gorm.Expr("version + 1"),
			"updated_at":  gorm.Expr("NOW()"),
		})
	return res.RowsAffected, res.Error
}

func (r *studentRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Student{}).Count(&n).Error
	return n, err
}
