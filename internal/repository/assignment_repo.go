package repository

import (
	"context"

	"gorm.io/gorm"

	"ourcodingkiddos/backend/internal/model"
)

// AssignmentRepository assignment data access
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.Assignment) error
	GetByID(ctx context.Context, id string) (*model.Assignment, error)
	ListByCourse(ctx context.Context, courseID string) ([]model.Assignment, error)
	ListByCourses(ctx context.Context, courseIDs []string) ([]model.Assignment, error)
	Update(ctx context.Context, assignment *model.Assignment) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo creates an AssignmentRepository
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Create(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Omit("Course").Create(assignment).Error
}

func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*model.Assignment, error) {
	var a model.Assignment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("assignment_id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Assignment, error) {
	var list []model.Assignment
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("due_at ASC NULLS LAST, created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *assignmentRepo) ListByCourses(ctx context.Context, courseIDs []string) ([]model.Assignment, error) {
	var list []model.Assignment
	if len(courseIDs) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("course_id IN ?", courseIDs).
		Order("due_at ASC NULLS LAST, created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *assignmentRepo) Update(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Omit("Course").Save(assignment).Error
}

func (r *assignmentRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return softDelete(ctx, r.db, &model.Assignment{}, "assignment_id", id, deletedBy)
}
