package repository

import (
	"context"

	"gorm.io/gorm"

	"ourcodingkiddos/backend/internal/model"
)

// ProjectRepository showcase project data access
type ProjectRepository interface {
	Create(ctx context.Context, project *model.StudentProject) error
	GetByID(ctx context.Context, id string) (*model.StudentProject, error)
	GetBySlug(ctx context.Context, slug string) (*model.StudentProject, error)
	// ListApproved public showcase: approved only, featured first
	ListApproved(ctx context.Context, tag string, offset, limit int) ([]model.StudentProject, int64, error)
	ListByStatus(ctx context.Context, status string, offset, limit int) ([]model.StudentProject, int64, error)
	CountApprovedByStudent(ctx context.Context, studentID string) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	Update(ctx context.Context, project *model.StudentProject) error
	SlugTaken(ctx context.Context, slug, excludeID string) (bool, error)
	IncrementViews(ctx context.Context, id string) error
	AddLikes(ctx context.Context, id string, delta int) (int, error)
}

type projectRepo struct {
	db *gorm.DB
}

// NewProjectRepo creates a ProjectRepository
func NewProjectRepo(db *gorm.DB) ProjectRepository {
	return &projectRepo{db: db}
}

func (r *projectRepo) Create(ctx context.Context, project *model.StudentProject) error {
	return r.db.WithContext(ctx).Omit("Student", "Course").Create(project).Error
}

func (r *projectRepo) GetByID(ctx context.Context, id string) (*model.StudentProject, error) {
	var p model.StudentProject
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("project_id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) GetBySlug(ctx context.Context, slug string) (*model.StudentProject, error) {
	var p model.StudentProject
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("slug = ?", slug).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) ListApproved(ctx context.Context, tag string, offset, limit int) ([]model.StudentProject, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.StudentProject{}).Where("status = ?", model.ProjectApproved)
	if tag != "" {
		db = db.Where("tags @> ?::jsonb", tagJSON(tag))
	}
	return r.page(db, "is_featured DESC, reviewed_at DESC NULLS LAST, created_at DESC", offset, limit)
}

func (r *projectRepo) ListByStatus(ctx context.Context, status string, offset, limit int) ([]model.StudentProject, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.StudentProject{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	return r.page(db, "created_at ASC", offset, limit)
}

func (r *projectRepo) page(db *gorm.DB, order string, offset, limit int) ([]model.StudentProject, int64, error) {
	var list []model.StudentProject
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("Student").
		Offset(offset).Limit(limit).
		Order(order).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *projectRepo) CountApprovedByStudent(ctx context.Context, studentID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.StudentProject{}).
		Where("student_id = ? AND status = ?", studentID, model.ProjectApproved).
		Count(&n).Error
	return n, err
}

func (r *projectRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.StudentProject{}).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}

func (r *projectRepo) Update(ctx context.Context, project *model.StudentProject) error {
	return updateVersioned(ctx, r.db, project, &project.Version)
}

func (r *projectRepo) SlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	return slugTaken(ctx, r.db, &model.StudentProject{}, "project_id", slug, excludeID)
}

func (r *projectRepo) IncrementViews(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.StudentProject{}).
		Where("project_id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *projectRepo) AddLikes(ctx context.Context, id string, delta int) (int, error) {
	return addCounter(ctx, r.db, &model.StudentProject{}, "project_id", id, "like_count", delta)
}
