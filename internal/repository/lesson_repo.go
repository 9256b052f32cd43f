package repository

import (
	"context"

	"gorm.io/gorm"

	"ourcodingkiddos/backend/internal/model"
)

// LessonRepository lesson data access
type LessonRepository interface {
	Create(ctx context.Context, lesson *model.Lesson) error
	GetByID(ctx context.Context, id string) (*model.Lesson, error)
	GetByCourseAndSlug(ctx context.Context, courseID, slug string) (*model.Lesson, error)
	ListByCourse(ctx context.Context, courseID string) ([]model.Lesson, error)
	CountByCourse(ctx context.Context, courseID string) (int64, error)
	MaxPosition(ctx context.Context, courseID string) (int, error)
	Update(ctx context.Context, lesson *model.Lesson) error
	Delete(ctx context.Context, id string, deletedBy string) error
	SlugTaken(ctx context.Context, courseID, slug, excludeID string) (bool, error)
}

type lessonRepo struct {
	db *gorm.DB
}

// NewLessonRepo creates a LessonRepository
func NewLessonRepo(db *gorm.DB) LessonRepository {
	return &lessonRepo{db: db}
}

func (r *lessonRepo) Create(ctx context.Context, lesson *model.Lesson) error {
	return r.db.WithContext(ctx).Create(lesson).Error
}

func (r *lessonRepo) GetByID(ctx context.Context, id string) (*model.Lesson, error) {
	var l model.Lesson
	err := r.db.WithContext(ctx).
		Where("lesson_id = ?", id).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *lessonRepo) GetByCourseAndSlug(ctx context.Context, courseID, slug string) (*model.Lesson, error) {
	var l model.Lesson
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND slug = ?", courseID, slug).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *lessonRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position ASC, created_at ASC").
		Find(&lessons).Error
	return lessons, err
}

func (r *lessonRepo) CountByCourse(ctx context.Context, courseID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Lesson{}).
		Where("course_id = ?", courseID).
		Count(&n).Error
	return n, err
}

func (r *lessonRepo) MaxPosition(ctx context.Context, courseID string) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&model.Lesson{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	return max, err
}

func (r *lessonRepo) Update(ctx context.Context, lesson *model.Lesson) error {
	return r.db.WithContext(ctx).Save(lesson).Error
}

func (r *lessonRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return softDelete(ctx, r.db, &model.Lesson{}, "lesson_id", id, deletedBy)
}

func (r *lessonRepo) SlugTaken(ctx context.Context, courseID, slug, excludeID string) (bool, error) {
	return slugTaken(ctx, r.db.Where("course_id = ?", courseID), &model.Lesson{}, "lesson_id", slug, excludeID)
}
