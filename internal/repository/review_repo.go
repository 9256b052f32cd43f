package repository

import (
	"context"

	"gorm.io/gorm"

	"ourcodingkiddos/backend/internal/model"
)

// ReviewRepository course review data access
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	GetByID(ctx context.Context, id string) (*model.Review, error)
	GetByCourseAndUser(ctx context.Context, courseID, userID string) (*model.Review, error)
	ListByCourse(ctx context.Context, courseID string, offset, limit int) ([]model.Review, int64, error)
	// Summary average rating and review count of a course
	Summary(ctx context.Context, courseID string) (float64, int64, error)
	Update(ctx context.Context, review *model.Review) error
	Delete(ctx context.Context, id string) error
}

type reviewRepo struct {
	db *gorm.DB
}

// NewReviewRepo creates a ReviewRepository
func NewReviewRepo(db *gorm.DB) ReviewRepository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) Create(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Omit("User").Create(review).Error
}

func (r *reviewRepo) GetByID(ctx context.Context, id string) (*model.Review, error) {
	var rv model.Review
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("review_id = ?", id).
		First(&rv).Error
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *reviewRepo) GetByCourseAndUser(ctx context.Context, courseID, userID string) (*model.Review, error) {
	var rv model.Review
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		First(&rv).Error
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *reviewRepo) ListByCourse(ctx context.Context, courseID string, offset, limit int) ([]model.Review, int64, error) {
	var list []model.Review
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Review{}).Where("course_id = ?", courseID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("User").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *reviewRepo) Summary(ctx context.Context, courseID string) (float64, int64, error) {
	var row struct {
		Average float64
		Count   int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("course_id = ?", courseID).
		Scan(&row).Error
	return row.Average, row.Count, err
}

func (r *reviewRepo) Update(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Omit("User").Save(review).Error
}

func (r *reviewRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("review_id = ?", id).Delete(&model.Review{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
