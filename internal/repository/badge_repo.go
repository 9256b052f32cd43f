package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ourcodingkiddos/backend/internal/model"
)

// BadgeRepository badge catalog and awards
type BadgeRepository interface {
	Create(ctx context.Context, badge *model.Badge) error
	GetByID(ctx context.Context, id string) (*model.Badge, error)
	GetBySlug(ctx context.Context, slug string) (*model.Badge, error)
	List(ctx context.Context, activeOnly bool) ([]model.Badge, error)
	Update(ctx context.Context, badge *model.Badge) error
	Delete(ctx context.Context, id string) error
	SlugTaken(ctx context.Context, slug, excludeID string) (bool, error)

	// Award records the badge for the student; returns false when it was already held
	Award(ctx context.Context, studentID, badgeID string, at time.Time) (bool, error)
	ListAwarded(ctx context.Context, studentID string) ([]model.StudentBadge, error)
}

type badgeRepo struct {
	db *gorm.DB
}

// NewBadgeRepo creates a BadgeRepository
func NewBadgeRepo(db *gorm.DB) BadgeRepository {
	return &badgeRepo{db: db}
}

func (r *badgeRepo) Create(ctx context.Context, badge *model.Badge) error {
	return r.db.WithContext(ctx).Create(badge).Error
}

func (r *badgeRepo) GetByID(ctx context.Context, id string) (*model.Badge, error) {
	var b model.Badge
	err := r.db.WithContext(ctx).
		Where("badge_id = ?", id).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *badgeRepo) GetBySlug(ctx context.Context, slug string) (*model.Badge, error) {
	var b model.Badge
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *badgeRepo) List(ctx context.Context, activeOnly bool) ([]model.Badge, error) {
	var badges []model.Badge
	q := r.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("criterion ASC, threshold ASC").Find(&badges).Error
	return badges, err
}

func (r *badgeRepo) Update(ctx context.Context, badge *model.Badge) error {
	return r.db.WithContext(ctx).Save(badge).Error
}

func (r *badgeRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("badge_id = ?", id).Delete(&model.StudentBadge{}).Error; err != nil {
			return err
		}
		res := tx.Where("badge_id = ?", id).Delete(&model.Badge{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *badgeRepo) SlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	return slugTaken(ctx, r.db, &model.Badge{}, "badge_id", slug, excludeID)
}

func (r *badgeRepo) Award(ctx context.Context, studentID, badgeID string, at time.Time) (bool, error) {
	sb := &model.StudentBadge{StudentID: studentID, BadgeID: badgeID, AwardedAt: at}
	res := r.db.WithContext(ctx).
		Omit("Badge").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "badge_id"}},
			DoNothing: true,
		}).
		Create(sb)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *badgeRepo) ListAwarded(ctx context.Context, studentID string) ([]model.StudentBadge, error) {
	var list []model.StudentBadge
	err := r.db.WithContext(ctx).
		Preload("Badge").
		Where("student_id = ?", studentID).
		Order("awarded_at DESC").
		Find(&list).Error
	return list, err
}
