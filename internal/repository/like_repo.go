package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ourcodingkiddos/backend/internal/model"
)

// LikeRepository likes on posts and projects
type LikeRepository interface {
	Exists(ctx context.Context, targetType, targetID, userID string) (bool, error)
	// Add returns false when the like already existed
	Add(ctx context.Context, targetType, targetID, userID string) (bool, error)
	// Remove returns false when there was nothing to remove
	Remove(ctx context.Context, targetType, targetID, userID string) (bool, error)
}

type likeRepo struct {
	db *gorm.DB
}

// NewLikeRepo creates a LikeRepository
func NewLikeRepo(db *gorm.DB) LikeRepository {
	return &likeRepo{db: db}
}

func (r *likeRepo) Exists(ctx context.Context, targetType, targetID, userID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Like{}).
		Where("target_type = ? AND target_id = ? AND user_id = ?", targetType, targetID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *likeRepo) Add(ctx context.Context, targetType, targetID, userID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "target_type"}, {Name: "target_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&model.Like{TargetType: targetType, TargetID: targetID, UserID: userID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *likeRepo) Remove(ctx context.Context, targetType, targetID, userID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ? AND user_id = ?", targetType, targetID, userID).
		Delete(&model.Like{})
	return res.RowsAffected > 0, res.Error
}
