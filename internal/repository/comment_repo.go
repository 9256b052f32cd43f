package repository

import (
	"context"

	"gorm.io/gorm"

	"ourcodingkiddos/backend/internal/model"
)

// CommentRepository blog comment data access
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	ListByPost(ctx context.Context, postID string, approvedOnly bool, offset, limit int) ([]model.Comment, int64, error)
	// ListForModeration lists comments across posts; approved nil lists all
	ListForModeration(ctx context.Context, approved *bool, offset, limit int) ([]model.Comment, int64, error)
	Update(ctx context.Context, comment *model.Comment) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type commentRepo struct {
	db *gorm.DB
}

// NewCommentRepo creates a CommentRepository
func NewCommentRepo(db *gorm.DB) CommentRepository {
	return &commentRepo{db: db}
}

func (r *commentRepo) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Omit("User").Create(comment).Error
}

func (r *commentRepo) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("comment_id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *commentRepo) ListByPost(ctx context.Context, postID string, approvedOnly bool, offset, limit int) ([]model.Comment, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.Comment{}).Where("post_id = ?", postID)
	if approvedOnly {
		db = db.Where("is_approved = ?", true)
	}
	return r.page(db, "created_at ASC", offset, limit)
}

func (r *commentRepo) ListForModeration(ctx context.Context, approved *bool, offset, limit int) ([]model.Comment, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.Comment{})
	if approved != nil {
		db = db.Where("is_approved = ?", *approved)
	}
	return r.page(db, "created_at DESC", offset, limit)
}

func (r *commentRepo) page(db *gorm.DB, order string, offset, limit int) ([]model.Comment, int64, error) {
	var list []model.Comment
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("User").
		Offset(offset).Limit(limit).
		Order(order).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *commentRepo) Update(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Omit("User").Save(comment).Error
}

func (r *commentRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return softDelete(ctx, r.db, &model.Comment{}, "comment_id", id, deletedBy)
}
