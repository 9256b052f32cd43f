package repository

import (
	"context"

	"gorm.io/gorm"

	"ourcodingkiddos/backend/internal/model"
)

// XPRepository append-only XP ledger
type XPRepository interface {
	Create(ctx context.Context, tx *model.XPTransaction) error
	ListByStudent(ctx context.Context, studentID string, limit int) ([]model.XPTransaction, error)
}

type xpRepo struct {
	db *gorm.DB
}

// NewXPRepo creates an XPRepository
func NewXPRepo(db *gorm.DB) XPRepository {
	return &xpRepo{db: db}
}

func (r *xpRepo) Create(ctx context.Context, tx *model.XPTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *xpRepo) ListByStudent(ctx context.Context, studentID string, limit int) ([]model.XPTransaction, error) {
	var list []model.XPTransaction
	q := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&list).Error
	return list, err
}
