package repository

import (
	"context"

	"gorm.io/gorm"

	"ourcodingkiddos/backend/internal/model"
)

// ContactRepository contact form messages
type ContactRepository interface {
	Create(ctx context.Context, msg *model.ContactMessage) error
	GetByID(ctx context.Context, id string) (*model.ContactMessage, error)
	List(ctx context.Context, status string, offset, limit int) ([]model.ContactMessage, int64, error)
	Update(ctx context.Context, msg *model.ContactMessage) error
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type contactRepo struct {
	db *gorm.DB
}

// NewContactRepo creates a ContactRepository
func NewContactRepo(db *gorm.DB) ContactRepository {
	return &contactRepo{db: db}
}

func (r *contactRepo) Create(ctx context.Context, msg *model.ContactMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *contactRepo) GetByID(ctx context.Context, id string) (*model.ContactMessage, error) {
	var m model.ContactMessage
	err := r.db.WithContext(ctx).
		Where("contact_message_id = ?", id).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *contactRepo) List(ctx context.Context, status string, offset, limit int) ([]model.ContactMessage, int64, error) {
	var list []model.ContactMessage
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ContactMessage{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *contactRepo) Update(ctx context.Context, msg *model.ContactMessage) error {
	return r.db.WithContext(ctx).Save(msg).Error
}

func (r *contactRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.ContactMessage{}).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}
