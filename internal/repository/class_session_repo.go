package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"ourcodingkiddos/backend/internal/model"
)

// ClassSessionRepository live class data access
type ClassSessionRepository interface {
	Create(ctx context.Context, session *model.ClassSession) error
	GetByID(ctx context.Context, id string) (*model.ClassSession, error)
	// ListUpcoming sessions of the given courses that end after from, soonest first
	ListUpcoming(ctx context.Context, courseIDs []string, from time.Time, limit int) ([]model.ClassSession, error)
	ExistsAt(ctx context.Context, courseID string, startsAt time.Time) (bool, error)
	Update(ctx context.Context, session *model.ClassSession) error
	Delete(ctx context.Context, id string) error
}

type classSessionRepo struct {
	db *gorm.DB
}

// NewClassSessionRepo creates a ClassSessionRepository
func NewClassSessionRepo(db *gorm.DB) ClassSessionRepository {
	return &classSessionRepo{db: db}
}

func (r *classSessionRepo) Create(ctx context.Context, session *model.ClassSession) error {
	return r.db.WithContext(ctx).Omit("Course").Create(session).Error
}

func (r *classSessionRepo) GetByID(ctx context.Context, id string) (*model.ClassSession, error) {
	var s model.ClassSession
	err := r.db.WithContext(ctx).
		Where("class_session_id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *classSessionRepo) ListUpcoming(ctx context.Context, courseIDs []string, from time.Time, limit int) ([]model.ClassSession, error) {
	var sessions []model.ClassSession
	if len(courseIDs) == 0 {
		return sessions, nil
	}
	q := r.db.WithContext(ctx).
		Preload("Course").
		Where("course_id IN ? AND ends_at > ?", courseIDs, from).
		Order("starts_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&sessions).Error
	return sessions, err
}

func (r *classSessionRepo) ExistsAt(ctx context.Context, courseID string, startsAt time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.ClassSession{}).
		Where("course_id = ? AND starts_at = ?", courseID, startsAt).
		Count(&n).Error
	return n > 0, err
}

func (r *classSessionRepo) Update(ctx context.Context, session *model.ClassSession) error {
	return r.db.WithContext(ctx).Omit("Course").Save(session).Error
}

func (r *classSessionRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Where("class_session_id = ?", id).
		Delete(&model.ClassSession{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
