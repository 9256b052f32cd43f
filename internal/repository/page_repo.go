package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ourcodingkiddos/backend/internal/model"
)

// PageRepository static page data access
type PageRepository interface {
	GetBySlug(ctx context.Context, slug string) (*model.Page, error)
	List(ctx context.Context) ([]model.Page, error)
	// Upsert inserts the page or overwrites the existing one with the same slug
	Upsert(ctx context.Context, page *model.Page) error
}

type pageRepo struct {
	db *gorm.DB
}

// NewPageRepo creates a PageRepository
func NewPageRepo(db *gorm.DB) PageRepository {
	return &pageRepo{db: db}
}

func (r *pageRepo) GetBySlug(ctx context.Context, slug string) (*model.Page, error) {
	var p model.Page
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pageRepo) List(ctx context.Context) ([]model.Page, error) {
	var pages []model.Page
	err := r.db.WithContext(ctx).
		Select("page_id", "slug", "title", "category", "updated_at").
		Order("category ASC, title ASC").
		Find(&pages).Error
	return pages, err
}

func (r *pageRepo) Upsert(ctx context.Context, page *model.Page) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "category", "content", "updated_at", "updated_by"}),
		}).
		Create(page).Error
}
