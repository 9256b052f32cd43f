package repository

import (
	"context"

	"gorm.io/gorm"

	"ourcodingkiddos/backend/internal/model"
)

// ProgramRepository program data access
type ProgramRepository interface {
	Create(ctx context.Context, program *model.Program) error
	GetByID(ctx context.Context, id string) (*model.Program, error)
	// GetBySlug loads the program with its courses, published ones only when publishedOnly is set
	GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*model.Program, error)
	List(ctx context.Context, publishedOnly bool) ([]model.Program, error)
	Update(ctx context.Context, program *model.Program) error
	Delete(ctx context.Context, id string, deletedBy string) error
	SlugTaken(ctx context.Context, slug, excludeID string) (bool, error)
}

type programRepo struct {
	db *gorm.DB
}

// NewProgramRepo creates a ProgramRepository
func NewProgramRepo(db *gorm.DB) ProgramRepository {
	return &programRepo{db: db}
}

func (r *programRepo) Create(ctx context.Context, program *model.Program) error {
	return r.db.WithContext(ctx).Create(program).Error
}

func (r *programRepo) GetByID(ctx context.Context, id string) (*model.Program, error) {
	var p model.Program
	err := r.db.WithContext(ctx).
		Where("program_id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *programRepo) GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*model.Program, error) {
	var p model.Program
	q := r.db.WithContext(ctx).
		Preload("Courses", func(db *gorm.DB) *gorm.DB {
			if publishedOnly {
				db = db.Where("is_published = ?", true)
			}
			return db.Order("title ASC")
		}).
		Where("slug = ?", slug)
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	if err := q.First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *programRepo) List(ctx context.Context, publishedOnly bool) ([]model.Program, error) {
	var programs []model.Program
	q := r.db.WithContext(ctx)
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	err := q.Order("position ASC, title ASC").Find(&programs).Error
	return programs, err
}

func (r *programRepo) Update(ctx context.Context, program *model.Program) error {
	return r.db.WithContext(ctx).Omit("Courses").Save(program).Error
}

func (r *programRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return softDelete(ctx, r.db, &model.Program{}, "program_id", id, deletedBy)
}

func (r *programRepo) SlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	return slugTaken(ctx, r.db, &model.Program{}, "program_id", slug, excludeID)
}
