package repository

import (
	"context"

	"gorm.io/gorm"

	"ourcodingkiddos/backend/internal/model"
)

// BlogFilter listing filters
type BlogFilter struct {
	Tag     string
	Keyword string
	// Published nil lists every post (admin)
	Published *bool
}

// BlogPostRepository blog post data access
type BlogPostRepository interface {
	Create(ctx context.Context, post *model.BlogPost) error
	GetByID(ctx context.Context, id string) (*model.BlogPost, error)
	GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*model.BlogPost, error)
	List(ctx context.Context, filter BlogFilter, offset, limit int) ([]model.BlogPost, int64, error)
	Update(ctx context.Context, post *model.BlogPost) error
	Delete(ctx context.Context, id string, deletedBy string) error
	SlugTaken(ctx context.Context, slug, excludeID string) (bool, error)
	IncrementViews(ctx context.Context, id string) error
	// AddLikes adjusts the cached like counter and returns the new value
	AddLikes(ctx context.Context, id string, delta int) (int, error)
}

type blogPostRepo struct {
	db *gorm.DB
}

// NewBlogPostRepo creates a BlogPostRepository
func NewBlogPostRepo(db *gorm.DB) BlogPostRepository {
	return &blogPostRepo{db: db}
}

func (r *blogPostRepo) Create(ctx context.Context, post *model.BlogPost) error {
	return r.db.WithContext(ctx).Omit("Author").Create(post).Error
}

func (r *blogPostRepo) GetByID(ctx context.Context, id string) (*model.BlogPost, error) {
	var p model.BlogPost
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *blogPostRepo) GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*model.BlogPost, error) {
	var p model.BlogPost
	q := r.db.WithContext(ctx).Preload("Author").Where("slug = ?", slug)
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	if err := q.First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *blogPostRepo) List(ctx context.Context, filter BlogFilter, offset, limit int) ([]model.BlogPost, int64, error) {
	var posts []model.BlogPost
	var total int64

	db := r.db.WithContext(ctx).Model(&model.BlogPost{})
	if filter.Published != nil {
		db = db.Where("is_published = ?", *filter.Published)
	}
	if filter.Tag != "" {
		db = db.Where("tags @> ?::jsonb", tagJSON(filter.Tag))
	}
	if filter.Keyword != "" {
		p := likePattern(filter.Keyword)
		db = db.Where("(title ILIKE ? OR excerpt ILIKE ?)", p, p)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("Author").
		Offset(offset).Limit(limit).
		Order("published_at DESC NULLS LAST, created_at DESC").
		Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *blogPostRepo) Update(ctx context.Context, post *model.BlogPost) error {
	return updateVersioned(ctx, r.db, post, &post.Version)
}

func (r *blogPostRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return softDelete(ctx, r.db, &model.BlogPost{}, "post_id", id, deletedBy)
}

func (r *blogPostRepo) SlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	return slugTaken(ctx, r.db, &model.BlogPost{}, "post_id", slug, excludeID)
}

func (r *blogPostRepo) IncrementViews(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.BlogPost{}).
		Where("post_id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *blogPostRepo) AddLikes(ctx context.Context, id string, delta int) (int, error) {
	return addCounter(ctx, r.db, &model.BlogPost{}, "post_id", id, "like_count", delta)
}
