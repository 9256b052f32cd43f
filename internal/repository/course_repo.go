package repository

import (
	"context"

	"gorm.io/gorm"

	"ourcodingkiddos/backend/internal/model"
)

// CourseFilter catalog filters
type CourseFilter struct {
	Level         string
	Language      string
	Age           int
	ProgramSlug   string
	Keyword       string
	InstructorID  string
	PublishedOnly bool
}

// CourseRepository course data access
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	GetBySlug(ctx context.Context, slug string) (*model.Course, error)
	List(ctx context.Context, filter CourseFilter, offset, limit int) ([]model.Course, int64, error)
	Update(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id string, deletedBy string) error
	SlugTaken(ctx context.Context, slug, excludeID string) (bool, error)
	Count(ctx context.Context, publishedOnly bool) (int64, error)
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo creates a CourseRepository
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Omit("Program", "Instructor", "Lessons").Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var c model.Course
	err := r.db.WithContext(ctx).
		Preload("Program").
		Preload("Instructor").
		Where("course_id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *courseRepo) GetBySlug(ctx context.Context, slug string) (*model.Course, error) {
	var c model.Course
	err := r.db.WithContext(ctx).
		Preload("Program").
		Preload("Instructor").
		Where("slug = ?", slug).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *courseRepo) List(ctx context.Context, filter CourseFilter, offset, limit int) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Course{})
	if filter.PublishedOnly {
		db = db.Where("is_published = ?", true)
	}
	if filter.Level != "" {
		db = db.Where("level = ?", filter.Level)
	}
	if filter.Language != "" {
		db = db.Where("LOWER(language) = LOWER(?)", filter.Language)
	}
	if filter.Age > 0 {
		db = db.Where("age_min <= ? AND age_max >= ?", filter.Age, filter.Age)
	}
	if filter.ProgramSlug != "" {
		db = db.Where("program_id IN (?)",
			r.db.Model(&model.Program{}).Select("program_id").Where("slug = ?", filter.ProgramSlug))
	}
	if filter.InstructorID != "" {
		db = db.Where("instructor_id = ?", filter.InstructorID)
	}
	if filter.Keyword != "" {
		p := likePattern(filter.Keyword)
		db = db.Where("(title ILIKE ? OR summary ILIKE ?)", p, p)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Program").
		Offset(offset).Limit(limit).
		Order("title ASC").
		Find(&courses).Error; err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

func (r *courseRepo) Update(ctx context.Context, course *model.Course) error {
	return updateVersioned(ctx, r.db, course, &course.Version)
}

func (r *courseRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return softDelete(ctx, r.db, &model.Course{}, "course_id", id, deletedBy)
}

func (r *courseRepo) SlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	return slugTaken(ctx, r.db, &model.Course{}, "course_id", slug, excludeID)
}

func (r *courseRepo) Count(ctx context.Context, publishedOnly bool) (int64, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&model.Course{})
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	err := q.Count(&n).Error
	return n, err
}
