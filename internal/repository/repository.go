package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	pkgerrors "ourcodingkiddos/backend/pkg/errors"
)

// Repository aggregate of every data-access interface
type Repository struct {
	db *gorm.DB

	User         UserRepository
	Student      StudentRepository
	Program      ProgramRepository
	Course       CourseRepository
	Lesson       LessonRepository
	ClassSession ClassSessionRepository
	Enrollment   EnrollmentRepository
	Progress     LessonProgressRepository
	Assignment   AssignmentRepository
	Submission   SubmissionRepository
	Badge        BadgeRepository
	XP           XPRepository
	BlogPost     BlogPostRepository
	Comment      CommentRepository
	Like         LikeRepository
	Project      ProjectRepository
	Certificate  CertificateRepository
	Review       ReviewRepository
	Contact      ContactRepository
	Payment      PaymentRepository
	Page         PageRepository
}

// NewRepository builds the aggregate on one connection (or transaction)
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		User:         NewUserRepo(db),
		Student:      NewStudentRepo(db),
		Program:      NewProgramRepo(db),
		Course:       NewCourseRepo(db),
		Lesson:       NewLessonRepo(db),
		ClassSession: NewClassSessionRepo(db),
		Enrollment:   NewEnrollmentRepo(db),
		Progress:     NewLessonProgressRepo(db),
		Assignment:   NewAssignmentRepo(db),
		Submission:   NewSubmissionRepo(db),
		Badge:        NewBadgeRepo(db),
		XP:           NewXPRepo(db),
		BlogPost:     NewBlogPostRepo(db),
		Comment:      NewCommentRepo(db),
		Like:         NewLikeRepo(db),
		Project:      NewProjectRepo(db),
		Certificate:  NewCertificateRepo(db),
		Review:       NewReviewRepo(db),
		Contact:      NewContactRepo(db),
		Payment:      NewPaymentRepo(db),
		Page:         NewPageRepo(db),
	}
}

// BeginTx starts a transaction. Returns nil when the aggregate has no connection (unit tests).
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx returns an aggregate bound to tx; a nil tx returns r itself
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// Transaction runs fn inside one transaction, committing when fn returns nil
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// ── shared helpers ──

// updateVersioned writes every column of a versioned row, guarded by the version read earlier.
// On success *version holds the new version.
func updateVersioned(ctx context.Context, db *gorm.DB, value interface{}, version *int) error {
	old := *version
	*version = old + 1

	res := db.WithContext(ctx).
		Model(value).
		Select("*").
		Omit("created_at", "created_by", clause.Associations).
		Where("version = ?", old).
		Updates(value)
	if res.Error != nil {
		*version = old
		return res.Error
	}
	if res.RowsAffected == 0 {
		*version = old
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

// softDelete marks a row deleted and records who did it
func softDelete(ctx context.Context, db *gorm.DB, value interface{}, pkColumn, id, deletedBy string) error {
	updates := map[string]interface{}{
		"deleted_at": gorm.Expr("NOW()"),
	}
	if deletedBy != "" {
		updates["deleted_by"] = deletedBy
	}
	res := db.WithContext(ctx).
		Model(value).
		Where(pkColumn+" = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// slugTaken reports whether a live row other than excludeID already uses slug
func slugTaken(ctx context.Context, db *gorm.DB, value interface{}, pkColumn, slug, excludeID string) (bool, error) {
	q := db.WithContext(ctx).Model(value).Where("slug = ?", slug)
	if excludeID != "" {
		q = q.Where(pkColumn+" <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// likePattern escapes LIKE wildcards in user input
func likePattern(keyword string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(keyword)) + "%"
}
