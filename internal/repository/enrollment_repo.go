package repository

import (
	"context"

	"gorm.io/gorm"

	"ourcodingkiddos/backend/internal/model"
)

// EnrollmentRepository enrollment data access
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *model.Enrollment) error
	GetByID(ctx context.Context, id string) (*model.Enrollment, error)
	GetByStudentAndCourse(ctx context.Context, studentID, courseID string) (*model.Enrollment, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error)
	// ListForExport loads enrollments with student and course; an empty courseID exports all
	ListForExport(ctx context.Context, courseID string) ([]model.Enrollment, error)
	// ActiveCourseIDs course ids the student is actively enrolled in
	ActiveCourseIDs(ctx context.Context, studentID string) ([]string, error)
	// HasEnrollmentForUser reports whether the user, or one of their children, is enrolled in the course
	HasEnrollmentForUser(ctx context.Context, userID, courseID string) (bool, error)
	Update(ctx context.Context, enrollment *model.Enrollment) error
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type enrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo creates an EnrollmentRepository
func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) Create(ctx context.Context, enrollment *model.Enrollment) error {
	return r.db.WithContext(ctx).Omit("Student", "Course").Create(enrollment).Error
}

func (r *enrollmentRepo) GetByID(ctx context.Context, id string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("enrollment_id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) GetByStudentAndCourse(ctx context.Context, studentID, courseID string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Course.Program").
		Where("student_id = ?", studentID).
		Order("enrolled_at DESC").
		Find(&list).Error
	return list, err
}

func (r *enrollmentRepo) ListForExport(ctx context.Context, courseID string) ([]model.Enrollment, error) {
	var list []model.Enrollment
	q := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Student.Parent").
		Preload("Course")
	if courseID != "" {
		q = q.Where("course_id = ?", courseID)
	}
	err := q.Order("enrolled_at ASC").Find(&list).Error
	return list, err
}

func (r *enrollmentRepo) ActiveCourseIDs(ctx context.Context, studentID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("student_id = ? AND status = ?", studentID, model.EnrollmentActive).
		Pluck("course_id", &ids).Error
	return ids, err
}

func (r *enrollmentRepo) HasEnrollmentForUser(ctx context.Context, userID, courseID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("course_id = ?", courseID).
		Where("student_id IN (?)",
			r.db.Model(&model.Student{}).
				Select("student_id").
				Where("user_id = ? OR parent_id = ?", userID, userID)).
		Count(&n).Error
	return n > 0, err
}

func (r *enrollmentRepo) Update(ctx context.Context, enrollment *model.Enrollment) error {
	return updateVersioned(ctx, r.db, enrollment, &enrollment.Version)
}

func (r *enrollmentRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}
