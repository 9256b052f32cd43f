package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ourcodingkiddos/backend/internal/model"
)

// LessonProgressRepository completed-lesson records
type LessonProgressRepository interface {
	// Create inserts the record; returns false when the lesson was already completed
	Create(ctx context.Context, progress *model.LessonProgress) (bool, error)
	CountByStudentCourse(ctx context.Context, studentID, courseID string) (int64, error)
	CompletedLessonIDs(ctx context.Context, studentID, courseID string) ([]string, error)
}

type lessonProgressRepo struct {
	db *gorm.DB
}

// NewLessonProgressRepo creates a LessonProgressRepository
func NewLessonProgressRepo(db *gorm.DB) LessonProgressRepository {
	return &lessonProgressRepo{db: db}
}

func (r *lessonProgressRepo) Create(ctx context.Context, progress *model.LessonProgress) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "lesson_id"}},
			DoNothing: true,
		}).
		Create(progress)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *lessonProgressRepo) CountByStudentCourse(ctx context.Context, studentID, courseID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.LessonProgress{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Where("lesson_id IN (?)",
			r.db.Model(&model.Lesson{}).Select("lesson_id").Where("course_id = ?", courseID)).
		Count(&n).Error
	return n, err
}

func (r *lessonProgressRepo) CompletedLessonIDs(ctx context.Context, studentID, courseID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.LessonProgress{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Pluck("lesson_id", &ids).Error
	return ids, err
}
