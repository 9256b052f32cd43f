package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"ourcodingkiddos/backend/internal/model"
)

// CertificateRepository certificate data access
type CertificateRepository interface {
	Create(ctx context.Context, cert *model.Certificate) error
	// GetByCode matches the verification code case-insensitively
	GetByCode(ctx context.Context, code string) (*model.Certificate, error)
	GetByStudentAndCourse(ctx context.Context, studentID, courseID string) (*model.Certificate, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Certificate, error)
	Count(ctx context.Context) (int64, error)
}

type certificateRepo struct {
	db *gorm.DB
}

// NewCertificateRepo creates a CertificateRepository
func NewCertificateRepo(db *gorm.DB) CertificateRepository {
	return &certificateRepo{db: db}
}

func (r *certificateRepo) Create(ctx context.Context, cert *model.Certificate) error {
	return r.db.WithContext(ctx).Create(cert).Error
}

func (r *certificateRepo) GetByCode(ctx context.Context, code string) (*model.Certificate, error) {
	var c model.Certificate
	err := r.db.WithContext(ctx).
		Where("verification_code = ?", strings.ToUpper(code)).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *certificateRepo) GetByStudentAndCourse(ctx context.Context, studentID, courseID string) (*model.Certificate, error) {
	var c model.Certificate
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *certificateRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Certificate, error) {
	var list []model.Certificate
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("issued_at DESC").
		Find(&list).Error
	return list, err
}

func (r *certificateRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Certificate{}).Count(&n).Error
	return n, err
}
