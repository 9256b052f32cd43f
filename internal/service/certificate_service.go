package service

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ourcodingkiddos/backend/config"
	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/model"
	"ourcodingkiddos/backend/internal/repository"
	"ourcodingkiddos/backend/pkg/certimage"
)

// ── certificate module errors ──

var (
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrCertificateExists   = errors.New("certificate already issued for this course")
	ErrCourseNotCompleted  = errors.New("the student has not completed this course")
	ErrRendererUnavailable = errors.New("certificate images are unavailable")
)

const (
	certCodePrefix  = "OCK-"
	certCodeLength  = 10
	certCodeRetries = 5
	certSiteName    = "Our Coding Kiddos"
)

// CertificateService issuing, verification and rendering
type CertificateService interface {
	// Issue admin manual issue; the enrollment must be completed
	Issue(ctx context.Context, req *dto.IssueCertificateRequest, callerID string) (*dto.CertificateResponse, error)
	Verify(ctx context.Context, code string) (*dto.VerifyCertificateResponse, error)
	Image(ctx context.Context, code string) ([]byte, error)
	ListByStudent(ctx context.Context, studentID string, caller Caller) ([]dto.CertificateResponse, error)
}

type certificateService struct {
	cfg      *config.Config
	repo     *repository.Repository
	renderer *certimage.Renderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewCertificateService creates a CertificateService. renderer may be nil.
func NewCertificateService(cfg *config.Config, repo *repository.Repository, renderer *certimage.Renderer, logger *zap.Logger) CertificateService {
	return &certificateService{cfg: cfg, repo: repo, renderer: renderer, logger: logger, now: time.Now}
}

func (s *certificateService) Issue(ctx context.Context, req *dto.IssueCertificateRequest, callerID string) (*dto.CertificateResponse, error) {
	var cert *model.Certificate
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		st, err := tx.Student.GetByID(ctx, req.StudentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			return err
		}
		e, err := tx.Enrollment.GetByStudentAndCourse(ctx, req.StudentID, req.CourseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotCompleted
			}
			return err
		}
		if e.Status != model.EnrollmentCompleted {
			return ErrCourseNotCompleted
		}
		course, err := tx.Course.GetByID(ctx, req.CourseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return err
		}

		var created bool
		cert, created, err = issueCertificate(ctx, tx, st, course, s.now())
		if err != nil {
			return err
		}
		if !created {
			return ErrCertificateExists
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("certificate issued manually",
		zap.String("code", cert.VerificationCode), zap.String("student_id", cert.StudentID), zap.String("by", callerID))
	resp := toCertificateResponse(cert, s.cfg.Server.BaseURL)
	return &resp, nil
}

// Verify unknown codes are not an error: they report valid=false
func (s *certificateService) Verify(ctx context.Context, code string) (*dto.VerifyCertificateResponse, error) {
	code = normalizeCertCode(code)
	if code == "" {
		return &dto.VerifyCertificateResponse{Valid: false}, nil
	}
	cert, err := s.repo.Certificate.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.VerifyCertificateResponse{Valid: false}, nil
		}
		s.logger.Error("certificate lookup failed", zap.Error(err))
		return nil, err
	}
	resp := toCertificateResponse(cert, s.cfg.Server.BaseURL)
	return &dto.VerifyCertificateResponse{Valid: true, Certificate: &resp}, nil
}

func (s *certificateService) Image(ctx context.Context, code string) ([]byte, error) {
	if s.renderer == nil {
		return nil, ErrRendererUnavailable
	}
	cert, err := s.repo.Certificate.GetByCode(ctx, normalizeCertCode(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCertificateNotFound
		}
		return nil, err
	}
	png, err := s.renderer.Render(certimage.Data{
		StudentName: cert.StudentName,
		CourseTitle: cert.CourseTitle,
		IssuedAt:    cert.IssuedAt,
		Code:        cert.VerificationCode,
		SiteName:    certSiteName,
	})
	if err != nil {
		s.logger.Error("render certificate failed", zap.String("code", cert.VerificationCode), zap.Error(err))
		return nil, err
	}
	return png, nil
}

func (s *certificateService) ListByStudent(ctx context.Context, studentID string, caller Caller) ([]dto.CertificateResponse, error) {
	st, err := resolveStudent(ctx, s.repo, studentID, caller, false)
	if err != nil {
		return nil, err
	}
	certs, err := s.repo.Certificate.ListByStudent(ctx, st.StudentID)
	if err != nil {
		return nil, err
	}
	list := make([]dto.CertificateResponse, 0, len(certs))
	for i := range certs {
		list = append(list, toCertificateResponse(&certs[i], s.cfg.Server.BaseURL))
	}
	return list, nil
}

// ── issuing ──

// issueCertificate returns the student's certificate for the course, creating it when missing.
// created reports whether a new certificate was written.
func issueCertificate(ctx context.Context, repo *repository.Repository, st *model.Student, course *model.Course, now time.Time) (cert *model.Certificate, created bool, err error) {
	existing, err := repo.Certificate.GetByStudentAndCourse(ctx, st.StudentID, course.CourseID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	code, err := uniqueCertCode(ctx, repo)
	if err != nil {
		return nil, false, err
	}
	cert = &model.Certificate{
		StudentID:        st.StudentID,
		CourseID:         course.CourseID,
		VerificationCode: code,
		StudentName:      st.DisplayName,
		CourseTitle:      course.Title,
		IssuedAt:         now.UTC(),
	}
	if err := repo.Certificate.Create(ctx, cert); err != nil {
		return nil, false, err
	}
	return cert, true, nil
}

// uniqueCertCode codes are checked before insert; a unique violation inside the
// surrounding transaction would abort it.
func uniqueCertCode(ctx context.Context, repo *repository.Repository) (string, error) {
	for i := 0; i < certCodeRetries; i++ {
		code, err := newCertCode()
		if err != nil {
			return "", err
		}
		_, err = repo.Certificate.GetByCode(ctx, code)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", errors.New("could not generate a unique certificate code")
}

// newCertCode OCK- followed by 10 base32 characters
func newCertCode() (string, error) {
	buf := make([]byte, 7)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf)
	return certCodePrefix + enc[:certCodeLength], nil
}

func normalizeCertCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
