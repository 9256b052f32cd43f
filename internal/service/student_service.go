package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"ourcodingkiddos/backend/config"
	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/model"
	"ourcodingkiddos/backend/internal/repository"
	pkgerrors "ourcodingkiddos/backend/pkg/errors"
)

const (
	recentXPLimit          = 20
	recentSubmissionsLimit = 10
)

// StudentService parent-facing child management and progress
type StudentService interface {
	ListChildren(ctx context.Context, parentID string) ([]dto.StudentResponse, error)
	CreateChild(ctx context.Context, parentID string, req *dto.CreateChildRequest) (*dto.StudentResponse, error)
	Progress(ctx context.Context, studentID string, caller Caller) (*dto.ChildProgressResponse, error)
}

type studentService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStudentService creates a StudentService
func NewStudentService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) StudentService {
	return &studentService{cfg: cfg, repo: repo, logger: logger}
}

func (s *studentService) ListChildren(ctx context.Context, parentID string) ([]dto.StudentResponse, error) {
	children, err := s.repo.Student.ListByParent(ctx, parentID)
	if err != nil {
		s.logger.Error("list children failed", zap.String("parent_id", parentID), zap.Error(err))
		return nil, err
	}
	list := make([]dto.StudentResponse, 0, len(children))
	for i := range children {
		list = append(list, toStudentResponse(&children[i]))
	}
	return list, nil
}

// CreateChild adds a student profile under the parent, optionally with its own login
func (s *studentService) CreateChild(ctx context.Context, parentID string, req *dto.CreateChildRequest) (*dto.StudentResponse, error) {
	child := &model.Student{
		ParentID:    &parentID,
		DisplayName: strings.TrimSpace(req.DisplayName),
		BirthYear:   req.BirthYear,
		GradeLevel:  req.GradeLevel,
		Level:       1,
	}
	child.CreatedBy = &parentID

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if req.LoginEmail != "" {
			email := strings.ToLower(strings.TrimSpace(req.LoginEmail))
			if _, err := tx.User.GetByEmail(ctx, email); err == nil {
				return ErrEmailExists
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(req.LoginPassword), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			login := &model.User{
				Name:         child.DisplayName,
				Email:        email,
				PasswordHash: string(hash),
				Role:         model.RoleStudent,
				IsActive:     true,
			}
			login.CreatedBy = &parentID
			if err := tx.User.Create(ctx, login); err != nil {
				return err
			}
			child.UserID = &login.UserID
		}
		return tx.Student.Create(ctx, child)
	})
	if err != nil {
		if errors.Is(err, ErrEmailExists) || pkgerrors.IsUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		s.logger.Error("create child failed", zap.String("parent_id", parentID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("child added", zap.String("parent_id", parentID), zap.String("student_id", child.StudentID))
	resp := toStudentResponse(child)
	return &resp, nil
}

// Progress dashboard of one student: enrollments, badges, XP, submissions, certificates
func (s *studentService) Progress(ctx context.Context, studentID string, caller Caller) (*dto.ChildProgressResponse, error) {
	st, err := resolveStudent(ctx, s.repo, studentID, caller, false)
	if err != nil {
		return nil, err
	}

	enrollments, err := s.repo.Enrollment.ListByStudent(ctx, st.StudentID)
	if err != nil {
		return nil, err
	}
	badges, err := s.repo.Badge.ListAwarded(ctx, st.StudentID)
	if err != nil {
		return nil, err
	}
	xp, err := s.repo.XP.ListByStudent(ctx, st.StudentID, recentXPLimit)
	if err != nil {
		return nil, err
	}
	subs, err := s.repo.Submission.ListByStudent(ctx, st.StudentID, recentSubmissionsLimit)
	if err != nil {
		return nil, err
	}
	certs, err := s.repo.Certificate.ListByStudent(ctx, st.StudentID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ChildProgressResponse{
		Student:           toStudentResponse(st),
		Enrollments:       make([]dto.EnrollmentResponse, 0, len(enrollments)),
		Badges:            make([]dto.StudentBadgeResponse, 0, len(badges)),
		RecentXP:          make([]dto.XPTransactionResponse, 0, len(xp)),
		RecentSubmissions: make([]dto.SubmissionResponse, 0, len(subs)),
		Certificates:      make([]dto.CertificateResponse, 0, len(certs)),
	}
	for i := range enrollments {
		resp.Enrollments = append(resp.Enrollments, toEnrollmentResponse(&enrollments[i]))
	}
	for i := range badges {
		resp.Badges = append(resp.Badges, toStudentBadgeResponse(&badges[i]))
	}
	for i := range xp {
		resp.RecentXP = append(resp.RecentXP, toXPResponse(&xp[i]))
	}
	for i := range subs {
		resp.RecentSubmissions = append(resp.RecentSubmissions, toSubmissionResponse(&subs[i]))
	}
	for i := range certs {
		resp.Certificates = append(resp.Certificates, toCertificateResponse(&certs[i], s.cfg.Server.BaseURL))
	}
	return resp, nil
}
