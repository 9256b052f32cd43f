package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ourcodingkiddos/backend/config"
	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/model"
	"ourcodingkiddos/backend/internal/repository"
	pkgerrors "ourcodingkiddos/backend/pkg/errors"
	"ourcodingkiddos/backend/pkg/storage"
)

// ── showcase module errors ──

var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrFileTooLarge     = errors.New("file is too large")
	ErrUnsupportedImage = errors.New("only PNG, JPEG, GIF and WebP images are accepted")
	ErrStorageDisabled  = errors.New("uploads are not available")
)

const (
	projectXP     = 50
	sniffLen      = 512
	uploadsPrefix = "showcase"
)

// ShowcaseService student project showcase
type ShowcaseService interface {
	List(ctx context.Context, req *dto.ProjectListRequest) ([]dto.ProjectResponse, int64, error)
	Get(ctx context.Context, slug string, caller *Caller) (*dto.ProjectResponse, error)
	ToggleLike(ctx context.Context, slug string, caller Caller) (*dto.LikeResponse, error)
	Submit(ctx context.Context, req *dto.CreateProjectRequest, caller Caller) (*dto.ProjectResponse, error)
	// Upload stores an image and returns its public URL
	Upload(ctx context.Context, r io.Reader, size int64, caller Caller) (*dto.UploadResponse, error)

	ReviewQueue(ctx context.Context, req *dto.AdminProjectListRequest) ([]dto.ProjectResponse, int64, error)
	Review(ctx context.Context, id string, req *dto.ReviewProjectRequest, caller Caller) (*dto.ProjectResponse, error)
}

type showcaseService struct {
	cfg     *config.Config
	repo    *repository.Repository
	storage storage.Storage
	logger  *zap.Logger
	now     func() time.Time
}

// NewShowcaseService creates a ShowcaseService. store may be nil, disabling uploads.
func NewShowcaseService(cfg *config.Config, repo *repository.Repository, store storage.Storage, logger *zap.Logger) ShowcaseService {
	return &showcaseService{cfg: cfg, repo: repo, storage: store, logger: logger, now: time.Now}
}

func (s *showcaseService) List(ctx context.Context, req *dto.ProjectListRequest) ([]dto.ProjectResponse, int64, error) {
	projects, total, err := s.repo.Project.ListApproved(ctx, req.Tag, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list showcase failed", zap.Error(err))
		return nil, 0, err
	}
	return toProjectList(projects), total, nil
}

func (s *showcaseService) Get(ctx context.Context, slug string, caller *Caller) (*dto.ProjectResponse, error) {
	p, err := s.approvedProject(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Project.IncrementViews(ctx, p.ProjectID); err != nil {
		s.logger.Warn("increment project views failed", zap.String("project_id", p.ProjectID), zap.Error(err))
	} else {
		p.ViewCount++
	}

	resp := toProjectResponse(p)
	if caller != nil {
		liked, err := s.repo.Like.Exists(ctx, model.LikeTargetProject, p.ProjectID, caller.UserID)
		if err != nil {
			return nil, err
		}
		resp.Liked = liked
	}
	return &resp, nil
}

func (s *showcaseService) ToggleLike(ctx context.Context, slug string, caller Caller) (*dto.LikeResponse, error) {
	p, err := s.approvedProject(ctx, slug)
	if err != nil {
		return nil, err
	}
	var resp *dto.LikeResponse
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		resp, err = toggleLike(ctx, tx, model.LikeTargetProject, p.ProjectID, caller.UserID, tx.Project.AddLikes)
		return err
	})
	if err != nil {
		s.logger.Error("toggle project like failed", zap.String("project_id", p.ProjectID), zap.Error(err))
		return nil, err
	}
	return resp, nil
}

// Submit new projects wait in the review queue
func (s *showcaseService) Submit(ctx context.Context, req *dto.CreateProjectRequest, caller Caller) (*dto.ProjectResponse, error) {
	st, err := resolveStudent(ctx, s.repo, req.StudentID, caller, true)
	if err != nil {
		return nil, err
	}
	if req.CourseID != nil {
		if _, err := s.repo.Course.GetByID(ctx, *req.CourseID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCourseNotFound
			}
			return nil, err
		}
	}

	slug, err := pickSlug(ctx, "", req.Title, func(ctx context.Context, slug string) (bool, error) {
		return s.repo.Project.SlugTaken(ctx, slug, "")
	})
	if err != nil {
		return nil, err
	}

	p := &model.StudentProject{
		StudentID:    st.StudentID,
		CourseID:     req.CourseID,
		Slug:         slug,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		ProjectURL:   req.ProjectURL,
		ThumbnailURL: req.ThumbnailURL,
		Tags:         cleanTags(req.Tags),
		Status:       model.ProjectPending,
	}
	p.CreatedBy = &caller.UserID

	if err := s.repo.Project.Create(ctx, p); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		s.logger.Error("submit project failed", zap.String("student_id", st.StudentID), zap.Error(err))
		return nil, err
	}
	p.Student = st
	s.logger.Info("project submitted", zap.String("project_id", p.ProjectID), zap.String("student_id", st.StudentID))
	resp := toProjectResponse(p)
	return &resp, nil
}

func (s *showcaseService) Upload(ctx context.Context, r io.Reader, size int64, caller Caller) (*dto.UploadResponse, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}
	if size > s.cfg.Storage.MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		if errors.Is(err, io.EOF) {
			return nil, ErrUnsupportedImage
		}
		return nil, err
	}
	head = head[:n]

	contentType, ext, err := storage.DetectImage(head)
	if err != nil {
		return nil, ErrUnsupportedImage
	}

	key := uploadsPrefix + "/" + s.now().UTC().Format("2006/01") + "/" + uuid.NewString() + ext
	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), r), s.cfg.Storage.MaxUploadSize+1)
	url, err := s.storage.Put(ctx, key, body, contentType)
	if err != nil {
		s.logger.Error("store upload failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	s.logger.Info("image uploaded", zap.String("key", key), zap.String("by", caller.UserID), zap.Int64("size", size))
	return &dto.UploadResponse{URL: url, ContentType: contentType, Size: size}, nil
}

func (s *showcaseService) ReviewQueue(ctx context.Context, req *dto.AdminProjectListRequest) ([]dto.ProjectResponse, int64, error) {
	projects, total, err := s.repo.Project.ListByStatus(ctx, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}
	return toProjectList(projects), total, nil
}

// Review moderates a project. The student's projects_published counter never decreases,
// so re-approving a project does not award XP twice.
func (s *showcaseService) Review(ctx context.Context, id string, req *dto.ReviewProjectRequest, caller Caller) (*dto.ProjectResponse, error) {
	var p *model.StudentProject
	now := s.now()

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		p, err = tx.Project.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProjectNotFound
			}
			return err
		}

		wasApproved := p.Status == model.ProjectApproved
		p.Status = req.Status
		if req.IsFeatured != nil {
			p.IsFeatured = *req.IsFeatured
		}
		if p.Status != model.ProjectApproved {
			p.IsFeatured = false
		}
		p.ReviewNote = req.Note
		p.ReviewedBy = &caller.UserID
		p.ReviewedAt = &now
		p.UpdatedBy = &caller.UserID
		if err := tx.Project.Update(ctx, p); err != nil {
			return err
		}

		if wasApproved || p.Status != model.ProjectApproved {
			return nil
		}
		st, err := tx.Student.GetForUpdate(ctx, p.StudentID)
		if err != nil {
			return err
		}
		approved, err := tx.Project.CountApprovedByStudent(ctx, st.StudentID)
		if err != nil {
			return err
		}
		if int(approved) <= st.ProjectsPublished {
			return nil
		}
		st.ProjectsPublished = int(approved)
		if err := awardXP(ctx, tx, st, projectXP, model.XPReasonProject, &p.ProjectID, now); err != nil {
			return err
		}
		if _, err := evaluateBadges(ctx, tx, st, now); err != nil {
			return err
		}
		p.Student = st
		return tx.Student.Update(ctx, st)
	})
	if err != nil {
		if !errors.Is(err, ErrProjectNotFound) && !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("review project failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("project reviewed", zap.String("project_id", id), zap.String("status", p.Status))
	resp := toProjectResponse(p)
	return &resp, nil
}

func (s *showcaseService) approvedProject(ctx context.Context, slug string) (*model.StudentProject, error) {
	p, err := s.repo.Project.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if p.Status != model.ProjectApproved {
		return nil, ErrProjectNotFound
	}
	return p, nil
}

func toProjectList(projects []model.StudentProject) []dto.ProjectResponse {
	list := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		list = append(list, toProjectResponse(&projects[i]))
	}
	return list
}
