package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/model"
	"ourcodingkiddos/backend/internal/repository"
)

var ErrPageNotFound = errors.New("page not found")

// PageService legal and informational pages
type PageService interface {
	List(ctx context.Context) ([]dto.PageSummary, error)
	Get(ctx context.Context, slug string) (*dto.PageResponse, error)
	Upsert(ctx context.Context, slug string, req *dto.UpdatePageRequest, callerID string) (*dto.PageResponse, error)
}

type pageService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewPageService creates a PageService
func NewPageService(repo *repository.Repository, logger *zap.Logger) PageService {
	return &pageService{repo: repo, logger: logger, now: time.Now}
}

func (s *pageService) List(ctx context.Context) ([]dto.PageSummary, error) {
	pages, err := s.repo.Page.List(ctx)
	if err != nil {
		s.logger.Error("list pages failed", zap.Error(err))
		return nil, err
	}
	list := make([]dto.PageSummary, 0, len(pages))
	for i := range pages {
		p := &pages[i]
		list = append(list, dto.PageSummary{
			Slug:      p.Slug,
			Title:     p.Title,
			Category:  p.Category,
			UpdatedAt: formatTime(p.UpdatedAt),
		})
	}
	return list, nil
}

func (s *pageService) Get(ctx context.Context, slug string) (*dto.PageResponse, error) {
	p, err := s.repo.Page.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return toPageResponse(p), nil
}

// Upsert creates the page on first write, overwrites it afterwards
func (s *pageService) Upsert(ctx context.Context, slug string, req *dto.UpdatePageRequest, callerID string) (*dto.PageResponse, error) {
	category := req.Category
	if category == "" {
		category = model.PageLegal
	}
	now := s.now()
	p := &model.Page{
		Slug:     slug,
		Title:    strings.TrimSpace(req.Title),
		Category: category,
		Content:  req.Content,
	}
	p.CreatedBy = &callerID
	p.UpdatedBy = &callerID
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.repo.Page.Upsert(ctx, p); err != nil {
		s.logger.Error("save page failed", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}
	s.logger.Info("page saved", zap.String("slug", slug), zap.String("by", callerID))
	return toPageResponse(p), nil
}

func toPageResponse(p *model.Page) *dto.PageResponse {
	return &dto.PageResponse{
		Slug:      p.Slug,
		Title:     p.Title,
		Category:  p.Category,
		Content:   p.Content,
		UpdatedAt: formatTime(p.UpdatedAt),
	}
}
