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
	pkgerrors "ourcodingkiddos/backend/pkg/errors"
)

// ── blog module errors ──

var (
	ErrPostNotFound    = errors.New("blog post not found")
	ErrCommentNotFound = errors.New("comment not found")
)

// BlogService public blog, comments, likes and admin authoring
type BlogService interface {
	List(ctx context.Context, req *dto.BlogListRequest) ([]dto.BlogPostSummary, int64, error)
	Get(ctx context.Context, slug string, caller *Caller) (*dto.BlogPostDetail, error)
	ListComments(ctx context.Context, slug string, req *dto.PaginationRequest) ([]dto.CommentResponse, int64, error)
	AddComment(ctx context.Context, slug string, req *dto.CreateCommentRequest, caller Caller) (*dto.CommentResponse, error)
	ToggleLike(ctx context.Context, slug string, caller Caller) (*dto.LikeResponse, error)

	AdminList(ctx context.Context, req *dto.AdminBlogListRequest) ([]dto.BlogPostSummary, int64, error)
	AdminGet(ctx context.Context, id string) (*dto.BlogPostDetail, error)
	Create(ctx context.Context, req *dto.CreateBlogPostRequest, caller Caller) (*dto.BlogPostDetail, error)
	Update(ctx context.Context, id string, req *dto.UpdateBlogPostRequest, caller Caller) (*dto.BlogPostDetail, error)
	Delete(ctx context.Context, id string, caller Caller) error
	// SetPublished flips visibility on the public listing; published_at is set on first publish
	SetPublished(ctx context.Context, id string, published bool, caller Caller) (*dto.BlogPostSummary, error)

	ModerationQueue(ctx context.Context, req *dto.CommentListRequest) ([]dto.CommentResponse, int64, error)
	ApproveComment(ctx context.Context, id string, approved bool, caller Caller) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, id string, caller Caller) error
}

type blogService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewBlogService creates a BlogService
func NewBlogService(repo *repository.Repository, logger *zap.Logger) BlogService {
	return &blogService{repo: repo, logger: logger, now: time.Now}
}

// ════════════════════════ Public ════════════════════════

func (s *blogService) List(ctx context.Context, req *dto.BlogListRequest) ([]dto.BlogPostSummary, int64, error) {
	published := true
	return s.list(ctx, repository.BlogFilter{Tag: req.Tag, Keyword: req.Keyword, Published: &published},
		req.GetOffset(), req.GetPageSize())
}

func (s *blogService) Get(ctx context.Context, slug string, caller *Caller) (*dto.BlogPostDetail, error) {
	p, err := s.repo.BlogPost.GetBySlug(ctx, slug, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if err := s.repo.BlogPost.IncrementViews(ctx, p.PostID); err != nil {
		s.logger.Warn("increment post views failed", zap.String("post_id", p.PostID), zap.Error(err))
	} else {
		p.ViewCount++
	}

	d := toPostDetail(p)
	if caller != nil {
		liked, err := s.repo.Like.Exists(ctx, model.LikeTargetPost, p.PostID, caller.UserID)
		if err != nil {
			return nil, err
		}
		d.Liked = liked
	}
	return d, nil
}

func (s *blogService) ListComments(ctx context.Context, slug string, req *dto.PaginationRequest) ([]dto.CommentResponse, int64, error) {
	p, err := s.publishedPost(ctx, slug)
	if err != nil {
		return nil, 0, err
	}
	comments, total, err := s.repo.Comment.ListByPost(ctx, p.PostID, true, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}
	return toCommentList(comments), total, nil
}

// AddComment comments stay hidden until a moderator approves them
func (s *blogService) AddComment(ctx context.Context, slug string, req *dto.CreateCommentRequest, caller Caller) (*dto.CommentResponse, error) {
	p, err := s.publishedPost(ctx, slug)
	if err != nil {
		return nil, err
	}
	c := &model.Comment{
		PostID:     p.PostID,
		UserID:     caller.UserID,
		Content:    strings.TrimSpace(req.Content),
		IsApproved: caller.IsAdmin(),
	}
	c.CreatedBy = &caller.UserID
	if err := s.repo.Comment.Create(ctx, c); err != nil {
		s.logger.Error("create comment failed", zap.String("post_id", p.PostID), zap.Error(err))
		return nil, err
	}
	resp := toCommentResponse(c)
	return &resp, nil
}

func (s *blogService) ToggleLike(ctx context.Context, slug string, caller Caller) (*dto.LikeResponse, error) {
	p, err := s.publishedPost(ctx, slug)
	if err != nil {
		return nil, err
	}
	var resp *dto.LikeResponse
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		resp, err = toggleLike(ctx, tx, model.LikeTargetPost, p.PostID, caller.UserID, tx.BlogPost.AddLikes)
		return err
	})
	if err != nil {
		s.logger.Error("toggle post like failed", zap.String("post_id", p.PostID), zap.Error(err))
		return nil, err
	}
	return resp, nil
}

// ════════════════════════ Admin ════════════════════════

func (s *blogService) AdminList(ctx context.Context, req *dto.AdminBlogListRequest) ([]dto.BlogPostSummary, int64, error) {
	filter := repository.BlogFilter{}
	switch req.Status {
	case "published":
		filter.Published = boolPtr(true)
	case "draft":
		filter.Published = boolPtr(false)
	}
	return s.list(ctx, filter, req.GetOffset(), req.GetPageSize())
}

func (s *blogService) AdminGet(ctx context.Context, id string) (*dto.BlogPostDetail, error) {
	p, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPostDetail(p), nil
}

func (s *blogService) Create(ctx context.Context, req *dto.CreateBlogPostRequest, caller Caller) (*dto.BlogPostDetail, error) {
	slug, err := pickSlug(ctx, req.Slug, req.Title, func(ctx context.Context, slug string) (bool, error) {
		return s.repo.BlogPost.SlugTaken(ctx, slug, "")
	})
	if err != nil {
		return nil, err
	}

	p := &model.BlogPost{
		AuthorID:      &caller.UserID,
		Slug:          slug,
		Title:         strings.TrimSpace(req.Title),
		Excerpt:       req.Excerpt,
		Content:       req.Content,
		CoverImageURL: req.CoverImageURL,
		Tags:          cleanTags(req.Tags),
		IsPublished:   req.IsPublished,
	}
	if p.IsPublished {
		now := s.now()
		p.PublishedAt = &now
	}
	p.CreatedBy = &caller.UserID

	if err := s.repo.BlogPost.Create(ctx, p); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		s.logger.Error("create post failed", zap.Error(err))
		return nil, err
	}
	s.logger.Info("blog post created", zap.String("post_id", p.PostID), zap.Bool("published", p.IsPublished))
	return toPostDetail(p), nil
}

func (s *blogService) Update(ctx context.Context, id string, req *dto.UpdateBlogPostRequest, caller Caller) (*dto.BlogPostDetail, error) {
	p, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Slug != nil && *req.Slug != p.Slug {
		taken, err := s.repo.BlogPost.SlugTaken(ctx, *req.Slug, p.PostID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrSlugTaken
		}
		p.Slug = *req.Slug
	}
	if req.Title != nil {
		p.Title = strings.TrimSpace(*req.Title)
	}
	if req.Excerpt != nil {
		p.Excerpt = *req.Excerpt
	}
	if req.Content != nil {
		p.Content = *req.Content
	}
	if req.CoverImageURL != nil {
		p.CoverImageURL = *req.CoverImageURL
	}
	if req.Tags != nil {
		p.Tags = cleanTags(*req.Tags)
	}
	p.UpdatedBy = &caller.UserID

	if err := s.repo.BlogPost.Update(ctx, p); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("update post failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	return toPostDetail(p), nil
}

func (s *blogService) Delete(ctx context.Context, id string, caller Caller) error {
	if err := s.repo.BlogPost.Delete(ctx, id, caller.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		s.logger.Error("delete post failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *blogService) SetPublished(ctx context.Context, id string, published bool, caller Caller) (*dto.BlogPostSummary, error) {
	p, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.IsPublished = published
	if published && p.PublishedAt == nil {
		now := s.now()
		p.PublishedAt = &now
	}
	p.UpdatedBy = &caller.UserID

	if err := s.repo.BlogPost.Update(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("blog post visibility changed", zap.String("post_id", id), zap.Bool("published", published))
	resp := toPostSummary(p)
	return &resp, nil
}

func (s *blogService) ModerationQueue(ctx context.Context, req *dto.CommentListRequest) ([]dto.CommentResponse, int64, error) {
	comments, total, err := s.repo.Comment.ListForModeration(ctx, req.Approved, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}
	return toCommentList(comments), total, nil
}

func (s *blogService) ApproveComment(ctx context.Context, id string, approved bool, caller Caller) (*dto.CommentResponse, error) {
	c, err := s.repo.Comment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	c.IsApproved = approved
	c.UpdatedBy = &caller.UserID
	if err := s.repo.Comment.Update(ctx, c); err != nil {
		return nil, err
	}
	resp := toCommentResponse(c)
	return &resp, nil
}

func (s *blogService) DeleteComment(ctx context.Context, id string, caller Caller) error {
	if err := s.repo.Comment.Delete(ctx, id, caller.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	return nil
}

// ── helpers ──

func (s *blogService) list(ctx context.Context, filter repository.BlogFilter, offset, limit int) ([]dto.BlogPostSummary, int64, error) {
	posts, total, err := s.repo.BlogPost.List(ctx, filter, offset, limit)
	if err != nil {
		s.logger.Error("list posts failed", zap.Error(err))
		return nil, 0, err
	}
	list := make([]dto.BlogPostSummary, 0, len(posts))
	for i := range posts {
		list = append(list, toPostSummary(&posts[i]))
	}
	return list, total, nil
}

func (s *blogService) getByID(ctx context.Context, id string) (*model.BlogPost, error) {
	p, err := s.repo.BlogPost.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *blogService) publishedPost(ctx context.Context, slug string) (*model.BlogPost, error) {
	p, err := s.repo.BlogPost.GetBySlug(ctx, slug, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return p, nil
}

// counterFunc adjusts a cached like counter and returns the new value
type counterFunc func(ctx context.Context, id string, delta int) (int, error)

// toggleLike removes the user's like when present, adds it otherwise
func toggleLike(ctx context.Context, repo *repository.Repository, targetType, targetID, userID string, adjust counterFunc) (*dto.LikeResponse, error) {
	removed, err := repo.Like.Remove(ctx, targetType, targetID, userID)
	if err != nil {
		return nil, err
	}
	if removed {
		n, err := adjust(ctx, targetID, -1)
		if err != nil {
			return nil, err
		}
		return &dto.LikeResponse{Liked: false, LikeCount: n}, nil
	}

	added, err := repo.Like.Add(ctx, targetType, targetID, userID)
	if err != nil {
		return nil, err
	}
	delta := 0
	if added {
		delta = 1
	}
	n, err := adjust(ctx, targetID, delta)
	if err != nil {
		return nil, err
	}
	return &dto.LikeResponse{Liked: true, LikeCount: n}, nil
}

func toPostDetail(p *model.BlogPost) *dto.BlogPostDetail {
	return &dto.BlogPostDetail{
		BlogPostSummary: toPostSummary(p),
		Content:         p.Content,
		UpdatedAt:       formatTime(p.UpdatedAt),
	}
}

func toCommentList(comments []model.Comment) []dto.CommentResponse {
	list := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		list = append(list, toCommentResponse(&comments[i]))
	}
	return list
}

func boolPtr(b bool) *bool { return &b }
