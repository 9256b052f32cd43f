package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/model"
	"ourcodingkiddos/backend/internal/repository"
	pkgerrors "ourcodingkiddos/backend/pkg/errors"
)

// ── review module errors ──

var (
	ErrReviewNotFound = errors.New("review not found")
	ErrReviewExists   = errors.New("you have already reviewed this course")
	ErrNotEnrolled    = errors.New("only enrolled families can review this course")
)

// ReviewService course reviews
type ReviewService interface {
	List(ctx context.Context, courseSlug string, req *dto.PaginationRequest) (*dto.ReviewListResponse, error)
	Create(ctx context.Context, courseSlug string, req *dto.CreateReviewRequest, caller Caller) (*dto.ReviewResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateReviewRequest, caller Caller) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, id string, caller Caller) error
}

type reviewService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReviewService creates a ReviewService
func NewReviewService(repo *repository.Repository, logger *zap.Logger) ReviewService {
	return &reviewService{repo: repo, logger: logger}
}

func (s *reviewService) List(ctx context.Context, courseSlug string, req *dto.PaginationRequest) (*dto.ReviewListResponse, error) {
	course, err := s.publishedCourse(ctx, courseSlug)
	if err != nil {
		return nil, err
	}
	reviews, total, err := s.repo.Review.ListByCourse(ctx, course.CourseID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, err
	}
	avg, count, err := s.repo.Review.Summary(ctx, course.CourseID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ReviewListResponse{
		List:       make([]dto.ReviewResponse, 0, len(reviews)),
		Pagination: dto.NewPagination(total, req.GetPage(), req.GetPageSize()),
		Summary:    dto.RatingSummary{Average: roundRating(avg), Count: count},
	}
	for i := range reviews {
		resp.List = append(resp.List, toReviewResponse(&reviews[i]))
	}
	return resp, nil
}

// Create one review per user per course, only from the enrolled student or their parent
func (s *reviewService) Create(ctx context.Context, courseSlug string, req *dto.CreateReviewRequest, caller Caller) (*dto.ReviewResponse, error) {
	course, err := s.publishedCourse(ctx, courseSlug)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Review.GetByCourseAndUser(ctx, course.CourseID, caller.UserID); err == nil {
		return nil, ErrReviewExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if !caller.IsAdmin() {
		enrolled, err := s.repo.Enrollment.HasEnrollmentForUser(ctx, caller.UserID, course.CourseID)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			return nil, ErrNotEnrolled
		}
	}

	r := &model.Review{
		CourseID: course.CourseID,
		UserID:   caller.UserID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	}
	r.CreatedBy = &caller.UserID
	if err := s.repo.Review.Create(ctx, r); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrReviewExists
		}
		s.logger.Error("create review failed", zap.String("course_id", course.CourseID), zap.Error(err))
		return nil, err
	}

	if u, err := s.repo.User.GetByID(ctx, caller.UserID); err == nil {
		r.User = u
	}
	resp := toReviewResponse(r)
	return &resp, nil
}

func (s *reviewService) Update(ctx context.Context, id string, req *dto.UpdateReviewRequest, caller Caller) (*dto.ReviewResponse, error) {
	r, err := s.repo.Review.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	if r.UserID != caller.UserID {
		return nil, ErrNoPermission
	}
	if req.Rating == nil && req.Comment == nil {
		return nil, ErrNothingToDo
	}
	if req.Rating != nil {
		r.Rating = *req.Rating
	}
	if req.Comment != nil {
		r.Comment = *req.Comment
	}
	r.UpdatedBy = &caller.UserID

	if err := s.repo.Review.Update(ctx, r); err != nil {
		s.logger.Error("update review failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toReviewResponse(r)
	return &resp, nil
}

// Delete authors remove their own review, admins any review
func (s *reviewService) Delete(ctx context.Context, id string, caller Caller) error {
	r, err := s.repo.Review.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}
	if r.UserID != caller.UserID && !caller.IsAdmin() {
		return ErrNoPermission
	}
	if err := s.repo.Review.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}
	return nil
}

func (s *reviewService) publishedCourse(ctx context.Context, slug string) (*model.Course, error) {
	course, err := s.repo.Course.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if !course.IsPublished {
		return nil, ErrCourseNotFound
	}
	return course, nil
}
