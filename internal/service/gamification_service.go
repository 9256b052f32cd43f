package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/model"
	"ourcodingkiddos/backend/internal/repository"
	pkgerrors "ourcodingkiddos/backend/pkg/errors"
)

// ── gamification module errors ──

var (
	ErrBadgeNotFound    = errors.New("badge not found")
	ErrInvalidCriterion = errors.New("unknown badge criterion")
)

const (
	defaultLeaderboardSize = 10
	leaderboardCacheTTL    = time.Minute
	leaderboardCacheKey    = "leaderboard:%d"
)

// GamificationService badges, XP and the leaderboard
type GamificationService interface {
	ListBadges(ctx context.Context, includeInactive bool) ([]dto.BadgeResponse, error)
	StudentBadges(ctx context.Context, studentID string, caller Caller) ([]dto.StudentBadgeResponse, error)
	Leaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error)

	CreateBadge(ctx context.Context, req *dto.CreateBadgeRequest, callerID string) (*dto.BadgeResponse, error)
	UpdateBadge(ctx context.Context, id string, req *dto.UpdateBadgeRequest, callerID string) (*dto.BadgeResponse, error)
	DeleteBadge(ctx context.Context, id string) error

	// ResetInactiveStreaks zeroes streaks of students with no activity yesterday or today
	ResetInactiveStreaks(ctx context.Context) (int64, error)
}

type gamificationService struct {
	repo   *repository.Repository
	cache  Cache
	logger *zap.Logger
	now    func() time.Time
}

// NewGamificationService creates a GamificationService. cache may be nil.
func NewGamificationService(repo *repository.Repository, cache Cache, logger *zap.Logger) GamificationService {
	return &gamificationService{repo: repo, cache: cache, logger: logger, now: time.Now}
}

func (s *gamificationService) ListBadges(ctx context.Context, includeInactive bool) ([]dto.BadgeResponse, error) {
	badges, err := s.repo.Badge.List(ctx, !includeInactive)
	if err != nil {
		s.logger.Error("list badges failed", zap.Error(err))
		return nil, err
	}
	list := make([]dto.BadgeResponse, 0, len(badges))
	for i := range badges {
		list = append(list, toBadgeResponse(&badges[i]))
	}
	return list, nil
}

func (s *gamificationService) StudentBadges(ctx context.Context, studentID string, caller Caller) ([]dto.StudentBadgeResponse, error) {
	st, err := resolveStudent(ctx, s.repo, studentID, caller, false)
	if err != nil {
		return nil, err
	}
	awarded, err := s.repo.Badge.ListAwarded(ctx, st.StudentID)
	if err != nil {
		return nil, err
	}
	list := make([]dto.StudentBadgeResponse, 0, len(awarded))
	for i := range awarded {
		list = append(list, toStudentBadgeResponse(&awarded[i]))
	}
	return list, nil
}

// Leaderboard top students by XP. Only display name and level leave the server.
func (s *gamificationService) Leaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardSize
	}
	key := fmt.Sprintf(leaderboardCacheKey, limit)

	if s.cache != nil {
		var cached []dto.LeaderboardEntry
		if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	students, err := s.repo.Student.Leaderboard(ctx, limit)
	if err != nil {
		s.logger.Error("leaderboard query failed", zap.Error(err))
		return nil, err
	}
	list := make([]dto.LeaderboardEntry, 0, len(students))
	for i := range students {
		list = append(list, dto.LeaderboardEntry{
			Rank:        i + 1,
			DisplayName: students[i].DisplayName,
			Level:       students[i].Level,
		})
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, list, leaderboardCacheTTL); err != nil {
			s.logger.Warn("leaderboard cache write failed", zap.Error(err))
		}
	}
	return list, nil
}

// ════════════════════════ Admin ════════════════════════

func (s *gamificationService) CreateBadge(ctx context.Context, req *dto.CreateBadgeRequest, callerID string) (*dto.BadgeResponse, error) {
	if !model.ValidCriterion(req.Criterion) {
		return nil, ErrInvalidCriterion
	}
	slug, err := pickSlug(ctx, req.Slug, req.Name, func(ctx context.Context, slug string) (bool, error) {
		return s.repo.Badge.SlugTaken(ctx, slug, "")
	})
	if err != nil {
		return nil, err
	}

	b := &model.Badge{
		Slug:        slug,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Icon:        req.Icon,
		Criterion:   req.Criterion,
		Threshold:   req.Threshold,
		XPReward:    req.XPReward,
		IsActive:    true,
	}
	b.CreatedBy = &callerID

	if err := s.repo.Badge.Create(ctx, b); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		s.logger.Error("create badge failed", zap.Error(err))
		return nil, err
	}
	resp := toBadgeResponse(b)
	return &resp, nil
}

func (s *gamificationService) UpdateBadge(ctx context.Context, id string, req *dto.UpdateBadgeRequest, callerID string) (*dto.BadgeResponse, error) {
	b, err := s.repo.Badge.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadgeNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		b.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		b.Description = *req.Description
	}
	if req.Icon != nil {
		b.Icon = *req.Icon
	}
	if req.Criterion != nil {
		if !model.ValidCriterion(*req.Criterion) {
			return nil, ErrInvalidCriterion
		}
		b.Criterion = *req.Criterion
	}
	if req.Threshold != nil {
		b.Threshold = *req.Threshold
	}
	if req.XPReward != nil {
		b.XPReward = *req.XPReward
	}
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}
	b.UpdatedBy = &callerID

	if err := s.repo.Badge.Update(ctx, b); err != nil {
		s.logger.Error("update badge failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toBadgeResponse(b)
	return &resp, nil
}

func (s *gamificationService) DeleteBadge(ctx context.Context, id string) error {
	if err := s.repo.Badge.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBadgeNotFound
		}
		s.logger.Error("delete badge failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ResetInactiveStreaks a streak survives only while the last activity is yesterday or today
func (s *gamificationService) ResetInactiveStreaks(ctx context.Context) (int64, error) {
	yesterday := utcDay(s.now()).AddDate(0, 0, -1)
	n, err := s.repo.Student.ResetInactiveStreaks(ctx, yesterday)
	if err != nil {
		s.logger.Error("streak reset failed", zap.Error(err))
		return 0, err
	}
	s.logger.Info("inactive streaks reset", zap.Int64("students", n))
	return n, nil
}
