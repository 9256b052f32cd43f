package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ourcodingkiddos/backend/config"
	"ourcodingkiddos/backend/internal/repository"
	"ourcodingkiddos/backend/pkg/certimage"
	"ourcodingkiddos/backend/pkg/jwt"
	"ourcodingkiddos/backend/pkg/mailer"
	"ourcodingkiddos/backend/pkg/payment"
	"ourcodingkiddos/backend/pkg/storage"
)

// TokenStore revoked-token list (Redis in production)
type TokenStore interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	RevokeUserTokens(ctx context.Context, userID string, ttl time.Duration) error
}

// Cache small JSON cache (Redis in production)
type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) error
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Infra external clients. Tokens and Cache may be nil when Redis is unavailable.
type Infra struct {
	Tokens   TokenStore
	Cache    Cache
	Mailer   mailer.Mailer
	Storage  storage.Storage
	Payments payment.Gateway
	Renderer *certimage.Renderer
}

// Service aggregate of every business service
type Service struct {
	Auth         AuthService
	User         UserService
	Student      StudentService
	Catalog      CatalogService
	Enrollment   EnrollmentService
	Gamification GamificationService
	Assignment   AssignmentService
	Review       ReviewService
	Blog         BlogService
	Showcase     ShowcaseService
	Certificate  CertificateService
	Contact      ContactService
	Payment      PaymentService
	Bulk         BulkService
	Page         PageService
}

// NewService builds the aggregate
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	infra Infra,
	logger *zap.Logger,
) *Service {
	enrollment := NewEnrollmentService(cfg, repo, logger)
	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, infra.Tokens, logger),
		User:         NewUserService(cfg, repo, infra.Tokens, infra.Mailer, logger),
		Student:      NewStudentService(cfg, repo, logger),
		Catalog:      NewCatalogService(repo, logger),
		Enrollment:   enrollment,
		Gamification: NewGamificationService(repo, infra.Cache, logger),
		Assignment:   NewAssignmentService(repo, logger),
		Review:       NewReviewService(repo, logger),
		Blog:         NewBlogService(repo, logger),
		Showcase:     NewShowcaseService(cfg, repo, infra.Storage, logger),
		Certificate:  NewCertificateService(cfg, repo, infra.Renderer, logger),
		Contact:      NewContactService(cfg, repo, infra.Mailer, logger),
		Payment:      NewPaymentService(cfg, repo, infra.Payments, logger),
		Bulk:         NewBulkService(repo, logger),
		Page:         NewPageService(repo, logger),
	}
}
