package handler

import (
	"ourcodingkiddos/backend/config"
	"ourcodingkiddos/backend/internal/service"
)

// Handler aggregate of every HTTP handler
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Catalog      *CatalogHandler
	Enrollment   *EnrollmentHandler
	Gamification *GamificationHandler
	Assignment   *AssignmentHandler
	Review       *ReviewHandler
	Blog         *BlogHandler
	Showcase     *ShowcaseHandler
	Certificate  *CertificateHandler
	Contact      *ContactHandler
	Payment      *PaymentHandler
	Bulk         *BulkHandler
	Page         *PageHandler
}

// NewHandler builds the aggregate
func NewHandler(svc *service.Service, cfg *config.Config) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth, &cfg.Auth),
		User:         NewUserHandler(svc.User, svc.Student),
		Catalog:      NewCatalogHandler(svc.Catalog),
		Enrollment:   NewEnrollmentHandler(svc.Enrollment),
		Gamification: NewGamificationHandler(svc.Gamification),
		Assignment:   NewAssignmentHandler(svc.Assignment),
		Review:       NewReviewHandler(svc.Review),
		Blog:         NewBlogHandler(svc.Blog),
		Showcase:     NewShowcaseHandler(svc.Showcase, cfg.Storage.MaxUploadSize),
		Certificate:  NewCertificateHandler(svc.Certificate),
		Contact:      NewContactHandler(svc.Contact),
		Payment:      NewPaymentHandler(svc.Payment),
		Bulk:         NewBulkHandler(svc.Bulk),
		Page:         NewPageHandler(svc.Page),
	}
}
