package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ourcodingkiddos/backend/config"
	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/model"
	"ourcodingkiddos/backend/internal/repository"
	"ourcodingkiddos/backend/pkg/payment"
)

// ── payment module errors ──

var (
	ErrFreeCourse         = errors.New("this item is free, enroll directly")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrPaymentUnavailable = errors.New("payments are temporarily unavailable")
)

const defaultExpiryWindow = 24 * time.Hour

// PaymentService Stripe checkout and webhook handling
type PaymentService interface {
	Checkout(ctx context.Context, req *dto.CheckoutRequest, caller Caller) (*dto.CheckoutResponse, error)
	// HandleWebhook verifies and applies a Stripe event; replays are harmless
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*dto.WebhookAck, error)
	ListMine(ctx context.Context, userID string) ([]dto.PaymentResponse, error)
	// ExpireStale expires pending payments older than the configured window
	ExpireStale(ctx context.Context) (int64, error)
}

type paymentService struct {
	cfg     *config.Config
	repo    *repository.Repository
	gateway payment.Gateway
	logger  *zap.Logger
	now     func() time.Time
}

// NewPaymentService creates a PaymentService
func NewPaymentService(cfg *config.Config, repo *repository.Repository, gateway payment.Gateway, logger *zap.Logger) PaymentService {
	return &paymentService{cfg: cfg, repo: repo, gateway: gateway, logger: logger, now: time.Now}
}

// checkoutItem what is being bought
type checkoutItem struct {
	name        string
	description string
	amount      int64
	courseID    *string
	programID   *string
}

func (s *paymentService) Checkout(ctx context.Context, req *dto.CheckoutRequest, caller Caller) (*dto.CheckoutResponse, error) {
	if s.gateway == nil {
		return nil, ErrPaymentUnavailable
	}
	st, err := resolveStudent(ctx, s.repo, req.StudentID, caller, true)
	if err != nil {
		return nil, err
	}
	item, err := s.resolveItem(ctx, req, st.StudentID)
	if err != nil {
		return nil, err
	}
	buyer, err := s.repo.User.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	p := &model.Payment{
		UserID:      caller.UserID,
		StudentID:   &st.StudentID,
		CourseID:    item.courseID,
		ProgramID:   item.programID,
		AmountCents: item.amount,
		Currency:    s.cfg.Stripe.Currency,
		Status:      model.PaymentPending,
	}
	p.CreatedBy = &caller.UserID
	if err := s.repo.Payment.Create(ctx, p); err != nil {
		s.logger.Error("create payment failed", zap.Error(err))
		return nil, err
	}

	meta := map[string]string{"payment_id": p.PaymentID, "student_id": st.StudentID}
	if item.courseID != nil {
		meta["course_id"] = *item.courseID
	}
	if item.programID != nil {
		meta["program_id"] = *item.programID
	}
	session, err := s.gateway.CreateCheckout(ctx, &payment.CheckoutRequest{
		PaymentID:     p.PaymentID,
		ProductName:   item.name,
		Description:   item.description,
		AmountCents:   item.amount,
		Currency:      p.Currency,
		CustomerEmail: buyer.Email,
		Metadata:      meta,
	})
	if err != nil {
		p.Status = model.PaymentFailed
		if uerr := s.repo.Payment.Update(ctx, p); uerr != nil {
			s.logger.Warn("mark payment failed", zap.String("payment_id", p.PaymentID), zap.Error(uerr))
		}
		s.logger.Error("create checkout session failed", zap.String("payment_id", p.PaymentID), zap.Error(err))
		if errors.Is(err, payment.ErrNotConfigured) {
			return nil, ErrPaymentUnavailable
		}
		return nil, err
	}

	p.StripeSessionID = &session.ID
	if err := s.repo.Payment.Update(ctx, p); err != nil {
		s.logger.Error("store checkout session failed", zap.String("payment_id", p.PaymentID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("checkout started",
		zap.String("payment_id", p.PaymentID), zap.String("session_id", session.ID), zap.Int64("amount_cents", item.amount))
	return &dto.CheckoutResponse{PaymentID: p.PaymentID, SessionID: session.ID, CheckoutURL: session.URL}, nil
}

func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*dto.WebhookAck, error) {
	if s.gateway == nil {
		return nil, ErrPaymentUnavailable
	}
	ev, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		s.logger.Warn("webhook rejected", zap.Error(err))
		return nil, err
	}

	ack := &dto.WebhookAck{Received: true, Type: ev.Type}
	switch ev.Type {
	case payment.EventCheckoutCompleted:
		err = s.completeCheckout(ctx, ev)
	case payment.EventCheckoutExpired:
		err = s.expireCheckout(ctx, ev)
	case payment.EventChargeRefunded:
		err = s.refund(ctx, ev)
	default:
		s.logger.Debug("webhook event ignored", zap.String("type", ev.Type), zap.String("event_id", ev.ID))
		return ack, nil
	}

	if errors.Is(err, ErrPaymentNotFound) {
		s.logger.Warn("webhook for unknown payment",
			zap.String("type", ev.Type), zap.String("event_id", ev.ID), zap.String("session_id", ev.SessionID))
		return ack, nil
	}
	if err != nil {
		s.logger.Error("webhook handling failed", zap.String("type", ev.Type), zap.String("event_id", ev.ID), zap.Error(err))
		return nil, err
	}
	ack.Handled = true
	return ack, nil
}

func (s *paymentService) ListMine(ctx context.Context, userID string) ([]dto.PaymentResponse, error) {
	payments, err := s.repo.Payment.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	list := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		list = append(list, toPaymentResponse(&payments[i]))
	}
	return list, nil
}

func (s *paymentService) ExpireStale(ctx context.Context) (int64, error) {
	window := s.cfg.Jobs.PaymentExpiryWindow
	if window <= 0 {
		window = defaultExpiryWindow
	}
	n, err := s.repo.Payment.ExpireStale(ctx, s.now().Add(-window))
	if err != nil {
		s.logger.Error("expire stale payments failed", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		s.logger.Info("stale payments expired", zap.Int64("count", n))
	}
	return n, nil
}

// ── webhook handlers ──

// completeCheckout marks the payment paid and enrolls the student. A payment that is
// already paid is left alone, so redelivered events enroll exactly once.
func (s *paymentService) completeCheckout(ctx context.Context, ev *payment.WebhookEvent) error {
	now := s.now()
	return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		p, err := s.findPayment(ctx, tx, ev)
		if err != nil {
			return err
		}
		if p.Status == model.PaymentPaid || p.Status == model.PaymentRefunded {
			return nil
		}

		p.Status = model.PaymentPaid
		p.PaidAt = &now
		if ev.PaymentIntent != "" {
			p.StripePaymentIntent = ev.PaymentIntent
		}
		if err := tx.Payment.Update(ctx, p); err != nil {
			return err
		}
		if p.StudentID == nil {
			return nil
		}

		courses, err := s.paidCourses(ctx, tx, p)
		if err != nil {
			return err
		}
		for i := range courses {
			_, err := enrollStudent(ctx, tx, *p.StudentID, &courses[i], &p.PaymentID, now)
			if err != nil && !errors.Is(err, ErrAlreadyEnrolled) {
				return err
			}
		}
		s.logger.Info("payment completed",
			zap.String("payment_id", p.PaymentID), zap.Int("courses", len(courses)))
		return nil
	})
}

func (s *paymentService) expireCheckout(ctx context.Context, ev *payment.WebhookEvent) error {
	p, err := s.findPayment(ctx, s.repo, ev)
	if err != nil {
		return err
	}
	if p.Status != model.PaymentPending {
		return nil
	}
	p.Status = model.PaymentExpired
	return s.repo.Payment.Update(ctx, p)
}

func (s *paymentService) refund(ctx context.Context, ev *payment.WebhookEvent) error {
	if ev.PaymentIntent == "" {
		return ErrPaymentNotFound
	}
	p, err := s.repo.Payment.GetByPaymentIntent(ctx, ev.PaymentIntent)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		return err
	}
	if p.Status == model.PaymentRefunded {
		return nil
	}
	p.Status = model.PaymentRefunded
	if err := s.repo.Payment.Update(ctx, p); err != nil {
		return err
	}
	s.logger.Info("payment refunded", zap.String("payment_id", p.PaymentID))
	return nil
}

// ── helpers ──

func (s *paymentService) findPayment(ctx context.Context, repo *repository.Repository, ev *payment.WebhookEvent) (*model.Payment, error) {
	var (
		p   *model.Payment
		err error
	)
	if ev.SessionID != "" {
		p, err = repo.Payment.GetBySessionID(ctx, ev.SessionID)
	}
	// only a miss falls through to the client reference; real lookup errors are returned
	if (ev.SessionID == "" || errors.Is(err, gorm.ErrRecordNotFound)) && ev.ClientReferenceID != "" {
		p, err = repo.Payment.GetByID(ctx, ev.ClientReferenceID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if p == nil {
		return nil, ErrPaymentNotFound
	}
	return p, nil
}

// paidCourses the course bought, or every published course of the program bought
func (s *paymentService) paidCourses(ctx context.Context, repo *repository.Repository, p *model.Payment) ([]model.Course, error) {
	if p.CourseID != nil {
		c, err := repo.Course.GetByID(ctx, *p.CourseID)
		if err != nil {
			return nil, err
		}
		return []model.Course{*c}, nil
	}
	if p.ProgramID == nil {
		return nil, nil
	}
	prog, err := repo.Program.GetByID(ctx, *p.ProgramID)
	if err != nil {
		return nil, err
	}
	full, err := repo.Program.GetBySlug(ctx, prog.Slug, true)
	if err != nil {
		return nil, err
	}
	return full.Courses, nil
}

func (s *paymentService) resolveItem(ctx context.Context, req *dto.CheckoutRequest, studentID string) (*checkoutItem, error) {
	if req.CourseID != nil {
		c, err := s.repo.Course.GetByID(ctx, *req.CourseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCourseNotFound
			}
			return nil, err
		}
		if !c.IsPublished {
			return nil, ErrCourseNotPublished
		}
		if c.IsFree() {
			return nil, ErrFreeCourse
		}
		e, err := s.repo.Enrollment.GetByStudentAndCourse(ctx, studentID, c.CourseID)
		if err == nil && e.Status != model.EnrollmentCancelled {
			return nil, ErrAlreadyEnrolled
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return &checkoutItem{name: c.Title, description: c.Summary, amount: c.PriceCents, courseID: &c.CourseID}, nil
	}

	if req.ProgramID == nil {
		return nil, ErrCourseNotFound
	}
	prog, err := s.repo.Program.GetByID(ctx, *req.ProgramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	if !prog.IsPublished {
		return nil, ErrProgramNotFound
	}
	if prog.PriceCents == 0 {
		return nil, ErrFreeCourse
	}
	return &checkoutItem{name: prog.Title, description: prog.Summary, amount: prog.PriceCents, programID: &prog.ProgramID}, nil
}

