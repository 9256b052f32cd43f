package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"ourcodingkiddos/backend/internal/model"
)

// PaymentRepository checkout payment data access
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByID(ctx context.Context, id string) (*model.Payment, error)
	GetBySessionID(ctx context.Context, sessionID string) (*model.Payment, error)
	GetByPaymentIntent(ctx context.Context, intent string) (*model.Payment, error)
	// HasPaid reports whether a paid payment covers the student for the course
	HasPaid(ctx context.Context, studentID, courseID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]model.Payment, error)
	Update(ctx context.Context, payment *model.Payment) error
	// ExpireStale moves pending payments created before cutoff to expired
	ExpireStale(ctx context.Context, cutoff time.Time) (int64, error)
	SumPaid(ctx context.Context) (int64, error)
}

type paymentRepo struct {
	db *gorm.DB
}

// NewPaymentRepo creates a PaymentRepository
func NewPaymentRepo(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Create(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepo) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	return r.first(ctx, "payment_id = ?", id)
}

func (r *paymentRepo) GetBySessionID(ctx context.Context, sessionID string) (*model.Payment, error) {
	return r.first(ctx, "stripe_session_id = ?", sessionID)
}

func (r *paymentRepo) GetByPaymentIntent(ctx context.Context, intent string) (*model.Payment, error) {
	return r.first(ctx, "stripe_payment_intent = ?", intent)
}

func (r *paymentRepo) first(ctx context.Context, query string, arg interface{}) (*model.Payment, error) {
	var p model.Payment
	if err := r.db.WithContext(ctx).Where(query, arg).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepo) HasPaid(ctx context.Context, studentID, courseID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("student_id = ? AND status = ?", studentID, model.PaymentPaid).
		Where("(course_id = ? OR program_id IN (?))", courseID,
			r.db.Model(&model.Course{}).Select("program_id").Where("course_id = ? AND program_id IS NOT NULL", courseID)).
		Count(&n).Error
	return n > 0, err
}

func (r *paymentRepo) ListByUser(ctx context.Context, userID string) ([]model.Payment, error) {
	var list []model.Payment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *paymentRepo) Update(ctx context.Context, payment *model.Payment) error {
	return updateVersioned(ctx, r.db, payment, &payment.Version)
}

func (r *paymentRepo) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("status = ? AND created_at < ?", model.PaymentPending, cutoff).
		UpdateColumns(map[string]interface{}{
			"status":     model.PaymentExpired,
			"version":    gorm.Expr("version + 1"),
			"updated_at": gorm.Expr("NOW()"),
		})
	return res.RowsAffected, res.Error
}

func (r *paymentRepo) SumPaid(ctx context.Context) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("status = ?", model.PaymentPaid).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&sum).Error
	return sum, err
}
