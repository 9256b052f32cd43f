package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/service"
	"ourcodingkiddos/backend/pkg/payment"
	"ourcodingkiddos/backend/pkg/response"
)

// maxWebhookPayload Stripe caps event payloads well below this
const maxWebhookPayload = 256 << 10

// PaymentHandler Stripe checkout and webhooks
type PaymentHandler struct {
	paymentSvc service.PaymentService
}

// NewPaymentHandler creates a PaymentHandler
func NewPaymentHandler(paymentSvc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

// Checkout POST /api/payments/checkout
func (h *PaymentHandler) Checkout(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.paymentSvc.Checkout(c.Request.Context(), &req, caller)
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}
	response.Created(c, result)
}

// Webhook POST /api/payments/webhook. The raw body is needed for the signature check.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayload))
	if err != nil {
		response.BadRequest(c, response.CodeValidation, "unreadable payload")
		return
	}

	ack, err := h.paymentSvc.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}
	response.OK(c, ack)
}

// ListMine GET /api/payments
func (h *PaymentHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.paymentSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}

func (h *PaymentHandler) handlePaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, payment.ErrInvalidSignature):
		response.BadRequest(c, 21001, "invalid webhook signature")
	case errors.Is(err, service.ErrFreeCourse):
		response.BadRequest(c, 21002, err.Error())
	case errors.Is(err, service.ErrPaymentNotFound):
		response.NotFound(c, 21003, err.Error())
	case errors.Is(err, service.ErrPaymentUnavailable), errors.Is(err, payment.ErrNotConfigured):
		response.Error(c, http.StatusServiceUnavailable, 21004, service.ErrPaymentUnavailable.Error())
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13002, err.Error())
	case errors.Is(err, service.ErrProgramNotFound):
		response.NotFound(c, 13001, err.Error())
	case errors.Is(err, service.ErrAlreadyEnrolled), errors.Is(err, service.ErrCourseNotPublished):
		handleEnrollmentError(c, err)
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
