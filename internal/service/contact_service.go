package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ourcodingkiddos/backend/config"
	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/model"
	"ourcodingkiddos/backend/internal/repository"
	"ourcodingkiddos/backend/pkg/mailer"
)

// ErrContactNotFound contact message lookup failed
var ErrContactNotFound = errors.New("message not found")

const notifyTimeout = 15 * time.Second

// ContactService public contact form and the admin inbox
type ContactService interface {
	// Submit stores the message and notifies the admin inbox in the background
	Submit(ctx context.Context, req *dto.ContactRequest, clientIP string) (*dto.ContactResponse, error)
	List(ctx context.Context, req *dto.ContactListRequest) ([]dto.ContactResponse, int64, error)
	UpdateStatus(ctx context.Context, id, status string, callerID string) (*dto.ContactResponse, error)
}

type contactService struct {
	cfg    *config.Config
	repo   *repository.Repository
	mail   mailer.Mailer
	logger *zap.Logger
}

// NewContactService creates a ContactService
func NewContactService(cfg *config.Config, repo *repository.Repository, m mailer.Mailer, logger *zap.Logger) ContactService {
	return &contactService{cfg: cfg, repo: repo, mail: m, logger: logger}
}

func (s *contactService) Submit(ctx context.Context, req *dto.ContactRequest, clientIP string) (*dto.ContactResponse, error) {
	msg := &model.ContactMessage{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Subject:   strings.TrimSpace(req.Subject),
		Message:   strings.TrimSpace(req.Message),
		Status:    model.ContactNew,
		IPAddress: clientIP,
	}
	if err := s.repo.Contact.Create(ctx, msg); err != nil {
		s.logger.Error("store contact message failed", zap.Error(err))
		return nil, err
	}

	s.notify(msg)
	resp := toContactResponse(msg)
	return &resp, nil
}

func (s *contactService) List(ctx context.Context, req *dto.ContactListRequest) ([]dto.ContactResponse, int64, error) {
	msgs, total, err := s.repo.Contact.List(ctx, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}
	list := make([]dto.ContactResponse, 0, len(msgs))
	for i := range msgs {
		list = append(list, toContactResponse(&msgs[i]))
	}
	return list, total, nil
}

func (s *contactService) UpdateStatus(ctx context.Context, id, status string, callerID string) (*dto.ContactResponse, error) {
	switch status {
	case model.ContactNew, model.ContactRead, model.ContactArchived:
	default:
		return nil, ErrInvalidStatus
	}
	msg, err := s.repo.Contact.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	msg.Status = status
	msg.UpdatedBy = &callerID
	if err := s.repo.Contact.Update(ctx, msg); err != nil {
		return nil, err
	}
	resp := toContactResponse(msg)
	return &resp, nil
}

// notify delivery failures are logged, never returned to the visitor
func (s *contactService) notify(msg *model.ContactMessage) {
	if s.mail == nil || s.cfg.Mail.AdminInbox == "" {
		return
	}
	subject := msg.Subject
	if subject == "" {
		subject = "New message"
	}
	out := &mailer.Message{
		To:      []mail.Address{{Name: "Our Coding Kiddos", Address: s.cfg.Mail.AdminInbox}},
		ReplyTo: &mail.Address{Name: msg.Name, Address: msg.Email},
		Subject: "[Contact] " + subject,
		Text:    fmt.Sprintf("From: %s <%s>\n\n%s\n", msg.Name, msg.Email, msg.Message),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.mail.Send(ctx, out); err != nil {
			s.logger.Warn("contact notification failed",
				zap.String("message_id", msg.ContactMessageID), zap.Error(err))
		}
	}()
}
