package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"ourcodingkiddos/backend/config"
	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/model"
	"ourcodingkiddos/backend/internal/repository"
	pkgerrors "ourcodingkiddos/backend/pkg/errors"
	"ourcodingkiddos/backend/pkg/mailer"
)

// ── user module errors ──

var (
	ErrUserSelfDelete     = errors.New("you cannot delete your own account")
	ErrUserSelfRoleChange = errors.New("you cannot change your own role or deactivate yourself")
	ErrParentNotFound     = errors.New("parent account not found")
	ErrInvalidRole        = errors.New("invalid role")
)

// UserService admin account management
type UserService interface {
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.CreateUserResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID string) (*dto.UserResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	ResetPassword(ctx context.Context, id string, callerID string) (*dto.ResetPasswordResponse, error)
}

type userService struct {
	cfg    *config.Config
	repo   *repository.Repository
	tokens TokenStore
	mail   mailer.Mailer
	logger *zap.Logger
}

// NewUserService creates a UserService. tokens and mail may be nil.
func NewUserService(cfg *config.Config, repo *repository.Repository, tokens TokenStore, mail mailer.Mailer, logger *zap.Logger) UserService {
	return &userService{cfg: cfg, repo: repo, tokens: tokens, mail: mail, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, repository.UserFilter{
		Role:    req.Role,
		Keyword: req.Keyword,
	}, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		list = append(list, toUserResponse(&users[i]))
	}
	return list, total, nil
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.CreateUserResponse, error) {
	user, temp, err := createAccount(ctx, s.repo, accountInput{
		Name:        req.Name,
		Email:       req.Email,
		Role:        req.Role,
		Password:    req.Password,
		ParentEmail: req.ParentEmail,
		CreatedBy:   callerID,
	})
	if err != nil {
		if !isAccountInputError(err) {
			s.logger.Error("create user failed", zap.String("email", req.Email), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("user created", zap.String("user_id", user.UserID), zap.String("role", user.Role), zap.String("by", callerID))
	s.sendWelcome(user)

	return &dto.CreateUserResponse{User: toUserResponse(user), TempPassword: temp}, nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if id == callerID {
		if (req.Role != nil && *req.Role != user.Role) || (req.IsActive != nil && !*req.IsActive) {
			return nil, ErrUserSelfRoleChange
		}
	}

	wasRole, wasActive := user.Role, user.IsActive

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		if !model.ValidRole(*req.Role) {
			return nil, ErrInvalidRole
		}
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedBy = &callerID

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.User.Update(ctx, user); err != nil {
			return err
		}
		if user.Role == model.RoleStudent {
			return ensureStudentProfile(ctx, tx, user, nil)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("update user failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	// sessions carry the role, so a demotion or deactivation ends them
	if user.Role != wasRole || (wasActive && !user.IsActive) {
		s.revokeSessions(ctx, user.UserID)
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *userService) Delete(ctx context.Context, id string, callerID string) error {
	if id == callerID {
		return ErrUserSelfDelete
	}
	if err := s.repo.User.Delete(ctx, id, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("delete user failed", zap.String("id", id), zap.Error(err))
		return err
	}
	s.revokeSessions(ctx, id)
	s.logger.Info("user deleted", zap.String("id", id), zap.String("by", callerID))
	return nil
}

// ────────────────────── ResetPassword ──────────────────────

func (s *userService) ResetPassword(ctx context.Context, id string, callerID string) (*dto.ResetPasswordResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load user failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	tempPassword, err := generateTempPassword(10)
	if err != nil {
		s.logger.Error("generate temp password failed", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, err
	}

	user.PasswordHash = string(hash)
	user.UpdatedBy = &callerID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("reset password failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return &dto.ResetPasswordResponse{TempPassword: tempPassword}, nil
}

func (s *userService) sendWelcome(user *model.User) {
	if s.mail == nil {
		return
	}
	msg := &mailer.Message{
		To:      []mail.Address{{Name: user.Name, Address: user.Email}},
		Subject: "Welcome to Our Coding Kiddos",
		Text: fmt.Sprintf("Hi %s,\n\nAn account has been created for you on Our Coding Kiddos. "+
			"Your administrator will share your sign-in details.\n", user.Name),
	}
	go func() {
		if err := s.mail.Send(context.Background(), msg); err != nil {
			s.logger.Warn("welcome email failed", zap.String("user_id", user.UserID), zap.Error(err))
		}
	}()
}

// ── account creation shared with bulk import ──

// accountInput one account to create
type accountInput struct {
	Name        string
	Email       string
	Role        string
	Password    string // generated when empty
	ParentEmail string // links a student to an existing parent
	CreatedBy   string
}

func isAccountInputError(err error) bool {
	return errors.Is(err, ErrEmailExists) || errors.Is(err, ErrParentNotFound) || errors.Is(err, ErrInvalidRole)
}

// createAccount creates a user (plus a student profile for students).
// Returns the generated password when none was supplied.
func createAccount(ctx context.Context, repo *repository.Repository, in accountInput) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !model.ValidRole(in.Role) {
		return nil, "", ErrInvalidRole
	}
	if _, err := repo.User.GetByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	var parent *model.User
	if in.ParentEmail != "" {
		p, err := repo.User.GetByEmail(ctx, strings.TrimSpace(in.ParentEmail))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, "", ErrParentNotFound
			}
			return nil, "", err
		}
		if p.Role != model.RoleParent {
			return nil, "", ErrParentNotFound
		}
		parent = p
	}

	password, temp := in.Password, ""
	if password == "" {
		generated, err := generateTempPassword(10)
		if err != nil {
			return nil, "", err
		}
		password, temp = generated, generated
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         in.Role,
		IsActive:     true,
	}
	if in.CreatedBy != "" {
		user.CreatedBy = &in.CreatedBy
	}

	err = repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.User.Create(ctx, user); err != nil {
			return err
		}
		if user.Role == model.RoleStudent {
			return ensureStudentProfile(ctx, tx, user, parent)
		}
		return nil
	})
	if err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, "", ErrEmailExists
		}
		return nil, "", err
	}
	return user, temp, nil
}

// ensureStudentProfile creates the student row of a student login when missing
func ensureStudentProfile(ctx context.Context, repo *repository.Repository, user *model.User, parent *model.User) error {
	if _, err := repo.Student.GetByUserID(ctx, user.UserID); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	st := &model.Student{
		UserID:      &user.UserID,
		DisplayName: user.Name,
		Level:       1,
	}
	if parent != nil {
		st.ParentID = &parent.UserID
	}
	return repo.Student.Create(ctx, st)
}

// generateTempPassword random password with at least one letter and one digit
func generateTempPassword(length int) (string, error) {
	const letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	const digits = "23456789"
	const all = letters + digits

	if length < 8 {
		length = 8
	}

	pick := func(set string) (byte, error) {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
		if err != nil {
			return 0, err
		}
		return set[n.Int64()], nil
	}

	result := make([]byte, length)
	var err error
	if result[0], err = pick(letters); err != nil {
		return "", err
	}
	if result[1], err = pick(digits); err != nil {
		return "", err
	}
	for i := 2; i < length; i++ {
		if result[i], err = pick(all); err != nil {
			return "", err
		}
	}

	// Fisher-Yates shuffle
	for i := length - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		j := n.Int64()
		result[i], result[j] = result[j], result[i]
	}

	return string(result), nil
}

// revokeSessions cuts off the user's outstanding access tokens. Refresh already re-reads
// the account, so only access tokens need it. The account change is committed either way.
func (s *userService) revokeSessions(ctx context.Context, userID string) {
	if s.tokens == nil {
		return
	}
	if err := s.tokens.RevokeUserTokens(ctx, userID, s.cfg.Auth.AccessTokenTTL); err != nil {
		s.logger.Error("revoke user sessions failed", zap.String("user_id", userID), zap.Error(err))
	}
}
