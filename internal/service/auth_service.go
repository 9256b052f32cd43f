package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"ourcodingkiddos/backend/config"
	"ourcodingkiddos/backend/internal/dto"
	"ourcodingkiddos/backend/internal/model"
	"ourcodingkiddos/backend/internal/repository"
	pkgerrors "ourcodingkiddos/backend/pkg/errors"
	"ourcodingkiddos/backend/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("this account has been deactivated")
	ErrEmailExists        = errors.New("an account with this email already exists")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSamePassword       = errors.New("new password must differ from the current one")
)

// AuthService sign-up, sessions and passwords
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	// Logout revokes the given tokens; either may be empty
	Logout(ctx context.Context, accessToken, refreshToken string) error
	Me(ctx context.Context, caller Caller) (*dto.MeResponse, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	tokens TokenStore
	logger *zap.Logger
}

// NewAuthService creates an AuthService. tokens may be nil; logout then only clears cookies.
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	tokens TokenStore,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		tokens: tokens,
		logger: logger,
	}
}

// ────────────────────── Register ──────────────────────

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.repo.User.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = model.RoleParent
	}

	user := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.User.Create(ctx, user); err != nil {
			return err
		}
		if role != model.RoleStudent {
			return nil
		}
		return tx.Student.Create(ctx, &model.Student{
			UserID:      &user.UserID,
			DisplayName: user.Name,
			BirthYear:   req.BirthYear,
			GradeLevel:  req.GradeLevel,
			Level:       1,
		})
	})
	if err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		s.logger.Error("register failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.UserID), zap.String("role", role))
	return s.issueTokens(user, false)
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.repo.User.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("load user failed", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	now := time.Now()
	if err := s.repo.User.UpdateLastLogin(ctx, user.UserID, now); err != nil {
		s.logger.Warn("record last login failed", zap.String("user_id", user.UserID), zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}

	return s.issueTokens(user, req.RememberMe)
}

// ────────────────────── Refresh ──────────────────────

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	if refreshToken == "" {
		return nil, ErrInvalidToken
	}
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != jwt.TypeRefresh {
		return nil, ErrInvalidToken
	}

	if s.tokens != nil {
		revoked, err := s.tokens.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Error("check token blacklist failed", zap.Error(err))
			return nil, err
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// rotate: the presented refresh token cannot be used again
	s.revoke(ctx, claims)

	return s.issueTokens(user, claims.RememberMe)
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	for _, raw := range []string{accessToken, refreshToken} {
		if raw == "" {
			continue
		}
		claims, err := s.jwtMgr.ParseToken(raw)
		if err != nil {
			continue
		}
		s.revoke(ctx, claims)
	}
	return nil
}

// revoke blacklists a token for the rest of its lifetime
func (s *authService) revoke(ctx context.Context, claims *jwt.Claims) {
	if s.tokens == nil || claims.ExpiresAt == nil {
		return
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.tokens.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Warn("blacklist token failed", zap.String("jti", claims.ID), zap.Error(err))
	}
}

// ────────────────────── Me ──────────────────────

func (s *authService) Me(ctx context.Context, caller Caller) (*dto.MeResponse, error) {
	user, err := s.repo.User.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	resp := &dto.MeResponse{User: toUserResponse(user)}

	switch user.Role {
	case model.RoleStudent:
		st, err := s.repo.Student.GetByUserID(ctx, user.UserID)
		if err == nil {
			sr := toStudentResponse(st)
			resp.Student = &sr
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	case model.RoleParent:
		children, err := s.repo.Student.ListByParent(ctx, user.UserID)
		if err != nil {
			return nil, err
		}
		resp.Children = make([]dto.StudentResponse, 0, len(children))
		for i := range children {
			resp.Children = append(resp.Children, toStudentResponse(&children[i]))
		}
	}

	return resp, nil
}

// ────────────────────── ChangePassword ──────────────────────

func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrWrongPassword
	}
	if req.OldPassword == req.NewPassword {
		return ErrSamePassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return err
	}

	user.PasswordHash = string(hash)
	user.UpdatedBy = &userID
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("change password failed", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

// ── helpers ──

func (s *authService) issueTokens(user *model.User, rememberMe bool) (*dto.TokenResponse, error) {
	access, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role)
	if err != nil {
		s.logger.Error("generate access token failed", zap.Error(err))
		return nil, err
	}
	refresh, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Role, rememberMe)
	if err != nil {
		s.logger.Error("generate refresh token failed", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.jwtMgr.AccessTTL().Seconds()),
		RememberMe:   rememberMe,
		User:         toUserResponse(user),
	}, nil
}
