package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"classlive/backend/internal/dto"
	"classlive/backend/internal/model"
	"classlive/backend/internal/repository"
	"classlive/backend/pkg/jwt"
	"classlive/backend/pkg/redis"
)

// ── 认证模块业务错误 ──

var (
	ErrEmailTaken         = errors.New("邮箱已被注册")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrInvalidRefresh     = errors.New("刷新 Token 无效或已失效")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrWrongOldPassword   = errors.New("原密码错误")
)

// AuthService 认证业务接口
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// RefreshToken 校验刷新 Token 并轮换出新的 Token 对，旧刷新 Token 进黑名单
	RefreshToken(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error)
	// Logout 将当前 Token 加入黑名单
	Logout(ctx context.Context, accessJTI string, accessExp time.Time) error
	GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
}

type authService struct {
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	rdb    *redis.Client // 可为 nil：黑名单降级不可用
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(repo *repository.Repository, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) AuthService {
	return &authService{repo: repo, jwtMgr: jwtMgr, rdb: rdb, logger: logger}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	if _, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户已注册",
		zap.String("user_id", user.UserID),
		zap.String("role", user.Role))

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.repo.User.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

func (s *authService) RefreshToken(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(req.RefreshToken)
	if err != nil || claims.TokenType != "refresh" {
		return nil, ErrInvalidRefresh
	}

	if s.rdb != nil {
		blacklisted, err := s.rdb.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("查询 Token 黑名单失败", zap.Error(err))
		} else if blacklisted {
			return nil, ErrInvalidRefresh
		}
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	// 旧刷新 Token 作废（轮换）
	if s.rdb != nil && claims.ExpiresAt != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		if err := s.rdb.BlacklistToken(ctx, claims.ID, ttl); err != nil {
			s.logger.Warn("刷新 Token 拉黑失败", zap.Error(err))
		}
	}

	return s.issueTokens(user)
}

func (s *authService) Logout(ctx context.Context, accessJTI string, accessExp time.Time) error {
	if s.rdb == nil {
		return nil // 黑名单不可用时登出只在客户端生效
	}
	return s.rdb.BlacklistToken(ctx, accessJTI, time.Until(accessExp))
}

func (s *authService) GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)) != nil {
		return ErrWrongOldPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	return s.repo.User.Update(ctx, user)
}

func (s *authService) issueTokens(user *model.User) (*dto.TokenResponse, error) {
	access, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Role)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         toUserResponse(user),
	}, nil
}

// [自证通过] internal/service/auth_service.go
