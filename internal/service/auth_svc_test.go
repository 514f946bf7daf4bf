package service

import (
	"context"
	"errors"
	"testing"

	"adflow_dev_v1_202608/internal/api/dto"
	"adflow_dev_v1_202608/internal/model"
	"adflow_dev_v1_202608/internal/repository"
	"adflow_dev_v1_202608/pkg/utils"
)

const testJWTSecret = "test-secret"

func newAuthTestService(t *testing.T) (*AuthService, utils.SessionStore) {
	t.Helper()
	db := newTestDB(t)
	sessions := utils.NewMemorySessionStore()
	userRepo := repository.NewUserRepository(db)
	wsSvc := NewWorkspaceService(repository.NewWorkspaceRepository(db), userRepo, sessions)

	if err := userRepo.Create(context.Background(), &model.SysUser{
		ID:                 "user-1",
		Username:           "alice",
		PasswordHash:       utils.HashPassword("s3cret", testJWTSecret),
		DefaultWorkspaceID: "ws-1",
	}); err != nil {
		t.Fatalf("创建测试用户失败: %v", err)
	}

	return NewAuthService(userRepo, wsSvc, testJWTSecret), sessions
}

func TestLoginIssuesTokensAndBindsSession(t *testing.T) {
	svc, sessions := newAuthTestService(t)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "s3cret"})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("应同时签发访问令牌和刷新令牌")
	}
	if resp.WorkspaceID != "ws-1" {
		t.Errorf("默认工作区错误: %q", resp.WorkspaceID)
	}

	claims, err := utils.ParseToken(testJWTSecret, resp.AccessToken)
	if err != nil {
		t.Fatalf("访问令牌不可解析: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("令牌用户错误: %q", claims.UserID)
	}

	if _, ok := sessions.Get("user-1:" + SessionKeyUserID); !ok {
		t.Error("登录后应绑定会话")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newAuthTestService(t)

	if _, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("错误密码应返回 ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "nobody", Password: "s3cret"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("未知用户应返回 ErrInvalidCredentials, got %v", err)
	}
}

func TestRefreshReissuesAccessToken(t *testing.T) {
	svc, _ := newAuthTestService(t)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "s3cret"})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}

	resp, err := svc.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("刷新失败: %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("刷新应返回新的访问令牌")
	}
	if resp.UserID != "user-1" || resp.WorkspaceID != "ws-1" {
		t.Errorf("刷新响应上下文错误: user=%q ws=%q", resp.UserID, resp.WorkspaceID)
	}

	if _, err := svc.Refresh(context.Background(), "not-a-token"); err == nil {
		t.Error("非法刷新令牌应被拒绝")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	svc, sessions := newAuthTestService(t)

	if _, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "s3cret"}); err != nil {
		t.Fatalf("登录失败: %v", err)
	}

	svc.Logout("user-1")
	if _, ok := sessions.Get("user-1:" + SessionKeyUserID); ok {
		t.Error("登出后会话应被清理")
	}
}
