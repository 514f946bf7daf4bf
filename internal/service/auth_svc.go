package service

import (
	"context"
	"errors"
	"time"

	"adflow_dev_v1_202608/internal/api/dto"
	"adflow_dev_v1_202608/internal/repository"
	"adflow_dev_v1_202608/pkg/logger"
	"adflow_dev_v1_202608/pkg/utils"
)

// ==================== 错误定义 ====================

// ErrInvalidCredentials 用户名或密码错误
var ErrInvalidCredentials = errors.New("用户名或密码错误")

// ==================== 服务 ====================

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

// AuthService 登录认证
type AuthService struct {
	userRepo  repository.UserRepository
	workspace *WorkspaceService
	jwtSecret string
}

// NewAuthService 创建认证服务
func NewAuthService(userRepo repository.UserRepository, workspace *WorkspaceService, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		workspace: workspace,
		jwtSecret: jwtSecret,
	}
}

// Login 用户名密码登录
// 成功后把用户主键和快照写入会话存储（会话以用户 ID 命名空间隔离）
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !utils.VerifyPassword(req.Password, s.jwtSecret, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := utils.GenerateToken(s.jwtSecret, user.ID, user.DefaultWorkspaceID, accessTokenTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, err := utils.GenerateToken(s.jwtSecret, user.ID, user.DefaultWorkspaceID, refreshTokenTTL)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.userRepo.UpdateFields(ctx, user.ID, map[string]interface{}{
		"last_login_at": &now,
	}); err != nil {
		logger.L().Warnf("更新最近登录时间失败: %v", err)
	}

	s.workspace.BindSession(user.ID, user)

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       user.ID,
		WorkspaceID:  user.DefaultWorkspaceID,
	}, nil
}

// Refresh 用 refresh token 换发新的访问令牌
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	claims, err := utils.ParseToken(s.jwtSecret, refreshToken)
	if err != nil {
		return nil, errors.New("refresh token 无效或已过期")
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, errors.New("用户不存在")
	}

	accessToken, err := utils.GenerateToken(s.jwtSecret, user.ID, user.DefaultWorkspaceID, accessTokenTTL)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       user.ID,
		WorkspaceID:  user.DefaultWorkspaceID,
	}, nil
}

// Logout 登出并清理会话
func (s *AuthService) Logout(userID string) {
	s.workspace.ClearSession(userID)
}
