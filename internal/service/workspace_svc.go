package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"adflow_dev_v1_202608/internal/api/dto"
	"adflow_dev_v1_202608/internal/model"
	"adflow_dev_v1_202608/internal/repository"
	"adflow_dev_v1_202608/pkg/logger"
	"adflow_dev_v1_202608/pkg/utils"
)

// ==================== 会话键 ====================

// 会话存储中的固定键名，历史上由前端 localStorage 迁移而来，键名保持不变
const (
	SessionKeySelectedWorkspace = "sv_selected_workspace_id"
	SessionKeyUserID            = "sv_user_id"
	SessionKeyUserBlob          = "sv_user" // 整个用户对象的 JSON 快照，作为兜底来源
)

// sessionTTL 会话项的保存时长
const sessionTTL = 7 * 24 * time.Hour

// ErrMissingContext 工作区或用户上下文缺失
var ErrMissingContext = errors.New("Missing workspace or user context")

// ==================== 服务 ====================

// WorkspaceService 工作区解析与切换
// 发布等需要工作区身份的操作统一从这里解析，
// 主键缺失时降级解析用户 JSON 快照
type WorkspaceService struct {
	wsRepo   repository.WorkspaceRepository
	userRepo repository.UserRepository
	sessions utils.SessionStore
}

// NewWorkspaceService 创建工作区服务
func NewWorkspaceService(wsRepo repository.WorkspaceRepository, userRepo repository.UserRepository, sessions utils.SessionStore) *WorkspaceService {
	return &WorkspaceService{
		wsRepo:   wsRepo,
		userRepo: userRepo,
		sessions: sessions,
	}
}

// ==================== 解析 ====================

// ResolveContext 解析当前会话的 (workspaceID, userID)
// 解析顺序：
//  1. sv_selected_workspace_id + sv_user_id 两个主键
//  2. 缺失的部分从 sv_user JSON 快照降级补齐
//
// 两者任一最终仍缺失时返回 ErrMissingContext，调用方必须在
// 发起任何网络调用之前失败
func (s *WorkspaceService) ResolveContext(sessionID string) (workspaceID, userID string, err error) {
	workspaceID, _ = s.sessions.Get(sessionKey(sessionID, SessionKeySelectedWorkspace))
	userID, _ = s.sessions.Get(sessionKey(sessionID, SessionKeyUserID))

	if workspaceID == "" || userID == "" {
		if blob, ok := s.sessions.Get(sessionKey(sessionID, SessionKeyUserBlob)); ok {
			var snapshot struct {
				ID                 string `json:"id"`
				UserID             string `json:"user_id"`
				WorkspaceID        string `json:"workspace_id"`
				DefaultWorkspaceID string `json:"default_workspace_id"`
			}
			if jsonErr := json.Unmarshal([]byte(blob), &snapshot); jsonErr != nil {
				logger.L().Warnf("用户会话快照解析失败: %v", jsonErr)
			} else {
				if userID == "" {
					userID = snapshot.ID
					if userID == "" {
						userID = snapshot.UserID
					}
				}
				if workspaceID == "" {
					workspaceID = snapshot.WorkspaceID
					if workspaceID == "" {
						workspaceID = snapshot.DefaultWorkspaceID
					}
				}
			}
		}
	}

	if workspaceID == "" || userID == "" {
		return "", "", ErrMissingContext
	}
	return workspaceID, userID, nil
}

// sessionKey 会话项按会话 ID 做命名空间隔离
func sessionKey(sessionID, key string) string {
	return sessionID + ":" + key
}

// ==================== 切换 ====================

// SelectWorkspace 切换当前工作区并持久化用户默认值
func (s *WorkspaceService) SelectWorkspace(ctx context.Context, sessionID, userID, workspaceID string) (*dto.WorkspaceVO, error) {
	ws, err := s.wsRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("工作区不存在")
	}
	if ws.Status != model.WorkspaceStatusActive {
		return nil, fmt.Errorf("工作区已停用")
	}

	s.sessions.Set(sessionKey(sessionID, SessionKeySelectedWorkspace), workspaceID, sessionTTL)

	if userID != "" {
		if err := s.userRepo.UpdateFields(ctx, userID, map[string]interface{}{
			"default_workspace_id": workspaceID,
		}); err != nil {
			logger.L().Warnf("保存用户默认工作区失败: %v", err)
		}
	}

	vo := toWorkspaceVO(ws)
	return &vo, nil
}

// BindSession 登录成功后写入会话主键和用户快照
func (s *WorkspaceService) BindSession(sessionID string, user *model.SysUser) {
	s.sessions.Set(sessionKey(sessionID, SessionKeyUserID), user.ID, sessionTTL)

	if blob, err := json.Marshal(map[string]string{
		"id":                   user.ID,
		"username":             user.Username,
		"default_workspace_id": user.DefaultWorkspaceID,
	}); err == nil {
		s.sessions.Set(sessionKey(sessionID, SessionKeyUserBlob), string(blob), sessionTTL)
	}

	if user.DefaultWorkspaceID != "" {
		s.sessions.Set(sessionKey(sessionID, SessionKeySelectedWorkspace), user.DefaultWorkspaceID, sessionTTL)
	}
}

// ClearSession 登出时清理会话项
func (s *WorkspaceService) ClearSession(sessionID string) {
	s.sessions.Delete(sessionKey(sessionID, SessionKeySelectedWorkspace))
	s.sessions.Delete(sessionKey(sessionID, SessionKeyUserID))
	s.sessions.Delete(sessionKey(sessionID, SessionKeyUserBlob))
}

// ==================== 查询 ====================

// ListWorkspaces 可用工作区列表
func (s *WorkspaceService) ListWorkspaces(ctx context.Context) ([]dto.WorkspaceVO, error) {
	list, err := s.wsRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]dto.WorkspaceVO, len(list))
	for i := range list {
		result[i] = toWorkspaceVO(&list[i])
	}
	return result, nil
}

func toWorkspaceVO(ws *model.Workspace) dto.WorkspaceVO {
	return dto.WorkspaceVO{
		ID:          ws.ID,
		Name:        ws.Name,
		AdAccountID: ws.AdAccountID,
		PageID:      ws.PageID,
		WabaID:      ws.WabaID,
		Status:      ws.Status,
	}
}
