package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"adflow_dev_v1_202608/internal/model"
	"adflow_dev_v1_202608/internal/repository"
	"adflow_dev_v1_202608/pkg/utils"
)

func newWorkspaceTestService(t *testing.T) (*WorkspaceService, utils.SessionStore, repository.WorkspaceRepository) {
	t.Helper()
	db := newTestDB(t)
	sessions := utils.NewMemorySessionStore()
	wsRepo := repository.NewWorkspaceRepository(db)
	svc := NewWorkspaceService(wsRepo, repository.NewUserRepository(db), sessions)
	return svc, sessions, wsRepo
}

func TestResolveContextFromPrimaryKeys(t *testing.T) {
	svc, sessions, _ := newWorkspaceTestService(t)

	sessions.Set("sess-1:"+SessionKeySelectedWorkspace, "ws-9", time.Hour)
	sessions.Set("sess-1:"+SessionKeyUserID, "user-9", time.Hour)

	wsID, userID, err := svc.ResolveContext("sess-1")
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if wsID != "ws-9" || userID != "user-9" {
		t.Errorf("主键解析错误: ws=%q user=%q", wsID, userID)
	}
}

// 主键缺失时从用户 JSON 快照降级补齐
func TestResolveContextFallsBackToUserBlob(t *testing.T) {
	svc, sessions, _ := newWorkspaceTestService(t)

	sessions.Set("sess-1:"+SessionKeyUserBlob,
		`{"id":"user-7","default_workspace_id":"ws-7"}`, time.Hour)

	wsID, userID, err := svc.ResolveContext("sess-1")
	if err != nil {
		t.Fatalf("降级解析失败: %v", err)
	}
	if wsID != "ws-7" || userID != "user-7" {
		t.Errorf("快照降级错误: ws=%q user=%q", wsID, userID)
	}
}

// 主键优先于快照
func TestResolveContextPrimaryKeyWins(t *testing.T) {
	svc, sessions, _ := newWorkspaceTestService(t)

	sessions.Set("sess-1:"+SessionKeySelectedWorkspace, "ws-primary", time.Hour)
	sessions.Set("sess-1:"+SessionKeyUserID, "user-primary", time.Hour)
	sessions.Set("sess-1:"+SessionKeyUserBlob,
		`{"id":"user-blob","default_workspace_id":"ws-blob"}`, time.Hour)

	wsID, userID, err := svc.ResolveContext("sess-1")
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if wsID != "ws-primary" || userID != "user-primary" {
		t.Errorf("主键应优先: ws=%q user=%q", wsID, userID)
	}
}

func TestResolveContextMissing(t *testing.T) {
	svc, sessions, _ := newWorkspaceTestService(t)

	// 完全为空
	if _, _, err := svc.ResolveContext("sess-empty"); !errors.Is(err, ErrMissingContext) {
		t.Errorf("空会话应返回 ErrMissingContext，实际 %v", err)
	}

	// 快照损坏
	sessions.Set("sess-bad:"+SessionKeyUserBlob, "{not json", time.Hour)
	if _, _, err := svc.ResolveContext("sess-bad"); !errors.Is(err, ErrMissingContext) {
		t.Errorf("损坏快照应返回 ErrMissingContext，实际 %v", err)
	}

	// 只有用户没有工作区
	sessions.Set("sess-half:"+SessionKeyUserID, "user-1", time.Hour)
	if _, _, err := svc.ResolveContext("sess-half"); !errors.Is(err, ErrMissingContext) {
		t.Errorf("缺工作区应返回 ErrMissingContext，实际 %v", err)
	}
}

func TestSelectWorkspaceRoundTrip(t *testing.T) {
	svc, _, wsRepo := newWorkspaceTestService(t)
	ctx := context.Background()

	if err := wsRepo.Create(ctx, &model.Workspace{
		ID: "ws-1", Name: "主工作区", Status: model.WorkspaceStatusActive,
	}); err != nil {
		t.Fatalf("建工作区失败: %v", err)
	}

	vo, err := svc.SelectWorkspace(ctx, "sess-1", "", "ws-1")
	if err != nil {
		t.Fatalf("切换工作区失败: %v", err)
	}
	if vo.ID != "ws-1" {
		t.Errorf("返回的工作区错误: %+v", vo)
	}

	// 切换后可直接解析出工作区（用户仍缺失则整体报缺失）
	wsID, _ := svc.sessions.Get("sess-1:" + SessionKeySelectedWorkspace)
	if wsID != "ws-1" {
		t.Errorf("会话中应写入选中工作区，实际 %q", wsID)
	}

	// 不存在的工作区
	if _, err := svc.SelectWorkspace(ctx, "sess-1", "", "no-such-ws"); err == nil {
		t.Error("不存在的工作区应报错")
	}
}

func TestBindSessionEnablesResolution(t *testing.T) {
	svc, _, _ := newWorkspaceTestService(t)

	svc.BindSession("user-1", &model.SysUser{
		ID:                 "user-1",
		Username:           "admin",
		DefaultWorkspaceID: "ws-default",
	})

	wsID, userID, err := svc.ResolveContext("user-1")
	if err != nil {
		t.Fatalf("登录后解析失败: %v", err)
	}
	if wsID != "ws-default" || userID != "user-1" {
		t.Errorf("绑定会话后解析错误: ws=%q user=%q", wsID, userID)
	}

	svc.ClearSession("user-1")
	if _, _, err := svc.ResolveContext("user-1"); !errors.Is(err, ErrMissingContext) {
		t.Errorf("登出后应解析失败，实际 %v", err)
	}
}
