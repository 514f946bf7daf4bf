package controller

import (
	"github.com/gin-gonic/gin"

	"adflow_dev_v1_202608/internal/api/dto"
	"adflow_dev_v1_202608/internal/middleware"
	"adflow_dev_v1_202608/internal/service"
)

// WorkspaceController 工作区接口
type WorkspaceController struct {
	workspaceSvc *service.WorkspaceService
}

// NewWorkspaceController 创建工作区控制器
func NewWorkspaceController(workspaceSvc *service.WorkspaceService) *WorkspaceController {
	return &WorkspaceController{workspaceSvc: workspaceSvc}
}

// List 可用工作区列表
// @Router /api/workspaces [get]
func (ctl *WorkspaceController) List(c *gin.Context) {
	list, err := ctl.workspaceSvc.ListWorkspaces(c.Request.Context())
	if err != nil {
		serverError(c, err)
		return
	}
	ok(c, list)
}

// Select 切换当前工作区
// @Router /api/workspaces/select [post]
func (ctl *WorkspaceController) Select(c *gin.Context) {
	var req dto.SelectWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "参数错误: "+err.Error())
		return
	}

	sessionID := c.GetString(middleware.CtxSessionID)
	userID := c.GetString(middleware.CtxUserID)

	vo, err := ctl.workspaceSvc.SelectWorkspace(c.Request.Context(), sessionID, userID, req.WorkspaceID)
	if err != nil {
		notFound(c, err.Error())
		return
	}
	ok(c, vo)
}
