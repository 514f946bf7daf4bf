package dto

// ==================== 认证 ====================

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	WorkspaceID  string `json:"workspace_id,omitempty"`
}

// RefreshRequest 刷新令牌请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// SelectWorkspaceRequest 切换工作区请求
type SelectWorkspaceRequest struct {
	WorkspaceID string `json:"workspace_id" binding:"required"`
}

// WorkspaceVO 工作区视图对象
type WorkspaceVO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AdAccountID string `json:"ad_account_id"`
	PageID      string `json:"page_id"`
	WabaID      string `json:"waba_id,omitempty"`
	Status      int    `json:"status"`
}
