package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"adflow_dev_v1_202608/pkg/utils"
)

// 上下文键
const (
	CtxUserID      = "user_id"
	CtxWorkspaceID = "workspace_id"
	CtxSessionID   = "session_id"
)

// JWTAuth 访问令牌校验
// 通过后把用户 ID、工作区 ID 写入请求上下文，
// 会话 ID 与用户 ID 同值（会话存储按用户隔离）
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "缺少认证令牌",
			})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ParseToken(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "令牌无效或已过期",
			})
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxWorkspaceID, claims.WorkspaceID)
		c.Set(CtxSessionID, claims.UserID)
		c.Next()
	}
}
