package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"adflow_dev_v1_202608/internal/api/dto"
	"adflow_dev_v1_202608/internal/middleware"
	"adflow_dev_v1_202608/internal/service"
)

// AuthController 认证接口
type AuthController struct {
	authSvc *service.AuthService
}

// NewAuthController 创建认证控制器
func NewAuthController(authSvc *service.AuthService) *AuthController {
	return &AuthController{authSvc: authSvc}
}

// Login 登录
// @Router /api/auth/login [post]
func (ctl *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "参数错误: "+err.Error())
		return
	}

	resp, err := ctl.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": err.Error(),
			})
			return
		}
		serverError(c, err)
		return
	}
	ok(c, resp)
}

// Refresh 刷新访问令牌
// @Router /api/auth/refresh [post]
func (ctl *AuthController) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "参数错误: "+err.Error())
		return
	}

	resp, err := ctl.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    401,
			"message": err.Error(),
		})
		return
	}
	ok(c, resp)
}

// Logout 登出
// @Router /api/auth/logout [post]
func (ctl *AuthController) Logout(c *gin.Context) {
	ctl.authSvc.Logout(c.GetString(middleware.CtxUserID))
	ok(c, nil)
}
