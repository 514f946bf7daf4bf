package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"adflow_dev_v1_202608/internal/controller"
	"adflow_dev_v1_202608/internal/middleware"
)

// Controllers 路由依赖的全部控制器
type Controllers struct {
	Auth      *controller.AuthController
	Campaign  *controller.CampaignController
	Media     *controller.MediaController
	Workspace *controller.WorkspaceController
}

// Setup 注册全部路由
func Setup(debug bool, jwtSecret string, ctls *Controllers) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// 无需认证
	api.POST("/auth/login", ctls.Auth.Login)
	api.POST("/auth/refresh", ctls.Auth.Refresh)

	// 需认证
	auth := api.Group("")
	auth.Use(middleware.JWTAuth(jwtSecret))
	{
		auth.POST("/auth/logout", ctls.Auth.Logout)

		auth.GET("/workspaces", ctls.Workspace.List)
		auth.POST("/workspaces/select", ctls.Workspace.Select)

		auth.GET("/media", ctls.Media.List)
		auth.POST("/media", ctls.Media.Upload)
		auth.POST("/media/import", ctls.Media.Import)
		auth.POST("/media/generate", ctls.Media.Generate)
		auth.DELETE("/media/:id", ctls.Media.Delete)

		campaigns := auth.Group("/campaigns")
		{
			campaigns.POST("", ctls.Campaign.Create)
			campaigns.GET("", ctls.Campaign.List)
			campaigns.GET("/:id", ctls.Campaign.Detail)
			campaigns.PATCH("/:id", ctls.Campaign.Update)

			campaigns.POST("/:id/ad-sets", ctls.Campaign.AddAdSet)
			campaigns.PATCH("/:id/ad-sets/:adSetId", ctls.Campaign.UpdateAdSet)
			campaigns.DELETE("/:id/ad-sets/:adSetId", ctls.Campaign.DeleteAdSet)
			campaigns.PUT("/:id/leading", ctls.Campaign.SetLeading)

			campaigns.POST("/:id/auto-generate", ctls.Campaign.AutoGenerate)
			campaigns.GET("/:id/stream", ctls.Campaign.Stream)
			campaigns.POST("/:id/ad-sets/:adSetId/preview", ctls.Campaign.Preview)

			// 发布加 10 秒冷却，防止重复点击打穿网关
			publishLimiter := middleware.NewCooldownLimiter(10 * time.Second)
			campaigns.POST("/:id/publish", middleware.Cooldown(publishLimiter), ctls.Campaign.Publish)
			campaigns.GET("/:id/publish-logs", ctls.Campaign.PublishHistory)
		}
	}

	return r
}
