package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"adflow_dev_v1_202608/internal/api/dto"
	"adflow_dev_v1_202608/internal/middleware"
	"adflow_dev_v1_202608/internal/service"
)

// MediaController 素材接口
type MediaController struct {
	mediaSvc *service.MediaService
	genSvc   *service.GenerationService
}

// NewMediaController 创建素材控制器
func NewMediaController(mediaSvc *service.MediaService, genSvc *service.GenerationService) *MediaController {
	return &MediaController{mediaSvc: mediaSvc, genSvc: genSvc}
}

// Upload 上传素材
// @Router /api/media [post]
func (ctl *MediaController) Upload(c *gin.Context) {
	var req dto.UploadMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "参数错误: "+err.Error())
		return
	}

	vo, err := ctl.mediaSvc.Upload(c.Request.Context(), c.GetString(middleware.CtxWorkspaceID), &req)
	if err != nil {
		serverError(c, err)
		return
	}
	ok(c, vo)
}

// Import 按 URL 导入素材
// @Router /api/media/import [post]
func (ctl *MediaController) Import(c *gin.Context) {
	var req dto.ImportMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "参数错误: "+err.Error())
		return
	}

	vo, err := ctl.mediaSvc.Import(c.Request.Context(), c.GetString(middleware.CtxWorkspaceID), &req)
	if err != nil {
		serverError(c, err)
		return
	}
	ok(c, vo)
}

// Generate 按参考图生成新素材并登记到工作区素材池
// @Router /api/media/generate [post]
func (ctl *MediaController) Generate(c *gin.Context) {
	var req dto.GenerateMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "参数错误: "+err.Error())
		return
	}

	urls, err := ctl.genSvc.GenerateImageFromReference(c.Request.Context(), req.DraftID, req.Prompt, req.AspectRatio, req.FileURI)
	if err != nil {
		serverError(c, err)
		return
	}

	workspaceID := c.GetString(middleware.CtxWorkspaceID)
	ctl.mediaSvc.RegisterGenerated(c.Request.Context(), workspaceID, urls)
	ok(c, gin.H{"urls": urls})
}

// List 素材列表
// @Router /api/media [get]
func (ctl *MediaController) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	list, err := ctl.mediaSvc.List(c.Request.Context(), c.GetString(middleware.CtxWorkspaceID), limit)
	if err != nil {
		serverError(c, err)
		return
	}
	ok(c, list)
}

// Delete 删除素材
// @Router /api/media/:id [delete]
func (ctl *MediaController) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "素材 ID 无效")
		return
	}

	if err := ctl.mediaSvc.Delete(c.Request.Context(), c.GetString(middleware.CtxWorkspaceID), id); err != nil {
		serverError(c, err)
		return
	}
	ok(c, nil)
}
