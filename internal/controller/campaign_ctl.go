package controller

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"adflow_dev_v1_202608/internal/api/dto"
	"adflow_dev_v1_202608/internal/middleware"
	"adflow_dev_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// CampaignController 草稿编辑与发布接口
type CampaignController struct {
	campaignSvc *service.CampaignService
	adSetSvc    *service.AdSetService
	autoGenSvc  *service.AutoGenService
	previewSvc  *service.PreviewService
	publishSvc  *service.PublishService
	hub         *service.ProgressHub
}

// NewCampaignController 创建草稿控制器
func NewCampaignController(
	campaignSvc *service.CampaignService,
	adSetSvc *service.AdSetService,
	autoGenSvc *service.AutoGenService,
	previewSvc *service.PreviewService,
	publishSvc *service.PublishService,
	hub *service.ProgressHub,
) *CampaignController {
	return &CampaignController{
		campaignSvc: campaignSvc,
		adSetSvc:    adSetSvc,
		autoGenSvc:  autoGenSvc,
		previewSvc:  previewSvc,
		publishSvc:  publishSvc,
		hub:         hub,
	}
}

// ==================== 草稿 ====================

// Create 创建草稿
// @Router /api/campaigns [post]
func (ctl *CampaignController) Create(c *gin.Context) {
	var req dto.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "参数错误: "+err.Error())
		return
	}

	workspaceID := c.GetString(middleware.CtxWorkspaceID)
	userID := c.GetString(middleware.CtxUserID)

	result, err := ctl.campaignSvc.CreateDraft(c.Request.Context(), workspaceID, userID, &req)
	if err != nil {
		serverError(c, err)
		return
	}
	ok(c, result)
}

// List 草稿列表
// @Router /api/campaigns [get]
func (ctl *CampaignController) List(c *gin.Context) {
	var req dto.ListCampaignsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "参数错误: "+err.Error())
		return
	}
	if req.WorkspaceID == "" {
		req.WorkspaceID = c.GetString(middleware.CtxWorkspaceID)
	}

	list, total, err := ctl.campaignSvc.ListDrafts(c.Request.Context(), &req)
	if err != nil {
		serverError(c, err)
		return
	}
	ok(c, gin.H{"list": list, "total": total})
}

// Detail 草稿详情
// @Router /api/campaigns/:id [get]
func (ctl *CampaignController) Detail(c *gin.Context) {
	draftID, okID := draftIDParam(c)
	if !okID {
		return
	}

	detail, err := ctl.campaignSvc.GetDetail(c.Request.Context(), draftID)
	if err != nil {
		notFound(c, err.Error())
		return
	}
	ok(c, detail)
}

// Update 更新系列级字段
// @Router /api/campaigns/:id [patch]
func (ctl *CampaignController) Update(c *gin.Context) {
	draftID, okID := draftIDParam(c)
	if !okID {
		return
	}

	var req dto.UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "参数错误: "+err.Error())
		return
	}

	if err := ctl.campaignSvc.UpdateCampaign(c.Request.Context(), draftID, &req); err != nil {
		if errors.Is(err, service.ErrDraftLocked) {
			conflict(c, err.Error())
			return
		}
		serverError(c, err)
		return
	}
	ok(c, nil)
}

// ==================== 广告组 ====================

// AddAdSet 新增广告组
// @Router /api/campaigns/:id/ad-sets [post]
func (ctl *CampaignController) AddAdSet(c *gin.Context) {
	draftID, okID := draftIDParam(c)
	if !okID {
		return
	}

	adSet, err := ctl.adSetSvc.AddAdSet(c.Request.Context(), draftID)
	if err != nil {
		if errors.Is(err, service.ErrDraftLocked) {
			conflict(c, err.Error())
			return
		}
		serverError(c, err)
		return
	}
	ok(c, adSet)
}

// UpdateAdSet 部分更新广告组
// @Router /api/campaigns/:id/ad-sets/:adSetId [patch]
func (ctl *CampaignController) UpdateAdSet(c *gin.Context) {
	draftID, okID := draftIDParam(c)
	if !okID {
		return
	}

	var req dto.UpdateAdSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "参数错误: "+err.Error())
		return
	}

	if err := ctl.adSetSvc.UpdateAdSet(c.Request.Context(), draftID, c.Param("adSetId"), &req); err != nil {
		serverError(c, err)
		return
	}
	ok(c, nil)
}

// DeleteAdSet 删除广告组
// @Router /api/campaigns/:id/ad-sets/:adSetId [delete]
func (ctl *CampaignController) DeleteAdSet(c *gin.Context) {
	draftID, okID := draftIDParam(c)
	if !okID {
		return
	}

	if err := ctl.adSetSvc.DeleteAdSet(c.Request.Context(), draftID, c.Param("adSetId")); err != nil {
		if errors.Is(err, service.ErrLastAdSet) {
			conflict(c, err.Error())
			return
		}
		serverError(c, err)
		return
	}
	ok(c, nil)
}

// SetLeading 指定代表广告组
// @Router /api/campaigns/:id/leading [put]
func (ctl *CampaignController) SetLeading(c *gin.Context) {
	draftID, okID := draftIDParam(c)
	if !okID {
		return
	}

	var req struct {
		AdSetID string `json:"ad_set_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "参数错误: "+err.Error())
		return
	}

	if err := ctl.adSetSvc.SetLeading(c.Request.Context(), draftID, req.AdSetID); err != nil {
		notFound(c, err.Error())
		return
	}
	ok(c, nil)
}

// ==================== 自动生成 ====================

// AutoGenerate 触发一次性自动生成
// @Router /api/campaigns/:id/auto-generate [post]
func (ctl *CampaignController) AutoGenerate(c *gin.Context) {
	draftID, okID := draftIDParam(c)
	if !okID {
		return
	}

	result, err := ctl.autoGenSvc.Run(c.Request.Context(), draftID)
	if err != nil {
		serverError(c, err)
		return
	}
	ok(c, result)
}

// Stream 订阅草稿进度（SSE）
// @Router /api/campaigns/:id/stream [get]
func (ctl *CampaignController) Stream(c *gin.Context) {
	draftID, okID := draftIDParam(c)
	if !okID {
		return
	}

	ch := ctl.hub.Subscribe(draftID)
	defer ctl.hub.Unsubscribe(draftID, ch)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case event, open := <-ch:
			if !open {
				return false
			}
			c.SSEvent("progress", event)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// ==================== 预览与发布 ====================

// Preview 渲染广告预览
// @Router /api/campaigns/:id/ad-sets/:adSetId/preview [post]
func (ctl *CampaignController) Preview(c *gin.Context) {
	if _, okID := draftIDParam(c); !okID {
		return
	}

	var req dto.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "参数错误: "+err.Error())
		return
	}

	result := ctl.previewSvc.Render(c.Request.Context(), c.Param("adSetId"), &req)
	ok(c, result)
}

// Publish 发布草稿下全部广告组
// @Router /api/campaigns/:id/publish [post]
func (ctl *CampaignController) Publish(c *gin.Context) {
	draftID, okID := draftIDParam(c)
	if !okID {
		return
	}

	sessionID := c.GetString(middleware.CtxSessionID)
	result, err := ctl.publishSvc.Publish(c.Request.Context(), sessionID, draftID)
	if err != nil {
		if errors.Is(err, service.ErrMissingContext) {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": err.Error(),
			})
			return
		}
		serverError(c, err)
		return
	}
	ok(c, result)
}

// PublishHistory 草稿的发布记录
// @Router /api/campaigns/:id/publish-logs [get]
func (ctl *CampaignController) PublishHistory(c *gin.Context) {
	draftID, okID := draftIDParam(c)
	if !okID {
		return
	}

	logs, err := ctl.publishSvc.History(c.Request.Context(), draftID)
	if err != nil {
		serverError(c, err)
		return
	}
	ok(c, logs)
}

// ==================== 辅助 ====================

func draftIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "草稿 ID 无效")
		return 0, false
	}
	return id, true
}
