package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"adflow_dev_v1_202608/internal/api/dto"
	"adflow_dev_v1_202608/internal/model"
	"adflow_dev_v1_202608/internal/repository"
)

// ==================== 错误定义 ====================

var (
	// ErrLastAdSet 删除最后一个广告组被拒绝，集合长度不允许小于 1
	ErrLastAdSet = errors.New("至少保留一个广告组")

	// ErrDraftLocked 发布中的草稿不允许编辑
	ErrDraftLocked = errors.New("草稿正在发布中，不允许编辑")
)

// ==================== 服务 ====================

// AdSetService 广告组变更服务
// 草稿聚合的唯一写入口，所有变更触发 updated_at 推进
type AdSetService struct {
	uow       *repository.CampaignUnitOfWork
	mediaRepo repository.MediaAssetRepository
	hub       *ProgressHub
}

// NewAdSetService 创建广告组服务
func NewAdSetService(uow *repository.CampaignUnitOfWork, mediaRepo repository.MediaAssetRepository, hub *ProgressHub) *AdSetService {
	return &AdSetService{
		uow:       uow,
		mediaRepo: mediaRepo,
		hub:       hub,
	}
}

// ==================== 新增 ====================

// AddAdSet 新增广告组
// 定向从首个广告组克隆，名称取顺延编号，
// 创意图片从素材池中选取第一张尚未被占用的（都被占用则退回第一张）
func (s *AdSetService) AddAdSet(ctx context.Context, draftID int64) (*model.AdSet, error) {
	draft, err := s.uow.Drafts.GetWithAdSets(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("草稿不存在")
	}
	if draft.Status == model.DraftStatusPublishing {
		return nil, ErrDraftLocked
	}
	if len(draft.AdSets) == 0 {
		return nil, fmt.Errorf("草稿缺少种子广告组")
	}

	first := draft.AdSets[0]
	adSet := first.CloneTargeting()
	adSet.ID = uuid.NewString()
	adSet.DraftID = draftID
	adSet.Position = len(draft.AdSets)
	adSet.Name = fmt.Sprintf("Ad Set %d", len(draft.AdSets)+1)
	adSet.DestinationURL = first.DestinationURL
	adSet.CallToAction = first.CallToAction

	if img := s.pickNextImage(ctx, draft); img != "" {
		adSet.ImageURLs = datatypes.JSONSlice[string]{img}
	}

	if err := s.uow.AdSets.Create(ctx, &adSet); err != nil {
		return nil, fmt.Errorf("创建广告组失败: %v", err)
	}

	s.touch(ctx, draftID, "ad_set_added")
	return &adSet, nil
}

// pickNextImage 从工作区素材池选取下一张未被占用的图片
func (s *AdSetService) pickNextImage(ctx context.Context, draft *model.CampaignDraft) string {
	if s.mediaRepo == nil {
		return ""
	}

	assets, err := s.mediaRepo.ListByWorkspace(ctx, draft.WorkspaceID, 0)
	if err != nil || len(assets) == 0 {
		return ""
	}

	used := make(map[string]struct{}, len(draft.AdSets))
	for i := range draft.AdSets {
		if img := draft.AdSets[i].FirstImage(); img != "" {
			used[img] = struct{}{}
		}
	}

	var firstImage string
	for _, asset := range assets {
		if asset.Type != model.MediaTypeImage {
			continue
		}
		if firstImage == "" {
			firstImage = asset.URL
		}
		if _, taken := used[asset.URL]; !taken {
			return asset.URL
		}
	}

	// 池子全部被占用，退回第一张
	return firstImage
}

// ==================== 更新 ====================

// UpdateAdSet 部分字段合并更新
// patch 中 nil 字段不参与合并；广告组不存在时按约定静默跳过
func (s *AdSetService) UpdateAdSet(ctx context.Context, draftID int64, adSetID string, req *dto.UpdateAdSetRequest) error {
	adSet, err := s.uow.AdSets.GetByID(ctx, adSetID)
	if err != nil || adSet.DraftID != draftID {
		// 约定：id 未命中时不报错，调用方按无事发生处理
		return nil
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Locations != nil {
		updates["locations"] = datatypes.JSONSlice[model.AudienceLocation](req.Locations)
	}
	if req.AgeMin != nil {
		updates["age_min"] = *req.AgeMin
	}
	if req.AgeMax != nil {
		updates["age_max"] = *req.AgeMax
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.Interests != nil {
		updates["interests"] = datatypes.JSONSlice[model.Interest](req.Interests)
	}
	if req.Headlines != nil {
		updates["headlines"] = datatypes.JSONSlice[string](req.Headlines)
	}
	if req.PrimaryTexts != nil {
		updates["primary_texts"] = datatypes.JSONSlice[string](req.PrimaryTexts)
	}
	if req.ImageURLs != nil {
		updates["image_urls"] = datatypes.JSONSlice[string](req.ImageURLs)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.DestinationURL != nil {
		updates["destination_url"] = *req.DestinationURL
	}
	if req.CallToAction != nil {
		updates["call_to_action"] = *req.CallToAction
	}

	if len(updates) == 0 {
		return nil
	}

	if err := s.uow.AdSets.UpdateFields(ctx, adSetID, updates); err != nil {
		return fmt.Errorf("更新广告组失败: %v", err)
	}

	s.touch(ctx, draftID, "ad_set_updated")
	return nil
}

// ==================== 删除 ====================

// DeleteAdSet 删除广告组
// 结构性不变式：集合长度不允许小于 1，删除最后一个被拒绝。
// 被删除的是 leading 时，重指到剩余的第一个广告组。
func (s *AdSetService) DeleteAdSet(ctx context.Context, draftID int64, adSetID string) error {
	draft, err := s.uow.Drafts.GetWithAdSets(ctx, draftID)
	if err != nil {
		return fmt.Errorf("草稿不存在")
	}

	target := draft.FindAdSet(adSetID)
	if target == nil {
		return fmt.Errorf("广告组不存在")
	}

	if len(draft.AdSets) <= 1 {
		return ErrLastAdSet
	}

	if err := s.uow.AdSets.Delete(ctx, adSetID); err != nil {
		return fmt.Errorf("删除广告组失败: %v", err)
	}

	// 重排剩余广告组顺序
	pos := 0
	var newLeading string
	for i := range draft.AdSets {
		if draft.AdSets[i].ID == adSetID {
			continue
		}
		if newLeading == "" {
			newLeading = draft.AdSets[i].ID
		}
		if draft.AdSets[i].Position != pos {
			_ = s.uow.AdSets.UpdateFields(ctx, draft.AdSets[i].ID, map[string]interface{}{"position": pos})
		}
		pos++
	}

	// leading 指针悬空时重指到第一个剩余广告组
	if draft.LeadingAdSetID == adSetID {
		if err := s.uow.Drafts.UpdateFields(ctx, draftID, map[string]interface{}{"leading_ad_set_id": newLeading}); err != nil {
			return fmt.Errorf("更新代表广告组失败: %v", err)
		}
	}

	s.touch(ctx, draftID, "ad_set_deleted")
	return nil
}

// ==================== 代表广告组 ====================

// SetLeading 指定代表广告组（用于发布确认摘要展示）
func (s *AdSetService) SetLeading(ctx context.Context, draftID int64, adSetID string) error {
	adSet, err := s.uow.AdSets.GetByID(ctx, adSetID)
	if err != nil || adSet.DraftID != draftID {
		return fmt.Errorf("广告组不存在")
	}

	return s.uow.Drafts.UpdateFields(ctx, draftID, map[string]interface{}{
		"leading_ad_set_id": adSetID,
	})
}

// ==================== 内部 ====================

// touch 推进草稿 updated_at 并广播变更事件，驱动下游预览刷新
func (s *AdSetService) touch(ctx context.Context, draftID int64, stage string) {
	_ = s.uow.Drafts.UpdateFields(ctx, draftID, map[string]interface{}{"updated_at": time.Now()})

	if s.hub != nil {
		s.hub.Notify(draftID, dto.ProgressEvent{
			DraftID: draftID,
			Stage:   stage,
		})
	}
}
