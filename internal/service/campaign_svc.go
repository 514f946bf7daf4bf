package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"adflow_dev_v1_202608/internal/api/dto"
	"adflow_dev_v1_202608/internal/model"
	"adflow_dev_v1_202608/internal/repository"
)

// ==================== 服务 ====================

// CampaignService 草稿生命周期服务
type CampaignService struct {
	uow *repository.CampaignUnitOfWork
}

// NewCampaignService 创建草稿服务
func NewCampaignService(uow *repository.CampaignUnitOfWork) *CampaignService {
	return &CampaignService{uow: uow}
}

// ==================== 创建 ====================

// CreateDraft 创建草稿并播种第一个广告组
// 集合不变式要求草稿自诞生起至少持有一个广告组
func (s *CampaignService) CreateDraft(ctx context.Context, workspaceID, userID string, req *dto.CreateCampaignRequest) (*dto.CreateCampaignResult, error) {
	objective := req.Objective
	if objective == "" {
		objective = model.ObjectiveTraffic
	}

	name := req.Name
	if name == "" {
		name = "未命名系列 " + time.Now().Format("0102-1504")
	}

	draft := &model.CampaignDraft{
		WorkspaceID:      workspaceID,
		UserID:           userID,
		Name:             name,
		Objective:        objective,
		DailyBudget:      req.DailyBudget,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		MasterPrompt:     req.MasterPrompt,
		ProductSourceURL: req.ProductSourceURL,
		Status:           model.DraftStatusEditing,
	}

	if err := s.uow.Drafts.Create(ctx, draft); err != nil {
		return nil, fmt.Errorf("创建草稿失败: %v", err)
	}

	seed := model.AdSet{
		ID:             uuid.NewString(),
		DraftID:        draft.ID,
		Position:       0,
		Name:           "Ad Set 1",
		AgeMin:         18,
		AgeMax:         65,
		Gender:         model.GenderAll,
		DestinationURL: req.DestinationURL,
		CallToAction:   model.CTALearnMore,
	}
	if len(req.ImagePool) > 0 {
		seed.ImageURLs = datatypes.JSONSlice[string]{req.ImagePool[0]}
	}

	if err := s.uow.AdSets.Create(ctx, &seed); err != nil {
		return nil, fmt.Errorf("创建种子广告组失败: %v", err)
	}

	if err := s.uow.Drafts.UpdateFields(ctx, draft.ID, map[string]interface{}{
		"leading_ad_set_id": seed.ID,
	}); err != nil {
		return nil, fmt.Errorf("初始化代表广告组失败: %v", err)
	}

	return &dto.CreateCampaignResult{
		DraftID:   draft.ID,
		Status:    draft.Status,
		CreatedAt: draft.CreatedAt,
	}, nil
}

// ==================== 查询 ====================

// ListDrafts 草稿列表
func (s *CampaignService) ListDrafts(ctx context.Context, req *dto.ListCampaignsRequest) ([]dto.CampaignListItem, int64, error) {
	drafts, total, err := s.uow.Drafts.List(ctx, repository.DraftFilter{
		WorkspaceID: req.WorkspaceID,
		Status:      req.Status,
		Page:        req.Page,
		PageSize:    req.PageSize,
	})
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.CampaignListItem, len(drafts))
	for i, d := range drafts {
		count, _ := s.uow.AdSets.CountByDraftID(ctx, d.ID)
		result[i] = dto.CampaignListItem{
			ID:          d.ID,
			Name:        d.Name,
			Objective:   d.Objective,
			DailyBudget: d.DailyBudget,
			Status:      d.Status,
			AdSetCount:  int(count),
			CreatedAt:   d.CreatedAt.Format(time.RFC3339),
		}
	}

	return result, total, nil
}

// GetDetail 草稿详情
func (s *CampaignService) GetDetail(ctx context.Context, draftID int64) (*dto.CampaignDetailResponse, error) {
	draft, err := s.uow.Drafts.GetWithAdSets(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("草稿不存在")
	}

	adSets := make([]dto.AdSetVO, len(draft.AdSets))
	for i := range draft.AdSets {
		adSets[i] = toAdSetVO(&draft.AdSets[i])
	}

	return &dto.CampaignDetailResponse{
		ID:               draft.ID,
		WorkspaceID:      draft.WorkspaceID,
		Name:             draft.Name,
		Objective:        draft.Objective,
		DailyBudget:      draft.DailyBudget,
		StartDate:        draft.StartDate,
		EndDate:          draft.EndDate,
		MasterPrompt:     draft.MasterPrompt,
		ProductSourceURL: draft.ProductSourceURL,
		LeadFormConfig:   map[string]interface{}(draft.LeadFormConfig),
		LeadingAdSetID:   draft.LeadingAdSetID,
		AutoGenDone:      draft.AutoGenDone,
		Status:           draft.Status,
		AdSets:           adSets,
		CreatedAt:        draft.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        draft.UpdatedAt.Format(time.RFC3339),
	}, nil
}

// toAdSetVO 广告组模型转视图对象
func toAdSetVO(a *model.AdSet) dto.AdSetVO {
	return dto.AdSetVO{
		ID:             a.ID,
		Name:           a.Name,
		Position:       a.Position,
		Locations:      []model.AudienceLocation(a.Locations),
		AgeMin:         a.AgeMin,
		AgeMax:         a.AgeMax,
		Gender:         a.Gender,
		Interests:      []model.Interest(a.Interests),
		Headlines:      []string(a.Headlines),
		PrimaryTexts:   []string(a.PrimaryTexts),
		ImageURLs:      []string(a.ImageURLs),
		Description:    a.Description,
		DestinationURL: a.DestinationURL,
		CallToAction:   a.CallToAction,
	}
}

// ==================== 更新 ====================

// UpdateCampaign 更新系列级字段（显式 patch 合并）
func (s *CampaignService) UpdateCampaign(ctx context.Context, draftID int64, req *dto.UpdateCampaignRequest) error {
	draft, err := s.uow.Drafts.GetByID(ctx, draftID)
	if err != nil {
		return fmt.Errorf("草稿不存在")
	}
	if draft.Status == model.DraftStatusPublishing {
		return ErrDraftLocked
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Objective != nil {
		updates["objective"] = *req.Objective
	}
	if req.DailyBudget != nil {
		updates["daily_budget"] = *req.DailyBudget
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		updates["end_date"] = *req.EndDate
	}
	if req.MasterPrompt != nil {
		updates["master_prompt"] = *req.MasterPrompt
	}
	if req.LeadFormConfig != nil {
		updates["lead_form_config"] = datatypes.JSONMap(req.LeadFormConfig)
	}

	if len(updates) == 0 {
		return nil
	}

	return s.uow.Drafts.UpdateFields(ctx, draftID, updates)
}
