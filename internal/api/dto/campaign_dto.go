package dto

import (
	"time"

	"adflow_dev_v1_202608/internal/model"
)

// ==================== 请求 DTO ====================

// CreateCampaignRequest 创建草稿请求
type CreateCampaignRequest struct {
	Name             string  `json:"name"`
	Objective        string  `json:"objective"`
	DailyBudget      int64   `json:"daily_budget" binding:"required,min=1"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	MasterPrompt     string  `json:"master_prompt"`
	ProductSourceURL string  `json:"product_source_url"`
	DestinationURL   string  `json:"destination_url"`
	ImagePool        []string `json:"image_pool"` // 可选创意图片池
}

// UpdateCampaignRequest 更新系列级字段（显式 patch，nil 表示不更新）
type UpdateCampaignRequest struct {
	Name           *string                `json:"name,omitempty"`
	Objective      *string                `json:"objective,omitempty"`
	DailyBudget    *int64                 `json:"daily_budget,omitempty"`
	StartDate      *string                `json:"start_date,omitempty"`
	EndDate        *string                `json:"end_date,omitempty"`
	MasterPrompt   *string                `json:"master_prompt,omitempty"`
	LeadFormConfig map[string]interface{} `json:"lead_form_config,omitempty"`
}

// UpdateAdSetRequest 广告组 patch（nil 字段不参与合并）
type UpdateAdSetRequest struct {
	Name           *string                  `json:"name,omitempty"`
	Locations      []model.AudienceLocation `json:"locations,omitempty"`
	AgeMin         *int                     `json:"age_min,omitempty"`
	AgeMax         *int                     `json:"age_max,omitempty"`
	Gender         *string                  `json:"gender,omitempty"`
	Interests      []model.Interest         `json:"interests,omitempty"`
	Headlines      []string                 `json:"headlines,omitempty"`
	PrimaryTexts   []string                 `json:"primary_texts,omitempty"`
	ImageURLs      []string                 `json:"image_urls,omitempty"`
	Description    *string                  `json:"description,omitempty"`
	DestinationURL *string                  `json:"destination_url,omitempty"`
	CallToAction   *string                  `json:"call_to_action,omitempty"`
}

// ListCampaignsRequest 草稿列表请求
type ListCampaignsRequest struct {
	WorkspaceID string `form:"workspace_id"`
	Status      string `form:"status"`
	Page        int    `form:"page,default=1"`
	PageSize    int    `form:"page_size,default=20"`
}

// ==================== 响应 DTO ====================

// CampaignListItem 列表响应项
type CampaignListItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Objective   string `json:"objective"`
	DailyBudget int64  `json:"daily_budget"`
	Status      string `json:"status"`
	AdSetCount  int    `json:"ad_set_count"`
	CreatedAt   string `json:"created_at"`
}

// CampaignDetailResponse 草稿详情
type CampaignDetailResponse struct {
	ID               int64                  `json:"id"`
	WorkspaceID      string                 `json:"workspace_id"`
	Name             string                 `json:"name"`
	Objective        string                 `json:"objective"`
	DailyBudget      int64                  `json:"daily_budget"`
	StartDate        string                 `json:"start_date"`
	EndDate          string                 `json:"end_date"`
	MasterPrompt     string                 `json:"master_prompt"`
	ProductSourceURL string                 `json:"product_source_url"`
	LeadFormConfig   map[string]interface{} `json:"lead_form_config,omitempty"`
	LeadingAdSetID   string                 `json:"leading_ad_set_id"`
	AutoGenDone      bool                   `json:"auto_gen_done"`
	Status           string                 `json:"status"`
	AdSets           []AdSetVO              `json:"ad_sets"`
	CreatedAt        string                 `json:"created_at"`
	UpdatedAt        string                 `json:"updated_at"`
}

// AdSetVO 广告组视图对象
type AdSetVO struct {
	ID             string                   `json:"id"`
	Name           string                   `json:"name"`
	Position       int                      `json:"position"`
	Locations      []model.AudienceLocation `json:"locations"`
	AgeMin         int                      `json:"age_min"`
	AgeMax         int                      `json:"age_max"`
	Gender         string                   `json:"gender"`
	Interests      []model.Interest         `json:"interests"`
	Headlines      []string                 `json:"headlines"`
	PrimaryTexts   []string                 `json:"primary_texts"`
	ImageURLs      []string                 `json:"image_urls"`
	Description    string                   `json:"description"`
	DestinationURL string                   `json:"destination_url"`
	CallToAction   string                   `json:"call_to_action"`
}

// CreateCampaignResult 创建结果
type CreateCampaignResult struct {
	DraftID   int64     `json:"draft_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ==================== 进度事件 ====================

// ProgressEvent SSE 进度事件
type ProgressEvent struct {
	DraftID  int64       `json:"draft_id"`
	Stage    string      `json:"stage"` // fetching, generating, assembling, publishing, done, failed
	Progress int         `json:"progress"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data,omitempty"`
}
