package repository

import (
	"context"

	"gorm.io/gorm"

	"adflow_dev_v1_202608/internal/model"
)

// ==================== 仓储接口 ====================

// CampaignDraftRepository 草稿仓储接口
type CampaignDraftRepository interface {
	Create(ctx context.Context, draft *model.CampaignDraft) error
	GetByID(ctx context.Context, id int64) (*model.CampaignDraft, error)
	GetWithAdSets(ctx context.Context, id int64) (*model.CampaignDraft, error)
	Update(ctx context.Context, draft *model.CampaignDraft) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter DraftFilter) ([]model.CampaignDraft, int64, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	FindByStatus(ctx context.Context, status string, limit int) ([]*model.CampaignDraft, error)
}

// AdSetRepository 广告组仓储接口
type AdSetRepository interface {
	Create(ctx context.Context, adSet *model.AdSet) error
	CreateBatch(ctx context.Context, adSets []model.AdSet) error
	GetByID(ctx context.Context, id string) (*model.AdSet, error)
	GetByDraftID(ctx context.Context, draftID int64) ([]model.AdSet, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	CountByDraftID(ctx context.Context, draftID int64) (int64, error)
	ReplaceAll(ctx context.Context, draftID int64, adSets []model.AdSet) error
}

// ==================== 过滤条件 ====================

// DraftFilter 草稿过滤条件
type DraftFilter struct {
	WorkspaceID string
	UserID      string
	Status      string
	Page        int
	PageSize    int
}

// ==================== CampaignDraft 仓储实现 ====================

type campaignDraftRepo struct {
	db *gorm.DB
}

// NewCampaignDraftRepository 创建草稿仓储
func NewCampaignDraftRepository(db *gorm.DB) CampaignDraftRepository {
	return &campaignDraftRepo{db: db}
}

func (r *campaignDraftRepo) Create(ctx context.Context, draft *model.CampaignDraft) error {
	return r.db.WithContext(ctx).Create(draft).Error
}

func (r *campaignDraftRepo) GetByID(ctx context.Context, id int64) (*model.CampaignDraft, error) {
	var draft model.CampaignDraft
	if err := r.db.WithContext(ctx).First(&draft, id).Error; err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *campaignDraftRepo) GetWithAdSets(ctx context.Context, id int64) (*model.CampaignDraft, error) {
	var draft model.CampaignDraft
	err := r.db.WithContext(ctx).
		Preload("AdSets", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&draft, id).Error
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *campaignDraftRepo) Update(ctx context.Context, draft *model.CampaignDraft) error {
	return r.db.WithContext(ctx).Save(draft).Error
}

func (r *campaignDraftRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.CampaignDraft{}).Where("id = ?", id).Updates(fields).Error
}

func (r *campaignDraftRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.CampaignDraft{}, id).Error
}

func (r *campaignDraftRepo) List(ctx context.Context, filter DraftFilter) ([]model.CampaignDraft, int64, error) {
	var drafts []model.CampaignDraft
	var total int64

	query := r.db.WithContext(ctx).Model(&model.CampaignDraft{})

	if filter.WorkspaceID != "" {
		query = query.Where("workspace_id = ?", filter.WorkspaceID)
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	offset := (filter.Page - 1) * filter.PageSize
	if err := query.Order("created_at DESC").Limit(filter.PageSize).Offset(offset).Find(&drafts).Error; err != nil {
		return nil, 0, err
	}

	return drafts, total, nil
}

func (r *campaignDraftRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).Model(&model.CampaignDraft{}).
		Where("id = ?", id).Update("status", status).Error
}

func (r *campaignDraftRepo) FindByStatus(ctx context.Context, status string, limit int) ([]*model.CampaignDraft, error) {
	var drafts []*model.CampaignDraft
	query := r.db.WithContext(ctx).Where("status = ?", status).Order("updated_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&drafts).Error; err != nil {
		return nil, err
	}
	return drafts, nil
}

// ==================== AdSet 仓储实现 ====================

type adSetRepo struct {
	db *gorm.DB
}

// NewAdSetRepository 创建广告组仓储
func NewAdSetRepository(db *gorm.DB) AdSetRepository {
	return &adSetRepo{db: db}
}

func (r *adSetRepo) Create(ctx context.Context, adSet *model.AdSet) error {
	return r.db.WithContext(ctx).Create(adSet).Error
}

func (r *adSetRepo) CreateBatch(ctx context.Context, adSets []model.AdSet) error {
	if len(adSets) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&adSets).Error
}

func (r *adSetRepo) GetByID(ctx context.Context, id string) (*model.AdSet, error) {
	var adSet model.AdSet
	if err := r.db.WithContext(ctx).First(&adSet, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &adSet, nil
}

func (r *adSetRepo) GetByDraftID(ctx context.Context, draftID int64) ([]model.AdSet, error) {
	var adSets []model.AdSet
	err := r.db.WithContext(ctx).
		Where("draft_id = ?", draftID).
		Order("position ASC").
		Find(&adSets).Error
	return adSets, err
}

func (r *adSetRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.AdSet{}).Where("id = ?", id).Updates(fields).Error
}

func (r *adSetRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.AdSet{}, "id = ?", id).Error
}

func (r *adSetRepo) CountByDraftID(ctx context.Context, draftID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.AdSet{}).
		Where("draft_id = ?", draftID).Count(&count).Error
	return count, err
}

// ReplaceAll 整体替换草稿下的广告组（自动生成用，事务内删旧建新）
func (r *adSetRepo) ReplaceAll(ctx context.Context, draftID int64, adSets []model.AdSet) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("draft_id = ?", draftID).Delete(&model.AdSet{}).Error; err != nil {
			return err
		}
		if len(adSets) == 0 {
			return nil
		}
		return tx.Create(&adSets).Error
	})
}

// ==================== 工作单元 ====================

// CampaignUnitOfWork 草稿相关仓储聚合
type CampaignUnitOfWork struct {
	Drafts CampaignDraftRepository
	AdSets AdSetRepository
}

// NewCampaignUnitOfWork 创建工作单元
func NewCampaignUnitOfWork(db *gorm.DB) *CampaignUnitOfWork {
	return &CampaignUnitOfWork{
		Drafts: NewCampaignDraftRepository(db),
		AdSets: NewAdSetRepository(db),
	}
}
