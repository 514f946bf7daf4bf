package repository

import (
	"context"

	"gorm.io/gorm"

	"adflow_dev_v1_202608/internal/model"
)

// ==================== 仓储接口 ====================

// PublishLogRepository 发布记录仓储接口
type PublishLogRepository interface {
	Create(ctx context.Context, entry *model.PublishLog) error
	ListByDraft(ctx context.Context, draftID int64) ([]model.PublishLog, error)
}

// AICallLogRepository 生成调用记录仓储接口
type AICallLogRepository interface {
	Create(ctx context.Context, entry *model.AICallLog) error
	ListByDraft(ctx context.Context, draftID int64) ([]model.AICallLog, error)
}

// ==================== PublishLog 实现 ====================

type publishLogRepo struct {
	db *gorm.DB
}

// NewPublishLogRepository 创建发布记录仓储
func NewPublishLogRepository(db *gorm.DB) PublishLogRepository {
	return &publishLogRepo{db: db}
}

func (r *publishLogRepo) Create(ctx context.Context, entry *model.PublishLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *publishLogRepo) ListByDraft(ctx context.Context, draftID int64) ([]model.PublishLog, error) {
	var list []model.PublishLog
	err := r.db.WithContext(ctx).
		Where("draft_id = ?", draftID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// ==================== AICallLog 实现 ====================

type aiCallLogRepo struct {
	db *gorm.DB
}

// NewAICallLogRepository 创建生成调用记录仓储
func NewAICallLogRepository(db *gorm.DB) AICallLogRepository {
	return &aiCallLogRepo{db: db}
}

func (r *aiCallLogRepo) Create(ctx context.Context, entry *model.AICallLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *aiCallLogRepo) ListByDraft(ctx context.Context, draftID int64) ([]model.AICallLog, error) {
	var list []model.AICallLog
	err := r.db.WithContext(ctx).
		Where("draft_id = ?", draftID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}
