package repository

import (
	"context"

	"gorm.io/gorm"

	"adflow_dev_v1_202608/internal/model"
)

// ==================== 仓储接口 ====================

// MediaAssetRepository 素材仓储接口
type MediaAssetRepository interface {
	Create(ctx context.Context, asset *model.MediaAsset) error
	GetByID(ctx context.Context, id int64) (*model.MediaAsset, error)
	ListByWorkspace(ctx context.Context, workspaceID string, limit int) ([]model.MediaAsset, error)
	Delete(ctx context.Context, id int64) error
	FindOrphaned(ctx context.Context, limit int) ([]*model.MediaAsset, error)
	ClearStorageKey(ctx context.Context, id int64) error
}

// ==================== 实现 ====================

type mediaAssetRepo struct {
	db *gorm.DB
}

// NewMediaAssetRepository 创建素材仓储
func NewMediaAssetRepository(db *gorm.DB) MediaAssetRepository {
	return &mediaAssetRepo{db: db}
}

func (r *mediaAssetRepo) Create(ctx context.Context, asset *model.MediaAsset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

func (r *mediaAssetRepo) GetByID(ctx context.Context, id int64) (*model.MediaAsset, error) {
	var asset model.MediaAsset
	if err := r.db.WithContext(ctx).First(&asset, id).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *mediaAssetRepo) ListByWorkspace(ctx context.Context, workspaceID string, limit int) ([]model.MediaAsset, error) {
	var list []model.MediaAsset
	query := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&list).Error
	return list, err
}

func (r *mediaAssetRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.MediaAsset{}, id).Error
}

// ClearStorageKey 对象释放完成后清空 storage_key（含软删除记录）
func (r *mediaAssetRepo) ClearStorageKey(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Unscoped().Model(&model.MediaAsset{}).
		Where("id = ?", id).Update("storage_key", "").Error
}

// FindOrphaned 查找软删除后存储对象尚未释放的素材（清理任务用）
func (r *mediaAssetRepo) FindOrphaned(ctx context.Context, limit int) ([]*model.MediaAsset, error) {
	var list []*model.MediaAsset
	query := r.db.WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL AND storage_key <> ''")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&list).Error
	return list, err
}
