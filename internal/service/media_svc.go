package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"adflow_dev_v1_202608/internal/api/dto"
	"adflow_dev_v1_202608/internal/model"
	"adflow_dev_v1_202608/internal/repository"
	"adflow_dev_v1_202608/pkg/logger"
)

// maxUploadBytes 单个素材上传上限
const maxUploadBytes = 10 << 20

// ==================== 服务 ====================

// MediaService 素材生命周期管理
// 自托管素材（upload / generated 落库的）删除记录时必须释放存储对象，
// 释放失败的留给清理任务兜底
type MediaService struct {
	repo     repository.MediaAssetRepository
	storage  ObjectStorage
	basePath string
}

// NewMediaService 创建素材服务
func NewMediaService(repo repository.MediaAssetRepository, storage ObjectStorage, basePath string) *MediaService {
	return &MediaService{
		repo:     repo,
		storage:  storage,
		basePath: strings.Trim(basePath, "/"),
	}
}

// ==================== 上传 ====================

// Upload 上传 base64 编码的素材并托管到对象存储
func (s *MediaService) Upload(ctx context.Context, workspaceID string, req *dto.UploadMediaRequest) (*dto.MediaAssetVO, error) {
	data, err := base64.StdEncoding.DecodeString(req.Base64Data)
	if err != nil {
		return nil, fmt.Errorf("素材内容不是合法的 base64: %v", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("素材内容为空")
	}
	if len(data) > maxUploadBytes {
		return nil, fmt.Errorf("素材超过大小限制 (%d MB)", maxUploadBytes>>20)
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := s.objectKey(workspaceID, req.FileName)
	url, err := s.storage.Put(ctx, key, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("上传素材失败: %v", err)
	}

	asset := &model.MediaAsset{
		WorkspaceID: workspaceID,
		URL:         url,
		Type:        mediaTypeOf(contentType),
		DisplayName: displayName(req.DisplayName, req.FileName),
		Source:      model.MediaSourceUpload,
		StorageKey:  key,
	}

	// 图片记录尺寸，解码失败不阻塞上传
	if asset.Type == model.MediaTypeImage {
		if conf, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			asset.Width = conf.Width
			asset.Height = conf.Height
		}
	}

	if err := s.repo.Create(ctx, asset); err != nil {
		// 落库失败时回收已写入的对象，避免悬空
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			logger.L().Errorf("回收上传对象失败: %v", delErr)
		}
		return nil, fmt.Errorf("保存素材记录失败: %v", err)
	}

	vo := toMediaVO(asset)
	return &vo, nil
}

// Import 按外部 URL 登记素材，对象不托管
func (s *MediaService) Import(ctx context.Context, workspaceID string, req *dto.ImportMediaRequest) (*dto.MediaAssetVO, error) {
	if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
		return nil, fmt.Errorf("素材 URL 必须是 http(s) 地址")
	}

	mediaType := req.Type
	if mediaType == "" {
		mediaType = model.MediaTypeImage
	}

	asset := &model.MediaAsset{
		WorkspaceID: workspaceID,
		URL:         req.URL,
		Type:        mediaType,
		DisplayName: displayName(req.DisplayName, path.Base(req.URL)),
		Source:      model.MediaSourceImport,
	}

	if err := s.repo.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("保存素材记录失败: %v", err)
	}

	vo := toMediaVO(asset)
	return &vo, nil
}

// RegisterGenerated 把生成服务产出的 URL 批量登记为工作区素材
func (s *MediaService) RegisterGenerated(ctx context.Context, workspaceID string, urls []string) {
	for _, u := range urls {
		asset := &model.MediaAsset{
			WorkspaceID: workspaceID,
			URL:         u,
			Type:        model.MediaTypeImage,
			DisplayName: path.Base(u),
			Source:      model.MediaSourceGenerated,
		}
		if err := s.repo.Create(ctx, asset); err != nil {
			logger.L().Warnf("登记生成素材失败: %v", err)
		}
	}
}

// ==================== 查询 ====================

// List 工作区素材列表
func (s *MediaService) List(ctx context.Context, workspaceID string, limit int) ([]dto.MediaAssetVO, error) {
	assets, err := s.repo.ListByWorkspace(ctx, workspaceID, limit)
	if err != nil {
		return nil, err
	}

	result := make([]dto.MediaAssetVO, len(assets))
	for i := range assets {
		result[i] = toMediaVO(&assets[i])
	}
	return result, nil
}

// ==================== 删除 ====================

// Delete 删除素材记录并释放托管对象
// 对象释放失败不回滚记录删除，storage_key 保留给清理任务重试
func (s *MediaService) Delete(ctx context.Context, workspaceID string, id int64) error {
	asset, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("素材不存在")
	}
	if asset.WorkspaceID != workspaceID {
		return fmt.Errorf("素材不属于当前工作区")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("删除素材记录失败: %v", err)
	}

	if asset.OwnsStorage() {
		if err := s.storage.Delete(ctx, asset.StorageKey); err != nil {
			logger.L().Warnf("释放素材对象失败，留待清理任务: %v", err)
			return nil
		}
		if err := s.repo.ClearStorageKey(ctx, id); err != nil {
			logger.L().Warnf("清空 storage_key 失败: %v", err)
		}
	}
	return nil
}

// ReleaseOrphans 释放软删除后遗留的存储对象（清理任务调用）
// 返回成功释放的数量
func (s *MediaService) ReleaseOrphans(ctx context.Context, limit int) int {
	orphans, err := s.repo.FindOrphaned(ctx, limit)
	if err != nil {
		logger.L().Errorf("查找遗留素材失败: %v", err)
		return 0
	}

	released := 0
	for _, asset := range orphans {
		if err := s.storage.Delete(ctx, asset.StorageKey); err != nil {
			logger.L().Warnf("释放遗留对象 %s 失败: %v", asset.StorageKey, err)
			continue
		}
		if err := s.repo.ClearStorageKey(ctx, asset.ID); err != nil {
			logger.L().Warnf("清空 storage_key 失败: %v", err)
			continue
		}
		released++
	}
	return released
}

// ==================== 内部 ====================

// objectKey 生成对象存储 Key：basePath/workspaceID/日期/uuid.ext
func (s *MediaService) objectKey(workspaceID, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	if ext == "" {
		ext = ".bin"
	}

	parts := []string{}
	if s.basePath != "" {
		parts = append(parts, s.basePath)
	}
	parts = append(parts,
		workspaceID,
		time.Now().Format("200601"),
		uuid.NewString()+ext,
	)
	return strings.Join(parts, "/")
}

func mediaTypeOf(contentType string) string {
	if strings.HasPrefix(contentType, "video/") {
		return model.MediaTypeVideo
	}
	return model.MediaTypeImage
}

func displayName(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}

func toMediaVO(asset *model.MediaAsset) dto.MediaAssetVO {
	return dto.MediaAssetVO{
		ID:          asset.ID,
		URL:         asset.URL,
		Type:        asset.Type,
		DisplayName: asset.DisplayName,
		Source:      asset.Source,
		CreatedAt:   asset.CreatedAt.Format(time.RFC3339),
	}
}
