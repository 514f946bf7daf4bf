package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"adflow_dev_v1_202608/internal/api/dto"
	"adflow_dev_v1_202608/internal/model"
	"adflow_dev_v1_202608/internal/repository"
	"adflow_dev_v1_202608/pkg/logger"
	"adflow_dev_v1_202608/pkg/utils"
)

// ==================== 配置 ====================

// GenerationConfig 生成服务配置
type GenerationConfig struct {
	BaseURL      string
	APIKey       string
	MediaBaseURL string        // 裸文件名补全基础路径
	ModelID      string        // 图片生成模型
	Timeout      time.Duration // 整体超时，默认 180s
}

// ==================== 服务 ====================

// GenerationService 创意生成服务（图片 + 文案）
type GenerationService struct {
	Config      *GenerationConfig
	client      *resty.Client
	normalizer  *CreativeNormalizer
	callLogRepo repository.AICallLogRepository
}

// NewGenerationService 创建生成服务
func NewGenerationService(cfg *GenerationConfig, callLogRepo repository.AICallLogRepository) *GenerationService {
	if cfg.Timeout == 0 {
		cfg.Timeout = 180 * time.Second
	}
	if cfg.ModelID == "" {
		cfg.ModelID = "creative-v2"
	}

	return &GenerationService{
		Config:      cfg,
		client:      utils.NewAPIClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout),
		normalizer:  NewCreativeNormalizer(cfg.MediaBaseURL),
		callLogRepo: callLogRepo,
	}
}

// SetClient 注入自定义客户端（测试用）
func (s *GenerationService) SetClient(client *resty.Client) {
	s.client = client
}

// ==================== 图片生成 ====================

// GenerateImagesFromProduct 按商品链接生成创意图片
// POST /generate-from-prodlink
func (s *GenerationService) GenerateImagesFromProduct(ctx context.Context, draftID int64, sourceURL, prompt string) ([]string, error) {
	if sourceURL == "" {
		return nil, fmt.Errorf("商品来源 URL 不能为空")
	}

	start := time.Now()

	reqBody := map[string]interface{}{
		"product": map[string]interface{}{
			"source_urls": []string{sourceURL},
		},
		"prompt":         prompt,
		"model_id":       s.Config.ModelID,
		"export_resizes": []string{"1:1", "9:16"},
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(reqBody).
		Post("/generate-from-prodlink")

	urls, err := s.handleImageResponse(resp, err)
	s.logCall(ctx, draftID, model.AICallTypeImage, len(urls), start, err)
	return urls, err
}

// GenerateImageFromReference 按参考图生成创意图片
// POST /generate-from-image (multipart)
func (s *GenerationService) GenerateImageFromReference(ctx context.Context, draftID int64, prompt, aspectRatio, fileURI string) ([]string, error) {
	if prompt == "" {
		return nil, fmt.Errorf("提示词不能为空")
	}
	if aspectRatio == "" {
		aspectRatio = "1:1"
	}

	start := time.Now()

	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"prompt":       prompt,
			"aspect_ratio": aspectRatio,
			"file_uri":     fileURI,
		}).
		Post("/generate-from-image")

	urls, err := s.handleImageResponse(resp, err)
	s.logCall(ctx, draftID, model.AICallTypeImage, len(urls), start, err)
	return urls, err
}

// handleImageResponse 统一处理图片生成响应
func (s *GenerationService) handleImageResponse(resp *resty.Response, err error) ([]string, error) {
	if err != nil {
		return nil, fmt.Errorf("请求失败: %v", err)
	}
	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("生成服务错误 [%d]: %s", resp.StatusCode(), extractErrorText(resp.Body(), resp.Status()))
	}

	// 先尝试 prodlink 专有形状 items[].images[]，再交给通用归一化
	var payload interface{}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("解析响应失败: %v", err)
	}

	if urls := extractItemImages(payload); len(urls) > 0 {
		return urls, nil
	}

	urls := s.normalizer.NormalizeToURLs(payload)
	if len(urls) == 0 {
		return nil, fmt.Errorf("响应中未找到图片")
	}
	return urls, nil
}

// extractItemImages 形状: { "items": [ { "images": [ "...", ... ] } ] }
func extractItemImages(payload interface{}) []string {
	m, ok := payload.(map[string]interface{})
	if !ok {
		return nil
	}
	items, ok := m["items"].([]interface{})
	if !ok {
		return nil
	}

	var urls []string
	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		images, ok := entry["images"].([]interface{})
		if !ok {
			continue
		}
		for _, img := range images {
			if s, ok := img.(string); ok && s != "" {
				urls = append(urls, s)
			}
		}
	}
	return dedupeURLs(urls)
}

// ==================== 文案生成 ====================

// GenerateCopy 生成标题/正文候选
// POST /generate-copy
func (s *GenerationService) GenerateCopy(ctx context.Context, draftID int64, title, description, prompt string, count int) ([]dto.CopyCandidate, error) {
	if count <= 0 {
		count = 3
	}

	start := time.Now()

	reqBody := map[string]interface{}{
		"product": map[string]interface{}{
			"title":       title,
			"description": description,
		},
		"prompt": prompt,
		"count":  count,
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(reqBody).
		Post("/generate-copy")

	if err != nil {
		s.logCall(ctx, draftID, model.AICallTypeText, 0, start, err)
		return nil, fmt.Errorf("请求失败: %v", err)
	}
	if resp.StatusCode() >= 400 {
		err = fmt.Errorf("生成服务错误 [%d]: %s", resp.StatusCode(), extractErrorText(resp.Body(), resp.Status()))
		s.logCall(ctx, draftID, model.AICallTypeText, 0, start, err)
		return nil, err
	}

	var copyResp struct {
		Candidates []dto.CopyCandidate `json:"candidates"`
	}
	if err := json.Unmarshal(resp.Body(), &copyResp); err != nil {
		s.logCall(ctx, draftID, model.AICallTypeText, 0, start, err)
		return nil, fmt.Errorf("解析响应失败: %v", err)
	}

	// 过滤掉标题正文都为空的候选
	candidates := make([]dto.CopyCandidate, 0, len(copyResp.Candidates))
	for _, c := range copyResp.Candidates {
		if c.Headline == "" && c.PrimaryText == "" {
			continue
		}
		candidates = append(candidates, c)
	}

	s.logCall(ctx, draftID, model.AICallTypeText, len(candidates), start, nil)
	return candidates, nil
}

// ==================== 工具函数 ====================

// extractErrorText 从响应体按优先级提取错误文案 error > detail > message
func extractErrorText(body []byte, fallback string) string {
	var e struct {
		Error   string `json:"error"`
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		if e.Error != "" {
			return e.Error
		}
		if e.Detail != "" {
			return e.Detail
		}
		if e.Message != "" {
			return e.Message
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" && len(s) < 512 {
		return s
	}
	return fallback
}

// logCall 记录生成调用，仓储未注入时跳过
func (s *GenerationService) logCall(ctx context.Context, draftID int64, callType string, itemCount int, start time.Time, callErr error) {
	if s.callLogRepo == nil {
		return
	}

	entry := &model.AICallLog{
		DraftID:    draftID,
		CallType:   callType,
		ModelID:    s.Config.ModelID,
		ItemCount:  itemCount,
		DurationMs: time.Since(start).Milliseconds(),
		Status:     model.AICallStatusSuccess,
	}
	if callErr != nil {
		entry.Status = model.AICallStatusFailed
		entry.ErrorMessage = callErr.Error()
	}

	if err := s.callLogRepo.Create(ctx, entry); err != nil {
		logger.L().Warnf("记录生成调用失败: %v", err)
	}
}
