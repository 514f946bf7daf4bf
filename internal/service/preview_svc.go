package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"adflow_dev_v1_202608/internal/api/dto"
	"adflow_dev_v1_202608/pkg/logger"
	"adflow_dev_v1_202608/pkg/utils"
)

// ==================== 配置 ====================

// PreviewConfig 预览服务配置
type PreviewConfig struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	DebounceDelay time.Duration // 编辑抖动合并窗口，默认 800ms
}

// ==================== 服务 ====================

// PreviewService 广告预览服务
// 编辑期的高频预览请求先经过防抖窗口合并，再按创意字段签名去重，
// 只有内容真正变化时才向预览后端发请求。预览失败不向上抛错，
// 归类为可展示的失败种类。
type PreviewService struct {
	cfg       *PreviewConfig
	client    *resty.Client
	debouncer *utils.Debouncer

	mu         sync.Mutex
	lastSent   map[string]string            // key -> 最近一次成功发送的签名
	lastResult map[string]dto.PreviewResult // key -> 最近一次成功结果
	waiters    map[string]*previewWaiter    // key -> 当前等待中的调用
}

type previewWaiter struct {
	ch chan *dto.PreviewResult
}

// NewPreviewService 创建预览服务
func NewPreviewService(cfg *PreviewConfig) *PreviewService {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.DebounceDelay == 0 {
		cfg.DebounceDelay = 800 * time.Millisecond
	}

	return &PreviewService{
		cfg:        cfg,
		client:     utils.NewAPIClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout),
		debouncer:  utils.NewDebouncer(),
		lastSent:   make(map[string]string),
		lastResult: make(map[string]dto.PreviewResult),
		waiters:    make(map[string]*previewWaiter),
	}
}

// SetClient 注入自定义客户端（测试用）
func (s *PreviewService) SetClient(client *resty.Client) {
	s.client = client
}

// ==================== 渲染 ====================

// Render 渲染广告预览
// key 标识一条编辑流（通常是广告组 ID）。同 key 的连续调用在防抖
// 窗口内互相取代，被取代的调用返回 Debounced=true；签名与上次
// 成功发送一致且未强制时直接返回缓存（Deduped=true）。
func (s *PreviewService) Render(ctx context.Context, key string, req *dto.PreviewRequest) *dto.PreviewResult {
	sig := previewSignature(req)

	s.mu.Lock()
	if !req.Force && s.lastSent[key] == sig && sig != "" {
		cached := s.lastResult[key]
		s.mu.Unlock()
		cached.Deduped = true
		return &cached
	}

	// 取代同 key 上一个还在等待的调用
	if prev, ok := s.waiters[key]; ok {
		select {
		case prev.ch <- &dto.PreviewResult{Debounced: true}:
		default:
		}
	}
	w := &previewWaiter{ch: make(chan *dto.PreviewResult, 1)}
	s.waiters[key] = w
	s.mu.Unlock()

	s.debouncer.Schedule(key, s.cfg.DebounceDelay, func() {
		res := s.fetch(context.Background(), req)

		s.mu.Lock()
		if res.ErrorKind == dto.PreviewErrorNone {
			s.lastSent[key] = sig
			s.lastResult[key] = *res
		}
		if s.waiters[key] == w {
			delete(s.waiters, key)
		}
		s.mu.Unlock()

		select {
		case w.ch <- res:
		default:
		}
	})

	select {
	case res := <-w.ch:
		return res
	case <-ctx.Done():
		s.debouncer.CancelKey(key)
		s.mu.Lock()
		if s.waiters[key] == w {
			delete(s.waiters, key)
		}
		s.mu.Unlock()
		return &dto.PreviewResult{Debounced: true}
	}
}

// previewSignature 创意字段签名，字段顺序固定
func previewSignature(req *dto.PreviewRequest) string {
	h := sha256.Sum256([]byte(strings.Join([]string{
		req.Headline,
		req.PrimaryText,
		req.ImageURL,
		req.CallToAction,
		req.AdFormat,
	}, "|")))
	return hex.EncodeToString(h[:])
}

// ==================== 请求 ====================

// fetch 实际向预览后端发请求
func (s *PreviewService) fetch(ctx context.Context, req *dto.PreviewRequest) *dto.PreviewResult {
	image := req.ImageURL
	if image != "" && !utils.IsDataURI(image) {
		// 尽力统一为 JPEG base64，失败时降级为原始 URL
		normalized, err := utils.NormalizeToJPEGBase64(ctx, image)
		if err != nil {
			logger.L().Warnf("预览图片归一化失败，降级为原始 URL: %v", err)
		} else {
			image = normalized
		}
	}

	format := req.AdFormat
	if format == "" {
		format = "MOBILE_FEED_STANDARD"
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"headline":       req.Headline,
			"primary_text":   req.PrimaryText,
			"image":          image,
			"call_to_action": req.CallToAction,
			"ad_format":      format,
		}).
		Post("/adpreviews")

	if err != nil {
		return classifyPreviewError(0, err.Error())
	}
	if resp.StatusCode() >= 400 {
		return classifyPreviewError(resp.StatusCode(), extractErrorText(resp.Body(), resp.Status()))
	}

	var body struct {
		IframeSrc   string `json:"iframe_src"`
		PreviewHTML string `json:"preview_html"`
		Body        string `json:"body"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return classifyPreviewError(resp.StatusCode(), fmt.Sprintf("解析响应失败: %v", err))
	}

	result := &dto.PreviewResult{
		IframeSrc:   body.IframeSrc,
		PreviewHTML: body.PreviewHTML,
	}
	if result.PreviewHTML == "" {
		result.PreviewHTML = body.Body
	}
	if result.IframeSrc == "" {
		result.IframeSrc = extractIframeSrc(result.PreviewHTML)
	}
	if result.IframeSrc == "" && result.PreviewHTML == "" {
		return classifyPreviewError(resp.StatusCode(), "响应中没有预览内容")
	}
	return result
}

// extractIframeSrc 从预览 HTML 片段中抠出 iframe 的 src
func extractIframeSrc(html string) string {
	idx := strings.Index(html, "src=\"")
	if idx < 0 {
		return ""
	}
	rest := html[idx+len("src=\""):]
	end := strings.Index(rest, "\"")
	if end < 0 {
		return ""
	}
	return strings.ReplaceAll(rest[:end], "&amp;", "&")
}

// classifyPreviewError 按状态码和错误文案归类预览失败
func classifyPreviewError(status int, message string) *dto.PreviewResult {
	kind := dto.PreviewErrorUnavailable
	lower := strings.ToLower(message)

	switch {
	case status == 429 || strings.Contains(lower, "rate") || strings.Contains(lower, "limit"):
		kind = dto.PreviewErrorRateLimited
	case status == 401 || status == 403 ||
		strings.Contains(lower, "session") || strings.Contains(lower, "login") || strings.Contains(lower, "expired"):
		kind = dto.PreviewErrorSessionExpired
	}

	return &dto.PreviewResult{
		ErrorKind: kind,
		Message:   message,
	}
}
