package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"adflow_dev_v1_202608/internal/api/dto"
	"adflow_dev_v1_202608/internal/model"
	"adflow_dev_v1_202608/internal/repository"
	"adflow_dev_v1_202608/pkg/logger"
)

// ==================== 常量 ====================

const (
	// autoGenAdSetCount 自动生成固定产出的广告组数量
	autoGenAdSetCount = 3

	// fallbackStockImage 图片生成失败时的兜底占位图
	fallbackStockImage = "https://cdn.adflow.dev/static/placeholder-creative.jpg"
)

// ==================== 依赖接口 ====================

// creativeGenerator 自动生成对生成能力的消费方定义
type creativeGenerator interface {
	GenerateImagesFromProduct(ctx context.Context, draftID int64, sourceURL, prompt string) ([]string, error)
	GenerateCopy(ctx context.Context, draftID int64, title, description, prompt string, count int) ([]dto.CopyCandidate, error)
}

// ==================== 服务 ====================

// AutoGenService 一次性自动生成编排
// 新草稿在满足触发条件时并发生成图片和文案，
// 然后把结果编排成固定数量的广告组整体替换现有集合。
// auto_gen_done 保证每份草稿只执行一次。
type AutoGenService struct {
	uow       *repository.CampaignUnitOfWork
	generator creativeGenerator
	hub       *ProgressHub
}

// NewAutoGenService 创建自动生成服务
func NewAutoGenService(uow *repository.CampaignUnitOfWork, generator creativeGenerator, hub *ProgressHub) *AutoGenService {
	return &AutoGenService{
		uow:       uow,
		generator: generator,
		hub:       hub,
	}
}

// ==================== 编排 ====================

// Run 对草稿执行一次自动生成
// 跳过条件（返回 Skipped=true，不报错）：
//   - 已执行过（auto_gen_done）
//   - 草稿没有商品来源 URL
//   - 用户已手工建过多个广告组
//   - 唯一的广告组已经配了图（说明用户已开始手工编辑）
func (s *AutoGenService) Run(ctx context.Context, draftID int64) (*dto.AutoGenerateResult, error) {
	draft, err := s.uow.Drafts.GetWithAdSets(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("草稿不存在")
	}

	if reason := skipReason(draft); reason != "" {
		return &dto.AutoGenerateResult{DraftID: draftID, Skipped: true, Reason: reason}, nil
	}

	s.notify(draftID, "autogen_started", 0, "开始生成创意")

	images, candidates := s.generateConcurrently(ctx, draft)

	// 两路独立降级：失败的一路用确定性兜底补齐
	if len(images) == 0 {
		images = []string{fallbackStockImage}
	}
	if len(candidates) == 0 {
		candidates = []dto.CopyCandidate{{
			Headline:    draft.Name,
			PrimaryText: fmt.Sprintf("了解 %s 的更多信息", draft.Name),
		}}
	}

	adSets := s.synthesizeAdSets(draft, images, candidates)

	if err := s.uow.AdSets.ReplaceAll(ctx, draftID, adSets); err != nil {
		return nil, fmt.Errorf("替换广告组失败: %v", err)
	}

	if err := s.uow.Drafts.UpdateFields(ctx, draftID, map[string]interface{}{
		"auto_gen_done":     true,
		"leading_ad_set_id": adSets[0].ID,
		"updated_at":        time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("更新草稿状态失败: %v", err)
	}

	ids := make([]string, len(adSets))
	for i := range adSets {
		ids[i] = adSets[i].ID
	}

	s.notify(draftID, "autogen_done", 100, "创意生成完成")

	return &dto.AutoGenerateResult{
		DraftID:    draftID,
		AdSetIDs:   ids,
		ImageCount: len(images),
		CopyCount:  len(candidates),
	}, nil
}

// skipReason 判定是否跳过，返回空串表示应执行
func skipReason(draft *model.CampaignDraft) string {
	if draft.AutoGenDone {
		return "已执行过自动生成"
	}
	if draft.ProductSourceURL == "" {
		return "草稿没有商品来源 URL"
	}
	if len(draft.AdSets) > 1 {
		return "已存在多个广告组"
	}
	if len(draft.AdSets) == 1 && draft.AdSets[0].HasImage() {
		return "广告组已配置创意图片"
	}
	return ""
}

// generateConcurrently 图片与文案两路并发，互不影响
// 任一路失败只记日志并返回空列表，由调用方降级
func (s *AutoGenService) generateConcurrently(ctx context.Context, draft *model.CampaignDraft) ([]string, []dto.CopyCandidate) {
	var (
		wg         sync.WaitGroup
		images     []string
		candidates []dto.CopyCandidate
	)

	wg.Add(2)

	go func() {
		defer wg.Done()
		urls, err := s.generator.GenerateImagesFromProduct(ctx, draft.ID, draft.ProductSourceURL, draft.MasterPrompt)
		if err != nil {
			logger.L().Warnf("草稿 %d 图片生成失败，使用兜底: %v", draft.ID, err)
			return
		}
		images = urls
		s.notify(draft.ID, "images_done", 50, fmt.Sprintf("图片生成完成，共 %d 张", len(urls)))
	}()

	go func() {
		defer wg.Done()
		list, err := s.generator.GenerateCopy(ctx, draft.ID, draft.Name, "", draft.MasterPrompt, autoGenAdSetCount)
		if err != nil {
			logger.L().Warnf("草稿 %d 文案生成失败，使用兜底: %v", draft.ID, err)
			return
		}
		candidates = list
		s.notify(draft.ID, "copy_done", 50, fmt.Sprintf("文案生成完成，共 %d 条", len(list)))
	}()

	wg.Wait()
	return images, candidates
}

// synthesizeAdSets 把生成结果编排成固定数量的广告组
// 素材按 i % len 轮转分配；定向从现有首个广告组继承
func (s *AutoGenService) synthesizeAdSets(draft *model.CampaignDraft, images []string, candidates []dto.CopyCandidate) []model.AdSet {
	var seed model.AdSet
	if len(draft.AdSets) > 0 {
		seed = draft.AdSets[0].CloneTargeting()
	} else {
		seed = model.AdSet{AgeMin: 18, AgeMax: 65, Gender: model.GenderAll, CallToAction: model.CTALearnMore}
	}

	destination := draft.ProductSourceURL
	if len(draft.AdSets) > 0 && draft.AdSets[0].DestinationURL != "" {
		destination = draft.AdSets[0].DestinationURL
	}

	adSets := make([]model.AdSet, autoGenAdSetCount)
	for i := 0; i < autoGenAdSetCount; i++ {
		c := candidates[i%len(candidates)]

		adSet := seed
		adSet.ID = uuid.NewString()
		adSet.DraftID = draft.ID
		adSet.Position = i
		adSet.Name = fmt.Sprintf("Ad Set %d", i+1)
		adSet.ImageURLs = datatypes.JSONSlice[string]{images[i%len(images)]}
		adSet.Headlines = datatypes.JSONSlice[string]{c.Headline}
		adSet.PrimaryTexts = datatypes.JSONSlice[string]{c.PrimaryText}
		adSet.DestinationURL = destination
		if adSet.CallToAction == "" {
			adSet.CallToAction = model.CTALearnMore
		}

		adSets[i] = adSet
	}
	return adSets
}

// notify 推送进度事件
func (s *AutoGenService) notify(draftID int64, stage string, progress int, message string) {
	if s.hub == nil {
		return
	}
	s.hub.Notify(draftID, dto.ProgressEvent{
		DraftID:  draftID,
		Stage:    stage,
		Progress: progress,
		Message:  message,
	})
}
