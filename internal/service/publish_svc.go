package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"adflow_dev_v1_202608/internal/api/dto"
	"adflow_dev_v1_202608/internal/model"
	"adflow_dev_v1_202608/internal/repository"
	"adflow_dev_v1_202608/pkg/logger"
	"adflow_dev_v1_202608/pkg/utils"
)

// ==================== 配置 ====================

// PublishConfig 发布网关配置
type PublishConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// ==================== 依赖接口 ====================

// contextResolver 发布对会话上下文解析能力的消费方定义
type contextResolver interface {
	ResolveContext(sessionID string) (workspaceID, userID string, err error)
}

// ==================== 服务 ====================

// PublishService 发布编排
// 逐个广告组串行发布，单个失败不中断整体流程，
// 最终聚合成功/失败计数并落发布记录
type PublishService struct {
	uow      *repository.CampaignUnitOfWork
	logRepo  repository.PublishLogRepository
	resolver contextResolver
	hub      *ProgressHub
	client   *resty.Client
}

// NewPublishService 创建发布服务
func NewPublishService(cfg *PublishConfig, uow *repository.CampaignUnitOfWork, logRepo repository.PublishLogRepository, resolver contextResolver, hub *ProgressHub) *PublishService {
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	return &PublishService{
		uow:      uow,
		logRepo:  logRepo,
		resolver: resolver,
		hub:      hub,
		client:   utils.NewAPIClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout),
	}
}

// SetClient 注入自定义客户端（测试用）
func (s *PublishService) SetClient(client *resty.Client) {
	s.client = client
}

// ==================== 发布 ====================

// Publish 发布草稿下的全部广告组
// 会话上下文缺失时在发起任何网络调用之前失败；
// 单个广告组失败记入 Failures 并继续下一个
func (s *PublishService) Publish(ctx context.Context, sessionID string, draftID int64) (*dto.PublishResult, error) {
	workspaceID, userID, err := s.resolver.ResolveContext(sessionID)
	if err != nil {
		return nil, err
	}

	draft, err := s.uow.Drafts.GetWithAdSets(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("草稿不存在")
	}
	if draft.Status == model.DraftStatusPublishing {
		return nil, fmt.Errorf("草稿正在发布中")
	}
	if len(draft.AdSets) == 0 {
		return nil, fmt.Errorf("草稿没有可发布的广告组")
	}

	if err := s.uow.Drafts.UpdateStatus(ctx, draftID, model.DraftStatusPublishing); err != nil {
		return nil, fmt.Errorf("锁定草稿失败: %v", err)
	}

	result := &dto.PublishResult{DraftID: draftID}
	total := len(draft.AdSets)

	for i := range draft.AdSets {
		adSet := &draft.AdSets[i]

		s.notify(draftID, "publishing", (i*100)/total, fmt.Sprintf("正在发布 %s (%d/%d)", adSet.Name, i+1, total))

		if err := s.publishOne(ctx, draft, adSet, workspaceID, userID, total); err != nil {
			result.FailCount++
			result.Failures = append(result.Failures, dto.AdSetFailure{
				AdSetID:   adSet.ID,
				AdSetName: adSet.Name,
				Message:   err.Error(),
			})
			logger.L().Warnf("广告组 %s 发布失败: %v", adSet.ID, err)
			continue
		}
		result.SuccessCount++
	}

	finalStatus := model.DraftStatusPublished
	switch {
	case result.AllFailed():
		finalStatus = model.DraftStatusFailed
		result.Message = "全部广告组发布失败"
	case result.Partial():
		finalStatus = model.DraftStatusPartial
		result.Message = fmt.Sprintf("部分成功：%d 个成功，%d 个失败", result.SuccessCount, result.FailCount)
	default:
		result.Message = fmt.Sprintf("全部 %d 个广告组发布成功", result.SuccessCount)
	}

	if err := s.uow.Drafts.UpdateStatus(ctx, draftID, finalStatus); err != nil {
		logger.L().Errorf("更新草稿最终状态失败: %v", err)
	}

	s.notify(draftID, "publish_done", 100, result.Message)
	return result, nil
}

// publishOne 发布单个广告组并落记录
func (s *PublishService) publishOne(ctx context.Context, draft *model.CampaignDraft, adSet *model.AdSet, workspaceID, userID string, total int) error {
	start := time.Now()

	campaignID, err := s.doPublish(ctx, draft, adSet, workspaceID, userID, total)

	entry := &model.PublishLog{
		WorkspaceID:        workspaceID,
		DraftID:            draft.ID,
		AdSetID:            adSet.ID,
		AdSetName:          adSet.Name,
		Status:             model.PublishStatusSuccess,
		PlatformCampaignID: campaignID,
		DurationMs:         time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.Status = model.PublishStatusFailed
		entry.ErrorMessage = err.Error()
	}

	if s.logRepo != nil {
		if logErr := s.logRepo.Create(ctx, entry); logErr != nil {
			logger.L().Warnf("记录发布日志失败: %v", logErr)
		}
	}
	return err
}

// doPublish 构建载荷并调用发布网关，成功时返回平台系列 ID
func (s *PublishService) doPublish(ctx context.Context, draft *model.CampaignDraft, adSet *model.AdSet, workspaceID, userID string, total int) (string, error) {
	if err := adSet.CanPublish(); err != nil {
		return "", err
	}

	payload := s.buildPayload(draft, adSet, workspaceID, userID, total)

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post("/publish_v2")
	if err != nil {
		return "", fmt.Errorf("请求发布网关失败: %v", err)
	}

	var pr dto.PublishResponse
	if jsonErr := json.Unmarshal(resp.Body(), &pr); jsonErr != nil {
		if resp.StatusCode() >= 400 {
			return "", fmt.Errorf("发布网关错误 [%d]: %s", resp.StatusCode(), resp.Status())
		}
		return "", fmt.Errorf("解析发布响应失败: %v", jsonErr)
	}

	if resp.StatusCode() >= 400 || !pr.OK {
		return "", fmt.Errorf("%s", pr.ErrorText(resp.Status()))
	}

	return pr.CampaignID, nil
}

// History 草稿的发布记录（按时间倒序）
func (s *PublishService) History(ctx context.Context, draftID int64) ([]model.PublishLog, error) {
	if s.logRepo == nil {
		return nil, nil
	}
	return s.logRepo.ListByDraft(ctx, draftID)
}

// buildPayload 把草稿 + 广告组映射为发布网关契约
// 预算在广告组间平均分摊；带坐标的地理定向走自定义圆，
// 其余退化为国家码；性别映射为平台编码
func (s *PublishService) buildPayload(draft *model.CampaignDraft, adSet *model.AdSet, workspaceID, userID string, total int) *dto.PublishPayload {
	image := adSet.FirstImage()
	if image != "" && !utils.IsDataURI(image) {
		normalized, err := utils.NormalizeToJPEGBase64(context.Background(), image)
		if err != nil {
			// 转换失败时降级为原始 URL，由网关侧自行拉取
			logger.L().Warnf("发布图片归一化失败，降级为原始 URL: %v", err)
		} else {
			image = normalized
		}
	}

	budget := draft.DailyBudget
	if total > 1 {
		budget = draft.DailyBudget / int64(total)
	}

	return &dto.PublishPayload{
		WorkspaceID:  workspaceID,
		UserID:       userID,
		CampaignName: fmt.Sprintf("%s - %s", draft.Name, adSet.Name),
		Objective:    draft.Objective,
		DailyBudget:  budget,
		StartDate:    draft.StartDate,
		EndDate:      draft.EndDate,
		Creative: dto.PayloadCreative{
			Headline:       adSet.FirstHeadline(),
			PrimaryText:    adSet.FirstPrimaryText(),
			Description:    adSet.Description,
			Image:          image,
			DestinationURL: adSet.DestinationURL,
			CallToAction:   adSet.CallToAction,
		},
		Targeting:  buildTargeting(adSet),
		Automation: true,
	}
}

// buildTargeting 定向映射
func buildTargeting(adSet *model.AdSet) dto.PayloadTargeting {
	t := dto.PayloadTargeting{
		AgeMin:  adSet.AgeMin,
		AgeMax:  adSet.AgeMax,
		Genders: mapGenders(adSet.Gender),
	}

	seen := make(map[string]struct{})
	for i := range adSet.Locations {
		loc := &adSet.Locations[i]
		if !loc.Included {
			continue
		}

		if loc.HasCoordinates() {
			radius := loc.RadiusM
			if radius <= 0 || radius > model.MaxLocationRadiusMeters {
				radius = model.MaxLocationRadiusMeters
			}
			t.CustomLocations = append(t.CustomLocations, dto.CustomLocation{
				Lat:      *loc.Lat,
				Lon:      *loc.Lon,
				RadiusKm: float64(radius) / 1000,
			})
			continue
		}

		if loc.CountryCode != "" {
			if _, ok := seen[loc.CountryCode]; !ok {
				seen[loc.CountryCode] = struct{}{}
				t.Countries = append(t.Countries, loc.CountryCode)
			}
		}
	}

	for _, interest := range adSet.Interests {
		t.Interests = append(t.Interests, dto.PayloadInterest{ID: interest.ID, Name: interest.Name})
	}

	return t
}

// mapGenders 性别定向映射为平台编码：全部=[] 男=[1] 女=[2]
func mapGenders(gender string) []int {
	switch gender {
	case model.GenderMale:
		return []int{1}
	case model.GenderFemale:
		return []int{2}
	default:
		return []int{}
	}
}

// notify 推送发布进度
func (s *PublishService) notify(draftID int64, stage string, progress int, message string) {
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
