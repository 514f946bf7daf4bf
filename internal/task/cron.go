package task

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"adflow_dev_v1_202608/internal/model"
	"adflow_dev_v1_202608/internal/repository"
	"adflow_dev_v1_202608/internal/service"
	"adflow_dev_v1_202608/pkg/logger"
)

// ==================== 定时任务 ====================

// Scheduler 后台定时任务
type Scheduler struct {
	cron     *cron.Cron
	drafts   repository.CampaignDraftRepository
	mediaSvc *service.MediaService
}

// NewScheduler 创建调度器
func NewScheduler(drafts repository.CampaignDraftRepository, mediaSvc *service.MediaService) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		drafts:   drafts,
		mediaSvc: mediaSvc,
	}
}

// Start 注册并启动全部任务
func (s *Scheduler) Start() error {
	// 每 10 分钟回收卡死的发布中草稿
	if _, err := s.cron.AddFunc("*/10 * * * *", s.recoverStuckDrafts); err != nil {
		return err
	}

	// 每天凌晨 3 点释放遗留存储对象
	if _, err := s.cron.AddFunc("0 3 * * *", s.cleanupOrphanedMedia); err != nil {
		return err
	}

	s.cron.Start()
	logger.L().Info("后台定时任务已启动")
	return nil
}

// Stop 停止调度
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// recoverStuckDrafts 发布流程崩溃后草稿会停在 publishing，
// 超过 30 分钟未更新的视为卡死，回退到 editing 允许重新发布
func (s *Scheduler) recoverStuckDrafts() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	drafts, err := s.drafts.FindByStatus(ctx, model.DraftStatusPublishing, 100)
	if err != nil {
		logger.L().Errorf("查找发布中草稿失败: %v", err)
		return
	}

	recovered := 0
	deadline := time.Now().Add(-30 * time.Minute)
	for _, draft := range drafts {
		if draft.UpdatedAt.After(deadline) {
			continue
		}
		if err := s.drafts.UpdateStatus(ctx, draft.ID, model.DraftStatusEditing); err != nil {
			logger.L().Warnf("回收草稿 %d 失败: %v", draft.ID, err)
			continue
		}
		recovered++
	}

	if recovered > 0 {
		logger.L().Infof("回收卡死草稿 %d 份", recovered)
	}
}

// cleanupOrphanedMedia 释放删除记录后仍占用存储的对象
func (s *Scheduler) cleanupOrphanedMedia() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	released := s.mediaSvc.ReleaseOrphans(ctx, 200)
	if released > 0 {
		logger.L().Infof("释放遗留存储对象 %d 个", released)
	}
}
