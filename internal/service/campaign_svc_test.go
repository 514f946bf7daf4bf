package service

import (
	"context"
	"testing"

	"adflow_dev_v1_202608/internal/api/dto"
	"adflow_dev_v1_202608/internal/model"
)

func TestCreateDraftSeedsFirstAdSet(t *testing.T) {
	uow, _ := newTestUow(t)
	svc := NewCampaignService(uow)
	ctx := context.Background()

	result, err := svc.CreateDraft(ctx, "ws-1", "user-1", &dto.CreateCampaignRequest{
		Name:           "夏季促销",
		DailyBudget:    5000,
		DestinationURL: "https://example.com/summer",
		ImagePool:      []string{"https://cdn.com/p1.jpg", "https://cdn.com/p2.jpg"},
	})
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	draft, err := uow.Drafts.GetWithAdSets(ctx, result.DraftID)
	if err != nil {
		t.Fatalf("读草稿失败: %v", err)
	}

	// 集合不变式：新草稿至少有一个广告组
	if len(draft.AdSets) != 1 {
		t.Fatalf("新草稿应有 1 个种子广告组，实际 %d", len(draft.AdSets))
	}

	seed := draft.AdSets[0]
	if seed.Name != "Ad Set 1" {
		t.Errorf("种子广告组名称错误: %q", seed.Name)
	}
	if seed.AgeMin != 18 || seed.AgeMax != 65 || seed.Gender != model.GenderAll {
		t.Errorf("种子广告组应取默认定向: %+v", seed)
	}
	if seed.FirstImage() != "https://cdn.com/p1.jpg" {
		t.Errorf("种子广告组应取图片池第一张，实际 %q", seed.FirstImage())
	}
	if seed.DestinationURL != "https://example.com/summer" {
		t.Errorf("落地页应透传: %q", seed.DestinationURL)
	}

	if draft.LeadingAdSetID != seed.ID {
		t.Errorf("leading 应指向种子广告组，实际 %q", draft.LeadingAdSetID)
	}
	if draft.Objective != model.ObjectiveTraffic {
		t.Errorf("目标应取默认值，实际 %q", draft.Objective)
	}
	if draft.Status != model.DraftStatusEditing {
		t.Errorf("新草稿状态应为 editing，实际 %q", draft.Status)
	}
}

func TestUpdateCampaignPartialPatch(t *testing.T) {
	uow, _ := newTestUow(t)
	svc := NewCampaignService(uow)
	ctx := context.Background()

	draftID, _ := seedDraft(t, uow, 1)

	budget := int64(9000)
	if err := svc.UpdateCampaign(ctx, draftID, &dto.UpdateCampaignRequest{
		DailyBudget: &budget,
	}); err != nil {
		t.Fatalf("更新失败: %v", err)
	}

	draft, _ := uow.Drafts.GetByID(ctx, draftID)
	if draft.DailyBudget != 9000 {
		t.Errorf("预算应更新为 9000，实际 %d", draft.DailyBudget)
	}
	if draft.Name != "测试系列" {
		t.Errorf("未提供字段不应变化: %q", draft.Name)
	}
}

func TestUpdateCampaignLockedDuringPublish(t *testing.T) {
	uow, _ := newTestUow(t)
	svc := NewCampaignService(uow)
	ctx := context.Background()

	draftID, _ := seedDraft(t, uow, 1)
	_ = uow.Drafts.UpdateStatus(ctx, draftID, model.DraftStatusPublishing)

	name := "新名字"
	err := svc.UpdateCampaign(ctx, draftID, &dto.UpdateCampaignRequest{Name: &name})
	if err != ErrDraftLocked {
		t.Errorf("发布中的草稿应拒绝编辑，实际 %v", err)
	}
}

func TestListDraftsFiltersByWorkspace(t *testing.T) {
	uow, _ := newTestUow(t)
	svc := NewCampaignService(uow)
	ctx := context.Background()

	seedDraft(t, uow, 1)
	seedDraft(t, uow, 1)

	other := &model.CampaignDraft{WorkspaceID: "ws-other", UserID: "user-2", Name: "别家的"}
	if err := uow.Drafts.Create(ctx, other); err != nil {
		t.Fatalf("建草稿失败: %v", err)
	}

	list, total, err := svc.ListDrafts(ctx, &dto.ListCampaignsRequest{WorkspaceID: "ws-1"})
	if err != nil {
		t.Fatalf("列表失败: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Errorf("应只返回 ws-1 的 2 份草稿，实际 total=%d len=%d", total, len(list))
	}
	for _, item := range list {
		if item.AdSetCount != 1 {
			t.Errorf("广告组计数错误: %+v", item)
		}
	}
}
