package service

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/datatypes"

	"adflow_dev_v1_202608/internal/api/dto"
	"adflow_dev_v1_202608/internal/model"
	"adflow_dev_v1_202608/internal/repository"
)

// mockGenerator 函数字段式生成服务桩
type mockGenerator struct {
	imagesFn func(ctx context.Context, draftID int64, sourceURL, prompt string) ([]string, error)
	copyFn   func(ctx context.Context, draftID int64, title, description, prompt string, count int) ([]dto.CopyCandidate, error)
}

func (m *mockGenerator) GenerateImagesFromProduct(ctx context.Context, draftID int64, sourceURL, prompt string) ([]string, error) {
	if m.imagesFn == nil {
		return nil, fmt.Errorf("未配置")
	}
	return m.imagesFn(ctx, draftID, sourceURL, prompt)
}

func (m *mockGenerator) GenerateCopy(ctx context.Context, draftID int64, title, description, prompt string, count int) ([]dto.CopyCandidate, error) {
	if m.copyFn == nil {
		return nil, fmt.Errorf("未配置")
	}
	return m.copyFn(ctx, draftID, title, description, prompt, count)
}

// seedAutoGenDraft 带商品来源 URL、单个无图广告组的草稿
func seedAutoGenDraft(t *testing.T, uow *repository.CampaignUnitOfWork) int64 {
	t.Helper()
	draftID, _ := seedDraft(t, uow, 1)

	if err := uow.Drafts.UpdateFields(context.Background(), draftID, map[string]interface{}{
		"product_source_url": "https://shop.example.com/item/1",
		"master_prompt":      "突出夏季清凉感",
	}); err != nil {
		t.Fatalf("更新草稿失败: %v", err)
	}
	return draftID
}

func TestAutoGenSynthesizesThreeAdSets(t *testing.T) {
	uow, _ := newTestUow(t)
	ctx := context.Background()
	draftID := seedAutoGenDraft(t, uow)

	gen := &mockGenerator{
		imagesFn: func(context.Context, int64, string, string) ([]string, error) {
			return []string{"https://cdn.com/g1.jpg", "https://cdn.com/g2.jpg"}, nil
		},
		copyFn: func(context.Context, int64, string, string, string, int) ([]dto.CopyCandidate, error) {
			return []dto.CopyCandidate{
				{Headline: "标题A", PrimaryText: "正文A"},
				{Headline: "标题B", PrimaryText: "正文B"},
				{Headline: "标题C", PrimaryText: "正文C"},
			}, nil
		},
	}

	svc := NewAutoGenService(uow, gen, nil)
	result, err := svc.Run(ctx, draftID)
	if err != nil {
		t.Fatalf("自动生成失败: %v", err)
	}
	if result.Skipped {
		t.Fatalf("不应跳过: %s", result.Reason)
	}
	if len(result.AdSetIDs) != 3 {
		t.Fatalf("应产出 3 个广告组，实际 %d", len(result.AdSetIDs))
	}

	draft, _ := uow.Drafts.GetWithAdSets(ctx, draftID)
	if len(draft.AdSets) != 3 {
		t.Fatalf("库中应有 3 个广告组，实际 %d", len(draft.AdSets))
	}

	// 素材轮转：2 张图分给 3 个广告组 → g1, g2, g1
	wantImages := []string{"https://cdn.com/g1.jpg", "https://cdn.com/g2.jpg", "https://cdn.com/g1.jpg"}
	wantHeadlines := []string{"标题A", "标题B", "标题C"}
	for i, a := range draft.AdSets {
		if a.FirstImage() != wantImages[i] {
			t.Errorf("广告组 %d 图片应为 %q，实际 %q", i, wantImages[i], a.FirstImage())
		}
		if a.FirstHeadline() != wantHeadlines[i] {
			t.Errorf("广告组 %d 标题应为 %q，实际 %q", i, wantHeadlines[i], a.FirstHeadline())
		}
		if a.Position != i {
			t.Errorf("广告组 %d position 错误: %d", i, a.Position)
		}
		// 定向从种子广告组继承
		if a.AgeMin != 25 || a.Gender != model.GenderFemale {
			t.Errorf("广告组 %d 定向应继承种子: %+v", i, a)
		}
	}

	if !draft.AutoGenDone {
		t.Error("auto_gen_done 应置位")
	}
	if draft.LeadingAdSetID != draft.AdSets[0].ID {
		t.Errorf("leading 应指向第一个广告组，实际 %q", draft.LeadingAdSetID)
	}
}

func TestAutoGenRunsOnlyOnce(t *testing.T) {
	uow, _ := newTestUow(t)
	ctx := context.Background()
	draftID := seedAutoGenDraft(t, uow)

	calls := 0
	gen := &mockGenerator{
		imagesFn: func(context.Context, int64, string, string) ([]string, error) {
			calls++
			return []string{"https://cdn.com/g.jpg"}, nil
		},
		copyFn: func(context.Context, int64, string, string, string, int) ([]dto.CopyCandidate, error) {
			return []dto.CopyCandidate{{Headline: "标题", PrimaryText: "正文"}}, nil
		},
	}

	svc := NewAutoGenService(uow, gen, nil)
	if _, err := svc.Run(ctx, draftID); err != nil {
		t.Fatalf("首次执行失败: %v", err)
	}

	result, err := svc.Run(ctx, draftID)
	if err != nil {
		t.Fatalf("二次执行不应报错: %v", err)
	}
	if !result.Skipped {
		t.Error("二次执行应跳过")
	}
	if calls != 1 {
		t.Errorf("生成只应调用一次，实际 %d", calls)
	}
}

func TestAutoGenSkipConditions(t *testing.T) {
	uow, _ := newTestUow(t)
	ctx := context.Background()
	svc := NewAutoGenService(uow, &mockGenerator{}, nil)

	// 没有商品来源 URL
	noSourceID, _ := seedDraft(t, uow, 1)
	result, err := svc.Run(ctx, noSourceID)
	if err != nil || !result.Skipped {
		t.Errorf("无商品来源 URL 应跳过: result=%+v err=%v", result, err)
	}

	// 已有多个广告组
	multiID, _ := seedDraft(t, uow, 2)
	_ = uow.Drafts.UpdateFields(ctx, multiID, map[string]interface{}{
		"product_source_url": "https://shop.example.com/item/2",
	})
	result, err = svc.Run(ctx, multiID)
	if err != nil || !result.Skipped {
		t.Errorf("多广告组应跳过: result=%+v err=%v", result, err)
	}

	// 唯一广告组已配图
	withImageID, ids := seedDraft(t, uow, 1)
	_ = uow.Drafts.UpdateFields(ctx, withImageID, map[string]interface{}{
		"product_source_url": "https://shop.example.com/item/3",
	})
	_ = uow.AdSets.UpdateFields(ctx, ids[0], map[string]interface{}{
		"image_urls": datatypes.JSONSlice[string]{"https://cdn.com/manual.jpg"},
	})
	result, err = svc.Run(ctx, withImageID)
	if err != nil || !result.Skipped {
		t.Errorf("已配图应跳过: result=%+v err=%v", result, err)
	}
}

// 单路失败只降级该路，不影响另一路
func TestAutoGenDegradesIndependently(t *testing.T) {
	uow, _ := newTestUow(t)
	ctx := context.Background()
	draftID := seedAutoGenDraft(t, uow)

	gen := &mockGenerator{
		imagesFn: func(context.Context, int64, string, string) ([]string, error) {
			return nil, fmt.Errorf("生成服务 502")
		},
		copyFn: func(context.Context, int64, string, string, string, int) ([]dto.CopyCandidate, error) {
			return []dto.CopyCandidate{{Headline: "标题A", PrimaryText: "正文A"}}, nil
		},
	}

	svc := NewAutoGenService(uow, gen, nil)
	result, err := svc.Run(ctx, draftID)
	if err != nil {
		t.Fatalf("图片失败不应导致整体失败: %v", err)
	}
	if result.Skipped {
		t.Fatal("不应跳过")
	}

	draft, _ := uow.Drafts.GetWithAdSets(ctx, draftID)
	for i, a := range draft.AdSets {
		if a.FirstImage() != fallbackStockImage {
			t.Errorf("广告组 %d 应使用兜底图片，实际 %q", i, a.FirstImage())
		}
		if a.FirstHeadline() != "标题A" {
			t.Errorf("广告组 %d 文案应来自生成结果，实际 %q", i, a.FirstHeadline())
		}
	}
}
