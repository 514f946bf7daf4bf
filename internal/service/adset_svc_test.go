package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"adflow_dev_v1_202608/internal/api/dto"
	"adflow_dev_v1_202608/internal/model"
	"adflow_dev_v1_202608/internal/repository"
)

// seedDraft 建一份草稿和 n 个广告组，返回草稿 ID 和广告组 ID 列表
func seedDraft(t *testing.T, uow *repository.CampaignUnitOfWork, n int) (int64, []string) {
	t.Helper()
	ctx := context.Background()

	draft := &model.CampaignDraft{
		WorkspaceID: "ws-1",
		UserID:      "user-1",
		Name:        "测试系列",
		DailyBudget: 3000,
		Status:      model.DraftStatusEditing,
	}
	if err := uow.Drafts.Create(ctx, draft); err != nil {
		t.Fatalf("建草稿失败: %v", err)
	}

	ids := make([]string, n)
	for i := 0; i < n; i++ {
		adSet := model.AdSet{
			ID:       uuid.NewString(),
			DraftID:  draft.ID,
			Position: i,
			Name:     fmt.Sprintf("Ad Set %d", i+1),
			AgeMin:   25,
			AgeMax:   45,
			Gender:   model.GenderFemale,
			Locations: datatypes.JSONSlice[model.AudienceLocation]{
				{ID: "loc-1", Query: "Singapore", Type: model.LocationTypeCountry, CountryCode: "SG", Included: true},
			},
			DestinationURL: "https://example.com/landing",
			CallToAction:   model.CTAShopNow,
		}
		if err := uow.AdSets.Create(ctx, &adSet); err != nil {
			t.Fatalf("建广告组失败: %v", err)
		}
		ids[i] = adSet.ID
	}

	if n > 0 {
		if err := uow.Drafts.UpdateFields(ctx, draft.ID, map[string]interface{}{
			"leading_ad_set_id": ids[0],
		}); err != nil {
			t.Fatalf("设置代表广告组失败: %v", err)
		}
	}

	return draft.ID, ids
}

func TestAddAdSetClonesTargeting(t *testing.T) {
	uow, db := newTestUow(t)
	svc := NewAdSetService(uow, repository.NewMediaAssetRepository(db), nil)
	ctx := context.Background()

	draftID, _ := seedDraft(t, uow, 1)

	adSet, err := svc.AddAdSet(ctx, draftID)
	if err != nil {
		t.Fatalf("新增广告组失败: %v", err)
	}

	if adSet.Name != "Ad Set 2" {
		t.Errorf("名称应顺延编号，实际 %q", adSet.Name)
	}
	if adSet.Position != 1 {
		t.Errorf("position 应为 1，实际 %d", adSet.Position)
	}
	if adSet.AgeMin != 25 || adSet.AgeMax != 45 || adSet.Gender != model.GenderFemale {
		t.Errorf("定向应从首个广告组克隆: %+v", adSet)
	}
	if len(adSet.Locations) != 1 || adSet.Locations[0].CountryCode != "SG" {
		t.Errorf("地理定向应克隆: %+v", adSet.Locations)
	}
	if len(adSet.Headlines) != 0 || len(adSet.PrimaryTexts) != 0 {
		t.Errorf("创意文案不应克隆: %+v", adSet)
	}
}

func TestAddAdSetPicksUnusedImage(t *testing.T) {
	uow, db := newTestUow(t)
	mediaRepo := repository.NewMediaAssetRepository(db)
	svc := NewAdSetService(uow, mediaRepo, nil)
	ctx := context.Background()

	draftID, ids := seedDraft(t, uow, 1)

	// 素材池两张图，第一张已被现有广告组占用
	for _, u := range []string{"https://cdn.com/a.jpg", "https://cdn.com/b.jpg"} {
		if err := mediaRepo.Create(ctx, &model.MediaAsset{
			WorkspaceID: "ws-1", URL: u, Type: model.MediaTypeImage,
		}); err != nil {
			t.Fatalf("建素材失败: %v", err)
		}
	}
	if err := uow.AdSets.UpdateFields(ctx, ids[0], map[string]interface{}{
		"image_urls": datatypes.JSONSlice[string]{"https://cdn.com/a.jpg"},
	}); err != nil {
		t.Fatalf("占用图片失败: %v", err)
	}

	adSet, err := svc.AddAdSet(ctx, draftID)
	if err != nil {
		t.Fatalf("新增广告组失败: %v", err)
	}

	if adSet.FirstImage() != "https://cdn.com/b.jpg" {
		t.Errorf("应选取未占用图片，实际 %q", adSet.FirstImage())
	}
}

func TestDeleteLastAdSetRejected(t *testing.T) {
	uow, db := newTestUow(t)
	svc := NewAdSetService(uow, repository.NewMediaAssetRepository(db), nil)
	ctx := context.Background()

	draftID, ids := seedDraft(t, uow, 1)

	err := svc.DeleteAdSet(ctx, draftID, ids[0])
	if !errors.Is(err, ErrLastAdSet) {
		t.Fatalf("删除最后一个广告组应被拒绝，实际 %v", err)
	}

	count, _ := uow.AdSets.CountByDraftID(ctx, draftID)
	if count != 1 {
		t.Errorf("广告组数量不应变化，实际 %d", count)
	}
}

func TestDeleteLeadingReassigns(t *testing.T) {
	uow, db := newTestUow(t)
	svc := NewAdSetService(uow, repository.NewMediaAssetRepository(db), nil)
	ctx := context.Background()

	draftID, ids := seedDraft(t, uow, 3)

	// 删除当前 leading（第一个）
	if err := svc.DeleteAdSet(ctx, draftID, ids[0]); err != nil {
		t.Fatalf("删除失败: %v", err)
	}

	draft, err := uow.Drafts.GetWithAdSets(ctx, draftID)
	if err != nil {
		t.Fatalf("读草稿失败: %v", err)
	}

	if draft.LeadingAdSetID != ids[1] {
		t.Errorf("leading 应重指到剩余的第一个 %q，实际 %q", ids[1], draft.LeadingAdSetID)
	}
	if len(draft.AdSets) != 2 {
		t.Fatalf("应剩 2 个广告组，实际 %d", len(draft.AdSets))
	}
	for i, a := range draft.AdSets {
		if a.Position != i {
			t.Errorf("position 应重排为 %d，实际 %d", i, a.Position)
		}
	}
}

func TestDeleteNonLeadingKeepsPointer(t *testing.T) {
	uow, db := newTestUow(t)
	svc := NewAdSetService(uow, repository.NewMediaAssetRepository(db), nil)
	ctx := context.Background()

	draftID, ids := seedDraft(t, uow, 3)

	if err := svc.DeleteAdSet(ctx, draftID, ids[2]); err != nil {
		t.Fatalf("删除失败: %v", err)
	}

	draft, _ := uow.Drafts.GetByID(ctx, draftID)
	if draft.LeadingAdSetID != ids[0] {
		t.Errorf("删除非 leading 不应改指针，实际 %q", draft.LeadingAdSetID)
	}
}

func TestUpdateAdSetUnknownIDIsNoop(t *testing.T) {
	uow, db := newTestUow(t)
	svc := NewAdSetService(uow, repository.NewMediaAssetRepository(db), nil)
	ctx := context.Background()

	draftID, _ := seedDraft(t, uow, 1)

	name := "改名"
	err := svc.UpdateAdSet(ctx, draftID, "no-such-id", &dto.UpdateAdSetRequest{Name: &name})
	if err != nil {
		t.Errorf("未命中的广告组 ID 应静默跳过，实际 %v", err)
	}
}

func TestUpdateAdSetPartialPatch(t *testing.T) {
	uow, db := newTestUow(t)
	svc := NewAdSetService(uow, repository.NewMediaAssetRepository(db), nil)
	ctx := context.Background()

	draftID, ids := seedDraft(t, uow, 1)

	ageMin := 30
	err := svc.UpdateAdSet(ctx, draftID, ids[0], &dto.UpdateAdSetRequest{
		AgeMin:    &ageMin,
		Headlines: []string{"新标题"},
	})
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}

	adSet, _ := uow.AdSets.GetByID(ctx, ids[0])
	if adSet.AgeMin != 30 {
		t.Errorf("age_min 应更新为 30，实际 %d", adSet.AgeMin)
	}
	if adSet.FirstHeadline() != "新标题" {
		t.Errorf("headlines 应更新，实际 %v", adSet.Headlines)
	}
	// 未提供的字段保持不变
	if adSet.Gender != model.GenderFemale {
		t.Errorf("gender 不应变化，实际 %q", adSet.Gender)
	}
	if adSet.DestinationURL != "https://example.com/landing" {
		t.Errorf("destination_url 不应变化，实际 %q", adSet.DestinationURL)
	}
}

func TestSetLeadingValidatesOwnership(t *testing.T) {
	uow, db := newTestUow(t)
	svc := NewAdSetService(uow, repository.NewMediaAssetRepository(db), nil)
	ctx := context.Background()

	draftID, ids := seedDraft(t, uow, 2)
	otherDraftID, otherIDs := seedDraft(t, uow, 1)

	if err := svc.SetLeading(ctx, draftID, ids[1]); err != nil {
		t.Fatalf("指定代表广告组失败: %v", err)
	}
	draft, _ := uow.Drafts.GetByID(ctx, draftID)
	if draft.LeadingAdSetID != ids[1] {
		t.Errorf("leading 应更新为 %q，实际 %q", ids[1], draft.LeadingAdSetID)
	}

	// 其他草稿的广告组不能被指定
	if err := svc.SetLeading(ctx, draftID, otherIDs[0]); err == nil {
		t.Error("跨草稿指定代表广告组应报错")
	}
	_ = otherDraftID
}
