package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"adflow_dev_v1_202608/pkg/utils"
)

func newGenerationTestService(t *testing.T, handler http.HandlerFunc) *GenerationService {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc := NewGenerationService(&GenerationConfig{BaseURL: server.URL}, nil)
	svc.SetClient(utils.NewAPIClient(server.URL, "", 5*time.Second))
	return svc
}

func TestGenerateImagesItemsShape(t *testing.T) {
	svc := newGenerationTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate-from-prodlink" {
			t.Errorf("请求路径错误: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"items": [{"images": ["https://cdn.com/1.jpg", "https://cdn.com/2.jpg"]}]
		}`))
	})

	urls, err := svc.GenerateImagesFromProduct(context.Background(), 1, "https://shop.com/item", "提示词")
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}

	want := []string{"https://cdn.com/1.jpg", "https://cdn.com/2.jpg"}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("URL 提取错误: %v", urls)
	}
}

// items[].images[] 不命中时交给通用归一化
func TestGenerateImagesFallsBackToNormalizer(t *testing.T) {
	svc := newGenerationTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"urls": ["https://cdn.com/alt.jpg"]}`))
	})

	urls, err := svc.GenerateImagesFromProduct(context.Background(), 1, "https://shop.com/item", "")
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	if len(urls) != 1 || urls[0] != "https://cdn.com/alt.jpg" {
		t.Errorf("归一化兜底失败: %v", urls)
	}
}

func TestGenerateImagesEmptySourceURL(t *testing.T) {
	svc := newGenerationTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("空来源 URL 不应发起请求")
	})

	if _, err := svc.GenerateImagesFromProduct(context.Background(), 1, "", ""); err == nil {
		t.Error("空来源 URL 应报错")
	}
}

func TestGenerateCopyFiltersEmptyCandidates(t *testing.T) {
	svc := newGenerationTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"candidates": [
				{"headline": "标题A", "primaryText": "正文A"},
				{"headline": "", "primaryText": ""},
				{"headline": "标题B", "primaryText": ""}
			]
		}`))
	})

	candidates, err := svc.GenerateCopy(context.Background(), 1, "商品", "描述", "", 3)
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("空候选应被过滤，实际 %d 条", len(candidates))
	}
	if candidates[0].Headline != "标题A" || candidates[1].Headline != "标题B" {
		t.Errorf("候选顺序错误: %+v", candidates)
	}
}

func TestExtractErrorTextPriority(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"error 优先", `{"error":"E","detail":"D","message":"M"}`, "E"},
		{"detail 次之", `{"detail":"D","message":"M"}`, "D"},
		{"message 兜底", `{"message":"M"}`, "M"},
		{"纯文本", `plain text error`, "plain text error"},
		{"空响应用状态行", ``, "500 Internal Server Error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := extractErrorText([]byte(tc.body), "500 Internal Server Error")
			if got != tc.want {
				t.Errorf("错误文案提取错误: %q", got)
			}
		})
	}
}
