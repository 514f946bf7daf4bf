package service

import (
	"encoding/json"
	"reflect"
	"testing"
)

func mustParse(t *testing.T, raw string) interface{} {
	t.Helper()
	var payload interface{}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("测试数据不是合法 JSON: %v", err)
	}
	return payload
}

func TestNormalizeEmptyInput(t *testing.T) {
	n := NewCreativeNormalizer("")

	if got := n.NormalizeToURLs(nil); len(got) != 0 {
		t.Errorf("nil 输入应返回空列表，实际 %v", got)
	}
	if got := n.NormalizeToURLs(map[string]interface{}{}); len(got) != 0 {
		t.Errorf("空对象应返回空列表，实际 %v", got)
	}
}

func TestNormalizeFlatListIdempotent(t *testing.T) {
	n := NewCreativeNormalizer("")

	input := []string{"https://a.com/1.jpg", "https://b.com/2.jpg"}
	first := n.NormalizeToURLs(input)
	second := n.NormalizeToURLs(first)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("归一化应当幂等: %v != %v", first, second)
	}
	if !reflect.DeepEqual(first, input) {
		t.Errorf("扁平列表应原样保留: %v", first)
	}
}

func TestNormalizeImageURLField(t *testing.T) {
	n := NewCreativeNormalizer("")

	got := n.NormalizeToURLs(mustParse(t, `{"imageUrl": "https://cdn.com/x.jpg"}`))
	want := []string{"https://cdn.com/x.jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("imageUrl 形状解析错误: %v", got)
	}
}

func TestNormalizeItemsShape(t *testing.T) {
	n := NewCreativeNormalizer("")

	got := n.NormalizeToURLs(mustParse(t, `{
		"items": [
			{"url": "https://cdn.com/1.jpg"},
			{"url": "https://cdn.com/2.jpg"},
			{"note": "没有 url 的条目跳过"}
		]
	}`))
	want := []string{"https://cdn.com/1.jpg", "https://cdn.com/2.jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("items 形状解析错误: %v", got)
	}
}

// 同一 URL 出现在多个识别形状中时只保留一次
func TestNormalizeDedupesAcrossShapes(t *testing.T) {
	n := NewCreativeNormalizer("")

	got := n.NormalizeToURLs(mustParse(t, `{
		"imageUrl": "https://cdn.com/same.jpg",
		"items": [{"url": "https://cdn.com/same.jpg"}]
	}`))
	want := []string{"https://cdn.com/same.jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("跨形状去重失败: %v", got)
	}
}

func TestNormalizeResultsGeneratedPriority(t *testing.T) {
	n := NewCreativeNormalizer("")

	// url 优先于 meta.url 优先于 s3_meta.url 优先于 local_path
	got := n.NormalizeToURLs(mustParse(t, `{
		"results": [{
			"generated": [
				{"url": "https://cdn.com/direct.jpg", "meta": {"url": "https://cdn.com/meta.jpg"}},
				{"meta": {"url": "https://cdn.com/meta2.jpg"}, "s3_meta": {"url": "https://cdn.com/s3.jpg"}},
				{"s3_meta": {"url": "https://cdn.com/s3only.jpg"}},
				{"local_path": "https://cdn.com/local.jpg"}
			]
		}]
	}`))
	want := []string{
		"https://cdn.com/direct.jpg",
		"https://cdn.com/meta2.jpg",
		"https://cdn.com/s3only.jpg",
		"https://cdn.com/local.jpg",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("generated 字段优先级错误: %v", got)
	}
}

func TestNormalizeBareFilenameResolution(t *testing.T) {
	n := NewCreativeNormalizer("https://media.example.com/assets/")

	got := n.NormalizeToURLs(mustParse(t, `{"files": ["abc.jpg", "https://cdn.com/full.jpg"]}`))
	want := []string{
		"https://media.example.com/assets/abc.jpg",
		"https://cdn.com/full.jpg",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("裸文件名补全错误: %v", got)
	}
}

// 全部形状不命中时退化为对象图扫描
func TestNormalizeDeepScanFallback(t *testing.T) {
	n := NewCreativeNormalizer("")

	got := n.NormalizeToURLs(mustParse(t, `{
		"weird": {
			"nested": {"pic": "https://cdn.com/deep.jpg"},
			"list": [{"another": "https://cdn.com/deep2.jpg"}, "not-a-url"]
		}
	}`))

	if len(got) != 2 {
		t.Fatalf("兜底扫描应找到 2 个 URL，实际 %v", got)
	}
	found := map[string]bool{}
	for _, u := range got {
		found[u] = true
	}
	if !found["https://cdn.com/deep.jpg"] || !found["https://cdn.com/deep2.jpg"] {
		t.Errorf("兜底扫描遗漏 URL: %v", got)
	}
}

func TestNormalizeMalformedEntriesSkipped(t *testing.T) {
	n := NewCreativeNormalizer("")

	got := n.NormalizeToURLs(mustParse(t, `{
		"urls": ["https://cdn.com/ok.jpg", 42, null, ""]
	}`))
	want := []string{"https://cdn.com/ok.jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("畸形条目应静默跳过: %v", got)
	}
}
