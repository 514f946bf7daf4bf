package service

import (
	"strings"
)

// ==================== 创意响应归一化 ====================
//
// 生成后端的响应形状历史上并不稳定（imageUrl / items / results /
// urls / files 多代共存），这里用一组显式解析器按优先级尝试，
// 每个解析器返回带标记的结果；全部不命中时退化为整个对象图的
// 广度优先扫描，收集所有 http(s) 字符串。该兜底是刻意保留的
// 最后手段，不隐藏在隐式 duck-typing 里。

// CreativeNormalizer 响应归一化器
type CreativeNormalizer struct {
	// MediaBaseURL 裸文件名补全用的基础路径，空则跳过补全
	MediaBaseURL string
}

// NewCreativeNormalizer 创建归一化器
func NewCreativeNormalizer(mediaBaseURL string) *CreativeNormalizer {
	return &CreativeNormalizer{MediaBaseURL: strings.TrimRight(mediaBaseURL, "/")}
}

// shapeResult 单个解析器的带标记结果
type shapeResult struct {
	recognized bool
	urls       []string
}

var unrecognized = shapeResult{}

// NormalizeToURLs 把任意形状的生成响应归一化为去重、保序的 URL 列表
// 空输入返回空列表；畸形条目静默跳过（后端响应不一致时的尽力而为策略）
func (n *CreativeNormalizer) NormalizeToURLs(payload interface{}) []string {
	if payload == nil {
		return []string{}
	}

	parsers := []func(interface{}) shapeResult{
		n.parseFlatList,
		n.parseImageURLField,
		n.parseItems,
		n.parseResults,
		n.parseURLsField,
		n.parseFilesField,
	}

	// 按优先级收集所有命中形状的结果，跨形状重复靠最终去重消除
	var collected []string
	recognizedAny := false
	for _, parse := range parsers {
		if res := parse(payload); res.recognized {
			recognizedAny = true
			collected = append(collected, res.urls...)
		}
	}
	if recognizedAny {
		return dedupeURLs(collected)
	}

	// 最后手段：扫描整个对象图
	return dedupeURLs(n.deepScanHTTPStrings(payload))
}

// ==================== 已知形状解析器 ====================

// parseFlatList 已经是扁平 URL 列表的输入（归一化幂等）
func (n *CreativeNormalizer) parseFlatList(payload interface{}) shapeResult {
	switch list := payload.(type) {
	case []string:
		return shapeResult{recognized: true, urls: n.resolveAll(list)}
	case []interface{}:
		urls := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return unrecognized // 混合类型数组不按扁平列表处理
			}
			urls = append(urls, s)
		}
		return shapeResult{recognized: true, urls: n.resolveAll(urls)}
	}
	return unrecognized
}

// parseImageURLField 形状: { "imageUrl": "..." }
func (n *CreativeNormalizer) parseImageURLField(payload interface{}) shapeResult {
	m, ok := payload.(map[string]interface{})
	if !ok {
		return unrecognized
	}
	s, ok := m["imageUrl"].(string)
	if !ok || s == "" {
		return unrecognized
	}
	return shapeResult{recognized: true, urls: []string{n.resolveFilename(s)}}
}

// parseItems 形状: { "items": [ { "url": "..." }, ... ] }
func (n *CreativeNormalizer) parseItems(payload interface{}) shapeResult {
	m, ok := payload.(map[string]interface{})
	if !ok {
		return unrecognized
	}
	items, ok := m["items"].([]interface{})
	if !ok {
		return unrecognized
	}

	var urls []string
	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if u, ok := entry["url"].(string); ok && u != "" {
			urls = append(urls, n.resolveFilename(u))
		}
	}
	if len(urls) == 0 {
		return unrecognized
	}
	return shapeResult{recognized: true, urls: urls}
}

// parseResults 形状: { "results": [ { "generated": [ {...}, ... ] } ] }
// generated 内字段优先级: url > meta.url > s3_meta.url > local_path > filename
func (n *CreativeNormalizer) parseResults(payload interface{}) shapeResult {
	m, ok := payload.(map[string]interface{})
	if !ok {
		return unrecognized
	}
	results, ok := m["results"].([]interface{})
	if !ok {
		return unrecognized
	}

	var urls []string
	for _, result := range results {
		entry, ok := result.(map[string]interface{})
		if !ok {
			continue
		}
		generated, ok := entry["generated"].([]interface{})
		if !ok {
			continue
		}
		for _, g := range generated {
			gm, ok := g.(map[string]interface{})
			if !ok {
				continue
			}
			if u := extractGeneratedURL(gm); u != "" {
				urls = append(urls, n.resolveFilename(u))
			}
		}
	}
	if len(urls) == 0 {
		return unrecognized
	}
	return shapeResult{recognized: true, urls: urls}
}

// extractGeneratedURL 从单个 generated 条目中按优先级取 URL
func extractGeneratedURL(gm map[string]interface{}) string {
	if u, ok := gm["url"].(string); ok && u != "" {
		return u
	}
	if meta, ok := gm["meta"].(map[string]interface{}); ok {
		if u, ok := meta["url"].(string); ok && u != "" {
			return u
		}
	}
	if s3, ok := gm["s3_meta"].(map[string]interface{}); ok {
		if u, ok := s3["url"].(string); ok && u != "" {
			return u
		}
	}
	if u, ok := gm["local_path"].(string); ok && u != "" {
		return u
	}
	if u, ok := gm["filename"].(string); ok && u != "" {
		return u
	}
	return ""
}

// parseURLsField 形状: { "urls": [ "...", ... ] }
func (n *CreativeNormalizer) parseURLsField(payload interface{}) shapeResult {
	return n.parseStringListField(payload, "urls")
}

// parseFilesField 形状: { "files": [ "...", ... ] }
func (n *CreativeNormalizer) parseFilesField(payload interface{}) shapeResult {
	return n.parseStringListField(payload, "files")
}

func (n *CreativeNormalizer) parseStringListField(payload interface{}, key string) shapeResult {
	m, ok := payload.(map[string]interface{})
	if !ok {
		return unrecognized
	}
	list, ok := m[key].([]interface{})
	if !ok {
		return unrecognized
	}

	var urls []string
	for _, item := range list {
		// 非字符串条目静默跳过
		if s, ok := item.(string); ok && s != "" {
			urls = append(urls, n.resolveFilename(s))
		}
	}
	if len(urls) == 0 {
		return unrecognized
	}
	return shapeResult{recognized: true, urls: urls}
}

// ==================== 兜底扫描 ====================

// deepScanHTTPStrings 广度优先遍历对象图，收集所有 http(s) 开头的字符串
func (n *CreativeNormalizer) deepScanHTTPStrings(payload interface{}) []string {
	var urls []string

	queue := []interface{}{payload}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		switch v := node.(type) {
		case string:
			if isHTTPURL(v) {
				urls = append(urls, v)
			}
		case []interface{}:
			queue = append(queue, v...)
		case map[string]interface{}:
			for _, val := range v {
				queue = append(queue, val)
			}
		}
	}

	return urls
}

// ==================== 辅助函数 ====================

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// resolveFilename 裸文件名补全为绝对地址；已是 URL 或 data URI 时原样返回
func (n *CreativeNormalizer) resolveFilename(s string) string {
	if s == "" || isHTTPURL(s) || strings.HasPrefix(s, "data:") {
		return s
	}
	if n.MediaBaseURL == "" {
		return s
	}
	return n.MediaBaseURL + "/" + strings.TrimLeft(s, "/")
}

func (n *CreativeNormalizer) resolveAll(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, n.resolveFilename(s))
	}
	return out
}

// dedupeURLs 去重保序并丢弃空值
func dedupeURLs(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
