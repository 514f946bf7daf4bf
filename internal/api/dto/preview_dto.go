package dto

// ==================== 预览 ====================

// PreviewRequest 广告预览请求
// Force 为 true 时跳过签名去重，强制重新渲染
type PreviewRequest struct {
	Headline     string `json:"headline"`
	PrimaryText  string `json:"primary_text"`
	ImageURL     string `json:"image_url"`
	CallToAction string `json:"call_to_action"`
	AdFormat     string `json:"ad_format"`
	Force        bool   `json:"force"`
}

// 预览失败分类
const (
	PreviewErrorNone           = ""
	PreviewErrorSessionExpired = "session_expired"
	PreviewErrorRateLimited    = "rate_limited"
	PreviewErrorUnavailable    = "unavailable"
)

// PreviewResult 预览结果
// 失败时 ErrorKind 非空，Message 面向用户展示，不向上抛错
type PreviewResult struct {
	IframeSrc   string `json:"iframe_src,omitempty"`
	PreviewHTML string `json:"preview_html,omitempty"`
	Debounced   bool   `json:"debounced,omitempty"` // 请求被防抖合并
	Deduped     bool   `json:"deduped,omitempty"`   // 与上次已发送签名一致，未重新请求
	ErrorKind   string `json:"error_kind,omitempty"`
	Message     string `json:"message,omitempty"`
}

// ==================== 生成 ====================

// CopyCandidate 文案候选
type CopyCandidate struct {
	Headline    string `json:"headline"`
	PrimaryText string `json:"primaryText"`
}

// AutoGenerateResult 自动生成结果
type AutoGenerateResult struct {
	DraftID    int64    `json:"draft_id"`
	AdSetIDs   []string `json:"ad_set_ids"`
	ImageCount int      `json:"image_count"`
	CopyCount  int      `json:"copy_count"`
	Skipped    bool     `json:"skipped"` // 已执行过或不满足触发条件
	Reason     string   `json:"reason,omitempty"`
}
