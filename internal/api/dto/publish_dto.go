package dto

// ==================== 发布 ====================

// AdSetFailure 单个广告组的发布失败
type AdSetFailure struct {
	AdSetID   string `json:"ad_set_id"`
	AdSetName string `json:"ad_set_name"`
	Message   string `json:"message"`
}

// PublishResult 一次发布运行的聚合结果
type PublishResult struct {
	DraftID      int64          `json:"draft_id"`
	SuccessCount int            `json:"success_count"`
	FailCount    int            `json:"fail_count"`
	Failures     []AdSetFailure `json:"failures,omitempty"`
	Message      string         `json:"message"`
}

// AllFailed 是否全部失败
func (r *PublishResult) AllFailed() bool {
	return r.SuccessCount == 0 && r.FailCount > 0
}

// Partial 是否部分成功
func (r *PublishResult) Partial() bool {
	return r.SuccessCount > 0 && r.FailCount > 0
}

// ==================== 平台载荷（publish_v2 契约） ====================

// PublishPayload 发布网关请求体
type PublishPayload struct {
	WorkspaceID  string          `json:"workspace_id"`
	UserID       string          `json:"user_id"`
	CampaignName string          `json:"campaign_name"`
	Objective    string          `json:"objective"`
	DailyBudget  int64           `json:"daily_budget"`
	StartDate    string          `json:"start_date,omitempty"`
	EndDate      string          `json:"end_date,omitempty"`
	Creative     PayloadCreative `json:"creative"`
	Targeting    PayloadTargeting `json:"targeting"`
	Automation   bool            `json:"automation"` // 固定开启优化托管标记
}

// PayloadCreative 创意部分
type PayloadCreative struct {
	Headline       string `json:"headline"`
	PrimaryText    string `json:"primary_text"`
	Description    string `json:"description,omitempty"`
	Image          string `json:"image"` // base64 JPEG data URI，转换失败时退化为原始URL
	DestinationURL string `json:"destination_url"`
	CallToAction   string `json:"call_to_action"`
}

// PayloadTargeting 定向部分
type PayloadTargeting struct {
	CustomLocations []CustomLocation  `json:"custom_locations,omitempty"`
	Countries       []string          `json:"countries,omitempty"`
	AgeMin          int               `json:"age_min"`
	AgeMax          int               `json:"age_max"`
	Genders         []int             `json:"genders"` // 平台编码：空=全部 1=男 2=女
	Interests       []PayloadInterest `json:"interests,omitempty"`
}

// CustomLocation 自定义经纬度圆
type CustomLocation struct {
	Lat      float64 `json:"latitude"`
	Lon      float64 `json:"longitude"`
	RadiusKm float64 `json:"radius"`
}

// PayloadInterest 兴趣透传
type PayloadInterest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PublishResponse 发布网关响应
type PublishResponse struct {
	OK         bool   `json:"ok"`
	CampaignID string `json:"campaign_id,omitempty"`
	Error      string `json:"error,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Message    string `json:"message,omitempty"`
}

// ErrorText 从响应中按优先级提取错误文案
func (r *PublishResponse) ErrorText(fallback string) string {
	if r.Error != "" {
		return r.Error
	}
	if r.Detail != "" {
		return r.Detail
	}
	if r.Message != "" {
		return r.Message
	}
	return fallback
}
