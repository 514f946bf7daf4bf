package model

import "time"

// ==================== 状态常量 ====================

const (
	// 发布结果
	PublishStatusSuccess = "success"
	PublishStatusFailed  = "failed"

	// AI 调用类型
	AICallTypeText    = "text"
	AICallTypeImage   = "image"
	AICallTypePreview = "preview"

	// AI 调用结果
	AICallStatusSuccess = "success"
	AICallStatusFailed  = "failed"
)

// ==================== 数据库模型 ====================

// PublishLog 单个广告组的一次发布尝试记录
type PublishLog struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt          time.Time `gorm:"index"`
	WorkspaceID        string    `gorm:"size:64;index;comment:工作区ID"`
	DraftID            int64     `gorm:"index;not null;comment:草稿ID"`
	AdSetID            string    `gorm:"size:36;index;comment:广告组ID"`
	AdSetName          string    `gorm:"size:140;comment:广告组名称"`
	Status             string    `gorm:"size:16;index;comment:结果 success/failed"`
	PlatformCampaignID string    `gorm:"size:64;comment:平台返回的系列ID"`
	ErrorMessage       string    `gorm:"size:1024;comment:失败原因"`
	DurationMs         int64     `gorm:"comment:耗时毫秒"`
}

func (*PublishLog) TableName() string {
	return "publish_logs"
}

// AICallLog 生成服务调用记录
type AICallLog struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt    time.Time `gorm:"index"`
	WorkspaceID  string    `gorm:"size:64;index;comment:工作区ID"`
	DraftID      int64     `gorm:"index;comment:草稿ID"`
	CallType     string    `gorm:"size:16;index;comment:类型 text/image/preview"`
	ModelID      string    `gorm:"size:64;comment:模型标识"`
	ItemCount    int       `gorm:"comment:返回条数"`
	DurationMs   int64     `gorm:"comment:耗时毫秒"`
	Status       string    `gorm:"size:16;comment:结果"`
	ErrorMessage string    `gorm:"size:1024;comment:错误信息"`
}

func (*AICallLog) TableName() string {
	return "ai_call_logs"
}
