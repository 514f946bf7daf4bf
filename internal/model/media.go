package model

import (
	"time"

	"gorm.io/gorm"
)

// ==================== 状态常量 ====================

const (
	// 素材类型
	MediaTypeImage = "image"
	MediaTypeVideo = "video"

	// 素材来源
	MediaSourceUpload    = "upload"
	MediaSourceGenerated = "generated"
	MediaSourceImport    = "import"
)

// ==================== 数据库模型 ====================

// MediaAsset 可选创意素材
// StorageKey 非空表示对象由本服务写入存储，删除记录时必须同步释放对象
type MediaAsset struct {
	ID          int64          `gorm:"primaryKey;autoIncrement"`
	CreatedAt   time.Time      `gorm:"index"`
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
	WorkspaceID string         `gorm:"size:64;index;not null;comment:工作区ID"`
	URL         string         `gorm:"size:2048;not null;comment:访问URL"`
	Type        string         `gorm:"size:16;default:image;comment:类型 image/video"`
	DisplayName string         `gorm:"size:255;comment:展示名称"`
	Source      string         `gorm:"size:16;index;comment:来源 upload/generated/import"`
	StorageKey  string         `gorm:"size:512;comment:存储对象Key(本地托管时非空)"`
	Width       int            `gorm:"comment:宽度"`
	Height      int            `gorm:"comment:高度"`
}

func (*MediaAsset) TableName() string {
	return "media_assets"
}

// OwnsStorage 素材对象是否由本服务托管
func (m *MediaAsset) OwnsStorage() bool {
	return m.StorageKey != ""
}
