package model

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ==================== 状态常量 ====================

const (
	// 草稿状态
	DraftStatusEditing    = "editing"
	DraftStatusPublishing = "publishing"
	DraftStatusPublished  = "published"
	DraftStatusPartial    = "partial" // 部分广告组发布成功
	DraftStatusFailed     = "failed"

	// 投放目标
	ObjectiveTraffic    = "OUTCOME_TRAFFIC"
	ObjectiveLeads      = "OUTCOME_LEADS"
	ObjectiveSales      = "OUTCOME_SALES"
	ObjectiveAwareness  = "OUTCOME_AWARENESS"
	ObjectiveEngagement = "OUTCOME_ENGAGEMENT"

	// 受众性别
	GenderAll    = "all"
	GenderMale   = "male"
	GenderFemale = "female"

	// 地理位置类型
	LocationTypeCity    = "city"
	LocationTypeRegion  = "region"
	LocationTypeCountry = "country"
	LocationTypeZip     = "zip"
	LocationTypeCustom  = "custom"

	// 行动号召
	CTALearnMore   = "LEARN_MORE"
	CTAShopNow     = "SHOP_NOW"
	CTASignUp      = "SIGN_UP"
	CTAContactUs   = "CONTACT_US"
	CTAWhatsApp    = "WHATSAPP_MESSAGE"
	CTADownload    = "DOWNLOAD"
	CTASubscribe   = "SUBSCRIBE"
	CTAGetOffer    = "GET_OFFER"
	CTABookNow     = "BOOK_TRAVEL"
	CTAApplyNow    = "APPLY_NOW"
	CTAGetQuote    = "GET_QUOTE"
	CTAPlayGame    = "PLAY_GAME"
	CTAWatchMore   = "WATCH_MORE"
	CTASeeMenu     = "ORDER_NOW"
	CTADefaultNone = ""

	// 受众半径限制（米）
	MaxLocationRadiusMeters = 50000
)

// ==================== 嵌入结构 ====================

// AudienceLocation 单条地理定向
type AudienceLocation struct {
	ID          string   `json:"id"`
	Query       string   `json:"query"`
	Type        string   `json:"type"` // city / region / country / zip / custom
	City        string   `json:"city,omitempty"`
	Region      string   `json:"region,omitempty"`
	Country     string   `json:"country,omitempty"`
	CountryCode string   `json:"country_code,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lon         *float64 `json:"lon,omitempty"`
	RadiusM     int      `json:"radius_m,omitempty"` // 0–50000
	Included    bool     `json:"included"`
}

// HasCoordinates 是否携带可用坐标（决定发布时走自定义圆还是国家码）
func (l *AudienceLocation) HasCoordinates() bool {
	return l.Lat != nil && l.Lon != nil
}

// Interest 兴趣定向
type Interest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ==================== 数据库模型 ====================

// CampaignDraft 广告系列草稿（一次编辑会话的聚合根）
type CampaignDraft struct {
	ID               int64          `gorm:"primaryKey;autoIncrement"`
	CreatedAt        time.Time      `gorm:"index"`
	UpdatedAt        time.Time      `gorm:"index"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`
	WorkspaceID      string         `gorm:"size:64;index;not null;comment:工作区ID"`
	UserID           string         `gorm:"size:64;index;not null;comment:用户ID"`
	Name             string         `gorm:"size:255;comment:系列名称"`
	Objective        string         `gorm:"size:32;default:OUTCOME_TRAFFIC;comment:投放目标"`
	DailyBudget      int64          `gorm:"comment:日预算(货币最小单位)"`
	StartDate        string         `gorm:"size:10;comment:开始日期 ISO"`
	EndDate          string         `gorm:"size:10;comment:结束日期 ISO"`
	MasterPrompt     string         `gorm:"type:text;comment:主提示词"`
	ProductSourceURL string         `gorm:"size:2048;comment:商品来源URL"`
	LeadFormConfig   datatypes.JSONMap `gorm:"comment:线索表单配置"`
	LeadingAdSetID   string         `gorm:"size:36;comment:代表性广告组ID"`
	AutoGenDone      bool           `gorm:"default:false;comment:自动生成是否已执行"`
	Status           string         `gorm:"size:32;index;default:editing;comment:状态"`

	// 关联（按 position 排序为展示顺序）
	AdSets []AdSet `gorm:"foreignKey:DraftID"`
}

func (*CampaignDraft) TableName() string {
	return "campaign_drafts"
}

// AdSet 广告组（一个定向+创意变体，发布的最小单元）
type AdSet struct {
	ID        string    `gorm:"primaryKey;size:36"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
	DraftID   int64  `gorm:"index;not null;comment:草稿ID"`
	Position  int    `gorm:"index;comment:展示顺序"`
	Name      string `gorm:"size:140;comment:广告组名称"`

	// 定向
	Locations datatypes.JSONSlice[AudienceLocation] `gorm:"comment:地理定向"`
	AgeMin    int                                   `gorm:"default:18;comment:最小年龄"`
	AgeMax    int                                   `gorm:"default:65;comment:最大年龄"`
	Gender    string                                `gorm:"size:16;default:all;comment:性别定向"`
	Interests datatypes.JSONSlice[Interest]         `gorm:"comment:兴趣定向"`

	// 创意（并行数组，界面当前只驱动首元素）
	Headlines    datatypes.JSONSlice[string] `gorm:"comment:标题候选"`
	PrimaryTexts datatypes.JSONSlice[string] `gorm:"comment:正文候选"`
	ImageURLs    datatypes.JSONSlice[string] `gorm:"comment:图片URL候选"`

	Description    string `gorm:"type:text;comment:描述"`
	DestinationURL string `gorm:"size:2048;comment:落地页URL"`
	CallToAction   string `gorm:"size:32;default:LEARN_MORE;comment:行动号召"`
}

func (*AdSet) TableName() string {
	return "ad_sets"
}

// ==================== 辅助方法 ====================

// FirstHeadline 首个标题
func (a *AdSet) FirstHeadline() string {
	if len(a.Headlines) > 0 {
		return a.Headlines[0]
	}
	return ""
}

// FirstPrimaryText 首个正文
func (a *AdSet) FirstPrimaryText() string {
	if len(a.PrimaryTexts) > 0 {
		return a.PrimaryTexts[0]
	}
	return ""
}

// FirstImage 首张图片
func (a *AdSet) FirstImage() string {
	if len(a.ImageURLs) > 0 {
		return a.ImageURLs[0]
	}
	return ""
}

// HasImage 是否已有创意图片
func (a *AdSet) HasImage() bool {
	return a.FirstImage() != ""
}

// CloneTargeting 复制定向字段到新广告组（创意不复制）
func (a *AdSet) CloneTargeting() AdSet {
	clone := AdSet{
		AgeMin: a.AgeMin,
		AgeMax: a.AgeMax,
		Gender: a.Gender,
	}
	clone.Locations = append(datatypes.JSONSlice[AudienceLocation]{}, a.Locations...)
	clone.Interests = append(datatypes.JSONSlice[Interest]{}, a.Interests...)
	return clone
}

// CanPublish 发布前校验
func (a *AdSet) CanPublish() error {
	if a.DestinationURL == "" {
		return errors.New("落地页 URL 不能为空")
	}
	return nil
}

// FindAdSet 按 ID 查找广告组，未找到返回 nil
func (d *CampaignDraft) FindAdSet(id string) *AdSet {
	for i := range d.AdSets {
		if d.AdSets[i].ID == id {
			return &d.AdSets[i]
		}
	}
	return nil
}
