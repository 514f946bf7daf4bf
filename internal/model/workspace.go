package model

import (
	"time"

	"gorm.io/gorm"
)

// ==================== 状态常量 ====================

const (
	WorkspaceStatusActive   = 1
	WorkspaceStatusDisabled = 0
)

// ==================== 数据库模型 ====================

// Workspace 工作区（对应一个已关联的广告主账号）
type Workspace struct {
	ID             string         `gorm:"primaryKey;size:64"`
	CreatedAt      time.Time      `gorm:"index"`
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
	Name           string         `gorm:"size:255;not null;comment:工作区名称"`
	MetaBusinessID string         `gorm:"size:64;comment:Meta Business ID"`
	AdAccountID    string         `gorm:"size:64;comment:广告账户ID"`
	PageID         string         `gorm:"size:64;comment:Facebook Page ID"`
	WabaID         string         `gorm:"size:64;comment:WhatsApp Business Account ID"`
	Status         int            `gorm:"default:1;comment:状态 1正常 0停用"`
}

func (*Workspace) TableName() string {
	return "workspaces"
}

// SysUser 系统用户
type SysUser struct {
	ID                 string         `gorm:"primaryKey;size:64"`
	CreatedAt          time.Time      `gorm:"index"`
	UpdatedAt          time.Time
	DeletedAt          gorm.DeletedAt `gorm:"index"`
	Username           string         `gorm:"size:64;uniqueIndex;not null;comment:用户名"`
	PasswordHash       string         `gorm:"size:128;comment:密码哈希"`
	Role               string         `gorm:"size:32;default:member;comment:角色"`
	DefaultWorkspaceID string         `gorm:"size:64;comment:默认工作区ID"`
	LastLoginAt        *time.Time     `gorm:"comment:最近登录时间"`
}

func (*SysUser) TableName() string {
	return "sys_users"
}
