package service

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"adflow_dev_v1_202608/internal/model"
	"adflow_dev_v1_202608/internal/repository"
)

// newTestDB 内存数据库，每个测试独立
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("打开内存数据库失败: %v", err)
	}

	if err := db.AutoMigrate(
		&model.Workspace{},
		&model.SysUser{},
		&model.CampaignDraft{},
		&model.AdSet{},
		&model.MediaAsset{},
		&model.PublishLog{},
		&model.AICallLog{},
	); err != nil {
		t.Fatalf("自动建表失败: %v", err)
	}

	return db
}

func newTestUow(t *testing.T) (*repository.CampaignUnitOfWork, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return repository.NewCampaignUnitOfWork(db), db
}
