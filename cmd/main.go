package main

import (
	"log"

	"gorm.io/gorm"

	"adflow_dev_v1_202608/internal/controller"
	"adflow_dev_v1_202608/internal/model"
	"adflow_dev_v1_202608/internal/repository"
	"adflow_dev_v1_202608/internal/router"
	"adflow_dev_v1_202608/internal/service"
	"adflow_dev_v1_202608/internal/task"
	"adflow_dev_v1_202608/pkg/config"
	"adflow_dev_v1_202608/pkg/database"
	"adflow_dev_v1_202608/pkg/logger"
	"adflow_dev_v1_202608/pkg/utils"
)

// Dependencies 全部运行时依赖的装配容器
type Dependencies struct {
	DB        *gorm.DB
	Scheduler *task.Scheduler
	Ctls      *router.Controllers
}

// buildDependencies 按 仓储 -> 服务 -> 控制器 的顺序装配
func buildDependencies(cfg *config.AppConfig, db *gorm.DB) (*Dependencies, error) {
	// 仓储层
	uow := repository.NewCampaignUnitOfWork(db)
	mediaRepo := repository.NewMediaAssetRepository(db)
	wsRepo := repository.NewWorkspaceRepository(db)
	userRepo := repository.NewUserRepository(db)
	publishLogRepo := repository.NewPublishLogRepository(db)
	aiCallLogRepo := repository.NewAICallLogRepository(db)

	// 基础设施
	sessions := utils.NewMemorySessionStore()
	storage, err := service.NewObjectStorage(&cfg.Storage)
	if err != nil {
		return nil, err
	}

	// 服务层
	hub := service.NewProgressHub()
	workspaceSvc := service.NewWorkspaceService(wsRepo, userRepo, sessions)
	authSvc := service.NewAuthService(userRepo, workspaceSvc, cfg.JWTSecret)
	mediaSvc := service.NewMediaService(mediaRepo, storage, cfg.Storage.BasePath)
	campaignSvc := service.NewCampaignService(uow)
	adSetSvc := service.NewAdSetService(uow, mediaRepo, hub)

	generationSvc := service.NewGenerationService(&service.GenerationConfig{
		BaseURL:      cfg.Generation.BaseURL,
		APIKey:       cfg.Generation.APIKey,
		MediaBaseURL: cfg.Generation.MediaBaseURL,
		Timeout:      cfg.Generation.Timeout,
	}, aiCallLogRepo)

	autoGenSvc := service.NewAutoGenService(uow, generationSvc, hub)

	previewSvc := service.NewPreviewService(&service.PreviewConfig{
		BaseURL: cfg.Generation.BaseURL,
		APIKey:  cfg.Generation.APIKey,
	})

	publishSvc := service.NewPublishService(&service.PublishConfig{
		BaseURL: cfg.Publish.BaseURL,
		APIKey:  cfg.Publish.APIKey,
	}, uow, publishLogRepo, workspaceSvc, hub)

	// 控制器层
	ctls := &router.Controllers{
		Auth:      controller.NewAuthController(authSvc),
		Campaign:  controller.NewCampaignController(campaignSvc, adSetSvc, autoGenSvc, previewSvc, publishSvc, hub),
		Media:     controller.NewMediaController(mediaSvc, generationSvc),
		Workspace: controller.NewWorkspaceController(workspaceSvc),
	}

	return &Dependencies{
		DB:        db,
		Scheduler: task.NewScheduler(uow.Drafts, mediaSvc),
		Ctls:      ctls,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	if err := logger.Init(cfg.Debug); err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer logger.Sync()

	db := database.InitDB(cfg.DatabaseDSN, cfg.Debug,
		&model.Workspace{},
		&model.SysUser{},
		&model.CampaignDraft{},
		&model.AdSet{},
		&model.MediaAsset{},
		&model.PublishLog{},
		&model.AICallLog{},
	)

	deps, err := buildDependencies(cfg, db)
	if err != nil {
		logger.L().Fatalf("装配依赖失败: %v", err)
	}

	if err := deps.Scheduler.Start(); err != nil {
		logger.L().Fatalf("启动定时任务失败: %v", err)
	}
	defer deps.Scheduler.Stop()

	r := router.Setup(cfg.Debug, cfg.JWTSecret, deps.Ctls)

	logger.L().Infof("服务启动，监听端口 %s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		logger.L().Fatalf("服务启动失败: %v", err)
	}
}
