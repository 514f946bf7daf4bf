package config

import (
	"time"

	"github.com/spf13/viper"
)

// ==================== 配置结构 ====================

// AppConfig 应用配置
type AppConfig struct {
	ServerPort string
	Debug      bool

	// 数据库
	DatabaseDSN string

	// JWT
	JWTSecret string

	// 生成服务（图片 / 文案 / 预览）
	Generation GenerationConfig

	// 投放平台发布网关
	Publish PublishConfig

	// 素材存储
	Storage StorageConfig
}

// GenerationConfig 生成服务配置
type GenerationConfig struct {
	BaseURL      string
	APIKey       string
	MediaBaseURL string        // 裸文件名补全用的基础路径
	Timeout      time.Duration // 生成调用整体超时
}

// PublishConfig 发布网关配置
type PublishConfig struct {
	BaseURL string
	APIKey  string
}

// StorageConfig 存储配置
type StorageConfig struct {
	Provider  string // "s3" | "local"
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	CDNDomain string
	BasePath  string
	LocalDir  string
}

// ==================== 加载 ====================

// Load 加载配置
// 优先级：环境变量 > config.yaml > 默认值
func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.AutomaticEnv()

	// 默认值
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("DATABASE_DSN", "host=localhost user=adflow password=adflow dbname=adflow port=5432 sslmode=disable")
	v.SetDefault("JWT_SECRET", "adflow-secret-key-change-in-production")
	v.SetDefault("GENERATION_BASE_URL", "https://gen.adflow.internal")
	v.SetDefault("GENERATION_TIMEOUT_SECONDS", 180)
	v.SetDefault("PUBLISH_BASE_URL", "https://publish.adflow.internal")
	v.SetDefault("STORAGE_PROVIDER", "local")
	v.SetDefault("STORAGE_BASE_PATH", "adflow")
	v.SetDefault("STORAGE_LOCAL_DIR", "./uploads")

	// config.yaml 不存在时不报错，全部走环境变量和默认值
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &AppConfig{
		ServerPort:  v.GetString("SERVER_PORT"),
		Debug:       v.GetBool("DEBUG"),
		DatabaseDSN: v.GetString("DATABASE_DSN"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		Generation: GenerationConfig{
			BaseURL:      v.GetString("GENERATION_BASE_URL"),
			APIKey:       v.GetString("GENERATION_API_KEY"),
			MediaBaseURL: v.GetString("GENERATION_MEDIA_BASE_URL"),
			Timeout:      time.Duration(v.GetInt("GENERATION_TIMEOUT_SECONDS")) * time.Second,
		},
		Publish: PublishConfig{
			BaseURL: v.GetString("PUBLISH_BASE_URL"),
			APIKey:  v.GetString("PUBLISH_API_KEY"),
		},
		Storage: StorageConfig{
			Provider:  v.GetString("STORAGE_PROVIDER"),
			Bucket:    v.GetString("AWS_BUCKET"),
			Region:    v.GetString("AWS_REGION"),
			AccessKey: v.GetString("AWS_ACCESS_KEY_ID"),
			SecretKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
			CDNDomain: v.GetString("AWS_CDN_DOMAIN"),
			BasePath:  v.GetString("STORAGE_BASE_PATH"),
			LocalDir:  v.GetString("STORAGE_LOCAL_DIR"),
		},
	}

	return cfg, nil
}
