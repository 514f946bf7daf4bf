package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "adflow_dev_v1_202608/pkg/config"
	"adflow_dev_v1_202608/pkg/logger"
)

// ==================== 存储接口 ====================

// ObjectStorage 素材对象存储
// Put 返回可公开访问的 URL；Delete 幂等，对象不存在不报错
type ObjectStorage interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// NewObjectStorage 按配置选择存储实现
func NewObjectStorage(cfg *appconfig.StorageConfig) (ObjectStorage, error) {
	switch cfg.Provider {
	case "s3":
		return newS3Storage(cfg)
	case "local", "":
		return newLocalStorage(cfg)
	default:
		return nil, fmt.Errorf("不支持的存储类型: %s", cfg.Provider)
	}
}

// ==================== S3 实现 ====================

type s3Storage struct {
	client    *s3.Client
	bucket    string
	region    string
	cdnDomain string
}

func newS3Storage(cfg *appconfig.StorageConfig) (*s3Storage, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, fmt.Errorf("S3 存储需要配置 bucket 和 region")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("初始化 AWS 配置失败: %v", err)
	}

	return &s3Storage{
		client:    s3.NewFromConfig(awsCfg),
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		cdnDomain: strings.TrimRight(cfg.CDNDomain, "/"),
	}, nil
}

func (s *s3Storage) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("上传对象失败: %v", err)
	}

	if s.cdnDomain != "" {
		return s.cdnDomain + "/" + key, nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

func (s *s3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("删除对象失败: %v", err)
	}
	return nil
}

// ==================== 本地实现 ====================

// localStorage 开发环境用的本地磁盘存储
type localStorage struct {
	dir      string
	basePath string
}

func newLocalStorage(cfg *appconfig.StorageConfig) (*localStorage, error) {
	dir := cfg.LocalDir
	if dir == "" {
		dir = "./uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建本地存储目录失败: %v", err)
	}

	return &localStorage{
		dir:      dir,
		basePath: strings.Trim(cfg.BasePath, "/"),
	}, nil
}

func (s *localStorage) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("创建目录失败: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("写入文件失败: %v", err)
	}

	return "/uploads/" + key, nil
}

func (s *localStorage) Delete(_ context.Context, key string) error {
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("删除文件失败: %v", err)
	}
	logger.L().Debugf("本地对象已释放: %s", key)
	return nil
}
