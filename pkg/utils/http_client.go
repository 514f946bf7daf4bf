package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// NewAPIClient 创建一个配置好超时与鉴权头的 Resty 客户端
// 它是全系统统一的出站请求入口（生成服务、发布网关共用）
func NewAPIClient(baseURL, apiKey string, timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", "AdFlow-Go-App/1.0")

	if apiKey != "" {
		client.SetHeader("x-api-key", apiKey)
	}

	return client
}
