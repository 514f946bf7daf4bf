package main

// 全链路冒烟脚本：对本地运行中的服务依次走一遍
// 登录 -> 建草稿 -> 加广告组 -> 删广告组 -> 预览 -> 发布。
// 正式入口在 cmd/main.go，本文件仅用于联调自测。

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultBase = "http://localhost:8080"

type envelope struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func main() {
	base := os.Getenv("SMOKE_BASE_URL")
	if base == "" {
		base = defaultBase
	}

	client := resty.New().SetBaseURL(base).SetTimeout(30 * time.Second)

	// 1. 登录
	var login envelope
	resp, err := client.R().
		SetBody(map[string]string{"username": "admin", "password": "admin123"}).
		SetResult(&login).
		Post("/api/auth/login")
	must(err, "登录请求")
	if resp.StatusCode() != 200 {
		log.Fatalf("登录失败 [%d]: %s", resp.StatusCode(), resp.String())
	}
	token, _ := login.Data["access_token"].(string)
	fmt.Println("✅ 登录成功")

	client.SetAuthToken(token)

	// 2. 创建草稿
	var created envelope
	_, err = client.R().
		SetBody(map[string]interface{}{
			"name":               "冒烟测试系列",
			"objective":          "OUTCOME_TRAFFIC",
			"daily_budget":       5000,
			"destination_url":    "https://example.com/product",
			"product_source_url": "https://example.com/product",
		}).
		SetResult(&created).
		Post("/api/campaigns")
	must(err, "创建草稿")
	draftID := int64(created.Data["draft_id"].(float64))
	fmt.Printf("✅ 草稿创建成功 id=%d\n", draftID)

	// 3. 加一个广告组
	var added envelope
	_, err = client.R().
		SetResult(&added).
		Post(fmt.Sprintf("/api/campaigns/%d/ad-sets", draftID))
	must(err, "新增广告组")
	fmt.Println("✅ 广告组新增成功")

	// 4. 读详情并删掉刚加的
	var detail envelope
	_, err = client.R().
		SetResult(&detail).
		Get(fmt.Sprintf("/api/campaigns/%d", draftID))
	must(err, "读取详情")

	adSets, _ := detail.Data["ad_sets"].([]interface{})
	fmt.Printf("✅ 详情读取成功，广告组数量 %d\n", len(adSets))

	if len(adSets) > 1 {
		last := adSets[len(adSets)-1].(map[string]interface{})
		_, err = client.R().
			Delete(fmt.Sprintf("/api/campaigns/%d/ad-sets/%s", draftID, last["id"]))
		must(err, "删除广告组")
		fmt.Println("✅ 广告组删除成功")
	}

	// 5. 预览
	if len(adSets) > 0 {
		first := adSets[0].(map[string]interface{})
		var preview envelope
		_, err = client.R().
			SetBody(map[string]interface{}{
				"headline":     "冒烟测试标题",
				"primary_text": "冒烟测试正文",
				"force":        true,
			}).
			SetResult(&preview).
			Post(fmt.Sprintf("/api/campaigns/%d/ad-sets/%s/preview", draftID, first["id"]))
		must(err, "预览")
		fmt.Printf("✅ 预览返回: %v\n", preview.Data)
	}

	// 6. 发布
	var publish envelope
	resp, err = client.R().
		SetResult(&publish).
		Post(fmt.Sprintf("/api/campaigns/%d/publish", draftID))
	must(err, "发布")
	fmt.Printf("✅ 发布返回 [%d]: %v\n", resp.StatusCode(), publish.Data)

	fmt.Println("冒烟测试完成")
}

func must(err error, step string) {
	if err != nil {
		log.Fatalf("%s失败: %v", step, err)
	}
}
