package dto

// ==================== 素材 ====================

// UploadMediaRequest 上传素材（base64 编码内容）
type UploadMediaRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type"`
	Base64Data  string `json:"base64_data" binding:"required"`
	DisplayName string `json:"display_name"`
}

// ImportMediaRequest 按 URL 导入素材
type ImportMediaRequest struct {
	URL         string `json:"url" binding:"required"`
	Type        string `json:"type"` // image / video，默认 image
	DisplayName string `json:"display_name"`
}

// GenerateMediaRequest 按参考图生成新素材
type GenerateMediaRequest struct {
	DraftID     int64  `json:"draft_id"`
	Prompt      string `json:"prompt" binding:"required"`
	AspectRatio string `json:"aspect_ratio"`
	FileURI     string `json:"file_uri"` // 参考图地址
}

// MediaAssetVO 素材视图对象
type MediaAssetVO struct {
	ID          int64  `json:"id"`
	URL         string `json:"url"`
	Type        string `json:"type"`
	DisplayName string `json:"display_name"`
	Source      string `json:"source"`
	CreatedAt   string `json:"created_at"`
}
