package utils

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", "user-1", "ws-1", time.Hour)
	if err != nil {
		t.Fatalf("签发失败: %v", err)
	}

	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if claims.UserID != "user-1" || claims.WorkspaceID != "ws-1" {
		t.Errorf("载荷错误: %+v", claims)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, _ := GenerateToken("secret", "user-1", "", time.Hour)

	if _, err := ParseToken("other-secret", token); err == nil {
		t.Error("错误密钥应解析失败")
	}
}

func TestTokenExpired(t *testing.T) {
	token, _ := GenerateToken("secret", "user-1", "", -time.Minute)

	if _, err := ParseToken("secret", token); err == nil {
		t.Error("过期令牌应解析失败")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash := HashPassword("admin123", "salt")

	if !VerifyPassword("admin123", "salt", hash) {
		t.Error("正确密码应校验通过")
	}
	if VerifyPassword("wrong", "salt", hash) {
		t.Error("错误密码应校验失败")
	}
	if VerifyPassword("admin123", "other-salt", hash) {
		t.Error("盐不同应校验失败")
	}
}
