package utils

import (
	"testing"
	"time"
)

func TestMemorySessionStoreBasic(t *testing.T) {
	s := NewMemorySessionStore()

	s.Set("k1", "v1", 0)
	if v, ok := s.Get("k1"); !ok || v != "v1" {
		t.Errorf("Get 失败: %q %v", v, ok)
	}

	s.Delete("k1")
	if _, ok := s.Get("k1"); ok {
		t.Error("删除后不应命中")
	}
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	s := NewMemorySessionStore()

	s.Set("k1", "v1", time.Second)
	if _, ok := s.Get("k1"); !ok {
		t.Fatal("未过期就丢失")
	}

	// 直接把过期时间改到过去验证懒删除
	s.items.Store("k1", cacheItem{value: "v1", expiration: time.Now().Add(-time.Minute).Unix()})
	if _, ok := s.Get("k1"); ok {
		t.Error("过期项应被懒删除")
	}
}

func TestMemorySessionStoreOverwrite(t *testing.T) {
	s := NewMemorySessionStore()

	s.Set("k1", "v1", 0)
	s.Set("k1", "v2", 0)
	if v, _ := s.Get("k1"); v != "v2" {
		t.Errorf("覆盖写失败: %q", v)
	}
}
