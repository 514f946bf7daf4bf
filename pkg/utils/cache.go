package utils

import (
	"sync"
	"time"
)

// SessionStore 会话键值存储接口
// 所有会话态（选中的 workspace、用户缓存）统一经由该接口读写，
// 测试中可直接注入内存实现
type SessionStore interface {
	Set(key, value string, ttl time.Duration)
	Get(key string) (string, bool)
	Delete(key string)
}

// ==================== 内存实现 ====================

// cacheItem 内部结构，包含值和过期时间
type cacheItem struct {
	value      string
	expiration int64
}

// MemorySessionStore 基于 sync.Map 的并发安全内存实现
type MemorySessionStore struct {
	items sync.Map
}

// NewMemorySessionStore 创建内存会话存储
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

// Set 设置缓存，ttl <= 0 时表示不过期
func (s *MemorySessionStore) Set(key, value string, ttl time.Duration) {
	var exp int64
	if ttl > 0 {
		exp = time.Now().Add(ttl).Unix()
	}

	s.items.Store(key, cacheItem{
		value:      value,
		expiration: exp,
	})
}

// Get 获取缓存并验证是否过期
func (s *MemorySessionStore) Get(key string) (string, bool) {
	val, ok := s.items.Load(key)
	if !ok {
		return "", false
	}

	item := val.(cacheItem)

	// 懒删除过期项
	if item.expiration > 0 && time.Now().Unix() > item.expiration {
		s.items.Delete(key)
		return "", false
	}

	return item.value, true
}

// Delete 删除缓存
func (s *MemorySessionStore) Delete(key string) {
	s.items.Delete(key)
}
