package service

import (
	"sync"

	"adflow_dev_v1_202608/internal/api/dto"
)

// ==================== 进度订阅 ====================

// ProgressHub 草稿维度的进度事件分发
// 自动生成、发布流程都通过它向 SSE 订阅者推送进度
type ProgressHub struct {
	subscribers map[int64][]chan dto.ProgressEvent
	mu          sync.RWMutex
}

// NewProgressHub 创建进度分发器
func NewProgressHub() *ProgressHub {
	return &ProgressHub{
		subscribers: make(map[int64][]chan dto.ProgressEvent),
	}
}

// Subscribe 订阅草稿进度
func (h *ProgressHub) Subscribe(draftID int64) chan dto.ProgressEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan dto.ProgressEvent, 10)
	h.subscribers[draftID] = append(h.subscribers[draftID], ch)
	return ch
}

// Unsubscribe 取消订阅
func (h *ProgressHub) Unsubscribe(draftID int64, ch chan dto.ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.subscribers[draftID]
	for i, sub := range subs {
		if sub == ch {
			h.subscribers[draftID] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}

	if len(h.subscribers[draftID]) == 0 {
		delete(h.subscribers, draftID)
	}
}

// Notify 推送进度事件
func (h *ProgressHub) Notify(draftID int64, event dto.ProgressEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers[draftID] {
		select {
		case ch <- event:
		default:
			// channel 已满，跳过
		}
	}
}
