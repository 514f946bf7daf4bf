package utils

import (
	"sync"
	"time"
)

// ==================== 防抖调度器 ====================

// Handle 一次调度的句柄，可显式取消
type Handle struct {
	timer *time.Timer
	fn    func()
}

// Cancel 取消尚未触发的调度
func (h *Handle) Cancel() {
	if h != nil && h.timer != nil {
		h.timer.Stop()
	}
}

// Debouncer 按 key 防抖的调度器
// 同一 key 再次调度会取消上一次未触发的任务，
// 因此连续编辑只会触发最后一次回调
type Debouncer struct {
	mu      sync.Mutex
	pending map[string]*Handle
}

// NewDebouncer 创建防抖调度器
func NewDebouncer() *Debouncer {
	return &Debouncer{
		pending: make(map[string]*Handle),
	}
}

// Schedule 延迟执行 fn，返回本次调度的句柄
// 同一 key 上的旧调度被取消
func (d *Debouncer) Schedule(key string, delay time.Duration, fn func()) *Handle {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.pending[key]; ok {
		prev.Cancel()
	}

	h := &Handle{fn: fn}
	h.timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		if d.pending[key] == h {
			delete(d.pending, key)
		}
		d.mu.Unlock()

		fn()
	})

	d.pending[key] = h
	return h
}

// CancelKey 取消指定 key 上的未触发调度
func (d *Debouncer) CancelKey(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.pending[key]; ok {
		prev.Cancel()
		delete(d.pending, key)
	}
}

// Flush 立即同步触发指定 key 上的未触发调度
// 返回是否确实触发了一次回调
func (d *Debouncer) Flush(key string) bool {
	d.mu.Lock()
	h, ok := d.pending[key]
	if ok {
		delete(d.pending, key)
	}
	d.mu.Unlock()

	if ok && h.timer.Stop() {
		h.fn()
		return true
	}
	return false
}
