package storage

import (
	"context"
	"fmt"
	"sync"
)

// Memory 是进程内存储，用于 serve 的临时模式与测试。
type Memory struct {
	mu    sync.RWMutex
	files map[string][]byte
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory { return &Memory{files: map[string][]byte{}} }

func (m *Memory) Put(_ context.Context, name string, data []byte, _ string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("storage: 文件名为空")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = append([]byte(nil), data...)
	return name, nil
}

func (m *Memory) Get(_ context.Context, path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return append([]byte(nil), data...), nil
}

func (m *Memory) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[path]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	delete(m.files, path)
	return nil
}

func (m *Memory) Copy(ctx context.Context, src, dst string) (string, error) {
	data, err := m.Get(ctx, src)
	if err != nil {
		return "", err
	}
	return m.Put(ctx, dst, data, "")
}

func (m *Memory) Link(_ context.Context, path string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.files[path]; !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return "mem://" + path, nil
}

// Len 返回当前保存的文件数。
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
