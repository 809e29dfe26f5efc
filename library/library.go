// Package library 记录本次运行中生成或导入的文件，只保存在内存里。
package library

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ByLCY/snappdf/logging"
	"github.com/ByLCY/snappdf/storage"
)

// Kind 区分条目类型。
type Kind string

const (
	KindImage    Kind = "image"
	KindDocument Kind = "document"
	KindText     Kind = "text"
)

// Entry 是一条已保存文件的记录，Path 是存储后端返回的路径。
type Entry struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
}

// Library 是并发安全的内存登记表。
type Library struct {
	mu      sync.RWMutex
	entries []Entry
	log     logrus.FieldLogger
	now     func() time.Time
}

// New 创建空的登记表；log 为 nil 时不输出日志。
func New(log logrus.FieldLogger) *Library {
	return &Library{log: logging.Component(log, "library"), now: time.Now}
}

// Add 登记一个文件并返回新条目。
func (l *Library) Add(name, path string, kind Kind) Entry {
	e := Entry{
		ID:        uuid.New(),
		Name:      name,
		Path:      path,
		Kind:      kind,
		CreatedAt: l.now(),
	}
	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()
	return e
}

// List 按创建时间倒序返回所有条目的副本，同一时刻添加的条目后添加者在前。
func (l *Library) List() []Entry {
	l.mu.RLock()
	out := make([]Entry, 0, len(l.entries))
	for i := len(l.entries) - 1; i >= 0; i-- {
		out = append(out, l.entries[i])
	}
	l.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Len 返回条目数。
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Clear 删除所有条目对应的文件并清空登记表，返回实际删除的文件数。
// 已经不存在的文件只记录日志；其它删除错误会中止并保留未处理的条目。
func (l *Library) Clear(ctx context.Context, store storage.Store) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for i, e := range l.entries {
		if err := ctx.Err(); err != nil {
			l.entries = l.entries[i:]
			return removed, err
		}
		err := store.Delete(ctx, e.Path)
		switch {
		case err == nil:
			removed++
		case errors.Is(err, storage.ErrNotFound):
			l.log.WithFields(logrus.Fields{"category": "clear", "path": e.Path}).Warn("file already missing, skipped")
		default:
			l.entries = l.entries[i:]
			return removed, fmt.Errorf("failed to delete %s: %w", e.Path, err)
		}
	}
	l.entries = nil
	return removed, nil
}
