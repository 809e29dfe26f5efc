package renderer

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ByLCY/snappdf/layout"
)

// Renderer 将合成结果编码为最终文件，例如 PDF 或纯文本报告。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(doc *layout.Document) ([]byte, error)
	Extension() string
	ContentType() string
}

// ErrUnknownFormat 表示没有以该名称登记的导出策略。
var ErrUnknownFormat = errors.New("renderer: unknown format")

// Factory 创建一个新的渲染器实例。
type Factory func() Renderer

// Registry 按名称登记导出策略，由配置决定使用哪一个。
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry 返回一个空的登记表。
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register 以小写名称登记工厂，重复登记时后者覆盖前者。
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[strings.ToLower(name)] = f
}

// New 创建名为 name 的渲染器。
func (r *Registry) New(name string) (Renderer, error) {
	r.mu.RLock()
	f, ok := r.factories[strings.ToLower(strings.TrimSpace(name))]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q（可用：%s）", ErrUnknownFormat, name, strings.Join(r.Names(), ", "))
	}
	return f(), nil
}

// Names 返回已登记的名称，按字母排序。
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
