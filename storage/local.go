package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Local 把文件保存在 Root 目录下。
type Local struct {
	Root string
}

var _ Store = (*Local)(nil)

// NewLocal 创建根目录（如不存在）并返回本地存储。
func NewLocal(root string) (*Local, error) {
	if root == "" {
		return nil, fmt.Errorf("storage: 本地存储目录为空")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("创建存储目录 %s 失败: %w", root, err)
	}
	return &Local{Root: root}, nil
}

// resolve 拒绝跳出根目录的路径。
func (l *Local) resolve(path string) (string, error) {
	clean := filepath.Clean("/" + filepath.ToSlash(path))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." {
		return "", fmt.Errorf("storage: 非法路径 %q", path)
	}
	return filepath.Join(l.Root, filepath.FromSlash(clean)), nil
}

func (l *Local) Put(ctx context.Context, name string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full, err := l.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("创建目录失败: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("写入文件 %s 失败: %w", name, err)
	}
	return l.rel(full), nil
}

func (l *Local) Get(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("读取文件 %s 失败: %w", path, err)
	}
	return data, nil
}

func (l *Local) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := l.resolve(path)
	if err != nil {
		return err
	}
	err = os.Remove(full)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return err
}

func (l *Local) Copy(ctx context.Context, src, dst string) (string, error) {
	data, err := l.Get(ctx, src)
	if err != nil {
		return "", err
	}
	return l.Put(ctx, dst, data, "")
}

// Link 返回 file:// 绝对地址。
func (l *Local) Link(ctx context.Context, path string) (string, error) {
	full, err := l.resolve(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(full); errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	abs, err := filepath.Abs(full)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

func (l *Local) rel(full string) string {
	rel, err := filepath.Rel(l.Root, full)
	if err != nil {
		return full
	}
	return filepath.ToSlash(rel)
}
