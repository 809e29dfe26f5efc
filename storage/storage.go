// Package storage 负责按路径读写、删除、复制文件，并为文件生成可分享的链接。
package storage

import (
	"context"
	"errors"
)

// ErrNotFound 表示路径对应的文件不存在。
var ErrNotFound = errors.New("storage: not found")

// Store 是文件存储的抽象，path 为各实现内部使用的相对路径。
type Store interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
	Copy(ctx context.Context, src, dst string) (string, error)
	// Link 返回可交给分享面板或客户端的地址。
	Link(ctx context.Context, path string) (string, error)
}
