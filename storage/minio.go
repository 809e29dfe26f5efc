package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig 描述对象存储连接；Prefix 会加在每个对象名前。
type MinIOConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	AccessKey  string        `yaml:"access_key"`
	SecretKey  string        `yaml:"secret_key"`
	Bucket     string        `yaml:"bucket"`
	UseSSL     bool          `yaml:"use_ssl"`
	Prefix     string        `yaml:"prefix"`
	LinkExpiry time.Duration `yaml:"link_expiry"`
}

// MinIO 把文件保存在 S3 兼容的对象存储中，分享链接为预签名 URL。
type MinIO struct {
	client *minio.Client
	cfg    MinIOConfig
	now    func() time.Time
}

var _ Store = (*MinIO)(nil)

// NewMinIO 创建客户端并确认 bucket 存在。
func NewMinIO(ctx context.Context, cfg MinIOConfig) (*MinIO, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("storage: MinIO endpoint 与 bucket 不能为空")
	}
	if cfg.LinkExpiry <= 0 {
		cfg.LinkExpiry = 24 * time.Hour
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", cfg.Bucket)
	}
	return &MinIO{client: client, cfg: cfg, now: time.Now}, nil
}

// objectName 生成 {prefix}/YYYY/MM/{name}。
func (m *MinIO) objectName(name string) string {
	now := m.now()
	return path.Join(m.cfg.Prefix, fmt.Sprintf("%d/%02d", now.Year(), now.Month()), path.Base("/"+name))
}

func (m *MinIO) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	object := m.objectName(name)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := m.client.PutObject(ctx, m.cfg.Bucket, object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", name, err)
	}
	return object, nil
}

func (m *MinIO) Get(ctx context.Context, object string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.cfg.Bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, m.wrap(object, err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, m.wrap(object, err)
	}
	return data, nil
}

// Delete 先 Stat 再删除，因为 RemoveObject 对不存在的对象不会报错。
func (m *MinIO) Delete(ctx context.Context, object string) error {
	if _, err := m.client.StatObject(ctx, m.cfg.Bucket, object, minio.StatObjectOptions{}); err != nil {
		return m.wrap(object, err)
	}
	if err := m.client.RemoveObject(ctx, m.cfg.Bucket, object, minio.RemoveObjectOptions{}); err != nil {
		return m.wrap(object, err)
	}
	return nil
}

func (m *MinIO) Copy(ctx context.Context, src, dst string) (string, error) {
	object := m.objectName(dst)
	_, err := m.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: m.cfg.Bucket, Object: object},
		minio.CopySrcOptions{Bucket: m.cfg.Bucket, Object: src},
	)
	if err != nil {
		return "", m.wrap(src, err)
	}
	return object, nil
}

// Link 生成有效期为 LinkExpiry 的预签名下载地址。
func (m *MinIO) Link(ctx context.Context, object string) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.cfg.Bucket, object, m.cfg.LinkExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return u.String(), nil
}

func (m *MinIO) wrap(object string, err error) error {
	code := minio.ToErrorResponse(err).Code
	if code == "NoSuchKey" || code == "NotFoundObject" || strings.Contains(strings.ToLower(code), "notfound") {
		return fmt.Errorf("%w: %s", ErrNotFound, object)
	}
	return fmt.Errorf("storage: %s: %w", object, err)
}
