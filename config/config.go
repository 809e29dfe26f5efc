// Package config 读取 YAML 配置文件，并允许环境变量覆盖。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/snappdf/layout"
	"github.com/ByLCY/snappdf/storage"
)

// Config 是 snappdf 的全部配置项。
type Config struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	LogLevel string        `yaml:"log_level"`
	Page     PageConfig    `yaml:"page"`
	Export   ExportConfig  `yaml:"export"`
	Storage  StorageConfig `yaml:"storage"`
	Workers  int           `yaml:"workers"`
	// MaxUploadMB 限制 HTTP 上传的总大小。
	MaxUploadMB int64 `yaml:"max_upload_mb"`
}

// PageConfig 描述默认页面。
type PageConfig struct {
	Size        string `yaml:"size"`
	Orientation string `yaml:"orientation"`
	Margin      string `yaml:"margin"`
}

// ExportConfig 选择导出策略与文件命名。
type ExportConfig struct {
	Format       string        `yaml:"format"`        // canvas | fpdf | text
	NameTemplate string        `yaml:"name_template"` // 例如 ${name}_${timestamp}
	Background   *layout.Color `yaml:"background"`
	Share        bool          `yaml:"share"`
}

// StorageConfig 选择存储后端。
type StorageConfig struct {
	Driver string              `yaml:"driver"` // local | minio | memory
	Dir    string              `yaml:"dir"`
	MinIO  storage.MinIOConfig `yaml:"minio"`
}

// Default 返回未提供配置文件时使用的默认值。
func Default() Config {
	return Config{
		Host:     "0.0.0.0",
		Port:     8080,
		LogLevel: "info",
		Page:     PageConfig{Size: "A4", Orientation: "portrait", Margin: "10mm"},
		Export: ExportConfig{
			Format:       "canvas",
			NameTemplate: "${name}_${timestamp}",
		},
		Storage: StorageConfig{
			Driver: "local",
			Dir:    "output",
			MinIO:  storage.MinIOConfig{Bucket: "snappdf", LinkExpiry: 24 * time.Hour},
		},
		MaxUploadMB: 32,
	}
}

// Load 读取 path 指向的 YAML；文件不存在时使用默认值。随后应用环境变量覆盖并校验。
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg, os.Getenv)
	if _, err := cfg.PageSize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// PageSize 把页面配置转换为合成器使用的 PageSize。
func (c Config) PageSize() (layout.PageSize, error) {
	return layout.ParsePageSize(c.Page.Size, c.Page.Orientation, c.Page.Margin)
}

// Addr 返回 host:port。
func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func applyEnv(cfg *Config, getenv func(string) string) {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	str("SNAPPDF_HOST", &cfg.Host)
	if v := getenv("SNAPPDF_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	str("SNAPPDF_LOG_LEVEL", &cfg.LogLevel)
	str("SNAPPDF_PAGE_SIZE", &cfg.Page.Size)
	str("SNAPPDF_PAGE_ORIENTATION", &cfg.Page.Orientation)
	str("SNAPPDF_PAGE_MARGIN", &cfg.Page.Margin)
	str("SNAPPDF_FORMAT", &cfg.Export.Format)
	str("SNAPPDF_NAME_TEMPLATE", &cfg.Export.NameTemplate)
	str("SNAPPDF_STORAGE", &cfg.Storage.Driver)
	str("SNAPPDF_OUTPUT_DIR", &cfg.Storage.Dir)
	str("MINIO_ENDPOINT", &cfg.Storage.MinIO.Endpoint)
	str("MINIO_ACCESS_KEY", &cfg.Storage.MinIO.AccessKey)
	str("MINIO_SECRET_KEY", &cfg.Storage.MinIO.SecretKey)
	str("MINIO_BUCKET", &cfg.Storage.MinIO.Bucket)
	if v := getenv("MINIO_USE_SSL"); v != "" {
		if ssl, err := strconv.ParseBool(v); err == nil {
			cfg.Storage.MinIO.UseSSL = ssl
		}
	}
}
