// Package imagecodec 读取图片头信息与像素数据，是合成器的图片来源实现。
package imagecodec

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/snappdf/layout"
)

// Codec 基于 image 包注册的解码器读取尺寸；jpeg/png/gif 之外还支持 bmp/tiff/webp。
type Codec struct{}

var _ layout.Decoder = Codec{}

// DecodeConfig 只解析文件头，返回像素宽高与格式名（如 "jpeg"、"png"）。
func (Codec) DecodeConfig(data []byte) (int, int, string, error) {
	if len(data) == 0 {
		return 0, 0, "", fmt.Errorf("图片数据为空")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", fmt.Errorf("读取图片头失败: %w", err)
	}
	return cfg.Width, cfg.Height, format, nil
}

// Decode 解码完整像素数据，供需要重新编码或栅格绘制的渲染器使用。
// 先读文件头，声明像素数超过 layout.DefaultMaxPixels 的图片不会被解码。
func Decode(data []byte) (image.Image, string, error) {
	w, h, _, err := Codec{}.DecodeConfig(data)
	if err != nil {
		return nil, "", err
	}
	if int64(w)*int64(h) > layout.DefaultMaxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d", layout.ErrImageTooLarge, w, h)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("解码图片失败: %w", err)
	}
	return img, format, nil
}

var imageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".webp": "image/webp",
}

// IsImage 按扩展名判断文件是否为支持的图片，非图片文件应在进入合成器之前被过滤掉。
func IsImage(name string) bool {
	_, ok := imageExts[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ContentType 返回扩展名对应的 MIME 类型，未知扩展名返回 application/octet-stream。
func ContentType(name string) string {
	if ct, ok := imageExts[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}
