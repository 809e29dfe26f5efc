package layout

import "time"

// 该文件定义合成结果与输入图片描述，供合成、导出与调试 JSON 共用。

// Document 保存一次合成得到的页面，页面顺序与输入图片顺序一致。
type Document struct {
	Pages []Page       `json:"pages"`
	Meta  DocumentMeta `json:"meta"`
}

// Page 记录页面尺寸、边距以及放置在页面上的唯一一张图片（单位：mm）。
type Page struct {
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	Margin float64  `json:"margin"`
	Image  ImageBox `json:"image"`
}

// Placement 是图片在页面上的落点与渲染尺寸。
type Placement struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ImageBox 将落点与原始图片数据关联起来，渲染器只读取其中的字节。
type ImageBox struct {
	Placement
	Name        string `json:"name"`
	Format      string `json:"format"`
	PixelWidth  int    `json:"pixelWidth"`
	PixelHeight int    `json:"pixelHeight"`
	Data        []byte `json:"-"`
}

// SourceImage 是待合成的一张图片：像素尺寸、编码后的字节与格式标记。
type SourceImage struct {
	Name        string
	PixelWidth  int
	PixelHeight int
	Data        []byte
	Format      string
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string    `json:"title"`
	Author   string    `json:"author"`
	Subject  string    `json:"subject"`
	Creator  string    `json:"creator"`
	Keywords []string  `json:"keywords"`
	Created  time.Time `json:"created"` // 由调用方填写，零值表示未知
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r" yaml:"r"`
	G int `json:"g" yaml:"g"`
	B int `json:"b" yaml:"b"`
}
