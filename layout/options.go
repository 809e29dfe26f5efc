package layout

import "errors"

// DecodeOptions 配置读取图片尺寸阶段所需的依赖。
type DecodeOptions struct {
	Decoder Decoder
	Workers int // 并发读取尺寸的上限，<=0 时使用 GOMAXPROCS
	// MaxPixels 限制单张图片声明的像素数（宽*高），<=0 时使用 DefaultMaxPixels。
	MaxPixels int64
}

// DefaultMaxPixels 约为 8000x8000，渲染器完整解码时按 4 字节/像素计不超过约 256MB。
const DefaultMaxPixels int64 = 64 << 20

// ErrImageTooLarge 表示图片声明的像素数超过上限。
var ErrImageTooLarge = errors.New("layout: image too large")

// Decoder 负责从编码后的字节中读出像素尺寸与格式，通常只需读取文件头。
type Decoder interface {
	DecodeConfig(data []byte) (width, height int, format string, err error)
}

// Input 是一份尚未解码的图片文件。
type Input struct {
	Name string
	Data []byte
}
