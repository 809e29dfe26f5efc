package layout

import (
	"errors"
	"fmt"
)

// ErrInvalidInput 表示输入本身不合法：空图片列表、非正像素尺寸或页面边距过大。
// 调用方通过 errors.Is 判断，具体原因在包裹的消息中。
var ErrInvalidInput = errors.New("layout: invalid input")

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// ImageDecodeError 表示第 Index 张图片无法解码出像素尺寸，整次合成因此中止。
type ImageDecodeError struct {
	Index int
	Name  string
	Err   error
}

func (e *ImageDecodeError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("layout: 解码第 %d 张图片 %s 失败: %v", e.Index, e.Name, e.Err)
	}
	return fmt.Sprintf("layout: 解码第 %d 张图片失败: %v", e.Index, e.Err)
}

func (e *ImageDecodeError) Unwrap() error { return e.Err }
