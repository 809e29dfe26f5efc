package layout

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ReadSources 并发读取每个输入的像素尺寸，返回顺序与 inputs 完全一致。
// 出错时返回下标最小的 *ImageDecodeError；ctx 被取消时返回 ctx 的错误，且不返回任何图片。
func ReadSources(ctx context.Context, inputs []Input, opts DecodeOptions) ([]SourceImage, error) {
	if len(inputs) == 0 {
		return nil, invalidInput("图片列表为空")
	}
	if opts.Decoder == nil {
		return nil, fmt.Errorf("layout: 缺少图片解码器 Decoder")
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	maxPixels := opts.MaxPixels
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	images := make([]SourceImage, len(inputs))
	errs := make([]error, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			w, h, format, err := opts.Decoder.DecodeConfig(in.Data)
			if err != nil {
				errs[i] = err
				return nil
			}
			if int64(w)*int64(h) > maxPixels {
				errs[i] = fmt.Errorf("%w: %dx%d 超过 %d 像素上限", ErrImageTooLarge, w, h, maxPixels)
				return nil
			}
			images[i] = SourceImage{
				Name:        in.Name,
				PixelWidth:  w,
				PixelHeight: h,
				Data:        in.Data,
				Format:      format,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, err := range errs {
		if err != nil {
			return nil, &ImageDecodeError{Index: i, Name: inputs[i].Name, Err: err}
		}
	}
	return images, nil
}

// ComposeInputs 先读取尺寸，再按输入顺序合成文档。
func ComposeInputs(ctx context.Context, inputs []Input, page PageSize, opts DecodeOptions) (*Document, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	images, err := ReadSources(ctx, inputs, opts)
	if err != nil {
		return nil, err
	}
	return Compose(images, page)
}
