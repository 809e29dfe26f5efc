package layout

import "math"

// Fit 计算单张图片在页面可打印区域内等比缩放并居中后的落点。
// 调用方需保证像素尺寸为正、页面合法；Compose 会先做这些检查。
func Fit(pixelWidth, pixelHeight int, page PageSize) Placement {
	pw := float64(pixelWidth)
	ph := float64(pixelHeight)
	// 两个轴使用同一个缩放系数，保证不变形
	scale := math.Min(page.UsableWidth()/pw, page.UsableHeight()/ph)
	w := pw * scale
	h := ph * scale
	return Placement{
		X:      (page.Width - w) / 2,
		Y:      (page.Height - h) / 2,
		Width:  w,
		Height: h,
	}
}

// Compose 为每张图片生成一页，页面顺序与输入一致。
// 任何一张图片不合法都会让整次调用失败，不会返回只有部分页面的文档。
func Compose(images []SourceImage, page PageSize) (*Document, error) {
	if len(images) == 0 {
		return nil, invalidInput("图片列表为空")
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}
	for i, img := range images {
		if img.PixelWidth <= 0 || img.PixelHeight <= 0 {
			return nil, invalidInput("第 %d 张图片 %s 的像素尺寸非法: %dx%d", i, img.Name, img.PixelWidth, img.PixelHeight)
		}
	}

	pages := make([]Page, 0, len(images))
	for _, img := range images {
		pages = append(pages, Page{
			Width:  page.Width,
			Height: page.Height,
			Margin: page.Margin,
			Image: ImageBox{
				Placement:   Fit(img.PixelWidth, img.PixelHeight, page),
				Name:        img.Name,
				Format:      img.Format,
				PixelWidth:  img.PixelWidth,
				PixelHeight: img.PixelHeight,
				Data:        img.Data,
			},
		})
	}
	return &Document{Pages: pages}, nil
}
