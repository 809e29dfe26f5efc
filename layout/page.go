package layout

import (
	"fmt"
	"math"
	"strings"
)

// PageSize 描述输出页面：宽高与四边统一的边距（mm）。
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin float64 `json:"margin"`
}

// A4Portrait 是默认页面：A4 纵向，10mm 边距。
var A4Portrait = PageSize{Width: 210, Height: 297, Margin: 10}

const defaultMargin = 10.0

var pagePresets = map[string][2]float64{
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
}

// UsableWidth 返回扣除左右边距后的可打印宽度。
func (p PageSize) UsableWidth() float64 { return p.Width - 2*p.Margin }

// UsableHeight 返回扣除上下边距后的可打印高度。
func (p PageSize) UsableHeight() float64 { return p.Height - 2*p.Margin }

// Validate 检查尺寸均为有限值、2*margin 严格小于宽与高，且边距非负。
// 比较都写成正向形式，NaN 会落入失败分支。
func (p PageSize) Validate() error {
	if !finite(p.Width) || !finite(p.Height) || !finite(p.Margin) {
		return invalidInput("页面尺寸必须为有限值: %gx%g/%g", p.Width, p.Height, p.Margin)
	}
	if !(p.Width > 0) || !(p.Height > 0) {
		return invalidInput("页面尺寸必须为正数: %gx%g", p.Width, p.Height)
	}
	if !(p.Margin >= 0) {
		return invalidInput("边距不能为负数: %g", p.Margin)
	}
	if !(p.Margin*2 < p.Width) || !(p.Margin*2 < p.Height) {
		return invalidInput("边距 %gmm 超出页面 %gx%g 的可用范围", p.Margin, p.Width, p.Height)
	}
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// ParsePageSize 解析纸张名称、方向与边距，例如 ("A4", "landscape", "1.5cm")。
// 空方向视为 portrait，空边距使用默认 10mm。
func ParsePageSize(size, orientation, margin string) (PageSize, error) {
	if strings.TrimSpace(size) == "" {
		size = "A4"
	}
	base, ok := pagePresets[strings.ToUpper(strings.TrimSpace(size))]
	if !ok {
		return PageSize{}, invalidInput("暂不支持的纸张尺寸：%s", size)
	}
	page := PageSize{Width: base[0], Height: base[1], Margin: defaultMargin}

	switch strings.ToLower(strings.TrimSpace(orientation)) {
	case "", "portrait":
	case "landscape":
		page.Width, page.Height = page.Height, page.Width
	default:
		return PageSize{}, invalidInput("未知的页面方向：%s", orientation)
	}

	if strings.TrimSpace(margin) != "" {
		l, err := ParseLength(margin)
		if err != nil {
			return PageSize{}, invalidInput("边距 %q 无法解析: %v", margin, err)
		}
		page.Margin = l.ToMM()
	}
	if err := page.Validate(); err != nil {
		return PageSize{}, err
	}
	return page, nil
}

// String 以 210x297mm/10mm 的形式输出，便于日志。
func (p PageSize) String() string {
	return fmt.Sprintf("%gx%gmm/%gmm", p.Width, p.Height, p.Margin)
}
