// Package textrenderer 输出纯文本报告，对应早期版本中以 .txt 保存的"PDF 报告"。
package textrenderer

import (
	"fmt"
	"strings"
	"time"

	"github.com/ByLCY/snappdf/layout"
	"github.com/ByLCY/snappdf/renderer"
)

// Renderer 逐页列出图片名称、像素尺寸与落点。
type Renderer struct {
	// Location 控制创建时间的显示时区，nil 时使用 UTC。
	Location *time.Location
}

var _ renderer.Renderer = (*Renderer)(nil)

func NewRenderer() *Renderer { return &Renderer{} }

func (r *Renderer) Extension() string   { return "txt" }
func (r *Renderer) ContentType() string { return "text/plain; charset=utf-8" }

func (r *Renderer) Render(doc *layout.Document) ([]byte, error) {
	if doc == nil || len(doc.Pages) == 0 {
		return nil, fmt.Errorf("缺少可输出的页面")
	}
	var b strings.Builder
	title := doc.Meta.Title
	if title == "" {
		title = "(untitled)"
	}
	b.WriteString("PDF REPORT\n==========\n\n")
	fmt.Fprintf(&b, "Title:   %s\n", title)
	if doc.Meta.Author != "" {
		fmt.Fprintf(&b, "Author:  %s\n", doc.Meta.Author)
	}
	if !doc.Meta.Created.IsZero() {
		loc := r.Location
		if loc == nil {
			loc = time.UTC
		}
		fmt.Fprintf(&b, "Created: %s\n", doc.Meta.Created.In(loc).Format("2006-01-02 15:04:05"))
	}
	if len(doc.Meta.Keywords) > 0 {
		fmt.Fprintf(&b, "Tags:    %s\n", strings.Join(doc.Meta.Keywords, ", "))
	}
	fmt.Fprintf(&b, "Pages:   %d\n\n", len(doc.Pages))

	for i, p := range doc.Pages {
		img := p.Image
		fmt.Fprintf(&b, "[%d] %s (%s, %dx%d px)\n", i+1, img.Name, img.Format, img.PixelWidth, img.PixelHeight)
		fmt.Fprintf(&b, "    page %.1fx%.1fmm margin %.1fmm -> at (%.2f, %.2f) size %.2fx%.2fmm\n",
			p.Width, p.Height, p.Margin, img.X, img.Y, img.Width, img.Height)
	}
	return []byte(b.String()), nil
}
