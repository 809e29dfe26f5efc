package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/snappdf/imagecodec"
	"github.com/ByLCY/snappdf/layout"
	"github.com/ByLCY/snappdf/renderer"
)

// Renderer draws composed pages to PDF via github.com/tdewolff/canvas.
type Renderer struct {
	// Background 非 nil 时先铺满整页底色（扫描件常用白底）。
	Background *layout.Color
}

var _ renderer.Renderer = (*Renderer)(nil)

// NewRenderer creates a canvas-based PDF renderer.
func NewRenderer() *Renderer { return &Renderer{} }

func (r *Renderer) Extension() string   { return "pdf" }
func (r *Renderer) ContentType() string { return "application/pdf" }

// Render renders the document into a PDF byte slice, one PDF page per layout page.
func (r *Renderer) Render(doc *layout.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, doc.Pages[0].Width, doc.Pages[0].Height, nil)
	applyMeta(writer, doc.Meta)
	for i, page := range doc.Pages {
		if i > 0 {
			writer.NewPage(page.Width, page.Height)
		}
		c := canvas.New(page.Width, page.Height)
		ctx := canvas.NewContext(c)
		if err := r.drawPage(ctx, page); err != nil {
			return nil, fmt.Errorf("绘制第 %d 页失败: %w", i+1, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page) error {
	if r.Background != nil {
		ctx.SetFillColor(colorFromLayout(*r.Background))
		ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
		ctx.DrawPath(0, 0, canvas.Rectangle(page.Width, page.Height))
	}
	return drawImage(ctx, page)
}

// drawImage 在落点处绘制图片。布局坐标以左上角为原点，
// canvas 默认坐标以左下角为原点，这里换算 y。
func drawImage(ctx *canvas.Context, page layout.Page) error {
	box := page.Image
	if len(box.Data) == 0 {
		return fmt.Errorf("图片 %s 没有数据", box.Name)
	}
	img, _, err := imagecodec.Decode(box.Data)
	if err != nil {
		return fmt.Errorf("图片 %s: %w", box.Name, err)
	}
	if box.Width <= 0 {
		return fmt.Errorf("图片 %s 的渲染宽度非法: %g", box.Name, box.Width)
	}
	dpmm := float64(img.Bounds().Dx()) / box.Width
	bottom := page.Height - (box.Y + box.Height)
	ctx.DrawImage(box.X, bottom, img, canvas.DPMM(dpmm))
	return nil
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
