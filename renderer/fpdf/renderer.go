package fpdfrenderer

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"
	"time"

	"codeberg.org/go-pdf/fpdf"

	"github.com/ByLCY/snappdf/imagecodec"
	"github.com/ByLCY/snappdf/layout"
	"github.com/ByLCY/snappdf/renderer"
)

// Renderer writes composed pages with codeberg.org/go-pdf/fpdf.
// JPEG/PNG/GIF bytes are embedded as-is; other formats are re-encoded to PNG first.
type Renderer struct {
	// Now 用于写入 PDF 的创建时间，测试中可固定。
	Now func() time.Time
}

var _ renderer.Renderer = (*Renderer)(nil)

// NewRenderer creates an fpdf-based PDF renderer.
func NewRenderer() *Renderer { return &Renderer{Now: time.Now} }

func (r *Renderer) Extension() string   { return "pdf" }
func (r *Renderer) ContentType() string { return "application/pdf" }

// Render encodes the document as PDF with one page per layout page.
func (r *Renderer) Render(doc *layout.Document) ([]byte, error) {
	if doc == nil || len(doc.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}
	first := doc.Pages[0]
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: first.Width, Ht: first.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	applyMeta(pdf, doc.Meta, r.now())

	for i, page := range doc.Pages {
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: page.Width, Ht: page.Height})
		data, imageType, err := embeddable(page.Image)
		if err != nil {
			return nil, fmt.Errorf("第 %d 页: %w", i+1, err)
		}
		name := fmt.Sprintf("page-%d", i)
		opts := fpdf.ImageOptions{ReadDpi: false, ImageType: imageType}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		box := page.Image
		pdf.ImageOptions(name, box.X, box.Y, box.Width, box.Height, false, opts, 0, "")
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("第 %d 页写入图片 %s 失败: %w", i+1, box.Name, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func applyMeta(pdf *fpdf.Fpdf, meta layout.DocumentMeta, now time.Time) {
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetSubject(meta.Subject, true)
	pdf.SetCreator(meta.Creator, true)
	pdf.SetKeywords(strings.Join(meta.Keywords, " "), true)
	created := meta.Created
	if created.IsZero() {
		created = now
	}
	pdf.SetCreationDate(created)
}

// embeddable 返回 fpdf 能直接识别的字节与类型名。
func embeddable(box layout.ImageBox) ([]byte, string, error) {
	switch strings.ToLower(box.Format) {
	case "jpeg", "jpg":
		return box.Data, "JPG", nil
	case "png":
		return box.Data, "PNG", nil
	case "gif":
		return box.Data, "GIF", nil
	}
	img, _, err := imagecodec.Decode(box.Data)
	if err != nil {
		return nil, "", fmt.Errorf("图片 %s: %w", box.Name, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("图片 %s 转为 PNG 失败: %w", box.Name, err)
	}
	return buf.Bytes(), "PNG", nil
}
