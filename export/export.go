// Package export 把合成好的文档交给导出策略编码，再写入存储并登记到文件库。
package export

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ByLCY/snappdf/binding"
	"github.com/ByLCY/snappdf/imagecodec"
	"github.com/ByLCY/snappdf/layout"
	"github.com/ByLCY/snappdf/library"
	"github.com/ByLCY/snappdf/logging"
	"github.com/ByLCY/snappdf/renderer"
	"github.com/ByLCY/snappdf/storage"
)

// DefaultNameTemplate 在未配置模板时使用。
const DefaultNameTemplate = "${name}_${timestamp}"

// Exporter 串联渲染、命名、存储与登记。
type Exporter struct {
	Renderers    *renderer.Registry
	Store        storage.Store
	Library      *library.Library
	Logger       logrus.FieldLogger
	NameTemplate string
	Now          func() time.Time
}

// Options 控制单次导出。
type Options struct {
	Format string
	// Name 填入模板中的 ${name}，为空时使用文档标题。
	Name  string
	Share bool
}

// Result 描述一次成功的导出。Link 仅在请求分享时填写。
type Result struct {
	Entry library.Entry
	Link  string
	Size  int
	Pages int
}

// Export 渲染 doc 并保存。任何一步失败都不会登记条目，已写入的文件会被删除。
func (e *Exporter) Export(ctx context.Context, doc *layout.Document, opts Options) (Result, error) {
	if doc == nil || len(doc.Pages) == 0 {
		return Result{}, fmt.Errorf("export: %w: 文档没有页面", layout.ErrInvalidInput)
	}
	if e.Renderers == nil || e.Store == nil {
		return Result{}, fmt.Errorf("export: 未配置渲染器或存储")
	}
	r, err := e.Renderers.New(opts.Format)
	if err != nil {
		return Result{}, err
	}
	log := logging.Component(e.Logger, "export").WithField("category", opts.Format)

	data, err := r.Render(doc)
	if err != nil {
		return Result{}, fmt.Errorf("failed to render %s: %w", opts.Format, err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = doc.Meta.Title
	}
	tmpl := e.NameTemplate
	if tmpl == "" {
		tmpl = DefaultNameTemplate
	}
	fileName := binding.FileName(tmpl, binding.Vars(name, e.now()), r.Extension())

	path, err := e.Store.Put(ctx, fileName, data, r.ContentType())
	if err != nil {
		return Result{}, fmt.Errorf("failed to store %s: %w", fileName, err)
	}

	res := Result{Size: len(data), Pages: len(doc.Pages)}
	if opts.Share {
		link, err := e.Store.Link(ctx, path)
		if err != nil {
			if delErr := e.Store.Delete(ctx, path); delErr != nil {
				log.WithError(delErr).WithField("path", path).Warn("failed to remove unshared document")
			}
			return Result{}, fmt.Errorf("failed to share %s: %w", fileName, err)
		}
		res.Link = link
	}

	kind := library.KindDocument
	if r.Extension() == "txt" {
		kind = library.KindText
	}
	if e.Library != nil {
		res.Entry = e.Library.Add(fileName, path, kind)
	} else {
		res.Entry = library.Entry{Name: fileName, Path: path, Kind: kind}
	}

	log.WithFields(logrus.Fields{"path": path, "pages": res.Pages, "bytes": res.Size}).Info("document exported")
	return res, nil
}

// imageNameTemplate 为保存的源图片命名，短 uuid 保证同名上传不会互相覆盖。
const imageNameTemplate = "${name}_${stamp}_${id}"

// SaveImage 原样保存一张源图片并登记为 image 条目。
func (e *Exporter) SaveImage(ctx context.Context, name string, data []byte) (library.Entry, error) {
	if e.Store == nil {
		return library.Entry{}, fmt.Errorf("export: 未配置存储")
	}
	if !imagecodec.IsImage(name) {
		return library.Entry{}, fmt.Errorf("export: %w: %s 不是支持的图片", layout.ErrInvalidInput, name)
	}
	ext := filepath.Ext(name)
	vars := binding.Vars(strings.TrimSuffix(filepath.Base(name), ext), e.now())
	vars["stamp"] = e.now().Format("20060102_150405")
	vars["id"] = uuid.New().String()[:8]
	fileName := binding.FileName(imageNameTemplate, vars, strings.TrimPrefix(ext, "."))
	path, err := e.Store.Put(ctx, fileName, data, imagecodec.ContentType(name))
	if err != nil {
		return library.Entry{}, fmt.Errorf("failed to store %s: %w", fileName, err)
	}
	if e.Library == nil {
		return library.Entry{Name: fileName, Path: path, Kind: library.KindImage}, nil
	}
	return e.Library.Add(fileName, path, library.KindImage), nil
}

func (e *Exporter) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}
