package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/speedata/optionparser"

	"github.com/ByLCY/snappdf/binding"
	"github.com/ByLCY/snappdf/config"
	"github.com/ByLCY/snappdf/dsl"
	"github.com/ByLCY/snappdf/export"
	"github.com/ByLCY/snappdf/imagecodec"
	"github.com/ByLCY/snappdf/layout"
	"github.com/ByLCY/snappdf/library"
	"github.com/ByLCY/snappdf/logging"
)

// composeOptions 收集 compose 子命令的参数。
type composeOptions struct {
	Manifest string
	Images   []string
	Format   string
	OutDir   string
	Debug    string
	Data     string
	Name     string
	Share    bool
}

func main() {
	var (
		configPath = "config.yaml"
		opts       composeOptions
	)
	op := optionparser.NewOptionParser()
	op.Banner = "snappdf - 把图片按顺序排入 PDF 页面\n\nUsage: snappdf [options] compose|serve [images...]"
	op.On("--config FILE", "配置文件路径（默认 config.yaml）", &configPath)
	op.On("--manifest FILE", "合成清单文件", &opts.Manifest)
	op.On("--format NAME", "导出格式：canvas、fpdf 或 text", &opts.Format)
	op.On("--out DIR", "输出目录，覆盖配置中的 storage.dir", &opts.OutDir)
	op.On("--debug FILE", "布局调试 JSON 输出路径", &opts.Debug)
	op.On("--data JSON", "绑定到清单的 JSON 数据", &opts.Data)
	op.On("--name NAME", "文档名称，填入命名模板中的 ${name}", &opts.Name)
	op.On("--share", "生成分享链接", &opts.Share)
	op.Command("compose", "合成图片并导出")
	op.Command("serve", "启动 HTTP 服务")
	if err := op.Parse(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		op.Help()
		os.Exit(-1)
	}
	if len(op.Extra) == 0 {
		op.Help()
		os.Exit(-1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch op.Extra[0] {
	case "compose":
		opts.Images = op.Extra[1:]
		res, err := runCompose(ctx, cfg, opts, log)
		if err != nil {
			log.Fatalf("生成文档失败: %v", err)
		}
		fmt.Printf("已生成文档：%s（%d 页）\n", res.Entry.Path, res.Pages)
		if res.Link != "" {
			fmt.Printf("分享链接：%s\n", res.Link)
		}
	case "serve":
		if err := serve(ctx, cfg, log); err != nil {
			log.Fatalf("服务退出: %v", err)
		}
	default:
		op.Help()
		os.Exit(-1)
	}
}

// runCompose 串联读取、合成与导出。
func runCompose(ctx context.Context, cfg config.Config, opts composeOptions, log *logrus.Logger) (export.Result, error) {
	if opts.OutDir != "" {
		cfg.Storage.Dir = opts.OutDir
	}
	if opts.Format == "" {
		opts.Format = cfg.Export.Format
	}

	var (
		paths []string
		page  layout.PageSize
		meta  layout.DocumentMeta
		err   error
	)
	if opts.Manifest != "" {
		plan, err := loadPlan(opts.Manifest, opts.Data, opts.Name)
		if err != nil {
			return export.Result{}, err
		}
		paths, page, meta = plan.Images, plan.Page, plan.Meta
	} else {
		for _, p := range opts.Images {
			if imagecodec.IsImage(p) {
				paths = append(paths, p)
			} else {
				logging.Component(log, "compose").WithField("path", p).Warn("不是图片文件，已忽略")
			}
		}
		if page, err = cfg.PageSize(); err != nil {
			return export.Result{}, err
		}
		meta.Title = opts.Name
	}
	if len(paths) == 0 {
		return export.Result{}, fmt.Errorf("%w: 没有可合成的图片", layout.ErrInvalidInput)
	}

	inputs, err := readInputs(paths)
	if err != nil {
		return export.Result{}, err
	}
	doc, err := layout.ComposeInputs(ctx, inputs, page, layout.DecodeOptions{
		Decoder: imagecodec.Codec{},
		Workers: cfg.Workers,
	})
	if err != nil {
		return export.Result{}, fmt.Errorf("合成失败: %w", err)
	}
	if meta.Creator == "" {
		meta.Creator = "snappdf"
	}
	if meta.Created.IsZero() {
		meta.Created = time.Now()
	}
	doc.Meta = meta

	if opts.Debug != "" {
		if err := writeDebug(doc, opts.Debug); err != nil {
			return export.Result{}, err
		}
	}

	store, err := newStore(ctx, cfg.Storage)
	if err != nil {
		return export.Result{}, err
	}
	exporter := &export.Exporter{
		Renderers:    newRegistry(cfg),
		Store:        store,
		Library:      library.New(log),
		Logger:       log,
		NameTemplate: cfg.Export.NameTemplate,
	}
	return exporter.Export(ctx, doc, export.Options{
		Format: opts.Format,
		Name:   opts.Name,
		Share:  opts.Share || cfg.Export.Share,
	})
}

// loadPlan 解析清单；相对图片路径以清单所在目录为基准。
func loadPlan(path, dataJSON, name string) (layout.Plan, error) {
	file, err := os.Open(path)
	if err != nil {
		return layout.Plan{}, fmt.Errorf("无法打开清单文件 %s: %w", path, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return layout.Plan{}, fmt.Errorf("解析清单失败: %w", err)
	}

	if name == "" {
		name = doc.Name
	}
	data := binding.Vars(name, time.Now())
	if dataJSON != "" {
		var extra map[string]any
		if err := json.Unmarshal([]byte(dataJSON), &extra); err != nil {
			return layout.Plan{}, fmt.Errorf("解析 data JSON 失败: %w", err)
		}
		for k, v := range extra {
			data[k] = v
		}
	}

	plan, err := layout.PlanFromManifest(doc, data)
	if err != nil {
		return layout.Plan{}, err
	}
	base := filepath.Dir(path)
	for i, img := range plan.Images {
		if !filepath.IsAbs(img) {
			plan.Images[i] = filepath.Join(base, img)
		}
	}
	return plan, nil
}

func readInputs(paths []string) ([]layout.Input, error) {
	inputs := make([]layout.Input, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("读取图片 %s 失败: %w", p, err)
		}
		inputs = append(inputs, layout.Input{Name: filepath.Base(p), Data: data})
	}
	return inputs, nil
}

func writeDebug(doc *layout.Document, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(doc, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
