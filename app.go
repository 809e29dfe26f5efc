package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ByLCY/snappdf/api"
	"github.com/ByLCY/snappdf/config"
	"github.com/ByLCY/snappdf/export"
	"github.com/ByLCY/snappdf/imagecodec"
	"github.com/ByLCY/snappdf/layout"
	"github.com/ByLCY/snappdf/library"
	"github.com/ByLCY/snappdf/logging"
	"github.com/ByLCY/snappdf/renderer"
	canvasrenderer "github.com/ByLCY/snappdf/renderer/canvas"
	fpdfrenderer "github.com/ByLCY/snappdf/renderer/fpdf"
	textrenderer "github.com/ByLCY/snappdf/renderer/text"
	"github.com/ByLCY/snappdf/storage"
)

// newRegistry 登记全部导出策略。
func newRegistry(cfg config.Config) *renderer.Registry {
	reg := renderer.NewRegistry()
	reg.Register("canvas", func() renderer.Renderer {
		r := canvasrenderer.NewRenderer()
		r.Background = cfg.Export.Background
		return r
	})
	reg.Register("fpdf", func() renderer.Renderer { return fpdfrenderer.NewRenderer() })
	reg.Register("text", func() renderer.Renderer { return textrenderer.NewRenderer() })
	return reg
}

// newStore 按 driver 选择存储后端。
func newStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "local":
		return storage.NewLocal(cfg.Dir)
	case "minio":
		return storage.NewMinIO(ctx, cfg.MinIO)
	case "memory":
		return storage.NewMemory(), nil
	default:
		return nil, fmt.Errorf("未知的存储后端 %q", cfg.Driver)
	}
}

// serve 启动 HTTP 服务，ctx 结束时优雅关闭。
func serve(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	store, err := newStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	lib := library.New(log)
	h := &api.Handler{
		Exporter: &export.Exporter{
			Renderers:    newRegistry(cfg),
			Store:        store,
			Library:      lib,
			Logger:       log,
			NameTemplate: cfg.Export.NameTemplate,
		},
		Library:   lib,
		Store:     store,
		Decode:    layout.DecodeOptions{Decoder: imagecodec.Codec{}, Workers: cfg.Workers},
		Page:      cfg.Page,
		Format:    cfg.Export.Format,
		MaxUpload: cfg.MaxUploadMB << 20,
		Log:       log,
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	entry := logging.Component(log, "server")

	errCh := make(chan error, 1)
	go func() {
		entry.WithField("addr", srv.Addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		entry.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
