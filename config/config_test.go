package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ByLCY/snappdf/layout"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	page, err := cfg.PageSize()
	if err != nil {
		t.Fatalf("PageSize error: %v", err)
	}
	if page != layout.A4Portrait {
		t.Fatalf("expected A4 portrait default, got %v", page)
	}
	if cfg.Export.Format != "canvas" || cfg.Storage.Driver != "local" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlText := `
port: 9090
page:
  size: A5
  orientation: landscape
  margin: 5mm
export:
  format: fpdf
  name_template: "scan_${date}"
  background: {r: 255, g: 255, b: 255}
storage:
  driver: minio
  minio:
    endpoint: localhost:9000
    bucket: docs
    link_expiry: 2h
`
	if err := os.WriteFile(path, []byte(yamlText), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Port != 9090 || cfg.Export.Format != "fpdf" || cfg.Export.NameTemplate != "scan_${date}" {
		t.Fatalf("yaml values not applied: %+v", cfg)
	}
	if cfg.Export.Background == nil || cfg.Export.Background.G != 255 {
		t.Fatalf("background not parsed: %+v", cfg.Export.Background)
	}
	if cfg.Storage.MinIO.Endpoint != "localhost:9000" || cfg.Storage.MinIO.LinkExpiry != 2*time.Hour {
		t.Fatalf("minio config not parsed: %+v", cfg.Storage.MinIO)
	}
	page, _ := cfg.PageSize()
	if page != (layout.PageSize{Width: 210, Height: 148, Margin: 5}) {
		t.Fatalf("unexpected page: %v", page)
	}
}

func TestLoadRejectsBadPage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("page:\n  margin: 200mm\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for oversize margin")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	env := map[string]string{
		"PORT":            "7000",
		"SNAPPDF_FORMAT":  "text",
		"MINIO_ENDPOINT":  "minio:9000",
		"MINIO_USE_SSL":   "true",
		"SNAPPDF_STORAGE": "memory",
	}
	applyEnv(&cfg, func(k string) string { return env[k] })
	if cfg.Port != 7000 || cfg.Export.Format != "text" || cfg.Storage.Driver != "memory" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.Storage.MinIO.Endpoint != "minio:9000" || !cfg.Storage.MinIO.UseSSL {
		t.Fatalf("minio env overrides not applied: %+v", cfg.Storage.MinIO)
	}
	if cfg.Addr() != "0.0.0.0:7000" {
		t.Fatalf("unexpected addr %s", cfg.Addr())
	}
}

func TestApplyEnvUseSSLBool(t *testing.T) {
	cases := map[string]bool{"1": true, "TRUE": true, "True": true, "0": false, "false": false}
	for v, want := range cases {
		cfg := Default()
		cfg.Storage.MinIO.UseSSL = !want
		applyEnv(&cfg, func(k string) string {
			if k == "MINIO_USE_SSL" {
				return v
			}
			return ""
		})
		if cfg.Storage.MinIO.UseSSL != want {
			t.Fatalf("MINIO_USE_SSL=%q: got %v want %v", v, cfg.Storage.MinIO.UseSSL, want)
		}
	}
	cfg := Default()
	cfg.Storage.MinIO.UseSSL = true
	applyEnv(&cfg, func(k string) string {
		if k == "MINIO_USE_SSL" {
			return "maybe"
		}
		return ""
	})
	if !cfg.Storage.MinIO.UseSSL {
		t.Fatalf("unparsable MINIO_USE_SSL should leave the value unchanged")
	}
}

func TestLoadRejectsNaNMargin(t *testing.T) {
	t.Setenv("SNAPPDF_PAGE_MARGIN", "nan")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for NaN margin")
	}
}
