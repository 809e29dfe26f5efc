package api

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ByLCY/snappdf/config"
	"github.com/ByLCY/snappdf/export"
	"github.com/ByLCY/snappdf/imagecodec"
	"github.com/ByLCY/snappdf/layout"
	"github.com/ByLCY/snappdf/library"
	"github.com/ByLCY/snappdf/renderer"
	textrenderer "github.com/ByLCY/snappdf/renderer/text"
	"github.com/ByLCY/snappdf/storage"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// pngHeader 只包含签名与 IHDR，声明任意尺寸而不携带像素。
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8], ihdr[9] = 8, 2
	chunk := append([]byte("IHDR"), ihdr...)
	binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	buf.Write(chunk)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

type upload struct {
	name string
	data []byte
}

func multipartBody(t *testing.T, files ...upload) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		fw, err := mw.CreateFormFile("images", f.name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		fw.Write(f.data)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &body, mw.FormDataContentType()
}

func newTestHandler() *Handler {
	store := storage.NewMemory()
	lib := library.New(nil)
	reg := renderer.NewRegistry()
	reg.Register("text", func() renderer.Renderer { return textrenderer.NewRenderer() })
	return &Handler{
		Exporter: &export.Exporter{Renderers: reg, Store: store, Library: lib},
		Library:  lib,
		Store:    store,
		Decode:   layout.DecodeOptions{Decoder: imagecodec.Codec{}, Workers: 2},
		Page:     config.PageConfig{Size: "A4"},
		Format:   "text",
	}
}

func TestCreateDocument(t *testing.T) {
	h := newTestHandler()
	router := h.SetupRoutes()

	body, ct := multipartBody(t,
		upload{"one.png", pngBytes(t, 40, 20)},
		upload{"two.png", pngBytes(t, 20, 40)},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/documents?name=scans&share=true", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp DocumentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Pages != 2 || resp.ID == "" || resp.Link == "" {
		t.Fatalf("unexpected response %+v", resp)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents", nil))
	var listing struct {
		Documents []library.Entry `json:"documents"`
		Count     int             `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if listing.Count != 1 || listing.Documents[0].Name != resp.Name {
		t.Fatalf("unexpected listing %+v", listing)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/documents", nil))
	var cleared map[string]int
	json.Unmarshal(rec.Body.Bytes(), &cleared)
	if rec.Code != http.StatusOK || cleared["removed"] != 1 {
		t.Fatalf("unexpected clear response %d %s", rec.Code, rec.Body.String())
	}
}

func TestCreateDocumentKeepsSources(t *testing.T) {
	h := newTestHandler()
	body, ct := multipartBody(t,
		upload{"image.png", pngBytes(t, 8, 8)},
		upload{"image.png", pngBytes(t, 9, 9)},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/documents?keep=true", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.SetupRoutes().ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	entries := h.Library.List()
	if len(entries) != 3 {
		t.Fatalf("expected document and two source image entries, got %d", len(entries))
	}
	paths := map[string]bool{}
	images := 0
	for _, e := range entries {
		paths[e.Path] = true
		if e.Kind == library.KindImage {
			images++
		}
	}
	if images != 2 || len(paths) != 3 {
		t.Fatalf("source images must be stored separately: images=%d paths=%v", images, paths)
	}

	rec = httptest.NewRecorder()
	h.SetupRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/documents", nil))
	var cleared map[string]int
	json.Unmarshal(rec.Body.Bytes(), &cleared)
	if cleared["removed"] != 3 {
		t.Fatalf("expected 3 removed files, got %s", rec.Body.String())
	}
}

func TestCreateDocumentReportsBadImageIndex(t *testing.T) {
	h := newTestHandler()
	body, ct := multipartBody(t,
		upload{"ok.png", pngBytes(t, 10, 10)},
		upload{"broken.png", []byte("not an image")},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.SetupRoutes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Index == nil || *resp.Index != 1 {
		t.Fatalf("expected failing index 1, got %+v", resp)
	}
	if h.Library.Len() != 0 {
		t.Fatalf("nothing should be saved on failure")
	}
}

func TestCreateDocumentRejectsOversizedImage(t *testing.T) {
	h := newTestHandler()
	body, ct := multipartBody(t,
		upload{"ok.png", pngBytes(t, 10, 10)},
		upload{"huge.png", pngHeader(40000, 40000)},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.SetupRoutes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Index == nil || *resp.Index != 1 {
		t.Fatalf("expected failing index 1, got %+v", resp)
	}
}

func TestCreateDocumentRejectsBadPageAndFormat(t *testing.T) {
	cases := []struct {
		name  string
		query string
	}{
		{"margin", "?margin=200mm"},
		{"orientation", "?orientation=diagonal"},
		{"format", "?format=docx"},
		{"nan margin", "?margin=nan"},
		{"inf margin", "?margin=inf"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := newTestHandler()
			body, ct := multipartBody(t, upload{"ok.png", pngBytes(t, 10, 10)})
			req := httptest.NewRequest(http.MethodPost, "/api/documents"+c.query, body)
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()
			h.SetupRoutes().ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCreateDocumentWithoutImages(t *testing.T) {
	h := newTestHandler()
	body, ct := multipartBody(t)
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.SetupRoutes().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler().SetupRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
