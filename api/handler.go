package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/ByLCY/snappdf/config"
	"github.com/ByLCY/snappdf/export"
	"github.com/ByLCY/snappdf/layout"
	"github.com/ByLCY/snappdf/library"
	"github.com/ByLCY/snappdf/logging"
	"github.com/ByLCY/snappdf/renderer"
	"github.com/ByLCY/snappdf/storage"
)

const (
	DefaultMaxUpload = 32 << 20 // 32MB
	Version          = "1.0.0"
)

// Handler 处理合成与文件库相关的 HTTP 请求。
type Handler struct {
	Exporter  *export.Exporter
	Library   *library.Library
	Store     storage.Store
	Decode    layout.DecodeOptions
	Page      config.PageConfig
	Format    string
	MaxUpload int64
	Log       logrus.FieldLogger
}

// SetupRoutes 注册所有路由。
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/api/documents", h.CreateDocument).Methods("POST")
	router.HandleFunc("/api/documents", h.ListDocuments).Methods("GET")
	router.HandleFunc("/api/documents", h.ClearDocuments).Methods("DELETE")

	router.HandleFunc("/health", h.Health).Methods("GET")

	return router
}

// DocumentResponse 是 POST /api/documents 的返回体。
type DocumentResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Path  string `json:"path"`
	Link  string `json:"link,omitempty"`
	Pages int    `json:"pages"`
	Size  int    `json:"size"`
}

type errorResponse struct {
	Error string `json:"error"`
	Index *int   `json:"index,omitempty"`
}

var startTime = time.Now()

func (h *Handler) logger() *logrus.Entry { return logging.Component(h.Log, "api") }

// CreateDocument 读取 multipart 中的 images 字段，按上传顺序合成并导出。
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	maxUpload := h.MaxUpload
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUpload
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		h.sendError(w, http.StatusBadRequest, "File too large or invalid form data", nil)
		return
	}
	headers := r.MultipartForm.File["images"]
	if len(headers) == 0 {
		h.sendError(w, http.StatusBadRequest, "No images provided (use 'images' field)", nil)
		return
	}

	inputs := make([]layout.Input, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			h.sendError(w, http.StatusInternalServerError, "Failed to read upload", nil)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			h.sendError(w, http.StatusInternalServerError, "Failed to read upload", nil)
			return
		}
		inputs = append(inputs, layout.Input{Name: fh.Filename, Data: data})
	}

	q := r.URL.Query()
	pageCfg := h.Page
	if v := q.Get("page"); v != "" {
		pageCfg.Size = v
	}
	if v := q.Get("orientation"); v != "" {
		pageCfg.Orientation = v
	}
	if v := q.Get("margin"); v != "" {
		pageCfg.Margin = v
	}
	page, err := layout.ParsePageSize(pageCfg.Size, pageCfg.Orientation, pageCfg.Margin)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	doc, err := layout.ComposeInputs(r.Context(), inputs, page, h.Decode)
	if err != nil {
		h.sendComposeError(w, err)
		return
	}
	doc.Meta.Title = q.Get("name")
	doc.Meta.Creator = "snappdf"
	doc.Meta.Created = time.Now()

	format := q.Get("format")
	if format == "" {
		format = h.Format
	}
	share, _ := strconv.ParseBool(q.Get("share"))
	res, err := h.Exporter.Export(r.Context(), doc, export.Options{
		Format: format,
		Name:   q.Get("name"),
		Share:  share,
	})
	if err != nil {
		h.sendComposeError(w, err)
		return
	}

	if keep, _ := strconv.ParseBool(q.Get("keep")); keep {
		for _, in := range inputs {
			if _, err := h.Exporter.SaveImage(r.Context(), in.Name, in.Data); err != nil {
				h.logger().WithError(err).WithField("image", in.Name).Warn("failed to keep source image")
			}
		}
	}

	h.sendJSON(w, http.StatusCreated, DocumentResponse{
		ID:    res.Entry.ID.String(),
		Name:  res.Entry.Name,
		Path:  res.Entry.Path,
		Link:  res.Link,
		Pages: res.Pages,
		Size:  res.Size,
	})
}

// ListDocuments 返回文件库条目，最新的在前。
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	entries := h.Library.List()
	h.sendJSON(w, http.StatusOK, map[string]any{
		"documents": entries,
		"count":     len(entries),
	})
}

// ClearDocuments 删除文件库中所有文件。
func (h *Handler) ClearDocuments(w http.ResponseWriter, r *http.Request) {
	removed, err := h.Library.Clear(r.Context(), h.Store)
	if err != nil {
		h.logger().WithError(err).Error("failed to clear library")
		h.sendError(w, http.StatusInternalServerError, "Failed to clear documents", nil)
		return
	}
	h.sendJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// Health 返回服务状态。
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": Version,
		"uptime":  time.Since(startTime).Round(time.Second).String(),
	})
}

// sendComposeError 把输入错误映射为 400，其余为 500。
func (h *Handler) sendComposeError(w http.ResponseWriter, err error) {
	var decodeErr *layout.ImageDecodeError
	switch {
	case errors.As(err, &decodeErr):
		idx := decodeErr.Index
		h.sendError(w, http.StatusBadRequest, fmt.Sprintf("image %q could not be decoded: %v", decodeErr.Name, decodeErr.Err), &idx)
	case errors.Is(err, layout.ErrInvalidInput), errors.Is(err, renderer.ErrUnknownFormat):
		h.sendError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		h.logger().WithError(err).Error("failed to create document")
		h.sendError(w, http.StatusInternalServerError, err.Error(), nil)
	}
}

func (h *Handler) sendJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (h *Handler) sendError(w http.ResponseWriter, status int, message string, index *int) {
	h.sendJSON(w, status, errorResponse{Error: message, Index: index})
}
