package renderer

import (
	"errors"
	"strings"
	"testing"

	"github.com/ByLCY/snappdf/layout"
)

type stubRenderer struct{ ext string }

func (s stubRenderer) Render(doc *layout.Document) ([]byte, error) {
	return []byte(s.ext), nil
}
func (s stubRenderer) Extension() string   { return s.ext }
func (s stubRenderer) ContentType() string { return "text/plain" }

func TestRegistrySelectsByName(t *testing.T) {
	reg := NewRegistry()
	reg.Register("Text", func() Renderer { return stubRenderer{ext: "txt"} })
	reg.Register("pdf", func() Renderer { return stubRenderer{ext: "pdf"} })

	r, err := reg.New(" TEXT ")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if r.Extension() != "txt" {
		t.Fatalf("expected txt renderer, got %s", r.Extension())
	}
	if got := strings.Join(reg.Names(), ","); got != "pdf,text" {
		t.Fatalf("unexpected names: %s", got)
	}
}

func TestRegistryUnknownName(t *testing.T) {
	reg := NewRegistry()
	reg.Register("canvas", func() Renderer { return stubRenderer{ext: "pdf"} })
	_, err := reg.New("docx")
	if err == nil || !strings.Contains(err.Error(), "canvas") {
		t.Fatalf("expected error listing available formats, got %v", err)
	}
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}
