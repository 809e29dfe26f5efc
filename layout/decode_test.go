package layout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// fakeDecoder 按 "WxH" 文本解析尺寸，不依赖任何真实编解码器。
// 以 "bad" 开头的数据会解码失败；delay 让前面的图片更晚完成，用来打乱完成顺序。
type fakeDecoder struct {
	delay func(data string) time.Duration
	calls atomic.Int32
}

func (f *fakeDecoder) DecodeConfig(data []byte) (int, int, string, error) {
	f.calls.Add(1)
	s := string(data)
	if f.delay != nil {
		time.Sleep(f.delay(s))
	}
	if strings.HasPrefix(s, "bad") {
		return 0, 0, "", fmt.Errorf("corrupt header")
	}
	w, h, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, "", fmt.Errorf("no size in %q", s)
	}
	wi, err := strconv.Atoi(w)
	if err != nil {
		return 0, 0, "", err
	}
	hi, err := strconv.Atoi(h)
	if err != nil {
		return 0, 0, "", err
	}
	return wi, hi, "png", nil
}

func inputs(specs ...string) []Input {
	out := make([]Input, len(specs))
	for i, s := range specs {
		out[i] = Input{Name: fmt.Sprintf("img-%d", i), Data: []byte(s)}
	}
	return out
}

func TestReadSourcesPreservesOrder(t *testing.T) {
	dec := &fakeDecoder{delay: func(s string) time.Duration {
		// 前面的图片更慢，完成顺序与输入顺序相反
		n, _ := strconv.Atoi(strings.Split(s, "x")[0])
		return time.Duration(50-n) * time.Millisecond
	}}
	in := inputs("10x1", "20x2", "30x3", "40x4")
	images, err := ReadSources(context.Background(), in, DecodeOptions{Decoder: dec, Workers: 4})
	if err != nil {
		t.Fatalf("ReadSources error: %v", err)
	}
	for i, im := range images {
		if im.Name != in[i].Name || im.PixelWidth != (i+1)*10 || im.PixelHeight != i+1 {
			t.Fatalf("image %d out of order: %+v", i, im)
		}
		if im.Format != "png" {
			t.Fatalf("image %d format not propagated: %q", i, im.Format)
		}
	}
}

func TestReadSourcesReportsLowestFailingIndex(t *testing.T) {
	dec := &fakeDecoder{}
	_, err := ReadSources(context.Background(), inputs("10x10", "bad-1", "5x5", "bad-3"), DecodeOptions{Decoder: dec, Workers: 2})
	var decodeErr *ImageDecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected *ImageDecodeError, got %v", err)
	}
	if decodeErr.Index != 1 || decodeErr.Name != "img-1" {
		t.Fatalf("expected index 1, got %d (%s)", decodeErr.Index, decodeErr.Name)
	}
	if decodeErr.Unwrap() == nil || !strings.Contains(decodeErr.Error(), "corrupt header") {
		t.Fatalf("decode error should wrap the cause: %v", decodeErr)
	}
}

func TestReadSourcesRejectsOversizedImages(t *testing.T) {
	dec := &fakeDecoder{}
	opts := DecodeOptions{Decoder: dec, MaxPixels: 100}
	if _, err := ReadSources(context.Background(), inputs("10x10"), opts); err != nil {
		t.Fatalf("image at the limit should pass: %v", err)
	}
	_, err := ReadSources(context.Background(), inputs("10x10", "11x10"), opts)
	var decodeErr *ImageDecodeError
	if !errors.As(err, &decodeErr) || decodeErr.Index != 1 {
		t.Fatalf("expected *ImageDecodeError at index 1, got %v", err)
	}
	if !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("expected ErrImageTooLarge, got %v", err)
	}

	// 默认上限同样生效
	_, err = ReadSources(context.Background(), inputs("40000x40000"), DecodeOptions{Decoder: dec})
	if !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("expected default limit to reject 40000x40000, got %v", err)
	}
}

func TestReadSourcesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	images, err := ReadSources(ctx, inputs("1x1", "2x2"), DecodeOptions{Decoder: &fakeDecoder{}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if images != nil {
		t.Fatalf("cancelled read must not return images")
	}
}

func TestReadSourcesRequiresDecoderAndInput(t *testing.T) {
	if _, err := ReadSources(context.Background(), inputs("1x1"), DecodeOptions{}); err == nil {
		t.Fatalf("expected error without decoder")
	}
	if _, err := ReadSources(context.Background(), nil, DecodeOptions{Decoder: &fakeDecoder{}}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty input, got %v", err)
	}
}

func TestComposeInputs(t *testing.T) {
	dec := &fakeDecoder{}
	doc, err := ComposeInputs(context.Background(), inputs("4000x3000", "1000x4000"), A4Portrait, DecodeOptions{Decoder: dec})
	if err != nil {
		t.Fatalf("ComposeInputs error: %v", err)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(doc.Pages))
	}
	if !near(doc.Pages[0].Image.Y, 77.25) || !near(doc.Pages[1].Image.Height, 277) {
		t.Fatalf("unexpected placements: %+v / %+v", doc.Pages[0].Image.Placement, doc.Pages[1].Image.Placement)
	}

	// 解码成功但尺寸为 0 仍属于非法输入
	_, err = ComposeInputs(context.Background(), inputs("0x10"), A4Portrait, DecodeOptions{Decoder: dec})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero width, got %v", err)
	}

	before := dec.calls.Load()
	_, err = ComposeInputs(context.Background(), inputs("1x1"), PageSize{Width: 10, Height: 10, Margin: 5}, DecodeOptions{Decoder: dec})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad page, got %v", err)
	}
	if dec.calls.Load() != before {
		t.Fatalf("invalid page must be rejected before decoding")
	}
}
