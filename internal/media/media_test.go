package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/models"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestNormalize(t *testing.T) {
	pngData := pngBytes(t, 4, 4)

	tests := []struct {
		name     string
		data     []byte
		category models.Category
		max      int64
		wantErr  error
		wantMIME string
	}{
		{"png image", pngData, models.CategoryImage, 0, nil, "image/png"},
		{"png qr", pngData, models.CategoryQRCode, 0, nil, "image/png"},
		{"text as image", []byte("just some text, not an image"), models.CategoryImage, 0, models.ErrUnsupportedMedia, ""},
		{"png as video", pngData, models.CategoryVideo, 0, models.ErrUnsupportedMedia, ""},
		{"empty", nil, models.CategoryImage, 0, models.ErrMediaRead, ""},
		{"too large", pngData, models.CategoryImage, 8, models.ErrMediaRead, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Normalize(bytes.NewReader(tt.data), "upload", tt.category, tt.max)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.MIMEType != tt.wantMIME {
				t.Errorf("MIME = %q, want %q", p.MIMEType, tt.wantMIME)
			}
			if !strings.HasPrefix(p.DataURI(), "data:"+tt.wantMIME+";base64,") {
				t.Errorf("bad data uri prefix: %.40s", p.DataURI())
			}
		})
	}
}

func TestSampleTimestamps(t *testing.T) {
	got := SampleTimestamps(10*time.Second, 5)
	want := []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second, 7 * time.Second, 9 * time.Second}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("stamp %d = %s, want %s", i, got[i], want[i])
		}
	}

	for _, n := range []int{1, 2, 3, 7, 12} {
		stamps := SampleTimestamps(1500*time.Millisecond, n)
		if len(stamps) != n {
			t.Fatalf("n=%d: got %d stamps", n, len(stamps))
		}
		for i := 1; i < len(stamps); i++ {
			if stamps[i] <= stamps[i-1] {
				t.Errorf("n=%d: stamps not strictly increasing: %v", n, stamps)
			}
		}
		if stamps[0] <= 0 || stamps[n-1] >= 1500*time.Millisecond {
			t.Errorf("n=%d: stamps touch the ends: %v", n, stamps)
		}
	}

	if SampleTimestamps(0, 5) != nil {
		t.Error("zero duration should yield no stamps")
	}
}

type fakeVideo struct {
	duration time.Duration
	durErr   error
	sizes    []image.Point
	seen     []time.Duration
	failAt   int
}

func (f *fakeVideo) Duration(ctx context.Context) (time.Duration, error) {
	return f.duration, f.durErr
}

func (f *fakeVideo) FrameAt(ctx context.Context, at time.Duration) (image.Image, error) {
	idx := len(f.seen)
	f.seen = append(f.seen, at)
	if f.failAt > 0 && idx+1 == f.failAt {
		return nil, errors.New("seek failed")
	}
	size := f.sizes[0]
	if idx < len(f.sizes) {
		size = f.sizes[idx]
	}
	return image.NewRGBA(image.Rect(0, 0, size.X, size.Y)), nil
}

func TestBuildSprite(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		sizes []image.Point
	}{
		{"five uniform frames", 5, []image.Point{{64, 36}}},
		{"three frames", 3, []image.Point{{32, 32}}},
		{"mixed sizes scaled to first", 4, []image.Point{{40, 20}, {80, 40}, {40, 20}, {20, 10}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeVideo{duration: 8 * time.Second, sizes: tt.sizes}
			sprite, err := BuildSprite(context.Background(), src, tt.n, "clip.mp4")
			if err != nil {
				t.Fatalf("BuildSprite: %v", err)
			}

			fw, fh := tt.sizes[0].X, tt.sizes[0].Y
			img, err := jpeg.Decode(bytes.NewReader(sprite.Payload.Data))
			if err != nil {
				t.Fatalf("sprite is not a jpeg: %v", err)
			}
			if img.Bounds().Dx() != tt.n*fw || img.Bounds().Dy() != fh {
				t.Errorf("sprite = %dx%d, want %dx%d", img.Bounds().Dx(), img.Bounds().Dy(), tt.n*fw, fh)
			}
			if sprite.Payload.MIMEType != "image/jpeg" {
				t.Errorf("MIME = %q", sprite.Payload.MIMEType)
			}
			if len(src.seen) != tt.n {
				t.Errorf("captured %d frames, want %d", len(src.seen), tt.n)
			}
			for i := 1; i < len(src.seen); i++ {
				if src.seen[i] <= src.seen[i-1] {
					t.Errorf("frames not captured in increasing order: %v", src.seen)
				}
			}
		})
	}
}

func TestBuildSprite_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  *fakeVideo
	}{
		{"zero duration", &fakeVideo{sizes: []image.Point{{8, 8}}}},
		{"unreadable duration", &fakeVideo{durErr: errors.New("no metadata"), sizes: []image.Point{{8, 8}}}},
		{"capture failure", &fakeVideo{duration: time.Second, sizes: []image.Point{{8, 8}}, failAt: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildSprite(context.Background(), tt.src, 5, "clip")
			if !errors.Is(err, models.ErrMediaDecode) {
				t.Fatalf("err = %v, want ErrMediaDecode", err)
			}
		})
	}
}
