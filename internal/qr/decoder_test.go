package qr

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/models"

	qrencode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

func encode(t *testing.T, content string) *models.MediaPayload {
	t.Helper()
	data, err := qrencode.Encode(content, qrencode.Medium, 256)
	if err != nil {
		t.Fatalf("encode qr: %v", err)
	}
	return &models.MediaPayload{MIMEType: "image/png", Data: data, Name: "qr.png"}
}

func TestDecoder_Decode(t *testing.T) {
	d := NewDecoder(zap.NewNop())

	tests := []struct {
		name    string
		content string
		want    Decoded
	}{
		{
			name:    "url",
			content: "https://example.com/pay",
			want:    Decoded{Category: models.CategoryURL, URL: "https://example.com/pay"},
		},
		{
			name:    "plain text",
			content: "hello world",
			want:    Decoded{Category: models.CategoryText, Content: "hello world"},
		},
		{
			name:    "upi payment link",
			content: "upi://pay?pa=shop@bank&am=100",
			want:    Decoded{Category: models.CategoryURL, URL: "upi://pay?pa=shop@bank&am=100"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := d.Decode(encode(t, tt.content))
			if !ok {
				t.Fatal("expected a decode")
			}
			if got != tt.want {
				t.Errorf("Decode = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecoder_NoSymbol(t *testing.T) {
	d := NewDecoder(zap.NewNop())

	blank := image.NewGray(image.Rect(0, 0, 64, 64))
	var buf bytes.Buffer
	if err := png.Encode(&buf, blank); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		payload *models.MediaPayload
	}{
		{"blank image", &models.MediaPayload{MIMEType: "image/png", Data: buf.Bytes()}},
		{"garbage bytes", &models.MediaPayload{MIMEType: "image/png", Data: []byte("not an image")}},
		{"nil payload", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := d.Decode(tt.payload); ok {
				t.Error("expected no decode")
			}
		})
	}
}
