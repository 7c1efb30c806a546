// Package qr decodes QR symbols from uploaded images and reclassifies the
// embedded content as a URL or plain text submission.
package qr

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/classifier"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/models"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"go.uber.org/zap"
)

// Decoded is the rerouted submission produced from a QR symbol
type Decoded struct {
	Category models.Category
	Content  string
	URL      string
}

// Decoder wraps a zxing QR reader
type Decoder struct {
	logger *zap.Logger
}

// NewDecoder creates a QR decoder
func NewDecoder(logger *zap.Logger) *Decoder {
	return &Decoder{logger: logger}
}

// Decode looks for a QR symbol in payload. It reports false when the image
// cannot be read or holds no symbol; it never returns an error.
func (d *Decoder) Decode(payload *models.MediaPayload) (Decoded, bool) {
	if payload == nil || len(payload.Data) == 0 {
		return Decoded{}, false
	}

	img, _, err := image.Decode(bytes.NewReader(payload.Data))
	if err != nil {
		d.logger.Debug("QR image unreadable", zap.Error(err))
		return Decoded{}, false
	}

	text, ok := d.scan(img)
	if !ok {
		return Decoded{}, false
	}

	return Classify(text), true
}

func (d *Decoder) scan(img image.Image) (text string, ok bool) {
	// zxing can panic on degenerate bitmaps
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("QR decoder panicked", zap.Any("panic", r))
			text, ok = "", false
		}
	}()

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", false
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", false
	}

	return result.GetText(), result.GetText() != ""
}

// Classify routes decoded text: absolute URLs become url submissions,
// everything else becomes text
func Classify(text string) Decoded {
	if classifier.IsAbsoluteURL(text) {
		return Decoded{Category: models.CategoryURL, URL: text}
	}
	return Decoded{Category: models.CategoryText, Content: text}
}
