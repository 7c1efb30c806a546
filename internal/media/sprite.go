package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"time"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/models"

	"golang.org/x/image/draw"
)

// DefaultFrameCount is how many keyframes go into a sprite sheet
const DefaultFrameCount = 5

// FrameSource exposes a seekable video
type FrameSource interface {
	Duration(ctx context.Context) (time.Duration, error)
	FrameAt(ctx context.Context, at time.Duration) (image.Image, error)
}

// Sprite is a horizontal strip of keyframes encoded as one JPEG
type Sprite struct {
	Payload     *models.MediaPayload
	FrameWidth  int
	FrameHeight int
	Timestamps  []time.Duration
}

// SampleTimestamps returns n sample centres at (2i+1)/(2n) of duration
func SampleTimestamps(duration time.Duration, n int) []time.Duration {
	if n <= 0 || duration <= 0 {
		return nil
	}
	out := make([]time.Duration, n)
	for i := 0; i < n; i++ {
		out[i] = time.Duration(float64(duration) * float64(2*i+1) / float64(2*n))
	}
	return out
}

// BuildSprite captures n frames one after another and lays them out left to
// right. Frames that differ in size from the first are scaled to match it.
func BuildSprite(ctx context.Context, src FrameSource, n int, name string) (*Sprite, error) {
	if n <= 0 {
		n = DefaultFrameCount
	}

	duration, err := src.Duration(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMediaDecode, err)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("%w: video has no duration", models.ErrMediaDecode)
	}

	stamps := SampleTimestamps(duration, n)
	frames := make([]image.Image, 0, n)
	for _, at := range stamps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frame, err := src.FrameAt(ctx, at)
		if err != nil {
			return nil, fmt.Errorf("%w: frame at %s: %v", models.ErrMediaDecode, at, err)
		}
		frames = append(frames, frame)
	}

	fw, fh := frames[0].Bounds().Dx(), frames[0].Bounds().Dy()
	if fw == 0 || fh == 0 {
		return nil, fmt.Errorf("%w: empty frame", models.ErrMediaDecode)
	}

	sheet := image.NewRGBA(image.Rect(0, 0, fw*len(frames), fh))
	for i, frame := range frames {
		dst := image.Rect(fw*i, 0, fw*(i+1), fh)
		if frame.Bounds().Dx() == fw && frame.Bounds().Dy() == fh {
			draw.Draw(sheet, dst, frame, frame.Bounds().Min, draw.Src)
			continue
		}
		draw.CatmullRom.Scale(sheet, dst, frame, frame.Bounds(), draw.Src, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, sheet, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("%w: encode sprite: %v", models.ErrMediaDecode, err)
	}

	return &Sprite{
		Payload: &models.MediaPayload{
			MIMEType: "image/jpeg",
			Data:     buf.Bytes(),
			Name:     name,
		},
		FrameWidth:  fw,
		FrameHeight: fh,
		Timestamps:  stamps,
	}, nil
}
