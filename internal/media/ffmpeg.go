package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/models"

	"go.mau.fi/util/ffmpeg"
	"go.uber.org/zap"
)

// ErrFFmpegUnavailable is returned when ffmpeg or ffprobe cannot be found
var ErrFFmpegUnavailable = errors.New("ffmpeg is not available")

// ConfigureFFmpeg overrides the binary locations used for frame extraction
func ConfigureFFmpeg(ffmpegPath, ffprobePath string) {
	if ffmpegPath != "" {
		ffmpeg.SetPath(ffmpegPath)
	}
	if ffprobePath != "" {
		ffmpeg.SetProbePath(ffprobePath)
	}
}

// FFmpegSource extracts frames from a video held in a temporary file
type FFmpegSource struct {
	dir    string
	path   string
	logger *zap.Logger
}

// OpenFFmpegSource spools data to disk so ffprobe and ffmpeg can seek in it.
// Callers must Close the source.
func OpenFFmpegSource(data []byte, logger *zap.Logger) (*FFmpegSource, error) {
	if !ffmpeg.Supported() || !ffmpeg.ProbeSupported() {
		return nil, ErrFFmpegUnavailable
	}

	dir, err := os.MkdirTemp("", "suraksha-video-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	path := filepath.Join(dir, "input")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to spool video: %w", err)
	}

	return &FFmpegSource{dir: dir, path: path, logger: logger}, nil
}

// Duration probes the container, preferring the video stream's own duration
func (s *FFmpegSource) Duration(ctx context.Context) (time.Duration, error) {
	result, err := ffmpeg.Probe(ctx, s.path)
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}
	if result == nil {
		return 0, errors.New("ffprobe returned no result")
	}

	var seconds float64
	for _, stream := range result.Streams {
		if stream.CodecType == "video" {
			seconds = stream.Duration
			break
		}
	}
	if seconds <= 0 && result.Format != nil {
		seconds = result.Format.Duration
	}

	s.logger.Debug("Probed video", zap.Float64("duration_seconds", seconds))

	return time.Duration(seconds * float64(time.Second)), nil
}

// FrameAt seeks to at and decodes a single frame
func (s *FFmpegSource) FrameAt(ctx context.Context, at time.Duration) (image.Image, error) {
	out := filepath.Join(s.dir, fmt.Sprintf("frame-%d.png", at.Milliseconds()))

	inputArgs := []string{"-ss", strconv.FormatFloat(at.Seconds(), 'f', 3, 64)}
	outputArgs := []string{"-frames:v", "1", "-y"}
	if err := ffmpeg.ConvertPathWithDestination(ctx, s.path, out, inputArgs, outputArgs, false); err != nil {
		return nil, fmt.Errorf("ffmpeg frame extraction failed: %w", err)
	}
	defer os.Remove(out)

	f, err := os.Open(out)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return img, nil
}

// Close removes the spooled video and any leftover frames
func (s *FFmpegSource) Close() error {
	return os.RemoveAll(s.dir)
}

// KeyframeSampler turns an uploaded video into a sprite sheet via ffmpeg
type KeyframeSampler struct {
	frames int
	logger *zap.Logger
}

// NewKeyframeSampler creates a sampler capturing frames keyframes per video
func NewKeyframeSampler(frames int, logger *zap.Logger) *KeyframeSampler {
	if frames <= 0 {
		frames = DefaultFrameCount
	}
	return &KeyframeSampler{frames: frames, logger: logger}
}

// Sprite extracts keyframes from video and returns the encoded sheet
func (k *KeyframeSampler) Sprite(ctx context.Context, video *models.MediaPayload) (*models.MediaPayload, error) {
	src, err := OpenFFmpegSource(video.Data, k.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMediaDecode, err)
	}
	defer src.Close()

	sprite, err := BuildSprite(ctx, src, k.frames, video.Name)
	if err != nil {
		return nil, err
	}

	k.logger.Info("Video sprite sheet built",
		zap.String("name", video.Name),
		zap.Int("frames", len(sprite.Timestamps)),
		zap.Int("frame_width", sprite.FrameWidth),
		zap.Int("frame_height", sprite.FrameHeight))

	return sprite.Payload, nil
}
