package thumbnail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os/exec"
	"strings"

	"github.com/nfnt/resize"
)

const (
	DefaultMaxSize = 480
	JPEGQuality    = 70
)

type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if i := strings.LastIndexByte(msg, '\n'); i >= 0 {
			msg = msg[i+1:]
		}
		return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
	}
	return out, nil
}

// FFmpegExtractor grabs the first frame of a video with ffmpeg and returns it
// as a JPEG data URL no larger than MaxSize on either side.
type FFmpegExtractor struct {
	Binary  string
	MaxSize uint

	run runner
}

func NewFFmpegExtractor(binary string) *FFmpegExtractor {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpegExtractor{Binary: binary, MaxSize: DefaultMaxSize, run: execRunner}
}

func (f *FFmpegExtractor) Extract(ctx context.Context, videoURL string) (string, error) {
	if videoURL == "" {
		return "", fmt.Errorf("extract frame: empty video url")
	}

	out, err := f.run(ctx, f.Binary,
		"-hide_banner", "-loglevel", "error",
		"-ss", "0",
		"-i", videoURL,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)
	if err != nil {
		return "", fmt.Errorf("extract frame: %w", err)
	}

	frame, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		return "", fmt.Errorf("decode frame: %w", err)
	}

	return EncodeDataURL(frame, f.MaxSize)
}

// EncodeDataURL scales img to fit maxSize and encodes it as a JPEG data URL.
func EncodeDataURL(img image.Image, maxSize uint) (string, error) {
	if maxSize > 0 {
		img = resize.Thumbnail(maxSize, maxSize, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
