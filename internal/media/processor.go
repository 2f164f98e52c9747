// Package media validates and normalizes uploaded photos into fixed-format
// JPEG files stored under a media directory.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	_ "image/gif" //revive:disable:blank-imports
	_ "image/png" //revive:disable:blank-imports
)

const (
	// MaxDimension is the maximum allowed width or height in pixels.
	MaxDimension = 4096
	// JPEGQuality is the fixed re-encode quality.
	JPEGQuality = 85
)

// ErrInvalidImage indicates the uploaded bytes could not be decoded as an image.
var ErrInvalidImage = errors.New("invalid image")

// ErrImageTooLarge indicates the image exceeds MaxDimension on either axis.
var ErrImageTooLarge = fmt.Errorf("image dimensions too large, maximum allowed: %dx%d", MaxDimension, MaxDimension)

// Processor validates uploaded images and saves them as normalized JPEGs
// with generated filenames. Concurrent calls never collide: each write goes
// to a fresh random filename.
type Processor struct {
	dir    string
	logger *slog.Logger
}

// NewProcessor creates a Processor writing into dir, creating it if needed.
func NewProcessor(dir string, logger *slog.Logger) (*Processor, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory %s: %w", dir, err)
	}
	return &Processor{
		dir:    dir,
		logger: logger.With("component", "media_processor"),
	}, nil
}

// Dir returns the media directory path.
func (p *Processor) Dir() string {
	return p.dir
}

// Healthy reports whether the media directory exists and is a directory.
func (p *Processor) Healthy() bool {
	info, err := os.Stat(p.dir)
	return err == nil && info.IsDir()
}

// Process decodes raw upload bytes, bounds dimensions, flattens any
// transparency onto white, re-encodes as JPEG, and writes the result under a
// generated filename. It returns the filename and its public URL path.
func (p *Processor) Process(data []byte) (filename, photoURL string, err error) {
	img, format, err := decode(data)
	if err != nil {
		p.logger.Warn("Invalid image uploaded", "error", err)
		return "", "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > MaxDimension || bounds.Dy() > MaxDimension {
		p.logger.Warn("Image dimensions too large", "width", bounds.Dx(), "height", bounds.Dy())
		return "", "", ErrImageTooLarge
	}

	flat := flatten(img)

	encoded, err := encodeJPEG(flat, JPEGQuality)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode image: %w", err)
	}

	filename = uuid.NewString() + ".jpg"
	path := filepath.Join(p.dir, filename)
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		p.logger.Error("Failed to write image file", "path", path, "error", err)
		return "", "", fmt.Errorf("failed to save image: %w", err)
	}

	p.logger.Info("Photo saved",
		"filename", filename,
		"format", format,
		"width", bounds.Dx(),
		"height", bounds.Dy(),
		"bytes", len(encoded))

	photoURL = "/media/" + filename
	return filename, photoURL, nil
}

// decode parses raw bytes into an image, reporting the source format.
func decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	return img, format, nil
}

// flatten composites the image onto an opaque white background, using any
// alpha channel as the blend mask. Fully opaque sources come back unchanged.
func flatten(img image.Image) image.Image {
	if op, ok := img.(interface{ Opaque() bool }); ok && op.Opaque() {
		return img
	}

	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Over)
	return dst
}

// encodeJPEG re-encodes the image at the given quality.
func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
