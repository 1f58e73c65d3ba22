package repository

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"time"

	"timelapse/internal/models"

	"github.com/spf13/afero"
)

// fileLayout names pictures year-month-day_hour.minute.second.
const fileLayout = "2006-01-02_15.04.05"

const (
	jpegQuality = 90
	dirPerm     = 0o755
	filePerm    = 0o644
)

var errEmptyFrame = errors.New("frame has no image data")

// PathFor is the file a picture taken at t is stored under.
func PathFor(dir string, t time.Time) string {
	return filepath.Join(dir, t.Format(fileLayout)+".jpeg")
}

// ImageFS encodes frames as JPEG files on an afero filesystem.
type ImageFS struct {
	fs  afero.Fs
	dir string
}

func NewImageFS(fs afero.Fs, dir string) *ImageFS { return &ImageFS{fs: fs, dir: dir} }

// Save encodes frame to PathFor(dir, at), creating the directory if needed.
func (r *ImageFS) Save(ctx context.Context, frame models.Frame, at time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if frame.Empty() || frame.Width <= 0 || frame.Height <= 0 || len(frame.Luma) < frame.Width*frame.Height {
		return "", errEmptyFrame
	}

	if err := r.fs.MkdirAll(r.dir, dirPerm); err != nil {
		return "", fmt.Errorf("create %q: %w", r.dir, err)
	}

	path := PathFor(r.dir, at)
	f, err := r.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return "", fmt.Errorf("open %q: %w", path, err)
	}

	img := &image.Gray{
		Pix:    frame.Luma,
		Stride: frame.Width,
		Rect:   image.Rect(0, 0, frame.Width, frame.Height),
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("encode %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %q: %w", path, err)
	}
	return path, nil
}
