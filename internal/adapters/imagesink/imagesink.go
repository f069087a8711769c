// Package imagesink writes the reporter's pixel arrays as PNG files. Images
// are upscaled with nearest-neighbor so a 65x65 cell stays readable.
package imagesink

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"path/filepath"

	"golang.org/x/image/draw"

	"github.com/DavidVonDerau/merged-lands/internal/domain/report"
	"github.com/DavidVonDerau/merged-lands/internal/ports"
)

// DefaultScale is the upscaling factor when none is configured.
const DefaultScale = 4

// Sink writes report images under a base directory:
// <dir>/<plugin>/<cell>_<layer>.png for plugin images and
// <dir>/merged/<cell>.png for composed cells.
type Sink struct {
	fs    ports.FileSystem
	dir   string
	scale int
}

// New creates a sink rooted at dir. A scale below 1 means DefaultScale.
func New(fs ports.FileSystem, dir string, scale int) *Sink {
	if scale < 1 {
		scale = DefaultScale
	}
	return &Sink{fs: fs, dir: dir, scale: scale}
}

// Write stores every image, creating directories as needed.
func (s *Sink) Write(images []report.CellImage) error {
	for _, ci := range images {
		path := s.pathFor(ci)
		if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
		data, err := Encode(ci.Image, s.scale)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", path, err)
		}
		if err := s.fs.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

func (s *Sink) pathFor(ci report.CellImage) string {
	cell := fmt.Sprintf("%d_%d", ci.Coord.X, ci.Coord.Y)
	if ci.Layer == report.MergedLayer {
		return filepath.Join(s.dir, "merged", cell+".png")
	}
	return filepath.Join(s.dir, ci.Plugin, fmt.Sprintf("%s_%s.png", cell, ci.Layer))
}

// Encode turns a raw RGBA array into PNG bytes, upscaled by scale.
func Encode(img report.Image, scale int) ([]byte, error) {
	src := &image.RGBA{
		Pix:    img.Pixels,
		Stride: img.Width * 4,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}

	var encoded image.Image = src
	if scale > 1 {
		dst := image.NewRGBA(image.Rect(0, 0, img.Width*scale, img.Height*scale))
		draw.NearestNeighbor.Scale(dst, dst.Rect, src, src.Rect, draw.Src, nil)
		encoded = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, encoded); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
