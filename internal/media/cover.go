package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/desertthunder/ytmd/internal/models"
)

// CoverProcessor squares and shrinks cover frames before embedding.
type CoverProcessor struct {
	Square  bool
	MaxSize int
}

// NewCoverProcessor creates a processor; maxSize <= 0 disables downscaling.
func NewCoverProcessor(square bool, maxSize int) *CoverProcessor {
	return &CoverProcessor{Square: square, MaxSize: maxSize}
}

// Enabled reports whether Process changes anything.
func (p *CoverProcessor) Enabled() bool {
	return p != nil && (p.Square || p.MaxSize > 0)
}

// Process center-crops to a square when enabled, fits the result within MaxSize
// and re-encodes as JPEG quality 90. A disabled processor returns cover unchanged.
func (p *CoverProcessor) Process(cover models.CoverImage) (models.CoverImage, error) {
	if !p.Enabled() || cover.Empty() {
		return cover, nil
	}

	img, _, err := image.Decode(bytes.NewReader(cover))
	if err != nil {
		return nil, fmt.Errorf("decode cover: %w", err)
	}

	src := img.Bounds()
	if p.Square {
		src = centerSquare(src)
	}

	width, height := fit(src.Dx(), src.Dy(), p.MaxSize)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode cover: %w", err)
	}
	return models.CoverImage(buf.Bytes()), nil
}

func centerSquare(r image.Rectangle) image.Rectangle {
	side := min(r.Dx(), r.Dy())
	x := r.Min.X + (r.Dx()-side)/2
	y := r.Min.Y + (r.Dy()-side)/2
	return image.Rect(x, y, x+side, y+side)
}

// fit scales width and height down so neither exceeds limit, keeping the aspect ratio.
func fit(width, height, limit int) (int, int) {
	if limit <= 0 || (width <= limit && height <= limit) {
		return width, height
	}
	if width >= height {
		return limit, max(1, height*limit/width)
	}
	return max(1, width*limit/height), limit
}
