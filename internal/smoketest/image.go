package smoketest

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

const canvasSize = 200

var (
	Red   = color.RGBA{R: 255, A: 255}
	Green = color.RGBA{G: 255, A: 255}
	Blue  = color.RGBA{B: 255, A: 255}
)

// TestImage renders the fixture: a background, a green square and a blue
// circle, scaled to size.
func TestImage(background color.Color, size image.Point) image.Image {
	canvas := image.NewRGBA(image.Rect(0, 0, canvasSize, canvasSize))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(50, 50, 151, 151), &image.Uniform{C: Green}, image.Point{}, draw.Src)
	fillEllipse(canvas, image.Rect(75, 75, 126, 126), Blue)

	if size.X <= 0 || size.Y <= 0 || size == (image.Point{X: canvasSize, Y: canvasSize}) {
		return canvas
	}
	return resize.Resize(uint(size.X), uint(size.Y), canvas, resize.Lanczos3)
}

func fillEllipse(img draw.Image, r image.Rectangle, c color.Color) {
	cx := float64(r.Min.X+r.Max.X-1) / 2
	cy := float64(r.Min.Y+r.Max.Y-1) / 2
	rx := float64(r.Dx()) / 2
	ry := float64(r.Dy()) / 2
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			dx := (float64(x) - cx) / rx
			dy := (float64(y) - cy) / ry
			if dx*dx+dy*dy <= 1 {
				img.Set(x, y, c)
			}
		}
	}
}

// WriteTestImage encodes the fixture to path; the extension picks PNG or JPEG.
func WriteTestImage(path string, background color.Color, size image.Point) error {
	img := TestImage(background, size)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create test image: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(f, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	default:
		err = fmt.Errorf("unsupported test image extension %q", filepath.Ext(path))
	}
	if err != nil {
		return err
	}
	return f.Close()
}
