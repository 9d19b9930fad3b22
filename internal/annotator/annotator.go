package annotator

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DefaultPosition is where the texture pipeline expects labels to land.
var DefaultPosition = image.Pt(500, 500)

// DefaultColor is the label fill color.
var DefaultColor = color.RGBA{R: 0, G: 128, B: 0, A: 255}

// Options control where and in what color text is drawn. The zero value is
// not useful; use Defaults for the standard placement.
type Options struct {
	Position image.Point
	Color    color.Color
}

func Defaults() Options {
	return Options{
		Position: DefaultPosition,
		Color:    DefaultColor,
	}
}

// Annotate decodes the image at sourcePath, draws text onto it at the
// default position and color, and encodes the result to destPath in the
// format implied by destPath's extension. Any existing file at destPath is
// overwritten. On success a confirmation line is printed.
func Annotate(sourcePath, destPath, text string) error {
	return AnnotateWith(sourcePath, destPath, text, Defaults())
}

// AnnotateWith is Annotate with explicit placement options.
func AnnotateWith(sourcePath, destPath, text string, opts Options) error {
	img, err := Load(sourcePath)
	if err != nil {
		return err
	}

	DrawText(img, text, opts)

	if err := Save(destPath, img); err != nil {
		return err
	}

	fmt.Printf("Updated texture saved to %s\n", destPath)
	return nil
}

// Load decodes the image at path and returns it normalized to an opaque
// RGBA bitmap, ready for per-pixel drawing.
func Load(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source image: %w", err)
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Decode reads an image from r and returns it normalized to an opaque RGBA
// bitmap.
func Decode(r io.Reader) (*image.RGBA, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return toRGB(img), nil
}

// toRGB copies src into an RGBA bitmap with the alpha channel forced opaque.
// Palette and alpha information is discarded.
func toRGB(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok && rgba.Opaque() {
		return rgba
	}

	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

// DrawText renders text onto img at opts.Position using the embedded
// bitmap font. The position is the top-left corner of the glyph box.
// Text outside the image bounds is clipped away silently.
func DrawText(img *image.RGBA, text string, opts Options) {
	face := basicfont.Face7x13
	ascent := face.Metrics().Ascent.Ceil()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(opts.Color),
		Face: face,
		Dot:  fixed.P(opts.Position.X, opts.Position.Y+ascent),
	}
	d.DrawString(text)
}

// Save encodes img to path in the format implied by the file extension.
func Save(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output image: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(f, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, nil)
	case ".gif":
		err = gif.Encode(f, img, nil)
	default:
		err = fmt.Errorf("unsupported output format %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
