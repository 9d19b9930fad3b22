package annotator

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func opaqueTexture(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = 180
		img.Pix[i+1] = 170
		img.Pix[i+2] = 160
		img.Pix[i+3] = 255
	}
	return img
}

func TestAnnotatePreservesDimensions(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "texture.png")
	dst := filepath.Join(dir, "annotated.png")
	writePNG(t, src, opaqueTexture(1024, 1024))

	if err := Annotate(src, dst, "New Text"); err != nil {
		t.Fatal(err)
	}

	out, err := Load(dst)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(image.Rect(0, 0, 1024, 1024), out.Bounds()); diff != "" {
		t.Errorf("output bounds mismatch (-want +got):\n%s", diff)
	}
}

func TestAnnotateDrawsGreenGlyphs(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "texture.png")
	dst := filepath.Join(dir, "annotated.png")
	base := opaqueTexture(1024, 1024)
	writePNG(t, src, base)

	if err := Annotate(src, dst, "New Text"); err != nil {
		t.Fatal(err)
	}

	out, err := Load(dst)
	if err != nil {
		t.Fatal(err)
	}

	found := false
	region := image.Rect(500, 500, 560, 515)
	for y := region.Min.Y; y < region.Max.Y && !found; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			if out.RGBAAt(x, y) == DefaultColor {
				found = true
				break
			}
		}
	}
	if !found {
		t.Errorf("no green glyph pixels found in %v", region)
	}

	// Pixels away from the draw region are untouched.
	if got := out.RGBAAt(10, 10); got != base.RGBAAt(10, 10) {
		t.Errorf("pixel (10,10) changed: got %v, want %v", got, base.RGBAAt(10, 10))
	}
	for y := 0; y < 400; y++ {
		for x := 0; x < 1024; x++ {
			if got := out.RGBAAt(x, y); got != base.RGBAAt(x, y) {
				t.Fatalf("pixel (%d,%d) above the draw region changed: got %v, want %v", x, y, got, base.RGBAAt(x, y))
			}
		}
	}
}

func TestAnnotateNormalizesToOpaqueRGB(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "texture.png")
	dst := filepath.Join(dir, "annotated.png")

	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
		img.Pix[i+3] = 128 // translucent source
	}
	writePNG(t, src, img)

	if err := Annotate(src, dst, "x"); err != nil {
		t.Fatal(err)
	}

	out, err := Load(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Opaque() {
		t.Error("annotated output is not opaque")
	}
}

func TestAnnotateOutOfBoundsIsNoop(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "texture.png")
	dst := filepath.Join(dir, "annotated.png")
	writePNG(t, src, opaqueTexture(64, 64))

	// Default position (500,500) lies outside a 64x64 image.
	if err := Annotate(src, dst, "invisible"); err != nil {
		t.Fatal(err)
	}

	want, err := Load(src)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Load(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(want.Pix, got.Pix) {
		t.Error("out-of-bounds annotation changed pixels")
	}
}

func TestAnnotateIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "texture.png")
	dst1 := filepath.Join(dir, "a.png")
	dst2 := filepath.Join(dir, "b.png")
	writePNG(t, src, opaqueTexture(256, 256))

	if err := Annotate(src, dst1, "New Text"); err != nil {
		t.Fatal(err)
	}
	if err := Annotate(src, dst2, "New Text"); err != nil {
		t.Fatal(err)
	}

	b1, err := os.ReadFile(dst1)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := os.ReadFile(dst2)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b1, b2) {
		t.Error("repeated annotation produced different bytes")
	}
}

func TestAnnotateMissingSource(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "annotated.png")

	err := Annotate(filepath.Join(dir, "no-such.png"), dst, "x")
	if err == nil {
		t.Fatal("expected decode error for missing source")
	}
	if _, statErr := os.Stat(dst); !os.IsNotExist(statErr) {
		t.Error("destination file was created despite decode failure")
	}
}

func TestAnnotateUnwritableDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "texture.png")
	writePNG(t, src, opaqueTexture(32, 32))

	err := Annotate(src, filepath.Join(dir, "missing-dir", "out.png"), "x")
	if err == nil {
		t.Fatal("expected encode error for missing destination directory")
	}
}

func TestSaveUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	err := Save(filepath.Join(dir, "out.tiff"), opaqueTexture(8, 8))
	if err == nil {
		t.Fatal("expected error for unsupported output format")
	}
}

func TestDrawTextCustomOptions(t *testing.T) {
	img := opaqueTexture(64, 64)
	red := color.RGBA{255, 0, 0, 255}
	DrawText(img, "hi", Options{Position: image.Pt(4, 4), Color: red})

	found := false
	for y := 4; y < 20 && !found; y++ {
		for x := 4; x < 24; x++ {
			if img.RGBAAt(x, y) == red {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("no red glyph pixels found at custom position")
	}
}
