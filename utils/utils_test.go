package utils

import (
	"image"
	"image/color"
	"slices"
	"testing"

	"github.com/setanarut/colorquant"
)

func TestSortByBrightness(t *testing.T) {
	palette := []colorquant.Color{
		{R: 255, G: 255, B: 255, A: 255},
		{R: 0, G: 0, B: 0, A: 255},
		{R: 128, G: 128, B: 128, A: 255},
	}
	SortByBrightness(palette)
	want := []colorquant.Color{
		{R: 0, G: 0, B: 0, A: 255},
		{R: 128, G: 128, B: 128, A: 255},
		{R: 255, G: 255, B: 255, A: 255},
	}
	if !slices.Equal(palette, want) {
		t.Errorf("SortByBrightness = %v, want %v", palette, want)
	}
}

func TestSwatch(t *testing.T) {
	palette := []colorquant.Color{
		{R: 255, G: 0, B: 0, A: 255},
		{R: 0, G: 255, B: 0, A: 128},
	}
	img, err := Swatch(palette, 8)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 8 {
		t.Fatalf("swatch size = %dx%d, want 16x8", b.Dx(), b.Dy())
	}
	// Tiles are solid RGB, fully opaque regardless of palette alpha.
	if got := img.RGBAAt(3, 3); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("first tile = %v", got)
	}
	if got := img.RGBAAt(12, 3); got != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("second tile = %v", got)
	}
}

func TestSwatchEmptyPalette(t *testing.T) {
	if _, err := Swatch(nil, 8); err == nil {
		t.Fatal("Swatch with empty palette returned nil error")
	}
}

func TestDiffImage(t *testing.T) {
	a := colorquant.NewMatrix(2, 1)
	b := colorquant.NewMatrix(2, 1)
	a.Set(0, 0, colorquant.Color{R: 100, G: 100, B: 100, A: 255})
	b.Set(0, 0, colorquant.Color{R: 100, G: 100, B: 100, A: 255})
	a.Set(1, 0, colorquant.Color{R: 200, G: 100, B: 100, A: 255})
	b.Set(1, 0, colorquant.Color{R: 100, G: 100, B: 100, A: 255})

	diff, err := DiffImage(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if got := diff.GrayAt(0, 0).Y; got != 0 {
		t.Errorf("identical pixel diff = %d, want 0", got)
	}
	// One channel off by 100, averaged over four channels.
	if got := diff.GrayAt(1, 0).Y; got != 25 {
		t.Errorf("changed pixel diff = %d, want 25", got)
	}
}

func TestDiffImageSizeMismatch(t *testing.T) {
	if _, err := DiffImage(colorquant.NewMatrix(2, 2), colorquant.NewMatrix(3, 2)); err == nil {
		t.Fatal("DiffImage with mismatched sizes returned nil error")
	}
}

func TestPreviewPaletteDominant(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := range 32 {
		for x := range 32 {
			c := color.NRGBA{R: 220, G: 30, B: 30, A: 255}
			if x >= 16 {
				c = color.NRGBA{R: 30, G: 30, B: 220, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	palette := PreviewPalette(img, 2, PreviewDominant)
	if len(palette) != 2 {
		t.Fatalf("preview palette has %d colors, want 2", len(palette))
	}
	// One reddish and one bluish tone must survive the diverse selection.
	var red, blue bool
	for _, c := range palette {
		if c.R > c.B {
			red = true
		}
		if c.B > c.R {
			blue = true
		}
	}
	if !red || !blue {
		t.Errorf("preview palette %v misses one of the two image tones", palette)
	}
}

func TestPreviewPaletteZeroColors(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	if got := PreviewPalette(img, 0, PreviewDominant); got != nil {
		t.Errorf("PreviewPalette with k=0 = %v, want nil", got)
	}
}

func TestPreviewMethodString(t *testing.T) {
	if got := PreviewDominant.String(); got != "dominant" {
		t.Errorf("PreviewDominant.String() = %q", got)
	}
	if got := PreviewKMeans.String(); got != "kmeans" {
		t.Errorf("PreviewKMeans.String() = %q", got)
	}
}
