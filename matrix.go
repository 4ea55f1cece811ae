package colorquant

import (
	"image"
	"image/color"
	"image/draw"
)

// Matrix is a dense width×height grid of Colors backed by one flat slice in
// row-major order. It is the working pixel buffer of the reduction pipeline
// and is mutated in place only by the rewrite step.
type Matrix struct {
	W, H int
	Pix  []Color // len = W*H
}

func NewMatrix(w, h int) *Matrix {
	return &Matrix{W: w, H: h, Pix: make([]Color, w*h)}
}

// MatrixFromImage copies img into a fresh Matrix. The pixels pass through
// image.NRGBA so channel values stay straight alpha regardless of the
// source representation.
func MatrixFromImage(img image.Image) *Matrix {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	src := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(src, src.Bounds(), img, bounds.Min, draw.Src)

	m := NewMatrix(w, h)
	for y := range h {
		for x := range w {
			off := src.PixOffset(x, y)
			m.Pix[y*w+x] = Color{src.Pix[off], src.Pix[off+1], src.Pix[off+2], src.Pix[off+3]}
		}
	}
	return m
}

func (m *Matrix) offset(x, y int) int {
	return y*m.W + x
}

// At returns the color at (x, y).
func (m *Matrix) At(x, y int) Color {
	return m.Pix[m.offset(x, y)]
}

func (m *Matrix) Set(x, y int, c Color) {
	m.Pix[m.offset(x, y)] = c
}

// Colors returns the distinct colors of the matrix in canonical order.
func (m *Matrix) Colors() []Color {
	seen := make(map[Color]struct{})
	out := make([]Color, 0, 64)
	for _, c := range m.Pix {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	SortColors(out)
	return out
}

// Image converts the matrix back to a straight-alpha stdlib image.
func (m *Matrix) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, m.W, m.H))
	for y := range m.H {
		for x := range m.W {
			c := m.Pix[m.offset(x, y)]
			img.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A})
		}
	}
	return img
}
